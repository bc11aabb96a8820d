package engine

import "math"

// Vector is a sparse TF-IDF vector. A missing term has weight 0.
type Vector map[string]float64

// Norm returns the Euclidean norm over the vector's own keys.
func (v Vector) Norm() float64 {
	var sum float64
	for _, w := range v {
		sum += w * w
	}
	return math.Sqrt(sum)
}

// Dot returns the dot product over the intersection of both key sets.
func (v Vector) Dot(other Vector) float64 {
	small, large := v, other
	if len(large) < len(small) {
		small, large = large, small
	}
	var dot float64
	for term, w := range small {
		if ow, ok := large[term]; ok {
			dot += w * ow
		}
	}
	return dot
}

// Cosine returns the cosine similarity of a and b, or 0 if either has zero norm.
func Cosine(a, b Vector) float64 {
	na, nb := a.Norm(), b.Norm()
	if na == 0 || nb == 0 {
		return 0
	}
	return a.Dot(b) / (na * nb)
}

// cosineWithNorms is Cosine with precomputed norms.
func cosineWithNorms(a, b Vector, na, nb float64) float64 {
	if na == 0 || nb == 0 {
		return 0
	}
	return a.Dot(b) / (na * nb)
}
