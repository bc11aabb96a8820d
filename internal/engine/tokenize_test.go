package engine

import (
	"reflect"
	"testing"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"Hello, World!", []string{"hello", "world"}},
		{"foo_bar 42 x", []string{"foo_bar", "42", "x"}},
		{"Café über-cool", []string{"café", "über", "cool"}},
		{"...!!!", nil},
		{"", nil},
	}
	for _, tc := range tests {
		got := Tokenize(tc.in)
		if !reflect.DeepEqual(got, tc.want) {
			t.Errorf("Tokenize(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestTerms_FiltersStopwordsAndShortTokens(t *testing.T) {
	got := Terms("The cat and the dog are at home with 42 friends")
	want := []string{"cat", "dog", "home", "friends"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Terms() = %v, want %v", got, want)
	}
}

func TestTerms_LengthCountsCharacters(t *testing.T) {
	// "éé" is four bytes but only two characters.
	got := Terms("éé ééé")
	want := []string{"ééé"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Terms() = %v, want %v", got, want)
	}
}

func TestTerms_CntIsStopword(t *testing.T) {
	if !IsStopword("cnt") {
		t.Error("cnt should be a stopword")
	}
	if got := Terms("cnt cnt"); len(got) != 0 {
		t.Errorf("Terms() = %v, want empty", got)
	}
}
