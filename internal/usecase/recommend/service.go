package recommend

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/newsrec/internal/domain"
	domdoc "github.com/kailas-cloud/newsrec/internal/domain/document"
	"github.com/kailas-cloud/newsrec/internal/domain/recommendation"
	"github.com/kailas-cloud/newsrec/internal/engine"
	"github.com/kailas-cloud/newsrec/internal/metrics"
)

// Stats describes an engine snapshot.
type Stats struct {
	Documents int
	Terms     int
	BuiltAt   time.Time
}

// snapshot is an immutable engine plus the documents it was built from.
type snapshot struct {
	engine     *engine.Engine
	docs       map[string]domdoc.Document
	order      []string // corpus order, newest first
	builtAt    time.Time
	generation uint64
}

// Service answers similarity and recommendation queries over a cached engine snapshot.
// The snapshot is rebuilt lazily after Invalidate or once it is older than maxAge.
type Service struct {
	corpus       CorpusReader
	interactions InteractionReader
	logger       *zap.Logger

	maxAge       time.Duration // 0 = snapshot never expires
	defaultLimit int
	maxLimit     int
	now          func() time.Time

	buildMu    sync.Mutex
	current    atomic.Pointer[snapshot]
	generation atomic.Uint64
}

// New creates a recommendation service. logger may be nil.
func New(corpus CorpusReader, interactions InteractionReader, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		corpus:       corpus,
		interactions: interactions,
		logger:       logger,
		defaultLimit: engine.DefaultLimit,
		maxLimit:     100,
		now:          time.Now,
	}
}

// WithMaxAge sets how long a snapshot may serve queries before a rebuild.
func (s *Service) WithMaxAge(d time.Duration) *Service {
	if d > 0 {
		s.maxAge = d
	}
	return s
}

// WithLimits configures the default and maximum number of results.
func (s *Service) WithLimits(defaultLimit, maxLimit int) *Service {
	if defaultLimit > 0 {
		s.defaultLimit = defaultLimit
	}
	if maxLimit > 0 {
		s.maxLimit = maxLimit
	}
	if s.defaultLimit > s.maxLimit {
		s.defaultLimit = s.maxLimit
	}
	return s
}

// Invalidate marks the current snapshot stale. The next query rebuilds it.
func (s *Service) Invalidate() {
	s.generation.Add(1)
}

// Similar returns up to n eligible documents most similar to the document id.
// An id outside the corpus yields no results.
func (s *Service) Similar(ctx context.Context, id string, n int) ([]recommendation.Result, error) {
	snap, err := s.snapshot(ctx)
	if err != nil {
		metrics.RecommendationQueriesTotal.WithLabelValues("similar", "error").Inc()
		return nil, err
	}

	results := snap.resolve(snap.engine.Similar(id, s.limit(n)))
	observeQuery("similar", len(results))
	return results, nil
}

// Recommend returns up to n documents resembling what userID interacted with.
// A user without interactions gets no recommendations.
func (s *Service) Recommend(ctx context.Context, userID string, n int) ([]recommendation.Result, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user ID is required", domain.ErrInvalidRequest)
	}

	interacted, err := s.interactions.DocumentIDs(ctx, userID)
	if err != nil {
		metrics.RecommendationQueriesTotal.WithLabelValues("recommend", "error").Inc()
		return nil, fmt.Errorf("load interactions: %w", err)
	}
	if len(interacted) == 0 {
		observeQuery("recommend", 0)
		return nil, nil
	}

	snap, err := s.snapshot(ctx)
	if err != nil {
		metrics.RecommendationQueriesTotal.WithLabelValues("recommend", "error").Inc()
		return nil, err
	}

	results := snap.resolve(snap.engine.Recommend(interacted, s.limit(n)))
	observeQuery("recommend", len(results))
	return results, nil
}

// Popular returns up to n eligible documents ranked by view count, ties in corpus
// order (newest first). It serves readers without history. Scores are view counts.
func (s *Service) Popular(ctx context.Context, n int) ([]recommendation.Result, error) {
	snap, err := s.snapshot(ctx)
	if err != nil {
		metrics.RecommendationQueriesTotal.WithLabelValues("popular", "error").Inc()
		return nil, err
	}

	views, err := s.interactions.ViewCounts(ctx, snap.order)
	if err != nil {
		metrics.RecommendationQueriesTotal.WithLabelValues("popular", "error").Inc()
		return nil, fmt.Errorf("load view counts: %w", err)
	}
	if len(views) != len(snap.order) {
		metrics.RecommendationQueriesTotal.WithLabelValues("popular", "error").Inc()
		return nil, fmt.Errorf("load view counts: got %d counts for %d documents", len(views), len(snap.order))
	}

	rank := make([]int, len(snap.order))
	for i := range rank {
		rank[i] = i
	}
	sort.SliceStable(rank, func(a, b int) bool {
		return views[rank[a]] > views[rank[b]]
	})
	if limit := s.limit(n); len(rank) > limit {
		rank = rank[:limit]
	}

	results := make([]recommendation.Result, 0, len(rank))
	for _, i := range rank {
		results = append(results, recommendation.New(snap.docs[snap.order[i]], float64(views[i])))
	}
	observeQuery("popular", len(results))
	return results, nil
}

// Rebuild builds a fresh snapshot regardless of the current one.
func (s *Service) Rebuild(ctx context.Context) (Stats, error) {
	s.buildMu.Lock()
	defer s.buildMu.Unlock()

	snap, err := s.build(ctx)
	if err != nil {
		return Stats{}, err
	}
	return snap.stats(), nil
}

// Current returns the stats of the live snapshot, or false if none was built yet.
func (s *Service) Current() (Stats, bool) {
	snap := s.current.Load()
	if snap == nil {
		return Stats{}, false
	}
	return snap.stats(), true
}

func (s *Service) limit(n int) int {
	if n <= 0 {
		return s.defaultLimit
	}
	if n > s.maxLimit {
		return s.maxLimit
	}
	return n
}

func (s *Service) fresh(snap *snapshot) bool {
	if snap == nil || snap.generation != s.generation.Load() {
		return false
	}
	return s.maxAge == 0 || s.now().Sub(snap.builtAt) < s.maxAge
}

// snapshot returns a fresh snapshot, building one if needed. Concurrent callers
// share a single build.
func (s *Service) snapshot(ctx context.Context) (*snapshot, error) {
	if snap := s.current.Load(); s.fresh(snap) {
		return snap, nil
	}

	s.buildMu.Lock()
	defer s.buildMu.Unlock()

	if snap := s.current.Load(); s.fresh(snap) {
		return snap, nil
	}
	return s.build(ctx)
}

// build loads the corpus and vectorizes it. Caller holds buildMu.
func (s *Service) build(ctx context.Context) (*snapshot, error) {
	// Read the generation first: a write landing mid-build leaves the result stale.
	gen := s.generation.Load()
	start := time.Now()

	docs, err := s.corpus.ListEligible(ctx)
	if err != nil {
		metrics.EngineBuildsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("load corpus: %w", err)
	}

	input := make([]engine.Document, len(docs))
	byID := make(map[string]domdoc.Document, len(docs))
	order := make([]string, len(docs))
	for i := range docs {
		input[i] = engine.Document{ID: docs[i].ID(), Title: docs[i].Title(), Body: docs[i].Body()}
		byID[docs[i].ID()] = docs[i]
		order[i] = docs[i].ID()
	}

	eng, err := engine.Build(input)
	if err != nil {
		metrics.EngineBuildsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("build engine: %w", err)
	}

	snap := &snapshot{engine: eng, docs: byID, order: order, builtAt: s.now(), generation: gen}
	s.current.Store(snap)

	duration := time.Since(start)
	terms := len(eng.Vocabulary())
	metrics.EngineBuildsTotal.WithLabelValues("ok").Inc()
	metrics.EngineBuildDuration.Observe(duration.Seconds())
	metrics.EngineCorpusDocuments.Set(float64(eng.Len()))
	metrics.EngineVocabularyTerms.Set(float64(terms))

	s.logger.Info("Content engine built",
		zap.Int("documents", eng.Len()),
		zap.Int("terms", terms),
		zap.Duration("duration", duration),
	)
	return snap, nil
}

func (snap *snapshot) resolve(matches []engine.Match) []recommendation.Result {
	results := make([]recommendation.Result, 0, len(matches))
	for _, m := range matches {
		results = append(results, recommendation.New(snap.docs[m.ID], m.Score))
	}
	return results
}

func (snap *snapshot) stats() Stats {
	return Stats{
		Documents: snap.engine.Len(),
		Terms:     len(snap.engine.Vocabulary()),
		BuiltAt:   snap.builtAt,
	}
}

func observeQuery(kind string, n int) {
	status := "ok"
	if n == 0 {
		status = "empty"
	}
	metrics.RecommendationQueriesTotal.WithLabelValues(kind, status).Inc()
}

// Ready reports whether a snapshot has been built at least once.
func (s *Service) Ready() bool {
	return s.current.Load() != nil
}
