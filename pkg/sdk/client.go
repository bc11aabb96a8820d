package newsrec

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/newsrec/internal/db"
	dbRedis "github.com/kailas-cloud/newsrec/internal/db/redis"
	"github.com/kailas-cloud/newsrec/internal/db/sqlite"
	domdoc "github.com/kailas-cloud/newsrec/internal/domain/document"
	dominter "github.com/kailas-cloud/newsrec/internal/domain/interaction"
	"github.com/kailas-cloud/newsrec/internal/domain/recommendation"
	documentrepo "github.com/kailas-cloud/newsrec/internal/repository/document"
	interactionrepo "github.com/kailas-cloud/newsrec/internal/repository/interaction"
	documentuc "github.com/kailas-cloud/newsrec/internal/usecase/document"
	healthuc "github.com/kailas-cloud/newsrec/internal/usecase/health"
	interactionuc "github.com/kailas-cloud/newsrec/internal/usecase/interaction"
	recommenduc "github.com/kailas-cloud/newsrec/internal/usecase/recommend"
)

const defaultReadinessTimeout = 10 * time.Second

// Internal interfaces, substituted in tests.
type documentUseCase interface {
	Upsert(ctx context.Context, doc *domdoc.Document) (bool, error)
	Import(ctx context.Context, docs []domdoc.Document) error
	Get(ctx context.Context, id string) (domdoc.Document, error)
	List(ctx context.Context) ([]domdoc.Document, error)
	ListByCategory(ctx context.Context, category string) ([]domdoc.Document, error)
	Delete(ctx context.Context, id string) error
}

type interactionUseCase interface {
	Record(ctx context.Context, in *dominter.Interaction) error
	List(ctx context.Context, userID string) ([]string, error)
	History(ctx context.Context, userID string) ([]dominter.Activity, error)
}

type recommendUseCase interface {
	Similar(ctx context.Context, id string, n int) ([]recommendation.Result, error)
	Recommend(ctx context.Context, userID string, n int) ([]recommendation.Result, error)
	Popular(ctx context.Context, n int) ([]recommendation.Result, error)
	Rebuild(ctx context.Context) (recommenduc.Stats, error)
	Current() (recommenduc.Stats, bool)
}

// Client is the newsrec SDK entry point.
type Client struct {
	store     db.Store
	docSvc    documentUseCase
	interSvc  interactionUseCase
	recSvc    recommendUseCase
	healthSvc healthUseCase
	obs       *observer
}

// New creates a newsrec Client and connects to the store.
// The provided context is used for the initial readiness check.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{}
	for _, o := range opts {
		o.apply(cfg)
	}

	if cfg.driver == "" {
		return nil, errors.New("newsrec: store required (use WithValkey, WithRedis, WithSQLite or WithMemory)")
	}

	store, err := createStore(cfg)
	if err != nil {
		return nil, err
	}

	if err := store.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("newsrec: database not ready: %w", err)
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		store.Close()
		return nil, err
	}
	return wireClient(store, cfg, obs), nil
}

func createStore(cfg *clientConfig) (db.Store, error) {
	switch cfg.driver {
	case "valkey", "redis":
		if len(cfg.addrs) == 0 || cfg.addrs[0] == "" {
			return nil, fmt.Errorf("newsrec: %s address required", cfg.driver)
		}
		s, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.addrs,
			Password: cfg.password,
		})
		if err != nil {
			return nil, fmt.Errorf("newsrec: create %s store: %w", cfg.driver, err)
		}
		return s, nil
	case "sqlite":
		if cfg.path == "" {
			return nil, errors.New("newsrec: sqlite path required")
		}
		s, err := sqlite.NewStore(cfg.path)
		if err != nil {
			return nil, fmt.Errorf("newsrec: create sqlite store: %w", err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("newsrec: unknown driver %q", cfg.driver)
	}
}

func wireClient(store db.Store, cfg *clientConfig, obs *observer) *Client {
	docRepo := documentrepo.New(store)
	interRepo := interactionrepo.New(store)

	// The SDK reports through slog; the engine's own zap logging stays silent.
	recSvc := recommenduc.New(docRepo, interRepo, zap.NewNop()).
		WithMaxAge(cfg.maxAge).
		WithLimits(cfg.defaultLimit, cfg.maxLimit)

	return &Client{
		store:     store,
		docSvc:    documentuc.New(docRepo, interRepo, recSvc),
		interSvc:  interactionuc.New(interRepo, docRepo),
		recSvc:    recSvc,
		healthSvc: healthuc.New(store, recSvc),
		obs:       obs,
	}
}

// Close releases all resources.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// Ping checks database connectivity.
func (c *Client) Ping(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("ping", start, err) }()

	if err = c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Documents returns the document service.
func (c *Client) Documents() *DocumentService {
	return &DocumentService{svc: c.docSvc, obs: c.obs}
}

// Interactions returns the interaction service.
func (c *Client) Interactions() *InteractionService {
	return &InteractionService{svc: c.interSvc, obs: c.obs}
}

// Similar returns up to n published documents most similar to the document id,
// best first. An unknown id yields no results. n <= 0 means the default limit.
func (c *Client) Similar(ctx context.Context, id string, n int) (out []Result, err error) {
	start := time.Now()
	defer func() { c.obs.observe("similar", start, err) }()

	results, err := c.recSvc.Similar(ctx, id, n)
	if err != nil {
		return nil, fmt.Errorf("similar: %w", err)
	}
	c.obs.observeResults("similar", len(results))
	return fromResults(results), nil
}

// Recommend returns up to n documents resembling what userID interacted with,
// excluding the documents the user already interacted with.
func (c *Client) Recommend(ctx context.Context, userID string, n int) (out []Result, err error) {
	start := time.Now()
	defer func() { c.obs.observe("recommend", start, err) }()

	results, err := c.recSvc.Recommend(ctx, userID, n)
	if err != nil {
		return nil, fmt.Errorf("recommend: %w", err)
	}
	c.obs.observeResults("recommend", len(results))
	return fromResults(results), nil
}

// Popular returns up to n published documents ranked by view count, newest first
// on ties. Use it for readers Recommend has nothing for. Result.Score is the view count.
func (c *Client) Popular(ctx context.Context, n int) (out []Result, err error) {
	start := time.Now()
	defer func() { c.obs.observe("popular", start, err) }()

	results, err := c.recSvc.Popular(ctx, n)
	if err != nil {
		return nil, fmt.Errorf("popular: %w", err)
	}
	c.obs.observeResults("popular", len(results))
	return fromResults(results), nil
}

// Rebuild rebuilds the engine snapshot from the stored corpus now.
func (c *Client) Rebuild(ctx context.Context) (stats EngineStats, err error) {
	start := time.Now()
	defer func() { c.obs.observe("rebuild", start, err) }()

	s, err := c.recSvc.Rebuild(ctx)
	if err != nil {
		return EngineStats{}, fmt.Errorf("rebuild: %w", err)
	}
	return fromStats(s), nil
}

// EngineStats describes the live snapshot. It reports false until the first
// query or Rebuild builds one.
func (c *Client) EngineStats() (EngineStats, bool) {
	s, ok := c.recSvc.Current()
	if !ok {
		return EngineStats{}, false
	}
	return fromStats(s), true
}

func fromResults(results []recommendation.Result) []Result {
	if len(results) == 0 {
		return nil
	}
	out := make([]Result, len(results))
	for i := range results {
		out[i] = Result{
			Document: fromInternalDocument(results[i].Document()),
			Score:    results[i].Score(),
		}
	}
	return out
}

func fromStats(s recommenduc.Stats) EngineStats {
	return EngineStats{Documents: s.Documents, Terms: s.Terms, BuiltAt: s.BuiltAt}
}
