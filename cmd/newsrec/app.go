package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/newsrec/internal/config"
	"github.com/kailas-cloud/newsrec/internal/corpus"
	"github.com/kailas-cloud/newsrec/internal/db"
	dbRedis "github.com/kailas-cloud/newsrec/internal/db/redis"
	"github.com/kailas-cloud/newsrec/internal/db/sqlite"
	documentrepo "github.com/kailas-cloud/newsrec/internal/repository/document"
	interactionrepo "github.com/kailas-cloud/newsrec/internal/repository/interaction"
	documentuc "github.com/kailas-cloud/newsrec/internal/usecase/document"
	healthuc "github.com/kailas-cloud/newsrec/internal/usecase/health"
	interactionuc "github.com/kailas-cloud/newsrec/internal/usecase/interaction"
	recommenduc "github.com/kailas-cloud/newsrec/internal/usecase/recommend"
)

// app is the composition root shared by every command.
type app struct {
	store        db.Store
	documents    *documentuc.Service
	interactions *interactionuc.Service
	recommend    *recommenduc.Service
	health       *healthuc.Service
}

func newApp(store db.Store, engineCfg config.EngineConfig, logger *zap.Logger) *app {
	docRepo := documentrepo.New(store)
	interRepo := interactionrepo.New(store)

	recSvc := recommenduc.New(docRepo, interRepo, logger).
		WithMaxAge(engineCfg.MaxAge()).
		WithLimits(engineCfg.DefaultLimit, engineCfg.MaxLimit)

	return &app{
		store:        store,
		documents:    documentuc.New(docRepo, interRepo, recSvc),
		interactions: interactionuc.New(interRepo, docRepo),
		recommend:    recSvc,
		health:       healthuc.New(store, recSvc),
	}
}

// openStore creates the store selected by the database driver.
func openStore(cfg config.DatabaseConfig) (db.Store, error) {
	switch cfg.Driver {
	case "valkey", "redis":
		s, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Addrs,
			Username: cfg.Username,
			Password: cfg.Password,
			DB:       cfg.DB,
		})
		if err != nil {
			return nil, fmt.Errorf("create %s store: %w", cfg.Driver, err)
		}
		return s, nil
	case "sqlite":
		s, err := sqlite.NewStore(cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("create sqlite store: %w", err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
}

// importCorpus writes every document and interaction of f through the use cases.
func (a *app) importCorpus(ctx context.Context, f *corpus.File) (docs, interactions int, err error) {
	dd, err := f.DomainDocuments()
	if err != nil {
		return 0, 0, err
	}
	ii, err := f.DomainInteractions()
	if err != nil {
		return 0, 0, err
	}

	if err := a.documents.Import(ctx, dd); err != nil {
		return 0, 0, err
	}
	for i := range ii {
		if err := a.interactions.Record(ctx, &ii[i]); err != nil {
			return len(dd), i, fmt.Errorf("interactions[%d]: %w", i, err)
		}
	}
	return len(dd), len(ii), nil
}
