package health

import "context"

// DBPinger checks database availability.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// EngineReadiness reports whether a content engine snapshot has been built.
type EngineReadiness interface {
	Ready() bool
}
