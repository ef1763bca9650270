package config

import (
	"context"
	"io"
	"log/slog"

	"github.com/roach88/datastore/internal/datastore"
	"github.com/roach88/datastore/internal/store"
)

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

// OpenBackend builds the backend named by cfg. The returned Closer releases
// the SQLite handle; it is a no-op for the file backend.
func OpenBackend(cfg Config, logger *slog.Logger) (store.Backend, io.Closer, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	switch cfg.Backend {
	case BackendSQLite:
		b, err := store.OpenSQLite(cfg.ResolvedSQLitePath(), store.WithSQLiteLogger(logger))
		if err != nil {
			return nil, nil, err
		}
		return b, b, nil
	default:
		b := store.NewFileBackend(cfg.StorageDir,
			store.WithAtomicWrites(cfg.AtomicWrites),
			store.WithFileLogger(logger),
		)
		return b, closerFunc(func() error { return nil }), nil
	}
}

// OpenStore opens the Store for cfg.Identity() on the configured backend.
// Callers must Close the returned Closer when done.
func OpenStore(ctx context.Context, cfg Config, logger *slog.Logger) (*datastore.Store, io.Closer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	backend, closer, err := OpenBackend(cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	opts := []datastore.Option{datastore.WithBackend(backend)}
	if logger != nil {
		opts = append(opts, datastore.WithLogger(logger))
	}

	s, err := datastore.Open(ctx, cfg.Identity(), opts...)
	if err != nil {
		_ = closer.Close()
		return nil, nil, err
	}
	return s, closer, nil
}
