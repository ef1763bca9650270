package datastore

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/roach88/datastore/internal/ir"
	"github.com/roach88/datastore/internal/keypath"
	"github.com/roach88/datastore/internal/store"
	"github.com/roach88/datastore/internal/tree"
)

// Store is a write-through document store for one identity.
//
// Thread-safety: all methods are safe for concurrent use. Operations on one
// Store are serialized; operations across Stores are not.
type Store struct {
	mu      sync.Mutex
	id      store.Identity
	backend store.Backend
	logger  *slog.Logger

	doc    ir.IRObject
	loaded bool
}

// Option configures a Store.
type Option func(*options)

type options struct {
	backend store.Backend
	dir     string
	logger  *slog.Logger
}

// WithBackend sets the persistence backend. It takes precedence over WithDir.
func WithBackend(b store.Backend) Option {
	return func(o *options) { o.backend = b }
}

// WithDir uses a FileBackend rooted at dir.
//
// Default: store.DefaultDir
func WithDir(dir string) Option {
	return func(o *options) { o.dir = dir }
}

// WithLogger sets the logger. Default: discard.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// Open validates id, builds the backend and loads the document.
// A missing backing file yields an empty, loaded store.
func Open(ctx context.Context, id store.Identity, opts ...Option) (*Store, error) {
	if err := id.Validate(); err != nil {
		return nil, fmt.Errorf("invalid identity: %w", err)
	}

	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if o.backend == nil {
		o.backend = store.NewFileBackend(o.dir, store.WithFileLogger(o.logger))
	}

	s := &Store{
		id:      id,
		backend: o.backend,
		logger:  o.logger.With("owner", id.OwnerID, "shards", id.ShardCount),
		doc:     ir.IRObject{},
	}
	if err := s.Fetch(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Identity returns the identity this store was opened with.
func (s *Store) Identity() store.Identity {
	return s.id
}

// Loaded reports whether the in-memory document reflects a successful load.
// It is false only after a failed Fetch.
func (s *Store) Loaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loaded
}

// Get returns a copy of the value at key, or nil if the path is absent.
// A stored JSON null is returned as ir.IRNull{}.
//
// Errors: EMPTY_KEY, or STORAGE_READ if the store is not loaded and the
// reload fails.
func (s *Store) Get(ctx context.Context, key string) (ir.IRValue, error) {
	segs, err := keypath.Resolve(key)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	v, ok := tree.Read(s.doc, segs)
	if !ok {
		return nil, nil
	}
	return ir.Clone(v), nil
}

// GetAs reads key and decodes it into T through JSON.
// The bool is false when the path is absent or holds null.
func GetAs[T any](ctx context.Context, s *Store, key string) (T, bool, error) {
	var out T

	v, err := s.Get(ctx, key)
	if err != nil {
		return out, false, err
	}
	if v == nil {
		return out, false, nil
	}
	if _, isNull := v.(ir.IRNull); isNull {
		return out, false, nil
	}

	data, err := ir.MarshalIRValue(v)
	if err != nil {
		return out, false, fmt.Errorf("encode %q: %w", key, err)
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return out, false, fmt.Errorf("decode %q into %T: %w", key, out, err)
	}
	return out, true, nil
}

// Set stores value at key, replacing any non-object intermediates, and saves.
// value may be an ir.IRValue or any Go value ir.FromGo accepts.
//
// Errors: EMPTY_KEY, STORAGE_WRITE.
func (s *Store) Set(ctx context.Context, key string, value any) error {
	segs, err := keypath.Resolve(key)
	if err != nil {
		return err
	}
	v, err := convert(key, value)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(ctx); err != nil {
		return err
	}
	tree.Write(s.doc, segs, v)
	return s.saveLocked(ctx, "set", key)
}

// Push appends value to the array at key, creating it if absent, and saves.
//
// Errors: EMPTY_KEY, NOT_AN_ARRAY, STORAGE_WRITE.
func (s *Store) Push(ctx context.Context, key string, value any) error {
	segs, err := keypath.Resolve(key)
	if err != nil {
		return err
	}
	v, err := convert(key, value)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(ctx); err != nil {
		return err
	}
	if err := tree.Append(s.doc, segs, key, v); err != nil {
		return err
	}
	return s.saveLocked(ctx, "push", key)
}

// Delete removes the value at key and reports whether anything was removed.
// Nothing is saved when the key was already absent.
//
// Errors: EMPTY_KEY, KEY_PATH_NOT_FOUND, STORAGE_WRITE.
func (s *Store) Delete(ctx context.Context, key string) (bool, error) {
	segs, err := keypath.Resolve(key)
	if err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(ctx); err != nil {
		return false, err
	}
	removed, err := tree.Remove(s.doc, segs, key)
	if err != nil || !removed {
		return false, err
	}
	if err := s.saveLocked(ctx, "delete", key); err != nil {
		return true, err
	}
	return true, nil
}

// Fetch discards the in-memory document and reloads it from the backend.
// On failure the store is marked not loaded and the next operation retries.
func (s *Store) Fetch(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fetchLocked(ctx)
}

// Snapshot returns a deep copy of the whole document.
func (s *Store) Snapshot() ir.IRObject {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ir.CloneObject(s.doc)
}

func (s *Store) ensureLoaded(ctx context.Context) error {
	if s.loaded {
		return nil
	}
	return s.fetchLocked(ctx)
}

func (s *Store) fetchLocked(ctx context.Context) error {
	doc, err := s.backend.Load(ctx, s.id)
	if err != nil {
		s.loaded = false
		s.logger.Warn("load failed", "error", err)
		return err
	}
	if doc == nil {
		doc = ir.IRObject{}
	}
	s.doc = doc
	s.loaded = true
	s.logger.Debug("loaded", "keys", len(doc))
	if paths := ir.AmbiguousKeys(doc); len(paths) > 0 {
		s.logger.Warn("keys differ only in unicode normalization", "paths", paths)
	}
	return nil
}

func (s *Store) saveLocked(ctx context.Context, op, key string) error {
	if err := s.backend.Save(ctx, s.id, s.doc); err != nil {
		// memory is now ahead of the backend
		s.logger.Warn("save failed", "op", op, "key", key, "error", err)
		return err
	}
	s.logger.Debug("saved", "op", op, "key", key)
	return nil
}

func convert(key string, value any) (ir.IRValue, error) {
	v, err := ir.FromGo(value)
	if err != nil {
		return nil, fmt.Errorf("value for %q: %w", key, err)
	}
	return ir.Clone(v), nil
}
