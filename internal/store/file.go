package store

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/roach88/datastore/internal/dberr"
	"github.com/roach88/datastore/internal/ir"
)

// DefaultDir is the storage directory used when none is configured.
const DefaultDir = "datastore"

// FileBackend stores each identity's document as a canonical JSON file in Dir.
type FileBackend struct {
	// Dir is created (with parents) before every read and write.
	Dir string

	// Atomic writes through a temp file plus rename.
	Atomic bool

	// TempNamer names temp files. Nil means UUIDTempNamer.
	TempNamer TempNamer

	Logger *slog.Logger
}

// FileOption configures a FileBackend.
type FileOption func(*FileBackend)

// WithAtomicWrites toggles temp-file-and-rename writes.
func WithAtomicWrites(atomic bool) FileOption {
	return func(b *FileBackend) { b.Atomic = atomic }
}

// WithTempNamer overrides the temp file name generator (for tests).
func WithTempNamer(n TempNamer) FileOption {
	return func(b *FileBackend) { b.TempNamer = n }
}

// WithFileLogger sets the logger.
func WithFileLogger(l *slog.Logger) FileOption {
	return func(b *FileBackend) { b.Logger = l }
}

// NewFileBackend creates a file backend rooted at dir. An empty dir means
// DefaultDir. Atomic writes are on by default.
func NewFileBackend(dir string, opts ...FileOption) *FileBackend {
	if dir == "" {
		dir = DefaultDir
	}
	b := &FileBackend{Dir: dir, Atomic: true}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Path returns the backing file path for id.
func (b *FileBackend) Path(id Identity) string {
	return filepath.Join(b.Dir, id.FileName())
}

// Load reads and parses the backing file. A missing file is an empty document.
func (b *FileBackend) Load(ctx context.Context, id Identity) (ir.IRObject, error) {
	path := b.Path(id)
	if err := ctx.Err(); err != nil {
		return nil, dberr.StorageRead(path, err)
	}
	if err := b.ensureDir(); err != nil {
		return nil, dberr.StorageRead(path, err)
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		b.logger().Debug("no backing file, starting empty", "owner", id.OwnerID, "shards", id.ShardCount, "path", path)
		return ir.IRObject{}, nil
	}
	if err != nil {
		return nil, dberr.StorageRead(path, err)
	}

	doc, err := decodeDocument(data)
	if err != nil {
		return nil, dberr.StorageRead(path, err)
	}

	b.logger().Debug("document loaded", "owner", id.OwnerID, "shards", id.ShardCount, "path", path, "bytes", len(data))
	return doc, nil
}

// Save serializes doc and replaces the backing file.
func (b *FileBackend) Save(ctx context.Context, id Identity, doc ir.IRObject) error {
	path := b.Path(id)
	if err := ctx.Err(); err != nil {
		return dberr.StorageWrite(path, err)
	}
	if err := b.ensureDir(); err != nil {
		return dberr.StorageWrite(path, err)
	}

	data, err := encodeDocument(doc)
	if err != nil {
		return dberr.StorageWrite(path, err)
	}

	if b.Atomic {
		err = b.writeAtomic(path, data)
	} else {
		err = os.WriteFile(path, data, 0o644)
	}
	if err != nil {
		return dberr.StorageWrite(path, err)
	}

	b.logger().Debug("document saved", "owner", id.OwnerID, "shards", id.ShardCount, "path", path, "bytes", len(data), "atomic", b.Atomic)
	return nil
}

// writeAtomic writes data to a hidden sibling and renames it over path.
// The temp file lives in the same directory so the rename stays on one
// filesystem.
func (b *FileBackend) writeAtomic(path string, data []byte) error {
	tmp := filepath.Join(filepath.Dir(path), "."+filepath.Base(path)+"."+b.tempNamer().Generate()+".tmp")

	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}

func (b *FileBackend) ensureDir() error {
	return os.MkdirAll(b.Dir, 0o755)
}

func (b *FileBackend) tempNamer() TempNamer {
	if b.TempNamer != nil {
		return b.TempNamer
	}
	return UUIDTempNamer{}
}

func (b *FileBackend) logger() *slog.Logger {
	if b.Logger != nil {
		return b.Logger
	}
	return discardLogger
}

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))
