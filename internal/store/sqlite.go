package store

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/roach88/datastore/internal/dberr"
	"github.com/roach88/datastore/internal/ir"
)

//go:embed schema.sql
var schemaSQL string

// Schema version tracking:
// 0 - Initial schema (pre-migration)
// 1 - Added index on documents.owner_id
const currentSchemaVersion = 1

// SQLiteBackend stores each identity's document as one row.
// Uses SQLite with WAL mode for concurrent read access.
type SQLiteBackend struct {
	db     *sql.DB
	path   string
	logger *slog.Logger
}

// SQLiteOption configures a SQLiteBackend.
type SQLiteOption func(*SQLiteBackend)

// WithSQLiteLogger sets the logger.
func WithSQLiteLogger(l *slog.Logger) SQLiteOption {
	return func(b *SQLiteBackend) { b.logger = l }
}

// OpenSQLite creates or opens a SQLite database at the given path.
// Applies required pragmas and migrations automatically. The parent
// directory is created unless path is ":memory:".
//
// The database is configured with:
//   - WAL mode for concurrent reads during writes
//   - NORMAL synchronous mode (balance durability/performance)
//   - 5-second busy timeout for lock contention
//
// This function is idempotent - safe to call multiple times.
func OpenSQLite(path string, opts ...SQLiteOption) (*SQLiteBackend, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite only supports one writer at a time, so limit connections
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	if err := applySchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	b := &SQLiteBackend{db: db, path: path, logger: discardLogger}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

// Close closes the database connection.
func (b *SQLiteBackend) Close() error {
	if b.db == nil {
		return nil
	}
	return b.db.Close()
}

// DB returns the underlying sql.DB for direct queries.
// Use with caution - prefer using backend methods when available.
func (b *SQLiteBackend) DB() *sql.DB {
	return b.db
}

// Load returns the stored document for id, or an empty one if no row exists.
func (b *SQLiteBackend) Load(ctx context.Context, id Identity) (ir.IRObject, error) {
	name := id.FileName()

	var body string
	err := b.db.QueryRowContext(ctx, `SELECT body FROM documents WHERE name = ?`, name).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		b.logger.Debug("no document row, starting empty", "owner", id.OwnerID, "shards", id.ShardCount, "name", name)
		return ir.IRObject{}, nil
	}
	if err != nil {
		return nil, dberr.StorageRead(b.rowPath(name), err)
	}

	doc, err := decodeDocument([]byte(body))
	if err != nil {
		return nil, dberr.StorageRead(b.rowPath(name), err)
	}

	b.logger.Debug("document loaded", "owner", id.OwnerID, "shards", id.ShardCount, "name", name, "bytes", len(body))
	return doc, nil
}

// Save upserts the document for id and bumps its revision.
func (b *SQLiteBackend) Save(ctx context.Context, id Identity, doc ir.IRObject) error {
	name := id.FileName()

	data, err := encodeDocument(doc)
	if err != nil {
		return dberr.StorageWrite(b.rowPath(name), err)
	}

	_, err = b.db.ExecContext(ctx, `
		INSERT INTO documents (name, owner_id, shard_count, body, revision)
		VALUES (?, ?, ?, ?, 1)
		ON CONFLICT(name) DO UPDATE SET
			body = excluded.body,
			revision = documents.revision + 1
	`, name, id.OwnerID, id.ShardCount, string(data))
	if err != nil {
		return dberr.StorageWrite(b.rowPath(name), err)
	}

	b.logger.Debug("document saved", "owner", id.OwnerID, "shards", id.ShardCount, "name", name, "bytes", len(data))
	return nil
}

// Revision returns how many times the document for id has been saved,
// or 0 if it never was.
func (b *SQLiteBackend) Revision(ctx context.Context, id Identity) (int64, error) {
	var rev int64
	err := b.db.QueryRowContext(ctx, `SELECT revision FROM documents WHERE name = ?`, id.FileName()).Scan(&rev)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("query revision: %w", err)
	}
	return rev, nil
}

// Shards lists the identities stored for ownerID, ordered by shard count.
func (b *SQLiteBackend) Shards(ctx context.Context, ownerID string) ([]Identity, error) {
	rows, err := b.db.QueryContext(ctx, `
		SELECT shard_count FROM documents
		WHERE owner_id = ?
		ORDER BY shard_count ASC
	`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("query shards: %w", err)
	}
	defer rows.Close()

	var ids []Identity
	for rows.Next() {
		var shards int
		if err := rows.Scan(&shards); err != nil {
			return nil, fmt.Errorf("scan shard: %w", err)
		}
		ids = append(ids, Identity{OwnerID: ownerID, ShardCount: shards})
	}
	return ids, rows.Err()
}

// rowPath names a row in error messages.
func (b *SQLiteBackend) rowPath(name string) string {
	return b.path + "#" + name
}

// applyPragmas sets required SQLite configuration.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	return nil
}

// applySchema creates tables if they don't exist and runs migrations.
// This function is idempotent.
func applySchema(db *sql.DB) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}

	if err := runMigrations(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

// runMigrations applies incremental schema migrations based on user_version.
func runMigrations(db *sql.DB) error {
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("get user_version: %w", err)
	}

	if version < 1 {
		if err := migrateToV1(db); err != nil {
			return err
		}
	}

	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}

	return nil
}

// migrateToV1 indexes owner_id so all shards of one owner can be listed.
func migrateToV1(db *sql.DB) error {
	_, err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_documents_owner ON documents(owner_id)`)
	if err != nil {
		return fmt.Errorf("migrate to v1: %w", err)
	}
	return nil
}

// verifyPragma checks that a pragma is set to the expected value.
// Used for testing.
func (b *SQLiteBackend) verifyPragma(name, expected string) error {
	var value string
	if err := b.db.QueryRow(fmt.Sprintf("PRAGMA %s", name)).Scan(&value); err != nil {
		return fmt.Errorf("failed to query %s: %w", name, err)
	}
	if value != expected {
		return fmt.Errorf("%s = %q, expected %q", name, value, expected)
	}
	return nil
}
