// Package config loads datastore settings from YAML or CUE files.
package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"gopkg.in/yaml.v3"

	"github.com/roach88/datastore/internal/store"
)

// Backend names.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// Config holds everything needed to open a Store.
type Config struct {
	StorageDir   string `yaml:"storage_dir"`
	Backend      string `yaml:"backend"`
	SQLitePath   string `yaml:"sqlite_path"`
	OwnerID      string `yaml:"owner_id"`
	ShardCount   int    `yaml:"shard_count"`
	AtomicWrites bool   `yaml:"atomic_writes"`
	LogLevel     string `yaml:"log_level"`
}

// Default returns the built-in settings. OwnerID has no default.
func Default() Config {
	return Config{
		StorageDir:   store.DefaultDir,
		Backend:      BackendFile,
		ShardCount:   1,
		AtomicWrites: true,
		LogLevel:     "info",
	}
}

//go:embed schema.cue
var cueSchema string

// Load reads path over Default(). The format is chosen by extension:
// .yaml/.yml or .cue. An empty path or a missing file returns Default().
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = decodeYAML(data, &cfg)
	case ".cue":
		err = decodeCUE(path, data, &cfg)
	default:
		return cfg, fmt.Errorf("unsupported config format %q", ext)
	}
	if err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func decodeYAML(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// decodeCUE unifies the file with the closed #Config schema, so unknown
// fields and out-of-range values fail with CUE positions.
func decodeCUE(path string, data []byte, cfg *Config) error {
	ctx := cuecontext.New()

	schema := ctx.CompileString(cueSchema).LookupPath(cue.ParsePath("#Config"))
	if err := schema.Err(); err != nil {
		return fmt.Errorf("config schema: %w", err)
	}

	v := ctx.CompileBytes(data, cue.Filename(path))
	if err := v.Err(); err != nil {
		return err
	}
	v = schema.Unify(v)
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return err
	}

	str := func(field string, dst *string) error {
		f, ok := lookup(v, field)
		if !ok {
			return nil
		}
		s, err := f.String()
		if err != nil {
			return fmt.Errorf("%s: %w", field, err)
		}
		*dst = s
		return nil
	}

	for field, dst := range map[string]*string{
		"storage_dir": &cfg.StorageDir,
		"backend":     &cfg.Backend,
		"sqlite_path": &cfg.SQLitePath,
		"owner_id":    &cfg.OwnerID,
		"log_level":   &cfg.LogLevel,
	} {
		if err := str(field, dst); err != nil {
			return err
		}
	}

	if f, ok := lookup(v, "shard_count"); ok {
		n, err := f.Int64()
		if err != nil {
			return fmt.Errorf("shard_count: %w", err)
		}
		cfg.ShardCount = int(n)
	}
	if f, ok := lookup(v, "atomic_writes"); ok {
		b, err := f.Bool()
		if err != nil {
			return fmt.Errorf("atomic_writes: %w", err)
		}
		cfg.AtomicWrites = b
	}
	return nil
}

// lookup returns field only when the file set it to a concrete value.
func lookup(v cue.Value, field string) (cue.Value, bool) {
	f := v.LookupPath(cue.ParsePath(field))
	return f, f.Exists() && f.IsConcrete()
}

// Validate checks the backend, log level and shard count. A shard count of 0
// is kept as is, since it names its own file.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendFile, BackendSQLite:
	default:
		return fmt.Errorf("unknown backend %q (want %q or %q)", c.Backend, BackendFile, BackendSQLite)
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.ShardCount < 0 {
		return fmt.Errorf("shard_count must not be negative, got %d", c.ShardCount)
	}
	if c.StorageDir == "" {
		c.StorageDir = store.DefaultDir
	}
	return nil
}

// ResolvedSQLitePath returns SQLitePath, or datastore.db under StorageDir.
func (c Config) ResolvedSQLitePath() string {
	if c.SQLitePath != "" {
		return c.SQLitePath
	}
	return filepath.Join(c.StorageDir, "datastore.db")
}

// Identity returns the store identity named by the config.
func (c Config) Identity() store.Identity {
	return store.Identity{OwnerID: c.OwnerID, ShardCount: c.ShardCount}
}

// ParseLevel maps debug|info|warn|error to a slog level. Empty means info.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}
