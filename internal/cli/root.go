package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/datastore/internal/config"
	"github.com/roach88/datastore/internal/datastore"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigPath string

	// Overrides for config file values. Empty strings leave the config
	// alone; Shards applies only when ShardsSet, so 0 is a valid override.
	Dir       string
	Owner     string
	Shards    int
	ShardsSet bool
	Backend   string

	// Config and Logger are populated before any subcommand runs.
	Config config.Config
	Logger *slog.Logger
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the datastore CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "datastore",
		Short: "File-backed hierarchical key-value store",
		Long: `Read and write a per-identity JSON document addressed by dot-separated keys.

Each (owner, shards) pair names one document, stored as
<dir>/database-<shards>-<owner>.json or as a row in a SQLite database.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			opts.ShardsSet = cmd.Flags().Changed("shards")
			return opts.resolve(cmd.ErrOrStderr())
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "config file (.yaml, .yml or .cue)")
	cmd.PersistentFlags().StringVar(&opts.Dir, "dir", "", "storage directory (overrides config)")
	cmd.PersistentFlags().StringVar(&opts.Owner, "owner", "", "owner id (overrides config)")
	cmd.PersistentFlags().IntVar(&opts.Shards, "shards", 0, "shard count (overrides config)")
	cmd.PersistentFlags().StringVar(&opts.Backend, "backend", "", "storage backend: file|sqlite (overrides config)")

	// Add subcommands
	cmd.AddCommand(NewGetCommand(opts))
	cmd.AddCommand(NewSetCommand(opts))
	cmd.AddCommand(NewPushCommand(opts))
	cmd.AddCommand(NewDeleteCommand(opts))
	cmd.AddCommand(NewDumpCommand(opts))
	cmd.AddCommand(NewFiltersCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))

	return cmd
}

// resolve loads the config file, applies flag overrides and builds the
// logger.
func (o *RootOptions) resolve(logOut io.Writer) error {
	cfg, err := config.Load(o.ConfigPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load config", err)
	}

	if o.Dir != "" {
		cfg.StorageDir = o.Dir
	}
	if o.Owner != "" {
		cfg.OwnerID = o.Owner
	}
	if o.ShardsSet {
		cfg.ShardCount = o.Shards
	}
	if o.Backend != "" {
		cfg.Backend = o.Backend
	}
	if err := cfg.Validate(); err != nil {
		return WrapExitError(ExitCommandError, "invalid config", err)
	}

	level, _ := config.ParseLevel(cfg.LogLevel)
	if o.Verbose {
		level = slog.LevelDebug
	}
	o.Config = cfg
	o.Logger = slog.New(slog.NewTextHandler(logOut, &slog.HandlerOptions{Level: level}))
	return nil
}

// openStore opens the configured store. The caller must call the returned
// close function. Errors are returned unwrapped for OutputFormatter.Fail.
func (o *RootOptions) openStore(ctx context.Context) (*datastore.Store, func(), error) {
	if o.Config.OwnerID == "" {
		return nil, nil, fmt.Errorf("owner id is required (--owner or owner_id in config)")
	}

	s, closer, err := config.OpenStore(ctx, o.Config, o.Logger)
	if err != nil {
		return nil, nil, err
	}
	return s, func() {
		if err := closer.Close(); err != nil {
			o.Logger.Warn("close failed", "error", err)
		}
	}, nil
}

// formatter builds an OutputFormatter for cmd.
func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   o.Verbose,
	}
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
