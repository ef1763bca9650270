package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/datastore/internal/filters"
	"github.com/roach88/datastore/internal/ir"
)

// FiltersResult is the JSON payload of the filters command.
type FiltersResult struct {
	Guild   string          `json:"guild"`
	Payload filters.Payload `json:"payload"`
}

// NewFiltersCommand creates the filters command.
func NewFiltersCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "filters <guild> <preset|clear|show>",
		Short: "Apply an audio filter preset for a guild",
		Long: fmt.Sprintf(`Apply a named audio filter preset on top of the guild's stored filters.

The resulting payload is stored under filters.<guild>. "clear" resets every
filter and "show" prints the stored payload without changing it.

Presets: %v

Examples:
  datastore filters --owner bot 123 nightcore
  datastore filters --owner bot 123 clear`, filters.Names()),
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			f := rootOpts.formatter(cmd)
			ctx := cmd.Context()
			guild, action := args[0], args[1]

			var preset filters.Name
			if action != "clear" && action != "show" {
				n, err := filters.ParseName(action)
				if err != nil {
					return WrapExitError(ExitCommandError, "invalid preset", err)
				}
				preset = n
			}

			s, done, err := rootOpts.openStore(ctx)
			if err != nil {
				return f.Fail("failed to open store", err)
			}
			defer done()

			applier := filters.NewStoreApplier(s)
			stored, ok, err := applier.Load(ctx, guild)
			if err != nil {
				return f.Fail("failed to load filters", err)
			}

			fxOpts := []filters.Option{filters.WithLogger(rootOpts.Logger)}
			if ok {
				fxOpts = append(fxOpts, filters.WithState(stored))
			}
			fx := filters.New(guild, applier, fxOpts...)

			switch action {
			case "show":
			case "clear":
				err = fx.Clear(ctx)
			default:
				err = fx.Preset(ctx, preset)
			}
			if err != nil {
				return f.Fail("failed to apply filters", err)
			}

			if f.Format == "json" {
				return f.Success(FiltersResult{Guild: guild, Payload: fx.Payload()})
			}
			v, err := ir.FromGo(fx.Payload())
			if err != nil {
				return f.Fail("failed to render filters", err)
			}
			return f.Success(v)
		},
	}
}
