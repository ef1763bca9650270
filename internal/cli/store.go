package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/datastore/internal/ir"
)

// ValueOptions holds flags shared by set and push.
type ValueOptions struct {
	*RootOptions
	String bool // store the argument verbatim as a string
}

// GetResult is the JSON payload of the get command.
type GetResult struct {
	Key   string     `json:"key"`
	Value ir.IRValue `json:"value"`
}

// DeleteResult is the JSON payload of the delete command.
type DeleteResult struct {
	Key     string `json:"key"`
	Deleted bool   `json:"deleted"`
}

// NewGetCommand creates the get command.
func NewGetCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Print the value at a key",
		Long: `Print the value stored at a dot-separated key as JSON.

Exits with code 1 if nothing is stored at the key.

Examples:
  datastore get --owner bot guild.123.prefix
  datastore get --owner bot guild.123 --format json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f := rootOpts.formatter(cmd)
			s, done, err := rootOpts.openStore(cmd.Context())
			if err != nil {
				return f.Fail("failed to open store", err)
			}
			defer done()

			key := args[0]
			v, err := s.Get(cmd.Context(), key)
			if err != nil {
				return f.Fail("get failed", err)
			}
			if v == nil {
				msg := fmt.Sprintf("key %q not found", key)
				if err := f.Error(CodeNotFound, msg, nil); err != nil {
					return err
				}
				return NewExitError(ExitFailure, msg)
			}

			if f.Format == "json" {
				return f.Success(GetResult{Key: key, Value: v})
			}
			return f.Success(v)
		},
	}
}

// NewSetCommand creates the set command.
func NewSetCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValueOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Store a value at a key",
		Long: `Store a value at a dot-separated key, creating intermediate objects.

The value is parsed as JSON; anything that is not valid JSON is stored as a
string. Use --string to always store the argument as a string.

Examples:
  datastore set --owner bot guild.123.prefix '"!"'
  datastore set --owner bot guild.123.volume 80
  datastore set --owner bot guild.123.roles '["dj","admin"]'
  datastore set --owner bot guild.123.id 0042 --string`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMutation(opts, cmd, "set", args[0], args[1])
		},
	}
	cmd.Flags().BoolVarP(&opts.String, "string", "s", false, "store the value as a string without JSON parsing")
	return cmd
}

// NewPushCommand creates the push command.
func NewPushCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValueOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "push <key> <value>",
		Short: "Append a value to the array at a key",
		Long: `Append a value to the array at a key, creating the array if absent.

Fails with NOT_AN_ARRAY if the key holds anything other than an array.

Examples:
  datastore push --owner bot guild.123.queue '{"title":"song"}'`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMutation(opts, cmd, "push", args[0], args[1])
		},
	}
	cmd.Flags().BoolVarP(&opts.String, "string", "s", false, "push the value as a string without JSON parsing")
	return cmd
}

func runMutation(opts *ValueOptions, cmd *cobra.Command, op, key, raw string) error {
	f := opts.formatter(cmd)
	ctx := cmd.Context()

	value := parseValue(raw, opts.String)

	s, done, err := opts.openStore(ctx)
	if err != nil {
		return f.Fail("failed to open store", err)
	}
	defer done()

	switch op {
	case "push":
		err = s.Push(ctx, key, value)
	default:
		err = s.Set(ctx, key, value)
	}
	if err != nil {
		return f.Fail(op+" failed", err)
	}

	f.VerboseLog("%s %s on %s", op, key, s.Identity())
	if f.Format == "json" {
		return f.Success(GetResult{Key: key, Value: value})
	}
	return f.Success("OK")
}

// NewDeleteCommand creates the delete command.
func NewDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <key>",
		Short: "Remove the value at a key",
		Long: `Remove the value at a key and print whether anything was removed.

Fails with KEY_PATH_NOT_FOUND if an intermediate key is missing or is not an
object.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f := rootOpts.formatter(cmd)
			s, done, err := rootOpts.openStore(cmd.Context())
			if err != nil {
				return f.Fail("failed to open store", err)
			}
			defer done()

			deleted, err := s.Delete(cmd.Context(), args[0])
			if err != nil {
				return f.Fail("delete failed", err)
			}
			if f.Format == "json" {
				return f.Success(DeleteResult{Key: args[0], Deleted: deleted})
			}
			return f.Success(deleted)
		},
	}
}

// NewDumpCommand creates the dump command.
func NewDumpCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "dump",
		Short: "Print the whole document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := rootOpts.formatter(cmd)
			s, done, err := rootOpts.openStore(cmd.Context())
			if err != nil {
				return f.Fail("failed to open store", err)
			}
			defer done()

			return f.Success(s.Snapshot())
		},
	}
}

// parseValue parses raw as JSON, falling back to a plain string.
func parseValue(raw string, asString bool) ir.IRValue {
	if asString {
		return ir.IRString(raw)
	}
	v, err := ir.UnmarshalIRValue([]byte(raw))
	if err != nil {
		return ir.IRString(raw)
	}
	return v
}
