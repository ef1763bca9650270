package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/datastore/internal/config"
)

// execute runs the root command with args and returns stdout and stderr.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}

	cmd := NewRootCommand()
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "datastore", cmd.Use)
	assert.Contains(t, cmd.Long, "database-<shards>-<owner>.json")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := []string{"get", "set", "push", "delete", "dump", "filters", "test"}

	for _, cmdName := range commands {
		t.Run(cmdName, func(t *testing.T) {
			subCmd, _, err := cmd.Find([]string{cmdName})
			require.NoError(t, err, "Command %s should exist", cmdName)
			require.NotNil(t, subCmd)
			assert.Equal(t, cmdName, subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)

	for _, name := range []string{"config", "dir", "owner", "shards", "backend"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(name), name)
	}
}

func TestInvalidFormat(t *testing.T) {
	_, _, err := execute(t, "dump", "--format", "xml", "--owner", "x", "--dir", t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestResolve_FlagsOverrideConfig(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "datastore.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("owner_id: from-config\nshard_count: 2\nstorage_dir: cfgdir\n"), 0o644))

	opts := &RootOptions{ConfigPath: cfgPath, Owner: "from-flag", Dir: "flagdir"}
	require.NoError(t, opts.resolve(&bytes.Buffer{}))

	assert.Equal(t, "from-flag", opts.Config.OwnerID)
	assert.Equal(t, 2, opts.Config.ShardCount)
	assert.Equal(t, "flagdir", opts.Config.StorageDir)
	assert.Equal(t, config.BackendFile, opts.Config.Backend)
	require.NotNil(t, opts.Logger)
}

func TestResolve_ShardsOverrideOnlyWhenSet(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "datastore.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("shard_count: 2\n"), 0o644))

	opts := &RootOptions{ConfigPath: cfgPath}
	require.NoError(t, opts.resolve(&bytes.Buffer{}))
	assert.Equal(t, 2, opts.Config.ShardCount)

	opts = &RootOptions{ConfigPath: cfgPath, Shards: 0, ShardsSet: true}
	require.NoError(t, opts.resolve(&bytes.Buffer{}))
	assert.Equal(t, 0, opts.Config.ShardCount)
}

func TestResolve_InvalidBackend(t *testing.T) {
	opts := &RootOptions{Backend: "redis"}
	err := opts.resolve(&bytes.Buffer{})
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestResolve_BadConfigFile(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "datastore.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("nope: 1\n"), 0o644))

	opts := &RootOptions{ConfigPath: cfgPath}
	err := opts.resolve(&bytes.Buffer{})
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestParseValue(t *testing.T) {
	assert.Equal(t, "80", string(mustCanonical(t, parseValue("80", false))))
	assert.Equal(t, `"!"`, string(mustCanonical(t, parseValue(`"!"`, false))))
	assert.Equal(t, `"hello world"`, string(mustCanonical(t, parseValue("hello world", false))))
	assert.Equal(t, `{"a":[1,true,null]}`, string(mustCanonical(t, parseValue(`{"a":[1,true,null]}`, false))))
	assert.Equal(t, `"0042"`, string(mustCanonical(t, parseValue("0042", true))))
	assert.Equal(t, `"1 2"`, string(mustCanonical(t, parseValue("1 2", false))))
}
