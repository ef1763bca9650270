package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/datastore/internal/ir"
)

func mustCanonical(t *testing.T, v ir.IRValue) []byte {
	t.Helper()
	data, err := ir.MarshalCanonical(v)
	require.NoError(t, err)
	return data
}

func storeArgs(dir string, args ...string) []string {
	return append([]string{"--dir", dir, "--owner", "bot"}, args...)
}

func TestSetGet_Text(t *testing.T) {
	dir := t.TempDir()

	out, _, err := execute(t, storeArgs(dir, "set", "guild.1.volume", "80")...)
	require.NoError(t, err)
	assert.Equal(t, "OK\n", out)

	out, _, err = execute(t, storeArgs(dir, "get", "guild.1")...)
	require.NoError(t, err)
	assert.Equal(t, "{\"volume\":80}\n", out)

	data, err := os.ReadFile(filepath.Join(dir, "database-1-bot.json"))
	require.NoError(t, err)
	assert.Equal(t, `{"guild":{"1":{"volume":80}}}`, string(data))
}

func TestSet_StringFlag(t *testing.T) {
	dir := t.TempDir()

	_, _, err := execute(t, storeArgs(dir, "set", "id", "0042", "--string")...)
	require.NoError(t, err)

	out, _, err := execute(t, storeArgs(dir, "get", "id")...)
	require.NoError(t, err)
	assert.Equal(t, "\"0042\"\n", out)
}

func TestGet_JSON(t *testing.T) {
	dir := t.TempDir()
	_, _, err := execute(t, storeArgs(dir, "set", "a.b", `["x"]`)...)
	require.NoError(t, err)

	out, _, err := execute(t, storeArgs(dir, "get", "a.b", "--format", "json")...)
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, map[string]any{"key": "a.b", "value": []any{"x"}}, resp.Data)
}

func TestGet_NotFound(t *testing.T) {
	dir := t.TempDir()

	_, errOut, err := execute(t, storeArgs(dir, "get", "missing")...)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, errOut, CodeNotFound)
}

func TestGet_EmptyKey(t *testing.T) {
	dir := t.TempDir()

	out, _, err := execute(t, storeArgs(dir, "get", "", "--format", "json")...)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, "EMPTY_KEY", resp.Error.Code)
}

func TestPush_CreatesAndRejects(t *testing.T) {
	dir := t.TempDir()

	_, _, err := execute(t, storeArgs(dir, "push", "queue", `{"title":"a"}`)...)
	require.NoError(t, err)
	_, _, err = execute(t, storeArgs(dir, "push", "queue", "b")...)
	require.NoError(t, err)

	out, _, err := execute(t, storeArgs(dir, "get", "queue")...)
	require.NoError(t, err)
	assert.Equal(t, "[{\"title\":\"a\"},\"b\"]\n", out)

	_, _, err = execute(t, storeArgs(dir, "set", "n", "1")...)
	require.NoError(t, err)
	_, errOut, err := execute(t, storeArgs(dir, "push", "n", "2")...)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, errOut, "NOT_AN_ARRAY")
}

func TestDelete(t *testing.T) {
	dir := t.TempDir()
	_, _, err := execute(t, storeArgs(dir, "set", "a.b", "1")...)
	require.NoError(t, err)

	out, _, err := execute(t, storeArgs(dir, "delete", "a.b")...)
	require.NoError(t, err)
	assert.Equal(t, "true\n", out)

	out, _, err = execute(t, storeArgs(dir, "delete", "a.b", "--format", "json")...)
	require.NoError(t, err)
	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, map[string]any{"key": "a.b", "deleted": false}, resp.Data)

	_, _, err = execute(t, storeArgs(dir, "delete", "x.y")...)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
}

func TestDump(t *testing.T) {
	dir := t.TempDir()
	_, _, err := execute(t, storeArgs(dir, "set", "b", "2")...)
	require.NoError(t, err)
	_, _, err = execute(t, storeArgs(dir, "set", "a", "1")...)
	require.NoError(t, err)

	out, _, err := execute(t, storeArgs(dir, "dump")...)
	require.NoError(t, err)
	assert.Equal(t, "{\"a\":1,\"b\":2}\n", out)
}

func TestStore_ShardsSelectFile(t *testing.T) {
	dir := t.TempDir()
	_, _, err := execute(t, storeArgs(dir, "set", "k", "v", "--shards", "4")...)
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(dir, "database-4-bot.json"))
	assert.NoError(t, err)
}

func TestStore_ZeroShardsOverridesConfig(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(t.TempDir(), "datastore.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("shard_count: 3\n"), 0o644))

	_, _, err := execute(t, storeArgs(dir, "set", "k", "v", "--config", cfgPath, "--shards", "0")...)
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(dir, "database-0-bot.json"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "database-3-bot.json"))
	assert.True(t, os.IsNotExist(err))
}

func TestStore_NegativeShardsRejected(t *testing.T) {
	dir := t.TempDir()
	_, _, err := execute(t, storeArgs(dir, "set", "k", "v", "--shards=-1")...)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "shard_count must not be negative")

	entries, _ := os.ReadDir(dir)
	assert.Empty(t, entries)
}

func TestStore_SQLiteBackend(t *testing.T) {
	dir := t.TempDir()
	_, _, err := execute(t, storeArgs(dir, "set", "k", "1", "--backend", "sqlite")...)
	require.NoError(t, err)

	out, _, err := execute(t, storeArgs(dir, "get", "k", "--backend", "sqlite")...)
	require.NoError(t, err)
	assert.Equal(t, "1\n", out)

	_, err = os.Stat(filepath.Join(dir, "datastore.db"))
	assert.NoError(t, err)
}

func TestStore_MissingOwner(t *testing.T) {
	_, _, err := execute(t, "--dir", t.TempDir(), "dump")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "owner id is required")
}

func TestStore_CorruptFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "database-1-bot.json"), []byte("{"), 0o644))

	_, errOut, err := execute(t, storeArgs(dir, "dump")...)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, errOut, "STORAGE_READ")
}
