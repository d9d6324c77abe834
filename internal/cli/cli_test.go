package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/binlid/internal/paths"
	"github.com/mesh-intelligence/binlid/pkg/binlid"
	"github.com/mesh-intelligence/binlid/pkg/types"
)

type cliEnv struct {
	configDir string
	dbPath    string
}

func setupCLI(t *testing.T) *cliEnv {
	t.Helper()
	dir := t.TempDir()
	t.Setenv(paths.EnvDB, "")
	t.Setenv(paths.EnvConfigDir, "")
	t.Setenv("BINLID_LOG_LEVEL", "")
	return &cliEnv{
		configDir: filepath.Join(dir, "config"),
		dbPath:    filepath.Join(dir, "binlid.db"),
	}
}

type result struct {
	stdout string
	stderr string
	code   int
}

func (e *cliEnv) run(t *testing.T, args ...string) result {
	t.Helper()
	var stdout, stderr bytes.Buffer
	full := append([]string{"--config-dir", e.configDir, "--db", e.dbPath}, args...)
	code := Run(full, &stdout, &stderr)
	return result{stdout: stdout.String(), stderr: stderr.String(), code: code}
}

func (e *cliEnv) mustRun(t *testing.T, args ...string) string {
	t.Helper()
	r := e.run(t, args...)
	require.Equal(t, exitSuccess, r.code, "stderr: %s", r.stderr)
	return r.stdout
}

func runJSON[T any](t *testing.T, e *cliEnv, args ...string) T {
	t.Helper()
	out := e.mustRun(t, append([]string{"--json"}, args...)...)
	var v T
	require.NoError(t, json.Unmarshal([]byte(out), &v), out)
	return v
}

func TestInit(t *testing.T) {
	e := setupCLI(t)

	out := e.mustRun(t, "init")
	assert.Contains(t, out, "BinLid initialized")
	assert.FileExists(t, e.dbPath)

	configPath := filepath.Join(e.configDir, configFileExt)
	data, err := os.ReadFile(configPath)
	require.NoError(t, err)
	var cfg configFile
	require.NoError(t, yaml.Unmarshal(data, &cfg))
	assert.Equal(t, defaultAddr, cfg.Addr)
	assert.Equal(t, e.dbPath, cfg.DBPath)

	// A second init leaves an edited config alone.
	require.NoError(t, os.WriteFile(configPath, []byte("addr: \":9999\"\n"), 0o644))
	e.mustRun(t, "init")
	data, err = os.ReadFile(configPath)
	require.NoError(t, err)
	assert.Equal(t, "addr: \":9999\"\n", string(data))
}

func TestVersion(t *testing.T) {
	e := setupCLI(t)
	out := e.mustRun(t, "version")
	assert.Contains(t, out, "binlid "+binlid.Version)
}

func TestSpaceCommands(t *testing.T) {
	e := setupCLI(t)

	out := e.mustRun(t, "add-space", "Cupboard under stairs", "Kitchen", "storage")
	assert.Contains(t, out, "Created space #1 Cupboard under stairs")

	out = e.mustRun(t, "add-space", "Cupboard under stairs")
	assert.Contains(t, out, "already exists (#1)")

	spaces := runJSON[[]types.Space](t, e, "list-spaces")
	require.Len(t, spaces, 1)
	assert.Equal(t, "Kitchen storage", spaces[0].Description)

	out = e.mustRun(t, "list-spaces")
	assert.Contains(t, out, "NAME")
	assert.Contains(t, out, "Cupboard under stairs")
}

func TestInventoryWorkflow(t *testing.T) {
	e := setupCLI(t)
	e.mustRun(t, "add-space", "Garage")
	e.mustRun(t, "add-space", "Attic")

	item := runJSON[types.ItemView](t, e, "add-item", "Bin lid", "--space", "Garage", "--location", "back left")
	assert.Equal(t, "Garage", item.SpaceName)
	assert.Equal(t, "back left", item.LocationWithinSpace)

	out := e.mustRun(t, "move", fmt.Sprint(item.ID), "--to", "Attic", "--note", "spring clean")
	assert.Contains(t, out, "Garage -> Attic")

	history := runJSON[[]types.Move](t, e, "history", fmt.Sprint(item.ID))
	require.Len(t, history, 1)
	assert.Equal(t, "spring clean", history[0].Note)

	out = e.mustRun(t, "history", fmt.Sprint(item.ID))
	assert.Contains(t, out, "Garage")
	assert.Contains(t, out, "Attic")

	found := runJSON[[]types.ItemView](t, e, "search", "bin", "lid")
	require.Len(t, found, 1)
	assert.Equal(t, "Attic", found[0].SpaceName)

	out = e.mustRun(t, "search", "nothing-like-this")
	assert.Contains(t, out, "No items found.")

	inAttic := runJSON[[]types.ItemView](t, e, "list-items", "--space", "Attic")
	require.Len(t, inAttic, 1)
	inGarage := runJSON[[]types.ItemView](t, e, "list-items", "--space", "Garage")
	assert.Empty(t, inGarage)

	dir := filepath.Join(t.TempDir(), "snapshot")
	e.mustRun(t, "export", dir)
	for _, name := range []string{"spaces.jsonl", "items.jsonl", "moves.jsonl"} {
		assert.FileExists(t, filepath.Join(dir, name))
	}

	restored := &cliEnv{configDir: e.configDir, dbPath: filepath.Join(t.TempDir(), "restored.db")}
	res := runJSON[types.ImportResult](t, restored, "import", dir)
	assert.Equal(t, types.ImportResult{Spaces: 2, Items: 1, Moves: 1}, res)
	history = runJSON[[]types.Move](t, restored, "history", fmt.Sprint(item.ID))
	require.Len(t, history, 1)
	assert.Equal(t, "spring clean", history[0].Note)

	// Importing over existing data is refused.
	r := e.run(t, "import", dir)
	assert.Equal(t, exitUserError, r.code)
	assert.Contains(t, r.stderr, "empty inventory")
}

func TestUserErrors(t *testing.T) {
	e := setupCLI(t)
	e.mustRun(t, "add-space", "Garage")

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"item in unknown space", []string{"add-item", "Bin lid", "--space", "Nowhere"}, "not found"},
		{"item without space flag", []string{"add-item", "Bin lid"}, "space"},
		{"move unknown item", []string{"move", "99", "--to", "Garage"}, "not found"},
		{"move to unknown space", []string{"move", "1", "--to", "Nowhere"}, "not found"},
		{"bad item id", []string{"move", "abc", "--to", "Garage"}, "invalid input"},
		{"history of unknown item", []string{"history", "5"}, "not found"},
		{"blank space name", []string{"add-space", "  "}, "invalid input"},
		{"unknown command", []string{"frobnicate"}, "unknown command"},
		{"bad log level", []string{"--log-level", "chatty", "list-spaces"}, "chatty"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := e.run(t, tt.args...)
			assert.Equal(t, exitUserError, r.code)
			assert.Contains(t, r.stderr, tt.want)
		})
	}
}

func TestStorageFailureExitCode(t *testing.T) {
	e := setupCLI(t)
	blocker := filepath.Join(t.TempDir(), "blocker")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))
	e.dbPath = filepath.Join(blocker, "binlid.db")

	r := e.run(t, "list-spaces")
	assert.Equal(t, exitSysError, r.code, r.stderr)
}

func TestDBPathFromConfig(t *testing.T) {
	e := setupCLI(t)
	custom := filepath.Join(t.TempDir(), "custom.db")
	require.NoError(t, os.MkdirAll(e.configDir, 0o755))
	require.NoError(t, os.WriteFile(
		filepath.Join(e.configDir, configFileExt),
		[]byte("db_path: "+custom+"\n"), 0o644))

	var stdout, stderr bytes.Buffer
	code := Run([]string{"--config-dir", e.configDir, "add-space", "Garage"}, &stdout, &stderr)
	require.Equal(t, exitSuccess, code, stderr.String())
	assert.FileExists(t, custom)
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"success", nil, exitSuccess},
		{"not found", fmt.Errorf("item 3: %w", types.ErrNotFound), exitUserError},
		{"integrity", fmt.Errorf("move: %w", types.ErrReferentialIntegrity), exitUserError},
		{"usage", errors.New("accepts 1 arg(s), received 0"), exitUserError},
		{"storage", fmt.Errorf("disk: %w", types.ErrStorageFailure), exitSysError},
		{"detached", types.ErrDetached, exitSysError},
		{"environment", systemErr(errors.New("read config")), exitSysError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, exitCode(tt.err))
		})
	}
}

func TestListenAddr(t *testing.T) {
	assert.Equal(t, ":3456", listenAddr(""))
	assert.Equal(t, ":8080", listenAddr("8080"))
	assert.Equal(t, "127.0.0.1:9000", listenAddr("127.0.0.1:9000"))
}

func TestLoadConfigEnv(t *testing.T) {
	dir := t.TempDir()

	t.Run("PORT feeds addr", func(t *testing.T) {
		t.Setenv("BINLID_ADDR", "")
		t.Setenv("PORT", "8081")
		v, err := loadConfig(dir)
		require.NoError(t, err)
		assert.Equal(t, ":8081", listenAddr(v.GetString(cfgKeyAddr)))
	})

	t.Run("defaults without file or env", func(t *testing.T) {
		t.Setenv("BINLID_ADDR", "")
		t.Setenv("PORT", "")
		v, err := loadConfig(dir)
		require.NoError(t, err)
		assert.Equal(t, defaultAddr, v.GetString(cfgKeyAddr))
		assert.Equal(t, 0, v.GetInt(cfgKeyRateLimit))
	})
}
