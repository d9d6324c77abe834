// Package paths resolves the configuration directory and database file
// locations used by the binlid commands.
package paths

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/mesh-intelligence/binlid/pkg/types"
)

// AppName names the per-user configuration directory.
const AppName = "binlid"

// DefaultDBFileName is the CWD-relative database file used when nothing
// else names one.
const DefaultDBFileName = "binlid.db"

// Environment variable names for location overrides.
const (
	EnvConfigDir = "BINLID_CONFIG_DIR"
	EnvDB        = "BINLID_DB"
)

// platformDir holds platform-detection functions that can be overridden in tests.
var platformDir = struct {
	homeDir       func() (string, error)
	userConfigDir func() (string, error)
}{
	homeDir:       os.UserHomeDir,
	userConfigDir: os.UserConfigDir,
}

// DefaultConfigDir returns the platform-specific default configuration directory.
//
// Linux:   $XDG_CONFIG_HOME/binlid (fallback ~/.config/binlid)
// macOS:   ~/Library/Application Support/binlid
// Windows: %APPDATA%/binlid
func DefaultConfigDir() (string, error) {
	if runtime.GOOS == "linux" {
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, AppName), nil
		}
		home, err := platformDir.homeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, ".config", AppName), nil
	}
	dir, err := platformDir.userConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, AppName), nil
}

// ResolveConfigDir returns the configuration directory following the
// precedence chain: flag > BINLID_CONFIG_DIR env > DefaultConfigDir().
func ResolveConfigDir(flag string) (string, error) {
	if flag != "" {
		return filepath.Abs(flag)
	}
	if env := os.Getenv(EnvConfigDir); env != "" {
		return filepath.Abs(env)
	}
	return DefaultConfigDir()
}

// ResolveDBPath returns the database file following the precedence chain:
// flag > config db_path > BINLID_DB env > $(CWD)/binlid.db.
//
// The in-memory path is returned unchanged from any source.
func ResolveDBPath(flag, configValue string) (string, error) {
	for _, p := range []string{flag, configValue, os.Getenv(EnvDB)} {
		if p == "" {
			continue
		}
		if p == types.MemoryPath {
			return p, nil
		}
		return filepath.Abs(p)
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(cwd, DefaultDBFileName), nil
}
