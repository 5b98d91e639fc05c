// Package paths resolves where the refcache CLI keeps its config file and
// its JSONL snapshot.
package paths

import (
	"os"
	"path/filepath"
	"runtime"
)

// appName is the directory name used under platform config/data roots.
const appName = "refcache"

// ConfigFileName is the config file looked up in the config directory.
const ConfigFileName = "config.yaml"

// DefaultDataDirName is the CWD-relative data directory used when nothing
// else is configured.
const DefaultDataDirName = ".refcache-db"

// Environment variable names for directory overrides.
const (
	EnvConfigDir = "REFCACHE_CONFIG_DIR"
	EnvDataDir   = "REFCACHE_DATA_DIR"
)

// platformDir holds platform lookups that tests override.
var platformDir = struct {
	goos          string
	homeDir       func() (string, error)
	userConfigDir func() (string, error)
}{
	goos:          runtime.GOOS,
	homeDir:       os.UserHomeDir,
	userConfigDir: os.UserConfigDir,
}

// xdgDir returns $xdgEnv/refcache on Linux, falling back to
// ~/<fallback...>/refcache. Other platforms use os.UserConfigDir.
func xdgDir(xdgEnv string, fallback ...string) (string, error) {
	if platformDir.goos != "linux" {
		dir, err := platformDir.userConfigDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(dir, appName), nil
	}
	if xdg := os.Getenv(xdgEnv); xdg != "" {
		return filepath.Join(xdg, appName), nil
	}
	home, err := platformDir.homeDir()
	if err != nil {
		return "", err
	}
	parts := append([]string{home}, fallback...)
	return filepath.Join(append(parts, appName)...), nil
}

// DefaultConfigDir returns the platform default configuration directory.
//
// Linux:   $XDG_CONFIG_HOME/refcache (fallback ~/.config/refcache)
// macOS:   ~/Library/Application Support/refcache
// Windows: %APPDATA%/refcache
func DefaultConfigDir() (string, error) {
	return xdgDir("XDG_CONFIG_HOME", ".config")
}

// DefaultDataDir returns the platform data directory. It is not part of the
// ResolveDataDir chain; `refcache init` prints it as an alternative.
//
// Linux:   $XDG_DATA_HOME/refcache (fallback ~/.local/share/refcache)
// macOS and Windows: same as DefaultConfigDir.
func DefaultDataDir() (string, error) {
	return xdgDir("XDG_DATA_HOME", ".local", "share")
}

// ResolveConfigDir applies flag > REFCACHE_CONFIG_DIR > DefaultConfigDir.
func ResolveConfigDir(flag string) (string, error) {
	if flag != "" {
		return filepath.Abs(flag)
	}
	if env := os.Getenv(EnvConfigDir); env != "" {
		return filepath.Abs(env)
	}
	return DefaultConfigDir()
}

// ResolveDataDir applies flag > config value > REFCACHE_DATA_DIR >
// $(CWD)/.refcache-db.
func ResolveDataDir(flag, configValue string) (string, error) {
	for _, candidate := range []string{flag, configValue, os.Getenv(EnvDataDir)} {
		if candidate != "" {
			return filepath.Abs(candidate)
		}
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(cwd, DefaultDataDirName), nil
}

// ConfigFile returns the config file path inside configDir.
func ConfigFile(configDir string) string {
	return filepath.Join(configDir, ConfigFileName)
}
