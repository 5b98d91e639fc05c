package paths

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// withPlatform swaps the platform lookups for the duration of the test.
func withPlatform(t *testing.T, goos, home, userConfig string) {
	t.Helper()
	saved := platformDir
	t.Cleanup(func() { platformDir = saved })

	platformDir.goos = goos
	platformDir.homeDir = func() (string, error) { return home, nil }
	platformDir.userConfigDir = func() (string, error) { return userConfig, nil }
}

func TestDefaultDirs(t *testing.T) {
	tests := []struct {
		name       string
		goos       string
		env        map[string]string
		wantConfig string
		wantData   string
	}{
		{
			name:       "linux uses XDG variables",
			goos:       "linux",
			env:        map[string]string{"XDG_CONFIG_HOME": "/xdg/config", "XDG_DATA_HOME": "/xdg/data"},
			wantConfig: "/xdg/config/refcache",
			wantData:   "/xdg/data/refcache",
		},
		{
			name:       "linux falls back to home",
			goos:       "linux",
			env:        map[string]string{"XDG_CONFIG_HOME": "", "XDG_DATA_HOME": ""},
			wantConfig: "/home/u/.config/refcache",
			wantData:   "/home/u/.local/share/refcache",
		},
		{
			name:       "darwin uses user config dir for both",
			goos:       "darwin",
			env:        map[string]string{"XDG_CONFIG_HOME": "/ignored"},
			wantConfig: "/Users/u/Library/Application Support/refcache",
			wantData:   "/Users/u/Library/Application Support/refcache",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			userConfig := "/home/u/.config"
			if tt.goos == "darwin" {
				userConfig = "/Users/u/Library/Application Support"
			}
			withPlatform(t, tt.goos, "/home/u", userConfig)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			got, err := DefaultConfigDir()
			require.NoError(t, err)
			assert.Equal(t, filepath.FromSlash(tt.wantConfig), got)

			got, err = DefaultDataDir()
			require.NoError(t, err)
			assert.Equal(t, filepath.FromSlash(tt.wantData), got)
		})
	}
}

func TestDefaultConfigDir_HomeError(t *testing.T) {
	withPlatform(t, "linux", "", "")
	platformDir.homeDir = func() (string, error) { return "", errors.New("no home") }
	t.Setenv("XDG_CONFIG_HOME", "")

	_, err := DefaultConfigDir()
	assert.Error(t, err)
}

func TestResolveConfigDir(t *testing.T) {
	withPlatform(t, "linux", "/home/u", "")
	t.Setenv("XDG_CONFIG_HOME", "")

	tests := []struct {
		name string
		flag string
		env  string
		want string
	}{
		{name: "flag wins", flag: "/from/flag", env: "/from/env", want: "/from/flag"},
		{name: "env when no flag", env: "/from/env", want: "/from/env"},
		{name: "platform default", want: "/home/u/.config/refcache"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(EnvConfigDir, tt.env)
			got, err := ResolveConfigDir(tt.flag)
			require.NoError(t, err)
			assert.Equal(t, filepath.FromSlash(tt.want), got)
		})
	}
}

func TestResolveDataDir(t *testing.T) {
	cwd, err := os.Getwd()
	require.NoError(t, err)

	tests := []struct {
		name   string
		flag   string
		config string
		env    string
		want   string
	}{
		{name: "flag wins", flag: "/from/flag", config: "/from/config", env: "/from/env", want: "/from/flag"},
		{name: "config beats env", config: "/from/config", env: "/from/env", want: "/from/config"},
		{name: "env when nothing else", env: "/from/env", want: "/from/env"},
		{name: "cwd default", want: filepath.Join(cwd, DefaultDataDirName)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(EnvDataDir, tt.env)
			got, err := ResolveDataDir(tt.flag, tt.config)
			require.NoError(t, err)
			assert.Equal(t, filepath.FromSlash(tt.want), got)
		})
	}
}

func TestResolveRelativePathsBecomeAbsolute(t *testing.T) {
	t.Setenv(EnvConfigDir, "")
	t.Setenv(EnvDataDir, "")

	got, err := ResolveConfigDir("rel/config")
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(got))

	got, err = ResolveDataDir("", "rel/data")
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(got))
	assert.Equal(t, "data", filepath.Base(got))
}

func TestConfigFile(t *testing.T) {
	assert.Equal(t, filepath.Join("dir", "config.yaml"), ConfigFile("dir"))
}
