// Config loading for the refcache CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/refcache/internal/observe"
	"github.com/mesh-intelligence/refcache/internal/paths"
	"github.com/mesh-intelligence/refcache/pkg/types"
)

const (
	configFileName = "config"
	configFileType = "yaml"

	cfgKeyBackend      = "backend"
	cfgKeyDataDir      = "data_dir"
	cfgKeySyncStrategy = "sync_strategy"
	cfgKeyLogLevel     = "log_level"
	cfgKeyTelemetry    = "telemetry"

	defaultLogLevel = "warn"
)

// configFile is the structure written to a fresh config.yaml.
type configFile struct {
	Backend      string `yaml:"backend"`
	DataDir      string `yaml:"data_dir,omitempty"`
	SyncStrategy string `yaml:"sync_strategy"`
	LogLevel     string `yaml:"log_level"`
	Telemetry    string `yaml:"telemetry"`
}

// loadConfig reads config.yaml from configDir using Viper. It creates the
// directory and a default config.yaml on first run. A missing config.yaml is
// not an error. REFCACHE_LOG_LEVEL and REFCACHE_TELEMETRY override their keys.
func loadConfig(configDir string) (*viper.Viper, error) {
	if err := ensureConfigDir(configDir); err != nil {
		return nil, fmt.Errorf("ensure config dir: %w", err)
	}

	if err := ensureDefaultConfigFile(configDir); err != nil {
		return nil, fmt.Errorf("ensure default config: %w", err)
	}

	v := viper.New()
	v.SetDefault(cfgKeyBackend, types.BackendSQLite)
	v.SetDefault(cfgKeySyncStrategy, types.SyncImmediate)
	v.SetDefault(cfgKeyLogLevel, defaultLogLevel)
	v.SetDefault(cfgKeyTelemetry, observe.ExporterNone)
	v.SetEnvPrefix("REFCACHE")
	for _, key := range []string{cfgKeyLogLevel, cfgKeyTelemetry} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("bind env: %w", err)
		}
	}
	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return v, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	return v, nil
}

// ensureConfigDir creates the config directory if it does not exist.
func ensureConfigDir(configDir string) error {
	return os.MkdirAll(configDir, 0o755)
}

// ensureDefaultConfigFile writes a default config.yaml when configDir has
// none. An existing file is left alone.
func ensureDefaultConfigFile(configDir string) error {
	path := paths.ConfigFile(configDir)

	_, err := os.Stat(path)
	if err == nil {
		return nil
	}
	if !os.IsNotExist(err) {
		return fmt.Errorf("stat config file: %w", err)
	}

	data, err := yaml.Marshal(&configFile{
		Backend:      types.BackendSQLite,
		SyncStrategy: types.SyncImmediate,
		LogLevel:     defaultLogLevel,
		Telemetry:    observe.ExporterNone,
	})
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	header := []byte("# refcache CLI configuration\n")
	return os.WriteFile(path, append(header, data...), 0o644)
}
