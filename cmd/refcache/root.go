// Root command for the refcache CLI.
package main

import (
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/refcache/internal/paths"
	"github.com/mesh-intelligence/refcache/pkg/refcache"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// Global flag values.
var (
	flagConfigDir string
	flagDataDir   string
	flagJSON      bool
	flagLogLevel  string
	flagTelemetry string
)

// settings holds the values loaded from config.yaml by PersistentPreRunE.
var settings struct {
	backend      string
	dataDir      string
	syncStrategy string
	logLevel     string
	telemetry    string
}

var rootCmd = &cobra.Command{
	Use:     "refcache",
	Short:   "refcache keeps a normalized JSON:API resource cache on disk",
	Version: refcache.Version,
	Long: `refcache stores JSON:API resources once per (type, id), points data keys
at them, and tracks the request status of every data key. Commands apply
request, success and failure events to the cache and project data keys back
into resources.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		configDir, err := resolveConfigDir()
		if err != nil {
			return err
		}

		cfg, err := loadConfig(configDir)
		if err != nil {
			return err
		}

		settings.backend = cfg.GetString(cfgKeyBackend)
		settings.dataDir = cfg.GetString(cfgKeyDataDir)
		settings.syncStrategy = cfg.GetString(cfgKeySyncStrategy)
		settings.logLevel = cfg.GetString(cfgKeyLogLevel)
		settings.telemetry = cfg.GetString(cfgKeyTelemetry)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfigDir, "config-dir", "", "configuration directory (default: platform config dir)")
	rootCmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", "", "data directory (default: $(CWD)/.refcache-db)")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "output as JSON")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&flagTelemetry, "telemetry", "", "telemetry exporter: none, stdout, otlp")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(bootstrapCmd)
	rootCmd.AddCommand(sendCmd)
	rootCmd.AddCommand(succeedCmd)
	rootCmd.AddCommand(failCmd)
	rootCmd.AddCommand(initRefCmd)
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(relatedCmd)
	rootCmd.AddCommand(keysCmd)
}

// resolveDataDir applies --data-dir > config data_dir > REFCACHE_DATA_DIR >
// $(CWD)/.refcache-db.
func resolveDataDir() (string, error) {
	return paths.ResolveDataDir(flagDataDir, settings.dataDir)
}

// resolveConfigDir applies --config-dir > REFCACHE_CONFIG_DIR > platform default.
func resolveConfigDir() (string, error) {
	return paths.ResolveConfigDir(flagConfigDir)
}

// logLevel applies --log-level > config log_level.
func logLevel() string {
	if flagLogLevel != "" {
		return flagLogLevel
	}
	return settings.logLevel
}

// telemetryExporter applies --telemetry > config telemetry.
func telemetryExporter() string {
	if flagTelemetry != "" {
		return flagTelemetry
	}
	return settings.telemetry
}
