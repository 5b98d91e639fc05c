// Init command for the refcache CLI.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/refcache/internal/paths"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize refcache storage",
	Long:  "Create the configuration and data directories and the empty JSONL snapshot files.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		configDir, err := resolveConfigDir()
		if err != nil {
			fail("init", exitSysError, err)
		}
		if err := ensureConfigDir(configDir); err != nil {
			fail("init", exitSysError, err)
		}
		if err := ensureDefaultConfigFile(configDir); err != nil {
			fail("init", exitSysError, err)
		}

		backend, err := attachBackend()
		if err != nil {
			fail("init", exitSysError, err)
		}
		if err := backend.Detach(); err != nil {
			fail("init", exitSysError, err)
		}

		dataDir, err := resolveDataDir()
		if err != nil {
			fail("init", exitSysError, err)
		}

		fmt.Println("refcache initialized successfully")
		fmt.Println("  config:", paths.ConfigFile(configDir))
		fmt.Println("  data:  ", dataDir)
		return nil
	},
}
