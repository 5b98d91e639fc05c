package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/refcache/pkg/refcache"
)

const modulePath = "github.com/mesh-intelligence/refcache"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the refcache version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "refcache v%s\nmodule: %s\n", refcache.Version, modulePath)
	},
}
