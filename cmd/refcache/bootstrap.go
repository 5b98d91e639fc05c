// Bootstrap command seeds a data key without a request cycle.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/refcache/pkg/refcache"
	"github.com/mesh-intelligence/refcache/pkg/types"
)

var (
	bootstrapGenericFlag    bool
	bootstrapCollectionFlag bool
)

var bootstrapCmd = &cobra.Command{
	Use:   "bootstrap <data-key> <file>",
	Short: "Seed a data key from a JSON:API document or a raw JSON value",
	Long: `Bootstrap stores the resources of a JSON:API document and points the data
key at its primary data, leaving the request status untouched. With --generic
the file may hold any JSON value, stored verbatim under the data key.

Use "-" as the file to read from stdin.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		dataKey, file := args[0], args[1]

		raw, err := readInput(file)
		if err != nil {
			fail("bootstrap", exitUserError, err)
		}

		var ev types.Event
		if bootstrapGenericFlag {
			ev, err = refcache.GenericEvent(dataKey, raw)
		} else {
			opts := refOptions(cmd.Flags().Changed("collection"), bootstrapCollectionFlag)
			ev, err = refcache.BootstrapEvent(dataKey, raw, opts...)
		}
		if err != nil {
			fail("bootstrap", exitUserError, err)
		}

		s := openSession(cmd)
		s.apply(ev)
		s.close()

		if flagJSON {
			return printJSON(s.cache.ProjectKey(dataKey))
		}
		fmt.Printf("Bootstrapped %s\n", dataKey)
		return nil
	},
}

func init() {
	bootstrapCmd.Flags().BoolVar(&bootstrapGenericFlag, "generic", false, "store the file as a raw value")
	bootstrapCmd.Flags().BoolVar(&bootstrapCollectionFlag, "collection", false, "force the data key to be (or not be) a collection")
}
