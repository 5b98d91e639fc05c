// Init-ref command points a data key at resources without fetching.
package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/refcache/pkg/refcache"
	"github.com/mesh-intelligence/refcache/pkg/types"
)

var initRefCollectionFlag bool

var initRefCmd = &cobra.Command{
	Use:   "init-ref <data-key> <json>",
	Short: "Point a data key at resources without fetching",
	Long: `Init-ref normalizes a relationship linkage ({"data": ...}) or a flat
resource object ({"type", "id", "attributes"}) and stores it as the data
key's reference. The resources need not be cached yet.

Example:
  refcache init-ref feed '{"data":[{"type":"post","id":"1"}]}'`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		dataKey := args[0]

		var input any
		if err := json.Unmarshal([]byte(args[1]), &input); err != nil {
			fail("init-ref", exitUserError, fmt.Errorf("invalid JSON: %w", err))
		}

		opts := refOptions(cmd.Flags().Changed("collection"), initRefCollectionFlag)
		ref, err := refcache.Normalize(input, opts...)
		if err != nil {
			fail("init-ref", exitUserError, err)
		}

		s := openSession(cmd)
		s.apply(types.InitializeDataKey{DataKey: dataKey, Ref: *ref})
		s.close()

		if flagJSON {
			return printJSON(s.cache.ProjectKey(dataKey))
		}
		fmt.Printf("Initialized %s (%d resources)\n", dataKey, len(ref.Entities))
		return nil
	},
}

func init() {
	initRefCmd.Flags().BoolVar(&initRefCollectionFlag, "collection", false, "force the data key to be (or not be) a collection")
}
