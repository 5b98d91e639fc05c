// Update command merges attributes into a cached resource.
package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/refcache/pkg/types"
)

var updateCmd = &cobra.Command{
	Use:   "update <type> <id> <json>",
	Short: "Merge attributes into a cached resource",
	Long: `Update merges the JSON object into the resource's attributes. Keys not in
the object are kept. The resource must already be cached.

Example:
  refcache update article 1 '{"title":"Renamed"}'`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		typ, id := args[0], args[1]

		var attrs map[string]any
		if err := json.Unmarshal([]byte(args[2]), &attrs); err != nil {
			fail("update", exitUserError, fmt.Errorf("attributes must be a JSON object: %w", err))
		}

		s := openSession(cmd)
		s.apply(types.UpdateEntity{Type: typ, ID: id, Attributes: attrs})
		s.close()

		if flagJSON {
			e, _ := s.cache.Snapshot().Entity(types.ResourceKey{Type: typ, ID: id})
			return printJSON(e)
		}
		fmt.Printf("Updated %s:%s\n", typ, id)
		return nil
	},
}
