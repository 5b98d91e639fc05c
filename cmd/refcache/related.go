// Related command resolves a relationship of a cached resource.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/refcache/pkg/types"
)

var relatedCmd = &cobra.Command{
	Use:   "related <type> <id> <relationship>",
	Short: "Resolve a relationship of a cached resource",
	Long: `Related normalizes the named relationship linkage of a cached resource and
joins it against the cache, the same way get resolves a data key.

Example:
  refcache related article 1 author`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		key := types.ResourceKey{Type: args[0], ID: args[1]}
		name := args[2]

		s := openSession(cmd)
		defer s.close()

		e, ok := s.cache.Snapshot().Entity(key)
		if !ok {
			s.fail(exitUserError, fmt.Errorf("%w: %s", types.ErrEntityNotFound, key))
		}

		res, err := s.cache.Related(&types.Item{
			Type:          e.Type,
			ID:            e.ID,
			Attributes:    e.Attributes,
			Relationships: e.Relationships,
		}, name)
		if err != nil {
			s.fail(exitCode(err), err)
		}

		if flagJSON {
			return printJSON(res)
		}
		res.DataKey = fmt.Sprintf("%s.%s", key, name)
		printResource(res)
		return nil
	},
}
