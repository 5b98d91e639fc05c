// Get command projects data keys into resources.
package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/refcache/pkg/types"
)

var getCmd = &cobra.Command{
	Use:   "get <data-key>...",
	Short: "Show the projected resource for each data key",
	Long: `Get joins each data key's reference against the cached resources and
prints the result together with its request status. Keys with no reference
show as not_yet_fetched; resources that are referenced but not cached show
as <missing>.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s := openSession(cmd)
		views := s.cache.Project(args...)
		s.close()

		if flagJSON {
			return printJSON(views)
		}
		for _, key := range args {
			printResource(views[key])
		}
		return nil
	},
}

// printResource writes a human-readable summary of r.
func printResource(r types.Resource) {
	fmt.Printf("%s\t%s\t%s\n", r.DataKey, r.Kind, r.Request.Status)
	switch r.Kind {
	case types.Single:
		printItem(r.Item)
	case types.Collection:
		for _, it := range r.Items {
			printItem(it)
		}
	case types.Raw:
		b, _ := json.Marshal(r.Value)
		fmt.Printf("  %s\n", b)
	}
	if len(r.Request.Errors) > 0 {
		for _, e := range r.Request.Errors {
			fmt.Printf("  error: %s\n", e)
		}
	}
}

func printItem(it *types.Item) {
	if it == nil {
		fmt.Println("  <missing>")
		return
	}
	attrs, _ := json.Marshal(it.Attributes)
	fmt.Printf("  %s %s\n", it.Key(), attrs)
}
