// Succeed command delivers a successful response to a data key.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/refcache/pkg/refcache"
	"github.com/mesh-intelligence/refcache/pkg/types"
)

var (
	succeedNextPageFlag   bool
	succeedDeleteFlag     string
	succeedRequestIDFlag  string
	succeedCollectionFlag bool
)

var succeedCmd = &cobra.Command{
	Use:   "succeed <data-key> [file]",
	Short: "Apply a successful JSON:API response to a data key",
	Long: `Succeed stores the resources of the response document and updates the
data key's reference and request status.

  --next-page        append the primary data to the existing reference
  --delete type:id   remove the resource from the cache and from every reference

The file may be omitted for a delete with no response body. Use "-" to read
the document from stdin. An errors document is recorded as a failure of the
data key and the command exits 1.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		dataKey := args[0]

		ev := types.FetchSucceeded{DataKey: dataKey}
		if len(args) == 2 {
			raw, err := readInput(args[1])
			if err != nil {
				fail("succeed", exitUserError, err)
			}
			opts := refOptions(cmd.Flags().Changed("collection"), succeedCollectionFlag)
			parsed, err := refcache.DocumentEvent(dataKey, raw, opts...)
			if err != nil {
				fail("succeed", exitUserError, err)
			}
			if ff, ok := parsed.(types.FetchFailed); ok {
				recordFailure(cmd, ff)
			}
			ev = parsed.(types.FetchSucceeded)
		} else if succeedDeleteFlag == "" {
			fail("succeed", exitUserError, fmt.Errorf("a response file is required unless --delete is given"))
		}

		ev.IsNextPage = succeedNextPageFlag
		ev.RequestID = succeedRequestIDFlag
		if succeedDeleteFlag != "" {
			key, err := parseResourceKey(succeedDeleteFlag)
			if err != nil {
				fail("succeed", exitUserError, err)
			}
			ev.RefToDelete = &key
		}

		s := openSession(cmd)
		s.apply(ev)
		s.close()

		if flagJSON {
			return printJSON(s.cache.ProjectKey(dataKey))
		}
		fmt.Printf("Updated %s\n", dataKey)
		return nil
	},
}

// recordFailure applies the failure carried by an errors document and exits
// with exitUserError.
func recordFailure(cmd *cobra.Command, ff types.FetchFailed) {
	ff.RequestID = succeedRequestIDFlag
	s := openSession(cmd)
	s.apply(ff)
	s.close()
	fail("succeed", exitUserError, fmt.Errorf("%s: %s: %s", ff.DataKey, ff.Name, ff.Message))
}

func init() {
	succeedCmd.Flags().BoolVar(&succeedNextPageFlag, "next-page", false, "append to the existing reference")
	succeedCmd.Flags().StringVar(&succeedDeleteFlag, "delete", "", "resource deleted by this request, as type:id")
	succeedCmd.Flags().StringVar(&succeedRequestIDFlag, "request-id", "", "request ID printed by send")
	succeedCmd.Flags().BoolVar(&succeedCollectionFlag, "collection", false, "force the data key to be (or not be) a collection")
}
