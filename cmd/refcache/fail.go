// Fail command records a failed request for a data key.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/refcache/pkg/types"
)

var (
	failNameFlag      string
	failMessageFlag   string
	failErrorsFlag    []string
	failRequestIDFlag string
)

var failCmd = &cobra.Command{
	Use:   "fail <data-key>",
	Short: "Record a failed request for a data key",
	Long: `Fail records the error name and message in the data key's request status.
Repeat --error to record several messages; --message is used when none is given.
References and entities are left as they were.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dataKey := args[0]

		if failMessageFlag == "" && len(failErrorsFlag) == 0 {
			fail("fail", exitUserError, fmt.Errorf("one of --message or --error is required"))
		}

		s := openSession(cmd)
		s.apply(types.FetchFailed{
			DataKey:   dataKey,
			RequestID: failRequestIDFlag,
			Name:      failNameFlag,
			Message:   failMessageFlag,
			Errors:    failErrorsFlag,
		})
		s.close()

		if flagJSON {
			return printJSON(s.cache.Snapshot().Request(dataKey))
		}
		fmt.Printf("Recorded failure for %s\n", dataKey)
		return nil
	},
}

func init() {
	failCmd.Flags().StringVar(&failNameFlag, "name", "Error", "error name")
	failCmd.Flags().StringVar(&failMessageFlag, "message", "", "error message")
	failCmd.Flags().StringArrayVar(&failErrorsFlag, "error", nil, "error message (repeatable)")
	failCmd.Flags().StringVar(&failRequestIDFlag, "request-id", "", "request ID printed by send")
}
