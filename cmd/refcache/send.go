// Send command records a request as in flight.
package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var sendMethodFlag string

var sendCmd = &cobra.Command{
	Use:   "send <data-key>",
	Short: "Mark a request for a data key as pending",
	Long: `Send records that a request for the data key is in flight and prints the
request ID assigned to it. Pass the ID to succeed or fail with --request-id to
tie the outcome to this request.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dataKey := args[0]

		s := openSession(cmd)
		id, err := s.cache.Send(s.ctx, dataKey, sendMethodFlag)
		if err != nil {
			s.fail(exitCode(err), err)
		}
		if err := s.cache.Save(s.backend); err != nil {
			s.fail(exitSysError, err)
		}
		s.close()

		if flagJSON {
			return printJSON(map[string]string{"data_key": dataKey, "request_id": id})
		}
		fmt.Println(id)
		return nil
	},
}

func init() {
	sendCmd.Flags().StringVar(&sendMethodFlag, "method", "GET", "request method (GET, POST, PATCH, DELETE)")
}
