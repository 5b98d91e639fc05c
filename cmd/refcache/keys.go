// Keys command lists known data keys.
package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List data keys with a reference or a request status",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s := openSession(cmd)
		keys := s.cache.Keys()
		s.close()

		if flagJSON {
			if keys == nil {
				keys = []string{}
			}
			return printJSON(keys)
		}
		for _, k := range keys {
			fmt.Println(k)
		}
		return nil
	},
}
