// Package main provides the refcache CLI, a command-line front end to a
// persisted resource cache. Each command loads the snapshot from the data
// directory, applies one lifecycle event or query, and saves the result.
package main

import (
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(exitUserError)
	}
}
