package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "api",
	Short:         "Bookmark API server",
	Long:          "HTTP API for registering users and managing their private bookmarks.",
	SilenceUsage:  true,
	SilenceErrors: true,
	// plain `api` serves
	RunE: runServe,
}

func main() {
	rootCmd.AddCommand(serveCmd, migrateCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
