// Package main implements the assign CLI for running the assignment engine
// outside the HTTP service.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "assign",
	Short:         "Ticket assignment engine CLI",
	Long:          "Runs the ticket assignment engine against a ticket file and issues service tokens for the HTTP API.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
