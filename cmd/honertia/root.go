package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "honertia",
	Short: "Request router with route model binding and per-request capabilities",
	Long: `Honertia is a request-routing server. Route patterns declare model
bindings that resolve path parameters to stored records, with parent
scoping for nested resources, before a handler ever runs.

Quick start:
  honertia serve     # Start the server
  honertia routes    # Print the resolved route table

Configuration comes from honertia.yaml (or --config) with HONERTIA_*
environment variable overrides.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "honertia.yaml", "config file path")
}
