package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "happi-to-confluence",
	Short: "Generate Confluence documentation pages from a happi device database",
	Long: `happi-to-confluence renders a tree of templated pages for every device in a
happi inventory and synchronizes them with a Confluence space, rewriting only
pages it owns and only when their content actually changed.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().StringP("config", "c", "", "Path to the YAML configuration file")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable verbose logging of every synchronized page")
}
