package main

import (
	"fmt"

	"github.com/pcdshub/happi-to-confluence/internal/cli"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check templates and the page hierarchy for consistency",
	Long:  `Parses every template and loads the hierarchy without contacting Confluence.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := cmd.Flags().GetString("config")
		report, err := cli.Validate(configPath)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		for _, w := range report.Warnings {
			fmt.Fprintf(out, "warning: %s\n", w)
		}
		if err := report.Err(); err != nil {
			return err
		}
		fmt.Fprintf(out, "%d templates are valid.\n", report.Templates)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
