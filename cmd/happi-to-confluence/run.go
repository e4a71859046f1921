package main

import (
	"context"

	"github.com/pcdshub/happi-to-confluence/internal/cli"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Synchronize every device page once",
	Long: `Loads the inventory, renders each device's page tree and writes the pages
that changed. Defaults to the test target; pass --production for the real space.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := runOptions(cmd)
		opts.DryRun, _ = cmd.Flags().GetBool("dry-run")

		ctx := cli.NewSignalContext(context.Background())
		defer ctx.Cancel()

		_, err := cli.Execute(ctx, opts)
		return err
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	addTargetFlags(runCmd)
	runCmd.Flags().Bool("dry-run", false, "Render into an in-memory wiki instead of Confluence")
}

// addTargetFlags registers the flags shared by run and watch.
func addTargetFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("production", false, "Publish to the production space instead of the test space")
	cmd.Flags().Int("limit", 0, "Stop after this many devices (0 keeps the configured limit)")
}

func runOptions(cmd *cobra.Command) cli.RunOptions {
	configPath, _ := cmd.Flags().GetString("config")
	debug, _ := cmd.Flags().GetBool("debug")
	production, _ := cmd.Flags().GetBool("production")
	limit, _ := cmd.Flags().GetInt("limit")
	return cli.RunOptions{
		ConfigPath: configPath,
		Debug:      debug,
		Production: production,
		Limit:      limit,
		Stdout:     cmd.OutOrStdout(),
		Stderr:     cmd.ErrOrStderr(),
	}
}
