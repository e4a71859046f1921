package main

import (
	"context"

	"github.com/pcdshub/happi-to-confluence/internal/cli"
	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Re-run the synchronization whenever templates or the hierarchy change",
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := runOptions(cmd)
		opts.DryRun, _ = cmd.Flags().GetBool("dry-run")

		ctx := cli.NewSignalContext(context.Background())
		defer ctx.Cancel()

		return cli.RunWatch(ctx, opts)
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
	addTargetFlags(watchCmd)
	watchCmd.Flags().Bool("dry-run", false, "Render into an in-memory wiki instead of Confluence")
}
