package main

import (
	"fmt"

	"github.com/pcdshub/happi-to-confluence/internal/cli"
	"github.com/pcdshub/happi-to-confluence/internal/hierarchy"
	"github.com/spf13/cobra"
)

var treeCmd = &cobra.Command{
	Use:   "tree",
	Short: "Export the page hierarchy as a Mermaid diagram",
	Long: `Draws one hierarchy variant as a Mermaid graph. With --item, pages the last
saved run resolved for that device are highlighted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := cmd.Flags().GetString("config")
		production, _ := cmd.Flags().GetBool("production")
		variant, _ := cmd.Flags().GetString("variant")
		item, _ := cmd.Flags().GetString("item")

		out, err := cli.Tree(cli.TreeOptions{
			ConfigPath: configPath,
			Production: production,
			Variant:    variant,
			Item:       item,
		})
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), out)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(treeCmd)
	treeCmd.Flags().String("variant", hierarchy.VariantPerDevice, "Hierarchy variant to draw")
	treeCmd.Flags().String("item", "", "Highlight the pages resolved for this device")
	treeCmd.Flags().Bool("production", false, "Use the production root title")
}
