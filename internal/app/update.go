package app

import (
	"github.com/spf13/cobra"
)

var updateCmd = &cobra.Command{
	Use:   "update <name>",
	Short: "Update an installed package to the latest catalogue version",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return newEngine().Update(args[0])
	},
}

var updateMetadataCmd = &cobra.Command{
	Use:   "update-metadata",
	Short: "Download a fresh copy of the package catalogue",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return newEngine().UpdateMetadata()
	},
}

func init() {
	RootCmd.AddCommand(updateCmd)
	RootCmd.AddCommand(updateMetadataCmd)
}
