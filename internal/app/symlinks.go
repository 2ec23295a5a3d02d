package app

import (
	"github.com/spf13/cobra"
)

var fixSymlinksCmd = &cobra.Command{
	Use:   "fix-symlinks",
	Short: "Purge dead links and rebuild the shared-library aliases",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return newEngine().FixSymlinks()
	},
}

func init() {
	RootCmd.AddCommand(fixSymlinksCmd)
}
