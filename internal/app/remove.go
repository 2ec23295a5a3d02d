package app

import (
	"github.com/spf13/cobra"

	"github.com/lilithpkg/lilith/internal/engine"
)

var (
	removeFlagForce        bool
	removeFlagNoAutoRemove bool
)

var removeCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Remove an installed package",
	Long: `Remove an installed package using its manifest.

Removal fails when other installed packages depend on the target; use
--force to remove it anyway. Dependencies left without any dependents
are removed as well unless --no-auto-remove is given.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return newEngine().Remove(args[0], engine.RemoveOpts{
			Force:        removeFlagForce,
			NoAutoRemove: removeFlagNoAutoRemove,
		})
	},
}

func init() {
	removeCmd.Flags().BoolVar(&removeFlagForce, "force", false, "remove even when other packages depend on it")
	removeCmd.Flags().BoolVar(&removeFlagNoAutoRemove, "no-auto-remove", false, "keep orphaned dependencies installed")

	RootCmd.AddCommand(removeCmd)
}
