package app

import (
	"github.com/spf13/cobra"

	"github.com/lilithpkg/lilith/internal/engine"
)

var (
	installFlagFullDeps bool
	installFlagNoDeps   bool
)

var installCmd = &cobra.Command{
	Use:   "install <name>",
	Short: "Install a package and its missing dependencies",
	Long: `Install a package from the upstream repository into the prefix.

Dependencies already installed, or already provided by the host system,
are skipped. Use --full-deps to install dependencies even when the host
provides them, or --no-deps to install only the named package.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return newEngine().Install(args[0], engine.InstallOpts{
			FullDeps: installFlagFullDeps,
			NoDeps:   installFlagNoDeps,
		})
	},
}

func init() {
	installCmd.Flags().BoolVar(&installFlagFullDeps, "full-deps", false, "install dependencies even when the host provides them")
	installCmd.Flags().BoolVar(&installFlagNoDeps, "no-deps", false, "skip dependency installation for the named package")

	RootCmd.AddCommand(installCmd)
}
