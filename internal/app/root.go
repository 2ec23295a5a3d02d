// Package app wires the lilith command-line surface.
package app

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/lilithpkg/lilith/internal/config"
	"github.com/lilithpkg/lilith/internal/engine"
	"github.com/lilithpkg/lilith/internal/output"
)

var cfgFile string

// RootCmd is the root command for lilith.
var RootCmd = &cobra.Command{
	Use:   "lilith",
	Short: "Rootless package manager for shared hosting",
	Long: `lilith installs prebuilt binary packages into a prefix inside your
home directory, with no administrative privileges required. It resolves
dependencies, skips software the host system already provides, and keeps
a shared-library symlink farm so installed programs find their libraries.

Quick start:
  lilith update-metadata
  lilith search editor -a
  lilith install hello

Everything lands under ~/.lilith by default; override with --prefix or a
.lilith.yaml config file.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	cobra.OnInitialize(func() { config.Init(cfgFile) })

	RootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ~/.lilith.yaml)")
	RootCmd.PersistentFlags().String("prefix", "", "install prefix (default ~/.lilith)")
	_ = viper.BindPFlag("prefix", RootCmd.PersistentFlags().Lookup("prefix"))

	RootCmd.SuggestionsMinimumDistance = 2
}

// Execute runs the root command.
func Execute() error {
	return RootCmd.Execute()
}

// newEngine builds the engine from the resolved configuration.
func newEngine() *engine.Engine {
	return engine.New(config.Load(), output.NewTerminal())
}
