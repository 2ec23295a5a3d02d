package app

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var infoCmd = &cobra.Command{
	Use:   "info <name>",
	Short: "Show catalogue details for a package",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		eng := newEngine()
		rec, installed, err := eng.Info(args[0])
		if err != nil {
			return err
		}

		installedLabel := "no"
		if installed {
			installedLabel = "yes"
		}

		fmt.Printf("Name:          %s\n", rec.Name)
		fmt.Printf("Version:       %s\n", rec.Version)
		fmt.Printf("Comment:       %s\n", rec.Comment)
		fmt.Printf("Origin:        %s\n", rec.Origin)
		fmt.Printf("Maintainer:    %s\n", rec.Maintainer)
		fmt.Printf("WWW:           %s\n", rec.WWW)
		fmt.Printf("Architecture:  %s\n", rec.Arch)
		fmt.Printf("Categories:    %s\n", strings.Join(rec.Categories, ", "))
		fmt.Printf("Licenses:      %s\n", strings.Join(rec.Licenses, ", "))
		fmt.Printf("Package size:  %s\n", humanize.IBytes(uint64(rec.PkgSize)))
		fmt.Printf("Installed size: %s\n", humanize.IBytes(uint64(rec.FlatSize)))
		fmt.Printf("Installed:     %s\n", installedLabel)

		deps := make([]string, 0, len(rec.Deps))
		for dep := range rec.Deps {
			deps = append(deps, dep)
		}
		sort.Strings(deps)
		fmt.Printf("Dependencies:  %s\n", strings.Join(deps, ", "))
		return nil
	},
}

func init() {
	RootCmd.AddCommand(infoCmd)
}
