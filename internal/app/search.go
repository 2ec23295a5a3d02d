package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lilithpkg/lilith/internal/output"
	"github.com/lilithpkg/lilith/internal/repo"
)

var searchFlagAll bool

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search the package catalogue",
	Long: `Search the catalogue with a case-insensitive regular expression.

By default only package names are matched; with -a/--all descriptions
are matched too.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mode := repo.SearchNames
		if searchFlagAll {
			mode = repo.SearchAll
		}
		results, err := newEngine().Search(args[0], mode)
		if err != nil {
			return err
		}

		rows := make([]output.SearchRow, len(results))
		for i, res := range results {
			rows[i] = output.SearchRow{Name: res.Name, Version: res.Version, Comment: res.Comment}
		}
		fmt.Print(output.RenderSearchTable(rows))
		return nil
	},
}

func init() {
	searchCmd.Flags().BoolVarP(&searchFlagAll, "all", "a", false, "match descriptions as well as names")

	RootCmd.AddCommand(searchCmd)
}
