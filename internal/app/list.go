package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lilithpkg/lilith/internal/output"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List installed packages",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		records, err := newEngine().List()
		if err != nil {
			return err
		}

		rows := make([]output.InstalledRow, len(records))
		for i, rec := range records {
			rows[i] = output.InstalledRow{
				Name:    rec.Name,
				Version: rec.Version,
				Comment: rec.Comment,
				Origin:  rec.Origin,
			}
		}
		fmt.Print(output.RenderInstalledTable(rows))
		return nil
	},
}

func init() {
	RootCmd.AddCommand(listCmd)
}
