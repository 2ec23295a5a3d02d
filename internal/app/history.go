package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lilithpkg/lilith/internal/history"
)

var historyFlagLimit int

var historyCmd = &cobra.Command{
	Use:   "history [name]",
	Short: "Show recent install, remove, and update operations",
	Long: `Show the operation journal, newest first.

With a package name, only that package's events are shown.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		eng := newEngine()

		var events []history.Event
		var err error
		if len(args) == 1 {
			events, err = eng.HistoryFor(args[0])
		} else {
			events, err = eng.History(historyFlagLimit)
		}
		if err != nil {
			return err
		}
		if len(events) == 0 {
			fmt.Println("No recorded operations.")
			return nil
		}

		fmt.Printf("%-20s %-9s %-24s %s\n", "When", "Action", "Package", "Version")
		for _, ev := range events {
			fmt.Printf("%-20s %-9s %-24s %s\n",
				ev.OccurredAt.Format("2006-01-02 15:04:05"),
				ev.Action,
				ev.Package,
				ev.Version)
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().IntVarP(&historyFlagLimit, "limit", "n", 50, "maximum number of events to show")

	RootCmd.AddCommand(historyCmd)
}
