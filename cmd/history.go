package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/localatlas/bizscout/internal/export"
)

var (
	historyClear bool
	historyCSV   bool
	historyLimit int
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show or manage recent searches",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		if historyClear {
			if err := st.ClearHistory(ctx); err != nil {
				return err
			}
			fmt.Fprintln(os.Stderr, "Search history cleared")
			return nil
		}

		searches, err := st.RecentSearches(ctx, historyLimit)
		if err != nil {
			return err
		}

		if historyCSV {
			return export.WriteHistoryCSV(os.Stdout, searches)
		}

		if len(searches) == 0 {
			fmt.Fprintln(os.Stderr, "No recent searches")
			return nil
		}
		for _, s := range searches {
			fmt.Printf("%s\t%s\n", s.CreatedAt.Format("2006-01-02 15:04:05"), s.Term)
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().BoolVar(&historyClear, "clear", false, "clear the search history")
	historyCmd.Flags().BoolVar(&historyCSV, "csv", false, "write history as CSV to stdout")
	historyCmd.Flags().IntVar(&historyLimit, "limit", 10, "number of searches to show")
	rootCmd.AddCommand(historyCmd)
}
