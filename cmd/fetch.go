package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/localatlas/bizscout/internal/export"
	"github.com/localatlas/bizscout/internal/pipeline"
	"github.com/localatlas/bizscout/internal/ratelimit"
)

var (
	fetchCount  int
	fetchExport bool
)

var fetchCmd = &cobra.Command{
	Use:   "fetch <city> <category>",
	Short: "Fetch and enrich businesses for a city and category",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		searchTerm := strings.Join(args, " ")

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		limiter := ratelimit.NewRegistry(cfg.Cooldowns.Durations())
		p, err := initPipeline(limiter)
		if err != nil {
			return err
		}

		result, err := p.Run(ctx, searchTerm, fetchCount)
		switch {
		case eris.Is(err, pipeline.ErrCityNotFound):
			return fmt.Errorf("city not found — try a known city such as karachi, lahore or islamabad")
		case eris.Is(err, pipeline.ErrNoResults):
			return fmt.Errorf("no businesses found — try a different category (e.g. hospitals, restaurants) or city")
		case err != nil:
			return eris.Wrap(err, "pipeline run")
		}

		if _, err := st.RecordSearch(ctx, searchTerm); err != nil {
			zap.L().Warn("record search failed", zap.Error(err))
		}

		title := cases.Title(language.English).String(result.City)
		fmt.Fprintf(os.Stderr, "Found %d businesses for %q in %s\n", len(result.Records), searchTerm, title)
		for _, notice := range result.Notices {
			fmt.Fprintln(os.Stderr, "Note: "+notice)
		}

		if fetchExport {
			writer := export.NewWriter(cfg.Export.Dir)
			csvPath, xlsxPath, err := writer.WriteAll(ctx, result.Records, time.Now())
			if err != nil {
				return err
			}
			fmt.Fprintf(os.Stderr, "Saved %s and %s\n", csvPath, xlsxPath)

			maxAge := time.Duration(cfg.Export.MaxAgeHours) * time.Hour
			if _, err := export.CleanupOld(cfg.Export.Dir, maxAge); err != nil {
				zap.L().Warn("cleanup failed", zap.Error(err))
			}
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	},
}

func init() {
	fetchCmd.Flags().IntVar(&fetchCount, "count", 5, "number of businesses to fetch (1-50)")
	fetchCmd.Flags().BoolVar(&fetchExport, "export", false, "write CSV and XLSX result files")
	rootCmd.AddCommand(fetchCmd)
}
