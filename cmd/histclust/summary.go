package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/nilookiamari/browser-activity-project/internal/aggregate"
	"github.com/nilookiamari/browser-activity-project/internal/config"
	dbgorm "github.com/nilookiamari/browser-activity-project/internal/db/gorm"
)

var summaryDBPath string

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Show clusters, peak hour, categories and top domains of the latest stored run",
	RunE:  runSummary,
}

func init() {
	summaryCmd.Flags().StringVar(&summaryDBPath, "db", "", "SQLite results database")
	rootCmd.AddCommand(summaryCmd)
}

func runSummary(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		cfg = config.Default()
	}
	if cmd.Flags().Changed("db") {
		cfg.DBDriver = dbgorm.DriverSQLite
		cfg.DBDSN = summaryDBPath
	}

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	runs := dbgorm.NewRunStore(store)
	ctx := cmd.Context()

	run, err := runs.LatestRun(ctx)
	if errors.Is(err, dbgorm.ErrNoRuns) {
		cmd.Println("No runs stored yet.")
		return nil
	}
	if err != nil {
		return fmt.Errorf("loading latest run: %w", err)
	}

	clusters, err := runs.ClusterLabels(ctx, run.ID)
	if err != nil {
		return fmt.Errorf("loading cluster labels: %w", err)
	}
	hours, err := runs.HourSummaries(ctx, run.ID)
	if err != nil {
		return fmt.Errorf("loading hour summary: %w", err)
	}
	counts, err := runs.CategoryCounts(ctx, run.ID)
	if err != nil {
		return fmt.Errorf("loading category counts: %w", err)
	}
	visits, err := runs.VisitsByRun(ctx, run.ID)
	if err != nil {
		return fmt.Errorf("loading visits: %w", err)
	}

	started := time.UnixMilli(run.StartedAtEpoch).Format(time.RFC3339)
	cmd.Printf("Run %s (%s, %d visits, started %s)\n", run.ID, run.Source, run.RecordCount, started)

	cmd.Println("Cluster labels:")
	for _, c := range clusters {
		cmd.Printf("  %d: %s (%d visits)\n", c.ClusterID, c.Label, c.Size)
	}

	if peak, ok := aggregate.PeakHour(hours); ok {
		cmd.Printf("Peak browsing hour: %02d:00 (%d visits)\n", peak.Hour, peak.Count)
	} else {
		cmd.Println("Peak browsing hour: unknown")
	}

	cmd.Println("Categories:")
	for _, c := range counts {
		cmd.Printf("  %-40s %d\n", c.Category, c.Visits)
	}

	cmd.Println("Top websites visited:")
	for _, d := range aggregate.TopDomains(aggregate.ByDomain(visits), aggregate.DefaultTopDomains) {
		cmd.Printf("  %-40s %d\n", d.Domain, d.Visits)
	}
	return nil
}
