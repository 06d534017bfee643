package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"gorm.io/gorm/logger"

	"github.com/nilookiamari/browser-activity-project/internal/aggregate"
	"github.com/nilookiamari/browser-activity-project/internal/config"
	dbgorm "github.com/nilookiamari/browser-activity-project/internal/db/gorm"
	"github.com/nilookiamari/browser-activity-project/internal/export"
	"github.com/nilookiamari/browser-activity-project/internal/history"
	"github.com/nilookiamari/browser-activity-project/internal/pipeline"
	"github.com/nilookiamari/browser-activity-project/internal/privacy"
	"github.com/nilookiamari/browser-activity-project/internal/profiles"
	"github.com/nilookiamari/browser-activity-project/internal/telemetry"
	"github.com/nilookiamari/browser-activity-project/pkg/models"
)

type runOptions struct {
	source      string
	input       string
	profile     string
	clusters    int
	maxFeatures int
	keywords    int
	seed        int64
	outDir      string
	dbPath      string
	noDB        bool
}

var runOpts runOptions

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Categorize browsing history and write summaries",
	Long: `Loads history from the configured source, clusters visits into topics,
prints the peak browsing hour and top domains, writes CSV exports and
stores the run in the results database.`,
	RunE: runRun,
}

func init() {
	f := runCmd.Flags()
	f.StringVar(&runOpts.source, "source", "", "History source: csv or chrome")
	f.StringVar(&runOpts.input, "input", "", "CSV file or Chrome History database")
	f.StringVar(&runOpts.profile, "profile", "", "Named profile from profiles.yaml")
	f.IntVar(&runOpts.clusters, "clusters", 0, "Number of clusters")
	f.IntVar(&runOpts.maxFeatures, "max-features", 0, "Maximum vocabulary size")
	f.IntVar(&runOpts.keywords, "keywords", 0, "Keywords per cluster label")
	f.Int64Var(&runOpts.seed, "seed", 0, "Random seed")
	f.StringVar(&runOpts.outDir, "out", "", "Directory for CSV exports")
	f.StringVar(&runOpts.dbPath, "db", "", "SQLite results database")
	f.BoolVar(&runOpts.noDB, "no-db", false, "Do not store the run")
	rootCmd.AddCommand(runCmd)
}

// runSettings is the resolved configuration: settings, then profile, then flags.
type runSettings struct {
	cfg      *config.Config
	pipeline pipeline.Config
}

func resolveSettings(cmd *cobra.Command) (*runSettings, error) {
	cfg, err := config.Load()
	if err != nil {
		log.Warn().Err(err).Msg("Failed to load config, using defaults")
		cfg = config.Default()
	}
	pcfg := cfg.Pipeline()

	profileName := cfg.Profile
	if runOpts.profile != "" {
		profileName = runOpts.profile
	}
	if profileName != "" {
		reg, err := profiles.Load(config.ProfilesPath())
		if err != nil {
			return nil, fmt.Errorf("loading profiles: %w", err)
		}
		p, ok := reg.Get(profileName)
		if !ok {
			return nil, fmt.Errorf("unknown profile %q (have %v)", profileName, reg.Names())
		}
		pcfg = p.Apply(pcfg)
		if p.Source != "" {
			cfg.Source = p.Source
		}
		if p.Input != "" {
			cfg.InputPath = p.Input
		}
		if p.RedactQueries != nil {
			cfg.RedactQueries = *p.RedactQueries
		}
		log.Debug().Str("profile", profileName).Msg("Profile applied")
	}

	flags := cmd.Flags()
	if flags.Changed("source") {
		cfg.Source = runOpts.source
	}
	if flags.Changed("input") {
		cfg.InputPath = runOpts.input
	}
	if flags.Changed("out") {
		cfg.OutputDir = runOpts.outDir
	}
	if flags.Changed("db") {
		cfg.DBDriver = dbgorm.DriverSQLite
		cfg.DBDSN = runOpts.dbPath
	}
	if flags.Changed("clusters") {
		pcfg.NumClusters = runOpts.clusters
	}
	if flags.Changed("max-features") {
		pcfg.MaxFeatures = runOpts.maxFeatures
	}
	if flags.Changed("keywords") {
		pcfg.KeywordsPerLabel = runOpts.keywords
	}
	if flags.Changed("seed") {
		pcfg.RandomSeed = runOpts.seed
	}

	if !config.ValidSource(cfg.Source) {
		return nil, fmt.Errorf("unknown source %q (want one of %v)", cfg.Source, config.Sources)
	}
	if err := pcfg.Validate(); err != nil {
		return nil, err
	}
	return &runSettings{cfg: cfg, pipeline: pcfg}, nil
}

// historyReader picks the loader for source and resolves the path it reads.
// Chrome history is read from a snapshot of the live profile database.
func historyReader(cfg *config.Config) (history.Reader, string, error) {
	switch cfg.Source {
	case "chrome":
		src := cfg.InputPath
		if src == "" || src == config.Default().InputPath {
			src = history.DefaultChromeHistoryPath()
		}
		if _, err := history.SnapshotChromeHistory(src, cfg.ChromeSnapshot); err != nil {
			return nil, "", err
		}
		return history.ChromeReader{}, cfg.ChromeSnapshot, nil
	case "csv":
		return history.CSVReader{}, cfg.InputPath, nil
	default:
		return nil, "", fmt.Errorf("unknown source %q", cfg.Source)
	}
}

func loadRecords(ctx context.Context, cfg *config.Config) ([]models.Record, string, error) {
	reader, input, err := historyReader(cfg)
	if err != nil {
		return nil, "", err
	}
	records, err := reader.Read(ctx, input)
	return records, input, err
}

func runRun(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	settings, err := resolveSettings(cmd)
	if err != nil {
		return err
	}
	cfg := settings.cfg
	started := time.Now()

	records, input, err := loadRecords(ctx, cfg)
	if err != nil {
		return fmt.Errorf("loading %s history: %w", cfg.Source, err)
	}
	log.Info().Str("source", cfg.Source).Str("input", input).Int("records", len(records)).Msg("History loaded")

	metrics, err := telemetry.New()
	if err != nil {
		log.Warn().Err(err).Msg("Metrics unavailable")
		metrics = nil
	}
	p, err := pipeline.New(settings.pipeline, metrics)
	if err != nil {
		return err
	}
	res, err := p.Run(ctx, records)
	if err != nil {
		return fmt.Errorf("categorizing history: %w", err)
	}

	hours := aggregate.ByHour(res.Visits)
	domains := aggregate.ByDomain(res.Visits)
	printReport(cmd, res, hours, domains)

	visits := privacy.Apply(res.Visits, cfg.RedactQueries)

	paths, err := export.WriteAll(ctx, cfg.OutputDir, export.Bundle{Visits: visits, Hours: hours, Domains: domains})
	if err != nil {
		return fmt.Errorf("exporting results: %w", err)
	}
	for _, path := range paths {
		cmd.Printf("Wrote %s\n", path)
	}

	if runOpts.noDB {
		return nil
	}
	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	sizes := make([]int, res.Labels.Len())
	if res.Clusters != nil {
		sizes = res.Clusters.Sizes()
	}
	inertia := 0.0
	if res.Clusters != nil {
		inertia = res.Clusters.Inertia
	}
	runID, err := dbgorm.NewRunStore(store).SaveRun(ctx, dbgorm.RunInput{
		Source:     cfg.Source,
		Input:      input,
		Config:     settings.pipeline,
		StartedAt:  started,
		FinishedAt: time.Now(),
		Inertia:    inertia,
		Visits:     visits,
		Hours:      hours,
		Domains:    domains,
		Labels:     res.Labels.All(),
		Sizes:      sizes,
	})
	if err != nil {
		return fmt.Errorf("storing run: %w", err)
	}
	cmd.Printf("Stored run %s\n", runID)
	return nil
}

func openStore(cfg *config.Config) (*dbgorm.Store, error) {
	storeCfg := dbgorm.Config{
		Driver:   cfg.DBDriver,
		MaxConns: cfg.MaxConns,
		LogLevel: logger.Silent,
	}
	if cfg.DBDriver == dbgorm.DriverPostgres {
		storeCfg.DSN = cfg.DBDSN
	} else {
		storeCfg.Path = cfg.DBDSN
		if cfg.DBDSN == config.DBPath() {
			if err := config.EnsureAll(); err != nil {
				return nil, fmt.Errorf("initializing data directory: %w", err)
			}
		}
	}
	store, err := dbgorm.NewStore(storeCfg)
	if err != nil {
		return nil, fmt.Errorf("opening results database: %w", err)
	}
	return store, nil
}

func printReport(cmd *cobra.Command, res *pipeline.Result, hours []models.HourCount, domains []models.DomainCount) {
	cmd.Println("Cluster labels:")
	for id, label := range res.Labels.All() {
		size := 0
		if res.Clusters != nil {
			size = len(res.Clusters.Members[id])
		}
		cmd.Printf("  %d: %s (%d visits)\n", id, label, size)
	}

	if peak, ok := aggregate.PeakHour(hours); ok {
		cmd.Printf("Peak browsing hour: %02d:00 (%d visits)\n", peak.Hour, peak.Count)
	} else {
		cmd.Println("Peak browsing hour: unknown")
	}

	cmd.Println("Top websites visited:")
	for _, d := range aggregate.TopDomains(domains, aggregate.DefaultTopDomains) {
		cmd.Printf("  %-40s %d\n", d.Domain, d.Visits)
	}
}
