package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/nilookiamari/browser-activity-project/internal/history"
	"github.com/nilookiamari/browser-activity-project/internal/telemetry"
	"github.com/nilookiamari/browser-activity-project/pkg/cluster"
	"github.com/nilookiamari/browser-activity-project/pkg/features"
	"github.com/nilookiamari/browser-activity-project/pkg/labels"
	"github.com/nilookiamari/browser-activity-project/pkg/models"
)

// Stage is the progress of a run. Stages only move forward.
type Stage int

const (
	StageRaw Stage = iota
	StageVectorized
	StageClustered
	StageLabeled
	StageCategorized
)

func (s Stage) String() string {
	switch s {
	case StageRaw:
		return "raw"
	case StageVectorized:
		return "vectorized"
	case StageClustered:
		return "clustered"
	case StageLabeled:
		return "labeled"
	case StageCategorized:
		return "categorized"
	default:
		return fmt.Sprintf("stage(%d)", int(s))
	}
}

// Result is the output of a completed run.
type Result struct {
	Visits     []models.Visit
	Labels     labels.Mapping
	Clusters   *cluster.Result
	Vocabulary *features.Vocabulary
	Stage      Stage
}

// Pipeline categorizes browsing history.
type Pipeline struct {
	cfg     Config
	metrics *telemetry.Instruments
}

// New creates a pipeline after validating cfg. metrics may be nil.
func New(cfg Config, metrics *telemetry.Instruments) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Pipeline{cfg: cfg, metrics: metrics}, nil
}

// Config returns the run configuration.
func (p *Pipeline) Config() Config {
	return p.cfg
}

// Run categorizes records. The returned visits are in input order and every
// visit carries exactly one category. Records are not modified.
func (p *Pipeline) Run(ctx context.Context, records []models.Record) (res *Result, err error) {
	start := time.Now()
	defer func() {
		p.metrics.RecordRun(ctx, len(records), err)
	}()

	res = &Result{Stage: StageRaw, Visits: derive(records)}
	if len(records) == 0 {
		res.Labels = labels.Mapping{}
		res.Stage = StageCategorized
		log.Info().Msg("No records to categorize")
		return res, nil
	}

	// vectorize
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	stageStart := time.Now()
	vec, err := features.NewVectorizer(p.cfg.MaxFeatures, features.StopWordSet(features.URLStopWords, p.cfg.StopWordsExtra))
	if err != nil {
		return nil, err
	}
	texts := make([]string, len(res.Visits))
	ids := make([]int, len(res.Visits))
	for i := range res.Visits {
		texts[i] = res.Visits[i].CombinedText
		ids[i] = res.Visits[i].Index
	}
	matrix, err := vec.FitTransform(texts, ids)
	if err != nil {
		return nil, fmt.Errorf("vectorizing records: %w", err)
	}
	res.Vocabulary = vec.Vocabulary()
	if err := p.advance(ctx, res, StageVectorized, stageStart); err != nil {
		return nil, err
	}
	log.Debug().Int("terms", res.Vocabulary.Len()).Int("nonzero", matrix.NonZero()).Msg("Records vectorized")

	// cluster
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	stageStart = time.Now()
	km := cluster.KMeans{K: p.cfg.NumClusters, Seed: p.cfg.RandomSeed, MaxIter: p.cfg.MaxIterations}
	res.Clusters, err = km.Fit(matrix)
	if err != nil {
		return nil, fmt.Errorf("clustering records: %w", err)
	}
	if err := p.advance(ctx, res, StageClustered, stageStart); err != nil {
		return nil, err
	}

	// label
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	stageStart = time.Now()
	res.Labels, err = labels.NewSynthesizer(p.cfg.KeywordsPerLabel).Synthesize(res.Clusters.Centroids, res.Vocabulary)
	if err != nil {
		return nil, fmt.Errorf("labeling clusters: %w", err)
	}
	if err := p.advance(ctx, res, StageLabeled, stageStart); err != nil {
		return nil, err
	}

	// categorize
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	stageStart = time.Now()
	if err := categorize(res.Visits, matrix.RowIDs, res.Clusters.Assignments, res.Labels); err != nil {
		return nil, err
	}
	if err := p.advance(ctx, res, StageCategorized, stageStart); err != nil {
		return nil, err
	}

	log.Info().
		Int("records", len(records)).
		Int("clusters", res.Labels.Len()).
		Strs("labels", res.Labels.All()).
		Float64("inertia", res.Clusters.Inertia).
		Dur("elapsed", time.Since(start)).
		Msg("Categorization complete")
	return res, nil
}

// advance moves res to the next stage. Skipping or repeating a stage is an invariant violation.
func (p *Pipeline) advance(ctx context.Context, res *Result, next Stage, start time.Time) error {
	if next != res.Stage+1 {
		return fmt.Errorf("%w: cannot move from %s to %s", ErrInvariant, res.Stage, next)
	}
	res.Stage = next
	p.metrics.RecordStage(ctx, next.String(), start)
	log.Debug().Str("stage", next.String()).Dur("elapsed", time.Since(start)).Msg("Stage complete")
	return nil
}

// derive builds the visits with domain and combined text for each record.
func derive(records []models.Record) []models.Visit {
	visits := make([]models.Visit, len(records))
	for i, rec := range records {
		domain := history.ExtractDomain(rec.URL)
		if domain == "" {
			log.Debug().Int("position", i).Str("url", rec.URL).Msg("No domain in URL")
		}
		visits[i] = models.Visit{
			Record:       rec,
			Index:        i,
			Domain:       domain,
			CombinedText: features.CombinedText(domain, rec.TitleText()),
			ClusterID:    -1,
		}
	}
	return visits
}

// categorize writes each visit's cluster and label. rowIDs and assignments
// come from the matrix and must line up with visits one to one.
func categorize(visits []models.Visit, rowIDs, assignments []int, mapping labels.Mapping) error {
	if len(rowIDs) != len(visits) || len(assignments) != len(visits) {
		return fmt.Errorf("%w: %d visits, %d rows, %d assignments",
			ErrInvariant, len(visits), len(rowIDs), len(assignments))
	}

	assigned := make([]bool, len(visits))
	for row, id := range rowIDs {
		if id < 0 || id >= len(visits) || visits[id].Index != id {
			return fmt.Errorf("%w: row %d refers to unknown record %d", ErrInvariant, row, id)
		}
		if assigned[id] {
			return fmt.Errorf("%w: record %d assigned twice", ErrInvariant, id)
		}
		label, err := mapping.Label(assignments[row])
		if err != nil {
			return fmt.Errorf("%w: record %d: %v", ErrInvariant, id, err)
		}
		visits[id].ClusterID = assignments[row]
		visits[id].Category = label
		assigned[id] = true
	}
	return nil
}
