// Package gorm provides GORM-based storage of categorization runs.
package gorm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/nilookiamari/browser-activity-project/pkg/models"
)

// insertBatchSize bounds the rows per INSERT statement.
const insertBatchSize = 500

// ErrNoRuns is returned when the store holds no runs.
var ErrNoRuns = errors.New("no runs stored")

// RunInput is everything persisted for one run.
type RunInput struct {
	Source     string
	Input      string
	Config     any
	StartedAt  time.Time
	FinishedAt time.Time
	Inertia    float64
	Visits     []models.Visit
	Hours      []models.HourCount
	Domains    []models.DomainCount
	Labels     []string // indexed by cluster id
	Sizes      []int    // indexed by cluster id
}

// RunStore provides run-related database operations.
type RunStore struct {
	db *gorm.DB
}

// NewRunStore creates a new run store.
func NewRunStore(store *Store) *RunStore {
	return &RunStore{db: store.DB}
}

// SaveRun stores a run with its visits, summaries and labels in one
// transaction and returns the run id.
func (s *RunStore) SaveRun(ctx context.Context, in RunInput) (string, error) {
	cfgJSON, err := json.Marshal(in.Config)
	if err != nil {
		return "", fmt.Errorf("marshal run config: %w", err)
	}

	started := in.StartedAt
	if started.IsZero() {
		started = time.Now()
	}
	finished := in.FinishedAt
	if finished.IsZero() {
		finished = time.Now()
	}

	run := &Run{
		ID:              uuid.NewString(),
		Source:          in.Source,
		Input:           in.Input,
		Config:          string(cfgJSON),
		RecordCount:     len(in.Visits),
		ClusterCount:    len(in.Labels),
		Inertia:         in.Inertia,
		StartedAt:       started.UTC().Format(time.RFC3339),
		StartedAtEpoch:  started.UnixMilli(),
		FinishedAtEpoch: finished.UnixMilli(),
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(run).Error; err != nil {
			return fmt.Errorf("insert run: %w", err)
		}

		if len(in.Visits) > 0 {
			rows := make([]Visit, len(in.Visits))
			for i := range in.Visits {
				rows[i] = toVisitRow(run.ID, &in.Visits[i])
			}
			if err := tx.CreateInBatches(rows, insertBatchSize).Error; err != nil {
				return fmt.Errorf("insert visits: %w", err)
			}
		}

		if len(in.Hours) > 0 {
			hours := make([]HourSummary, len(in.Hours))
			for i, h := range in.Hours {
				hours[i] = HourSummary{RunID: run.ID, Hour: h.Hour, Count: h.Count}
			}
			if err := tx.CreateInBatches(hours, insertBatchSize).Error; err != nil {
				return fmt.Errorf("insert hour summaries: %w", err)
			}
		}

		if len(in.Domains) > 0 {
			domains := make([]DomainSummary, len(in.Domains))
			for i, d := range in.Domains {
				domains[i] = DomainSummary{RunID: run.ID, Domain: d.Domain, Visits: d.Visits}
			}
			if err := tx.CreateInBatches(domains, insertBatchSize).Error; err != nil {
				return fmt.Errorf("insert domain summaries: %w", err)
			}
		}

		if len(in.Labels) > 0 {
			labels := make([]ClusterLabel, len(in.Labels))
			for c, label := range in.Labels {
				size := 0
				if c < len(in.Sizes) {
					size = in.Sizes[c]
				}
				labels[c] = ClusterLabel{RunID: run.ID, ClusterID: c, Label: label, Size: size}
			}
			if err := tx.CreateInBatches(labels, insertBatchSize).Error; err != nil {
				return fmt.Errorf("insert cluster labels: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	log.Info().
		Str("run_id", run.ID).
		Int("visits", run.RecordCount).
		Int("clusters", run.ClusterCount).
		Msg("Run stored")
	return run.ID, nil
}

// LatestRun returns the most recently started run.
func (s *RunStore) LatestRun(ctx context.Context) (*Run, error) {
	var run Run
	err := s.db.WithContext(ctx).
		Order("started_at_epoch DESC").
		First(&run).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNoRuns
	}
	if err != nil {
		return nil, err
	}
	return &run, nil
}

// VisitsByRun returns the visits of a run in input order.
func (s *RunStore) VisitsByRun(ctx context.Context, runID string) ([]models.Visit, error) {
	var rows []Visit
	err := s.db.WithContext(ctx).
		Where("run_id = ?", runID).
		Order("position ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	visits := make([]models.Visit, len(rows))
	for i := range rows {
		visits[i] = toModelVisit(&rows[i])
	}
	return visits, nil
}

// CategoryCounts returns visits per category for a run, most visited first.
func (s *RunStore) CategoryCounts(ctx context.Context, runID string) ([]models.CategoryCount, error) {
	var counts []models.CategoryCount
	err := s.db.WithContext(ctx).
		Model(&Visit{}).
		Select("category, COUNT(*) AS visits").
		Where("run_id = ?", runID).
		Group("category").
		Order("visits DESC, category ASC").
		Scan(&counts).Error
	if err != nil {
		return nil, err
	}
	return counts, nil
}

// ClusterLabels returns the labels of a run ordered by cluster id.
func (s *RunStore) ClusterLabels(ctx context.Context, runID string) ([]ClusterLabel, error) {
	var labels []ClusterLabel
	err := s.db.WithContext(ctx).
		Where("run_id = ?", runID).
		Order("cluster_id ASC").
		Find(&labels).Error
	if err != nil {
		return nil, err
	}
	return labels, nil
}

// HourSummaries returns the hour-of-day counts of a run.
func (s *RunStore) HourSummaries(ctx context.Context, runID string) ([]models.HourCount, error) {
	var counts []models.HourCount
	err := s.db.WithContext(ctx).
		Model(&HourSummary{}).
		Select("hour, count").
		Where("run_id = ?", runID).
		Order("hour ASC").
		Scan(&counts).Error
	if err != nil {
		return nil, err
	}
	return counts, nil
}
