// Package gorm provides GORM-based storage of categorization runs.
package gorm

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm/logger"

	"github.com/nilookiamari/browser-activity-project/pkg/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(Config{
		Path:     filepath.Join(t.TempDir(), "test.db"),
		MaxConns: 4,
		LogLevel: logger.Silent,
	})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestNewStore(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.Ping())
	assert.Equal(t, DriverSQLite, store.Driver())

	var journalMode string
	require.NoError(t, store.DB.Raw("PRAGMA journal_mode").Scan(&journalMode).Error)
	assert.Equal(t, "wal", journalMode)

	for _, table := range []string{"runs", "visits", "hour_summaries", "domain_summaries", "cluster_labels"} {
		assert.True(t, store.DB.Migrator().HasTable(table), "table %q does not exist", table)
	}
}

func TestNewStoreUnsupportedDriver(t *testing.T) {
	_, err := NewStore(Config{Driver: "oracle"})
	assert.ErrorIs(t, err, ErrUnsupportedDriver)
}

type RunStoreSuite struct {
	suite.Suite
	store *RunStore
	ctx   context.Context
}

func TestRunStoreSuite(t *testing.T) {
	suite.Run(t, new(RunStoreSuite))
}

func (s *RunStoreSuite) SetupTest() {
	s.store = NewRunStore(newTestStore(s.T()))
	s.ctx = context.Background()
}

func (s *RunStoreSuite) input(started time.Time) RunInput {
	visitTime := time.Date(2024, 3, 5, 14, 30, 0, 0, time.UTC)
	return RunInput{
		Source:    "csv",
		Input:     "data/sample_history.csv",
		Config:    map[string]any{"num_clusters": 2},
		StartedAt: started,
		Inertia:   0.81,
		Visits: []models.Visit{
			{Record: models.NewRecord("https://openai.com/a", "GPT updates", visitTime), Index: 0, Domain: "openai.com", Category: "Openai", ClusterID: 0},
			{Record: models.NewRecord("https://bbc.com/", "", time.Time{}), Index: 1, Domain: "bbc.com", Category: "Bbc", ClusterID: 1},
			{Record: models.NewRecord("https://openai.com/b", "New model", visitTime), Index: 2, Domain: "openai.com", Category: "Openai", ClusterID: 0},
		},
		Hours:   []models.HourCount{{Hour: 14, Count: 2}},
		Domains: []models.DomainCount{{Domain: "bbc.com", Visits: 1}, {Domain: "openai.com", Visits: 2}},
		Labels:  []string{"Openai", "Bbc"},
		Sizes:   []int{2, 1},
	}
}

func (s *RunStoreSuite) TestLatestRunEmpty() {
	_, err := s.store.LatestRun(s.ctx)
	s.ErrorIs(err, ErrNoRuns)
}

func (s *RunStoreSuite) TestSaveAndQuery() {
	older := time.Now().Add(-time.Hour)
	_, err := s.store.SaveRun(s.ctx, s.input(older))
	s.Require().NoError(err)

	id, err := s.store.SaveRun(s.ctx, s.input(time.Now()))
	s.Require().NoError(err)
	s.NotEmpty(id)

	latest, err := s.store.LatestRun(s.ctx)
	s.Require().NoError(err)
	s.Equal(id, latest.ID)
	s.Equal(3, latest.RecordCount)
	s.Equal(2, latest.ClusterCount)
	s.JSONEq(`{"num_clusters": 2}`, latest.Config)

	visits, err := s.store.VisitsByRun(s.ctx, id)
	s.Require().NoError(err)
	s.Require().Len(visits, 3)
	for i, v := range visits {
		s.Equal(i, v.Index)
	}
	s.Equal("GPT updates", visits[0].TitleText())
	s.Require().True(visits[0].VisitTime.Valid)
	s.Equal(14, visits[0].VisitTime.Time.Hour())
	s.False(visits[1].VisitTime.Valid)
	s.False(visits[1].Title.Valid)

	counts, err := s.store.CategoryCounts(s.ctx, id)
	s.Require().NoError(err)
	s.Equal([]models.CategoryCount{{Category: "Openai", Visits: 2}, {Category: "Bbc", Visits: 1}}, counts)

	labels, err := s.store.ClusterLabels(s.ctx, id)
	s.Require().NoError(err)
	s.Require().Len(labels, 2)
	s.Equal("Openai", labels[0].Label)
	s.Equal(2, labels[0].Size)

	hours, err := s.store.HourSummaries(s.ctx, id)
	s.Require().NoError(err)
	s.Equal([]models.HourCount{{Hour: 14, Count: 2}}, hours)
}

func (s *RunStoreSuite) TestSaveEmptyRun() {
	id, err := s.store.SaveRun(s.ctx, RunInput{Source: "csv"})
	s.Require().NoError(err)

	visits, err := s.store.VisitsByRun(s.ctx, id)
	s.Require().NoError(err)
	s.Empty(visits)
}
