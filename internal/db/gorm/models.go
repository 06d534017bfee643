// Package gorm provides GORM-based storage of categorization runs.
package gorm

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Run is one categorization run.
type Run struct {
	ID              string `gorm:"primaryKey;type:varchar(36)"`
	Source          string `gorm:"type:text;not null"`
	Input           string `gorm:"type:text"`
	Config          string `gorm:"type:text"` // JSON
	RecordCount     int    `gorm:"not null;default:0"`
	ClusterCount    int    `gorm:"not null;default:0"`
	Inertia         float64
	StartedAt       string `gorm:"not null"`
	StartedAtEpoch  int64  `gorm:"index:idx_runs_started,sort:desc;not null"`
	FinishedAtEpoch int64
}

func (Run) TableName() string { return "runs" }

// BeforeCreate hook to ensure the id and timestamps are set.
func (r *Run) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.StartedAtEpoch == 0 {
		r.StartedAtEpoch = time.Now().UnixMilli()
	}
	if r.StartedAt == "" {
		r.StartedAt = time.UnixMilli(r.StartedAtEpoch).UTC().Format(time.RFC3339)
	}
	return nil
}

// Visit is a categorized history record within a run.
type Visit struct {
	ID             int64          `gorm:"primaryKey;autoIncrement"`
	RunID          string         `gorm:"type:varchar(36);not null;index:idx_visits_run_position,priority:1"`
	Position       int            `gorm:"not null;index:idx_visits_run_position,priority:2"`
	URL            string         `gorm:"type:text;not null"`
	Title          sql.NullString `gorm:"type:text"`
	LastVisitTime  sql.NullString `gorm:"type:text"`
	LastVisitEpoch sql.NullInt64
	Domain         string `gorm:"type:text;index"`
	Category       string `gorm:"type:text;index"`
	ClusterID      int
	Hour           sql.NullInt64
}

func (Visit) TableName() string { return "visits" }

// HourSummary is the visit count for one hour of day within a run.
type HourSummary struct {
	ID    int64  `gorm:"primaryKey;autoIncrement"`
	RunID string `gorm:"type:varchar(36);not null;index"`
	Hour  int    `gorm:"not null"`
	Count int    `gorm:"not null"`
}

func (HourSummary) TableName() string { return "hour_summaries" }

// DomainSummary is the visit count for one domain within a run.
type DomainSummary struct {
	ID     int64  `gorm:"primaryKey;autoIncrement"`
	RunID  string `gorm:"type:varchar(36);not null;index"`
	Domain string `gorm:"type:text;not null"`
	Visits int    `gorm:"not null"`
}

func (DomainSummary) TableName() string { return "domain_summaries" }

// ClusterLabel records the label and size of one cluster within a run.
type ClusterLabel struct {
	ID        int64  `gorm:"primaryKey;autoIncrement"`
	RunID     string `gorm:"type:varchar(36);not null;index"`
	ClusterID int    `gorm:"not null"`
	Label     string `gorm:"type:text;not null"`
	Size      int    `gorm:"not null"`
}

func (ClusterLabel) TableName() string { return "cluster_labels" }
