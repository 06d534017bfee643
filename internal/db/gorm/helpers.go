// Package gorm provides GORM-based storage of categorization runs.
package gorm

import (
	"database/sql"
	"time"

	"github.com/nilookiamari/browser-activity-project/pkg/models"
)

// sqlNullString creates a sql.NullString from a string.
func sqlNullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{Valid: false}
	}
	return sql.NullString{String: s, Valid: true}
}

// toVisitRow converts a categorized visit into its table row.
func toVisitRow(runID string, v *models.Visit) Visit {
	row := Visit{
		RunID:     runID,
		Position:  v.Index,
		URL:       v.URL,
		Title:     sqlNullString(v.TitleText()),
		Domain:    v.Domain,
		Category:  v.Category,
		ClusterID: v.ClusterID,
	}
	if v.VisitTime.Valid {
		t := v.VisitTime.Time
		row.LastVisitTime = sqlNullString(t.Format(time.RFC3339Nano))
		row.LastVisitEpoch = sql.NullInt64{Int64: t.UnixMilli(), Valid: true}
		row.Hour = sql.NullInt64{Int64: int64(t.Hour()), Valid: true}
	}
	return row
}

// toModelVisit converts a table row back into a models.Visit.
func toModelVisit(row *Visit) models.Visit {
	v := models.Visit{
		Record: models.Record{
			URL:   row.URL,
			Title: row.Title,
		},
		Index:     row.Position,
		Domain:    row.Domain,
		Category:  row.Category,
		ClusterID: row.ClusterID,
	}
	if row.LastVisitTime.Valid {
		if t, err := time.Parse(time.RFC3339Nano, row.LastVisitTime.String); err == nil {
			v.VisitTime = sql.NullTime{Time: t, Valid: true}
		}
	}
	return v
}
