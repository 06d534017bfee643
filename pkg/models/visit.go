// Package models contains domain models for browser-activity-project.
package models

import (
	"database/sql"
	"encoding/json"
	"time"
)

// Record is one row of browsing history as supplied by a loader.
// Title and VisitTime may be null in the source data.
type Record struct {
	URL       string         `db:"url" json:"url"`
	Title     sql.NullString `db:"title" json:"title,omitempty"`
	VisitTime sql.NullTime   `db:"last_visit_time" json:"last_visit_time,omitempty"`
}

// NewRecord builds a Record, treating an empty title and a zero time as null.
func NewRecord(url, title string, visitTime time.Time) Record {
	return Record{
		URL:       url,
		Title:     sql.NullString{String: title, Valid: title != ""},
		VisitTime: sql.NullTime{Time: visitTime, Valid: !visitTime.IsZero()},
	}
}

// TitleText returns the title, or "" when it is null.
func (r Record) TitleText() string {
	if !r.Title.Valid {
		return ""
	}
	return r.Title.String
}

// Visit is a Record enriched by the categorization pipeline.
// Index is the record's position in the input sequence and never changes.
// Category is assigned exactly once per run.
type Visit struct {
	Record
	Domain       string `db:"domain" json:"domain"`
	CombinedText string `db:"-" json:"-"`
	Category     string `db:"category" json:"category"`
	Index        int    `db:"position" json:"position"`
	ClusterID    int    `db:"cluster_id" json:"cluster_id"`
}

// Hour returns the visit's hour of day and whether the visit time is known.
func (v *Visit) Hour() (int, bool) {
	if !v.VisitTime.Valid {
		return 0, false
	}
	return v.VisitTime.Time.Hour(), true
}

// VisitJSON is a JSON-friendly representation of Visit.
// It flattens the nullable fields of the embedded Record.
type VisitJSON struct {
	URL           string `json:"url"`
	Title         string `json:"title,omitempty"`
	LastVisitTime string `json:"last_visit_time,omitempty"`
	Domain        string `json:"domain"`
	Category      string `json:"category"`
	Position      int    `json:"position"`
	ClusterID     int    `json:"cluster_id"`
}

// MarshalJSON implements json.Marshaler for Visit.
func (v *Visit) MarshalJSON() ([]byte, error) {
	j := VisitJSON{
		URL:       v.URL,
		Title:     v.TitleText(),
		Domain:    v.Domain,
		Category:  v.Category,
		Position:  v.Index,
		ClusterID: v.ClusterID,
	}
	if v.VisitTime.Valid {
		j.LastVisitTime = v.VisitTime.Time.Format(time.RFC3339)
	}
	return json.Marshal(j)
}
