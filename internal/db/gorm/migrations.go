// Package gorm provides GORM-based storage of categorization runs.
package gorm

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"
)

// runMigrations runs all database migrations using gormigrate.
func runMigrations(db *gorm.DB) error {
	m := gormigrate.New(db, gormigrate.DefaultOptions, []*gormigrate.Migration{
		// Migration 001: runs and categorized visits
		{
			ID: "001_runs_visits",
			Migrate: func(tx *gorm.DB) error {
				if err := tx.AutoMigrate(&Run{}); err != nil {
					return err
				}
				return tx.AutoMigrate(&Visit{})
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable("visits", "runs")
			},
		},

		// Migration 002: per-run summaries
		{
			ID: "002_summaries",
			Migrate: func(tx *gorm.DB) error {
				if err := tx.AutoMigrate(&HourSummary{}); err != nil {
					return err
				}
				if err := tx.AutoMigrate(&DomainSummary{}); err != nil {
					return err
				}
				return tx.AutoMigrate(&ClusterLabel{})
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable("cluster_labels", "domain_summaries", "hour_summaries")
			},
		},
	})

	return m.Migrate()
}
