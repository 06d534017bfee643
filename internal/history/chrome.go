package history

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nilookiamari/browser-activity-project/pkg/models"
)

// Reader loads history records from a source file.
type Reader interface {
	Read(ctx context.Context, path string) ([]models.Record, error)
}

// ChromeReader reads the urls table of a Chrome History database.
type ChromeReader struct{}

// Read opens path read-only and returns every row of the urls table.
// Pass a snapshot rather than the live profile file, which Chrome keeps locked.
func (ChromeReader) Read(ctx context.Context, path string) ([]models.Record, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("chrome history %s: %w", path, err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=query_only(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening chrome history: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close chrome history")
		}
	}()

	const query = `SELECT url, title, last_visit_time FROM urls`
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying chrome history: %w", err)
	}
	defer rows.Close()

	var records []models.Record
	invalidTimes := 0
	for rows.Next() {
		var (
			rawURL    sql.NullString
			title     sql.NullString
			visitTime sql.NullInt64
		)
		if err := rows.Scan(&rawURL, &title, &visitTime); err != nil {
			return nil, fmt.Errorf("scanning chrome history row: %w", err)
		}

		rec := models.Record{URL: rawURL.String, Title: title}
		if visitTime.Valid {
			if t, ok := ChromeTimeToTime(visitTime.Int64); ok {
				rec.VisitTime = sql.NullTime{Time: t, Valid: true}
			}
		}
		if !rec.VisitTime.Valid {
			invalidTimes++
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chrome history: %w", err)
	}

	log.Debug().
		Str("path", path).
		Int("records", len(records)).
		Int("invalid_times", invalidTimes).
		Msg("Loaded chrome history")
	return records, nil
}

// SnapshotChromeHistory copies the History database at src to dst once.
// An existing dst is reused and reported with copied=false.
func SnapshotChromeHistory(src, dst string) (copied bool, err error) {
	if _, err := os.Stat(dst); err == nil {
		log.Info().Str("snapshot", dst).Msg("Chrome history snapshot already exists, reusing it")
		return false, nil
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0700); err != nil {
		return false, fmt.Errorf("creating snapshot directory: %w", err)
	}

	in, err := os.Open(src)
	if err != nil {
		return false, fmt.Errorf("opening chrome history: %w", err)
	}
	defer in.Close()

	tmp := dst + ".tmp"
	out, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return false, fmt.Errorf("creating snapshot: %w", err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(tmp)
		return false, fmt.Errorf("copying chrome history: %w", err)
	}
	if err := out.Close(); err != nil {
		os.Remove(tmp)
		return false, fmt.Errorf("closing snapshot: %w", err)
	}
	if err := os.Rename(tmp, dst); err != nil {
		os.Remove(tmp)
		return false, fmt.Errorf("finalizing snapshot: %w", err)
	}

	log.Info().Str("source", src).Str("snapshot", dst).Msg("Chrome history copied")
	return true, nil
}

// DefaultChromeHistoryPath returns the History file of the default Chrome
// profile for the current OS.
func DefaultChromeHistoryPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(home, "AppData", "Local", "Google", "Chrome", "User Data", "Default", "History")
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "Google", "Chrome", "Default", "History")
	default:
		return filepath.Join(home, ".config", "google-chrome", "Default", "History")
	}
}
