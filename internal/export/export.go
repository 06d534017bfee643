// Package export writes categorized history and its summaries as CSV files.
package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/nilookiamari/browser-activity-project/pkg/models"
)

// Output file names.
const (
	VisitsFile        = "updated_history.csv"
	HourSummaryFile   = "summary_browsing_by_hour.csv"
	DomainSummaryFile = "summary_domains.csv"
)

// TimeLayout is the timestamp format used in exported files.
const TimeLayout = "2006-01-02 15:04:05"

// WriteVisits writes one row per visit: url, title, last_visit_time, domain, category, hour.
// Unknown times and hours are written as empty cells.
func WriteVisits(w io.Writer, visits []models.Visit) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"url", "title", "last_visit_time", "domain", "category", "hour"}); err != nil {
		return err
	}
	for i := range visits {
		v := &visits[i]
		visitTime, hour := "", ""
		if h, ok := v.Hour(); ok {
			visitTime = v.VisitTime.Time.Format(TimeLayout)
			hour = strconv.Itoa(h)
		}
		if err := cw.Write([]string{v.URL, v.TitleText(), visitTime, v.Domain, v.Category, hour}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteHourSummary writes hour,count rows.
func WriteHourSummary(w io.Writer, counts []models.HourCount) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"hour", "count"}); err != nil {
		return err
	}
	for _, hc := range counts {
		if err := cw.Write([]string{strconv.Itoa(hc.Hour), strconv.Itoa(hc.Count)}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteDomainSummary writes domain,visits rows.
func WriteDomainSummary(w io.Writer, counts []models.DomainCount) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"domain", "visits"}); err != nil {
		return err
	}
	for _, dc := range counts {
		if err := cw.Write([]string{dc.Domain, strconv.Itoa(dc.Visits)}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Bundle is everything WriteAll exports.
type Bundle struct {
	Visits  []models.Visit
	Hours   []models.HourCount
	Domains []models.DomainCount
}

// WriteAll writes the three export files into dir concurrently and returns their paths.
func WriteAll(ctx context.Context, dir string, b Bundle) ([]string, error) {
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("creating export directory: %w", err)
	}

	jobs := []struct {
		name  string
		write func(io.Writer) error
	}{
		{VisitsFile, func(w io.Writer) error { return WriteVisits(w, b.Visits) }},
		{HourSummaryFile, func(w io.Writer) error { return WriteHourSummary(w, b.Hours) }},
		{DomainSummaryFile, func(w io.Writer) error { return WriteDomainSummary(w, b.Domains) }},
	}

	paths := make([]string, len(jobs))
	g, ctx := errgroup.WithContext(ctx)
	for i, job := range jobs {
		path := filepath.Join(dir, job.name)
		paths[i] = path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := writeFile(path, job.write); err != nil {
				return fmt.Errorf("writing %s: %w", job.name, err)
			}
			log.Debug().Str("path", path).Msg("Export written")
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return paths, nil
}

// writeFile writes through a temp file so readers never see a partial export.
func writeFile(path string, write func(io.Writer) error) error {
	tmp := path + ".tmp"
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0640)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}
