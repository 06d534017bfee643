package history

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog/log"
	"golang.org/x/text/encoding/charmap"

	"github.com/nilookiamari/browser-activity-project/pkg/models"
)

// ErrMissingColumn is returned when a CSV file lacks the url column.
var ErrMissingColumn = errors.New("missing required column")

// csvTimeLayouts are tried in order; day comes before month.
// Day and month accept one or two digits.
var csvTimeLayouts = []string{
	"2/1/2006 15:04",
	"2/1/2006 15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	time.RFC3339,
}

// CSVReader reads history exported as CSV with url, title and
// last_visit_time columns in any order.
type CSVReader struct{}

// Read loads records from path. Files that are not valid UTF-8 are decoded as Latin-1.
func (CSVReader) Read(ctx context.Context, path string) ([]models.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading history csv: %w", err)
	}
	return ParseCSV(ctx, data)
}

// ParseCSV decodes CSV history data.
func ParseCSV(ctx context.Context, data []byte) ([]models.Record, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	if !utf8.Valid(data) {
		decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
		if err != nil {
			return nil, fmt.Errorf("decoding latin-1 csv: %w", err)
		}
		data = decoded
	}

	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading csv header: %w", err)
	}

	cols := map[string]int{"url": -1, "title": -1, "last_visit_time": -1}
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(name))
		if _, ok := cols[name]; ok {
			cols[name] = i
		}
	}
	if cols["url"] < 0 {
		return nil, fmt.Errorf("%w: url", ErrMissingColumn)
	}

	var records []models.Record
	badTimes := 0
	for line := 2; ; line++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading csv line %d: %w", line, err)
		}

		rec := models.Record{URL: field(row, cols["url"])}
		if title := field(row, cols["title"]); title != "" {
			rec.Title = sql.NullString{String: title, Valid: true}
		}
		if raw := field(row, cols["last_visit_time"]); raw != "" {
			if t, ok := parseVisitTime(raw); ok {
				rec.VisitTime = sql.NullTime{Time: t, Valid: true}
			} else {
				badTimes++
				log.Debug().Int("line", line).Str("value", raw).Msg("Unparseable visit time, treating as null")
			}
		}
		records = append(records, rec)
	}

	log.Debug().Int("records", len(records)).Int("bad_times", badTimes).Msg("Loaded history csv")
	return records, nil
}

func field(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func parseVisitTime(raw string) (time.Time, bool) {
	for _, layout := range csvTimeLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
