// Package privacy provides URL redaction for browsing history before it is stored.
package privacy

import (
	"net/url"
	"regexp"

	"github.com/nilookiamari/browser-activity-project/pkg/models"
)

// queryTailRegex matches everything from the first ? or # onwards.
var queryTailRegex = regexp.MustCompile(`[?#].*$`)

// RedactURL removes the query string, fragment and user credentials from raw.
// URLs that do not parse are cut at the first ? or #.
func RedactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return queryTailRegex.ReplaceAllString(raw, "")
	}
	u.RawQuery = ""
	u.ForceQuery = false
	u.Fragment = ""
	u.RawFragment = ""
	u.User = nil
	return u.String()
}

// RedactVisits returns a copy of visits with every URL redacted.
// Domains and categories are left untouched.
func RedactVisits(visits []models.Visit) []models.Visit {
	out := make([]models.Visit, len(visits))
	copy(out, visits)
	for i := range out {
		out[i].URL = RedactURL(out[i].URL)
	}
	return out
}

// Apply redacts visits when enabled and returns them unchanged otherwise.
func Apply(visits []models.Visit, enabled bool) []models.Visit {
	if !enabled {
		return visits
	}
	return RedactVisits(visits)
}
