// Package history loads browsing-history records from Chrome and CSV sources.
package history

import (
	"net/url"
	"strings"
	"time"
)

// chromeToUnixMicros is the offset between 1601-01-01 and 1970-01-01 UTC.
const chromeToUnixMicros = 11_644_473_600 * 1_000_000

// ExtractDomain returns the host of rawURL without a leading "www.".
// It returns "" when the URL cannot be parsed or has no host.
func ExtractDomain(rawURL string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(strings.ToLower(u.Host), "www.")
}

// ChromeTimeToTime converts Chrome's microseconds-since-1601 timestamp.
// Zero and negative values are reported as invalid.
func ChromeTimeToTime(micros int64) (time.Time, bool) {
	if micros <= 0 {
		return time.Time{}, false
	}
	return time.UnixMicro(micros - chromeToUnixMicros).UTC(), true
}
