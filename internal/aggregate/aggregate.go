// Package aggregate rolls categorized visits up into hour-of-day and domain summaries.
package aggregate

import (
	"sort"

	"github.com/nilookiamari/browser-activity-project/pkg/models"
)

// DefaultTopDomains is the number of domains reported by TopDomains when n <= 0.
const DefaultTopDomains = 10

// ByHour counts visits per hour of day, ascending by hour.
// Visits without a valid time are skipped; hours with no visits are omitted.
func ByHour(visits []models.Visit) []models.HourCount {
	var counts [24]int
	for i := range visits {
		if h, ok := visits[i].Hour(); ok {
			counts[h]++
		}
	}

	result := make([]models.HourCount, 0, 24)
	for h, c := range counts {
		if c > 0 {
			result = append(result, models.HourCount{Hour: h, Count: c})
		}
	}
	return result
}

// PeakHour returns the busiest hour, the earliest one on ties.
func PeakHour(counts []models.HourCount) (models.HourCount, bool) {
	var best models.HourCount
	found := false
	for _, hc := range counts {
		if !found || hc.Count > best.Count || (hc.Count == best.Count && hc.Hour < best.Hour) {
			best = hc
			found = true
		}
	}
	return best, found
}

// ByDomain counts visits per domain, sorted by domain name.
func ByDomain(visits []models.Visit) []models.DomainCount {
	counts := make(map[string]int)
	for i := range visits {
		counts[visits[i].Domain]++
	}

	result := make([]models.DomainCount, 0, len(counts))
	for d, c := range counts {
		result = append(result, models.DomainCount{Domain: d, Visits: c})
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Domain < result[j].Domain
	})
	return result
}

// TopDomains returns the n most visited domains, ties broken by domain name.
func TopDomains(counts []models.DomainCount, n int) []models.DomainCount {
	if n <= 0 {
		n = DefaultTopDomains
	}
	sorted := make([]models.DomainCount, len(counts))
	copy(sorted, counts)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Visits != sorted[j].Visits {
			return sorted[i].Visits > sorted[j].Visits
		}
		return sorted[i].Domain < sorted[j].Domain
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

// ByCategory counts visits per category label.
func ByCategory(visits []models.Visit) map[string]int {
	counts := make(map[string]int)
	for i := range visits {
		counts[visits[i].Category]++
	}
	return counts
}

// CategoryCounts returns ByCategory as a slice ordered by visits desc, then name.
func CategoryCounts(visits []models.Visit) []models.CategoryCount {
	counts := ByCategory(visits)
	result := make([]models.CategoryCount, 0, len(counts))
	for c, n := range counts {
		result = append(result, models.CategoryCount{Category: c, Visits: n})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Visits != result[j].Visits {
			return result[i].Visits > result[j].Visits
		}
		return result[i].Category < result[j].Category
	})
	return result
}
