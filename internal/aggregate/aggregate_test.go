package aggregate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/nilookiamari/browser-activity-project/pkg/models"
)

func visit(domain, category string, hour int) models.Visit {
	var ts time.Time
	if hour >= 0 {
		ts = time.Date(2024, time.June, 1, hour, 30, 0, 0, time.UTC)
	}
	return models.Visit{
		Record:   models.NewRecord("https://"+domain+"/", "", ts),
		Domain:   domain,
		Category: category,
	}
}

func TestByHour(t *testing.T) {
	visits := []models.Visit{
		visit("a.com", "A", 14),
		visit("b.com", "B", 9),
		visit("a.com", "A", 14),
		visit("c.com", "C", -1),
	}

	assert.Equal(t, []models.HourCount{{Hour: 9, Count: 1}, {Hour: 14, Count: 2}}, ByHour(visits))
	assert.Empty(t, ByHour(nil))
}

func TestPeakHour(t *testing.T) {
	tests := []struct {
		name     string
		counts   []models.HourCount
		expected models.HourCount
		found    bool
	}{
		{name: "empty", counts: nil, found: false},
		{
			name:     "single max",
			counts:   []models.HourCount{{Hour: 8, Count: 1}, {Hour: 20, Count: 5}},
			expected: models.HourCount{Hour: 20, Count: 5},
			found:    true,
		},
		{
			name:     "tie picks earliest hour",
			counts:   []models.HourCount{{Hour: 21, Count: 3}, {Hour: 7, Count: 3}},
			expected: models.HourCount{Hour: 7, Count: 3},
			found:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := PeakHour(tt.counts)
			assert.Equal(t, tt.found, ok)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestDomains(t *testing.T) {
	visits := []models.Visit{
		visit("openai.com", "Openai", 1),
		visit("bbc.com", "News", 2),
		visit("openai.com", "Openai", 3),
		visit("abc.net", "News", 4),
		visit("", "Uncategorized", 5),
	}

	byDomain := ByDomain(visits)
	assert.Equal(t, []models.DomainCount{
		{Domain: "", Visits: 1},
		{Domain: "abc.net", Visits: 1},
		{Domain: "bbc.com", Visits: 1},
		{Domain: "openai.com", Visits: 2},
	}, byDomain)

	assert.Equal(t, []models.DomainCount{
		{Domain: "openai.com", Visits: 2},
		{Domain: "", Visits: 1},
	}, TopDomains(byDomain, 2))
	assert.Len(t, TopDomains(byDomain, 0), 4)
}

func TestCategories(t *testing.T) {
	visits := []models.Visit{
		visit("openai.com", "Openai", 1),
		visit("bbc.com", "News", 2),
		visit("openai.com", "Openai", 3),
	}

	assert.Equal(t, map[string]int{"Openai": 2, "News": 1}, ByCategory(visits))
	assert.Equal(t, []models.CategoryCount{
		{Category: "Openai", Visits: 2},
		{Category: "News", Visits: 1},
	}, CategoryCounts(visits))
}
