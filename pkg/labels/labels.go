// Package labels derives human-readable cluster names from centroid term weights.
package labels

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/nilookiamari/browser-activity-project/pkg/features"
)

// Defaults used by NewSynthesizer.
const (
	DefaultKeywords  = 1
	DefaultSeparator = " / "
	DefaultFallback  = "Uncategorized"
)

// ErrUnknownCluster is returned by Mapping.Label for an id outside [0, K).
var ErrUnknownCluster = errors.New("unknown cluster id")

// Mapping maps every cluster id in [0, K) to a label.
type Mapping []string

// Label returns the label of cluster id.
func (m Mapping) Label(id int) (string, error) {
	if id < 0 || id >= len(m) {
		return "", fmt.Errorf("%w: %d (have %d clusters)", ErrUnknownCluster, id, len(m))
	}
	return m[id], nil
}

// Len returns K.
func (m Mapping) Len() int {
	return len(m)
}

// All returns a copy of the labels indexed by cluster id.
func (m Mapping) All() []string {
	out := make([]string, len(m))
	copy(out, m)
	return out
}

// Synthesizer builds labels from the top-weighted terms of each centroid.
type Synthesizer struct {
	Keywords  int
	Separator string
	Fallback  string
}

// NewSynthesizer returns a synthesizer using keywords terms per label.
func NewSynthesizer(keywords int) Synthesizer {
	return Synthesizer{
		Keywords:  keywords,
		Separator: DefaultSeparator,
		Fallback:  DefaultFallback,
	}
}

// Synthesize labels each centroid. Terms are ranked by weight, ties in
// vocabulary order, and only positive weights are used. A centroid with
// no positive weight gets the fallback label.
func (s Synthesizer) Synthesize(centroids [][]float64, vocab *features.Vocabulary) (Mapping, error) {
	if s.Keywords <= 0 {
		return nil, fmt.Errorf("%w: keywords per label must be positive, got %d", features.ErrInvalidConfig, s.Keywords)
	}
	sep := s.Separator
	if sep == "" {
		sep = DefaultSeparator
	}
	fallback := s.Fallback
	if fallback == "" {
		fallback = DefaultFallback
	}

	caser := cases.Title(language.English)
	mapping := make(Mapping, len(centroids))
	for c, centroid := range centroids {
		if len(centroid) != vocab.Len() {
			return nil, fmt.Errorf("%w: centroid %d has %d weights for %d terms",
				features.ErrInvariant, c, len(centroid), vocab.Len())
		}

		keywords := topTerms(centroid, s.Keywords)
		if len(keywords) == 0 {
			mapping[c] = fallback
			continue
		}
		words := make([]string, len(keywords))
		for i, col := range keywords {
			words[i] = caser.String(vocab.Term(col))
		}
		mapping[c] = strings.Join(words, sep)
	}
	return mapping, nil
}

// topTerms returns up to n column indices with positive weight, highest first.
func topTerms(weights []float64, n int) []int {
	cols := make([]int, 0, len(weights))
	for i, w := range weights {
		if w > 0 {
			cols = append(cols, i)
		}
	}
	sort.SliceStable(cols, func(a, b int) bool {
		return weights[cols[a]] > weights[cols[b]]
	})
	if len(cols) > n {
		cols = cols[:n]
	}
	return cols
}
