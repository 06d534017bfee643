package labels

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nilookiamari/browser-activity-project/pkg/features"
)

func TestSynthesize(t *testing.T) {
	vocab := features.NewVocabulary([]string{"bbc", "gpt", "news", "openai", "world"})

	tests := []struct {
		name      string
		keywords  int
		centroids [][]float64
		expected  []string
	}{
		{
			name:      "single keyword",
			keywords:  1,
			centroids: [][]float64{{0, 0.6, 0, 0.8, 0}, {0.5, 0, 0.7, 0, 0.1}},
			expected:  []string{"Openai", "News"},
		},
		{
			name:      "two keywords joined",
			keywords:  2,
			centroids: [][]float64{{0, 0.6, 0, 0.8, 0}},
			expected:  []string{"Openai / Gpt"},
		},
		{
			name:      "ties use vocabulary order",
			keywords:  2,
			centroids: [][]float64{{0, 0, 0.5, 0, 0.5}},
			expected:  []string{"News / World"},
		},
		{
			name:      "fewer positive terms than keywords",
			keywords:  3,
			centroids: [][]float64{{0, 0, 0, 0, 0.2}},
			expected:  []string{"World"},
		},
		{
			name:      "zero centroid falls back",
			keywords:  1,
			centroids: [][]float64{{0, 0, 0, 0, 0}, {0, 1, 0, 0, 0}},
			expected:  []string{DefaultFallback, "Gpt"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mapping, err := NewSynthesizer(tt.keywords).Synthesize(tt.centroids, vocab)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, mapping.All())
			assert.Equal(t, len(tt.centroids), mapping.Len())
		})
	}
}

func TestSynthesizeEmptyVocabulary(t *testing.T) {
	mapping, err := NewSynthesizer(1).Synthesize([][]float64{{}, {}}, features.NewVocabulary(nil))
	require.NoError(t, err)
	assert.Equal(t, []string{DefaultFallback, DefaultFallback}, mapping.All())
}

func TestSynthesizeErrors(t *testing.T) {
	vocab := features.NewVocabulary([]string{"a1", "b2"})

	_, err := NewSynthesizer(0).Synthesize([][]float64{{1, 0}}, vocab)
	assert.ErrorIs(t, err, features.ErrInvalidConfig)

	_, err = NewSynthesizer(1).Synthesize([][]float64{{1, 0, 0}}, vocab)
	assert.ErrorIs(t, err, features.ErrInvariant)
}

func TestMappingLabel(t *testing.T) {
	m := Mapping{"News", "Openai"}

	label, err := m.Label(1)
	require.NoError(t, err)
	assert.Equal(t, "Openai", label)

	for _, id := range []int{-1, 2} {
		_, err := m.Label(id)
		assert.ErrorIs(t, err, ErrUnknownCluster)
	}
}

func TestCustomSeparatorAndFallback(t *testing.T) {
	s := Synthesizer{Keywords: 2, Separator: ", ", Fallback: "Other"}
	vocab := features.NewVocabulary([]string{"cooking", "pasta"})

	mapping, err := s.Synthesize([][]float64{{0.3, 0.9}, {0, 0}}, vocab)
	require.NoError(t, err)
	assert.Equal(t, []string{"Pasta, Cooking", "Other"}, mapping.All())
}
