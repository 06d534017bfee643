package features

import (
	"fmt"
	"math"
	"sort"
)

// DefaultMaxFeatures caps the vocabulary size when no other value is configured.
const DefaultMaxFeatures = 1000

// Vectorizer turns texts into L2-normalised TF-IDF rows.
// Term frequency is the raw count; inverse document frequency is smoothed
// as ln((1+n)/(1+df)) + 1.
type Vectorizer struct {
	MaxFeatures int
	StopWords   map[string]struct{}

	vocab *Vocabulary
	idf   []float64
}

// NewVectorizer creates a vectorizer keeping at most maxFeatures terms.
func NewVectorizer(maxFeatures int, stopWords map[string]struct{}) (*Vectorizer, error) {
	if maxFeatures <= 0 {
		return nil, fmt.Errorf("%w: max features must be positive, got %d", ErrInvalidConfig, maxFeatures)
	}
	if stopWords == nil {
		stopWords = StopWordSet(URLStopWords)
	}
	return &Vectorizer{MaxFeatures: maxFeatures, StopWords: stopWords}, nil
}

type termStat struct {
	term  string
	df    int
	total int
}

// Fit learns the vocabulary and idf weights from texts.
// Terms are ranked by total corpus count times idf; the top MaxFeatures
// are kept (ties by lexical order) and columns are ordered lexically.
// An empty corpus yields an empty vocabulary.
func (v *Vectorizer) Fit(texts []string) error {
	if v.MaxFeatures <= 0 {
		return fmt.Errorf("%w: max features must be positive, got %d", ErrInvalidConfig, v.MaxFeatures)
	}

	stats := make(map[string]*termStat)
	for _, text := range texts {
		seen := make(map[string]bool)
		for _, term := range Terms(text, v.StopWords) {
			st, ok := stats[term]
			if !ok {
				st = &termStat{term: term}
				stats[term] = st
			}
			st.total++
			if !seen[term] {
				seen[term] = true
				st.df++
			}
		}
	}

	n := float64(len(texts))
	type ranked struct {
		term   string
		weight float64
		idf    float64
	}
	candidates := make([]ranked, 0, len(stats))
	for _, st := range stats {
		idf := smoothIDF(n, float64(st.df))
		candidates = append(candidates, ranked{term: st.term, weight: float64(st.total) * idf, idf: idf})
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].weight != candidates[j].weight {
			return candidates[i].weight > candidates[j].weight
		}
		return candidates[i].term < candidates[j].term
	})
	if len(candidates) > v.MaxFeatures {
		candidates = candidates[:v.MaxFeatures]
	}
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].term < candidates[j].term
	})

	terms := make([]string, len(candidates))
	idf := make([]float64, len(candidates))
	for i, c := range candidates {
		terms[i] = c.term
		idf[i] = c.idf
	}
	v.vocab = NewVocabulary(terms)
	v.idf = idf
	return nil
}

func smoothIDF(n, df float64) float64 {
	return math.Log((1+n)/(1+df)) + 1
}

// Transform vectorizes texts against the fitted vocabulary. rowIDs tags each
// row with its record index; nil means 0..len(texts)-1.
func (v *Vectorizer) Transform(texts []string, rowIDs []int) (*Matrix, error) {
	if v.vocab == nil {
		return nil, ErrNotFitted
	}
	if rowIDs == nil {
		rowIDs = make([]int, len(texts))
		for i := range rowIDs {
			rowIDs[i] = i
		}
	}
	if len(rowIDs) != len(texts) {
		return nil, fmt.Errorf("%w: %d row ids for %d texts", ErrInvariant, len(rowIDs), len(texts))
	}

	m := &Matrix{
		Rows:   make([]SparseVector, len(texts)),
		Dim:    v.vocab.Len(),
		RowIDs: append([]int(nil), rowIDs...),
	}
	for r, text := range texts {
		counts := make(map[int]int)
		for _, term := range Terms(text, v.StopWords) {
			if col, ok := v.vocab.Index(term); ok {
				counts[col]++
			}
		}
		row := SparseVector{
			Indices: make([]int, 0, len(counts)),
			Values:  make([]float64, 0, len(counts)),
		}
		for col := range counts {
			row.Indices = append(row.Indices, col)
		}
		sort.Ints(row.Indices)
		for _, col := range row.Indices {
			row.Values = append(row.Values, float64(counts[col])*v.idf[col])
		}
		row.normalize()
		m.Rows[r] = row
	}
	return m, nil
}

// FitTransform fits on texts and returns their matrix.
func (v *Vectorizer) FitTransform(texts []string, rowIDs []int) (*Matrix, error) {
	if err := v.Fit(texts); err != nil {
		return nil, err
	}
	return v.Transform(texts, rowIDs)
}

// Vocabulary returns the fitted vocabulary, or nil before Fit.
func (v *Vectorizer) Vocabulary() *Vocabulary {
	return v.vocab
}

// IDF returns the idf weight of column i.
func (v *Vectorizer) IDF(i int) float64 {
	return v.idf[i]
}
