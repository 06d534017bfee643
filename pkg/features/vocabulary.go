package features

// Vocabulary is the ordered set of terms forming the columns of a Matrix.
// It is read-only once built.
type Vocabulary struct {
	terms []string
	index map[string]int
}

// NewVocabulary builds a vocabulary whose column order is the order of terms.
// Duplicate terms keep their first position.
func NewVocabulary(terms []string) *Vocabulary {
	v := &Vocabulary{
		terms: make([]string, 0, len(terms)),
		index: make(map[string]int, len(terms)),
	}
	for _, t := range terms {
		if _, ok := v.index[t]; ok {
			continue
		}
		v.index[t] = len(v.terms)
		v.terms = append(v.terms, t)
	}
	return v
}

// Len returns the number of terms.
func (v *Vocabulary) Len() int {
	if v == nil {
		return 0
	}
	return len(v.terms)
}

// Term returns the term at column i.
func (v *Vocabulary) Term(i int) string {
	return v.terms[i]
}

// Index returns the column of term and whether it is present.
func (v *Vocabulary) Index(term string) (int, bool) {
	if v == nil {
		return 0, false
	}
	i, ok := v.index[term]
	return i, ok
}

// Terms returns a copy of the terms in column order.
func (v *Vocabulary) Terms() []string {
	if v == nil {
		return nil
	}
	out := make([]string, len(v.terms))
	copy(out, v.terms)
	return out
}
