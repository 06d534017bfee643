package features

import "math"

// SparseVector is a row of a Matrix. Indices are ascending column numbers
// and Values holds the weight for each.
type SparseVector struct {
	Indices []int
	Values  []float64
}

// Len returns the number of non-zero entries.
func (v SparseVector) Len() int {
	return len(v.Indices)
}

// Dot returns the dot product with a dense vector.
func (v SparseVector) Dot(dense []float64) float64 {
	var sum float64
	for k, i := range v.Indices {
		sum += v.Values[k] * dense[i]
	}
	return sum
}

// SquaredNorm returns the squared L2 norm.
func (v SparseVector) SquaredNorm() float64 {
	var sum float64
	for _, x := range v.Values {
		sum += x * x
	}
	return sum
}

// AddTo adds the vector into dense.
func (v SparseVector) AddTo(dense []float64) {
	for k, i := range v.Indices {
		dense[i] += v.Values[k]
	}
}

// Dense expands the vector to a slice of length dim.
func (v SparseVector) Dense(dim int) []float64 {
	out := make([]float64, dim)
	v.AddTo(out)
	return out
}

// normalize scales the vector to unit L2 length. A zero vector is left as is.
func (v SparseVector) normalize() {
	n := math.Sqrt(v.SquaredNorm())
	if n == 0 {
		return
	}
	for k := range v.Values {
		v.Values[k] /= n
	}
}

// Matrix is a sparse document-term matrix. Row r describes the record whose
// input position is RowIDs[r].
type Matrix struct {
	Rows   []SparseVector
	Dim    int
	RowIDs []int
}

// N returns the number of rows.
func (m *Matrix) N() int {
	if m == nil {
		return 0
	}
	return len(m.Rows)
}

// NonZero returns the number of stored entries across all rows.
func (m *Matrix) NonZero() int {
	total := 0
	for _, r := range m.Rows {
		total += r.Len()
	}
	return total
}
