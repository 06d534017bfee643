// Package cluster provides seeded k-means clustering over sparse TF-IDF rows.
package cluster

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/floats"

	"github.com/nilookiamari/browser-activity-project/pkg/features"
)

// Defaults applied when the corresponding KMeans field is not positive.
const (
	DefaultMaxIter   = 300
	DefaultTolerance = 1e-4
	DefaultNInit     = 10
)

// ErrInvalidK is returned when the requested cluster count is not positive.
var ErrInvalidK = fmt.Errorf("%w: cluster count must be positive", features.ErrInvalidConfig)

// ErrNilMatrix is returned when Fit is called without a matrix.
var ErrNilMatrix = errors.New("nil matrix")

// KMeans configures a clustering run. The same matrix and Seed always
// produce the same Result.
type KMeans struct {
	K         int
	Seed      int64
	MaxIter   int
	Tolerance float64
	NInit     int
}

// Result is the outcome of a k-means run.
//
// Assignments[r] is the cluster of matrix row r. Centroids always has K
// entries; clusters that received no rows keep a zero or previous centroid.
// Members[c] lists the record ids (Matrix.RowIDs) assigned to c, ascending.
type Result struct {
	Assignments []int
	Centroids   [][]float64
	Members     [][]int
	Inertia     float64
	Iterations  int
}

// K returns the number of clusters in the result.
func (r *Result) K() int {
	return len(r.Centroids)
}

// Sizes returns the member count of every cluster.
func (r *Result) Sizes() []int {
	sizes := make([]int, len(r.Members))
	for c, m := range r.Members {
		sizes[c] = len(m)
	}
	return sizes
}

func (km KMeans) withDefaults() KMeans {
	if km.MaxIter <= 0 {
		km.MaxIter = DefaultMaxIter
	}
	if km.Tolerance <= 0 {
		km.Tolerance = DefaultTolerance
	}
	if km.NInit <= 0 {
		km.NInit = DefaultNInit
	}
	return km
}

// Fit clusters the rows of m.
//
// With fewer rows than K the run uses one cluster per row and the surplus
// centroids are zero vectors with no members.
func (km KMeans) Fit(m *features.Matrix) (*Result, error) {
	if km.K <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidK, km.K)
	}
	if m == nil {
		return nil, ErrNilMatrix
	}
	if len(m.RowIDs) != len(m.Rows) {
		return nil, fmt.Errorf("%w: %d row ids for %d rows", features.ErrInvariant, len(m.RowIDs), len(m.Rows))
	}
	km = km.withDefaults()

	n := m.N()
	if n == 0 {
		return &Result{
			Assignments: []int{},
			Centroids:   zeroCentroids(km.K, m.Dim),
			Members:     make([][]int, km.K),
		}, nil
	}

	k := km.K
	if n < k {
		log.Debug().Int("rows", n).Int("k", km.K).Msg("Fewer rows than clusters, reducing effective k")
		k = n
	}

	norms := make([]float64, n)
	for i, row := range m.Rows {
		norms[i] = row.SquaredNorm()
	}

	master := rand.New(rand.NewSource(km.Seed))
	var best *run
	for attempt := 0; attempt < km.NInit; attempt++ {
		rng := rand.New(rand.NewSource(master.Int63()))
		r := km.lloyd(m, norms, initCentroids(m, norms, k, rng))
		log.Debug().
			Int("attempt", attempt).
			Float64("inertia", r.inertia).
			Int("iterations", r.iterations).
			Msg("k-means run complete")
		if best == nil || r.inertia < best.inertia {
			best = r
		}
	}

	centroids := best.centroids
	centroids = append(centroids, zeroCentroids(km.K-k, m.Dim)...)

	members := make([][]int, km.K)
	for row, c := range best.assignments {
		members[c] = append(members[c], m.RowIDs[row])
	}
	for _, mem := range members {
		sort.Ints(mem)
	}

	return &Result{
		Assignments: best.assignments,
		Centroids:   centroids,
		Members:     members,
		Inertia:     best.inertia,
		Iterations:  best.iterations,
	}, nil
}

type run struct {
	assignments []int
	centroids   [][]float64
	inertia     float64
	iterations  int
}

func zeroCentroids(k, dim int) [][]float64 {
	out := make([][]float64, k)
	for i := range out {
		out[i] = make([]float64, dim)
	}
	return out
}

// sqDist is the squared Euclidean distance between a sparse row with squared
// norm rowNorm and a dense centroid with squared norm centroidNorm.
func sqDist(row features.SparseVector, rowNorm float64, centroid []float64, centroidNorm float64) float64 {
	d := rowNorm - 2*row.Dot(centroid) + centroidNorm
	if d < 0 {
		return 0
	}
	return d
}

// initCentroids seeds k centroids with greedy k-means++: each new centre is
// the best of several distance-weighted candidates.
func initCentroids(m *features.Matrix, norms []float64, k int, rng *rand.Rand) [][]float64 {
	n := m.N()
	trials := 2 + int(math.Log(float64(k)))
	chosen := make([]bool, n)
	centroids := make([][]float64, 0, k)

	first := rng.Intn(n)
	chosen[first] = true
	c0 := m.Rows[first].Dense(m.Dim)
	centroids = append(centroids, c0)

	closest := make([]float64, n)
	for i, row := range m.Rows {
		closest[i] = sqDist(row, norms[i], c0, norms[first])
	}
	potential := floats.Sum(closest)

	for len(centroids) < k {
		if potential <= 0 {
			idx := firstUnchosen(chosen)
			chosen[idx] = true
			centroids = append(centroids, m.Rows[idx].Dense(m.Dim))
			continue
		}

		bestIdx := -1
		bestPotential := math.Inf(1)
		var bestClosest []float64
		for t := 0; t < trials; t++ {
			cand := sampleIndex(closest, potential, rng)
			dense := m.Rows[cand].Dense(m.Dim)
			next := make([]float64, n)
			for i, row := range m.Rows {
				next[i] = math.Min(closest[i], sqDist(row, norms[i], dense, norms[cand]))
			}
			if p := floats.Sum(next); p < bestPotential {
				bestIdx, bestPotential, bestClosest = cand, p, next
			}
		}

		chosen[bestIdx] = true
		centroids = append(centroids, m.Rows[bestIdx].Dense(m.Dim))
		closest = bestClosest
		potential = bestPotential
	}
	return centroids
}

func firstUnchosen(chosen []bool) int {
	for i, c := range chosen {
		if !c {
			return i
		}
	}
	return 0
}

// sampleIndex picks an index with probability proportional to weights.
func sampleIndex(weights []float64, total float64, rng *rand.Rand) int {
	target := rng.Float64() * total
	last := 0
	var cum float64
	for i, w := range weights {
		if w <= 0 {
			continue
		}
		cum += w
		last = i
		if cum > target {
			return i
		}
	}
	return last
}

// lloyd refines centroids until assignments settle, the centroid shift
// drops to the tolerance, or MaxIter is reached.
func (km KMeans) lloyd(m *features.Matrix, norms []float64, centroids [][]float64) *run {
	n := m.N()
	k := len(centroids)
	assignments := make([]int, n)
	for i := range assignments {
		assignments[i] = -1
	}

	iterations := 0
	for iterations < km.MaxIter {
		iterations++
		changed := assign(m, norms, centroids, assignments)

		shift := 0.0
		next := zeroCentroids(k, m.Dim)
		counts := make([]int, k)
		for i, row := range m.Rows {
			row.AddTo(next[assignments[i]])
			counts[assignments[i]]++
		}
		for c := range next {
			if counts[c] == 0 {
				// empty cluster keeps its previous centroid
				copy(next[c], centroids[c])
				continue
			}
			floats.Scale(1/float64(counts[c]), next[c])
			d := floats.Distance(next[c], centroids[c], 2)
			shift += d * d
		}
		centroids = next

		if changed == 0 || shift <= km.Tolerance {
			break
		}
	}

	assign(m, norms, centroids, assignments)
	return &run{
		assignments: assignments,
		centroids:   centroids,
		inertia:     inertia(m, norms, centroids, assignments),
		iterations:  iterations,
	}
}

// assign moves every row to its nearest centroid, lowest id on ties, and
// returns how many rows changed cluster.
func assign(m *features.Matrix, norms []float64, centroids [][]float64, assignments []int) int {
	cnorms := make([]float64, len(centroids))
	for c, cent := range centroids {
		cnorms[c] = floats.Dot(cent, cent)
	}

	changed := 0
	for i, row := range m.Rows {
		best, bestDist := 0, math.Inf(1)
		for c, cent := range centroids {
			if d := sqDist(row, norms[i], cent, cnorms[c]); d < bestDist {
				best, bestDist = c, d
			}
		}
		if assignments[i] != best {
			assignments[i] = best
			changed++
		}
	}
	return changed
}

func inertia(m *features.Matrix, norms []float64, centroids [][]float64, assignments []int) float64 {
	total := 0.0
	for i, row := range m.Rows {
		c := centroids[assignments[i]]
		total += sqDist(row, norms[i], c, floats.Dot(c, c))
	}
	return total
}
