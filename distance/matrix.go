package distance

import "math"

// Matrix is a dense m×c table of distances from m points to c centers.
// It backs the assignment step: the row-wise minimum gives the nearest
// center for each point. Entries are valid only for the centers they were
// computed against; the engine rebuilds the table whenever centers move.
type Matrix struct {
	rows, cols int
	data       []float64
}

// NewMatrix computes the full points×centers distance table.
func NewMatrix(points, centers [][]float64, fn Func) *Matrix {
	m := &Matrix{
		rows: len(points),
		cols: len(centers),
		data: make([]float64, len(points)*len(centers)),
	}
	for i, p := range points {
		row := m.data[i*m.cols : (i+1)*m.cols]
		for j, c := range centers {
			row[j] = fn(p, c)
		}
	}
	return m
}

// Rows returns the number of points.
func (m *Matrix) Rows() int { return m.rows }

// Cols returns the number of centers.
func (m *Matrix) Cols() int { return m.cols }

// At returns the distance from point i to center j.
func (m *Matrix) At(i, j int) float64 {
	return m.data[i*m.cols+j]
}

// NearestInRow returns the index of the nearest center to point i and the
// distance to it. Ties resolve to the lowest center index.
func (m *Matrix) NearestInRow(i int) (int, float64) {
	row := m.data[i*m.cols : (i+1)*m.cols]
	best := 0
	min := row[0]
	for j := 1; j < len(row); j++ {
		if row[j] < min {
			min = row[j]
			best = j
		}
	}
	return best, min
}

// MinReduce returns, for every point, the distance to its nearest center.
// This is the row-reduced form consumed by k-means++ and PAM BUILD, where
// only the nearest already-chosen center matters.
func (m *Matrix) MinReduce() []float64 {
	out := make([]float64, m.rows)
	for i := range out {
		_, out[i] = m.NearestInRow(i)
	}
	return out
}

// Pairwise is the symmetric n×n distance table over a single point set,
// computed once and indexed by point pair. PAM's BUILD and SWAP searches and
// the silhouette score are quadratic in n; precomputing the table keeps every
// candidate evaluation a pure lookup. Memory is O(n²).
type Pairwise struct {
	n    int
	data []float64
}

// NewPairwise computes the full symmetric pairwise table.
func NewPairwise(points [][]float64, fn Func) *Pairwise {
	n := len(points)
	p := &Pairwise{n: n, data: make([]float64, n*n)}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			d := fn(points[i], points[j])
			p.data[i*n+j] = d
			p.data[j*n+i] = d
		}
	}
	return p
}

// Len returns the number of points.
func (p *Pairwise) Len() int { return p.n }

// At returns the distance between points i and j.
func (p *Pairwise) At(i, j int) float64 {
	return p.data[i*p.n+j]
}

// NearestOf returns the index within centers of the nearest center to point i
// and the distance to it. Ties resolve to the lowest position in centers.
func (p *Pairwise) NearestOf(i int, centers []int) (int, float64) {
	best := 0
	min := math.Inf(1)
	for c, idx := range centers {
		if d := p.At(i, idx); d < min {
			min = d
			best = c
		}
	}
	return best, min
}
