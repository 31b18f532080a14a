package statedec

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// dataset holds the brain-signal and stimulus tensors in flat row-major form.
// Rows are trial-major: trial n occupies rows n*T .. n*T+T-1, time within
// trial. x has p columns, y has q columns; both have T*N rows.
type dataset struct {
	x, y []float64
	t    int // time points per trial
	n    int // trials
	p    int // predictor features
	q    int // response features
}

// newDataset validates and flattens the X and Y row slices. len(X) must be a
// positive multiple of T and X, Y must have matching row counts.
func newDataset(X, Y [][]float64, T int) (*dataset, error) {
	if T < 1 {
		return nil, fmt.Errorf("statedec: T must be >= 1, got %d", T)
	}
	if len(X) == 0 {
		return nil, fmt.Errorf("statedec: X has no rows")
	}
	if len(X) != len(Y) {
		return nil, fmt.Errorf("statedec: X has %d rows but Y has %d", len(X), len(Y))
	}
	if len(X)%T != 0 {
		return nil, fmt.Errorf("statedec: row count %d is not a multiple of T=%d", len(X), T)
	}

	p := len(X[0])
	q := len(Y[0])
	if p == 0 || q == 0 {
		return nil, fmt.Errorf("statedec: X and Y must have at least one column")
	}

	n := len(X) / T
	ds := &dataset{
		x: make([]float64, len(X)*p),
		y: make([]float64, len(Y)*q),
		t: T,
		n: n,
		p: p,
		q: q,
	}
	for i, row := range X {
		if len(row) != p {
			return nil, fmt.Errorf("statedec: X row %d has %d columns, want %d", i, len(row), p)
		}
		copy(ds.x[i*p:], row)
	}
	for i, row := range Y {
		if len(row) != q {
			return nil, fmt.Errorf("statedec: Y row %d has %d columns, want %d", i, len(row), q)
		}
		copy(ds.y[i*q:], row)
	}
	return ds, nil
}

// flattenTrials returns a view of the same data treated as a single trial of
// length T*N. The underlying slices are shared, not copied.
func (d *dataset) flattenTrials() *dataset {
	return &dataset{x: d.x, y: d.y, t: d.t * d.n, n: 1, p: d.p, q: d.q}
}

// timeRows returns the row indices of time point t across all trials.
func (d *dataset) timeRows(t int) []int {
	rows := make([]int, d.n)
	for n := 0; n < d.n; n++ {
		rows[n] = n*d.t + t
	}
	return rows
}

// clusterRows returns the row indices, across all trials, of every time point
// currently assigned to cluster k.
func (d *dataset) clusterRows(assig []int, k int) []int {
	var rows []int
	for n := 0; n < d.n; n++ {
		base := n * d.t
		for t := 0; t < d.t; t++ {
			if assig[t] == k {
				rows = append(rows, base+t)
			}
		}
	}
	return rows
}

// gather copies the given rows of x and y into dense design and target
// matrices. rows must be non-empty.
func (d *dataset) gather(rows []int) (*mat.Dense, *mat.Dense) {
	xm := mat.NewDense(len(rows), d.p, nil)
	ym := mat.NewDense(len(rows), d.q, nil)
	for i, r := range rows {
		xm.SetRow(i, d.x[r*d.p:(r+1)*d.p])
		ym.SetRow(i, d.y[r*d.q:(r+1)*d.q])
	}
	return xm, ym
}

// all returns the full pooled design and target matrices (T*N rows).
// The matrices share backing storage with the dataset; callers must not
// mutate them.
func (d *dataset) all() (*mat.Dense, *mat.Dense) {
	rows := d.t * d.n
	return mat.NewDense(rows, d.p, d.x), mat.NewDense(rows, d.q, d.y)
}
