package statedec

import (
	"sync"

	"gonum.org/v1/gonum/mat"
)

// reconstructionErrors computes, for every (time point, cluster) pair, the
// squared reconstruction error of the cluster's coefficient map on that time
// point's rows, summed over response dimensions and trials. Time points are
// sharded across workers; each worker writes a disjoint range of rows, so no
// synchronization is needed and the result is identical to a sequential run.
func reconstructionErrors(ds *dataset, betas []*mat.Dense, workers int) [][]float64 {
	errs := make([][]float64, ds.t)

	fill := func(start, end int) {
		for t := start; t < end; t++ {
			xm, ym := ds.gather(ds.timeRows(t))
			row := make([]float64, len(betas))
			for c, beta := range betas {
				row[c] = sumSquaredResidual(xm, ym, beta)
			}
			errs[t] = row
		}
	}

	if workers <= 1 || ds.t <= 1 {
		fill(0, ds.t)
		return errs
	}

	var wg sync.WaitGroup
	perWorker := (ds.t + workers - 1) / workers
	for w := 0; w < workers; w++ {
		start := w * perWorker
		end := start + perWorker
		if end > ds.t {
			end = ds.t
		}
		if start >= ds.t {
			break
		}
		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			fill(start, end)
		}(start, end)
	}
	wg.Wait()
	return errs
}

// computePairwise fills a symmetric n×n matrix (flat, row-major) from a
// dissimilarity function, sharding source rows across workers. Each worker
// handles a contiguous range of rows i and computes d(i,j) for all j > i;
// ranges don't overlap, so writes are unsynchronized and the result is
// bitwise identical to a single-threaded run.
func computePairwise(n, workers int, d func(i, j int) float64) []float64 {
	result := make([]float64, n*n)

	fill := func(start, end int) {
		for i := start; i < end; i++ {
			for j := i + 1; j < n; j++ {
				v := d(i, j)
				result[i*n+j] = v
				result[j*n+i] = v
			}
		}
	}

	if workers <= 1 || n <= 1 {
		fill(0, n)
		return result
	}

	var wg sync.WaitGroup
	perWorker := (n + workers - 1) / workers
	for w := 0; w < workers; w++ {
		start := w * perWorker
		end := start + perWorker
		if end > n {
			end = n
		}
		if start >= n {
			break
		}
		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			fill(start, end)
		}(start, end)
	}
	wg.Wait()
	return result
}
