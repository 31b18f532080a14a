package statedec

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/floats"
)

// maxBreakpointAttempts bounds the rejection-sampling loop for random
// segmentation breakpoints. Rounding collisions make some draws invalid;
// past this many retries the input is considered degenerate.
const maxBreakpointAttempts = 10000

// segmentation is one candidate partition of the timeline into K ordered
// contiguous blocks, with its regression score (lower is better).
type segmentation struct {
	assig []int
	score float64
}

// sequentialCluster implements MethodSequential: a best-of search over
// contiguous segmentations of the within-trial timeline.
func sequentialCluster(ds *dataset, cfg Config) (*Result, error) {
	best, err := sequentialSearch(ds, cfg.NumClusters, cfg.Repetitions, cfg.Ridge, cfg.Rand)
	if err != nil {
		return nil, err
	}
	return &Result{
		Assignments: best.assig,
		Gamma:       oneHot(best.assig, cfg.NumClusters),
		Score:       best.score,
		Converged:   true,
	}, nil
}

// sequentialSearch scores the evenly spaced baseline segmentation, then
// repetitions random ones, and returns the best found. An incumbent is only
// replaced by a strictly lower score, so the result is never worse than the
// baseline.
func sequentialSearch(ds *dataset, k, repetitions int, ridge float64, rng *rand.Rand) (segmentation, error) {
	best := segmentation{assig: baselineSegmentation(ds.t, k)}
	score, err := segmentationScore(ds, best.assig, k, ridge)
	if err != nil {
		return segmentation{}, err
	}
	best.score = score

	for rep := 0; rep < repetitions; rep++ {
		ends, err := randomBreakpoints(rng, ds.t, k)
		if err != nil {
			return segmentation{}, err
		}
		assig := assignmentFromEnds(ends, ds.t)
		score, err := segmentationScore(ds, assig, k, ridge)
		if err != nil {
			return segmentation{}, err
		}
		if score < best.score {
			best = segmentation{assig: assig, score: score}
		}
	}
	return best, nil
}

// baselineSegmentation splits T time points into K contiguous blocks with
// round(T/K) spacing; the last block absorbs the remainder.
func baselineSegmentation(t, k int) []int {
	spacing := int(math.Round(float64(t) / float64(k)))
	if spacing < 1 {
		spacing = 1
	}
	ends := make([]int, k)
	for i := 0; i < k-1; i++ {
		end := (i + 1) * spacing
		// Leave room for the remaining blocks to be non-empty.
		if limit := t - (k - 1 - i); end > limit {
			end = limit
		}
		ends[i] = end
	}
	ends[k-1] = t
	return assignmentFromEnds(ends, t)
}

// randomBreakpoints draws K increasing block ends covering [1, T]: K uniform
// draws are cumulatively summed, normalized, and scaled to T. Draws whose
// rounding produces an empty block are rejected and retried, up to
// maxBreakpointAttempts; past that it fails with ErrSegmentation.
func randomBreakpoints(rng *rand.Rand, t, k int) ([]int, error) {
	draws := make([]float64, k)
	for attempt := 0; attempt < maxBreakpointAttempts; attempt++ {
		for i := range draws {
			draws[i] = rng.Float64()
		}
		total := floats.Sum(draws)
		if total == 0 {
			continue
		}

		ends := make([]int, k)
		cum := 0.0
		prev := 0
		valid := true
		for i, d := range draws {
			cum += d
			end := int(math.Round(cum / total * float64(t)))
			if i == k-1 {
				end = t
			}
			if end <= prev {
				valid = false
				break
			}
			ends[i] = end
			prev = end
		}
		if valid {
			return ends, nil
		}
	}
	return nil, ErrSegmentation
}

// assignmentFromEnds converts ordered block ends into an assignment vector:
// time points [prevEnd, ends[i]) belong to cluster i.
func assignmentFromEnds(ends []int, t int) []int {
	assig := make([]int, t)
	start := 0
	for k, end := range ends {
		for i := start; i < end; i++ {
			assig[i] = k
		}
		start = end
	}
	return assig
}

// segmentationScore is the sum over clusters of the residual norm of a
// ridge-regularized fit on the cluster's pooled rows. The ridge term guards
// against singular pooled designs for short blocks.
func segmentationScore(ds *dataset, assig []int, k int, ridge float64) (float64, error) {
	var score float64
	for c := 0; c < k; c++ {
		rows := ds.clusterRows(assig, c)
		if len(rows) == 0 {
			continue
		}
		xm, ym := ds.gather(rows)
		beta, err := leastSquares(xm, ym, ridge)
		if err != nil {
			return 0, err
		}
		score += residualNorm(xm, ym, beta)
	}
	return score, nil
}
