package statedec

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// hierarchicalCluster implements MethodHierarchical: fit one regression per
// time point, build the pairwise model-dissimilarity matrix for the chosen
// measure, agglomerate, and cut the dendrogram at K clusters.
//
// Ward linkage is used when the measure is a Euclidean embedding of the
// models (beta, response); the cross-application error measure is not, so it
// falls back to complete linkage.
func hierarchicalCluster(ds *dataset, cfg Config) (*Result, error) {
	res := &Result{Converged: true}

	betas := make([]*mat.Dense, ds.t)
	for t := 0; t < ds.t; t++ {
		xm, ym := ds.gather(ds.timeRows(t))
		beta, usedRidge, err := fitCoefficients(xm, ym, cfg.Ridge)
		if err != nil {
			return nil, err
		}
		if usedRidge {
			res.Warnings = append(res.Warnings, &InstabilityWarning{Cluster: -1, TimePoint: t})
		}
		betas[t] = beta
	}

	dist := dissimilarityMatrix(ds, betas, cfg.Measure, cfg.Workers)

	link := LinkageWard
	if cfg.Measure == MeasureError {
		link = LinkageComplete
	}
	merges := buildDendrogram(dist, ds.t, link)
	assig := cutDendrogram(merges, ds.t, cfg.NumClusters)

	res.Assignments = assig
	res.Gamma = oneHot(assig, cfg.NumClusters)
	return res, nil
}

// dissimilarityMatrix computes the flat T×T pairwise dissimilarity between
// per-time-point models under the given measure.
func dissimilarityMatrix(ds *dataset, betas []*mat.Dense, measure Measure, workers int) []float64 {
	switch measure {
	case MeasureBeta:
		// Euclidean distance between flattened coefficient maps.
		flat := flattenAll(betas)
		return computePairwise(ds.t, workers, func(i, j int) float64 {
			return floats.Distance(flat[i], flat[j], 2)
		})

	case MeasureResponse:
		// Euclidean distance between the pooled-data predictions of the two
		// models.
		xall, _ := ds.all()
		preds := make([][]float64, ds.t)
		for t, beta := range betas {
			var pred mat.Dense
			pred.Mul(xall, beta)
			preds[t] = flatten(&pred)
		}
		return computePairwise(ds.t, workers, func(i, j int) float64 {
			return floats.Distance(preds[i], preds[j], 2)
		})

	default:
		// MeasureError: symmetrized cross-application residual. Each time
		// point's rows are gathered once up front.
		xs := make([]*mat.Dense, ds.t)
		ys := make([]*mat.Dense, ds.t)
		for t := 0; t < ds.t; t++ {
			xs[t], ys[t] = ds.gather(ds.timeRows(t))
		}
		return computePairwise(ds.t, workers, func(i, j int) float64 {
			return residualNorm(xs[i], ys[i], betas[j]) + residualNorm(xs[j], ys[j], betas[i])
		})
	}
}

// flatten copies a matrix into a row-major vector.
func flatten(m *mat.Dense) []float64 {
	r, c := m.Dims()
	out := make([]float64, 0, r*c)
	for i := 0; i < r; i++ {
		out = append(out, m.RawRowView(i)...)
	}
	return out
}

func flattenAll(ms []*mat.Dense) [][]float64 {
	out := make([][]float64, len(ms))
	for i, m := range ms {
		out[i] = flatten(m)
	}
	return out
}
