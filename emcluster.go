package statedec

import (
	"gonum.org/v1/gonum/mat"
)

// bootstrapRepetitions is the restart count for the sequential search that
// seeds MethodRegression when no GammaInit is given.
const bootstrapRepetitions = 1000

// assignState is one iteration of the regression clusterer: an assignment,
// the per-cluster coefficient maps fit from the previous assignment, and the
// total squared reconstruction error of the assignment under those maps.
// States are immutable; emStep consumes one and produces the next.
type assignState struct {
	assig []int
	beta  []*mat.Dense
	sse   float64
}

// regressionCluster implements MethodRegression: alternate fitting one
// regression per cluster with reassigning each time point to the cluster of
// lowest reconstruction error, subject to the transition constraints, until
// the assignment reaches a fixed point or MaxIterations is hit.
func regressionCluster(ds *dataset, cfg Config) (*Result, error) {
	k := cfg.NumClusters
	fs := newFeasibleSet(k, cfg.Transitions, cfg.InitialStates)

	assig, err := initialAssignment(ds, cfg)
	if err != nil {
		return nil, err
	}
	repairInitialCluster(assig, fs)

	res := &Result{}
	state := assignState{assig: assig}
	for it := 0; it < cfg.MaxIterations; it++ {
		next, warnings, err := emStep(ds, state.assig, k, cfg.Ridge, cfg.Workers, fs)
		if err != nil {
			return nil, err
		}
		res.Iterations = it + 1

		converged := equalAssignments(next.assig, state.assig)
		state = next
		if converged || it == cfg.MaxIterations-1 {
			// Warnings describe the pass that produced the returned
			// assignment.
			res.Warnings = warnings
			if converged {
				res.Converged = true
				break
			}
		}
	}

	res.Assignments = state.assig
	res.Gamma = oneHot(state.assig, k)
	res.Score = state.sse
	return res, nil
}

// initialAssignment resolves the starting assignment: GammaInit when given,
// otherwise a sequential search over the data flattened across trials into a
// single long pseudo-trial, from which the first trial's block labels are
// taken. The flattening mirrors the decoding toolbox's bootstrap behavior.
func initialAssignment(ds *dataset, cfg Config) ([]int, error) {
	if cfg.GammaInit != nil {
		return assignmentsFromGamma(cfg.GammaInit, cfg.NumClusters)
	}

	flat := ds.flattenTrials()
	best, err := sequentialSearch(flat, cfg.NumClusters, bootstrapRepetitions, cfg.Ridge, cfg.Rand)
	if err != nil {
		return nil, err
	}
	return best.assig[:ds.t], nil
}

// repairInitialCluster relabels clusters in place so that the first time
// point's cluster is one permitted by the initial-state constraint. Swapping
// a pair of cluster identities preserves the shape of the clustering.
func repairInitialCluster(assig []int, fs *feasibleSet) {
	first := assig[0]
	if fs.initial[first] {
		return
	}
	target := fs.firstAllowed()
	if target < 0 {
		return
	}
	for t, c := range assig {
		switch c {
		case first:
			assig[t] = target
		case target:
			assig[t] = first
		}
	}
}

// emStep performs one refit/reassign pass and returns the next state.
//
// M-step: fit one coefficient map per cluster from the rows currently
// assigned to it, pooled over trials; clusters with no assigned time points
// get a zero map. E-step: compute the reconstruction error of every cluster's
// map at every time point, then reassign each time point in time order to the
// feasible cluster of minimum error, so each decision conditions on the
// previous time point's choice.
func emStep(ds *dataset, assig []int, k int, ridge float64, workers int, fs *feasibleSet) (assignState, []error, error) {
	betas := make([]*mat.Dense, k)
	var warnings []error
	var empty []int
	for c := 0; c < k; c++ {
		rows := ds.clusterRows(assig, c)
		if len(rows) == 0 {
			betas[c] = zeroCoefficients(ds.p, ds.q)
			empty = append(empty, c)
			continue
		}
		xm, ym := ds.gather(rows)
		beta, usedRidge, err := fitCoefficients(xm, ym, ridge)
		if err != nil {
			return assignState{}, nil, err
		}
		if usedRidge {
			warnings = append(warnings, &InstabilityWarning{Cluster: c, TimePoint: -1})
		}
		betas[c] = beta
	}

	errs := reconstructionErrors(ds, betas, workers)

	// A cluster with no assigned time points would stay empty forever under
	// its zero map. Reseed each on the worst-reconstructed time point so it
	// can re-enter the assignment; ties take the earliest time point.
	if len(empty) > 0 {
		if err := reseedEmptyClusters(ds, assig, betas, errs, empty, ridge); err != nil {
			return assignState{}, nil, err
		}
	}

	next := make([]int, ds.t)
	var sse float64
	for t := 0; t < ds.t; t++ {
		var allowed []int
		prev := -1
		if t == 0 {
			allowed = fs.allowedFirst()
		} else {
			prev = next[t-1]
			allowed = fs.allowed(prev)
		}
		if len(allowed) == 0 {
			// No reachable cluster here: deterministic fallback.
			next[t] = 0
			warnings = append(warnings, &ConstraintWarning{TimePoint: t, Previous: prev})
			sse += errs[t][0]
			continue
		}
		best := allowed[0]
		for _, c := range allowed[1:] {
			if errs[t][c] < errs[t][best] {
				best = c
			}
		}
		next[t] = best
		sse += errs[t][best]
	}

	return assignState{assig: next, beta: betas, sse: sse}, warnings, nil
}

// reseedEmptyClusters refits each empty cluster's coefficient map on the
// rows of the time point with the largest reconstruction error under the
// current assignment, and refreshes that cluster's error column. Each empty
// cluster claims a distinct time point.
func reseedEmptyClusters(ds *dataset, assig []int, betas []*mat.Dense, errs [][]float64, empty []int, ridge float64) error {
	claimed := make(map[int]bool, len(empty))
	for _, c := range empty {
		worst := -1
		worstErr := -1.0
		for t := 0; t < ds.t; t++ {
			if claimed[t] {
				continue
			}
			if e := errs[t][assig[t]]; e > worstErr {
				worstErr = e
				worst = t
			}
		}
		if worst < 0 {
			return nil
		}
		claimed[worst] = true

		xm, ym := ds.gather(ds.timeRows(worst))
		beta, _, err := fitCoefficients(xm, ym, ridge)
		if err != nil {
			return err
		}
		betas[c] = beta
		for t := 0; t < ds.t; t++ {
			tx, ty := ds.gather(ds.timeRows(t))
			errs[t][c] = sumSquaredResidual(tx, ty, beta)
		}
	}
	return nil
}
