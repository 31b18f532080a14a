package statedec

import (
	"errors"
	"fmt"
)

// ErrNumericalInstability reports a design matrix too ill-conditioned to
// solve, even after the ridge fallback.
var ErrNumericalInstability = errors.New("statedec: numerically unstable least-squares solve")

// ErrSegmentation reports that no valid random segmentation could be
// generated within the retry budget. This happens only for degenerate
// inputs, e.g. far more clusters than time points.
var ErrSegmentation = errors.New("statedec: could not generate valid segmentation breakpoints")

// ConstraintWarning reports a time point where Transitions and InitialStates
// left no feasible cluster. The lowest cluster index was assigned there as a
// deterministic fallback. Collected in Result.Warnings.
type ConstraintWarning struct {
	// TimePoint is the within-trial time point with an empty feasible set.
	TimePoint int
	// Previous is the cluster assigned at TimePoint-1, or -1 when
	// TimePoint is 0 and InitialStates alone was infeasible.
	Previous int
}

func (w *ConstraintWarning) Error() string {
	if w.Previous < 0 {
		return fmt.Sprintf("statedec: no feasible initial cluster at time point %d, assigned cluster 0", w.TimePoint)
	}
	return fmt.Sprintf("statedec: no feasible successor of cluster %d at time point %d, assigned cluster 0",
		w.Previous, w.TimePoint)
}

// InstabilityWarning reports that a plain least-squares fit was singular or
// ill-conditioned and the ridge-regularized fallback was used instead.
// Collected in Result.Warnings.
type InstabilityWarning struct {
	// Cluster is the cluster whose pooled fit was unstable, or -1 when the
	// warning concerns a per-time-point fit.
	Cluster int
	// TimePoint is the time point whose fit was unstable, or -1 when the
	// warning concerns a per-cluster fit.
	TimePoint int
}

func (w *InstabilityWarning) Error() string {
	if w.Cluster >= 0 {
		return fmt.Sprintf("statedec: ill-conditioned fit for cluster %d, used ridge fallback", w.Cluster)
	}
	return fmt.Sprintf("statedec: ill-conditioned fit at time point %d, used ridge fallback", w.TimePoint)
}
