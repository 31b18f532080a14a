package statedec

import (
	"fmt"
	"math/rand"
	"runtime"
	"time"
)

// Method selects the state-assignment strategy.
type Method string

const (
	MethodRegression   Method = "regression"
	MethodHierarchical Method = "hierarchical"
	MethodSequential   Method = "sequential"
)

// Measure selects the pairwise dissimilarity used by MethodHierarchical.
type Measure string

const (
	// MeasureError is a symmetrized cross-application error: the residual of
	// applying each time point's model to the other's data.
	MeasureError Measure = "error"
	// MeasureResponse compares the predictions of the pooled data under the
	// two time points' models.
	MeasureResponse Measure = "response"
	// MeasureBeta compares the flattened coefficient maps directly.
	MeasureBeta Measure = "beta"
)

// Config controls state assignment behavior.
// Start with [DefaultConfig] and override the fields you need.
type Config struct {
	// NumClusters is the number of states K, shared across all trials.
	// Must be >= 2. Default: 2.
	NumClusters int

	// Method selects the assignment strategy. Default: MethodRegression.
	Method Method

	// Measure selects the dissimilarity measure for MethodHierarchical.
	// Ignored by the other methods. Default: MeasureError.
	Measure Measure

	// MaxIterations caps the number of refit/reassign passes of
	// MethodRegression. Must be >= 1. Default: 100.
	MaxIterations int

	// Repetitions is the number of random restarts for MethodSequential.
	// 0 means the contiguous baseline segmentation only. Default: 100.
	Repetitions int

	// Ridge is the regularization constant added to the normal-equation
	// diagonal for segmentation scoring, and for the fallback solve when a
	// plain fit is singular. Must be >= 0. Default: 1e-4.
	Ridge float64

	// Transitions is a K×K adjacency: Transitions[j][k] permits cluster k to
	// directly follow cluster j in time. nil means unconstrained. Must stay
	// fixed for the duration of a call.
	Transitions [][]bool

	// InitialStates marks the clusters eligible at the first time point.
	// nil means unconstrained. At least one entry must be true.
	InitialStates []bool

	// GammaInit is an optional T×K one-hot starting assignment for
	// MethodRegression. When nil, the method bootstraps itself with a
	// sequential search over the trial-flattened data.
	GammaInit [][]float64

	// Classification indicates that Y holds class indicators rather than a
	// continuous stimulus. Carried for parity with the decoding-model
	// trainer; the assignment computation is identical either way.
	Classification bool

	// Workers controls the number of goroutines for parallelizable stages
	// (pairwise dissimilarities, reconstruction errors). 0 means use
	// runtime.NumCPU(). Default: 0 (auto).
	Workers int

	// Rand is the random source for MethodSequential and the regression
	// bootstrap. nil means a time-seeded source; supply a fixed-seed
	// rand.New(rand.NewSource(seed)) for reproducible runs.
	Rand *rand.Rand
}

// Result contains the output of state assignment.
type Result struct {
	// Assignments gives each within-trial time point a state ID in
	// [0, NumClusters). Shared across all trials.
	Assignments []int

	// Gamma is the T×K one-hot indicator matrix derived from Assignments:
	// exactly one 1 per row, rows in time order.
	Gamma [][]float64

	// Score is the objective value of the returned assignment: total squared
	// reconstruction error for MethodRegression, the best segmentation score
	// for MethodSequential, 0 for MethodHierarchical (which has no scalar
	// objective).
	Score float64

	// Iterations is the number of refit/reassign passes MethodRegression
	// performed. 0 for the other methods.
	Iterations int

	// Converged reports whether MethodRegression reached a fixed point
	// before MaxIterations. Always true for the other methods.
	Converged bool

	// Warnings collects non-fatal conditions encountered during the run:
	// *ConstraintWarning for infeasible time points and *InstabilityWarning
	// for ridge-fallback fits.
	Warnings []error
}

// DefaultConfig returns a Config with reasonable defaults.
func DefaultConfig() Config {
	return Config{
		NumClusters:   2,
		Method:        MethodRegression,
		Measure:       MeasureError,
		MaxIterations: 100,
		Repetitions:   100,
		Ridge:         1e-4,
	}
}

// validateConfig checks that cfg fields are valid and returns a descriptive error if not.
func validateConfig(cfg *Config) error {
	if cfg.NumClusters < 2 {
		return fmt.Errorf("statedec: NumClusters must be >= 2, got %d", cfg.NumClusters)
	}
	switch cfg.Method {
	case MethodRegression, MethodHierarchical, MethodSequential:
		// valid
	default:
		return fmt.Errorf("statedec: invalid Method %q", cfg.Method)
	}
	switch cfg.Measure {
	case MeasureError, MeasureResponse, MeasureBeta:
		// valid
	default:
		return fmt.Errorf("statedec: invalid Measure %q", cfg.Measure)
	}
	if cfg.MaxIterations < 1 {
		return fmt.Errorf("statedec: MaxIterations must be >= 1, got %d", cfg.MaxIterations)
	}
	if cfg.Repetitions < 0 {
		return fmt.Errorf("statedec: Repetitions must be >= 0, got %d", cfg.Repetitions)
	}
	if cfg.Ridge < 0 {
		return fmt.Errorf("statedec: Ridge must be >= 0, got %f", cfg.Ridge)
	}
	if cfg.Transitions != nil {
		if len(cfg.Transitions) != cfg.NumClusters {
			return fmt.Errorf("statedec: Transitions has %d rows, want %d", len(cfg.Transitions), cfg.NumClusters)
		}
		for j, row := range cfg.Transitions {
			if len(row) != cfg.NumClusters {
				return fmt.Errorf("statedec: Transitions row %d has %d columns, want %d", j, len(row), cfg.NumClusters)
			}
		}
	}
	if cfg.InitialStates != nil {
		if len(cfg.InitialStates) != cfg.NumClusters {
			return fmt.Errorf("statedec: InitialStates has length %d, want %d", len(cfg.InitialStates), cfg.NumClusters)
		}
		any := false
		for _, ok := range cfg.InitialStates {
			any = any || ok
		}
		if !any {
			return fmt.Errorf("statedec: InitialStates permits no cluster at the first time point")
		}
	}
	return nil
}

// applyDefaults fills in zero-valued config fields with their defaults.
func applyDefaults(cfg *Config) {
	if cfg.Method == "" {
		cfg.Method = MethodRegression
	}
	if cfg.Measure == "" {
		cfg.Measure = MeasureError
	}
	if cfg.MaxIterations == 0 {
		cfg.MaxIterations = 100
	}
	if cfg.Workers == 0 {
		cfg.Workers = runtime.NumCPU()
	}
	if cfg.Rand == nil {
		cfg.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
}

// ClusterDecoding partitions the T within-trial time points into
// cfg.NumClusters states, each with its own linear decoding model Y = X·β.
//
// X and Y are trial-major row slices: trial n occupies rows n*T .. n*T+T-1,
// time within trial. All trials must have the same length T, and X and Y
// must have the same row count. Returns an error if the config is invalid or
// the data is malformed.
func ClusterDecoding(X, Y [][]float64, T int, cfg Config) (*Result, error) {
	applyDefaults(&cfg)
	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}

	ds, err := newDataset(X, Y, T)
	if err != nil {
		return nil, err
	}
	if T < cfg.NumClusters {
		return nil, fmt.Errorf("statedec: T=%d is smaller than NumClusters=%d", T, cfg.NumClusters)
	}
	if cfg.GammaInit != nil && len(cfg.GammaInit) != T {
		return nil, fmt.Errorf("statedec: GammaInit has %d rows, want T=%d", len(cfg.GammaInit), T)
	}

	switch cfg.Method {
	case MethodHierarchical:
		return hierarchicalCluster(ds, cfg)
	case MethodSequential:
		return sequentialCluster(ds, cfg)
	default:
		return regressionCluster(ds, cfg)
	}
}
