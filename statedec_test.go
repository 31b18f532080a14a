package statedec

import (
	"math"
	"math/rand"
	"testing"
)

// twoRegimeData builds T*N rows where the first half of each trial follows
// y = 3*x1 - 2*x2 exactly and the second half follows y = -3*x1 + 2*x2.
// Predictors are drawn from a fixed-seed source so per-cluster designs are
// well conditioned.
func twoRegimeData(T, N int) (X, Y [][]float64) {
	rng := rand.New(rand.NewSource(42))
	X = make([][]float64, T*N)
	Y = make([][]float64, T*N)
	for n := 0; n < N; n++ {
		for t := 0; t < T; t++ {
			row := n*T + t
			x1 := rng.Float64()*4 - 2
			x2 := rng.Float64()*4 - 2
			X[row] = []float64{x1, x2}
			if t < T/2 {
				Y[row] = []float64{3*x1 - 2*x2}
			} else {
				Y[row] = []float64{-3*x1 + 2*x2}
			}
		}
	}
	return X, Y
}

// checkOneHot verifies that every Gamma row contains exactly one 1 and
// otherwise 0.
func checkOneHot(t *testing.T, gamma [][]float64, k int) {
	t.Helper()
	for i, row := range gamma {
		if len(row) != k {
			t.Fatalf("Gamma row %d has %d columns, want %d", i, len(row), k)
		}
		ones := 0
		for j, v := range row {
			switch v {
			case 1:
				ones++
			case 0:
			default:
				t.Fatalf("Gamma[%d][%d] = %v, want 0 or 1", i, j, v)
			}
		}
		if ones != 1 {
			t.Fatalf("Gamma row %d has %d ones, want exactly 1", i, ones)
		}
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.NumClusters != 2 {
		t.Errorf("NumClusters: got %d, want 2", cfg.NumClusters)
	}
	if cfg.Method != MethodRegression {
		t.Errorf("Method: got %q, want %q", cfg.Method, MethodRegression)
	}
	if cfg.Measure != MeasureError {
		t.Errorf("Measure: got %q, want %q", cfg.Measure, MeasureError)
	}
	if cfg.MaxIterations != 100 {
		t.Errorf("MaxIterations: got %d, want 100", cfg.MaxIterations)
	}
	if cfg.Repetitions != 100 {
		t.Errorf("Repetitions: got %d, want 100", cfg.Repetitions)
	}
	if cfg.Ridge != 1e-4 {
		t.Errorf("Ridge: got %g, want 1e-4", cfg.Ridge)
	}
	if cfg.Workers != 0 {
		t.Errorf("Workers: got %d, want 0 (auto)", cfg.Workers)
	}
	if cfg.Rand != nil {
		t.Error("Rand: got non-nil, want nil (time-seeded default)")
	}
}

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"NumClusters < 2", func(c *Config) { c.NumClusters = 1 }},
		{"invalid method", func(c *Config) { c.Method = "invalid" }},
		{"invalid measure", func(c *Config) { c.Measure = "invalid" }},
		{"negative MaxIterations", func(c *Config) { c.MaxIterations = -1 }},
		{"negative Repetitions", func(c *Config) { c.Repetitions = -1 }},
		{"negative Ridge", func(c *Config) { c.Ridge = -1e-4 }},
		{"Transitions wrong rows", func(c *Config) { c.Transitions = [][]bool{{true, true}} }},
		{"Transitions wrong cols", func(c *Config) { c.Transitions = [][]bool{{true}, {true}} }},
		{"InitialStates wrong length", func(c *Config) { c.InitialStates = []bool{true} }},
		{"InitialStates all false", func(c *Config) { c.InitialStates = []bool{false, false} }},
	}

	X, Y := twoRegimeData(10, 2)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Rand = rand.New(rand.NewSource(1))
			tt.mutate(&cfg)
			_, err := ClusterDecoding(X, Y, 10, cfg)
			if err == nil {
				t.Errorf("expected error for %s", tt.name)
			}
		})
	}
}

func TestDataValidation(t *testing.T) {
	X, Y := twoRegimeData(10, 2)
	cfg := DefaultConfig()
	cfg.Rand = rand.New(rand.NewSource(1))

	if _, err := ClusterDecoding(X[:19], Y, 10, cfg); err == nil {
		t.Error("expected error for mismatched X/Y row counts")
	}
	if _, err := ClusterDecoding(X[:15], Y[:15], 10, cfg); err == nil {
		t.Error("expected error for row count not a multiple of T")
	}
	if _, err := ClusterDecoding(nil, nil, 10, cfg); err == nil {
		t.Error("expected error for empty data")
	}

	kcfg := cfg
	kcfg.NumClusters = 11
	if _, err := ClusterDecoding(X, Y, 10, kcfg); err == nil {
		t.Error("expected error for T < NumClusters")
	}

	gcfg := cfg
	gcfg.GammaInit = [][]float64{{1, 0}}
	if _, err := ClusterDecoding(X, Y, 10, gcfg); err == nil {
		t.Error("expected error for GammaInit with wrong row count")
	}
	gcfg.GammaInit = make([][]float64, 10)
	for i := range gcfg.GammaInit {
		gcfg.GammaInit[i] = []float64{0.5, 0.5}
	}
	if _, err := ClusterDecoding(X, Y, 10, gcfg); err == nil {
		t.Error("expected error for non-one-hot GammaInit rows")
	}
}

// Two exact linear regimes, no constraints: the regression method must
// recover the half/half split with zero residual error, up to a cluster
// label permutation.
func TestRegressionRecoversTwoRegimes(t *testing.T) {
	T, N := 10, 3
	X, Y := twoRegimeData(T, N)

	cfg := DefaultConfig()
	cfg.Rand = rand.New(rand.NewSource(7))
	res, err := ClusterDecoding(X, Y, T, cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	checkOneHot(t, res.Gamma, 2)
	if !res.Converged {
		t.Error("expected convergence")
	}
	if res.Score > 1e-8 {
		t.Errorf("expected zero residual error, got %g", res.Score)
	}

	first := res.Assignments[0]
	for tp := 0; tp < T; tp++ {
		want := first
		if tp >= T/2 {
			want = 1 - first
		}
		if res.Assignments[tp] != want {
			t.Fatalf("Assignments = %v, want half/half split", res.Assignments)
		}
	}
}

// Same data, but the initial-state constraint forbids the first time point's
// naturally best cluster: after the label-swap repair and convergence, time
// point 0 must carry the permitted cluster.
func TestRegressionHonorsInitialStates(t *testing.T) {
	T, N := 10, 3
	X, Y := twoRegimeData(T, N)

	cfg := DefaultConfig()
	cfg.Rand = rand.New(rand.NewSource(7))
	cfg.InitialStates = []bool{false, true}
	res, err := ClusterDecoding(X, Y, T, cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	checkOneHot(t, res.Gamma, 2)
	if res.Assignments[0] != 1 {
		t.Errorf("Assignments[0] = %d, want 1 (the only permitted initial cluster)", res.Assignments[0])
	}
	if res.Score > 1e-8 {
		t.Errorf("expected zero residual error, got %g", res.Score)
	}
	for tp := 0; tp < T/2; tp++ {
		if res.Assignments[tp] != 1 {
			t.Fatalf("Assignments = %v, want first half all cluster 1", res.Assignments)
		}
	}
	for tp := T / 2; tp < T; tp++ {
		if res.Assignments[tp] != 0 {
			t.Fatalf("Assignments = %v, want second half all cluster 0", res.Assignments)
		}
	}
}

// Forward-only transitions on two-regime data: the assignment must be
// non-decreasing in time.
func TestRegressionForwardOnlyTransitions(t *testing.T) {
	T, N := 10, 3
	X, Y := twoRegimeData(T, N)

	cfg := DefaultConfig()
	cfg.Rand = rand.New(rand.NewSource(7))
	cfg.Transitions = [][]bool{
		{true, true},
		{false, true},
	}
	cfg.InitialStates = []bool{true, false}
	res, err := ClusterDecoding(X, Y, T, cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	checkOneHot(t, res.Gamma, 2)
	for tp := 1; tp < T; tp++ {
		if res.Assignments[tp] < res.Assignments[tp-1] {
			t.Fatalf("Assignments = %v, want non-decreasing under forward-only transitions", res.Assignments)
		}
	}
}

// All three methods must return well-formed one-hot Gammas.
func TestAllMethodsReturnOneHotGamma(t *testing.T) {
	T, N := 12, 3
	X, Y := twoRegimeData(T, N)

	for _, method := range []Method{MethodRegression, MethodHierarchical, MethodSequential} {
		t.Run(string(method), func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.NumClusters = 3
			cfg.Method = method
			cfg.Rand = rand.New(rand.NewSource(3))
			res, err := ClusterDecoding(X, Y, T, cfg)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			checkOneHot(t, res.Gamma, 3)
			if len(res.Assignments) != T {
				t.Errorf("got %d assignments, want %d", len(res.Assignments), T)
			}
			for tp, c := range res.Assignments {
				if c < 0 || c >= 3 {
					t.Errorf("Assignments[%d] = %d, out of range", tp, c)
				}
				if res.Gamma[tp][c] != 1 {
					t.Errorf("Gamma[%d] does not match Assignments[%d]=%d", tp, tp, c)
				}
			}
		})
	}
}

// An all-false transition matrix makes every time point after the first
// infeasible; the run must still produce a well-formed Gamma, fall back
// deterministically to cluster 0, and surface constraint warnings.
func TestRegressionInfeasibleConstraintsFallback(t *testing.T) {
	T, N := 10, 3
	X, Y := twoRegimeData(T, N)

	cfg := DefaultConfig()
	cfg.Rand = rand.New(rand.NewSource(7))
	cfg.Transitions = [][]bool{
		{false, false},
		{false, false},
	}
	res, err := ClusterDecoding(X, Y, T, cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	checkOneHot(t, res.Gamma, 2)
	for tp := 1; tp < T; tp++ {
		if res.Assignments[tp] != 0 {
			t.Fatalf("Assignments[%d] = %d, want deterministic fallback to 0", tp, res.Assignments[tp])
		}
	}

	foundConstraint := false
	for _, w := range res.Warnings {
		if _, ok := w.(*ConstraintWarning); ok {
			foundConstraint = true
			break
		}
	}
	if !foundConstraint {
		t.Error("expected a ConstraintWarning for infeasible time points")
	}
}

// GammaInit pins the starting assignment; with an exact-fit start the first
// pass must already be a fixed point.
func TestRegressionGammaInitFixedPoint(t *testing.T) {
	T, N := 10, 3
	X, Y := twoRegimeData(T, N)

	init := make([][]float64, T)
	for tp := range init {
		if tp < T/2 {
			init[tp] = []float64{1, 0}
		} else {
			init[tp] = []float64{0, 1}
		}
	}

	cfg := DefaultConfig()
	cfg.Rand = rand.New(rand.NewSource(7))
	cfg.GammaInit = init
	res, err := ClusterDecoding(X, Y, T, cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Converged {
		t.Error("expected convergence")
	}
	if res.Iterations != 1 {
		t.Errorf("Iterations = %d, want 1 (exact start is a fixed point)", res.Iterations)
	}
	if res.Score > 1e-8 {
		t.Errorf("expected zero residual error, got %g", res.Score)
	}
}

func TestRegressionTerminatesWithinIterationCap(t *testing.T) {
	T, N := 16, 4
	X, Y := twoRegimeData(T, N)

	cfg := DefaultConfig()
	cfg.NumClusters = 4
	cfg.MaxIterations = 3
	cfg.Rand = rand.New(rand.NewSource(11))
	res, err := ClusterDecoding(X, Y, T, cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Iterations > 3 {
		t.Errorf("Iterations = %d, want <= 3", res.Iterations)
	}
	checkOneHot(t, res.Gamma, 4)
}

func TestHierarchicalRecoversTwoRegimes(t *testing.T) {
	T, N := 10, 3
	X, Y := twoRegimeData(T, N)

	for _, measure := range []Measure{MeasureError, MeasureResponse, MeasureBeta} {
		t.Run(string(measure), func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Method = MethodHierarchical
			cfg.Measure = measure
			cfg.Rand = rand.New(rand.NewSource(5))
			res, err := ClusterDecoding(X, Y, T, cfg)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			checkOneHot(t, res.Gamma, 2)

			// Within-regime model distances are zero, so the halves must
			// cluster together. Labels follow first appearance in time.
			want := []int{0, 0, 0, 0, 0, 1, 1, 1, 1, 1}
			for tp := range want {
				if res.Assignments[tp] != want[tp] {
					t.Fatalf("Assignments = %v, want %v", res.Assignments, want)
				}
			}
		})
	}
}

func TestNaNFreeScores(t *testing.T) {
	T, N := 10, 3
	X, Y := twoRegimeData(T, N)

	for _, method := range []Method{MethodRegression, MethodSequential} {
		cfg := DefaultConfig()
		cfg.Method = method
		cfg.Rand = rand.New(rand.NewSource(9))
		res, err := ClusterDecoding(X, Y, T, cfg)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", method, err)
		}
		if math.IsNaN(res.Score) || math.IsInf(res.Score, 0) {
			t.Errorf("%s: Score = %v, want finite", method, res.Score)
		}
	}
}
