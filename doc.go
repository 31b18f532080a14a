// Package statedec implements temporal state assignment for time-varying
// decoding models.
//
// Given brain-signal features X and a stimulus signal Y recorded over many
// trials of equal length, the package partitions the within-trial time points
// into K states (clusters), each associated with its own linear decoding
// model Y = X·β. The same state sequence is shared across all trials, so the
// output is a hard assignment over the T within-trial time points, returned
// as a T×K one-hot indicator matrix (Gamma).
//
// Basic usage:
//
//	cfg := statedec.DefaultConfig()
//	cfg.NumClusters = 4
//	result, err := statedec.ClusterDecoding(X, Y, T, cfg)
//	// result.Assignments[t] is the state ID for time point t (0-based)
//	// result.Gamma is the T×K one-hot indicator matrix
//
// # Methods
//
// Three strategies are available via Config.Method:
//
//	cfg.Method = statedec.MethodRegression   // EM-style iterative reassignment
//	cfg.Method = statedec.MethodHierarchical // agglomerative clustering of per-time-point models
//	cfg.Method = statedec.MethodSequential   // randomized contiguous segmentation search
//
// MethodRegression alternates fitting one regression per state with
// reassigning each time point to the state that reconstructs it best, subject
// to optional transition constraints (Config.Transitions,
// Config.InitialStates). MethodHierarchical fits one regression per time
// point, measures pairwise model dissimilarity (Config.Measure), and cuts an
// agglomerative dendrogram at K clusters. MethodSequential searches over
// contiguous segmentations of the timeline with repeated random restarts.
//
// Randomized search is driven by Config.Rand, an explicit seedable source,
// so runs are reproducible when a fixed seed is supplied.
package statedec
