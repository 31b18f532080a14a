package statedec

import "fmt"

// oneHot expands a cluster assignment into a T×K indicator matrix with
// exactly one 1 per row.
func oneHot(assig []int, k int) [][]float64 {
	gamma := make([][]float64, len(assig))
	for t, c := range assig {
		row := make([]float64, k)
		row[c] = 1
		gamma[t] = row
	}
	return gamma
}

// assignmentsFromGamma converts one-hot indicator rows back into an
// assignment vector. Every row must contain exactly one 1 and K-1 zeros.
func assignmentsFromGamma(gamma [][]float64, k int) ([]int, error) {
	assig := make([]int, len(gamma))
	for t, row := range gamma {
		if len(row) != k {
			return nil, fmt.Errorf("statedec: GammaInit row %d has %d columns, want %d", t, len(row), k)
		}
		hot := -1
		for j, v := range row {
			switch v {
			case 0:
			case 1:
				if hot >= 0 {
					return nil, fmt.Errorf("statedec: GammaInit row %d has more than one 1", t)
				}
				hot = j
			default:
				return nil, fmt.Errorf("statedec: GammaInit row %d contains %v, want only 0 or 1", t, v)
			}
		}
		if hot < 0 {
			return nil, fmt.Errorf("statedec: GammaInit row %d has no 1", t)
		}
		assig[t] = hot
	}
	return assig, nil
}

// equalAssignments reports whether two assignment vectors are identical.
func equalAssignments(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
