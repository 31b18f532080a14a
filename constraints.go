package statedec

// feasibleSet answers which clusters may be assigned at a time point, given
// the cluster chosen at the previous one. It replaces sentinel-infinity
// masking of error values with an explicit allowed-cluster filter.
type feasibleSet struct {
	k       int
	initial []bool   // eligible clusters for time point 0
	next    [][]bool // next[j][k]: cluster k may directly follow cluster j
}

// newFeasibleSet builds a feasibleSet from the user-facing constraint inputs.
// nil transitions or initial means unconstrained.
func newFeasibleSet(k int, transitions [][]bool, initial []bool) *feasibleSet {
	fs := &feasibleSet{k: k}

	fs.initial = make([]bool, k)
	if initial == nil {
		for i := range fs.initial {
			fs.initial[i] = true
		}
	} else {
		copy(fs.initial, initial)
	}

	fs.next = make([][]bool, k)
	for j := 0; j < k; j++ {
		fs.next[j] = make([]bool, k)
		if transitions == nil {
			for i := range fs.next[j] {
				fs.next[j][i] = true
			}
		} else {
			copy(fs.next[j], transitions[j])
		}
	}
	return fs
}

// allowedFirst returns the clusters eligible at time point 0, in ascending
// order.
func (f *feasibleSet) allowedFirst() []int {
	return trueIndices(f.initial)
}

// allowed returns the clusters that may follow prev, in ascending order.
func (f *feasibleSet) allowed(prev int) []int {
	return trueIndices(f.next[prev])
}

// firstAllowed returns the lowest cluster eligible at time point 0, or -1 if
// none is.
func (f *feasibleSet) firstAllowed() int {
	for k, ok := range f.initial {
		if ok {
			return k
		}
	}
	return -1
}

func trueIndices(mask []bool) []int {
	var out []int
	for i, ok := range mask {
		if ok {
			out = append(out, i)
		}
	}
	return out
}
