package statedec

import "math"

// Linkage selects the agglomeration criterion for buildDendrogram.
type Linkage string

const (
	// LinkageWard minimizes the within-cluster variance increase per merge.
	// Valid when the dissimilarities are Euclidean-embeddable.
	LinkageWard Linkage = "ward"
	// LinkageComplete merges on the maximum pairwise dissimilarity. Works
	// with any dissimilarity.
	LinkageComplete Linkage = "complete"
)

// buildDendrogram performs agglomerative clustering over n items given a
// flat n×n dissimilarity matrix (row-major, symmetric, zero diagonal).
// Returns dendrogram rows in scipy linkage format [left, right, height,
// mergedSize], with merged-cluster IDs starting at n in merge order.
//
// Ward merges run on squared dissimilarities via the Lance–Williams update;
// reported heights are the square roots, so heights are comparable across
// linkages.
func buildDendrogram(dist []float64, n int, link Linkage) [][4]float64 {
	if n < 2 {
		return nil
	}

	// Working copy; slot i holds the dissimilarity of cluster-in-slot-i to
	// every other active slot. Ward operates on squared values.
	work := make([]float64, len(dist))
	for i, v := range dist {
		if link == LinkageWard {
			work[i] = v * v
		} else {
			work[i] = v
		}
	}

	active := make([]bool, n)
	clusterID := make([]int, n) // dendrogram ID of the cluster in each slot
	sizes := make([]int, n)
	for i := range active {
		active[i] = true
		clusterID[i] = i
		sizes[i] = 1
	}

	uf := newUnionFind(n)
	merges := make([][4]float64, 0, n-1)

	for step := 0; step < n-1; step++ {
		// Closest active pair.
		bi, bj := -1, -1
		bd := math.Inf(1)
		for i := 0; i < n; i++ {
			if !active[i] {
				continue
			}
			for j := i + 1; j < n; j++ {
				if !active[j] {
					continue
				}
				if d := work[i*n+j]; d < bd {
					bd = d
					bi, bj = i, j
				}
			}
		}

		height := bd
		if link == LinkageWard {
			height = math.Sqrt(bd)
		}
		si, sj := sizes[bi], sizes[bj]
		merges = append(merges, [4]float64{
			float64(clusterID[bi]), float64(clusterID[bj]), height, float64(si + sj),
		})

		// Update dissimilarities of the merged cluster, kept in slot bi.
		for k := 0; k < n; k++ {
			if !active[k] || k == bi || k == bj {
				continue
			}
			dik := work[bi*n+k]
			djk := work[bj*n+k]
			var d float64
			switch link {
			case LinkageWard:
				sk := float64(sizes[k])
				fi := float64(si)
				fj := float64(sj)
				d = ((fi+sk)*dik + (fj+sk)*djk - sk*bd) / (fi + fj + sk)
			default:
				d = math.Max(dik, djk)
			}
			work[bi*n+k] = d
			work[k*n+bi] = d
		}

		clusterID[bi] = uf.merge(clusterID[bi], clusterID[bj])
		sizes[bi] = si + sj
		active[bj] = false
	}

	return merges
}

// cutDendrogram extracts exactly k flat clusters by replaying all but the
// last k-1 merges. Labels are 0-based and ordered by each cluster's first
// appearance in time order; the hierarchical routine's own cluster numbering
// carries no time-order meaning.
func cutDendrogram(merges [][4]float64, n, k int) []int {
	if k > n {
		k = n
	}
	uf := newUnionFind(n)
	keep := n - k
	if keep > len(merges) {
		keep = len(merges)
	}
	for _, row := range merges[:keep] {
		uf.merge(uf.find(int(row[0])), uf.find(int(row[1])))
	}

	labels := make([]int, n)
	next := 0
	byRoot := make(map[int]int, k)
	for i := 0; i < n; i++ {
		root := uf.find(i)
		label, ok := byRoot[root]
		if !ok {
			label = next
			byRoot[root] = label
			next++
		}
		labels[i] = label
	}
	return labels
}
