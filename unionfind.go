package statedec

// unionFind is a disjoint-set structure sized for dendrogram bookkeeping:
// original time points occupy IDs 0..n-1 and merged clusters take IDs
// n..2n-2, assigned in merge order. Used to build and cut dendrograms.
type unionFind struct {
	parent []int
	size   []int
	// nextLabel is the ID for the next merged cluster, starting at n.
	nextLabel int
}

// newUnionFind creates a unionFind over n time points with storage for the
// n-1 merged-cluster IDs a full dendrogram can produce.
func newUnionFind(n int) *unionFind {
	total := 2*n - 1
	if total < 1 {
		total = 1
	}
	parent := make([]int, total)
	size := make([]int, total)
	for i := range parent {
		parent[i] = -1 // -1 means "is a root"
	}
	for i := 0; i < n; i++ {
		size[i] = 1
	}
	return &unionFind{parent: parent, size: size, nextLabel: n}
}

// find returns the root of the set containing x, with path compression.
func (uf *unionFind) find(x int) int {
	root := x
	for uf.parent[root] != -1 {
		root = uf.parent[root]
	}
	for uf.parent[x] != -1 {
		x, uf.parent[x] = uf.parent[x], root
	}
	return root
}

// merge joins the sets rooted at a and b under a fresh merged-cluster ID and
// returns that ID. a and b must be current roots.
func (uf *unionFind) merge(a, b int) int {
	label := uf.nextLabel
	uf.size[label] = uf.size[a] + uf.size[b]
	uf.parent[a] = label
	uf.parent[b] = label
	uf.nextLabel++
	return label
}
