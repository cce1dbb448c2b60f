package graph

// unionFind is a disjoint-set forest over node slots.
type unionFind struct {
	parent []int
	rank   []int
	sets   int
}

func newUnionFind(n int) *unionFind {
	uf := &unionFind{parent: make([]int, n), rank: make([]int, n), sets: n}
	for i := range uf.parent {
		uf.parent[i] = i
	}
	return uf
}

func (uf *unionFind) find(i int) int {
	for uf.parent[i] != i {
		uf.parent[i] = uf.parent[uf.parent[i]] // path halving
		i = uf.parent[i]
	}
	return i
}

func (uf *unionFind) union(i, j int) {
	ri, rj := uf.find(i), uf.find(j)
	if ri == rj {
		return
	}
	// Union by rank
	switch {
	case uf.rank[ri] < uf.rank[rj]:
		uf.parent[ri] = rj
	case uf.rank[ri] > uf.rank[rj]:
		uf.parent[rj] = ri
	default:
		uf.parent[rj] = ri
		uf.rank[ri]++
	}
	uf.sets--
}

// Components counts weakly connected components. Bond direction and
// labels are ignored; an isolated node is its own component.
func (g *Graph) Components() int {
	uf := newUnionFind(len(g.nodes))
	for _, b := range g.bonds {
		uf.union(g.nodeIdx[b.Src], g.nodeIdx[b.Dst])
	}
	return uf.sets
}

// Stats summarizes a graph.
type Stats struct {
	Name       string `json:"name"`
	Nodes      int    `json:"nodes"`
	Bonds      int    `json:"bonds"`
	Components int    `json:"components"`
}

func (g *Graph) Stats() Stats {
	return Stats{Name: g.name, Nodes: len(g.nodes), Bonds: len(g.bonds), Components: g.Components()}
}
