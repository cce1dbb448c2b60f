package graph

import (
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"
)

// Direction selects which bonds of a node are followed.
type Direction int

const (
	Outgoing Direction = iota
	Ingoing
	Both
)

func (d Direction) String() string {
	switch d {
	case Outgoing:
		return "outgoing"
	case Ingoing:
		return "ingoing"
	case Both:
		return "both"
	}
	return fmt.Sprintf("Direction(%d)", int(d))
}

// ParseDirection accepts outgoing/out, ingoing/incoming/in and both.
// Empty input means Both.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "both":
		return Both, nil
	case "outgoing", "out":
		return Outgoing, nil
	case "ingoing", "incoming", "in":
		return Ingoing, nil
	}
	return Both, fmt.Errorf("%w: unknown direction %q", ErrInvalidQuery, s)
}

func (d Direction) follows(dir Direction) bool {
	return d == Both || d == dir
}

// TraverseOptions restricts a neighborhood query.
type TraverseOptions struct {
	// BondLabels limits the bonds considered. Empty means all.
	BondLabels []string
	// NodeLabels keeps only neighbors carrying one of these labels. Empty means all.
	NodeLabels []string
	Direction  Direction
	// KeepDuplicates reports one entry per contributing bond instead of one per node.
	KeepDuplicates bool
	// Match is an extra neighbor predicate. The start node is never filtered.
	Match func(*Node) bool
}

func (o TraverseOptions) bondAllowed(b *Bond) bool {
	return len(o.BondLabels) == 0 || slices.Contains(o.BondLabels, b.Label)
}

func (o TraverseOptions) nodeAllowed(n *Node) bool {
	if len(o.NodeLabels) > 0 && !n.HasAnyLabel(o.NodeLabels) {
		return false
	}
	return o.Match == nil || o.Match(n)
}

// neighbors yields the neighbor slots of slot reachable over one bond,
// outgoing pass first, in bond insertion order.
func (g *Graph) neighbors(slot int, opts TraverseOptions, visit func(int)) {
	if opts.Direction.follows(Outgoing) {
		for _, b := range g.out[slot] {
			bond := g.bonds[b]
			if opts.bondAllowed(bond) {
				visit(g.nodeIdx[bond.Dst])
			}
		}
	}
	if opts.Direction.follows(Ingoing) {
		for _, b := range g.in[slot] {
			bond := g.bonds[b]
			if opts.bondAllowed(bond) {
				visit(g.nodeIdx[bond.Src])
			}
		}
	}
}

// ConnectedNodes returns id followed by its direct neighbors.
func (g *Graph) ConnectedNodes(id uuid.UUID, opts TraverseOptions) ([]*Node, error) {
	start, ok := g.nodeIdx[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownNode, id)
	}

	result := []*Node{g.nodes[start]}
	seen := map[int]struct{}{start: {}}
	g.neighbors(start, opts, func(slot int) {
		n := g.nodes[slot]
		if !opts.nodeAllowed(n) {
			return
		}
		if !opts.KeepDuplicates {
			if _, dup := seen[slot]; dup {
				return
			}
			seen[slot] = struct{}{}
		}
		result = append(result, n)
	})
	return result, nil
}

// ConnectedNodesByDepth expands breadth-first from id up to depth hops.
// Each node is reported once, in discovery order. Nodes rejected by the
// label or Match filters are not expanded further.
func (g *Graph) ConnectedNodesByDepth(id uuid.UUID, depth int, opts TraverseOptions) ([]*Node, error) {
	if depth < 1 {
		return nil, fmt.Errorf("%w: depth must be at least 1, got %d", ErrInvalidQuery, depth)
	}
	start, ok := g.nodeIdx[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownNode, id)
	}

	result := []*Node{g.nodes[start]}
	visited := map[int]struct{}{start: {}}
	frontier := []int{start}
	for hop := 0; hop < depth && len(frontier) > 0; hop++ {
		var next []int
		for _, slot := range frontier {
			g.neighbors(slot, opts, func(nb int) {
				if _, done := visited[nb]; done {
					return
				}
				visited[nb] = struct{}{}
				n := g.nodes[nb]
				if !opts.nodeAllowed(n) {
					return
				}
				result = append(result, n)
				next = append(next, nb)
			})
		}
		frontier = next
	}
	return result, nil
}
