package graph

import (
	"fmt"
	"slices"

	"github.com/google/uuid"
)

const (
	DefaultMaxPathDepth = 6
	DefaultPathLimit    = 100
)

// PathOptions bounds a path search.
type PathOptions struct {
	BondLabels []string
	Direction  Direction
	// MaxDepth is the maximum number of bonds per path. Zero means DefaultMaxPathDepth.
	MaxDepth int
	// Limit caps the number of paths returned. Zero means DefaultPathLimit.
	Limit int
}

// Paths enumerates simple paths from one node to another, depth first,
// following bonds in insertion order. Each path is the sequence of node
// ids from start to end inclusive.
func (g *Graph) Paths(from, to uuid.UUID, opts PathOptions) ([][]uuid.UUID, error) {
	src, ok := g.nodeIdx[from]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownNode, from)
	}
	dst, ok := g.nodeIdx[to]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownNode, to)
	}
	if opts.MaxDepth < 0 || opts.Limit < 0 {
		return nil, fmt.Errorf("%w: negative path bounds", ErrInvalidQuery)
	}
	if opts.MaxDepth == 0 {
		opts.MaxDepth = DefaultMaxPathDepth
	}
	if opts.Limit == 0 {
		opts.Limit = DefaultPathLimit
	}
	if src == dst {
		return [][]uuid.UUID{{from}}, nil
	}

	step := TraverseOptions{BondLabels: opts.BondLabels, Direction: opts.Direction}
	onPath := make([]bool, len(g.nodes))
	stack := []int{src}
	onPath[src] = true
	var paths [][]uuid.UUID

	var walk func(slot int)
	walk = func(slot int) {
		if len(stack)-1 >= opts.MaxDepth {
			return
		}
		// Parallel bonds lead to the same path.
		var next []int
		g.neighbors(slot, step, func(nb int) {
			if !slices.Contains(next, nb) {
				next = append(next, nb)
			}
		})
		for _, nb := range next {
			if len(paths) >= opts.Limit {
				return
			}
			if onPath[nb] {
				continue
			}
			if nb == dst {
				path := make([]uuid.UUID, 0, len(stack)+1)
				for _, s := range stack {
					path = append(path, g.nodes[s].ID)
				}
				paths = append(paths, append(path, to))
				continue
			}
			onPath[nb] = true
			stack = append(stack, nb)
			walk(nb)
			stack = stack[:len(stack)-1]
			onPath[nb] = false
		}
	}
	walk(src)
	return paths, nil
}
