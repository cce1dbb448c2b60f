package graph

import (
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"
)

// Node is a labeled vertex. The first label is the primary one.
type Node struct {
	ID     uuid.UUID `json:"id"`
	Labels []string  `json:"labels"`
}

// HasLabel reports whether the node carries label.
func (n *Node) HasLabel(label string) bool {
	return slices.Contains(n.Labels, label)
}

// HasAnyLabel reports whether the node carries at least one of labels.
func (n *Node) HasAnyLabel(labels []string) bool {
	for _, l := range n.Labels {
		if slices.Contains(labels, l) {
			return true
		}
	}
	return false
}

// Bond is a directed labeled relationship between two nodes of one graph.
type Bond struct {
	ID    uuid.UUID `json:"id"`
	Label string    `json:"label"`
	Src   uuid.UUID `json:"src"`
	Dst   uuid.UUID `json:"dst"`
}

// Graph is an append-only property graph held in memory.
//
// Records live in insertion-ordered slices and are addressed through id
// indexes that store slots. out/in hold bond slots per node slot.
//
// Graph does no locking of its own. Mutations must go through
// Collection.Update or happen under a single owner.
type Graph struct {
	name string

	nodes []*Node
	bonds []*Bond

	nodeIdx map[uuid.UUID]int
	bondIdx map[uuid.UUID]int

	out [][]int
	in  [][]int
}

// New returns an empty graph.
func New(name string) *Graph {
	return &Graph{
		name:    name,
		nodes:   make([]*Node, 0, 64),
		bonds:   make([]*Bond, 0, 64),
		nodeIdx: make(map[uuid.UUID]int),
		bondIdx: make(map[uuid.UUID]int),
		out:     make([][]int, 0, 64),
		in:      make([][]int, 0, 64),
	}
}

func (g *Graph) Name() string { return g.name }

// AddNode validates and stores node, returning the stored record.
// A node with the Unset id gets a freshly allocated one.
func (g *Graph) AddNode(node Node) (*Node, error) {
	if len(node.Labels) == 0 || strings.TrimSpace(node.Labels[0]) == "" {
		return nil, fmt.Errorf("%w: node needs a non-blank first label", ErrInvalidLabel)
	}
	id, err := allocate(g.nodeIdx, node.ID)
	if err != nil {
		return nil, err
	}

	stored := &Node{ID: id, Labels: slices.Clone(node.Labels)}
	slot := len(g.nodes)
	g.nodes = append(g.nodes, stored)
	g.out = append(g.out, nil)
	g.in = append(g.in, nil)
	g.nodeIdx[id] = slot
	return stored, nil
}

// AddBond validates and stores bond. The bond always receives a fresh id;
// any id on the argument is ignored.
func (g *Graph) AddBond(bond Bond) (*Bond, error) {
	if bond.Src == Unset || bond.Dst == Unset {
		return nil, fmt.Errorf("%w: src and dst must be set", ErrInvalidEndpoint)
	}
	if strings.TrimSpace(bond.Label) == "" {
		return nil, fmt.Errorf("%w: bond label is blank", ErrInvalidLabel)
	}
	srcSlot, ok := g.nodeIdx[bond.Src]
	if !ok {
		return nil, fmt.Errorf("%w: src %s", ErrDanglingReference, bond.Src)
	}
	dstSlot, ok := g.nodeIdx[bond.Dst]
	if !ok {
		return nil, fmt.Errorf("%w: dst %s", ErrDanglingReference, bond.Dst)
	}
	id, err := allocate(g.bondIdx, Unset)
	if err != nil {
		return nil, err
	}

	stored := &Bond{ID: id, Label: bond.Label, Src: bond.Src, Dst: bond.Dst}
	slot := len(g.bonds)
	g.bonds = append(g.bonds, stored)
	g.bondIdx[id] = slot
	g.out[srcSlot] = append(g.out[srcSlot], slot)
	g.in[dstSlot] = append(g.in[dstSlot], slot)
	return stored, nil
}

// Node looks up a node by id.
func (g *Graph) Node(id uuid.UUID) (*Node, bool) {
	slot, ok := g.nodeIdx[id]
	if !ok {
		return nil, false
	}
	return g.nodes[slot], true
}

// Bond looks up a bond by id.
func (g *Graph) Bond(id uuid.UUID) (*Bond, bool) {
	slot, ok := g.bondIdx[id]
	if !ok {
		return nil, false
	}
	return g.bonds[slot], true
}

// Nodes returns the stored nodes in insertion order. The slice is a copy,
// the records are not.
func (g *Graph) Nodes() []*Node {
	return slices.Clone(g.nodes)
}

// Bonds returns the stored bonds in insertion order.
func (g *Graph) Bonds() []*Bond {
	return slices.Clone(g.bonds)
}

func (g *Graph) NodeCount() int { return len(g.nodes) }

func (g *Graph) BondCount() int { return len(g.bonds) }
