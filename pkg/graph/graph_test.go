package graph

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedID(n int) uuid.UUID {
	return uuid.MustParse(fmt.Sprintf("550e8400-e29b-41d4-a716-4466554000%02d", n))
}

func mustNode(t *testing.T, g *Graph, id uuid.UUID, labels ...string) *Node {
	t.Helper()
	n, err := g.AddNode(Node{ID: id, Labels: labels})
	require.NoError(t, err)
	return n
}

func mustBond(t *testing.T, g *Graph, label string, src, dst uuid.UUID) *Bond {
	t.Helper()
	b, err := g.AddBond(Bond{Label: label, Src: src, Dst: dst})
	require.NoError(t, err)
	return b
}

func ids(nodes []*Node) []uuid.UUID {
	out := make([]uuid.UUID, len(nodes))
	for i, n := range nodes {
		out[i] = n.ID
	}
	return out
}

func TestAddNodeAllocatesDistinctIDs(t *testing.T) {
	g := New("g")
	seen := make(map[uuid.UUID]bool)
	for i := 0; i < 500; i++ {
		n := mustNode(t, g, Unset, "thing")
		assert.NotEqual(t, Unset, n.ID)
		assert.False(t, seen[n.ID], "id %s reused", n.ID)
		seen[n.ID] = true
	}
	assert.Equal(t, 500, g.NodeCount())
}

func TestAddNodeKeepsSuppliedID(t *testing.T) {
	g := New("g")
	n := mustNode(t, g, fixedID(1), "blue")
	assert.Equal(t, fixedID(1), n.ID)

	got, ok := g.Node(fixedID(1))
	require.True(t, ok)
	assert.Same(t, n, got)
}

func TestAddNodeRejectsDuplicateID(t *testing.T) {
	g := New("g")
	mustNode(t, g, fixedID(1), "blue")

	_, err := g.AddNode(Node{ID: fixedID(1), Labels: []string{"green"}})
	require.ErrorIs(t, err, ErrDuplicateIdentifier)
	assert.Equal(t, 1, g.NodeCount())
}

func TestAddNodeRejectsBadLabels(t *testing.T) {
	cases := map[string][]string{
		"nil":         nil,
		"empty":       {},
		"blank first": {"   "},
		"empty first": {"", "green"},
	}
	for name, labels := range cases {
		t.Run(name, func(t *testing.T) {
			g := New("g")
			_, err := g.AddNode(Node{Labels: labels})
			require.ErrorIs(t, err, ErrInvalidLabel)
			assert.Zero(t, g.NodeCount())
		})
	}
}

func TestAddNodeCopiesLabels(t *testing.T) {
	g := New("g")
	labels := []string{"blue"}
	n := mustNode(t, g, Unset, labels...)
	labels[0] = "red"
	assert.Equal(t, []string{"blue"}, n.Labels)
}

func TestAddBondValidation(t *testing.T) {
	g := New("g")
	a := mustNode(t, g, fixedID(1), "blue")
	b := mustNode(t, g, fixedID(2), "green")

	tests := []struct {
		name string
		bond Bond
		want error
	}{
		{"unset src", Bond{Label: "x", Src: Unset, Dst: b.ID}, ErrInvalidEndpoint},
		{"unset dst", Bond{Label: "x", Src: a.ID, Dst: Unset}, ErrInvalidEndpoint},
		{"blank label", Bond{Label: " \t", Src: a.ID, Dst: b.ID}, ErrInvalidLabel},
		{"dangling src", Bond{Label: "x", Src: fixedID(9), Dst: b.ID}, ErrDanglingReference},
		{"dangling dst", Bond{Label: "x", Src: a.ID, Dst: fixedID(9)}, ErrDanglingReference},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := g.AddBond(tt.bond)
			require.ErrorIs(t, err, tt.want)
			assert.Zero(t, g.BondCount())
		})
	}
}

func TestAddBondIgnoresSuppliedID(t *testing.T) {
	g := New("g")
	mustNode(t, g, fixedID(1), "blue")
	mustNode(t, g, fixedID(2), "green")

	supplied := fixedID(50)
	b, err := g.AddBond(Bond{ID: supplied, Label: "x", Src: fixedID(1), Dst: fixedID(2)})
	require.NoError(t, err)
	assert.NotEqual(t, supplied, b.ID)
	assert.NotEqual(t, Unset, b.ID)

	got, ok := g.Bond(b.ID)
	require.True(t, ok)
	assert.Same(t, b, got)
	assert.Equal(t, 1, g.BondCount())
}

func TestIndexMatchesRecords(t *testing.T) {
	g := New("g")
	for i := 0; i < 50; i++ {
		mustNode(t, g, Unset, fmt.Sprintf("l%d", i%3))
	}
	nodes := g.Nodes()
	for i := 1; i < len(nodes); i++ {
		mustBond(t, g, "next", nodes[i-1].ID, nodes[i].ID)
	}

	for id, slot := range g.nodeIdx {
		assert.Equal(t, id, g.nodes[slot].ID)
	}
	for id, slot := range g.bondIdx {
		assert.Equal(t, id, g.bonds[slot].ID)
	}
	for _, b := range g.Bonds() {
		_, ok := g.Node(b.Src)
		assert.True(t, ok)
		_, ok = g.Node(b.Dst)
		assert.True(t, ok)
	}
}

func TestComponents(t *testing.T) {
	g := New("g")
	assert.Zero(t, g.Components())

	for i := 1; i <= 6; i++ {
		mustNode(t, g, fixedID(i), "n")
	}
	assert.Equal(t, 6, g.Components())

	mustBond(t, g, "x", fixedID(1), fixedID(2))
	mustBond(t, g, "x", fixedID(3), fixedID(2))
	mustBond(t, g, "x", fixedID(4), fixedID(4))
	mustBond(t, g, "x", fixedID(5), fixedID(6))
	mustBond(t, g, "y", fixedID(6), fixedID(5))

	st := g.Stats()
	assert.Equal(t, Stats{Name: "g", Nodes: 6, Bonds: 5, Components: 3}, st)
}

func FuzzGraphBuild(f *testing.F) {
	f.Add([]byte("seed"))
	f.Add([]byte{0x0, 0x1, 0x1, 0x0, 0x2, 0x2})

	f.Fuzz(func(t *testing.T, data []byte) {
		g := New("fuzz")
		for i := 0; i < len(data)%32+1; i++ {
			if _, err := g.AddNode(Node{Labels: []string{fmt.Sprintf("l%d", i%4)}}); err != nil {
				t.Fatalf("add node: %v", err)
			}
		}
		nodes := g.Nodes()
		for i := 0; i+1 < len(data); i += 2 {
			src := nodes[int(data[i])%len(nodes)]
			dst := nodes[int(data[i+1])%len(nodes)]
			if _, err := g.AddBond(Bond{Label: "b", Src: src.ID, Dst: dst.ID}); err != nil {
				t.Fatalf("add bond: %v", err)
			}
		}

		for _, n := range nodes {
			res, err := g.ConnectedNodes(n.ID, TraverseOptions{Direction: Both})
			if err != nil {
				t.Fatalf("traverse: %v", err)
			}
			if len(res) == 0 || res[0].ID != n.ID {
				t.Fatalf("start node missing from result")
			}
			if _, err := g.ConnectedNodesByDepth(n.ID, 3, TraverseOptions{Direction: Both}); err != nil {
				t.Fatalf("depth traverse: %v", err)
			}
		}
		if c := g.Components(); c < 1 || c > len(nodes) {
			t.Fatalf("components out of range: %d", c)
		}
	})
}
