package graph

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestNodesByIDs(t *testing.T) {
	g := fiveNodes(t, "blue", "green", "green", "green", "blue")

	res := g.NodesByIDs([]uuid.UUID{fixedID(1), fixedID(2), fixedID(3), fixedID(6), fixedID(7)})
	assert.Equal(t, []uuid.UUID{fixedID(1), fixedID(2), fixedID(3)}, ids(res))

	res = g.NodesByIDs([]uuid.UUID{fixedID(3), fixedID(1), fixedID(3), fixedID(1), fixedID(2)})
	assert.Equal(t, []uuid.UUID{fixedID(3), fixedID(1), fixedID(2)}, ids(res))

	assert.Empty(t, g.NodesByIDs([]uuid.UUID{fixedID(6), fixedID(7)}))
	assert.Empty(t, g.NodesByIDs(nil))
}

func TestNodesByIDsFirstOccurrence(t *testing.T) {
	g := New("g")
	a := mustNode(t, g, Unset, "x")
	b := mustNode(t, g, Unset, "x")

	res := g.NodesByIDs([]uuid.UUID{b.ID, a.ID, b.ID})
	assert.Equal(t, []uuid.UUID{b.ID, a.ID}, ids(res))
}

func TestNodesByLabels(t *testing.T) {
	g := New("g")
	mustNode(t, g, fixedID(1), "blue")
	mustNode(t, g, fixedID(2), "green", "blue")
	mustNode(t, g, fixedID(3), "green")
	mustNode(t, g, fixedID(4), "grey")

	res := g.NodesByLabels([]string{"green", "blue"})
	assert.Equal(t, []uuid.UUID{fixedID(2), fixedID(3), fixedID(1)}, ids(res))

	res = g.NodesByLabels([]string{"blue", "blue"})
	assert.Equal(t, []uuid.UUID{fixedID(1), fixedID(2)}, ids(res))

	assert.Empty(t, g.NodesByLabels([]string{"purple"}))
}

func TestFilter(t *testing.T) {
	g := fiveNodes(t, "blue", "green", "blue")

	res := g.Filter(func(n *Node) bool { return n.HasLabel("blue") })
	assert.Equal(t, []uuid.UUID{fixedID(1), fixedID(3)}, ids(res))
}
