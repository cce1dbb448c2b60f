package query

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DrSkyle/avtan/pkg/graph"
)

func node(id string, labels ...string) *graph.Node {
	return &graph.Node{ID: uuid.MustParse(id), Labels: labels}
}

func TestFilterMatch(t *testing.T) {
	c, err := NewCompiler()
	require.NoError(t, err)

	blue := node("550e8400-e29b-41d4-a716-446655400001", "blue", "round")
	green := node("650e8400-e29b-41d4-a716-446655400002", "green")

	tests := []struct {
		expr  string
		blue  bool
		green bool
	}{
		{`"blue" in labels`, true, false},
		{`label == "green"`, false, true},
		{`id.startsWith("550e")`, true, false},
		{`size(labels) > 1`, true, false},
		{`labels.exists(l, l.endsWith("een"))`, false, true},
		{`true`, true, true},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			f, err := c.Compile(tt.expr)
			require.NoError(t, err)
			assert.Equal(t, tt.blue, f.Match(blue))
			assert.Equal(t, tt.green, f.Match(green))
			assert.Equal(t, tt.expr, f.String())
		})
	}
}

func TestCompileRejects(t *testing.T) {
	c, err := NewCompiler()
	require.NoError(t, err)

	for _, expr := range []string{
		`labels +`,
		`unknown == 1`,
		`size(labels)`,
	} {
		_, err := c.Compile(expr)
		require.ErrorIs(t, err, graph.ErrInvalidQuery, expr)
	}
}

func TestCompileCaches(t *testing.T) {
	c, err := NewCompiler()
	require.NoError(t, err)

	_, err = c.Compile(`label == "a"`)
	require.NoError(t, err)
	_, err = c.Compile(`label == "a"`)
	require.NoError(t, err)
	assert.Len(t, c.programs, 1)
}

func TestFilterWithTraversal(t *testing.T) {
	c, err := NewCompiler()
	require.NoError(t, err)
	f, err := c.Compile(`"green" in labels`)
	require.NoError(t, err)

	g := graph.New("g")
	a, err := g.AddNode(graph.Node{Labels: []string{"blue"}})
	require.NoError(t, err)
	b, err := g.AddNode(graph.Node{Labels: []string{"green"}})
	require.NoError(t, err)
	cNode, err := g.AddNode(graph.Node{Labels: []string{"grey"}})
	require.NoError(t, err)
	for _, dst := range []uuid.UUID{b.ID, cNode.ID} {
		_, err := g.AddBond(graph.Bond{Label: "x", Src: a.ID, Dst: dst})
		require.NoError(t, err)
	}

	res, err := g.ConnectedNodes(a.ID, graph.TraverseOptions{Direction: graph.Outgoing, Match: f.Match})
	require.NoError(t, err)
	require.Len(t, res, 2)
	assert.Equal(t, b.ID, res[1].ID)
}
