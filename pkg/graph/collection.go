package graph

import (
	"fmt"
	"slices"
	"strings"
	"sync"
)

// Summary is the listing entry of a graph.
type Summary struct {
	Name  string `json:"name"`
	Nodes int    `json:"nodes"`
	Bonds int    `json:"bonds"`
}

// Collection owns a set of uniquely named graphs behind one RWMutex.
// Readers share the lock for the duration of a View callback; writers
// hold it exclusively.
type Collection struct {
	mu     sync.RWMutex
	graphs []*Graph
}

func NewCollection() *Collection {
	return &Collection{}
}

func (c *Collection) lookup(name string) *Graph {
	for _, g := range c.graphs {
		if g.name == name {
			return g
		}
	}
	return nil
}

// ValidateAndCreate creates an empty graph called name and adds it to the
// collection. The name check and the insert happen under one exclusive
// lock, so concurrent callers racing on a name see exactly one success.
// The returned graph is shared; mutate it through Update.
func (c *Collection) ValidateAndCreate(name string) (*Graph, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: name is blank", ErrInvalidGraphName)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.lookup(name) != nil {
		return nil, fmt.Errorf("%w: %q", ErrDuplicateGraphName, name)
	}
	g := New(name)
	c.graphs = append(c.graphs, g)
	return g, nil
}

// View runs fn against the named graph under the shared lock.
// fn must not mutate the graph or retain it after returning.
func (c *Collection) View(name string, fn func(*Graph) error) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	g := c.lookup(name)
	if g == nil {
		return fmt.Errorf("%w: %q", ErrGraphNotFound, name)
	}
	return fn(g)
}

// Update runs fn against the named graph under the exclusive lock.
func (c *Collection) Update(name string, fn func(*Graph) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	g := c.lookup(name)
	if g == nil {
		return fmt.Errorf("%w: %q", ErrGraphNotFound, name)
	}
	return fn(g)
}

// Delete drops the named graph and everything in it.
func (c *Collection) Delete(name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := slices.IndexFunc(c.graphs, func(g *Graph) bool { return g.name == name })
	if i < 0 {
		return fmt.Errorf("%w: %q", ErrGraphNotFound, name)
	}
	c.graphs = slices.Delete(c.graphs, i, i+1)
	return nil
}

// Names lists graph names in creation order.
func (c *Collection) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, len(c.graphs))
	for i, g := range c.graphs {
		names[i] = g.name
	}
	return names
}

func (c *Collection) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.graphs)
}

// Summaries lists name and sizes of every graph in creation order.
func (c *Collection) Summaries() []Summary {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]Summary, len(c.graphs))
	for i, g := range c.graphs {
		out[i] = Summary{Name: g.name, Nodes: len(g.nodes), Bonds: len(g.bonds)}
	}
	return out
}
