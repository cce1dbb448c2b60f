// Package query compiles CEL predicates over graph nodes.
//
// Expressions see three variables: id (string), label (the primary label)
// and labels (list of strings). Example:
//
//	"green" in labels && id.startsWith("550e")
package query

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/cel-go/cel"

	"github.com/DrSkyle/avtan/pkg/graph"
)

// maxCached bounds the compiled program cache.
const maxCached = 256

// Compiler turns expressions into Filters and caches the compiled programs.
type Compiler struct {
	env *cel.Env

	mu       sync.Mutex
	programs map[string]cel.Program
}

func NewCompiler() (*Compiler, error) {
	env, err := cel.NewEnv(
		cel.Variable("id", cel.StringType),
		cel.Variable("label", cel.StringType),
		cel.Variable("labels", cel.ListType(cel.StringType)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL env: %w", err)
	}
	return &Compiler{env: env, programs: make(map[string]cel.Program)}, nil
}

// Compile checks expr and returns a Filter for it. Expressions must
// evaluate to a bool. Errors wrap graph.ErrInvalidQuery.
func (c *Compiler) Compile(expr string) (*Filter, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if prg, ok := c.programs[expr]; ok {
		return &Filter{expr: expr, prg: prg}, nil
	}

	ast, issues := c.env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("%w: %v", graph.ErrInvalidQuery, issues.Err())
	}
	if !ast.OutputType().IsExactType(cel.BoolType) {
		return nil, fmt.Errorf("%w: expression yields %s, want bool", graph.ErrInvalidQuery, ast.OutputType())
	}
	prg, err := c.env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", graph.ErrInvalidQuery, err)
	}

	if len(c.programs) >= maxCached {
		clear(c.programs)
	}
	c.programs[expr] = prg
	return &Filter{expr: expr, prg: prg}, nil
}

// Filter is a compiled node predicate. It is safe for concurrent use.
type Filter struct {
	expr string
	prg  cel.Program
}

func (f *Filter) String() string { return f.expr }

// Match evaluates the filter against n. Evaluation errors count as no match.
func (f *Filter) Match(n *graph.Node) bool {
	label := ""
	if len(n.Labels) > 0 {
		label = n.Labels[0]
	}
	out, _, err := f.prg.Eval(map[string]any{
		"id":     n.ID.String(),
		"label":  label,
		"labels": n.Labels,
	})
	if err != nil {
		slog.Debug("filter evaluation failed", "expr", f.expr, "node", n.ID, "error", err)
		return false
	}
	match, ok := out.Value().(bool)
	return ok && match
}
