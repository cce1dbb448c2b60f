package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/DrSkyle/avtan/pkg/graph"
	"github.com/DrSkyle/avtan/pkg/telemetry"
)

func (s *Server) startSpan(r *http.Request, op string) (context.Context, trace.Span) {
	return s.tracer.Start(r.Context(), op,
		trace.WithAttributes(attribute.String("graph.name", chi.URLParam(r, "name"))))
}

func (s *Server) createGraph(w http.ResponseWriter, r *http.Request) {
	ctx, span := s.tracer.Start(r.Context(), "graph.Create")
	defer span.End()

	var req createGraphRequest
	if err := s.decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	span.SetAttributes(attribute.String("graph.name", req.Name))

	g, err := s.graphs.ValidateAndCreate(req.Name)
	if err != nil {
		telemetry.Fail(span, err)
		s.writeError(w, r, err)
		return
	}
	s.metrics.graphs.Set(float64(s.graphs.Len()))
	s.logger.InfoContext(ctx, "graph created", "graph", req.Name)
	writeJSON(w, http.StatusCreated, graph.Summary{Name: g.Name()})
}

func (s *Server) listGraphs(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, graphsResponse{Graphs: s.graphs.Summaries()})
}

func (s *Server) graphStats(w http.ResponseWriter, r *http.Request) {
	_, span := s.startSpan(r, "graph.Stats")
	defer span.End()

	var st graph.Stats
	err := s.graphs.View(chi.URLParam(r, "name"), func(g *graph.Graph) error {
		st = g.Stats()
		return nil
	})
	if err != nil {
		telemetry.Fail(span, err)
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) deleteGraph(w http.ResponseWriter, r *http.Request) {
	ctx, span := s.startSpan(r, "graph.Delete")
	defer span.End()

	name := chi.URLParam(r, "name")
	if err := s.graphs.Delete(name); err != nil {
		telemetry.Fail(span, err)
		s.writeError(w, r, err)
		return
	}
	s.metrics.graphs.Set(float64(s.graphs.Len()))
	s.logger.InfoContext(ctx, "graph deleted", "graph", name)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) addNode(w http.ResponseWriter, r *http.Request) {
	_, span := s.startSpan(r, "graph.AddNode")
	defer span.End()

	var req createNodeRequest
	if err := s.decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	id, err := graph.ParseID(req.ID)
	if err != nil {
		s.writeError(w, r, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}

	var out nodeDTO
	err = s.graphs.Update(chi.URLParam(r, "name"), func(g *graph.Graph) error {
		n, err := g.AddNode(graph.Node{ID: id, Labels: req.Labels})
		if err != nil {
			return err
		}
		out = toNodeDTO(n)
		return nil
	})
	if err != nil {
		telemetry.Fail(span, err)
		s.writeError(w, r, err)
		return
	}
	s.metrics.nodesCreated.Inc()
	writeJSON(w, http.StatusCreated, out)
}

func (s *Server) getNode(w http.ResponseWriter, r *http.Request) {
	id, err := graph.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}

	var out nodeDTO
	err = s.graphs.View(chi.URLParam(r, "name"), func(g *graph.Graph) error {
		n, ok := g.Node(id)
		if !ok {
			return fmt.Errorf("%w: %s", graph.ErrUnknownNode, id)
		}
		out = toNodeDTO(n)
		return nil
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) addBond(w http.ResponseWriter, r *http.Request) {
	_, span := s.startSpan(r, "graph.AddBond")
	defer span.End()

	var req createBondRequest
	if err := s.decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	src, err := graph.ParseID(req.Src)
	if err != nil {
		s.writeError(w, r, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	dst, err := graph.ParseID(req.Dst)
	if err != nil {
		s.writeError(w, r, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}

	var out bondDTO
	err = s.graphs.Update(chi.URLParam(r, "name"), func(g *graph.Graph) error {
		b, err := g.AddBond(graph.Bond{Label: req.Label, Src: src, Dst: dst})
		if err != nil {
			return err
		}
		out = toBondDTO(b)
		return nil
	})
	if err != nil {
		telemetry.Fail(span, err)
		s.writeError(w, r, err)
		return
	}
	s.metrics.bondsCreated.Inc()
	writeJSON(w, http.StatusCreated, out)
}

func (s *Server) lookupNodes(w http.ResponseWriter, r *http.Request) {
	_, span := s.startSpan(r, "graph.NodesByIDs")
	defer span.End()

	var req lookupRequest
	if err := s.decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	ids, err := graph.ParseIDs(req.IDs)
	if err != nil {
		s.writeError(w, r, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}

	var out []nodeDTO
	err = s.graphs.View(chi.URLParam(r, "name"), func(g *graph.Graph) error {
		out = toNodeDTOs(g.NodesByIDs(ids))
		return nil
	})
	if err != nil {
		telemetry.Fail(span, err)
		s.writeError(w, r, err)
		return
	}
	span.SetAttributes(attribute.Int("result.size", len(out)))
	writeJSON(w, http.StatusOK, nodesResponse{Nodes: out})
}

// searchNodes selects by labels, by a where expression, or both.
func (s *Server) searchNodes(w http.ResponseWriter, r *http.Request) {
	_, span := s.startSpan(r, "graph.NodesByLabels")
	defer span.End()

	var req searchRequest
	if err := s.decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if len(req.Labels) == 0 && req.Where == "" {
		s.writeError(w, r, fmt.Errorf("%w: labels or where is required", errBadRequest))
		return
	}
	match, err := s.matcher(req.Where)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var out []nodeDTO
	err = s.graphs.View(chi.URLParam(r, "name"), func(g *graph.Graph) error {
		var nodes []*graph.Node
		if len(req.Labels) > 0 {
			nodes = g.NodesByLabels(req.Labels)
			if match != nil {
				nodes = filterNodes(nodes, match)
			}
		} else {
			nodes = g.Filter(match)
		}
		out = toNodeDTOs(nodes)
		return nil
	})
	if err != nil {
		telemetry.Fail(span, err)
		s.writeError(w, r, err)
		return
	}
	span.SetAttributes(attribute.Int("result.size", len(out)))
	writeJSON(w, http.StatusOK, nodesResponse{Nodes: out})
}

func (s *Server) traverse(w http.ResponseWriter, r *http.Request) {
	_, span := s.startSpan(r, "graph.ConnectedNodes")
	defer span.End()

	var req traverseRequest
	if err := s.decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.Depth > s.limits.MaxDepth {
		s.writeError(w, r, fmt.Errorf("%w: depth %d exceeds limit %d", graph.ErrInvalidQuery, req.Depth, s.limits.MaxDepth))
		return
	}
	if req.KeepDuplicates && req.Depth > 1 {
		s.writeError(w, r, fmt.Errorf("%w: keep_duplicates applies to single-hop traversal only", graph.ErrInvalidQuery))
		return
	}
	start, err := graph.ParseID(req.NodeID)
	if err != nil {
		s.writeError(w, r, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	dir, err := graph.ParseDirection(req.Direction)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	match, err := s.matcher(req.Where)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	opts := graph.TraverseOptions{
		BondLabels:     req.BondLabels,
		NodeLabels:     req.NodeLabels,
		Direction:      dir,
		KeepDuplicates: req.KeepDuplicates,
		Match:          match,
	}
	span.SetAttributes(
		attribute.String("traverse.direction", dir.String()),
		attribute.Int("traverse.depth", req.Depth),
	)

	var out []nodeDTO
	err = s.graphs.View(chi.URLParam(r, "name"), func(g *graph.Graph) error {
		var nodes []*graph.Node
		var err error
		if req.Depth > 1 {
			nodes, err = g.ConnectedNodesByDepth(start, req.Depth, opts)
		} else {
			nodes, err = g.ConnectedNodes(start, opts)
		}
		if err != nil {
			return err
		}
		out = toNodeDTOs(nodes)
		return nil
	})
	if err != nil {
		telemetry.Fail(span, err)
		s.writeError(w, r, err)
		return
	}
	span.SetAttributes(attribute.Int("result.size", len(out)))
	writeJSON(w, http.StatusOK, nodesResponse{Nodes: out})
}

func (s *Server) paths(w http.ResponseWriter, r *http.Request) {
	_, span := s.startSpan(r, "graph.Paths")
	defer span.End()

	var req pathsRequest
	if err := s.decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.MaxDepth > s.limits.MaxDepth || req.Limit > s.limits.MaxPaths {
		s.writeError(w, r, fmt.Errorf("%w: max_depth is capped at %d and limit at %d",
			graph.ErrInvalidQuery, s.limits.MaxDepth, s.limits.MaxPaths))
		return
	}
	if req.MaxDepth == 0 {
		req.MaxDepth = min(graph.DefaultMaxPathDepth, s.limits.MaxDepth)
	}
	if req.Limit == 0 {
		req.Limit = min(graph.DefaultPathLimit, s.limits.MaxPaths)
	}
	from, err := graph.ParseID(req.From)
	if err != nil {
		s.writeError(w, r, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	to, err := graph.ParseID(req.To)
	if err != nil {
		s.writeError(w, r, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	dir, err := graph.ParseDirection(req.Direction)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var out [][]string
	err = s.graphs.View(chi.URLParam(r, "name"), func(g *graph.Graph) error {
		paths, err := g.Paths(from, to, graph.PathOptions{
			BondLabels: req.BondLabels,
			Direction:  dir,
			MaxDepth:   req.MaxDepth,
			Limit:      req.Limit,
		})
		if err != nil {
			return err
		}
		out = toPathStrings(paths)
		return nil
	})
	if err != nil {
		telemetry.Fail(span, err)
		s.writeError(w, r, err)
		return
	}
	span.SetAttributes(attribute.Int("result.size", len(out)))
	writeJSON(w, http.StatusOK, pathsResponse{Paths: out})
}

// matcher compiles a where expression. Empty input yields a nil matcher.
func (s *Server) matcher(where string) (func(*graph.Node) bool, error) {
	if where == "" {
		return nil, nil
	}
	f, err := s.filters.Compile(where)
	if err != nil {
		return nil, err
	}
	return f.Match, nil
}

func filterNodes(nodes []*graph.Node, match func(*graph.Node) bool) []*graph.Node {
	out := nodes[:0:0]
	for _, n := range nodes {
		if match(n) {
			out = append(out, n)
		}
	}
	return out
}
