package graph

import "github.com/google/uuid"

// NodesByIDs returns the distinct stored nodes named in ids, in first
// occurrence order. Unknown ids are skipped.
func (g *Graph) NodesByIDs(ids []uuid.UUID) []*Node {
	result := make([]*Node, 0, len(ids))
	seen := make(map[int]struct{}, len(ids))
	for _, id := range ids {
		slot, ok := g.nodeIdx[id]
		if !ok {
			continue
		}
		if _, dup := seen[slot]; dup {
			continue
		}
		seen[slot] = struct{}{}
		result = append(result, g.nodes[slot])
	}
	return result
}

// NodesByLabels returns, label by label, every node carrying that label.
// A node matching several requested labels is reported once.
//
// There is no label index: each label costs a full scan.
func (g *Graph) NodesByLabels(labels []string) []*Node {
	var result []*Node
	seen := make(map[int]struct{})
	for _, label := range labels {
		for slot, n := range g.nodes {
			if _, dup := seen[slot]; dup {
				continue
			}
			if n.HasLabel(label) {
				seen[slot] = struct{}{}
				result = append(result, n)
			}
		}
	}
	return result
}

// Filter returns the nodes for which match is true, in insertion order.
func (g *Graph) Filter(match func(*Node) bool) []*Node {
	var result []*Node
	for _, n := range g.nodes {
		if match(n) {
			result = append(result, n)
		}
	}
	return result
}
