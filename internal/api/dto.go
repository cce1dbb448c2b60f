package api

import (
	"github.com/google/uuid"

	"github.com/DrSkyle/avtan/pkg/graph"
)

type createGraphRequest struct {
	Name string `json:"name" validate:"required,max=256"`
}

type createNodeRequest struct {
	ID     string   `json:"id,omitempty"`
	Labels []string `json:"labels" validate:"max=64,dive,max=256"`
}

type createBondRequest struct {
	Label string `json:"label" validate:"max=256"`
	Src   string `json:"src" validate:"required"`
	Dst   string `json:"dst" validate:"required"`
}

type lookupRequest struct {
	IDs []string `json:"ids" validate:"max=10000,dive,required"`
}

type searchRequest struct {
	Labels []string `json:"labels"`
	Where  string   `json:"where,omitempty"`
}

type traverseRequest struct {
	NodeID         string   `json:"node_id" validate:"required"`
	BondLabels     []string `json:"bond_labels,omitempty"`
	NodeLabels     []string `json:"node_labels,omitempty"`
	Direction      string   `json:"direction,omitempty" validate:"omitempty,oneof=outgoing out ingoing incoming in both"`
	Depth          int      `json:"depth,omitempty" validate:"gte=0"`
	// KeepDuplicates is only valid when Depth is at most 1.
	KeepDuplicates bool     `json:"keep_duplicates,omitempty"`
	Where          string   `json:"where,omitempty"`
}

type pathsRequest struct {
	From       string   `json:"from" validate:"required"`
	To         string   `json:"to" validate:"required"`
	BondLabels []string `json:"bond_labels,omitempty"`
	Direction  string   `json:"direction,omitempty" validate:"omitempty,oneof=outgoing out ingoing incoming in both"`
	MaxDepth   int      `json:"max_depth,omitempty" validate:"gte=0"`
	Limit      int      `json:"limit,omitempty" validate:"gte=0"`
}

type nodeDTO struct {
	ID     string   `json:"id"`
	Labels []string `json:"labels"`
}

type bondDTO struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Src   string `json:"src"`
	Dst   string `json:"dst"`
}

type nodesResponse struct {
	Nodes []nodeDTO `json:"nodes"`
}

type pathsResponse struct {
	Paths [][]string `json:"paths"`
}

type graphsResponse struct {
	Graphs []graph.Summary `json:"graphs"`
}

func toNodeDTO(n *graph.Node) nodeDTO {
	labels := make([]string, len(n.Labels))
	copy(labels, n.Labels)
	return nodeDTO{ID: n.ID.String(), Labels: labels}
}

func toNodeDTOs(nodes []*graph.Node) []nodeDTO {
	out := make([]nodeDTO, len(nodes))
	for i, n := range nodes {
		out[i] = toNodeDTO(n)
	}
	return out
}

func toBondDTO(b *graph.Bond) bondDTO {
	return bondDTO{ID: b.ID.String(), Label: b.Label, Src: b.Src.String(), Dst: b.Dst.String()}
}

func toPathStrings(paths [][]uuid.UUID) [][]string {
	out := make([][]string, len(paths))
	for i, p := range paths {
		out[i] = make([]string, len(p))
		for j, id := range p {
			out[i][j] = id.String()
		}
	}
	return out
}
