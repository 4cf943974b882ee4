// Package graph builds and serves the typed relationship graph over the
// loaded case corpus: case nodes, deduplicated attribute-value nodes, and
// embedding-derived similarity edges between cases.
package graph

import (
	"sort"
	"strconv"
	"strings"
)

// NodeKind tags a node with its entity class.
type NodeKind string

const (
	NodeCase        NodeKind = "case"
	NodeOutcome     NodeKind = "outcome"
	NodeArgument    NodeKind = "argument"
	NodeCompanyType NodeKind = "company_type"
	NodeJobTitle    NodeKind = "job_title"
	NodeRFEIssue    NodeKind = "rfe_issue"
)

// EdgeKind tags an edge with its relationship class.
type EdgeKind string

const (
	EdgeResultedIn  EdgeKind = "RESULTED_IN"
	EdgeUsedArg     EdgeKind = "USED_ARGUMENT"
	EdgeFiledBy     EdgeKind = "FILED_BY"
	EdgeForRole     EdgeKind = "FOR_ROLE"
	EdgeReceivedRFE EdgeKind = "RECEIVED_RFE"
	EdgeSimilarTo   EdgeKind = "SIMILAR_TO"
)

// Node is one graph vertex. Value holds the literal attribute value for
// non-case nodes; CaseIndex is meaningful only when Kind == NodeCase.
type Node struct {
	ID        string   `json:"id"`
	Kind      NodeKind `json:"kind"`
	Value     string   `json:"value,omitempty"`
	CaseIndex int      `json:"case_index,omitempty"`
}

// Edge is one directed graph edge. Weight is populated only for
// EdgeSimilarTo, where it carries the cosine similarity.
type Edge struct {
	From   string   `json:"from"`
	To     string   `json:"to"`
	Kind   EdgeKind `json:"kind"`
	Weight float64  `json:"weight,omitempty"`
}

// SimilarPair is one undirected case-similarity relation, reported once
// regardless of the two stored directed edges.
type SimilarPair struct {
	Source int     `json:"source"`
	Target int     `json:"target"`
	Weight float64 `json:"weight"`
}

// CaseNodeID returns the node key for a case by corpus index.
func CaseNodeID(index int) string { return "case_" + strconv.Itoa(index) }

// ValueNodeID returns the deduplicated node key for an attribute value.
func ValueNodeID(kind NodeKind, value string) string {
	var prefix string
	switch kind {
	case NodeOutcome:
		prefix = "outcome_"
	case NodeArgument:
		prefix = "arg_"
	case NodeCompanyType:
		prefix = "comptype_"
	case NodeJobTitle:
		prefix = "role_"
	case NodeRFEIssue:
		prefix = "rfe_"
	default:
		prefix = string(kind) + "_"
	}
	return prefix + strings.ToLower(strings.TrimSpace(value))
}

// Graph is a directed heterogeneous graph held as explicit adjacency:
// a node table plus per-node outgoing edge lists. It is built once per
// corpus and read-only afterwards.
type Graph struct {
	nodes map[string]*Node
	adj   map[string][]Edge

	edgeCount int
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{
		nodes: make(map[string]*Node),
		adj:   make(map[string][]Edge),
	}
}

// AddCaseNode registers the node for a case index and returns its id.
func (g *Graph) AddCaseNode(index int) string {
	id := CaseNodeID(index)
	if _, ok := g.nodes[id]; !ok {
		g.nodes[id] = &Node{ID: id, Kind: NodeCase, CaseIndex: index}
	}
	return id
}

// AddValueNode registers (or reuses) the deduplicated node for an attribute
// value and returns its id.
func (g *Graph) AddValueNode(kind NodeKind, value string) string {
	id := ValueNodeID(kind, value)
	if _, ok := g.nodes[id]; !ok {
		g.nodes[id] = &Node{ID: id, Kind: kind, Value: value}
	}
	return id
}

// AddEdge appends one directed edge. Both endpoints must already exist;
// unknown endpoints are ignored so a malformed record cannot corrupt the
// adjacency table.
func (g *Graph) AddEdge(from, to string, kind EdgeKind, weight float64) {
	if _, ok := g.nodes[from]; !ok {
		return
	}
	if _, ok := g.nodes[to]; !ok {
		return
	}
	g.adj[from] = append(g.adj[from], Edge{From: from, To: to, Kind: kind, Weight: weight})
	g.edgeCount++
}

// AddSimilarPair stores the symmetric SIMILAR_TO relation between two case
// indices as two directed edges of equal weight. Self-loops are rejected.
func (g *Graph) AddSimilarPair(i, j int, weight float64) {
	if i == j {
		return
	}
	a := CaseNodeID(i)
	b := CaseNodeID(j)
	g.AddEdge(a, b, EdgeSimilarTo, weight)
	g.AddEdge(b, a, EdgeSimilarTo, weight)
}

// Node returns the node for an id, or nil when absent.
func (g *Graph) Node(id string) *Node {
	return g.nodes[id]
}

// NodeCount returns the number of registered nodes.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of directed edges.
func (g *Graph) EdgeCount() int { return g.edgeCount }

// Nodes returns all nodes sorted by id for deterministic iteration.
func (g *Graph) Nodes() []Node {
	out := make([]Node, 0, len(g.nodes))
	for _, n := range g.nodes {
		out = append(out, *n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Edges returns all directed edges ordered by source id, then insertion
// order within a source.
func (g *Graph) Edges() []Edge {
	sources := make([]string, 0, len(g.adj))
	for id := range g.adj {
		sources = append(sources, id)
	}
	sort.Strings(sources)
	out := make([]Edge, 0, g.edgeCount)
	for _, id := range sources {
		out = append(out, g.adj[id]...)
	}
	return out
}

// Out returns the outgoing edges of a node, optionally filtered by kind
// (empty kind matches all).
func (g *Graph) Out(id string, kind EdgeKind) []Edge {
	var out []Edge
	for _, e := range g.adj[id] {
		if kind == "" || e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}

// SimilarPairs returns every undirected SIMILAR_TO relation exactly once,
// ordered by (source, target) with source < target.
func (g *Graph) SimilarPairs() []SimilarPair {
	var out []SimilarPair
	for id, edges := range g.adj {
		from := g.nodes[id]
		if from == nil || from.Kind != NodeCase {
			continue
		}
		for _, e := range edges {
			if e.Kind != EdgeSimilarTo {
				continue
			}
			to := g.nodes[e.To]
			if to == nil || to.Kind != NodeCase {
				continue
			}
			if from.CaseIndex < to.CaseIndex {
				out = append(out, SimilarPair{Source: from.CaseIndex, Target: to.CaseIndex, Weight: e.Weight})
			}
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Source != out[j].Source {
			return out[i].Source < out[j].Source
		}
		return out[i].Target < out[j].Target
	})
	return out
}
