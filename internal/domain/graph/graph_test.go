package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGraph_NodeDedup(t *testing.T) {
	g := New()
	a := g.AddValueNode(NodeArgument, "expert_letter")
	b := g.AddValueNode(NodeArgument, "expert_letter")
	assert.Equal(t, a, b)
	assert.Equal(t, 1, g.NodeCount())
	assert.Equal(t, "arg_expert_letter", a)
}

func TestGraph_ValueNodeIDs(t *testing.T) {
	assert.Equal(t, "case_7", CaseNodeID(7))
	assert.Equal(t, "outcome_favorable", ValueNodeID(NodeOutcome, "FAVORABLE"))
	assert.Equal(t, "comptype_consulting", ValueNodeID(NodeCompanyType, "consulting"))
	assert.Equal(t, "role_software engineer", ValueNodeID(NodeJobTitle, "Software Engineer"))
	assert.Equal(t, "rfe_specialty_occupation", ValueNodeID(NodeRFEIssue, "specialty_occupation"))
}

func TestGraph_AddEdgeUnknownEndpointIgnored(t *testing.T) {
	g := New()
	g.AddCaseNode(0)
	g.AddEdge("case_0", "outcome_favorable", EdgeResultedIn, 0)
	assert.Equal(t, 0, g.EdgeCount())
}

func TestGraph_AddSimilarPair(t *testing.T) {
	g := New()
	g.AddCaseNode(0)
	g.AddCaseNode(1)
	g.AddSimilarPair(0, 1, 0.95)

	assert.Equal(t, 2, g.EdgeCount())
	pairs := g.SimilarPairs()
	assert.Len(t, pairs, 1)
	assert.Equal(t, SimilarPair{Source: 0, Target: 1, Weight: 0.95}, pairs[0])

	// Self-loops are rejected.
	g.AddSimilarPair(1, 1, 0.99)
	assert.Equal(t, 2, g.EdgeCount())
}

func TestGraph_Out(t *testing.T) {
	g := New()
	g.AddCaseNode(0)
	out := g.AddValueNode(NodeOutcome, "FAVORABLE")
	arg := g.AddValueNode(NodeArgument, "expert_letter")
	g.AddEdge("case_0", out, EdgeResultedIn, 0)
	g.AddEdge("case_0", arg, EdgeUsedArg, 0)

	assert.Len(t, g.Out("case_0", ""), 2)
	assert.Len(t, g.Out("case_0", EdgeUsedArg), 1)
	assert.Empty(t, g.Out("case_0", EdgeSimilarTo))
}
