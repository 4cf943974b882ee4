package graph

import (
	"context"
	"encoding/json"
	"io"
	"strconv"
	"time"

	"github.com/precedex/precedex/internal/domain/casefile"
	"github.com/precedex/precedex/internal/infrastructure/monitoring/logging"
	"github.com/precedex/precedex/pkg/errors"
)

// SnapshotVersion is bumped whenever the persisted layout changes in a way
// an older reader cannot interpret. Mismatched snapshots are rejected at
// decode time rather than deserialized into the wrong shapes.
const SnapshotVersion = 1

// Snapshot is the persisted form of one corpus generation: the case list,
// the unit-normalized embedding matrix, and the full graph topology. It is
// the only mechanism for skipping a rebuild.
type Snapshot struct {
	Version    int             `json:"version"`
	BuiltAt    time.Time       `json:"built_at"`
	Threshold  float64         `json:"threshold"`
	Cases      []casefile.Case `json:"cases"`
	Embeddings [][]float64     `json:"embeddings"`
	Nodes      []Node          `json:"nodes"`
	Edges      []Edge          `json:"edges"`
}

// Store persists snapshot bytes; the file and object-storage backends both
// implement it.
type Store interface {
	Save(ctx context.Context, data []byte) error
	Load(ctx context.Context) ([]byte, error)
}

// Snapshot captures the builder's current corpus and graph. Build must have
// run; a nil graph is persisted as empty topology.
func (b *Builder) Snapshot(threshold float64) (*Snapshot, error) {
	if len(b.cases) == 0 {
		return nil, errors.NotLoaded("no corpus loaded; nothing to snapshot")
	}
	s := &Snapshot{
		Version:    SnapshotVersion,
		BuiltAt:    time.Now().UTC(),
		Threshold:  threshold,
		Cases:      b.cases,
		Embeddings: b.embeddings,
	}
	if b.graph != nil {
		s.Nodes = b.graph.Nodes()
		s.Edges = b.graph.Edges()
	}
	return s, nil
}

// Restore replaces the builder's corpus and graph with the snapshot's
// content. The version must match exactly.
func (b *Builder) Restore(s *Snapshot) error {
	if s == nil {
		return errors.New(errors.ErrCodeSnapshotCorrupt, "nil snapshot")
	}
	if s.Version != SnapshotVersion {
		return errors.New(errors.ErrCodeSnapshotVersion, "unsupported snapshot version").
			WithDetail("got=" + strconv.Itoa(s.Version) + " want=" + strconv.Itoa(SnapshotVersion))
	}
	if len(s.Cases) == 0 {
		return errors.New(errors.ErrCodeCorpusEmpty, "snapshot contains no cases")
	}
	if len(s.Cases) != len(s.Embeddings) {
		return errors.New(errors.ErrCodeSnapshotCorrupt, "snapshot case list and embedding matrix are misaligned")
	}

	g := New()
	for _, n := range s.Nodes {
		node := n
		g.nodes[node.ID] = &node
	}
	for _, e := range s.Edges {
		g.AddEdge(e.From, e.To, e.Kind, e.Weight)
	}

	b.cases = s.Cases
	b.embeddings = s.Embeddings
	b.graph = g

	b.log.Info("snapshot restored",
		logging.Int("cases", len(s.Cases)),
		logging.Int("nodes", g.NodeCount()),
		logging.Int("edges", g.EdgeCount()),
	)
	return nil
}

// EncodeSnapshot writes the snapshot as JSON.
func EncodeSnapshot(w io.Writer, s *Snapshot) error {
	if err := json.NewEncoder(w).Encode(s); err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "encode snapshot")
	}
	return nil
}

// DecodeSnapshot reads a JSON snapshot and validates its version.
func DecodeSnapshot(r io.Reader) (*Snapshot, error) {
	var s Snapshot
	if err := json.NewDecoder(r).Decode(&s); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSnapshotCorrupt, "decode snapshot")
	}
	if s.Version != SnapshotVersion {
		return nil, errors.New(errors.ErrCodeSnapshotVersion, "unsupported snapshot version").
			WithDetail("got=" + strconv.Itoa(s.Version) + " want=" + strconv.Itoa(SnapshotVersion))
	}
	return &s, nil
}
