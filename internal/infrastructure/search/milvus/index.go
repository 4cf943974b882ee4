// Package milvus provides an approximate-nearest-neighbor index for case
// embeddings, backed by a Milvus collection. It is optional; when disabled
// the engine falls back to exact in-memory scans.
package milvus

import (
	"context"
	"strconv"
	"time"

	"github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"

	"github.com/precedex/precedex/internal/config"
	"github.com/precedex/precedex/internal/domain/graph"
	"github.com/precedex/precedex/internal/infrastructure/monitoring/logging"
	"github.com/precedex/precedex/pkg/errors"
)

const (
	idField        = "id"
	embeddingField = "embedding"
	maxTopK        = 16384
	// pairTopK bounds how many neighbors are fetched per case when mining
	// similarity pairs. Cases rarely have more near-duplicates than this.
	pairTopK = 64

	hnswM              = 8
	hnswEfConstruction = 200
	hnswEfSearch       = 64
)

// milvusAPI is the subset of the Milvus SDK client used by the index.
// client.Client satisfies it.
type milvusAPI interface {
	HasCollection(ctx context.Context, collName string) (bool, error)
	DropCollection(ctx context.Context, collName string, opts ...client.DropCollectionOption) error
	CreateCollection(ctx context.Context, collSchema *entity.Schema, shardsNum int32, opts ...client.CreateCollectionOption) error
	Insert(ctx context.Context, collName string, partitionName string, columns ...entity.Column) (entity.Column, error)
	Flush(ctx context.Context, collName string, async bool, opts ...client.FlushOption) error
	CreateIndex(ctx context.Context, collName string, fieldName string, idx entity.Index, async bool, opts ...client.IndexOption) error
	LoadCollection(ctx context.Context, collName string, async bool, opts ...client.LoadCollectionOption) error
	Search(ctx context.Context, collName string, partitions []string, expr string, outputFields []string, vectors []entity.Vector, vectorField string, metricType entity.MetricType, topK int, sp entity.SearchParam, opts ...client.SearchQueryOptionFunc) ([]client.SearchResult, error)
	Close() error
}

// newMilvusClient is a variable so tests can substitute a fake connection.
var newMilvusClient = func(ctx context.Context, cfg client.Config) (client.Client, error) {
	return client.NewClient(ctx, cfg)
}

// Index stores normalized case embeddings in Milvus keyed by corpus row
// index. It implements strategy.NeighborIndex and graph.PairFinder.
type Index struct {
	api        milvusAPI
	collection string
	dim        int
	timeout    time.Duration
	log        logging.Logger

	// size is the corpus row count of the last successful Sync. Score
	// results are aligned to it.
	size int
}

// NewIndex connects to the configured Milvus instance.
func NewIndex(ctx context.Context, cfg config.MilvusConfig, log logging.Logger) (*Index, error) {
	if log == nil {
		log = logging.NewNopLogger()
	}
	if cfg.Addr == "" {
		return nil, errors.New(errors.ErrCodeValidation, "milvus address is required")
	}

	connectCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	mc, err := newMilvusClient(connectCtx, client.Config{Address: cfg.Addr})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeServiceUnavailable, "failed to connect to milvus")
	}

	log.Info("milvus connected",
		logging.String("addr", cfg.Addr),
		logging.String("collection", cfg.Collection),
		logging.Int("dim", cfg.EmbeddingDim))
	return newIndexWithAPI(mc, cfg, log), nil
}

func newIndexWithAPI(api milvusAPI, cfg config.MilvusConfig, log logging.Logger) *Index {
	if log == nil {
		log = logging.NewNopLogger()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Index{
		api:        api,
		collection: cfg.Collection,
		dim:        cfg.EmbeddingDim,
		timeout:    timeout,
		log:        log,
	}
}

// Sync rebuilds the collection from the given normalized embeddings. The
// row index becomes the primary key, so search hits map directly back to
// corpus positions.
func (x *Index) Sync(ctx context.Context, embeddings [][]float64) error {
	if len(embeddings) == 0 {
		return errors.New(errors.ErrCodeCorpusEmpty, "no embeddings to index")
	}
	for i, row := range embeddings {
		if len(row) != x.dim {
			return errors.New(errors.ErrCodeCorpusMalformed, "embedding dimension mismatch").
				WithDetail("row " + strconv.Itoa(i) + " has dim " + strconv.Itoa(len(row)))
		}
	}

	has, err := x.api.HasCollection(ctx, x.collection)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "failed to check collection")
	}
	if has {
		if err := x.api.DropCollection(ctx, x.collection); err != nil {
			return errors.Wrap(err, errors.ErrCodeInternal, "failed to drop stale collection")
		}
	}

	schema := &entity.Schema{
		CollectionName: x.collection,
		Description:    "case embeddings keyed by corpus row index",
		Fields: []*entity.Field{
			{Name: idField, DataType: entity.FieldTypeInt64, PrimaryKey: true, AutoID: false},
			{Name: embeddingField, DataType: entity.FieldTypeFloatVector, TypeParams: map[string]string{"dim": strconv.Itoa(x.dim)}},
		},
	}
	if err := x.api.CreateCollection(ctx, schema, 1); err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "failed to create collection")
	}

	ids := make([]int64, len(embeddings))
	vectors := make([][]float32, len(embeddings))
	for i, row := range embeddings {
		ids[i] = int64(i)
		vectors[i] = toFloat32(row)
	}

	idCol := entity.NewColumnInt64(idField, ids)
	vecCol := entity.NewColumnFloatVector(embeddingField, x.dim, vectors)
	if _, err := x.api.Insert(ctx, x.collection, "", idCol, vecCol); err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "failed to insert embeddings")
	}
	if err := x.api.Flush(ctx, x.collection, false); err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "failed to flush collection")
	}

	// Embeddings are unit-normalized upstream, so inner product equals
	// cosine similarity.
	idx, err := entity.NewIndexHNSW(entity.IP, hnswM, hnswEfConstruction)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "failed to build index spec")
	}
	if err := x.api.CreateIndex(ctx, x.collection, embeddingField, idx, false); err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "failed to create vector index")
	}
	if err := x.api.LoadCollection(ctx, x.collection, false); err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "failed to load collection")
	}

	x.size = len(embeddings)
	x.log.Info("embedding index synced",
		logging.String("collection", x.collection),
		logging.Int("rows", x.size))
	return nil
}

// Score returns one cosine score per corpus row for the query vector.
// Rows outside the fetched neighborhood score zero.
func (x *Index) Score(ctx context.Context, query []float64) ([]float64, error) {
	if x.size == 0 {
		return nil, errors.New(errors.ErrCodeEngineNotLoaded, "embedding index is not synced")
	}
	if len(query) != x.dim {
		return nil, errors.New(errors.ErrCodeValidation, "query dimension mismatch").
			WithDetail("expected " + strconv.Itoa(x.dim) + ", got " + strconv.Itoa(len(query)))
	}

	topK := x.size
	if topK > maxTopK {
		topK = maxTopK
	}

	hits, err := x.search(ctx, toFloat32(query), topK)
	if err != nil {
		return nil, err
	}

	scores := make([]float64, x.size)
	for id, score := range hits {
		if id >= 0 && int(id) < x.size {
			scores[id] = float64(score)
		}
	}
	return scores, nil
}

// FindPairs syncs the embeddings and mines similar pairs above the
// threshold via per-row neighborhood queries. It implements
// graph.PairFinder.
func (x *Index) FindPairs(embeddings [][]float64, threshold float64) ([]graph.SimilarPair, error) {
	ctx, cancel := context.WithTimeout(context.Background(), x.timeout*time.Duration(len(embeddings)+1))
	defer cancel()

	if err := x.Sync(ctx, embeddings); err != nil {
		return nil, err
	}

	topK := pairTopK
	if topK > x.size {
		topK = x.size
	}

	var pairs []graph.SimilarPair
	for i, row := range embeddings {
		hits, err := x.search(ctx, toFloat32(row), topK)
		if err != nil {
			return nil, err
		}
		for id, score := range hits {
			j := int(id)
			// Emit each pair once, from the lower row index.
			if j <= i || j >= x.size {
				continue
			}
			if w := float64(score); w > threshold {
				pairs = append(pairs, graph.SimilarPair{Source: i, Target: j, Weight: w})
			}
		}
	}
	return pairs, nil
}

func (x *Index) search(ctx context.Context, vector []float32, topK int) (map[int64]float32, error) {
	sp, err := entity.NewIndexHNSWSearchParam(hnswEfSearch)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to build search params")
	}

	searchCtx, cancel := context.WithTimeout(ctx, x.timeout)
	defer cancel()

	results, err := x.api.Search(searchCtx, x.collection, nil, "", nil,
		[]entity.Vector{entity.FloatVector(vector)}, embeddingField, entity.IP, topK, sp)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeServiceUnavailable, "vector search failed")
	}

	hits := make(map[int64]float32)
	for _, res := range results {
		for j := 0; j < res.ResultCount; j++ {
			id, err := res.IDs.GetAsInt64(j)
			if err != nil {
				continue
			}
			hits[id] = res.Scores[j]
		}
	}
	return hits, nil
}

// Close releases the underlying connection.
func (x *Index) Close() error {
	return x.api.Close()
}

func toFloat32(v []float64) []float32 {
	out := make([]float32, len(v))
	for i, f := range v {
		out[i] = float32(f)
	}
	return out
}
