package vectorstore

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/milvus-io/milvus-sdk-go/v2/entity"

	"FlousWise/internal/database/milvus"
	"FlousWise/internal/faults"
	"FlousWise/internal/rag/interfaces"
	"FlousWise/internal/rag/schema"
)

// insertBatchSize bounds the number of rows per Milvus insert call.
const insertBatchSize = 256

// MilvusStore implements the VectorStore interface on a durable Milvus
// collection. The externally visible collection name is an alias; each
// Rebuild creates a fresh timestamped collection behind it and swaps the
// alias once the new generation is ready, so concurrent searches always see
// a complete index.
type MilvusStore struct {
	db    *milvus.Client
	alias string
}

// NewMilvusStore creates a MilvusStore over the configured collection alias.
func NewMilvusStore(db *milvus.Client) *MilvusStore {
	return &MilvusStore{db: db, alias: db.Config.Schema.CollectionName}
}

// Rebuild creates a new generation collection, loads all passages into it,
// and atomically points the alias at it. Old generations are dropped only
// after the swap, so a failed rebuild leaves the previous index serving.
func (s *MilvusStore) Rebuild(ctx context.Context, passages []*schema.Passage) error {
	genName := fmt.Sprintf("%s_%d", s.alias, time.Now().Unix())

	if err := s.db.CreateCollection(ctx, genName); err != nil {
		return err
	}

	for start := 0; start < len(passages); start += insertBatchSize {
		end := start + insertBatchSize
		if end > len(passages) {
			end = len(passages)
		}
		batch := passages[start:end]

		ids := make([]string, len(batch))
		sources := make([]string, len(batch))
		chunks := make([]string, len(batch))
		vectors := make([][]float32, len(batch))
		for i, p := range batch {
			ids[i] = p.ID
			sources[i] = p.Source
			chunks[i] = p.Text
			vectors[i] = p.Embedding
		}

		if err := s.db.InsertBatch(ctx, genName, ids, sources, chunks, vectors); err != nil {
			return fmt.Errorf("failed to fill generation '%s': %w", genName, err)
		}
	}

	if err := s.db.Flush(ctx, genName); err != nil {
		return err
	}
	if err := s.db.LoadCollection(ctx, genName); err != nil {
		return err
	}
	if err := s.db.SwapAlias(ctx, s.alias, genName); err != nil {
		return err
	}

	return s.dropOldGenerations(ctx, genName)
}

// dropOldGenerations removes every generation collection except the one the
// alias now points to.
func (s *MilvusStore) dropOldGenerations(ctx context.Context, keep string) error {
	names, err := s.db.ListCollections(ctx)
	if err != nil {
		return err
	}
	for _, name := range names {
		if name == keep || !strings.HasPrefix(name, s.alias+"_") {
			continue
		}
		if err := s.db.DropCollection(ctx, name); err != nil {
			return err
		}
	}
	return nil
}

// Search queries the alias for the topK most similar passages. A missing
// index (no ingestion has run yet) yields an empty result.
func (s *MilvusStore) Search(ctx context.Context, vector []float32, topK int) ([]schema.ScoredPassage, error) {
	exists, err := s.db.HasCollection(ctx, s.alias)
	if err != nil {
		return nil, &faults.RetrievalError{Err: err}
	}
	if !exists {
		return []schema.ScoredPassage{}, nil
	}

	results, err := s.db.Search(ctx, s.alias, topK, vector)
	if err != nil {
		return nil, &faults.RetrievalError{Err: err}
	}

	var passages []schema.ScoredPassage
	for _, result := range results {
		idCol, _ := result.IDs.(*entity.ColumnVarChar)
		chunkCol, _ := result.Fields.GetColumn("chunk").(*entity.ColumnVarChar)
		sourceCol, _ := result.Fields.GetColumn("source").(*entity.ColumnVarChar)

		for i := 0; i < result.ResultCount; i++ {
			sp := schema.ScoredPassage{Score: float64(result.Scores[i])}
			if idCol != nil {
				sp.ID, _ = idCol.ValueByIdx(i)
			}
			if chunkCol != nil {
				sp.Text, _ = chunkCol.ValueByIdx(i)
			}
			if sourceCol != nil {
				sp.Source, _ = sourceCol.ValueByIdx(i)
			}
			passages = append(passages, sp)
		}
	}

	if passages == nil {
		passages = []schema.ScoredPassage{}
	}
	return passages, nil
}

// VerifyDimension compares the persisted index dimension with the embedding
// model's dimension. A mismatch means the index was built with a different
// model and must be re-ingested; serving it would return garbage scores.
func (s *MilvusStore) VerifyDimension(ctx context.Context, dim int) error {
	exists, err := s.db.HasCollection(ctx, s.alias)
	if err != nil {
		return err
	}
	if !exists {
		// No index yet. Searches return empty until ingestion runs.
		return nil
	}

	stored, err := s.db.CollectionDim(ctx, s.alias)
	if err != nil {
		return err
	}
	if stored != dim {
		return &faults.ConfigError{
			Field:  "embedding.dim",
			Reason: fmt.Sprintf("索引维度为 %d，当前嵌入模型维度为 %d，需要重新摄取", stored, dim),
		}
	}
	return nil
}

// compile-time check to ensure MilvusStore implements the VectorStore interface
var _ interfaces.VectorStore = (*MilvusStore)(nil)
