package vectorstore

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"FlousWise/internal/embedding"
	"FlousWise/internal/faults"
	"FlousWise/internal/rag/interfaces"
	"FlousWise/internal/rag/schema"
)

// MemoryStore implements the VectorStore interface with exact cosine search
// over an in-memory slice. It backs tests and local development where a
// Milvus instance is not available.
type MemoryStore struct {
	mu       sync.RWMutex
	passages []*schema.Passage
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Rebuild replaces the entire index under the write lock. Insertion order is
// preserved; it is the tie-break order for equal scores in Search.
func (s *MemoryStore) Rebuild(ctx context.Context, passages []*schema.Passage) error {
	fresh := make([]*schema.Passage, len(passages))
	copy(fresh, passages)

	s.mu.Lock()
	s.passages = fresh
	s.mu.Unlock()
	return nil
}

// Search scores every passage against the query vector and returns the topK
// best, ordered by descending score. Ties keep insertion order.
func (s *MemoryStore) Search(ctx context.Context, vector []float32, topK int) ([]schema.ScoredPassage, error) {
	if topK < 1 {
		return nil, &faults.RetrievalError{Err: fmt.Errorf("topK must be at least 1, got %d", topK)}
	}

	s.mu.RLock()
	scored := make([]schema.ScoredPassage, 0, len(s.passages))
	for _, p := range s.passages {
		scored = append(scored, schema.ScoredPassage{
			Passage: *p,
			Score:   embedding.CosineSimilarity(vector, p.Embedding),
		})
	}
	s.mu.RUnlock()

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if topK < len(scored) {
		scored = scored[:topK]
	}
	return scored, nil
}

// VerifyDimension checks stored passages against the embedding dimension.
func (s *MemoryStore) VerifyDimension(ctx context.Context, dim int) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, p := range s.passages {
		if len(p.Embedding) != dim {
			return &faults.ConfigError{
				Field:  "embedding.dim",
				Reason: fmt.Sprintf("索引维度为 %d，当前嵌入模型维度为 %d，需要重新摄取", len(p.Embedding), dim),
			}
		}
	}
	return nil
}

// Len returns the number of indexed passages.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.passages)
}

// compile-time check to ensure MemoryStore implements the VectorStore interface
var _ interfaces.VectorStore = (*MemoryStore)(nil)
