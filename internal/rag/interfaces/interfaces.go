package interfaces

import (
	"context"

	"FlousWise/internal/models"
	"FlousWise/internal/rag/schema"
)

// Loader is the interface for loading a source file into a Document.
type Loader interface {
	Load(ctx context.Context, path string) ([]*schema.Document, error)
}

// Splitter is the interface for splitting documents into passages.
type Splitter interface {
	Split(ctx context.Context, docs []*schema.Document) ([]*schema.Passage, error)
}

// VectorStore is the interface for storing and querying passage vectors.
type VectorStore interface {
	// Rebuild atomically replaces the entire index contents with the given
	// passages. Concurrent searches see either the old generation or the new
	// one, never a mix.
	Rebuild(ctx context.Context, passages []*schema.Passage) error

	// Search returns up to topK passages most similar to the query vector,
	// ordered by descending score. An empty index yields an empty result,
	// not an error.
	Search(ctx context.Context, vector []float32, topK int) ([]schema.ScoredPassage, error)

	// VerifyDimension checks that the persisted index matches the embedding
	// dimension dim. A mismatch is fatal: the index must be rebuilt with the
	// current embedding model before serving queries.
	VerifyDimension(ctx context.Context, dim int) error
}

// Embedder is the embedding model surface the pipelines depend on.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// Generator is the LLM surface the QA pipeline depends on.
type Generator interface {
	GenerateContent(ctx context.Context, req *models.GenerateRequest) (*models.GenerateResponse, error)
}

// ProfileSource provides the user's financial profile for prompt assembly.
// token is the caller's bearer token, passed through to the upstream service.
type ProfileSource interface {
	Fetch(ctx context.Context, userID, token string) (*models.UserProfile, error)
}

// RegionalContext renders the regional economic background section of the prompt.
type RegionalContext interface {
	Render() string
}
