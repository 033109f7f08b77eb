package splitters

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"FlousWise/internal/faults"
	"FlousWise/internal/rag/interfaces"
	"FlousWise/internal/rag/schema"
)

// WordSplitter implements the Splitter interface by sliding a fixed-size
// word window over the text. Successive windows share ChunkOverlap words so
// that sentences straddling a boundary stay retrievable.
type WordSplitter struct {
	ChunkSize    int
	ChunkOverlap int
}

// NewWordSplitter creates a new WordSplitter.
// Requires chunkSize > 0 and 0 <= chunkOverlap < chunkSize; anything else is
// a configuration error.
func NewWordSplitter(chunkSize, chunkOverlap int) (*WordSplitter, error) {
	if chunkSize <= 0 {
		return nil, &faults.ConfigError{Field: "rag.chunkSize", Reason: "必须大于 0"}
	}
	if chunkOverlap < 0 || chunkOverlap >= chunkSize {
		return nil, &faults.ConfigError{Field: "rag.chunkOverlap", Reason: "必须满足 0 <= overlap < chunkSize"}
	}
	return &WordSplitter{ChunkSize: chunkSize, ChunkOverlap: chunkOverlap}, nil
}

// Split splits documents into passages of at most ChunkSize words.
// Whitespace-only documents produce no passages. The final window is emitted
// even when shorter than ChunkSize so no trailing text is lost.
func (s *WordSplitter) Split(ctx context.Context, docs []*schema.Document) ([]*schema.Passage, error) {
	var passages []*schema.Passage

	for _, doc := range docs {
		words := strings.Fields(doc.Text)
		if len(words) == 0 {
			continue
		}

		step := s.ChunkSize - s.ChunkOverlap
		for start := 0; start < len(words); start += step {
			end := start + s.ChunkSize
			if end > len(words) {
				end = len(words)
			}

			passages = append(passages, &schema.Passage{
				ID:     uuid.New().String(),
				Source: doc.Source,
				Text:   strings.Join(words[start:end], " "),
			})

			if end == len(words) {
				break
			}
		}
	}

	return passages, nil
}

// compile-time check to ensure WordSplitter implements the Splitter interface
var _ interfaces.Splitter = (*WordSplitter)(nil)
