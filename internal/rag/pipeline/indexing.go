package pipeline

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"

	"FlousWise/internal/faults"
	"FlousWise/internal/rag/interfaces"
	"FlousWise/internal/rag/loaders"
	"FlousWise/internal/rag/schema"
	"FlousWise/pkg/logger"
)

// embedBatchSize bounds the number of passages per embedding call during
// ingestion.
const embedBatchSize = 64

// IndexingPipeline orchestrates the process of loading, splitting, embedding,
// and indexing the book corpus. The whole corpus is embedded first and the
// vector store is rebuilt in a single atomic replace, so queries never see a
// half-built index.
type IndexingPipeline struct {
	splitter interfaces.Splitter
	embedder interfaces.Embedder
	store    interfaces.VectorStore
	log      *logger.Logger
}

// NewIndexingPipeline creates a new IndexingPipeline.
func NewIndexingPipeline(
	splitter interfaces.Splitter,
	embedder interfaces.Embedder,
	store interfaces.VectorStore,
	log *logger.Logger,
) *IndexingPipeline {
	return &IndexingPipeline{
		splitter: splitter,
		embedder: embedder,
		store:    store,
		log:      log,
	}
}

// Run ingests every supported file under sourceDir and replaces the index
// with the result. Unsupported or unreadable files are skipped with a
// warning; an empty corpus is a configuration error rather than a silent
// empty index.
func (p *IndexingPipeline) Run(ctx context.Context, sourceDir string) (int, error) {
	p.log.WithPayload(map[string]interface{}{"source_dir": sourceDir}).Info("Starting ingestion")

	docs, err := p.loadDirectory(ctx, sourceDir)
	if err != nil {
		return 0, err
	}
	if len(docs) == 0 {
		return 0, &faults.ConfigError{Field: "sourceDirectory", Reason: fmt.Sprintf("目录 '%s' 中没有可加载的文件", sourceDir)}
	}
	p.log.WithPayload(map[string]interface{}{"documents": len(docs)}).Info("Loaded source documents")

	passages, err := p.splitter.Split(ctx, docs)
	if err != nil {
		return 0, err
	}
	if len(passages) == 0 {
		return 0, &faults.ConfigError{Field: "sourceDirectory", Reason: "所有文档分块后为空"}
	}
	p.log.WithPayload(map[string]interface{}{"passages": len(passages)}).Info("Split documents into passages")

	if err := p.embedAll(ctx, passages); err != nil {
		return 0, err
	}
	p.log.Info("Embedded all passages")

	if err := p.store.Rebuild(ctx, passages); err != nil {
		return 0, fmt.Errorf("failed to rebuild index: %w", err)
	}

	p.log.WithPayload(map[string]interface{}{"passages": len(passages)}).Info("Ingestion finished, index replaced")
	return len(passages), nil
}

// loadDirectory walks sourceDir and loads every supported file.
func (p *IndexingPipeline) loadDirectory(ctx context.Context, sourceDir string) ([]*schema.Document, error) {
	var docs []*schema.Document

	err := filepath.WalkDir(sourceDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		loader, err := loaders.ForFile(path)
		if err != nil {
			p.log.WithPayload(map[string]interface{}{"path": path, "reason": err.Error()}).
				Warn("Skipping file")
			return nil
		}

		loaded, err := loader.Load(ctx, path)
		if err != nil {
			p.log.WithPayload(map[string]interface{}{"path": path, "reason": err.Error()}).
				Warn("Failed to load file, skipping")
			return nil
		}

		docs = append(docs, loaded...)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk source directory '%s': %w", sourceDir, err)
	}

	return docs, nil
}

// embedAll fills in the Embedding of every passage, batch by batch.
func (p *IndexingPipeline) embedAll(ctx context.Context, passages []*schema.Passage) error {
	for start := 0; start < len(passages); start += embedBatchSize {
		end := start + embedBatchSize
		if end > len(passages) {
			end = len(passages)
		}
		batch := passages[start:end]

		texts := make([]string, len(batch))
		for i, passage := range batch {
			texts[i] = passage.Text
		}

		vectors, err := p.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return fmt.Errorf("failed to embed passages %d-%d: %w", start, end-1, err)
		}
		for i, vector := range vectors {
			batch[i].Embedding = vector
		}
	}
	return nil
}
