package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"FlousWise/internal/faults"
	"FlousWise/internal/rag/splitters"
	"FlousWise/internal/rag/vectorstore"
	"FlousWise/pkg/logger"
)

func writeBook(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
}

func newIngestionFixture(t *testing.T, embedder *fakeEmbedder) (*IndexingPipeline, *vectorstore.MemoryStore) {
	t.Helper()
	splitter, err := splitters.NewWordSplitter(8, 2)
	if err != nil {
		t.Fatalf("NewWordSplitter() error = %v", err)
	}
	store := vectorstore.NewMemoryStore()
	return NewIndexingPipeline(splitter, embedder, store, logger.New("test", "", "")), store
}

func TestIndexingRun_BuildsSearchableIndex(t *testing.T) {
	dir := t.TempDir()
	writeBook(t, dir, "rich_dad_poor_dad.txt",
		"The rich buy assets. The poor only have expenses. The middle class buys liabilities they think are assets.")
	writeBook(t, dir, "atomic_habits.txt",
		"Small habits compound over time. You do not rise to the level of your goals, you fall to your systems.")

	p, store := newIngestionFixture(t, &fakeEmbedder{vec: []float32{1, 0}})

	count, err := p.Run(context.Background(), dir)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if count == 0 {
		t.Fatal("expected passages to be indexed")
	}
	if store.Len() != count {
		t.Errorf("store has %d passages, Run reported %d", store.Len(), count)
	}

	results, err := store.Search(context.Background(), []float32{1, 0}, 3)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(results) == 0 {
		t.Fatal("index not searchable after ingestion")
	}
	if results[0].Embedding == nil {
		t.Error("indexed passages missing embeddings")
	}
	if results[0].Source == "" {
		t.Error("indexed passages missing source attribution")
	}
}

func TestIndexingRun_EmptyDirectoryIsConfigError(t *testing.T) {
	p, _ := newIngestionFixture(t, &fakeEmbedder{vec: []float32{1, 0}})

	_, err := p.Run(context.Background(), t.TempDir())
	var cfgErr *faults.ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigError for empty corpus, got %v", err)
	}
}

func TestIndexingRun_SkipsUnsupportedFiles(t *testing.T) {
	dir := t.TempDir()
	writeBook(t, dir, "book.txt", "Save ten percent of everything you earn and invest it wisely.")
	if err := os.WriteFile(filepath.Join(dir, "image.png"),
		[]byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}, 0o644); err != nil {
		t.Fatalf("writing binary file: %v", err)
	}

	p, store := newIngestionFixture(t, &fakeEmbedder{vec: []float32{1, 0}})

	count, err := p.Run(context.Background(), dir)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if count == 0 || store.Len() == 0 {
		t.Error("supported files should still be ingested alongside skipped ones")
	}
}

func TestIndexingRun_EmbeddingFailureAborts(t *testing.T) {
	dir := t.TempDir()
	writeBook(t, dir, "book.txt", "Wealth is what you do not see. Spending money to show people how much money you have.")

	p, store := newIngestionFixture(t, &fakeEmbedder{err: &faults.EmbeddingError{Reason: "提供商调用失败"}})

	_, err := p.Run(context.Background(), dir)
	if err == nil {
		t.Fatal("expected error when embedding fails")
	}
	if store.Len() != 0 {
		t.Error("index must not be replaced when ingestion fails")
	}
}
