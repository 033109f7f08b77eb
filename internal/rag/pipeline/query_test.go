package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"

	"FlousWise/internal/faults"
	"FlousWise/internal/models"
	"FlousWise/internal/rag/schema"
	"FlousWise/pkg/logger"
)

type fakeEmbedder struct {
	vec []float32
	err error
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.vec, nil
}

func (f *fakeEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	vecs := make([][]float32, len(texts))
	for i := range texts {
		vecs[i] = f.vec
	}
	return vecs, nil
}

type fakeStore struct {
	results []schema.ScoredPassage
	err     error
}

func (f *fakeStore) Rebuild(ctx context.Context, passages []*schema.Passage) error { return nil }

func (f *fakeStore) Search(ctx context.Context, vector []float32, topK int) ([]schema.ScoredPassage, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.results, nil
}

func (f *fakeStore) VerifyDimension(ctx context.Context, dim int) error { return nil }

type fakeProfiles struct {
	profile *models.UserProfile
	err     error
}

func (f *fakeProfiles) Fetch(ctx context.Context, userID, token string) (*models.UserProfile, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.profile, nil
}

func newTestPipeline(embedder *fakeEmbedder, store *fakeStore, profiles *fakeProfiles, gen *fakeGenerator) *QueryPipeline {
	log := logger.New("test", "", "")
	qa := NewQAPipeline(gen, fakeRegional{}, 0.7, 1024, log)
	return NewQueryPipeline(embedder, store, profiles, qa, 5, log)
}

func TestQuery_AllSourcesHealthy(t *testing.T) {
	gen := &fakeGenerator{answer: "advice"}
	p := newTestPipeline(
		&fakeEmbedder{vec: []float32{1, 0}},
		&fakeStore{results: testPassages()},
		&fakeProfiles{profile: testProfile()},
		gen,
	)

	result, err := p.Query(context.Background(), "user-1", "token", "How do I save?")
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if result.Status != StatusOK || result.Degraded() {
		t.Errorf("expected StatusOK, got %v (degradations %v)", result.Status, result.Degradations)
	}
	if result.Answer != "advice" {
		t.Errorf("answer = %q", result.Answer)
	}
	if len(result.Passages) != 2 {
		t.Errorf("expected 2 passages in result, got %d", len(result.Passages))
	}
	if result.Profile == nil || result.Profile.UserID != "user-1" {
		t.Errorf("profile not carried in result: %+v", result.Profile)
	}
}

func TestQuery_RetrievalFailureDegrades(t *testing.T) {
	gen := &fakeGenerator{answer: "general advice"}
	p := newTestPipeline(
		&fakeEmbedder{vec: []float32{1, 0}},
		&fakeStore{err: errors.New("index unavailable")},
		&fakeProfiles{profile: testProfile()},
		gen,
	)

	result, err := p.Query(context.Background(), "user-1", "token", "q")
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if !result.Degraded() {
		t.Fatal("expected degraded result")
	}
	if len(result.Degradations) != 1 || result.Degradations[0] != DegradedRetrieval {
		t.Errorf("degradations = %v, want [%s]", result.Degradations, DegradedRetrieval)
	}
	// The prompt must tell the model the excerpt section is intentionally empty.
	if !strings.Contains(gen.lastReq.Prompt, noExcerptsMarker) {
		t.Error("prompt missing empty-retrieval marker after degraded retrieval")
	}
}

func TestQuery_ProfileFetchFailureDegrades(t *testing.T) {
	gen := &fakeGenerator{answer: "general advice"}
	p := newTestPipeline(
		&fakeEmbedder{vec: []float32{1, 0}},
		&fakeStore{results: testPassages()},
		&fakeProfiles{err: &faults.ProfileFetchError{UserID: "user-1", Err: errors.New("timeout")}},
		gen,
	)

	result, err := p.Query(context.Background(), "user-1", "token", "q")
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if !result.Degraded() {
		t.Fatal("expected degraded result")
	}
	if len(result.Degradations) != 1 || result.Degradations[0] != DegradedProfile {
		t.Errorf("degradations = %v, want [%s]", result.Degradations, DegradedProfile)
	}
	if result.Profile == nil || !result.Profile.Unavailable {
		t.Error("expected placeholder profile on fetch failure")
	}
	if !strings.Contains(gen.lastReq.Prompt, "(Profile not available") {
		t.Error("prompt missing unavailable-profile marker after degraded fetch")
	}
}

func TestQuery_BothSourcesDownStillAnswers(t *testing.T) {
	gen := &fakeGenerator{answer: "very general advice"}
	p := newTestPipeline(
		&fakeEmbedder{vec: []float32{1, 0}},
		&fakeStore{err: errors.New("down")},
		&fakeProfiles{err: &faults.ProfileFetchError{UserID: "user-1", Err: errors.New("down")}},
		gen,
	)

	result, err := p.Query(context.Background(), "user-1", "token", "q")
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if len(result.Degradations) != 2 {
		t.Errorf("degradations = %v, want both reasons", result.Degradations)
	}
	if result.Answer != "very general advice" {
		t.Errorf("answer = %q", result.Answer)
	}
}

func TestQuery_ProfileNotFoundAborts(t *testing.T) {
	gen := &fakeGenerator{answer: "should not be called"}
	p := newTestPipeline(
		&fakeEmbedder{vec: []float32{1, 0}},
		&fakeStore{results: testPassages()},
		&fakeProfiles{err: &faults.ProfileNotFound{UserID: "user-1"}},
		gen,
	)

	_, err := p.Query(context.Background(), "user-1", "token", "q")
	var notFound *faults.ProfileNotFound
	if !errors.As(err, &notFound) {
		t.Fatalf("expected ProfileNotFound, got %v", err)
	}
	if gen.lastReq != nil {
		t.Error("generation must not run when the profile does not exist")
	}
}

func TestQuery_EmbeddingFailureAborts(t *testing.T) {
	gen := &fakeGenerator{answer: "should not be called"}
	p := newTestPipeline(
		&fakeEmbedder{err: &faults.EmbeddingError{Reason: "输入文本为空"}},
		&fakeStore{results: testPassages()},
		&fakeProfiles{profile: testProfile()},
		gen,
	)

	_, err := p.Query(context.Background(), "user-1", "token", "")
	var embErr *faults.EmbeddingError
	if !errors.As(err, &embErr) {
		t.Fatalf("expected EmbeddingError, got %v", err)
	}
	if gen.lastReq != nil {
		t.Error("generation must not run when embedding fails")
	}
}

func TestQuery_GenerationFailureAborts(t *testing.T) {
	p := newTestPipeline(
		&fakeEmbedder{vec: []float32{1, 0}},
		&fakeStore{results: testPassages()},
		&fakeProfiles{profile: testProfile()},
		&fakeGenerator{err: &faults.GenerationError{Err: errors.New("model down")}},
	)

	_, err := p.Query(context.Background(), "user-1", "token", "q")
	var genErr *faults.GenerationError
	if !errors.As(err, &genErr) {
		t.Fatalf("expected GenerationError, got %v", err)
	}
	if !faults.IsFatal(err) {
		t.Error("generation errors must be fatal")
	}
}
