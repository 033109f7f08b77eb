package pipeline

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"FlousWise/internal/faults"
	"FlousWise/internal/models"
	"FlousWise/internal/rag/interfaces"
	"FlousWise/internal/rag/schema"
	"FlousWise/pkg/logger"
)

// Degradation reasons reported on a Result. The answer was still produced,
// but one of its context sources was unavailable.
const (
	DegradedRetrieval = "retrieval_failed"
	DegradedProfile   = "profile_unavailable"
)

// Status tags the outcome of a completed query.
type Status int

const (
	// StatusOK means every pipeline step succeeded.
	StatusOK Status = iota
	// StatusDegraded means the answer was produced with partial context;
	// Degradations lists what was missing.
	StatusDegraded
)

// Result is the outcome of a query that produced an answer.
type Result struct {
	Status       Status
	Answer       string
	Degradations []string
	Passages     []schema.ScoredPassage
	Profile      *models.UserProfile
}

// Degraded reports whether the result was produced with partial context.
func (r *Result) Degraded() bool {
	return r.Status == StatusDegraded
}

// QueryPipeline orchestrates a single question through the full pipeline:
// question embedding, retrieval and profile fetch in parallel, prompt
// assembly, generation.
//
// Failure policy: question embedding and generation failures abort the query;
// retrieval and profile-fetch failures degrade it (the answer is still
// produced, with the missing section stated in the prompt). A missing profile
// (faults.ProfileNotFound) aborts: the user has to finish onboarding first,
// degrading would hide that.
type QueryPipeline struct {
	embedder interfaces.Embedder
	store    interfaces.VectorStore
	profiles interfaces.ProfileSource
	qa       *QAPipeline
	topK     int
	log      *logger.Logger
}

// NewQueryPipeline creates a new QueryPipeline.
func NewQueryPipeline(
	embedder interfaces.Embedder,
	store interfaces.VectorStore,
	profiles interfaces.ProfileSource,
	qa *QAPipeline,
	topK int,
	log *logger.Logger,
) *QueryPipeline {
	return &QueryPipeline{
		embedder: embedder,
		store:    store,
		profiles: profiles,
		qa:       qa,
		topK:     topK,
		log:      log,
	}
}

// Query runs the pipeline for one question and returns the tagged result.
func (p *QueryPipeline) Query(ctx context.Context, userID, token, question string) (*Result, error) {
	log := p.log.WithPayload(map[string]interface{}{"question_length": len(question)})
	log.Info("Starting query pipeline")

	// 1. Embed the question. A failure here is fatal: without the vector
	// there is nothing to retrieve against.
	vector, err := p.embedder.Embed(ctx, question)
	if err != nil {
		log.WithPayload(map[string]interface{}{"error": err.Error()}).Error("Question embedding failed")
		return nil, err
	}

	// 2. Retrieval and profile fetch are independent; run them in parallel.
	// Both handle their own degradation, so the group only fails on
	// ProfileNotFound or context cancellation.
	var (
		passages          []schema.ScoredPassage
		profile           *models.UserProfile
		retrievalDegraded bool
		profileDegraded   bool
	)

	eg, gCtx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		retrieved, err := p.store.Search(gCtx, vector, p.topK)
		if err != nil {
			if gCtx.Err() != nil {
				return gCtx.Err()
			}
			var retErr *faults.RetrievalError
			if !errors.As(err, &retErr) {
				retErr = &faults.RetrievalError{Err: err}
			}
			log.WithPayload(map[string]interface{}{"error": retErr.Error()}).
				Warn("Retrieval failed, continuing without book excerpts")
			passages = []schema.ScoredPassage{}
			retrievalDegraded = true
			return nil
		}
		passages = retrieved
		return nil
	})

	eg.Go(func() error {
		fetched, err := p.profiles.Fetch(gCtx, userID, token)
		if err != nil {
			var notFound *faults.ProfileNotFound
			if errors.As(err, &notFound) {
				return err
			}
			if gCtx.Err() != nil {
				return gCtx.Err()
			}
			log.WithPayload(map[string]interface{}{"error": err.Error()}).
				Warn("Profile fetch failed, continuing with placeholder profile")
			profile = models.PlaceholderProfile(userID)
			profileDegraded = true
			return nil
		}
		profile = fetched
		return nil
	})

	if err := eg.Wait(); err != nil {
		return nil, err
	}

	var degradations []string
	if retrievalDegraded {
		degradations = append(degradations, DegradedRetrieval)
	}
	if profileDegraded {
		degradations = append(degradations, DegradedProfile)
	}

	// 3. Assemble the prompt and generate. Generation failures are fatal.
	answer, err := p.qa.Run(ctx, question, profile, passages)
	if err != nil {
		log.WithPayload(map[string]interface{}{"error": err.Error()}).Error("Generation failed")
		return nil, err
	}

	result := &Result{
		Status:       StatusOK,
		Answer:       answer,
		Degradations: degradations,
		Passages:     passages,
		Profile:      profile,
	}
	if len(degradations) > 0 {
		result.Status = StatusDegraded
		log.WithPayload(map[string]interface{}{"degradations": degradations}).
			Warn("Query completed degraded")
	} else {
		log.Info("Query completed")
	}
	return result, nil
}
