package usecase

import (
	"context"
	"fmt"

	"github.com/ivmarkin/veridoc/internal/core/ports"
	"github.com/ivmarkin/veridoc/pkg/api"
)

// BatchQueryUseCase serves the read side: batch listing, per-batch snapshots,
// per-document results and the dashboard counters. Every call reflects stored
// state at call time; no caching.
type BatchQueryUseCase struct {
	batches   ports.BatchRepository
	documents ports.DocumentRepository
}

func NewBatchQueryUseCase(batches ports.BatchRepository, documents ports.DocumentRepository) *BatchQueryUseCase {
	return &BatchQueryUseCase{batches: batches, documents: documents}
}

func (uc *BatchQueryUseCase) ListBatches(ctx context.Context, userID string) ([]api.Batch, error) {
	batches, err := uc.batches.ListBatchesForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list batches: %w", err)
	}
	out := make([]api.Batch, 0, len(batches))
	for i := range batches {
		out = append(out, batches[i].Wire())
	}
	return out, nil
}

func (uc *BatchQueryUseCase) GetBatch(ctx context.Context, userID, batchID string) (api.Batch, error) {
	batch, err := uc.batches.GetBatchForUser(ctx, batchID, userID)
	if err != nil {
		return api.Batch{}, fmt.Errorf("get batch: %w", err)
	}
	return batch.Wire(), nil
}

// GetResults returns every document of the batch with its detection outcome
// and plagiarism matches. A pending document shows up with a nil score, not
// as an error.
func (uc *BatchQueryUseCase) GetResults(ctx context.Context, userID, batchID string) ([]api.DocumentResult, error) {
	batch, err := uc.batches.GetBatchForUser(ctx, batchID, userID)
	if err != nil {
		return nil, fmt.Errorf("get batch: %w", err)
	}

	docs, err := uc.documents.ListByBatch(ctx, batch.ID)
	if err != nil {
		return nil, fmt.Errorf("list batch documents: %w", err)
	}

	results := make([]api.DocumentResult, 0, len(docs))
	for i := range docs {
		doc := &docs[i]
		matches, err := uc.documents.ListMatches(ctx, doc.ID)
		if err != nil {
			return nil, fmt.Errorf("list matches for %s: %w", doc.ID, err)
		}
		if matches == nil {
			matches = []api.PlagiarismMatch{}
		}

		result := api.DocumentResult{
			DocumentID:         doc.ID,
			Filename:           doc.Filename,
			Status:             doc.Status,
			PlagiarismAnalysis: matches,
		}
		if doc.AIScore != nil {
			cls := api.Classify(doc.AIScore, batch.AIThreshold)
			result.AIAnalysis = &api.AIAnalysis{
				Score:      doc.AIScore,
				IsAI:       cls.IsAI,
				Confidence: doc.AIConfidence,
				Provider:   doc.AIProvider,
			}
		}
		results = append(results, result)
	}
	return results, nil
}

func (uc *BatchQueryUseCase) Dashboard(ctx context.Context, userID string) (api.DashboardMetrics, error) {
	batches, err := uc.batches.ListBatchesForUser(ctx, userID)
	if err != nil {
		return api.DashboardMetrics{}, fmt.Errorf("count batches: %w", err)
	}
	numDocs, err := uc.documents.CountDocumentsForUser(ctx, userID)
	if err != nil {
		return api.DashboardMetrics{}, fmt.Errorf("count documents: %w", err)
	}
	return api.DashboardMetrics{NumBatches: len(batches), NumDocuments: numDocs}, nil
}
