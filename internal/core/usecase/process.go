package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/ivmarkin/veridoc/internal/core/domain"
	"github.com/ivmarkin/veridoc/internal/core/ports"
	"github.com/ivmarkin/veridoc/pkg/api"
)

// ProcessBatchUseCase runs the analyses a batch was submitted with. One
// failing document marks that document failed and the batch carries on; a
// failing similarity pass marks the remaining documents failed instead of
// stranding the batch. Only documents that completed count towards
// processed_docs.
type ProcessBatchUseCase struct {
	batches       ports.BatchRepository
	documents     ports.DocumentRepository
	extractor     ports.TextExtractor
	detector      ports.AIDetector
	similarity    ports.SimilarityAnalyzer
	minSimilarity float64
}

func NewProcessBatchUseCase(
	batches ports.BatchRepository,
	documents ports.DocumentRepository,
	extractor ports.TextExtractor,
	detector ports.AIDetector,
	similarity ports.SimilarityAnalyzer,
	minSimilarity float64,
) *ProcessBatchUseCase {
	return &ProcessBatchUseCase{
		batches:       batches,
		documents:     documents,
		extractor:     extractor,
		detector:      detector,
		similarity:    similarity,
		minSimilarity: minSimilarity,
	}
}

func (uc *ProcessBatchUseCase) ProcessByID(ctx context.Context, batchID string) error {
	batch, err := uc.batches.GetBatch(ctx, batchID)
	if err != nil {
		return fmt.Errorf("fetch batch by id: %w", err)
	}
	if err := uc.batches.UpdateBatchStatus(ctx, batchID, domain.BatchProcessing); err != nil {
		return fmt.Errorf("set batch status=processing: %w", err)
	}

	docs, err := uc.documents.ListByBatch(ctx, batchID)
	if err != nil {
		return fmt.Errorf("list batch documents: %w", err)
	}

	opts := api.OptionsFor(batch.AnalysisType, batch.AIProvider, batch.AIThreshold)
	texts := make([]string, len(docs))
	failed := make([]bool, len(docs))

	for i := range docs {
		doc := &docs[i]
		if err := uc.documents.UpdateDocumentStatus(ctx, doc.ID, domain.DocProcessing, ""); err != nil {
			return fmt.Errorf("set document status=processing: %w", err)
		}

		text, err := uc.analyzeDocument(ctx, doc, opts)
		if err != nil {
			slog.Error("document_processing_failed", "batch_id", batchID, "document_id", doc.ID, "error", err)
			failed[i] = true
			if statusErr := uc.documents.UpdateDocumentStatus(ctx, doc.ID, domain.DocFailed, err.Error()); statusErr != nil {
				return fmt.Errorf("%w; mark failed status: %w", err, statusErr)
			}
			continue
		}
		texts[i] = text
	}

	if opts.CheckPlagiarism {
		if err := uc.compareWithinBatch(ctx, docs, texts, failed); err != nil {
			slog.Error("similarity_pass_failed", "batch_id", batchID, "error", err)
			for i := range docs {
				if failed[i] {
					continue
				}
				failed[i] = true
				if statusErr := uc.documents.UpdateDocumentStatus(ctx, docs[i].ID, domain.DocFailed, err.Error()); statusErr != nil {
					return fmt.Errorf("%w; mark failed status: %w", err, statusErr)
				}
			}
		}
	}

	processed := 0
	for i := range docs {
		if failed[i] {
			continue
		}
		if err := uc.documents.UpdateDocumentStatus(ctx, docs[i].ID, domain.DocCompleted, ""); err != nil {
			return fmt.Errorf("set document status=completed: %w", err)
		}
		processed++
	}

	if err := uc.batches.FinishBatch(ctx, batchID, domain.BatchCompleted, processed); err != nil {
		return fmt.Errorf("finish batch: %w", err)
	}
	return nil
}

// analyzeDocument extracts a document's text and, when requested, records the
// AI detection outcome. It returns the extracted text so the batch-level
// plagiarism pass can reuse it without a second extraction.
func (uc *ProcessBatchUseCase) analyzeDocument(ctx context.Context, doc *domain.Document, opts api.AnalysisOptions) (string, error) {
	text, err := uc.extractor.Extract(ctx, doc)
	if err != nil {
		return "", fmt.Errorf("extract text: %w", err)
	}
	if text == "" {
		return "", domain.WrapError(domain.ErrInvalidInput, "extract text", errors.New("empty extracted text"))
	}

	if opts.CheckAI {
		detection, err := uc.detector.Detect(ctx, text, opts.Provider)
		if err != nil {
			return "", fmt.Errorf("ai detection: %w", err)
		}
		if err := uc.documents.SaveDetection(ctx, doc.ID, detection); err != nil {
			return "", fmt.Errorf("save detection: %w", err)
		}
	}
	return text, nil
}

// compareWithinBatch records a comparison row per ordered document pair whose
// similarity clears the cut-off, so per-document match listing stays a single
// indexed lookup.
func (uc *ProcessBatchUseCase) compareWithinBatch(ctx context.Context, docs []domain.Document, texts []string, failed []bool) error {
	indexes := make([]int, 0, len(docs))
	scored := make([]string, 0, len(docs))
	for i := range docs {
		if failed[i] || texts[i] == "" {
			continue
		}
		indexes = append(indexes, i)
		scored = append(scored, texts[i])
	}
	if len(scored) < 2 {
		return nil
	}

	matrix, err := uc.similarity.PairwiseSimilarity(ctx, scored)
	if err != nil {
		return fmt.Errorf("pairwise similarity: %w", err)
	}

	now := time.Now().UTC()
	for a := range indexes {
		for b := range indexes {
			if a == b || matrix[a][b] < uc.minSimilarity {
				continue
			}
			comparison := &domain.Comparison{
				ID:         uuid.NewString(),
				DocA:       docs[indexes[a]].ID,
				DocB:       docs[indexes[b]].ID,
				Similarity: matrix[a][b],
				CreatedAt:  now,
			}
			if err := uc.documents.SaveComparison(ctx, comparison); err != nil {
				return fmt.Errorf("save comparison: %w", err)
			}
		}
	}
	return nil
}
