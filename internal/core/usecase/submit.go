package usecase

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ivmarkin/veridoc/internal/core/domain"
	"github.com/ivmarkin/veridoc/internal/core/ports"
	"github.com/ivmarkin/veridoc/pkg/api"
)

// SubmitBatchUseCase accepts a validated set of files, persists the batch and
// its documents, stores the raw contents, and enqueues the batch for the
// worker. A batch id is only returned after every step succeeded.
type SubmitBatchUseCase struct {
	batches   ports.BatchRepository
	documents ports.DocumentRepository
	storage   ports.ObjectStorage
	queue     ports.MessageQueue
}

func NewSubmitBatchUseCase(
	batches ports.BatchRepository,
	documents ports.DocumentRepository,
	storage ports.ObjectStorage,
	queue ports.MessageQueue,
) *SubmitBatchUseCase {
	return &SubmitBatchUseCase{
		batches:   batches,
		documents: documents,
		storage:   storage,
		queue:     queue,
	}
}

func (uc *SubmitBatchUseCase) Submit(ctx context.Context, userID string, files []ports.Submission, opts api.AnalysisOptions) (string, error) {
	if len(files) == 0 {
		return "", domain.WrapError(domain.ErrInvalidInput, "submit batch", errors.New("no files to analyze"))
	}
	if err := opts.Validate(); err != nil {
		return "", domain.WrapError(domain.ErrInvalidInput, "submit batch", err)
	}

	batchID := uuid.NewString()
	now := time.Now().UTC()
	batch := &domain.Batch{
		ID:           batchID,
		UserID:       userID,
		Status:       domain.BatchQueued,
		AnalysisType: opts.AnalysisType(),
		TotalDocs:    len(files),
		AIProvider:   opts.Provider,
		AIThreshold:  opts.AIThreshold,
		CreatedAt:    now,
	}
	if err := uc.batches.CreateBatch(ctx, batch); err != nil {
		return "", fmt.Errorf("create batch: %w", err)
	}

	for _, file := range files {
		storageKey := fmt.Sprintf("%s/%s", batchID, sanitizeFilename(file.Filename))
		if err := uc.storage.Save(ctx, storageKey, bytes.NewReader(file.Content)); err != nil {
			return "", fmt.Errorf("save %s to object storage: %w", file.Filename, err)
		}

		doc := &domain.Document{
			ID:          uuid.NewString(),
			BatchID:     batchID,
			Filename:    file.Filename,
			StoragePath: storageKey,
			Status:      domain.DocQueued,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := uc.documents.CreateDocument(ctx, doc); err != nil {
			return "", fmt.Errorf("create document %s: %w", file.Filename, err)
		}
	}

	if err := uc.queue.PublishBatchQueued(ctx, batchID); err != nil {
		return "", fmt.Errorf("publish batch event: %w", err)
	}
	return batchID, nil
}

func sanitizeFilename(name string) string {
	base := filepath.Base(name)
	base = strings.ReplaceAll(base, " ", "_")
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r
		case r >= 'A' && r <= 'Z':
			return r
		case r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, base)
	if base == "" {
		return "document.bin"
	}
	return base
}
