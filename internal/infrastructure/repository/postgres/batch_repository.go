package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ivmarkin/veridoc/internal/core/domain"
	"github.com/ivmarkin/veridoc/pkg/api"
)

type BatchRepository struct {
	db *sql.DB
}

func NewBatchRepository(db *sql.DB) *BatchRepository {
	return &BatchRepository{db: db}
}

const batchColumns = `id, user_id, status, analysis_type, total_docs, processed_docs, ai_provider, ai_threshold, created_at`

func (r *BatchRepository) CreateBatch(ctx context.Context, batch *domain.Batch) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO batches (id, user_id, status, analysis_type, total_docs, processed_docs, ai_provider, ai_threshold, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
`,
		batch.ID, batch.UserID, batch.Status, string(batch.AnalysisType), batch.TotalDocs,
		batch.ProcessedDocs, string(batch.AIProvider), batch.AIThreshold, batch.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert batch: %w", err)
	}
	return nil
}

func (r *BatchRepository) GetBatch(ctx context.Context, id string) (*domain.Batch, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+batchColumns+` FROM batches WHERE id = $1`, id)
	return scanBatch(row)
}

func (r *BatchRepository) GetBatchForUser(ctx context.Context, id, userID string) (*domain.Batch, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+batchColumns+` FROM batches WHERE id = $1 AND user_id = $2`, id, userID)
	return scanBatch(row)
}

func (r *BatchRepository) ListBatchesForUser(ctx context.Context, userID string) ([]domain.Batch, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT `+batchColumns+`
FROM batches
WHERE user_id = $1
ORDER BY created_at DESC
`, userID)
	if err != nil {
		return nil, fmt.Errorf("query batches: %w", err)
	}
	defer rows.Close()

	batches := []domain.Batch{}
	for rows.Next() {
		var batch domain.Batch
		var analysisType, provider string
		err := rows.Scan(
			&batch.ID, &batch.UserID, &batch.Status, &analysisType, &batch.TotalDocs,
			&batch.ProcessedDocs, &provider, &batch.AIThreshold, &batch.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan batch: %w", err)
		}
		batch.AnalysisType = api.AnalysisType(analysisType)
		batch.AIProvider = api.Provider(provider)
		batches = append(batches, batch)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate batches: %w", err)
	}
	return batches, nil
}

func (r *BatchRepository) UpdateBatchStatus(ctx context.Context, id, status string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE batches SET status = $2 WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("update batch status: %w", err)
	}
	return nil
}

func (r *BatchRepository) FinishBatch(ctx context.Context, id, status string, processedDocs int) error {
	_, err := r.db.ExecContext(ctx, `
UPDATE batches SET status = $2, processed_docs = $3 WHERE id = $1
`, id, status, processedDocs)
	if err != nil {
		return fmt.Errorf("finish batch: %w", err)
	}
	return nil
}

func scanBatch(row *sql.Row) (*domain.Batch, error) {
	var batch domain.Batch
	var analysisType, provider string
	err := row.Scan(
		&batch.ID, &batch.UserID, &batch.Status, &analysisType, &batch.TotalDocs,
		&batch.ProcessedDocs, &provider, &batch.AIThreshold, &batch.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrBatchNotFound, "get batch", err)
		}
		return nil, fmt.Errorf("scan batch: %w", err)
	}
	batch.AnalysisType = api.AnalysisType(analysisType)
	batch.AIProvider = api.Provider(provider)
	return &batch, nil
}
