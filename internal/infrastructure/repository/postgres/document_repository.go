package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ivmarkin/veridoc/internal/core/domain"
	"github.com/ivmarkin/veridoc/pkg/api"
)

type DocumentRepository struct {
	db *sql.DB
}

func NewDocumentRepository(db *sql.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

func (r *DocumentRepository) CreateDocument(ctx context.Context, doc *domain.Document) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO documents (id, batch_id, filename, storage_path, status, error_message, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
`,
		doc.ID, doc.BatchID, doc.Filename, doc.StoragePath, doc.Status, doc.Error, doc.CreatedAt, doc.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert document: %w", err)
	}
	return nil
}

// ListByBatch preserves insertion order so results render in the order the
// files were submitted.
func (r *DocumentRepository) ListByBatch(ctx context.Context, batchID string) ([]domain.Document, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, batch_id, filename, storage_path, status, COALESCE(error_message, ''), ai_score, ai_confidence, COALESCE(ai_provider, ''), created_at, updated_at
FROM documents
WHERE batch_id = $1
ORDER BY created_at, id
`, batchID)
	if err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}
	defer rows.Close()

	docs := []domain.Document{}
	for rows.Next() {
		var doc domain.Document
		var provider string
		err := rows.Scan(
			&doc.ID, &doc.BatchID, &doc.Filename, &doc.StoragePath, &doc.Status, &doc.Error,
			&doc.AIScore, &doc.AIConfidence, &provider, &doc.CreatedAt, &doc.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		doc.AIProvider = api.Provider(provider)
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}
	return docs, nil
}

func (r *DocumentRepository) UpdateDocumentStatus(ctx context.Context, id, status, errMessage string) error {
	_, err := r.db.ExecContext(ctx, `
UPDATE documents SET status = $2, error_message = $3, updated_at = $4 WHERE id = $1
`, id, status, errMessage, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update document status: %w", err)
	}
	return nil
}

func (r *DocumentRepository) SaveDetection(ctx context.Context, id string, detection domain.Detection) error {
	_, err := r.db.ExecContext(ctx, `
UPDATE documents SET ai_score = $2, ai_confidence = $3, ai_provider = $4, updated_at = $5 WHERE id = $1
`, id, detection.Score, detection.Confidence, string(detection.Provider), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("save detection: %w", err)
	}
	return nil
}

func (r *DocumentRepository) SaveComparison(ctx context.Context, comparison *domain.Comparison) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO comparisons (id, doc_a, doc_b, similarity, created_at)
VALUES ($1,$2,$3,$4,$5)
`, comparison.ID, comparison.DocA, comparison.DocB, comparison.Similarity, comparison.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert comparison: %w", err)
	}
	return nil
}

// ListMatches joins the matched document's filename; ordered most similar
// first.
func (r *DocumentRepository) ListMatches(ctx context.Context, documentID string) ([]api.PlagiarismMatch, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT d.filename, c.similarity
FROM comparisons c
JOIN documents d ON d.id = c.doc_b
WHERE c.doc_a = $1
ORDER BY c.similarity DESC
`, documentID)
	if err != nil {
		return nil, fmt.Errorf("query comparisons: %w", err)
	}
	defer rows.Close()

	matches := []api.PlagiarismMatch{}
	for rows.Next() {
		var match api.PlagiarismMatch
		if err := rows.Scan(&match.SimilarDocument, &match.Similarity); err != nil {
			return nil, fmt.Errorf("scan comparison: %w", err)
		}
		matches = append(matches, match)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate comparisons: %w", err)
	}
	return matches, nil
}

func (r *DocumentRepository) CountDocumentsForUser(ctx context.Context, userID string) (int, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT COUNT(*)
FROM documents d
JOIN batches b ON b.id = d.batch_id
WHERE b.user_id = $1
`, userID)

	var count int
	if err := row.Scan(&count); err != nil {
		return 0, fmt.Errorf("count documents: %w", err)
	}
	return count, nil
}
