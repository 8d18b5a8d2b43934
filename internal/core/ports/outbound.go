package ports

import (
	"context"
	"io"

	"github.com/ivmarkin/veridoc/internal/core/domain"
	"github.com/ivmarkin/veridoc/pkg/api"
)

// BatchRepository persists batch state.
type BatchRepository interface {
	CreateBatch(ctx context.Context, batch *domain.Batch) error
	GetBatch(ctx context.Context, id string) (*domain.Batch, error)
	GetBatchForUser(ctx context.Context, id, userID string) (*domain.Batch, error)
	ListBatchesForUser(ctx context.Context, userID string) ([]domain.Batch, error)
	UpdateBatchStatus(ctx context.Context, id, status string) error
	FinishBatch(ctx context.Context, id, status string, processedDocs int) error
}

// DocumentRepository persists per-document state and analysis outcomes.
type DocumentRepository interface {
	CreateDocument(ctx context.Context, doc *domain.Document) error
	ListByBatch(ctx context.Context, batchID string) ([]domain.Document, error)
	UpdateDocumentStatus(ctx context.Context, id, status, errMessage string) error
	SaveDetection(ctx context.Context, id string, detection domain.Detection) error
	SaveComparison(ctx context.Context, comparison *domain.Comparison) error
	ListMatches(ctx context.Context, documentID string) ([]api.PlagiarismMatch, error)
	CountDocumentsForUser(ctx context.Context, userID string) (int, error)
}

// UserRepository persists accounts.
type UserRepository interface {
	CreateUser(ctx context.Context, user *domain.User) error
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
}

// ObjectStorage stores the raw submitted files.
type ObjectStorage interface {
	Save(ctx context.Context, key string, data io.Reader) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// MessageQueue publishes/consumes batch processing events.
type MessageQueue interface {
	PublishBatchQueued(ctx context.Context, batchID string) error
	SubscribeBatchQueued(ctx context.Context, handler func(context.Context, string) error) error
}

// TextExtractor extracts plain text from a stored document.
type TextExtractor interface {
	Extract(ctx context.Context, doc *domain.Document) (string, error)
}

// AIDetector scores text for AI authorship via the selected provider.
type AIDetector interface {
	Detect(ctx context.Context, text string, provider api.Provider) (domain.Detection, error)
}

// SimilarityAnalyzer computes the pairwise semantic similarity matrix for a
// batch's extracted texts. The matrix is symmetric with a unit diagonal.
type SimilarityAnalyzer interface {
	PairwiseSimilarity(ctx context.Context, texts []string) ([][]float64, error)
}
