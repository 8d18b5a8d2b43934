package ports

import (
	"context"

	"github.com/ivmarkin/veridoc/pkg/api"
)

// Submission is one file accepted from the transport layer.
type Submission struct {
	Filename string
	Content  []byte
}

// BatchSubmitter is the inbound contract for batch creation.
type BatchSubmitter interface {
	Submit(ctx context.Context, userID string, files []Submission, opts api.AnalysisOptions) (string, error)
}

// BatchReader is the inbound read model for batches and their results.
type BatchReader interface {
	ListBatches(ctx context.Context, userID string) ([]api.Batch, error)
	GetBatch(ctx context.Context, userID, batchID string) (api.Batch, error)
	GetResults(ctx context.Context, userID, batchID string) ([]api.DocumentResult, error)
	Dashboard(ctx context.Context, userID string) (api.DashboardMetrics, error)
}

// BatchProcessor is the inbound contract for asynchronous batch processing.
type BatchProcessor interface {
	ProcessByID(ctx context.Context, batchID string) error
}

// TextDetector is the inbound contract for the AI-only text check.
type TextDetector interface {
	DetectText(ctx context.Context, text string, provider api.Provider, threshold float64) (api.DetectionResult, error)
}
