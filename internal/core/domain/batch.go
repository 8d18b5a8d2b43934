package domain

import (
	"time"

	"github.com/ivmarkin/veridoc/pkg/api"
)

// Batch lifecycle as driven by the worker. Readers must treat status as an
// open set; new states may appear without a schema change.
const (
	BatchQueued     = "queued"
	BatchProcessing = "processing"
	BatchCompleted  = "completed"
)

type Batch struct {
	ID            string
	UserID        string
	Status        string
	AnalysisType  api.AnalysisType
	TotalDocs     int
	ProcessedDocs int
	AIProvider    api.Provider
	AIThreshold   float64
	CreatedAt     time.Time
}

// Wire converts the persisted row into the API contract shape.
func (b *Batch) Wire() api.Batch {
	return api.Batch{
		ID:            b.ID,
		Status:        b.Status,
		AnalysisType:  b.AnalysisType,
		TotalDocs:     b.TotalDocs,
		ProcessedDocs: b.ProcessedDocs,
		AIProvider:    b.AIProvider,
		AIThreshold:   b.AIThreshold,
		CreatedAt:     b.CreatedAt,
	}
}
