package domain

import (
	"time"

	"github.com/ivmarkin/veridoc/pkg/api"
)

const (
	DocQueued     = "queued"
	DocProcessing = "processing"
	DocCompleted  = "completed"
	DocFailed     = "failed"
)

type Document struct {
	ID          string
	BatchID     string
	Filename    string
	StoragePath string
	Status      string
	Error       string
	CreatedAt   time.Time
	UpdatedAt   time.Time

	// Detection outcome; nil score until the worker has run the AI check.
	AIScore      *float64
	AIConfidence *float64
	AIProvider   api.Provider
}

// Detection is the raw provider outcome attached to a document.
type Detection struct {
	Score      float64
	Confidence float64
	Provider   api.Provider
}

// Comparison links two documents from the same batch with their semantic
// similarity in [0,1].
type Comparison struct {
	ID         string
	DocA       string
	DocB       string
	Similarity float64
	CreatedAt  time.Time
}
