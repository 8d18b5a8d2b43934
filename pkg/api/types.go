package api

import (
	"math"
	"time"
)

// Batch is a user-submitted group of documents processed together under one
// set of analysis options. Status is an open string set owned by the backend;
// only StatusCompleted gets special presentation handling.
type Batch struct {
	ID            string       `json:"id"`
	Status        string       `json:"status"`
	AnalysisType  AnalysisType `json:"analysis_type"`
	TotalDocs     int          `json:"total_docs"`
	ProcessedDocs int          `json:"processed_docs"`
	AIProvider    Provider     `json:"ai_provider"`
	AIThreshold   float64      `json:"ai_threshold"`
	CreatedAt     time.Time    `json:"created_at"`
}

const StatusCompleted = "completed"

// ProgressPercent reports batch completion in whole percent, 0 for an empty
// batch.
func (b Batch) ProgressPercent() int {
	if b.TotalDocs == 0 {
		return 0
	}
	return int(math.Round(float64(b.ProcessedDocs) / float64(b.TotalDocs) * 100))
}

// AIAnalysis carries the per-document detection outcome. Score is nil while
// the document is pending or when AI analysis was not requested.
type AIAnalysis struct {
	Score      *float64 `json:"score"`
	IsAI       *bool    `json:"is_ai"`
	Confidence *float64 `json:"confidence"`
	Provider   Provider `json:"provider"`
}

// PlagiarismMatch pairs a document with another document from the same batch.
type PlagiarismMatch struct {
	SimilarDocument string  `json:"similar_document"`
	Similarity      float64 `json:"similarity"`
}

// DocumentResult is one document's analysis snapshot within a batch, ordered
// as returned by the backend.
type DocumentResult struct {
	DocumentID         string            `json:"document_id"`
	Filename           string            `json:"filename"`
	Status             string            `json:"status"`
	AIAnalysis         *AIAnalysis       `json:"ai_analysis"`
	PlagiarismAnalysis []PlagiarismMatch `json:"plagiarism_analysis"`
}

// Classify applies the requester's threshold to the document's AI score.
func (d DocumentResult) Classify(threshold float64) Classification {
	if d.AIAnalysis == nil {
		return Classify(nil, threshold)
	}
	return Classify(d.AIAnalysis.Score, threshold)
}

// AnalyzeResponse is the success body of POST /api/v1/analyze.
type AnalyzeResponse struct {
	BatchID string `json:"batch_id"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

// DetectionRequest is the body of POST /api/v1/ai-detection.
type DetectionRequest struct {
	Text      string   `json:"text"`
	Provider  Provider `json:"provider"`
	Threshold float64  `json:"threshold"`
}

// DetectionResult is the direct text-check outcome.
type DetectionResult struct {
	Score      float64  `json:"score"`
	Confidence float64  `json:"confidence"`
	Provider   Provider `json:"provider"`
	IsAI       bool     `json:"is_ai"`
	Label      string   `json:"label"`
}

// DashboardMetrics summarizes the caller's usage.
type DashboardMetrics struct {
	NumBatches   int `json:"num_batches"`
	NumDocuments int `json:"num_documents"`
}

// BatchList is the envelope of GET /api/v1/batches.
type BatchList struct {
	Data []Batch `json:"data"`
}

// BatchResults is the envelope of GET /api/v1/batches/{id}/results.
type BatchResults struct {
	Data []DocumentResult `json:"data"`
}

// BatchDetail is the envelope of GET /api/v1/batches/{id}.
type BatchDetail struct {
	Data Batch `json:"data"`
}

// Dashboard is the envelope of GET /api/v1/users/me/dashboard.
type Dashboard struct {
	Data DashboardMetrics `json:"data"`
}

// ErrorBody is the non-2xx response shape. Detail may be empty.
type ErrorBody struct {
	Detail string `json:"detail"`
}

// Credentials is the body of the auth endpoints.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// TokenResponse is the success body of POST /api/v1/auth/login.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}
