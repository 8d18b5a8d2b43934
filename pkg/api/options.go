package api

import (
	"errors"
	"fmt"
)

// Provider selects the backend that scores text for AI authorship.
type Provider string

const (
	ProviderLocal    Provider = "local"
	ProviderOpenAI   Provider = "openai"
	ProviderTogether Provider = "together"
)

// AnalysisType selects which analyses run for a batch.
type AnalysisType string

const (
	AnalysisPlagiarism AnalysisType = "plagiarism"
	AnalysisAI         AnalysisType = "ai"
	AnalysisBoth       AnalysisType = "both"
)

// Threshold bounds accepted from the requester. The backend score itself is
// in [0,1]; the decision boundary is deliberately kept away from the edges.
const (
	MinThreshold = 0.1
	MaxThreshold = 0.9
)

// AnalysisOptions is the serialized options block attached to a submission.
type AnalysisOptions struct {
	Provider        Provider `json:"provider"`
	AIThreshold     float64  `json:"ai_threshold"`
	CheckPlagiarism bool     `json:"check_plagiarism"`
	CheckAI         bool     `json:"check_ai"`
}

// OptionsFor derives the check booleans from an analysis type. Every variant
// enables at least one analysis.
func OptionsFor(analysisType AnalysisType, provider Provider, threshold float64) AnalysisOptions {
	return AnalysisOptions{
		Provider:        provider,
		AIThreshold:     threshold,
		CheckPlagiarism: analysisType == AnalysisPlagiarism || analysisType == AnalysisBoth,
		CheckAI:         analysisType == AnalysisAI || analysisType == AnalysisBoth,
	}
}

// AnalysisType is the inverse of OptionsFor, used when persisting a batch.
func (o AnalysisOptions) AnalysisType() AnalysisType {
	switch {
	case o.CheckPlagiarism && o.CheckAI:
		return AnalysisBoth
	case o.CheckAI:
		return AnalysisAI
	default:
		return AnalysisPlagiarism
	}
}

func (o AnalysisOptions) Validate() error {
	switch o.Provider {
	case ProviderLocal, ProviderOpenAI, ProviderTogether:
	default:
		return fmt.Errorf("unknown provider %q", o.Provider)
	}
	if o.AIThreshold < MinThreshold || o.AIThreshold > MaxThreshold {
		return fmt.Errorf("ai_threshold %.2f outside [%.1f, %.1f]", o.AIThreshold, MinThreshold, MaxThreshold)
	}
	if !o.CheckPlagiarism && !o.CheckAI {
		return errors.New("at least one of check_plagiarism/check_ai must be enabled")
	}
	return nil
}
