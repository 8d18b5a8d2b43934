package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ivmarkin/veridoc/internal/core/domain"
	"github.com/ivmarkin/veridoc/internal/core/ports"
	"github.com/ivmarkin/veridoc/pkg/api"
)

// DetectTextUseCase runs the AI-only check on a raw text snippet without
// creating a batch. The threshold is applied with the shared classifier so
// the boundary rule matches the client side.
type DetectTextUseCase struct {
	detector ports.AIDetector
}

func NewDetectTextUseCase(detector ports.AIDetector) *DetectTextUseCase {
	return &DetectTextUseCase{detector: detector}
}

func (uc *DetectTextUseCase) DetectText(ctx context.Context, text string, provider api.Provider, threshold float64) (api.DetectionResult, error) {
	if strings.TrimSpace(text) == "" {
		return api.DetectionResult{}, domain.WrapError(domain.ErrInvalidInput, "detect text", errors.New("text is required"))
	}
	if threshold < api.MinThreshold || threshold > api.MaxThreshold {
		return api.DetectionResult{}, domain.WrapError(domain.ErrInvalidInput, "detect text",
			fmt.Errorf("threshold %.2f outside [%.1f, %.1f]", threshold, api.MinThreshold, api.MaxThreshold))
	}

	detection, err := uc.detector.Detect(ctx, text, provider)
	if err != nil {
		return api.DetectionResult{}, fmt.Errorf("ai detection: %w", err)
	}

	cls := api.Classify(&detection.Score, threshold)
	return api.DetectionResult{
		Score:      detection.Score,
		Confidence: detection.Confidence,
		Provider:   detection.Provider,
		IsAI:       *cls.IsAI,
		Label:      cls.Label,
	}, nil
}
