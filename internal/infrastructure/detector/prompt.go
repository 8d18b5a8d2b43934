package detector

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/ivmarkin/veridoc/internal/core/domain"
)

func buildDetectionPrompt(text string) string {
	const maxSnippet = 6000
	snippet := text
	if len(snippet) > maxSnippet {
		// back off to a rune boundary so the cut never yields invalid utf-8
		cut := maxSnippet
		for cut > 0 && !utf8.RuneStart(snippet[cut]) {
			cut--
		}
		snippet = snippet[:cut]
	}

	return `You are an AI-generated text detector.
Estimate how likely the document below was written by a language model.
Return strict JSON object with keys:
ai_score (number from 0 to 1, 1 means certainly AI-written), confidence (number from 0 to 1).
No markdown, no extra keys.

Document:
` + snippet
}

func parseDetection(raw string) (domain.Detection, error) {
	var result struct {
		AIScore    float64 `json:"ai_score"`
		Confidence float64 `json:"confidence"`
	}
	if err := json.Unmarshal([]byte(extractJSONObject(raw)), &result); err != nil {
		return domain.Detection{}, fmt.Errorf("parse detection json: %w", err)
	}
	if result.AIScore < 0 || result.AIScore > 1 {
		return domain.Detection{}, fmt.Errorf("detection score %v out of range", result.AIScore)
	}
	return domain.Detection{Score: result.AIScore, Confidence: result.Confidence}, nil
}

func extractJSONObject(raw string) string {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start >= 0 && end > start {
		return raw[start : end+1]
	}
	return raw
}
