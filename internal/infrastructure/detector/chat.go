package detector

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/ivmarkin/veridoc/internal/core/domain"
)

// ChatClient scores text through an OpenAI-compatible chat completions API.
// Both the OpenAI and Together providers speak this wire format, only the
// base URL, key and model differ.
type ChatClient struct {
	baseURL    string
	apiKey     string
	model      string
	operation  string
	httpClient *http.Client
}

func NewChatClient(baseURL, apiKey, model, operation string) *ChatClient {
	return &ChatClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		model:      model,
		operation:  operation,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

func (c *ChatClient) Score(ctx context.Context, text string) (domain.Detection, error) {
	request := map[string]any{
		"model": c.model,
		"messages": []map[string]string{
			{"role": "user", "content": buildDetectionPrompt(text)},
		},
		"temperature": 0,
	}

	var response struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := postJSON(ctx, c.httpClient, c.baseURL+"/v1/chat/completions", c.apiKey, request, &response, c.operation); err != nil {
		return domain.Detection{}, err
	}
	if len(response.Choices) == 0 {
		return domain.Detection{}, fmt.Errorf("%s returned no choices", c.operation)
	}
	return parseDetection(response.Choices[0].Message.Content)
}
