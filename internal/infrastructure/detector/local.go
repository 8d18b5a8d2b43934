package detector

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/ivmarkin/veridoc/internal/core/domain"
)

// LocalClient scores text through an Ollama-compatible server running on the
// same host, so detection works without any external API key.
type LocalClient struct {
	baseURL    string
	model      string
	httpClient *http.Client
}

func NewLocalClient(baseURL, model string) *LocalClient {
	return &LocalClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		model:      model,
		httpClient: &http.Client{Timeout: 120 * time.Second},
	}
}

func (c *LocalClient) Score(ctx context.Context, text string) (domain.Detection, error) {
	request := map[string]any{
		"model":  c.model,
		"prompt": buildDetectionPrompt(text),
		"stream": false,
		"format": "json",
	}

	var response struct {
		Response string `json:"response"`
	}
	if err := postJSON(ctx, c.httpClient, c.baseURL+"/api/generate", "", request, &response, "local"); err != nil {
		return domain.Detection{}, err
	}
	return parseDetection(response.Response)
}
