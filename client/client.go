package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ivmarkin/veridoc/pkg/api"
)

// Client talks to the veridoc analysis API. All calls are independent round
// trips; concurrent calls for different batches never interfere.
type Client struct {
	baseURL    string
	httpClient *http.Client
	session    *Session
}

type Option func(*Client)

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) { c.httpClient = httpClient }
}

func WithSession(session *Session) Option {
	return func(c *Client) { c.session = session }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 60 * time.Second},
		session:    NewSession(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Session() *Session { return c.session }

// Login exchanges credentials for a bearer token and stores it in the session.
func (c *Client) Login(ctx context.Context, email, password string) error {
	body, err := json.Marshal(api.Credentials{Email: email, Password: password})
	if err != nil {
		return fmt.Errorf("%w: marshal credentials: %w", ErrSubmission, err)
	}

	var token api.TokenResponse
	err = c.do(ctx, http.MethodPost, "/api/v1/auth/login", bytes.NewReader(body), "application/json", false, &token, ErrSubmission)
	if err != nil {
		return err
	}
	c.session.SetToken(token.AccessToken)
	return nil
}

// Logout clears the session state (token plus last-batch pointer).
func (c *Client) Logout() {
	c.session.Clear()
}

// Register creates an account. The caller still logs in afterwards.
func (c *Client) Register(ctx context.Context, email, password string) error {
	body, err := json.Marshal(api.Credentials{Email: email, Password: password})
	if err != nil {
		return fmt.Errorf("%w: marshal credentials: %w", ErrSubmission, err)
	}
	return c.do(ctx, http.MethodPost, "/api/v1/auth/register", bytes.NewReader(body), "application/json", false, nil, ErrSubmission)
}

// Submit sends an assembled analysis request. On success the returned batch id
// becomes the session's last-batch pointer. Submission is never retried; a
// failure is terminal for this attempt.
func (c *Client) Submit(ctx context.Context, request *AnalysisRequest) (string, error) {
	var resp api.AnalyzeResponse
	err := c.do(ctx, http.MethodPost, "/api/v1/analyze", bytes.NewReader(request.body), request.contentType, true, &resp, ErrSubmission)
	if err != nil {
		return "", err
	}
	if resp.BatchID == "" {
		return "", fmt.Errorf("%w: response carried no batch id", ErrSubmission)
	}
	c.session.SetLastBatchID(resp.BatchID)
	return resp.BatchID, nil
}

// ListBatches fetches all batches owned by the authenticated caller. An empty
// list is a valid zero-batches state, not an error.
func (c *Client) ListBatches(ctx context.Context) ([]api.Batch, error) {
	var list api.BatchList
	if err := c.do(ctx, http.MethodGet, "/api/v1/batches", nil, "", true, &list, ErrFetch); err != nil {
		return nil, err
	}
	if list.Data == nil {
		return []api.Batch{}, nil
	}
	return list.Data, nil
}

// GetBatch fetches a single batch's current status/progress snapshot.
func (c *Client) GetBatch(ctx context.Context, batchID string) (api.Batch, error) {
	var detail api.BatchDetail
	path := "/api/v1/batches/" + url.PathEscape(batchID)
	if err := c.do(ctx, http.MethodGet, path, nil, "", true, &detail, ErrFetch); err != nil {
		return api.Batch{}, err
	}
	return detail.Data, nil
}

// GetResults fetches per-document results for a batch, preserving backend
// ordering. The returned slice is owned by the caller; classification happens
// at consumption time and never mutates it.
func (c *Client) GetResults(ctx context.Context, batchID string) ([]api.DocumentResult, error) {
	var results api.BatchResults
	path := "/api/v1/batches/" + url.PathEscape(batchID) + "/results"
	if err := c.do(ctx, http.MethodGet, path, nil, "", true, &results, ErrFetch); err != nil {
		return nil, err
	}
	if results.Data == nil {
		return []api.DocumentResult{}, nil
	}
	return results.Data, nil
}

// DetectText runs the AI-only check on a raw text snippet.
func (c *Client) DetectText(ctx context.Context, text string, provider api.Provider, threshold float64) (api.DetectionResult, error) {
	body, err := json.Marshal(api.DetectionRequest{Text: text, Provider: provider, Threshold: threshold})
	if err != nil {
		return api.DetectionResult{}, fmt.Errorf("%w: marshal detection request: %w", ErrSubmission, err)
	}
	var result api.DetectionResult
	err = c.do(ctx, http.MethodPost, "/api/v1/ai-detection", bytes.NewReader(body), "application/json", true, &result, ErrSubmission)
	if err != nil {
		return api.DetectionResult{}, err
	}
	return result, nil
}

// Dashboard fetches the caller's usage metrics.
func (c *Client) Dashboard(ctx context.Context) (api.DashboardMetrics, error) {
	var dashboard api.Dashboard
	if err := c.do(ctx, http.MethodGet, "/api/v1/users/me/dashboard", nil, "", true, &dashboard, ErrFetch); err != nil {
		return api.DashboardMetrics{}, err
	}
	return dashboard.Data, nil
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string, authorized bool, out any, kind error) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("%w: create request: %w", kind, err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if authorized {
		if token := c.session.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %w", kind, method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: %s", kind, errorDetail(resp))
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode response: %w", kind, err)
	}
	return nil
}

// errorDetail extracts the backend-provided message when present, otherwise a
// generic failure message with the status line.
func errorDetail(resp *http.Response) string {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	var body api.ErrorBody
	if err := json.Unmarshal(raw, &body); err == nil && strings.TrimSpace(body.Detail) != "" {
		return body.Detail
	}
	return fmt.Sprintf("request failed with status %s", resp.Status)
}
