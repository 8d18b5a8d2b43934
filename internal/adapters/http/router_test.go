package httpadapter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ivmarkin/veridoc/internal/auth"
	"github.com/ivmarkin/veridoc/internal/core/domain"
	"github.com/ivmarkin/veridoc/internal/core/ports"
	"github.com/ivmarkin/veridoc/pkg/api"
)

type submitterFake struct {
	batchID  string
	err      error
	gotUser  string
	gotFiles []ports.Submission
	gotOpts  api.AnalysisOptions
}

func (f *submitterFake) Submit(_ context.Context, userID string, files []ports.Submission, opts api.AnalysisOptions) (string, error) {
	f.gotUser = userID
	f.gotFiles = files
	f.gotOpts = opts
	if f.err != nil {
		return "", f.err
	}
	return f.batchID, nil
}

type readerFake struct {
	batches []api.Batch
	batch   api.Batch
	results []api.DocumentResult
	summary api.DashboardMetrics
	err     error
}

func (f *readerFake) ListBatches(context.Context, string) ([]api.Batch, error) {
	return f.batches, f.err
}

func (f *readerFake) GetBatch(context.Context, string, string) (api.Batch, error) {
	return f.batch, f.err
}

func (f *readerFake) GetResults(context.Context, string, string) ([]api.DocumentResult, error) {
	return f.results, f.err
}

func (f *readerFake) Dashboard(context.Context, string) (api.DashboardMetrics, error) {
	return f.summary, f.err
}

type textDetectorFake struct {
	result api.DetectionResult
	err    error
}

func (f *textDetectorFake) DetectText(context.Context, string, api.Provider, float64) (api.DetectionResult, error) {
	return f.result, f.err
}

type usersFake struct {
	byEmail map[string]*domain.User
}

func (f *usersFake) CreateUser(_ context.Context, user *domain.User) error {
	if f.byEmail == nil {
		f.byEmail = map[string]*domain.User{}
	}
	key := strings.ToLower(user.Email)
	if _, exists := f.byEmail[key]; exists {
		return domain.WrapError(domain.ErrInvalidInput, "insert user", errors.New("duplicate"))
	}
	f.byEmail[key] = user
	return nil
}

func (f *usersFake) GetUserByEmail(_ context.Context, email string) (*domain.User, error) {
	user, ok := f.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, domain.WrapError(domain.ErrUnauthorized, "get user", errors.New("no such user"))
	}
	return user, nil
}

var testTokens = auth.NewTokenManager("router-test-secret", time.Hour)

func newTestRouter(submitter ports.BatchSubmitter, reader ports.BatchReader, detector ports.TextDetector, users ports.UserRepository) http.Handler {
	if users == nil {
		users = &usersFake{}
	}
	return NewRouter(submitter, reader, detector, users, testTokens, nil, 0, 0).Handler()
}

func authorize(t *testing.T, req *http.Request) {
	t.Helper()
	token, err := testTokens.Issue("user-1")
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
}

func TestHealthzEndpoint(t *testing.T) {
	handler := newTestRouter(&submitterFake{}, &readerFake{}, &textDetectorFake{}, nil)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
}

func TestRegisterThenLogin(t *testing.T) {
	users := &usersFake{}
	handler := newTestRouter(&submitterFake{}, &readerFake{}, &textDetectorFake{}, users)

	payload, _ := json.Marshal(api.Credentials{Email: "grader@example.com", Password: "correct-horse"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	if res.Code != http.StatusCreated {
		t.Fatalf("register expected 201, got %d: %s", res.Code, res.Body.String())
	}

	req = httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	res = httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	if res.Code != http.StatusOK {
		t.Fatalf("login expected 200, got %d: %s", res.Code, res.Body.String())
	}

	var token api.TokenResponse
	if err := json.NewDecoder(res.Body).Decode(&token); err != nil {
		t.Fatalf("decode token: %v", err)
	}
	if token.AccessToken == "" || token.TokenType != "bearer" {
		t.Fatalf("unexpected token response %+v", token)
	}
}

func TestRegisterDuplicateEmailReturns409(t *testing.T) {
	users := &usersFake{}
	handler := newTestRouter(&submitterFake{}, &readerFake{}, &textDetectorFake{}, users)

	payload, _ := json.Marshal(api.Credentials{Email: "dup@example.com", Password: "correct-horse"})
	for i, want := range []int{http.StatusCreated, http.StatusConflict} {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", bytes.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
		res := httptest.NewRecorder()
		handler.ServeHTTP(res, req)
		if res.Code != want {
			t.Fatalf("attempt %d expected %d, got %d", i, want, res.Code)
		}
	}
}

func TestLoginWrongPasswordReturns401(t *testing.T) {
	users := &usersFake{}
	handler := newTestRouter(&submitterFake{}, &readerFake{}, &textDetectorFake{}, users)

	register, _ := json.Marshal(api.Credentials{Email: "x@example.com", Password: "correct-horse"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", bytes.NewReader(register))
	req.Header.Set("Content-Type", "application/json")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	login, _ := json.Marshal(api.Credentials{Email: "x@example.com", Password: "wrong-horse-1"})
	req = httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(login))
	req.Header.Set("Content-Type", "application/json")
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	if res.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", res.Code)
	}
}

func TestListBatchesRequiresToken(t *testing.T) {
	handler := newTestRouter(&submitterFake{}, &readerFake{}, &textDetectorFake{}, nil)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/batches", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", res.Code)
	}
	var body api.ErrorBody
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	if body.Detail == "" {
		t.Fatal("expected detail message in 401 body")
	}
}

func TestAnalyzeSubmitsBatch(t *testing.T) {
	submitter := &submitterFake{batchID: "batch-7"}
	handler := newTestRouter(submitter, &readerFake{}, &textDetectorFake{}, nil)

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	for _, name := range []string{"a.txt", "b.txt"} {
		part, err := writer.CreateFormFile("files", name)
		if err != nil {
			t.Fatalf("CreateFormFile() error = %v", err)
		}
		if _, err := part.Write([]byte("content of " + name)); err != nil {
			t.Fatalf("Write() error = %v", err)
		}
	}
	if err := writer.WriteField("options", `{"provider":"openai","ai_threshold":0.7,"check_plagiarism":false,"check_ai":true}`); err != nil {
		t.Fatalf("WriteField() error = %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	authorize(t, req)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", res.Code, res.Body.String())
	}
	var resp api.AnalyzeResponse
	if err := json.NewDecoder(res.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.BatchID != "batch-7" || resp.Status != domain.BatchQueued {
		t.Fatalf("unexpected response %+v", resp)
	}
	if submitter.gotUser != "user-1" {
		t.Fatalf("user id = %q, want user-1", submitter.gotUser)
	}
	if len(submitter.gotFiles) != 2 || submitter.gotFiles[1].Filename != "b.txt" {
		t.Fatalf("unexpected submissions %+v", submitter.gotFiles)
	}
	if submitter.gotOpts.Provider != api.ProviderOpenAI || submitter.gotOpts.AIThreshold != 0.7 || submitter.gotOpts.CheckPlagiarism {
		t.Fatalf("unexpected options %+v", submitter.gotOpts)
	}
}

func TestAnalyzeWithoutFilesReturns400(t *testing.T) {
	handler := newTestRouter(&submitterFake{}, &readerFake{}, &textDetectorFake{}, nil)

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	if err := writer.WriteField("options", `{}`); err != nil {
		t.Fatalf("WriteField() error = %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	authorize(t, req)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.Code)
	}
}

func TestGetBatchMapsNotFoundTo404(t *testing.T) {
	reader := &readerFake{err: domain.WrapError(domain.ErrBatchNotFound, "get batch", errors.New("id=missing"))}
	handler := newTestRouter(&submitterFake{}, reader, &textDetectorFake{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/batches/missing", nil)
	authorize(t, req)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", res.Code)
	}
}

func TestListBatchesEmptyEnvelope(t *testing.T) {
	handler := newTestRouter(&submitterFake{}, &readerFake{}, &textDetectorFake{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/batches", nil)
	authorize(t, req)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
	if !strings.Contains(res.Body.String(), `"data":[]`) {
		t.Fatalf("expected empty data array, got %s", res.Body.String())
	}
}

func TestResultsEnvelope(t *testing.T) {
	score := 0.8
	reader := &readerFake{results: []api.DocumentResult{{
		DocumentID: "doc-1",
		Filename:   "essay.txt",
		Status:     "completed",
		AIAnalysis: &api.AIAnalysis{Score: &score, Provider: api.ProviderLocal},
	}}}
	handler := newTestRouter(&submitterFake{}, reader, &textDetectorFake{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/batches/batch-1/results", nil)
	authorize(t, req)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
	var envelope api.BatchResults
	if err := json.NewDecoder(res.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if len(envelope.Data) != 1 || envelope.Data[0].DocumentID != "doc-1" {
		t.Fatalf("unexpected envelope %+v", envelope)
	}
}

func TestDetectTextMapsTemporaryTo503(t *testing.T) {
	detector := &textDetectorFake{err: domain.WrapError(domain.ErrTemporary, "detector.local", errors.New("circuit open"))}
	handler := newTestRouter(&submitterFake{}, &readerFake{}, detector, nil)

	payload, _ := json.Marshal(api.DetectionRequest{Text: "sample", Provider: api.ProviderLocal, Threshold: 0.5})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/ai-detection", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	authorize(t, req)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", res.Code)
	}
}

func TestDashboardEnvelope(t *testing.T) {
	reader := &readerFake{summary: api.DashboardMetrics{NumBatches: 3, NumDocuments: 12}}
	handler := newTestRouter(&submitterFake{}, reader, &textDetectorFake{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me/dashboard", nil)
	authorize(t, req)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
	var envelope api.Dashboard
	if err := json.NewDecoder(res.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if envelope.Data.NumBatches != 3 || envelope.Data.NumDocuments != 12 {
		t.Fatalf("unexpected dashboard %+v", envelope.Data)
	}
}
