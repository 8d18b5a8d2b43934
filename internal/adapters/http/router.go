package httpadapter

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ivmarkin/veridoc/internal/auth"
	"github.com/ivmarkin/veridoc/internal/core/domain"
	"github.com/ivmarkin/veridoc/internal/core/ports"
	"github.com/ivmarkin/veridoc/internal/observability/metrics"
	"github.com/ivmarkin/veridoc/pkg/api"
)

const (
	serviceName      = "api"
	maxUploadBytes   = 64 << 20
	maxDetectionText = 200_000

	maxConcurrentRequests = 256
	backpressureWait      = 1 * time.Second
)

type Router struct {
	submitter ports.BatchSubmitter
	reader    ports.BatchReader
	detector  ports.TextDetector
	users     ports.UserRepository
	tokens    *auth.TokenManager
	metrics   *metrics.HTTPServerMetrics

	rateRPS   float64
	rateBurst int
}

func NewRouter(
	submitter ports.BatchSubmitter,
	reader ports.BatchReader,
	detector ports.TextDetector,
	users ports.UserRepository,
	tokens *auth.TokenManager,
	httpMetrics *metrics.HTTPServerMetrics,
	rateRPS float64,
	rateBurst int,
) *Router {
	return &Router{
		submitter: submitter,
		reader:    reader,
		detector:  detector,
		users:     users,
		tokens:    tokens,
		metrics:   httpMetrics,
		rateRPS:   rateRPS,
		rateBurst: rateBurst,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	mux.HandleFunc("/api/v1/auth/register", rt.register)
	mux.HandleFunc("/api/v1/auth/login", rt.login)
	mux.HandleFunc("/api/v1/analyze", rt.authMiddleware(rt.analyze))
	mux.HandleFunc("/api/v1/batches", rt.authMiddleware(rt.listBatches))
	mux.HandleFunc("/api/v1/batches/", rt.authMiddleware(rt.batchSubtree))
	mux.HandleFunc("/api/v1/ai-detection", rt.authMiddleware(rt.detectText))
	mux.HandleFunc("/api/v1/users/me/dashboard", rt.authMiddleware(rt.dashboard))
	if rt.metrics != nil {
		mux.Handle("/metrics", rt.metrics.Handler())
	}

	var handler http.Handler = mux
	handler = backpressureMiddleware(handler, maxConcurrentRequests, backpressureWait)
	handler = rateLimitMiddleware(handler, rt.rateRPS, rt.rateBurst)
	if rt.metrics != nil {
		handler = rt.metrics.Middleware(serviceName, handler)
	}
	handler = accessLogMiddleware(handler)
	handler = requestIDMiddleware(handler)
	return handler
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) register(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var creds api.Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if !strings.Contains(creds.Email, "@") {
		writeError(w, http.StatusBadRequest, "valid email is required")
		return
	}
	if len(creds.Password) < 8 {
		writeError(w, http.StatusBadRequest, "password must be at least 8 characters")
		return
	}

	hash, err := auth.HashPassword(creds.Password)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not process password")
		return
	}
	user := &domain.User{
		ID:           uuid.NewString(),
		Email:        creds.Email,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}
	if err := rt.users.CreateUser(r.Context(), user); err != nil {
		if domain.IsKind(err, domain.ErrInvalidInput) {
			writeError(w, http.StatusConflict, "email already registered")
			return
		}
		writeError(w, http.StatusInternalServerError, "could not create account")
		return
	}
	w.WriteHeader(http.StatusCreated)
}

func (rt *Router) login(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var creds api.Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	user, err := rt.users.GetUserByEmail(r.Context(), creds.Email)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	if err := auth.CheckPassword(user.PasswordHash, creds.Password); err != nil {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token, err := rt.tokens.Issue(user.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not issue token")
		return
	}
	writeJSON(w, http.StatusOK, api.TokenResponse{AccessToken: token, TokenType: "bearer"})
}

func (rt *Router) analyze(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	fileHeaders := r.MultipartForm.File["files"]
	if len(fileHeaders) == 0 {
		writeError(w, http.StatusBadRequest, "at least one file is required")
		return
	}

	opts := api.OptionsFor(api.AnalysisBoth, api.ProviderLocal, 0.5)
	if raw := r.FormValue("options"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &opts); err != nil {
			writeError(w, http.StatusBadRequest, "invalid options json")
			return
		}
	}

	submissions := make([]ports.Submission, 0, len(fileHeaders))
	for _, header := range fileHeaders {
		file, err := header.Open()
		if err != nil {
			writeError(w, http.StatusBadRequest, "unreadable file "+header.Filename)
			return
		}
		content, err := io.ReadAll(file)
		_ = file.Close()
		if err != nil {
			writeError(w, http.StatusBadRequest, "unreadable file "+header.Filename)
			return
		}
		submissions = append(submissions, ports.Submission{
			Filename: header.Filename,
			Content:  content,
		})
	}

	batchID, err := rt.submitter.Submit(r.Context(), userIDFromContext(r.Context()), submissions, opts)
	if err != nil {
		writeError(w, mapErrorToHTTPStatus(err), err.Error())
		return
	}

	if rt.metrics != nil {
		rt.metrics.RecordBatchSubmitted(serviceName, string(opts.AnalysisType()), len(submissions))
	}
	writeJSON(w, http.StatusAccepted, api.AnalyzeResponse{
		BatchID: batchID,
		Status:  domain.BatchQueued,
		Message: "batch accepted for analysis",
	})
}

func (rt *Router) listBatches(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	batches, err := rt.reader.ListBatches(r.Context(), userIDFromContext(r.Context()))
	if err != nil {
		writeError(w, mapErrorToHTTPStatus(err), err.Error())
		return
	}
	if batches == nil {
		batches = []api.Batch{}
	}
	writeJSON(w, http.StatusOK, api.BatchList{Data: batches})
}

// batchSubtree serves /api/v1/batches/{id} and /api/v1/batches/{id}/results.
func (rt *Router) batchSubtree(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/api/v1/batches/")
	batchID, sub, _ := strings.Cut(rest, "/")
	if batchID == "" {
		writeError(w, http.StatusBadRequest, "batch id is required")
		return
	}

	switch sub {
	case "":
		batch, err := rt.reader.GetBatch(r.Context(), userIDFromContext(r.Context()), batchID)
		if err != nil {
			writeError(w, mapErrorToHTTPStatus(err), err.Error())
			return
		}
		writeJSON(w, http.StatusOK, api.BatchDetail{Data: batch})
	case "results":
		results, err := rt.reader.GetResults(r.Context(), userIDFromContext(r.Context()), batchID)
		if err != nil {
			writeError(w, mapErrorToHTTPStatus(err), err.Error())
			return
		}
		if results == nil {
			results = []api.DocumentResult{}
		}
		writeJSON(w, http.StatusOK, api.BatchResults{Data: results})
	default:
		writeError(w, http.StatusNotFound, "not found")
	}
}

func (rt *Router) detectText(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req api.DetectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if len(req.Text) > maxDetectionText {
		writeError(w, http.StatusBadRequest, "text too large")
		return
	}

	start := time.Now()
	result, err := rt.detector.DetectText(r.Context(), req.Text, req.Provider, req.Threshold)
	if rt.metrics != nil {
		rt.metrics.RecordDetection(serviceName, string(req.Provider), time.Since(start), err)
	}
	if err != nil {
		writeError(w, mapErrorToHTTPStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (rt *Router) dashboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	summary, err := rt.reader.Dashboard(r.Context(), userIDFromContext(r.Context()))
	if err != nil {
		writeError(w, mapErrorToHTTPStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, api.Dashboard{Data: summary})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, api.ErrorBody{Detail: detail})
}
