// Package httpapi serves the question answering API over HTTP.
//
// Routes:
//
//	POST /api/query   form field "question" (urlencoded, multipart or JSON body)
//	GET  /api/search  ?q=...&k=...
//	GET  /healthz     manifest of the loaded index
//
// A generation failure is still a 200 answer; only retrieval and embedding
// failures are server errors.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/insectopedia/insectopedia/internal/core/domain"
	"github.com/insectopedia/insectopedia/internal/core/ports/driving"
	"github.com/insectopedia/insectopedia/internal/logger"
)

// ErrMissingAnswerService is returned when the answer service is not provided.
var ErrMissingAnswerService = errors.New("httpapi: answer service is required")

// ErrMissingRetrievalService is returned when the retrieval service is not provided.
var ErrMissingRetrievalService = errors.New("httpapi: retrieval service is required")

// RequestIDHeader carries the request identifier on every response.
const RequestIDHeader = "X-Request-ID"

// DefaultWriteMargin is added to the generation timeout to get the write timeout.
const DefaultWriteMargin = 30 * time.Second

const (
	maxFormMemory   = 1 << 20
	shutdownTimeout = 5 * time.Second
)

// Config holds server settings.
type Config struct {
	// Addr is the listen address, e.g. "127.0.0.1:8000".
	Addr string

	// ReadTimeout and WriteTimeout bound a single request. WriteTimeout must
	// leave room for a generation call.
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Server is the HTTP adapter.
type Server struct {
	answer    driving.AnswerService
	retrieval driving.RetrievalService
	cfg       Config
}

// NewServer creates a server. Zero timeouts get defaults.
func NewServer(answer driving.AnswerService, retrieval driving.RetrievalService, cfg Config) (*Server, error) {
	if answer == nil {
		return nil, ErrMissingAnswerService
	}
	if retrieval == nil {
		return nil, ErrMissingRetrievalService
	}
	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = 15 * time.Second
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 90 * time.Second
	}
	return &Server{answer: answer, retrieval: retrieval, cfg: cfg}, nil
}

// Handler returns the routed handler wrapped in CORS, request ID and logging middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/query", s.handleQuery)
	mux.HandleFunc("GET /api/search", s.handleSearch)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	return corsMiddleware(logMiddleware(mux))
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       s.cfg.ReadTimeout,
		WriteTimeout:      s.cfg.WriteTimeout,
	}

	errs := make(chan error, 1)
	go func() {
		errs <- srv.ListenAndServe()
	}()
	logger.Info("Listening on http://%s", s.cfg.Addr)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	case err := <-errs:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

type queryResponse struct {
	Answer string `json:"answer"`
}

type searchResponse struct {
	Query   string                `json:"query"`
	Results []domain.SearchResult `json:"results"`
}

type healthResponse struct {
	Status string               `json:"status"`
	Index  domain.IndexManifest `json:"index"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	question, err := readQuestion(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(question) == "" {
		writeError(w, http.StatusBadRequest, "question is required")
		return
	}

	answer, err := s.answer.Ask(r.Context(), question)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, queryResponse{Answer: answer.Text})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		writeError(w, http.StatusBadRequest, "q is required")
		return
	}

	k := 0
	if raw := r.URL.Query().Get("k"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("k must be an integer, got %q", raw))
			return
		}
		k = n
	}

	results, err := s.retrieval.Search(r.Context(), q, k)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, searchResponse{Query: q, Results: results})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Index: s.retrieval.Manifest()})
}

// readQuestion reads the "question" field from a JSON body or a form.
func readQuestion(w http.ResponseWriter, r *http.Request) (string, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		var body struct {
			Question string `json:"question"`
		}
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxFormMemory)).Decode(&body); err != nil {
			return "", fmt.Errorf("invalid JSON body: %w", err)
		}
		return body.Question, nil
	}

	if mediaType == "multipart/form-data" {
		if err := r.ParseMultipartForm(maxFormMemory); err != nil {
			return "", fmt.Errorf("invalid form: %w", err)
		}
	} else if err := r.ParseForm(); err != nil {
		return "", fmt.Errorf("invalid form: %w", err)
	}
	return r.PostFormValue("question"), nil
}

// writeServiceError maps service errors to status codes.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, domain.ErrInvalidInput) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	logger.Error("%s %s [%s]: %v", r.Method, r.URL.Path, w.Header().Get(RequestIDHeader), err)
	writeError(w, http.StatusInternalServerError, err.Error())
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, errorResponse{Error: msg})
}
