// Package chi exposes the assistant over HTTP.
package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/lumenkart/shopassist/internal/domain"
	domcat "github.com/lumenkart/shopassist/internal/domain/catalog"
	"github.com/lumenkart/shopassist/internal/domain/record"
	healthuc "github.com/lumenkart/shopassist/internal/usecase/health"
)

// Pipeline is the retrieval surface the HTTP layer needs.
type Pipeline interface {
	Answer(ctx context.Context, query string, k int, filter record.Record) (string, error)
	AddItem(ctx context.Context, catalogName string, rec record.Record) (bool, error)
	FilterItems(ctx context.Context, f domcat.Filter) ([]record.Record, error)
	Count() int
}

type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server routes HTTP requests to the pipeline and health use cases.
type Server struct {
	pipeline      Pipeline
	health        *healthuc.Service
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(pipeline Pipeline, health *healthuc.Service, logger *zap.Logger) *Server {
	s := &Server{
		pipeline: pipeline,
		health:   health,
		logger:   logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrCatalogNotFound, http.StatusNotFound, "catalog_not_found"),
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, "not_found"),
		sentinelHandler(domain.ErrInvalidArgument, http.StatusBadRequest, "validation_failed"),
		sentinelHandler(domain.ErrDimensionMismatch, http.StatusBadRequest, "dimension_mismatch"),
		sentinelHandler(domain.ErrEmbeddingProviderError, http.StatusBadGateway, "embedding_provider_error"),
	}
	return s
}

// Routes mounts all endpoints on a chi router.
func (s *Server) Routes(r chi.Router) {
	r.Post("/ask", s.Ask)
	r.Post("/catalogs/{catalog}/items", s.AddItem)
	r.Get("/items", s.ListItems)
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
}

type askRequest struct {
	Query  string        `json:"query"`
	TopK   int           `json:"top_k"`
	Filter record.Record `json:"filter,omitempty"`
}

type askResponse struct {
	Answer string `json:"answer"`
}

// Ask handles POST /ask.
func (s *Server) Ask(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "Invalid request body: "+err.Error())
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		writeError(w, http.StatusBadRequest, "validation_failed", "Query is required")
		return
	}

	answer, err := s.pipeline.Answer(r.Context(), req.Query, req.TopK, req.Filter)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, askResponse{Answer: answer})
}

type addItemResponse struct {
	Indexed bool `json:"indexed"`
	Count   int  `json:"count"`
}

// AddItem handles POST /catalogs/{catalog}/items.
func (s *Server) AddItem(w http.ResponseWriter, r *http.Request) {
	catalogName := chi.URLParam(r, "catalog")

	var rec record.Record
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "Invalid request body: "+err.Error())
		return
	}
	if rec.StringAttr("name") == "" {
		writeError(w, http.StatusBadRequest, "validation_failed", "Item name is required")
		return
	}

	indexed, err := s.pipeline.AddItem(r.Context(), catalogName, rec)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, addItemResponse{Indexed: indexed, Count: s.pipeline.Count()})
}

type listItemsResponse struct {
	Items []record.Record `json:"items"`
	Count int             `json:"count"`
}

// ListItems handles GET /items with attribute filters in query parameters.
func (s *Server) ListItems(w http.ResponseWriter, r *http.Request) {
	f, err := filterFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
		return
	}

	items, err := s.pipeline.FilterItems(r.Context(), f)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	if items == nil {
		items = []record.Record{}
	}
	writeJSON(w, http.StatusOK, listItemsResponse{Items: items, Count: len(items)})
}

type healthResponse struct {
	Status       string            `json:"status"`
	Checks       map[string]string `json:"checks,omitempty"`
	IndexedItems int               `json:"indexed_items"`
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, healthResponse{
		Status:       string(report.Status),
		Checks:       checks,
		IndexedItems: report.IndexedItems,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// filterFromQuery parses GET /items query parameters into a catalog filter.
func filterFromQuery(r *http.Request) (domcat.Filter, error) {
	q := r.URL.Query()
	f := domcat.Filter{Category: q.Get("category")}

	if tags := q.Get("tags"); tags != "" {
		f.Tags = strings.Split(tags, ",")
	}
	if raw := q.Get("min_price"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return domcat.Filter{}, errors.New("min_price must be a number")
		}
		f.MinPrice = &v
	}
	if raw := q.Get("max_price"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return domcat.Filter{}, errors.New("max_price must be a number")
		}
		f.MaxPrice = &v
	}
	if raw := q.Get("in_stock"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return domcat.Filter{}, errors.New("in_stock must be a boolean")
		}
		f.InStock = &v
	}
	return f, nil
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrCatalogNotFound,
		domain.ErrNotFound,
		domain.ErrInvalidArgument,
		domain.ErrDimensionMismatch,
		domain.ErrEmbeddingProviderError,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
}
