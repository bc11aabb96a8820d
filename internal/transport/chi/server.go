package chi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	gochi "github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/newsrec/internal/domain"
	domdoc "github.com/kailas-cloud/newsrec/internal/domain/document"
	dominter "github.com/kailas-cloud/newsrec/internal/domain/interaction"
	"github.com/kailas-cloud/newsrec/internal/domain/recommendation"
	logpkg "github.com/kailas-cloud/newsrec/internal/logger"
	documentuc "github.com/kailas-cloud/newsrec/internal/usecase/document"
	healthuc "github.com/kailas-cloud/newsrec/internal/usecase/health"
	interactionuc "github.com/kailas-cloud/newsrec/internal/usecase/interaction"
	recommenduc "github.com/kailas-cloud/newsrec/internal/usecase/recommend"
)

// maxBodyBytes bounds request bodies: a full-size document plus JSON overhead.
const maxBodyBytes = 1 << 20

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server holds the HTTP handlers of the newsrec API.
type Server struct {
	documents       *documentuc.Service
	interactions    *interactionuc.Service
	recommendations *recommenduc.Service
	health          *healthuc.Service
	logger          *zap.Logger
	errorHandlers   []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	documents *documentuc.Service,
	interactions *interactionuc.Service,
	recommendations *recommenduc.Service,
	health *healthuc.Service,
	logger *zap.Logger,
) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		documents:       documents,
		interactions:    interactions,
		recommendations: recommendations,
		health:          health,
		logger:          logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrDocumentNotFound, http.StatusNotFound, ErrorCodeDocumentNotFound),
		sentinelHandler(domain.ErrInvalidDocument, http.StatusBadRequest, ErrorCodeValidationFailed),
		sentinelHandler(domain.ErrInvalidInteraction, http.StatusBadRequest, ErrorCodeValidationFailed),
		sentinelHandler(domain.ErrInvalidRequest, http.StatusBadRequest, ErrorCodeValidationFailed),
	}
	return s
}

// Register mounts the API routes on r.
func (s *Server) Register(r gochi.Router) {
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)

	r.Route("/api/v1", func(r gochi.Router) {
		r.Route("/documents", func(r gochi.Router) {
			r.Get("/", s.ListDocuments)
			r.Get("/popular", s.PopularDocuments)
			r.Put("/{id}", s.UpsertDocument)
			r.Get("/{id}", s.GetDocument)
			r.Delete("/{id}", s.DeleteDocument)
			r.Get("/{id}/similar", s.SimilarDocuments)
		})
		r.Route("/users/{user}", func(r gochi.Router) {
			r.Post("/interactions", s.RecordInteraction)
			r.Get("/interactions", s.ListInteractions)
			r.Get("/recommendations", s.Recommend)
		})
		r.Post("/engine/rebuild", s.RebuildEngine)
	})
}

// UpsertDocument handles PUT /api/v1/documents/{id}.
func (s *Server) UpsertDocument(w http.ResponseWriter, r *http.Request) {
	id := gochi.URLParam(r, "id")

	var req UpsertDocumentRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	doc, err := documentFromUpsert(id, req)
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed, err.Error())
		return
	}

	created, err := s.documents.Upsert(r.Context(), &doc)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
		w.Header().Set("Location", fmt.Sprintf("/api/v1/documents/%s", id))
	}
	writeJSON(w, status, documentToResponse(&doc))
}

// GetDocument handles GET /api/v1/documents/{id}.
func (s *Server) GetDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := s.documents.Get(r.Context(), gochi.URLParam(r, "id"))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, documentToResponse(&doc))
}

// DeleteDocument handles DELETE /api/v1/documents/{id}.
func (s *Server) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	if err := s.documents.Delete(r.Context(), gochi.URLParam(r, "id")); err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListDocuments handles GET /api/v1/documents, optionally filtered by ?category.
func (s *Server) ListDocuments(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")
	if err := validateStruct(listParams{Category: category}); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed, err.Error())
		return
	}

	docs, err := s.documents.ListByCategory(r.Context(), category)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	items := make([]DocumentResponse, len(docs))
	for i := range docs {
		items[i] = documentToResponse(&docs[i])
	}
	writeJSON(w, http.StatusOK, DocumentListResponse{Items: items, Total: len(items)})
}

// PopularDocuments handles GET /api/v1/documents/popular.
func (s *Server) PopularDocuments(w http.ResponseWriter, r *http.Request) {
	limit, ok := parseLimit(w, r)
	if !ok {
		return
	}

	results, err := s.recommendations.Popular(r.Context(), limit)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resultsToResponse(results))
}

// SimilarDocuments handles GET /api/v1/documents/{id}/similar.
func (s *Server) SimilarDocuments(w http.ResponseWriter, r *http.Request) {
	id := gochi.URLParam(r, "id")
	if err := validateStruct(pathParams{DocumentID: id}); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed, err.Error())
		return
	}
	limit, ok := parseLimit(w, r)
	if !ok {
		return
	}

	results, err := s.recommendations.Similar(r.Context(), id, limit)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resultsToResponse(results))
}

// RecordInteraction handles POST /api/v1/users/{user}/interactions.
func (s *Server) RecordInteraction(w http.ResponseWriter, r *http.Request) {
	user := gochi.URLParam(r, "user")
	if err := validateStruct(pathParams{UserID: user}); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed, err.Error())
		return
	}

	var req RecordInteractionRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	in, err := dominter.New(user, req.DocumentID, dominter.Kind(req.Kind))
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed, err.Error())
		return
	}

	if err := s.interactions.Record(r.Context(), &in); err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListInteractions handles GET /api/v1/users/{user}/interactions.
func (s *Server) ListInteractions(w http.ResponseWriter, r *http.Request) {
	user := gochi.URLParam(r, "user")
	if err := validateStruct(pathParams{UserID: user}); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed, err.Error())
		return
	}

	history, err := s.interactions.History(r.Context(), user)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	resp := InteractionListResponse{
		UserID:      user,
		DocumentIDs: make([]string, len(history)),
		Items:       make([]InteractionItem, len(history)),
	}
	for i, a := range history {
		kinds := make([]string, len(a.Kinds))
		for j, k := range a.Kinds {
			kinds[j] = string(k)
		}
		resp.DocumentIDs[i] = a.DocumentID
		resp.Items[i] = InteractionItem{DocumentID: a.DocumentID, Kinds: kinds}
	}
	writeJSON(w, http.StatusOK, resp)
}

// Recommend handles GET /api/v1/users/{user}/recommendations.
func (s *Server) Recommend(w http.ResponseWriter, r *http.Request) {
	user := gochi.URLParam(r, "user")
	if err := validateStruct(pathParams{UserID: user}); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed, err.Error())
		return
	}
	limit, ok := parseLimit(w, r)
	if !ok {
		return
	}

	results, err := s.recommendations.Recommend(r.Context(), user, limit)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resultsToResponse(results))
}

// RebuildEngine handles POST /api/v1/engine/rebuild.
func (s *Server) RebuildEngine(w http.ResponseWriter, r *http.Request) {
	stats, err := s.recommendations.Rebuild(r.Context())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, RebuildResponse{
		Documents: stats.Documents,
		Terms:     stats.Terms,
		BuiltAt:   stats.BuiltAt.UTC(),
	})
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

	writeJSON(w, httpStatus, HealthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// decodeBody reads and validates a JSON body. Writes a 400 and returns false on failure.
func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid request body: "+err.Error())
		return false
	}
	if err := validateStruct(v); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed, err.Error())
		return false
	}
	return true
}

// parseLimit reads ?limit. Absent means 0 (service default).
func parseLimit(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "limit must be an integer")
		return 0, false
	}
	if err := validateStruct(limitParams{Limit: n}); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed, err.Error())
		return 0, false
	}
	return n, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrDocumentNotFound,
		domain.ErrInvalidDocument,
		domain.ErrInvalidInteraction,
		domain.ErrInvalidRequest,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := logpkg.FromContext(r.Context(), s.logger)
	log.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, ErrorCodeInternalError, "internal error")
}

func documentFromUpsert(id string, req UpsertDocumentRequest) (domdoc.Document, error) {
	status, err := domdoc.ParseStatus(req.Status)
	if err != nil {
		return domdoc.Document{}, fmt.Errorf("%w: %w", domain.ErrInvalidDocument, err)
	}

	var publishedAt time.Time
	if req.PublishedAt != nil {
		publishedAt = *req.PublishedAt
	}

	doc, err := domdoc.New(id, req.Title, req.Body, status, req.Category, publishedAt)
	if err != nil {
		return domdoc.Document{}, fmt.Errorf("build document: %w", err)
	}
	return doc, nil
}

func documentToResponse(doc *domdoc.Document) DocumentResponse {
	return DocumentResponse{
		ID:          doc.ID(),
		Title:       doc.Title(),
		Body:        doc.Body(),
		Status:      string(doc.Status()),
		Category:    doc.Category(),
		PublishedAt: timePtr(doc.PublishedAt()),
		Eligible:    doc.Eligible(),
	}
}

func resultsToResponse(results []recommendation.Result) RecommendationResponse {
	items := make([]ScoredDocument, len(results))
	for i := range results {
		doc := results[i].Document()
		items[i] = ScoredDocument{
			ID:          doc.ID(),
			Title:       doc.Title(),
			Category:    doc.Category(),
			PublishedAt: timePtr(doc.PublishedAt()),
			Score:       results[i].Score(),
		}
	}
	return RecommendationResponse{Items: items}
}

func timePtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
