package chi

import "time"

// ErrorCode is a machine-readable error identifier.
type ErrorCode string

// Error codes returned in ErrorResponse.Code.
const (
	ErrorCodeBadRequest       ErrorCode = "bad_request"
	ErrorCodeValidationFailed ErrorCode = "validation_failed"
	ErrorCodeUnauthorized     ErrorCode = "unauthorized"
	ErrorCodeDocumentNotFound ErrorCode = "document_not_found"
	ErrorCodeNotFound         ErrorCode = "not_found"
	ErrorCodeInternalError    ErrorCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// UpsertDocumentRequest is the body of PUT /api/v1/documents/{id}.
type UpsertDocumentRequest struct {
	Title       string     `json:"title" validate:"max=512"`
	Body        string     `json:"body" validate:"max=163840"`
	Status      string     `json:"status" validate:"omitempty,oneof=active inactive draft"`
	Category    string     `json:"category" validate:"max=128"`
	PublishedAt *time.Time `json:"published_at"`
}

// DocumentResponse is a stored document.
type DocumentResponse struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Body        string     `json:"body"`
	Status      string     `json:"status"`
	Category    string     `json:"category,omitempty"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	Eligible    bool       `json:"eligible"`
}

// DocumentListResponse is the body of GET /api/v1/documents.
type DocumentListResponse struct {
	Items []DocumentResponse `json:"items"`
	Total int                `json:"total"`
}

// RecordInteractionRequest is the body of POST /api/v1/users/{user}/interactions.
type RecordInteractionRequest struct {
	DocumentID string `json:"document_id" validate:"required,max=256"`
	Kind       string `json:"kind" validate:"omitempty,oneof=comment view like"`
}

// InteractionItem lists the kinds of action a user took on one document.
type InteractionItem struct {
	DocumentID string   `json:"document_id"`
	Kinds      []string `json:"kinds"`
}

// InteractionListResponse lists the documents a user interacted with.
type InteractionListResponse struct {
	UserID      string            `json:"user_id"`
	DocumentIDs []string          `json:"document_ids"`
	Items       []InteractionItem `json:"items"`
}

// ScoredDocument is one ranked recommendation.
type ScoredDocument struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Category    string     `json:"category,omitempty"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	Score       float64    `json:"score"`
}

// RecommendationResponse is the body of the similar and recommendations endpoints.
type RecommendationResponse struct {
	Items []ScoredDocument `json:"items"`
}

// RebuildResponse describes a freshly built engine snapshot.
type RebuildResponse struct {
	Documents int       `json:"documents"`
	Terms     int       `json:"terms"`
	BuiltAt   time.Time `json:"built_at"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// limitParams holds the ?limit query parameter.
type limitParams struct {
	Limit int `json:"limit" validate:"gte=0,lte=1000"`
}

// listParams holds the document listing filters.
type listParams struct {
	Category string `json:"category" validate:"max=128"`
}

// pathParams holds route identifiers.
type pathParams struct {
	DocumentID string `json:"id" validate:"omitempty,max=256"`
	UserID     string `json:"user" validate:"omitempty,max=256"`
}
