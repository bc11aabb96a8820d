package chi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/newsrec/internal/db/sqlite"
	documentrepo "github.com/kailas-cloud/newsrec/internal/repository/document"
	interactionrepo "github.com/kailas-cloud/newsrec/internal/repository/interaction"
	documentuc "github.com/kailas-cloud/newsrec/internal/usecase/document"
	healthuc "github.com/kailas-cloud/newsrec/internal/usecase/health"
	interactionuc "github.com/kailas-cloud/newsrec/internal/usecase/interaction"
	recommenduc "github.com/kailas-cloud/newsrec/internal/usecase/recommend"
)

// --- Helpers ---

func newTestRouter(t *testing.T, apiKeys ...string) http.Handler {
	t.Helper()
	store, err := sqlite.NewStore(sqlite.MemoryPath)
	if err != nil {
		t.Fatalf("sqlite store: %v", err)
	}
	t.Cleanup(store.Close)

	docRepo := documentrepo.New(store)
	interRepo := interactionrepo.New(store)
	recSvc := recommenduc.New(docRepo, interRepo, nil)
	server := NewServer(
		documentuc.New(docRepo, interRepo, recSvc),
		interactionuc.New(interRepo, docRepo),
		recSvc,
		healthuc.New(store, recSvc),
		nil,
	)
	return NewRouter(server, apiKeys, nil)
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rr.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v (body %q)", err, rr.Body.String())
	}
	return v
}

func putDoc(t *testing.T, h http.Handler, id, title, body string) {
	t.Helper()
	rr := do(t, h, http.MethodPut, "/api/v1/documents/"+id, map[string]any{
		"title":        title,
		"body":         body,
		"status":       "active",
		"published_at": "2024-05-01T12:00:00Z",
	})
	if rr.Code != http.StatusCreated && rr.Code != http.StatusOK {
		t.Fatalf("put %s: status %d, body %s", id, rr.Code, rr.Body.String())
	}
}

func seedCorpus(t *testing.T, h http.Handler) {
	t.Helper()
	putDoc(t, h, "1", "Cats and dogs", "Cats are great pets. Dogs are loyal pets.")
	putDoc(t, h, "2", "Dogs training", "Training dogs takes patience. Dogs are loyal.")
	putDoc(t, h, "3", "Stock market", "The stock market crashed today due to inflation.")
	putDoc(t, h, "4", "Cooking pasta", "Boil water, add salt and cook the pasta.")
	putDoc(t, h, "5", "Gardening tips", "Water your tomatoes every morning.")
}

// --- Tests ---

func TestUpsertDocument_CreateThenUpdate(t *testing.T) {
	h := newTestRouter(t)
	body := map[string]any{"title": "Hello", "body": "World", "status": "active", "published_at": "2024-01-02T03:04:05Z"}

	rr := do(t, h, http.MethodPut, "/api/v1/documents/a1", body)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create: got %d, want %d (%s)", rr.Code, http.StatusCreated, rr.Body.String())
	}
	if loc := rr.Header().Get("Location"); loc != "/api/v1/documents/a1" {
		t.Errorf("unexpected Location %q", loc)
	}
	doc := decode[DocumentResponse](t, rr)
	if doc.ID != "a1" || !doc.Eligible {
		t.Errorf("unexpected document: %+v", doc)
	}

	rr = do(t, h, http.MethodPut, "/api/v1/documents/a1", body)
	if rr.Code != http.StatusOK {
		t.Errorf("update: got %d, want %d", rr.Code, http.StatusOK)
	}
}

func TestUpsertDocument_Validation(t *testing.T) {
	h := newTestRouter(t)

	tests := []struct {
		name string
		path string
		body any
		code ErrorCode
	}{
		{"bad json", "/api/v1/documents/a1", "{", ErrorCodeBadRequest},
		{"unknown status", "/api/v1/documents/a1", map[string]any{"status": "archived"}, ErrorCodeValidationFailed},
		{"bad id", "/api/v1/documents/a.b", map[string]any{"title": "x"}, ErrorCodeValidationFailed},
		{"title too long", "/api/v1/documents/a1", map[string]any{"title": strings.Repeat("x", 600)}, ErrorCodeValidationFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := do(t, h, http.MethodPut, tt.path, tt.body)
			if rr.Code != http.StatusBadRequest {
				t.Fatalf("got %d, want 400 (%s)", rr.Code, rr.Body.String())
			}
			if resp := decode[ErrorResponse](t, rr); resp.Code != tt.code {
				t.Errorf("code: got %s, want %s", resp.Code, tt.code)
			}
		})
	}
}

func TestGetDocument_NotFound(t *testing.T) {
	h := newTestRouter(t)

	rr := do(t, h, http.MethodGet, "/api/v1/documents/missing", nil)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("got %d, want 404", rr.Code)
	}
	if resp := decode[ErrorResponse](t, rr); resp.Code != ErrorCodeDocumentNotFound {
		t.Errorf("code: got %s", resp.Code)
	}
}

func TestListAndDeleteDocuments(t *testing.T) {
	h := newTestRouter(t)
	seedCorpus(t, h)

	rr := do(t, h, http.MethodGet, "/api/v1/documents", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("list: got %d", rr.Code)
	}
	if list := decode[DocumentListResponse](t, rr); list.Total != 5 {
		t.Errorf("expected 5 documents, got %d", list.Total)
	}

	if rr := do(t, h, http.MethodDelete, "/api/v1/documents/3", nil); rr.Code != http.StatusNoContent {
		t.Fatalf("delete: got %d", rr.Code)
	}
	if rr := do(t, h, http.MethodDelete, "/api/v1/documents/3", nil); rr.Code != http.StatusNotFound {
		t.Errorf("second delete: got %d, want 404", rr.Code)
	}
}

func TestSimilarDocuments(t *testing.T) {
	h := newTestRouter(t)
	seedCorpus(t, h)

	rr := do(t, h, http.MethodGet, "/api/v1/documents/1/similar?limit=2", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("got %d (%s)", rr.Code, rr.Body.String())
	}
	resp := decode[RecommendationResponse](t, rr)
	if len(resp.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(resp.Items))
	}
	if resp.Items[0].ID != "2" || resp.Items[0].Score <= 0 {
		t.Errorf("expected doc 2 with positive score first, got %+v", resp.Items[0])
	}
}

func TestSimilarDocuments_BadLimit(t *testing.T) {
	h := newTestRouter(t)

	for _, q := range []string{"limit=abc", "limit=-1", "limit=5000"} {
		rr := do(t, h, http.MethodGet, "/api/v1/documents/1/similar?"+q, nil)
		if rr.Code != http.StatusBadRequest {
			t.Errorf("%s: got %d, want 400", q, rr.Code)
		}
	}
}

func TestSimilarDocuments_SeesWrites(t *testing.T) {
	h := newTestRouter(t)
	putDoc(t, h, "1", "Cats and dogs", "Cats are great pets. Dogs are loyal pets.")

	rr := do(t, h, http.MethodGet, "/api/v1/documents/1/similar", nil)
	if resp := decode[RecommendationResponse](t, rr); len(resp.Items) != 0 {
		t.Fatalf("expected no neighbours yet, got %+v", resp.Items)
	}

	putDoc(t, h, "2", "Dogs training", "Training dogs takes patience. Dogs are loyal.")
	rr = do(t, h, http.MethodGet, "/api/v1/documents/1/similar", nil)
	if resp := decode[RecommendationResponse](t, rr); len(resp.Items) != 1 {
		t.Errorf("expected new document after write, got %+v", resp.Items)
	}
}

func TestInteractionsAndRecommendations(t *testing.T) {
	h := newTestRouter(t)
	seedCorpus(t, h)

	rr := do(t, h, http.MethodPost, "/api/v1/users/alice/interactions",
		map[string]any{"document_id": "1", "kind": "comment"})
	if rr.Code != http.StatusNoContent {
		t.Fatalf("record: got %d (%s)", rr.Code, rr.Body.String())
	}

	rr = do(t, h, http.MethodGet, "/api/v1/users/alice/interactions", nil)
	list := decode[InteractionListResponse](t, rr)
	if len(list.DocumentIDs) != 1 || list.DocumentIDs[0] != "1" {
		t.Errorf("unexpected interactions: %+v", list)
	}

	rr = do(t, h, http.MethodGet, "/api/v1/users/alice/recommendations", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("recommend: got %d", rr.Code)
	}
	resp := decode[RecommendationResponse](t, rr)
	if len(resp.Items) != 1 || resp.Items[0].ID != "2" {
		t.Errorf("expected only doc 2, got %+v", resp.Items)
	}
}

func TestRecordInteraction_Errors(t *testing.T) {
	h := newTestRouter(t)
	seedCorpus(t, h)

	rr := do(t, h, http.MethodPost, "/api/v1/users/alice/interactions", map[string]any{"document_id": "missing"})
	if rr.Code != http.StatusNotFound {
		t.Errorf("unknown document: got %d, want 404", rr.Code)
	}

	rr = do(t, h, http.MethodPost, "/api/v1/users/alice/interactions", map[string]any{"kind": "view"})
	if rr.Code != http.StatusBadRequest {
		t.Errorf("missing document_id: got %d, want 400", rr.Code)
	}

	rr = do(t, h, http.MethodPost, "/api/v1/users/alice/interactions",
		map[string]any{"document_id": "1", "kind": "share"})
	if rr.Code != http.StatusBadRequest {
		t.Errorf("unknown kind: got %d, want 400", rr.Code)
	}
}

func record(t *testing.T, h http.Handler, user, doc, kind string) {
	t.Helper()
	rr := do(t, h, http.MethodPost, "/api/v1/users/"+user+"/interactions",
		map[string]any{"document_id": doc, "kind": kind})
	if rr.Code != http.StatusNoContent {
		t.Fatalf("record %s/%s/%s: got %d (%s)", user, doc, kind, rr.Code, rr.Body.String())
	}
}

func TestListInteractions_ReportsKinds(t *testing.T) {
	h := newTestRouter(t)
	seedCorpus(t, h)
	record(t, h, "alice", "2", "view")
	record(t, h, "alice", "2", "like")
	record(t, h, "alice", "1", "comment")

	rr := do(t, h, http.MethodGet, "/api/v1/users/alice/interactions", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("got %d (%s)", rr.Code, rr.Body.String())
	}
	list := decode[InteractionListResponse](t, rr)
	if len(list.Items) != 2 {
		t.Fatalf("expected 2 items, got %+v", list.Items)
	}
	if it := list.Items[0]; it.DocumentID != "1" || len(it.Kinds) != 1 || it.Kinds[0] != "comment" {
		t.Errorf("unexpected first item: %+v", it)
	}
	if it := list.Items[1]; it.DocumentID != "2" || len(it.Kinds) != 2 || it.Kinds[0] != "like" || it.Kinds[1] != "view" {
		t.Errorf("unexpected second item: %+v", it)
	}
	if len(list.DocumentIDs) != 2 || list.DocumentIDs[0] != "1" || list.DocumentIDs[1] != "2" {
		t.Errorf("unexpected document ids: %v", list.DocumentIDs)
	}
}

func TestUserRoutes_RejectOversizedUserID(t *testing.T) {
	h := newTestRouter(t)
	seedCorpus(t, h)
	user := strings.Repeat("u", 300)

	for _, tc := range []struct {
		method, path string
		body         any
	}{
		{http.MethodGet, "/api/v1/users/" + user + "/interactions", nil},
		{http.MethodPost, "/api/v1/users/" + user + "/interactions", map[string]any{"document_id": "1"}},
		{http.MethodGet, "/api/v1/users/" + user + "/recommendations", nil},
	} {
		rr := do(t, h, tc.method, tc.path, tc.body)
		if rr.Code != http.StatusBadRequest {
			t.Errorf("%s %s: got %d, want 400", tc.method, tc.path[:30], rr.Code)
			continue
		}
		if resp := decode[ErrorResponse](t, rr); resp.Code != ErrorCodeValidationFailed {
			t.Errorf("%s: code %s, want %s", tc.method, resp.Code, ErrorCodeValidationFailed)
		}
	}
}

func TestPopularDocuments(t *testing.T) {
	h := newTestRouter(t)
	seedCorpus(t, h)
	record(t, h, "alice", "3", "view")
	record(t, h, "bob", "3", "view")
	record(t, h, "bob", "3", "view")
	record(t, h, "alice", "5", "view")
	record(t, h, "alice", "4", "like")

	rr := do(t, h, http.MethodGet, "/api/v1/documents/popular?limit=3", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("got %d (%s)", rr.Code, rr.Body.String())
	}
	resp := decode[RecommendationResponse](t, rr)
	wantIDs := []string{"3", "5", "1"}
	wantScores := []float64{3, 1, 0}
	if len(resp.Items) != len(wantIDs) {
		t.Fatalf("expected %d items, got %+v", len(wantIDs), resp.Items)
	}
	for i, it := range resp.Items {
		if it.ID != wantIDs[i] || it.Score != wantScores[i] {
			t.Errorf("item %d = (%s, %v), want (%s, %v)", i, it.ID, it.Score, wantIDs[i], wantScores[i])
		}
	}

	if rr := do(t, h, http.MethodGet, "/api/v1/documents/popular?limit=x", nil); rr.Code != http.StatusBadRequest {
		t.Errorf("bad limit: got %d, want 400", rr.Code)
	}
}

func TestPopularDocuments_ForgetsDeletedViews(t *testing.T) {
	h := newTestRouter(t)
	seedCorpus(t, h)
	record(t, h, "alice", "3", "view")

	if rr := do(t, h, http.MethodDelete, "/api/v1/documents/3", nil); rr.Code != http.StatusNoContent {
		t.Fatalf("delete: got %d", rr.Code)
	}
	putDoc(t, h, "3", "Stock market", "The stock market recovered.")

	rr := do(t, h, http.MethodGet, "/api/v1/documents/popular?limit=1", nil)
	resp := decode[RecommendationResponse](t, rr)
	if len(resp.Items) != 1 || resp.Items[0].Score != 0 {
		t.Errorf("recreated document must start without views, got %+v", resp.Items)
	}
}

func TestListDocuments_ByCategory(t *testing.T) {
	h := newTestRouter(t)
	for _, d := range []struct{ id, category string }{
		{"a", "pets"}, {"b", "finance"}, {"c", "pets"},
	} {
		rr := do(t, h, http.MethodPut, "/api/v1/documents/"+d.id, map[string]any{
			"title": "Title " + d.id, "body": "Body", "status": "active",
			"category": d.category, "published_at": "2024-05-01T12:00:00Z",
		})
		if rr.Code != http.StatusCreated {
			t.Fatalf("put %s: got %d", d.id, rr.Code)
		}
	}

	rr := do(t, h, http.MethodGet, "/api/v1/documents?category=pets", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("got %d", rr.Code)
	}
	list := decode[DocumentListResponse](t, rr)
	if list.Total != 2 || list.Items[0].ID != "a" || list.Items[1].ID != "c" {
		t.Errorf("unexpected listing: %+v", list)
	}

	rr = do(t, h, http.MethodGet, "/api/v1/documents?category="+strings.Repeat("c", 200), nil)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("oversized category: got %d, want 400", rr.Code)
	}
}

func TestRecommend_NoHistory(t *testing.T) {
	h := newTestRouter(t)
	seedCorpus(t, h)

	rr := do(t, h, http.MethodGet, "/api/v1/users/bob/recommendations", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("got %d", rr.Code)
	}
	if resp := decode[RecommendationResponse](t, rr); len(resp.Items) != 0 {
		t.Errorf("expected no items, got %+v", resp.Items)
	}
}

func TestRebuildEngine(t *testing.T) {
	h := newTestRouter(t)
	seedCorpus(t, h)

	rr := do(t, h, http.MethodPost, "/api/v1/engine/rebuild", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("got %d", rr.Code)
	}
	if resp := decode[RebuildResponse](t, rr); resp.Documents != 5 || resp.Terms == 0 {
		t.Errorf("unexpected stats: %+v", resp)
	}
}

func TestHealthCheck(t *testing.T) {
	h := newTestRouter(t)

	rr := do(t, h, http.MethodGet, "/health", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("got %d", rr.Code)
	}
	resp := decode[HealthResponse](t, rr)
	if resp.Status != "ok" || resp.Checks["database"] != "ok" || resp.Checks["engine"] != "pending" {
		t.Errorf("unexpected health: %+v", resp)
	}
}

func TestRouter_AuthAndRequestID(t *testing.T) {
	h := newTestRouter(t, "secret")

	rr := do(t, h, http.MethodGet, "/api/v1/documents", nil)
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("no token: got %d, want 401", rr.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/documents", http.NoBody)
	req.Header.Set("Authorization", "Bearer secret")
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Errorf("with token: got %d, want 200", rr.Code)
	}
	if rr.Header().Get("X-Request-ID") == "" {
		t.Error("expected X-Request-ID header")
	}

	if rr := do(t, h, http.MethodGet, "/health", nil); rr.Code != http.StatusOK {
		t.Errorf("health without token: got %d", rr.Code)
	}
}

func TestRouter_NotFound(t *testing.T) {
	h := newTestRouter(t)

	rr := do(t, h, http.MethodGet, "/api/v2/nothing", nil)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("got %d", rr.Code)
	}
	if resp := decode[ErrorResponse](t, rr); resp.Code != ErrorCodeNotFound {
		t.Errorf("code: got %s", resp.Code)
	}
}

func TestJSONRecoverer(t *testing.T) {
	h := JSONRecoverer(nopLogger())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", http.NoBody))
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("got %d", rr.Code)
	}
	if resp := decode[ErrorResponse](t, rr); resp.Code != ErrorCodeInternalError {
		t.Errorf("code: got %s", resp.Code)
	}
}

func nopLogger() *zap.Logger { return zap.NewNop() }
