package contact

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portfolio-service/common/logger"
	commonmetrics "portfolio-service/common/metrics"
	"portfolio-service/internal/auth"
	"portfolio-service/internal/metrics"
	"portfolio-service/internal/ratelimit"
	"portfolio-service/testing/testdb"
)

func remoteHost(r *http.Request) string {
	host, _, _ := strings.Cut(r.RemoteAddr, ":")
	return host
}

func setupRouter(t *testing.T, submitMiddlewares ...func(http.Handler) http.Handler) chi.Router {
	t.Helper()

	database := testdb.SetupSQLite(t)
	repo := NewRepository(database, commonmetrics.NewMock())
	svc := NewService(repo, auth.NewSecretVerifier(adminSecret), metrics.NewMock(), logger.Discard())

	router := chi.NewRouter()
	NewHandler(svc, logger.Discard(), remoteHost).RegisterRoutes(router, submitMiddlewares...)
	return router
}

func doRequest(t *testing.T, router http.Handler, method, path, credential string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.RemoteAddr = "203.0.113.7:5123"
	if credential != "" {
		req.Header.Set("Authorization", "Bearer "+credential)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v))
	return v
}

func TestHandler_ContactLifecycle(t *testing.T) {
	router := setupRouter(t)

	rec := doRequest(t, router, http.MethodPost, "/api/contact", "", SubmitRequest{
		Name: "Al", Email: "al@example.com", Message: validMessage,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	created := decode[SubmitResponse](t, rec)
	assert.True(t, created.Success)
	assert.Equal(t, AcknowledgementMessage, created.Message)
	assert.Equal(t, int64(1), created.ID)

	rec = doRequest(t, router, http.MethodPost, "/api/contact", "", SubmitRequest{
		Name: "A", Email: "al@example.com", Message: "Hi",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	rejected := decode[struct {
		Success bool     `json:"success"`
		Errors  []string `json:"errors"`
	}](t, rec)
	assert.False(t, rejected.Success)
	assert.Contains(t, rejected.Errors, ViolationName)
	assert.Contains(t, rejected.Errors, ViolationMessage)

	rec = doRequest(t, router, http.MethodGet, "/api/contacts", "wrong", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Unauthorized", decode[map[string]string](t, rec)["error"])

	rec = doRequest(t, router, http.MethodGet, "/api/contacts", adminSecret, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	raw := rec.Body.String()
	assert.NotContains(t, raw, "203.0.113.7", "address must not be exposed")
	assert.NotContains(t, raw, "ip_address")
	list := decode[ListResponse](t, rec)
	assert.True(t, list.Success)
	require.Equal(t, 1, list.Total)
	assert.Equal(t, int64(1), list.Contacts[0].ID)
	assert.Equal(t, StatusNew, list.Contacts[0].Status)

	rec = doRequest(t, router, http.MethodPatch, "/api/contacts/1", adminSecret, map[string]string{"status": "replied"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decode[map[string]any](t, rec)["success"])

	rec = doRequest(t, router, http.MethodGet, "/api/contacts", adminSecret, nil)
	list = decode[ListResponse](t, rec)
	require.Len(t, list.Contacts, 1)
	assert.Equal(t, StatusReplied, list.Contacts[0].Status)
}

func TestHandler_SubmitAssignsIncreasingIds(t *testing.T) {
	router := setupRouter(t)

	var last int64
	for i := 0; i < 3; i++ {
		rec := doRequest(t, router, http.MethodPost, "/api/contact", "", SubmitRequest{
			Name: "Al", Email: "al@example.com", Message: validMessage,
		})
		require.Equal(t, http.StatusOK, rec.Code)
		id := decode[SubmitResponse](t, rec).ID
		assert.Greater(t, id, last)
		last = id
	}
}

func TestHandler_SubmitMalformedBody(t *testing.T) {
	router := setupRouter(t)

	rec := doRequest(t, router, http.MethodPost, "/api/contact", "", `{"name":`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, false, decode[map[string]any](t, rec)["success"])
}

func TestHandler_SubmitEmptyBodyReportsFieldViolations(t *testing.T) {
	router := setupRouter(t)

	for _, body := range []string{"", "{}"} {
		rec := doRequest(t, router, http.MethodPost, "/api/contact", "", body)

		require.Equal(t, http.StatusBadRequest, rec.Code, "body %q", body)
		got := decode[struct {
			Success bool     `json:"success"`
			Errors  []string `json:"errors"`
		}](t, rec)
		assert.False(t, got.Success)
		assert.Equal(t, []string{ViolationName, ViolationEmail, ViolationMessage}, got.Errors, "body %q", body)
	}

	rec := doRequest(t, router, http.MethodGet, "/api/contacts", adminSecret, nil)
	assert.Equal(t, 0, decode[ListResponse](t, rec).Total)
}

func TestHandler_UpdateStatusErrors(t *testing.T) {
	router := setupRouter(t)

	rec := doRequest(t, router, http.MethodPost, "/api/contact", "", SubmitRequest{
		Name: "Al", Email: "al@example.com", Message: validMessage,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	tests := []struct {
		name       string
		path       string
		credential string
		body       any
		wantStatus int
		wantError  string
	}{
		{"bogus status with bad credential", "/api/contacts/1", "wrong", map[string]string{"status": "bogus"}, http.StatusBadRequest, "Invalid status"},
		{"missing status", "/api/contacts/1", adminSecret, map[string]string{}, http.StatusBadRequest, "Invalid status"},
		{"wrong credential", "/api/contacts/1", "wrong", map[string]string{"status": "read"}, http.StatusUnauthorized, "Unauthorized"},
		{"missing credential", "/api/contacts/1", "", map[string]string{"status": "read"}, http.StatusUnauthorized, "Unauthorized"},
		{"non numeric id", "/api/contacts/abc", adminSecret, map[string]string{"status": "read"}, http.StatusBadRequest, "Invalid contact ID"},
		{"unknown id", "/api/contacts/999", adminSecret, map[string]string{"status": "read"}, http.StatusNotFound, "Contact not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, router, http.MethodPatch, tt.path, tt.credential, tt.body)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantError, decode[map[string]string](t, rec)["error"])
		})
	}
}

func TestHandler_SubmitRateLimited(t *testing.T) {
	limiter := ratelimit.NewLimiter(ratelimit.Policy{
		Name:    "contact",
		Limit:   5,
		Window:  60 * time.Minute,
		Message: "Too many contact form submissions, please try again later.",
	}, ratelimit.NewMemoryStore())
	router := setupRouter(t, ratelimit.Middleware(limiter, remoteHost, metrics.NewMock(), logger.Discard()))

	for i := 0; i < 5; i++ {
		rec := doRequest(t, router, http.MethodPost, "/api/contact", "", SubmitRequest{
			Name: "Al", Email: "al@example.com", Message: validMessage,
		})
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := doRequest(t, router, http.MethodPost, "/api/contact", "", SubmitRequest{
		Name: "Al", Email: "al@example.com", Message: validMessage,
	})
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "Too many contact form submissions, please try again later.", decode[map[string]string](t, rec)["error"])

	rec = doRequest(t, router, http.MethodGet, "/api/contacts", adminSecret, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 5, decode[ListResponse](t, rec).Total, "rejected request must not reach the store")
}
