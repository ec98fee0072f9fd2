package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ideabase/dbgateway/internal/log"
	"github.com/ideabase/dbgateway/internal/registry"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	logger, err := log.NewLogger("json", "INFO", &strings.Builder{}, &strings.Builder{})
	require.NoError(t, err)
	return NewRouter(Deps{
		Logger:   logger,
		Registry: registry.New(),
	})
}

func TestHealthEndpoint(t *testing.T) {
	r := newTestRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "ok")
}

func TestRestUnknownMethodIsBadRequest(t *testing.T) {
	r := newTestRouter(t)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/rest/patch.json", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTableMetaUnknownTable(t *testing.T) {
	r := newTestRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/rest/shop/widgets.json", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "err_msg")
}

func TestConversationRequiresLLMConfig(t *testing.T) {
	r := newTestRouter(t)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/ai/conversation.json", strings.NewReader(`{"message":"hi"}`))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.NotEqual(t, http.StatusOK, rec.Code)
}
