package audit

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuditRouter(repo Repository) http.Handler {
	h := NewHandler(slog.Default(), NewService(repo, slog.Default()))
	r := chi.NewRouter()
	r.Route("/audit", h.MountRoutes)
	return r
}

func TestTimelineEndpoint(t *testing.T) {
	repo := &mockRepository{}
	repo.events = append(repo.events,
		Event{At: time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC), Action: "save.completed", Entity: "bill", EntityID: "bill-1"},
		Event{At: time.Date(2026, 9, 1, 10, 5, 0, 0, time.UTC), Action: "save.partial", Entity: "bill", EntityID: "bill-2", Detail: "return create failed"},
	)
	router := newAuditRouter(repo)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/audit/timeline?page=1&page_size=20", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Rows []struct {
			Action   string `json:"action"`
			EntityID string `json:"entity_id"`
			Detail   string `json:"detail"`
		} `json:"rows"`
		Paging PagingInfo `json:"paging"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Rows, 2)
	assert.Equal(t, "save.partial", resp.Rows[1].Action)
	assert.Equal(t, "return create failed", resp.Rows[1].Detail)
	assert.Equal(t, 1, resp.Paging.Page)
	assert.False(t, resp.Paging.HasNext)
}

func TestTimelineEndpointRejectsBadTimestamp(t *testing.T) {
	router := newAuditRouter(&mockRepository{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/audit/timeline?from=yesterday", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "RFC 3339")
}

func TestTimelineEndpointRepositoryFailure(t *testing.T) {
	router := newAuditRouter(&mockRepository{windowErr: errors.New("connection refused")})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/audit/timeline", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
