package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"trouvemamission-service/internal/domain"
)

type stubUseCase struct {
	dashboard domain.Dashboard
	err       error
}

func (s stubUseCase) Dashboard(ctx context.Context) (domain.Dashboard, error) {
	return s.dashboard, s.err
}

func TestHandler_ReturnsDashboard(t *testing.T) {
	t.Parallel()

	handler := New(stubUseCase{dashboard: domain.Dashboard{TotalActiveProjects: 2, ActiveAssignments: 5, OverallProjectProgress: 37.5}})
	router := chi.NewRouter()
	handler.Register(router)

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body domain.Dashboard
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, int64(2), body.TotalActiveProjects)
	require.Equal(t, int64(5), body.ActiveAssignments)
	require.InDelta(t, 37.5, body.OverallProjectProgress, 0.001)
}

func TestHandler_InternalError(t *testing.T) {
	t.Parallel()

	handler := New(stubUseCase{err: errors.New("db down")})
	router := chi.NewRouter()
	handler.Register(router)

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.NotContains(t, rec.Body.String(), "db down")
}
