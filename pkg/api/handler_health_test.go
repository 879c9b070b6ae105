package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medsync-ai/orchestrator/pkg/health"
	"github.com/medsync-ai/orchestrator/pkg/orchestrator"
)

func TestHealthHandler_OKWithNoMonitor(t *testing.T) {
	s := NewServer(&orchestrator.Orchestrator{})
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	c := s.echo.NewContext(req, rec)

	require.NoError(t, s.healthHandler(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestHealthHandler_DegradedWhenCollaboratorFailing(t *testing.T) {
	monitor := health.NewMonitor([]health.Collaborator{
		{Name: "vector_store", Check: func(ctx context.Context) error { return errors.New("unreachable") }},
	})
	monitor.Start(context.Background())
	defer monitor.Stop()
	require.Eventually(t, func() bool {
		return len(monitor.Degraded()) == 1
	}, time.Second, 5*time.Millisecond)

	s := NewServer(&orchestrator.Orchestrator{})
	s.SetHealthMonitor(monitor)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	c := s.echo.NewContext(req, rec)

	require.NoError(t, s.healthHandler(c))
	assert.Contains(t, rec.Body.String(), `"status":"degraded"`)
	assert.Contains(t, rec.Body.String(), "vector_store")
}
