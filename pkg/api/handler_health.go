package api

import (
	"net/http"

	echo "github.com/labstack/echo/v5"

	"github.com/medsync-ai/orchestrator/pkg/version"
)

// healthHandler handles GET /health (spec.md §6 "Health endpoint").
// Returns a minimal, safe response suitable for unauthenticated access.
// External collaborators are never returned unhealthy outright — they
// degrade the status but the system still serves best-effort responses
// (spec.md §7), so a liveness probe should not restart this process over
// a degraded LLM provider or vector store.
func (s *Server) healthHandler(c *echo.Context) error {
	resp := &HealthResponse{Status: "ok", Version: version.Full()}

	if s.healthMonitor != nil {
		if degraded := s.healthMonitor.Degraded(); len(degraded) > 0 {
			resp.Status = "degraded"
			resp.DegradedCollaborators = degraded
		}
	}

	return c.JSON(http.StatusOK, resp)
}
