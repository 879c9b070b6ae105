// Package api provides the HTTP surface for the orchestrator: the
// chat-stream endpoint (spec.md §6 "Wire protocol") and the health
// endpoint (spec.md §6 "Health endpoint").
package api

import (
	"context"
	"fmt"
	"net"
	"net/http"

	echo "github.com/labstack/echo/v5"
	"github.com/labstack/echo/v5/middleware"

	"github.com/medsync-ai/orchestrator/pkg/broker"
	"github.com/medsync-ai/orchestrator/pkg/health"
	"github.com/medsync-ai/orchestrator/pkg/models"
)

// runner is the subset of *orchestrator.Orchestrator the chat-stream handler
// depends on, narrowed so tests can exercise the handler's request
// validation and SSE framing without wiring a full orchestrator graph.
type runner interface {
	Run(ctx context.Context, req models.RequestContext, b *broker.Broker)
}

// Server is the HTTP API server.
type Server struct {
	echo          *echo.Echo
	httpServer    *http.Server
	orchestrator  runner
	healthMonitor *health.Monitor // nil until SetHealthMonitor is called
}

// NewServer creates a new API server with Echo v5, wired against the given
// orchestrator.
func NewServer(orch runner) *Server {
	e := echo.New()

	s := &Server{
		echo:         e,
		orchestrator: orch,
	}

	s.setupRoutes()
	return s
}

// SetHealthMonitor wires the collaborator health monitor into the health
// endpoint. Without it, /health reports "ok" unconditionally.
func (s *Server) SetHealthMonitor(monitor *health.Monitor) {
	s.healthMonitor = monitor
}

// ValidateWiring checks that all required dependencies have been wired via
// their Set* methods. Call this after all Set* calls and before
// Start/StartWithListener, so wiring gaps are caught at startup rather than
// surfacing as panics at request time.
func (s *Server) ValidateWiring() error {
	if s.orchestrator == nil {
		return fmt.Errorf("server wiring incomplete: orchestrator not set (call NewServer with a non-nil orchestrator)")
	}
	return nil
}

// setupRoutes registers the routes the wire protocol defines (spec.md §6):
// the chat-stream endpoint and the health endpoint.
func (s *Server) setupRoutes() {
	// Server-wide body size limit. The only request body this server reads
	// is one chat-stream message, so 2 MB is generous headroom.
	s.echo.Use(middleware.BodyLimit(2 * 1024 * 1024))
	s.echo.Use(securityHeaders())

	s.echo.GET("/health", s.healthHandler)
	s.echo.POST("/api/v1/chat/stream", s.chatStreamHandler)
}

// Start starts the HTTP server on the given address (blocking).
func (s *Server) Start(addr string) error {
	s.httpServer = &http.Server{
		Addr:    addr,
		Handler: s.echo,
	}
	return s.httpServer.ListenAndServe()
}

// StartWithListener starts the HTTP server on a pre-created listener. Used
// by test infrastructure to serve on a random OS-assigned port.
func (s *Server) StartWithListener(ln net.Listener) error {
	s.httpServer = &http.Server{Handler: s.echo}
	return s.httpServer.Serve(ln)
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}
