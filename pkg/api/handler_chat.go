package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	echo "github.com/labstack/echo/v5"

	"github.com/medsync-ai/orchestrator/pkg/broker"
	"github.com/medsync-ai/orchestrator/pkg/models"
)

const maxMessageLength = 100_000

// chatStreamHandler handles POST /api/v1/chat/stream (spec.md §6 "Wire
// protocol"). The orchestrator runs the full pipeline in its own goroutine
// and reports progress through a Broker; this handler drains that broker and
// writes each event to the client as one `data: <JSON>\n\n` line, the
// Server-Sent Events framing the wire protocol requires. The connection
// stays open until the orchestrator closes the broker, which it always
// eventually does (spec.md §7 "top-level try/finally").
func (s *Server) chatStreamHandler(c *echo.Context) error {
	var req ChatStreamRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.UID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "uid is required")
	}
	if req.Message == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "message is required")
	}
	if len(req.Message) > maxMessageLength {
		return echo.NewHTTPError(http.StatusBadRequest, "message exceeds maximum length")
	}
	if req.SessionID == "" {
		req.SessionID = uuid.NewString()
	}

	resp := c.Response()
	resp.Header().Set(echo.HeaderContentType, "text/event-stream")
	resp.Header().Set("Cache-Control", "no-cache")
	resp.Header().Set("Connection", "keep-alive")
	resp.WriteHeader(http.StatusOK)

	b := broker.New()
	reqCtx := models.RequestContext{UID: req.UID, SessionID: req.SessionID, RawQuery: req.Message}
	go s.orchestrator.Run(c.Request().Context(), reqCtx, b)

	b.Iterate(func(event models.Event) bool {
		return writeSSE(resp, event)
	})

	return nil
}

// writeSSE marshals one event to the wire frame `data: <JSON>\n\n` and
// flushes it immediately, so the client sees tokens as they're produced
// rather than buffered until the stream closes. Returns false to stop
// iteration if the write fails (client disconnected).
func writeSSE(resp *echo.Response, event models.Event) bool {
	payload, err := json.Marshal(event)
	if err != nil {
		return true
	}
	if _, err := fmt.Fprintf(resp, "data: %s\n\n", payload); err != nil {
		return false
	}
	resp.Flush()
	return true
}
