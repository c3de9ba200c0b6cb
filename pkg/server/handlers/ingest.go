package handlers

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/soundprediction/docgraph"
	"github.com/soundprediction/docgraph/pkg/server/dto"
)

// IngestHandler handles data ingestion requests.
type IngestHandler struct {
	client *docgraph.Client
	logger *slog.Logger
}

// NewIngestHandler creates a new ingest handler.
func NewIngestHandler(client *docgraph.Client, logger *slog.Logger) *IngestHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &IngestHandler{client: client, logger: logger}
}

// generateProcessID generates a unique ID for tracking async operations.
func generateProcessID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("proc_%d", time.Now().UnixNano())
	}
	return fmt.Sprintf("proc_%s", hex.EncodeToString(bytes))
}

// IngestText handles POST /api/v1/ingest/text. Text ingestion is
// synchronous; the content is already in hand.
func (h *IngestHandler) IngestText(c *gin.Context) {
	var req dto.IngestTextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		writeError(c, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	summary, err := h.client.IngestText(c.Request.Context(), req.Name, req.Content)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, docgraph.ErrCorpusLimit) {
			status = http.StatusRequestEntityTooLarge
		}
		writeError(c, status, "ingest_failed", err.Error())
		return
	}

	c.JSON(http.StatusOK, dto.IngestTextResponse{Success: true, Summary: summary})
}

// IngestSources handles POST /api/v1/ingest/sources. Fetching and
// ingesting a batch can take a while, so the work runs in the background
// and the response carries a process ID for log correlation.
func (h *IngestHandler) IngestSources(c *gin.Context) {
	var req dto.IngestSourcesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		writeError(c, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	processID := generateProcessID()

	go func() {
		defer func() {
			if r := recover(); r != nil {
				h.logger.Error("panic recovered in source ingestion",
					"process_id", processID, "panic", r)
			}
		}()

		ctx := context.Background()
		h.logger.Info("starting source ingestion",
			"process_id", processID, "sources", len(req.Sources))

		result, err := h.client.IngestSources(ctx, req.Sources)
		if err != nil {
			h.logger.Error("source ingestion failed", "process_id", processID, "error", err)
			return
		}
		h.logger.Info("source ingestion complete",
			"process_id", processID, "succeeded", result.Succeeded, "failed", result.Failed)
	}()

	c.JSON(http.StatusAccepted, dto.IngestAcceptedResponse{
		Success:   true,
		Message:   fmt.Sprintf("ingesting %d sources", len(req.Sources)),
		ProcessID: processID,
	})
}

// Clear handles DELETE /api/v1/ingest/clear.
func (h *IngestHandler) Clear(c *gin.Context) {
	if err := h.client.Clear(c.Request.Context()); err != nil {
		writeError(c, http.StatusInternalServerError, "clear_failed", err.Error())
		return
	}
	c.JSON(http.StatusOK, dto.Result{Success: true})
}

// writeError writes an error response as JSON.
func writeError(c *gin.Context, status int, errCode, message string) {
	c.JSON(status, dto.ErrorResponse{Error: errCode, Message: message})
}
