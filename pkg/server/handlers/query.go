package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/soundprediction/docgraph"
	"github.com/soundprediction/docgraph/pkg/server/dto"
	"github.com/soundprediction/docgraph/pkg/types"
)

// QueryHandler handles retrieval and graph inspection requests.
type QueryHandler struct {
	client *docgraph.Client
	logger *slog.Logger
}

// NewQueryHandler creates a new query handler.
func NewQueryHandler(client *docgraph.Client, logger *slog.Logger) *QueryHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &QueryHandler{client: client, logger: logger}
}

// Query handles POST /api/v1/query.
func (h *QueryHandler) Query(c *gin.Context) {
	var req dto.QueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		writeError(c, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	answer, err := h.client.Query(c.Request.Context(), req.Question, types.QueryMode(req.Mode))
	if err != nil {
		writeError(c, http.StatusBadRequest, "query_failed", err.Error())
		return
	}

	c.JSON(http.StatusOK, dto.QueryResponse{Answer: answer})
}

// Communities handles GET /api/v1/communities.
func (h *QueryHandler) Communities(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			writeError(c, http.StatusBadRequest, "invalid_request", "limit must be an integer")
			return
		}
		limit = parsed
	}

	communities, err := h.client.Communities(c.Request.Context(), limit)
	if err != nil {
		writeError(c, http.StatusInternalServerError, "retrieval_failed", err.Error())
		return
	}

	c.JSON(http.StatusOK, dto.CommunitiesResponse{
		Communities: communities,
		Total:       len(communities),
	})
}

// DetectCommunities handles POST /api/v1/communities/detect.
func (h *QueryHandler) DetectCommunities(c *gin.Context) {
	count, err := h.client.DetectCommunities(c.Request.Context())
	if err != nil {
		writeError(c, http.StatusInternalServerError, "detection_failed", err.Error())
		return
	}
	c.JSON(http.StatusOK, dto.DetectResponse{Communities: count})
}

// Stats handles GET /api/v1/stats.
func (h *QueryHandler) Stats(c *gin.Context) {
	stats, err := h.client.Stats(c.Request.Context())
	if err != nil {
		writeError(c, http.StatusInternalServerError, "retrieval_failed", err.Error())
		return
	}
	c.JSON(http.StatusOK, dto.StatsResponse{Stats: stats})
}
