package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"mqttlog/internal/logger"
	"mqttlog/internal/query"
	"mqttlog/pkg/errors"
)

// Handler exposes the query engine over HTTP. All endpoints are
// read-only; malformed arguments are rejected before the store is
// touched.
type Handler struct {
	engine *query.Engine
	logger logger.Logger
}

func NewHandler(engine *query.Engine, log logger.Logger) *Handler {
	return &Handler{
		engine: engine,
		logger: log,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	v1 := router.Group("/api/v1")
	{
		v1.GET("/events", h.ListEvents)
		v1.GET("/topics", h.ListTopics)
		v1.GET("/stats", h.GetStats)
	}
}

func (h *Handler) handleError(c *gin.Context, err error) {
	h.logger.Errorw("Request error",
		"error", err,
		"path", c.Request.URL.Path,
	)

	c.JSON(errors.ToHTTPStatus(err), errors.ToErrorResponse(err))
}

// ListEvents returns recorded events, newest first. Query parameters:
// topic (wildcard filter), since (relative expression like 1h), limit.
func (h *Handler) ListEvents(c *gin.Context) {
	params := query.Params{
		TopicPattern: c.Query("topic"),
		Since:        c.Query("since"),
	}

	// A limit that is present must be a positive integer; only an
	// absent one falls back to the default.
	if limitStr := c.Query("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit <= 0 {
			c.JSON(http.StatusBadRequest, errors.ToErrorResponse(
				errors.ErrInvalidArgument.WithDetail("message", "limit must be a positive integer")))
			return
		}
		params.Limit = limit
	}

	records, err := h.engine.Events(c.Request.Context(), params)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"events": records,
		"count":  len(records),
	})
}

func (h *Handler) ListTopics(c *gin.Context) {
	topics, err := h.engine.Topics(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"topics": topics,
		"count":  len(topics),
	})
}

func (h *Handler) GetStats(c *gin.Context) {
	stats, err := h.engine.Stats(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}
