package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/SivaTeja36/Bus-reservation/internal/cache"
	"github.com/SivaTeja36/Bus-reservation/internal/domain"
	"github.com/SivaTeja36/Bus-reservation/internal/service/resources"
	"github.com/gin-gonic/gin"
)

type snapshotResponse struct {
	Resource  string `json:"resource"`
	State     string `json:"state"`
	Data      any    `json:"data,omitempty"`
	Error     string `json:"error,omitempty"`
	FetchedAt string `json:"fetched_at,omitempty"`
}

// JSONHandler serves the read-only JSON surface under /api.
type JSONHandler struct {
	service resources.ResourceUseCase
}

func NewJSONHandler(service resources.ResourceUseCase) *JSONHandler {
	return &JSONHandler{service: service}
}

func (h *JSONHandler) Register(router *gin.RouterGroup) {
	router.GET("/session", h.session)
	router.GET("/resources/:name", h.resource)
}

func (h *JSONHandler) session(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"user": currentUser(c)})
}

// resource returns the cached list. With wait=false it never blocks and
// reports "loading" while the first fetch is outstanding.
func (h *JSONHandler) resource(c *gin.Context) {
	r, ok := domain.ParseResource(c.Param("name"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown resource"})
		return
	}
	if !r.AllowedFor(currentUser(c)) {
		denyAccess(c)
		return
	}

	wait := true
	if v := c.Query("wait"); v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid wait"})
			return
		}
		wait = parsed
	}

	snap, err := h.service.Snapshot(c.Request.Context(), r, wait)
	if err != nil {
		if errors.Is(err, resources.ErrNotListable) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	resp := snapshotResponse{Resource: string(r), State: string(snap.State), Data: snap.Value}
	if snap.Err != nil {
		resp.Error = errorMessage(snap.Err, "Failed to load "+string(r))
	}
	if !snap.FetchedAt.IsZero() {
		resp.FetchedAt = snap.FetchedAt.UTC().Format(time.RFC3339)
	}

	status := http.StatusOK
	switch snap.State {
	case cache.StateFailed:
		status = http.StatusBadGateway
	case cache.StateLoading, cache.StateIdle:
		status = http.StatusAccepted
	}
	c.JSON(status, resp)
}
