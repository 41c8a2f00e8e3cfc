// internal/api/handlers/status_handler.go
package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"chitfund-service/internal/api/responses"
	"chitfund-service/internal/core/paystatus"
	"chitfund-service/internal/metrics"
)

type StatusHandler struct {
	store   paystatus.Store
	metrics *metrics.Metrics
	now     func() time.Time
}

func NewStatusHandler(store paystatus.Store, m *metrics.Metrics, now func() time.Time) *StatusHandler {
	if now == nil {
		now = time.Now
	}
	return &StatusHandler{store: store, metrics: m, now: now}
}

type ToggleRequest struct {
	ID string `json:"id"`
}

// Toggle flips the paid status of one payment or item id. Timestamps use the
// server's local time.
func (h *StatusHandler) Toggle(c *gin.Context) {
	var req ToggleRequest
	_ = c.ShouldBindJSON(&req)
	id := strings.TrimSpace(req.ID)
	if id == "" {
		responses.Fail(c, http.StatusBadRequest, "No ID")
		return
	}

	result, err := h.store.Toggle(c.Request.Context(), id, h.now())
	if err != nil {
		responses.Fail(c, http.StatusInternalServerError, err.Error())
		return
	}
	h.metrics.Toggle(result.NewStatus)
	responses.JSON(c, http.StatusOK, result)
}
