// internal/api/handlers/ledger_handler.go
package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"chitfund-service/internal/api/responses"
	"chitfund-service/internal/core/ledger"
)

const defaultLookupLimit = 5

type LedgerHandler struct {
	service ledger.Service
}

func NewLedgerHandler(service ledger.Service) *LedgerHandler {
	return &LedgerHandler{service: service}
}

// Members returns the extracted ledger of ?sheet= (the newest generation when absent).
func (h *LedgerHandler) Members(c *gin.Context) {
	result := h.service.Extract(c.Request.Context(), c.Query("sheet"))
	responses.JSON(c, http.StatusOK, result)
}

func (h *LedgerHandler) Sheets(c *gin.Context) {
	responses.JSON(c, http.StatusOK, gin.H{"sheets": h.service.Sheets(c.Request.Context())})
}

// Lookup suggests member names for a possibly misspelled ?name=.
func (h *LedgerHandler) Lookup(c *gin.Context) {
	name := strings.TrimSpace(c.Query("name"))
	if name == "" {
		responses.Error(c, http.StatusBadRequest, "name is required")
		return
	}
	limit := defaultLookupLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			responses.Error(c, http.StatusBadRequest, "invalid limit", raw)
			return
		}
		limit = n
	}

	matches := h.service.Lookup(c.Request.Context(), name, limit)
	responses.Success(c, gin.H{"query": name, "matches": matches}, "")
}
