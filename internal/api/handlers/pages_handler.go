// internal/api/handlers/pages_handler.go
package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"chitfund-service/internal/api/middleware"
	"chitfund-service/internal/core/auction"
	"chitfund-service/internal/core/ledger"
)

type PageHandler struct {
	ledger  ledger.Service
	auction auction.Service
}

func NewPageHandler(ledger ledger.Service, auction auction.Service) *PageHandler {
	return &PageHandler{ledger: ledger, auction: auction}
}

func (h *PageHandler) page(c *gin.Context, name string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	if user, ok := middleware.User(c); ok {
		data["user"] = user.Username
	}
	c.HTML(http.StatusOK, name, data)
}

func (h *PageHandler) Dashboard(c *gin.Context) {
	h.page(c, "dashboard.html", gin.H{"timestamp": time.Now().Unix()})
}

func (h *PageHandler) Members(c *gin.Context) {
	h.page(c, "members.html", nil)
}

func (h *PageHandler) Auction(c *gin.Context) {
	h.page(c, "auction.html", gin.H{"groups": h.auction.Plans(c.Request.Context())})
}

func (h *PageHandler) Reports(c *gin.Context) {
	h.page(c, "reports.html", gin.H{"sheets": h.ledger.Sheets(c.Request.Context())})
}

func (h *PageHandler) ExcelEditor(c *gin.Context) {
	h.page(c, "excel_editor.html", gin.H{"sheets": h.ledger.Sheets(c.Request.Context())})
}
