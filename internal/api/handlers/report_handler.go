// internal/api/handlers/report_handler.go
package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"chitfund-service/internal/api/responses"
	"chitfund-service/internal/core/ledger"
	"chitfund-service/internal/core/receipts"
)

type ReportHandler struct {
	ledger ledger.Service
	now    func() time.Time
}

func NewReportHandler(ledger ledger.Service, now func() time.Time) *ReportHandler {
	if now == nil {
		now = time.Now
	}
	return &ReportHandler{ledger: ledger, now: now}
}

// Download sends the receipts workbook for the newest generation.
func (h *ReportHandler) Download(c *gin.Context) {
	now := h.now()
	result := h.ledger.Extract(c.Request.Context(), "")
	buf, err := receipts.Build(result.Members, now)
	if err != nil {
		responses.Error(c, http.StatusInternalServerError, "failed to build receipts", err.Error())
		return
	}

	c.Header("Content-Disposition", "attachment; filename="+receipts.Filename(now))
	c.Data(http.StatusOK, receipts.ContentType, buf.Bytes())
}

// ViewReceipts renders the printable receipts of the newest generation.
func (h *ReportHandler) ViewReceipts(c *gin.Context) {
	result := h.ledger.Extract(c.Request.Context(), "")
	c.HTML(http.StatusOK, "receipt_preview.html", gin.H{
		"members": receipts.SortForPreview(result.Members),
		"now":     h.now(),
	})
}
