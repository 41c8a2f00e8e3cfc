// internal/api/handlers/auction_handler.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"chitfund-service/internal/api/responses"
	"chitfund-service/internal/core/auction"
	"chitfund-service/internal/core/workbook"
	"chitfund-service/internal/domain"
)

// LockedMessage is shown when the workbook is held open elsewhere.
const LockedMessage = "ERROR: Close Excel file!"

type AuctionHandler struct {
	service auction.Service
}

func NewAuctionHandler(service auction.Service) *AuctionHandler {
	return &AuctionHandler{service: service}
}

// RunBatch settles the auction form (global_date, sheet_name and the
// bid_for_/new_month_for_ pairs) and returns to the dashboard.
func (h *AuctionHandler) RunBatch(c *gin.Context) {
	if err := c.Request.ParseForm(); err != nil {
		c.String(http.StatusBadRequest, "Error: %v", err)
		return
	}
	req := domain.SettleRequest{
		Bids:          auction.ParseBids(c.Request.PostForm),
		SheetName:     c.PostForm("sheet_name"),
		EffectiveDate: c.PostForm("global_date"),
	}

	if _, err := h.service.Settle(c.Request.Context(), req); err != nil {
		code := settleStatus(err)
		switch {
		case errors.Is(err, workbook.ErrSourceLocked):
			c.String(code, LockedMessage)
		case errors.Is(err, auction.ErrNoValidInputs):
			c.String(code, "Error: No Valid Inputs")
		default:
			c.String(code, "Error: %v", err)
		}
		return
	}
	c.Redirect(http.StatusFound, "/dashboard")
}

// Settle is the JSON form of RunBatch and answers with the settlement report.
func (h *AuctionHandler) Settle(c *gin.Context) {
	var req domain.SettleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.Error(c, http.StatusBadRequest, "invalid request", err.Error())
		return
	}
	report, err := h.service.Settle(c.Request.Context(), req)
	if err != nil {
		responses.Error(c, settleStatus(err), "settlement failed", err.Error())
		return
	}
	responses.Success(c, report, "settlement applied")
}

// Plans lists the auction plans of the newest generation.
func (h *AuctionHandler) Plans(c *gin.Context) {
	responses.Success(c, h.service.Plans(c.Request.Context()), "")
}

func settleStatus(err error) int {
	switch {
	case errors.Is(err, auction.ErrNoValidInputs), errors.Is(err, auction.ErrSheetNameRequired):
		return http.StatusBadRequest
	case errors.Is(err, workbook.ErrSourceLocked), errors.Is(err, workbook.ErrSheetExists):
		return http.StatusConflict
	case errors.Is(err, workbook.ErrSourceMissing), errors.Is(err, workbook.ErrSheetNotFound):
		return http.StatusNotFound
	case errors.Is(err, workbook.ErrReadOnlyFormat):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
