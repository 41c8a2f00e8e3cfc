// internal/api/handlers/editor_handler.go
package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"chitfund-service/internal/api/responses"
	"chitfund-service/internal/core/workbook"
)

// Uploader pushes the workbook to remote storage after a change.
type Uploader interface {
	Up(ctx context.Context) error
}

type EditorHandler struct {
	source   *workbook.Source
	uploader Uploader
	logger   *zap.Logger
}

func NewEditorHandler(source *workbook.Source, uploader Uploader, logger *zap.Logger) *EditorHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EditorHandler{source: source, uploader: uploader, logger: logger}
}

type SaveSheetRequest struct {
	SheetName string  `json:"sheet_name"`
	Data      [][]any `json:"data"`
}

// SheetData returns ?sheet= as a grid of strings, formulas included.
func (h *EditorHandler) SheetData(c *gin.Context) {
	sheet := c.Query("sheet")
	if sheet == "" {
		responses.Fail(c, http.StatusBadRequest, "No sheet name")
		return
	}
	rows, err := h.source.RawRows(sheet)
	if err != nil {
		h.fail(c, err)
		return
	}
	if rows == nil {
		rows = [][]string{}
	}
	responses.JSON(c, http.StatusOK, gin.H{"data": rows})
}

// SaveSheetData writes the edited grid back into its sheet.
func (h *EditorHandler) SaveSheetData(c *gin.Context) {
	var req SaveSheetRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.SheetName == "" || len(req.Data) == 0 {
		responses.Fail(c, http.StatusBadRequest, "Missing data")
		return
	}
	if err := h.source.SaveRaw(req.SheetName, req.Data); err != nil {
		h.fail(c, err)
		return
	}
	h.logger.Info("sheet saved", zap.String("sheet", req.SheetName), zap.Int("rows", len(req.Data)))

	if h.uploader != nil {
		if err := h.uploader.Up(c.Request.Context()); err != nil {
			h.logger.Warn("workbook upload failed", zap.Error(err))
		}
	}
	responses.JSON(c, http.StatusOK, gin.H{"success": true})
}

func (h *EditorHandler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, workbook.ErrSheetNotFound):
		responses.Fail(c, http.StatusNotFound, "Sheet not found")
	case errors.Is(err, workbook.ErrSourceLocked):
		responses.Fail(c, http.StatusConflict, LockedMessage)
	case errors.Is(err, workbook.ErrReadOnlyFormat):
		responses.Fail(c, http.StatusUnprocessableEntity, err.Error())
	default:
		responses.Fail(c, http.StatusInternalServerError, err.Error())
	}
}
