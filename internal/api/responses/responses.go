// internal/api/responses/responses.go
package responses

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var logger = zap.NewNop()

// APIResponse defines the standard envelope for API responses.
type APIResponse struct {
	Status  string      `json:"status"` // "success" or "error"
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
	Errors  []string    `json:"errors,omitempty"`
}

// InitLogger builds the process logger: production JSON by default, the
// development console encoder when development is set. level overrides the
// default level when it parses.
func InitLogger(development bool, level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if development {
		cfg = zap.NewDevelopmentConfig()
	}
	if level != "" {
		lvl, err := zap.ParseAtomicLevel(level)
		if err != nil {
			return nil, err
		}
		cfg.Level = lvl
	}
	l, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	logger = l
	return l, nil
}

// SetLogger replaces the response logger.
func SetLogger(l *zap.Logger) {
	if l != nil {
		logger = l
	}
}

// Success sends a successful response with the provided data and message.
func Success(c *gin.Context, data interface{}, message string) {
	resp := APIResponse{Status: "success", Data: data, Message: message}
	c.JSON(http.StatusOK, resp)
	logger.Info("API success", zap.String("path", c.Request.URL.Path), zap.Int("status", http.StatusOK))
}

// Error sends an error response with the provided code, message, and optional errors.
func Error(c *gin.Context, code int, message string, errs ...string) {
	resp := APIResponse{Status: "error", Message: message, Errors: errs}
	c.JSON(code, resp)
	logger.Error("API error", zap.String("path", c.Request.URL.Path), zap.Int("status", code), zap.Strings("errors", errs))
}

// JSON sends body as is. The dashboard endpoints keep the bare shapes the
// browser pages consume.
func JSON(c *gin.Context, code int, body interface{}) {
	c.JSON(code, body)
	logger.Debug("API response", zap.String("path", c.Request.URL.Path), zap.Int("status", code))
}

// Fail sends {"error": message}.
func Fail(c *gin.Context, code int, message string) {
	c.JSON(code, gin.H{"error": message})
	level := logger.Warn
	if code >= http.StatusInternalServerError {
		level = logger.Error
	}
	level("API error", zap.String("path", c.Request.URL.Path), zap.Int("status", code), zap.String("error", message))
}
