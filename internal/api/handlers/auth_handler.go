// internal/api/handlers/auth_handler.go
package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"chitfund-service/internal/api/middleware"
	"chitfund-service/internal/api/responses"
	"chitfund-service/internal/core/auth"
)

type AuthHandler struct {
	service auth.Service
	ttl     time.Duration
	secure  bool
}

func NewAuthHandler(service auth.Service, ttl time.Duration, secureCookie bool) *AuthHandler {
	if ttl <= 0 {
		ttl = auth.DefaultTTL
	}
	return &AuthHandler{service: service, ttl: ttl, secure: secureCookie}
}

type LoginRequest struct {
	Username string `form:"username" json:"username" binding:"required"`
	Password string `form:"password" json:"password" binding:"required"`
}

// LoginPage shows the login form, or the dashboard when already signed in.
func (h *AuthHandler) LoginPage(c *gin.Context) {
	if _, ok := middleware.User(c); ok {
		c.Redirect(http.StatusFound, "/dashboard")
		return
	}
	c.HTML(http.StatusOK, "login.html", gin.H{})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		c.HTML(http.StatusBadRequest, "login.html", gin.H{"error": "Invalid Credentials"})
		return
	}

	token, err := h.service.Login(c.Request.Context(), req.Username, req.Password)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		c.HTML(http.StatusUnauthorized, "login.html", gin.H{"error": "Invalid Credentials"})
		return
	}
	if err != nil {
		responses.Error(c, http.StatusInternalServerError, "login failed", err.Error())
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookie, token, int(h.ttl.Seconds()), "/", "", h.secure, true)
	c.Redirect(http.StatusFound, "/dashboard")
}

func (h *AuthHandler) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookie, "", -1, "/", "", h.secure, true)
	c.Redirect(http.StatusFound, "/")
}
