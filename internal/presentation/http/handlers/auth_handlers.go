package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pogoda-app/pogoda-go/internal/application/services"
	"github.com/pogoda-app/pogoda-go/internal/infrastructure/observability/logging"
	"github.com/pogoda-app/pogoda-go/internal/infrastructure/observability/performance"
)

// AuthHandlers handles dashboard authentication endpoints.
type AuthHandlers struct {
	authService *services.AuthService
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker
}

// NewAuthHandlers creates auth handlers with dependencies.
func NewAuthHandlers(authService *services.AuthService, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *AuthHandlers {
	return &AuthHandlers{
		authService: authService,
		logger:      logger,
		perfTracker: perfTracker,
	}
}

type loginRequest struct {
	Password string `json:"password"`
}

// PostLogin handles POST /api/analytics-login. On success it sets the
// session cookie and returns {"ok": true}.
func (h *AuthHandlers) PostLogin(c *gin.Context) {
	marker := h.perfTracker.StartOperation("handle_dashboard_login")
	defer marker.Complete()

	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON payload"})
		return
	}

	token, err := h.authService.Login(req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidPassword) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Неверный пароль"})
			return
		}
		h.logger.Auth().Error("Failed to issue session token", "error", err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	maxAge := int(h.authService.SessionTTL().Seconds())
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.authService.CookieName(), token, maxAge, "/", "", false, true)

	marker.SetSuccess(true)
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// PostLogout handles POST /api/analytics-logout by expiring the cookie.
func (h *AuthHandlers) PostLogout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.authService.CookieName(), "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// AuthMiddleware guards dashboard routes with the session cookie.
func (h *AuthHandlers) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(h.authService.CookieName())
		if err != nil || !h.authService.IsAuthorized(token) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			c.Abort()
			return
		}
		c.Next()
	}
}
