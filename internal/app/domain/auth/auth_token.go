package auth

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/techsupport-hub/portal/internal/app/middleware"
	"github.com/techsupport-hub/portal/internal/pkg/access"
	tokens "github.com/techsupport-hub/portal/pkg/auth"
)

// AuthTokenHandler mints access tokens for local development, so the
// portal's guarded areas can be browsed without a running API. Only routed
// when DEV_TOKENS is enabled.
type AuthTokenHandler struct {
	logger *zap.Logger
	secret string
	cookie CookieConfig
}

func NewAuthTokenHandler(logger *zap.Logger, secret string, cookie CookieConfig) *AuthTokenHandler {
	if cookie.Name == "" {
		cookie.Name = "accessToken"
	}
	return &AuthTokenHandler{logger: logger, secret: secret, cookie: cookie}
}

type GenerateTokenRequest struct {
	UserID string `json:"user_id" binding:"required"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	TTL    string `json:"ttl"`
}

type GenerateTokenResponse struct {
	Token     string `json:"token"`
	ExpiresIn string `json:"expires_in"`
	UserID    string `json:"user_id"`
	Role      string `json:"role"`
}

// GenerateToken signs a token and sets it as the access cookie.
func (h *AuthTokenHandler) GenerateToken(c *gin.Context) {
	var req GenerateTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Invalid token request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request. user_id is required"})
		return
	}

	ttl := time.Hour
	if req.TTL != "" {
		d, err := time.ParseDuration(req.TTL)
		if err != nil || d <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "ttl must be a positive duration such as 30m"})
			return
		}
		ttl = d
	}
	role := access.ParseRole(req.Role)

	token, err := tokens.GenerateToken(h.secret, req.UserID, req.Email, role, ttl)
	if err != nil {
		h.logger.Error("Failed to generate token", zap.String("user_id", req.UserID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	http.SetCookie(c.Writer, &http.Cookie{
		Name:     h.cookie.Name,
		Value:    token,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})

	h.logger.Info("Development token issued",
		zap.String("user_id", req.UserID),
		zap.String("role", string(role)))

	c.JSON(http.StatusOK, GenerateTokenResponse{
		Token:     token,
		ExpiresIn: ttl.String(),
		UserID:    req.UserID,
		Role:      string(role),
	})
}

// VerifyToken reports what the route guard made of the current cookie.
func (h *AuthTokenHandler) VerifyToken(c *gin.Context) {
	claims := middleware.GetClaimsFromContext(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"authenticated": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"authenticated": true,
		"user_id":       claims.UserID,
		"email":         claims.Email,
		"role":          string(claims.AccessRole()),
	})
}
