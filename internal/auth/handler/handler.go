package handler

import (
	"errors"
	"net/http"

	"github.com/Techtuskers-redefined/shopgenie/internal/auth"
	"github.com/Techtuskers-redefined/shopgenie/internal/logger"
	"github.com/Techtuskers-redefined/shopgenie/internal/middleware"
	"github.com/Techtuskers-redefined/shopgenie/internal/user"

	"github.com/gin-gonic/gin"
)

// Handler exposes the auth flows over HTTP. It shapes requests and
// responses only; every decision lives in the auth service.
type Handler struct {
	service *auth.Service
	log     *logger.Logger
}

func NewHandler(service *auth.Service, log *logger.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log,
	}
}

// RegisterRoutes mounts the auth endpoints. requireAuth guards the
// routes that need a verified access token.
func (h *Handler) RegisterRoutes(r *gin.Engine, requireAuth gin.HandlerFunc) {
	grp := r.Group("/api/auth")
	grp.POST("/register", h.Register)
	grp.POST("/login", h.Login)
	grp.POST("/refresh", h.Refresh)
	grp.POST("/logout", h.Logout)
	grp.POST("/federated/:provider", h.FederatedLogin)
	grp.GET("/verify", requireAuth, h.Verify)
}

// userJSON is the account summary embedded in auth responses. The
// password hash never leaves the service layer.
func userJSON(u user.User) gin.H {
	return gin.H{
		"id":    u.ID,
		"name":  u.Name,
		"email": u.Email,
	}
}

// respondError maps a service error to its response category. Internal
// detail is logged, never returned.
func (h *Handler) respondError(c *gin.Context, err error) {
	if ve, ok := auth.AsValidation(err); ok {
		c.JSON(http.StatusBadRequest, gin.H{"message": ve.Message})
		return
	}

	switch {
	case errors.Is(err, auth.ErrDuplicateAccount):
		c.JSON(http.StatusBadRequest, gin.H{"message": "User already exists with this email"})
	case errors.Is(err, auth.ErrInvalidCredentials):
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid credentials"})
	case errors.Is(err, auth.ErrInvalidRefreshToken):
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid refresh token"})
	case errors.Is(err, auth.ErrUnknownProvider):
		c.JSON(http.StatusBadRequest, gin.H{"message": "Unknown provider"})
	case errors.Is(err, auth.ErrFederatedVerification):
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Authentication failed"})
	case errors.Is(err, auth.ErrUpstreamUnavailable), errors.Is(err, auth.ErrStoreUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"message": "Service temporarily unavailable"})
	default:
		h.log.Error("auth handler: unexpected error", "error", err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
	}
}

// Verify returns the account behind the presented access token.
func (h *Handler) Verify(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "unauthorized"})
		return
	}

	u, err := h.service.UserByID(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			// Token outlived the account; an accepted staleness
			// window, rejected here where the record matters.
			c.JSON(http.StatusUnauthorized, gin.H{"message": "unauthorized"})
			return
		}
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": userJSON(u)})
}
