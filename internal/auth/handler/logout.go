package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type logoutRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// Logout revokes the presented refresh token. The response is
// idempotent: an unknown or already-revoked token still gets 204.
func (h *Handler) Logout(c *gin.Context) {
	var req logoutRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.RefreshToken == "" {
		c.Status(http.StatusNoContent)
		return
	}

	if err := h.service.Logout(c.Request.Context(), req.RefreshToken); err != nil {
		h.respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
