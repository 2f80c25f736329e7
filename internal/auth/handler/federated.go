package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type federatedLoginRequest struct {
	IDToken string `json:"idToken"`
}

// FederatedLogin signs a user in with a provider-issued id_token,
// creating the account on first contact.
func (h *Handler) FederatedLogin(c *gin.Context) {
	var req federatedLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.IDToken == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "No ID token provided"})
		return
	}

	u, pair, err := h.service.FederatedLogin(
		c.Request.Context(),
		c.Param("provider"),
		req.IDToken,
	)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":         userJSON(u),
		"accessToken":  pair.AccessToken,
		"refreshToken": pair.RefreshToken,
	})
}
