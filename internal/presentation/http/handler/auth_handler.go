package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/sangkips/posprint/internal/application/service"
	"github.com/sangkips/posprint/internal/presentation/http/dto/request"
	"github.com/sangkips/posprint/internal/presentation/http/dto/response"
)

// AuthHandler issues agent access tokens
type AuthHandler struct {
	authService *service.AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Token exchanges a client id and agent key for a bearer token
func (h *AuthHandler) Token(c *gin.Context) {
	var req request.TokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request: "+err.Error())
		return
	}

	out, err := h.authService.IssueToken(c.Request.Context(), &service.TokenInput{
		ClientID: req.ClientID,
		Key:      req.Key,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Token issued", out)
}
