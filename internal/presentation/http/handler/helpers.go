package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/posprint/internal/domain/enum"
	"github.com/sangkips/posprint/internal/presentation/http/dto/response"
)

// GetClientID extracts the authenticated agent's client ID from the Gin context
func GetClientID(c *gin.Context) string {
	id, exists := c.Get("client_id")
	if !exists {
		return ""
	}
	s, _ := id.(string)
	return s
}

// GetScopes extracts the token scopes from the Gin context
func GetScopes(c *gin.Context) []string {
	scopes, exists := c.Get("client_scopes")
	if !exists {
		return nil
	}
	s, _ := scopes.([]string)
	return s
}

// roleOr parses a printer role, falling back to def when empty
func roleOr(s string, def enum.PrinterRole) enum.PrinterRole {
	if r, ok := enum.ParsePrinterRole(s); ok {
		return r
	}
	return def
}

// paramID parses the :id path parameter, writing a 400 on failure
func paramID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid ID format")
		return uuid.Nil, false
	}
	return id, true
}
