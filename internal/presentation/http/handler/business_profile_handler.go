package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/sangkips/posprint/internal/application/service"
	"github.com/sangkips/posprint/internal/presentation/http/dto/request"
	"github.com/sangkips/posprint/internal/presentation/http/dto/response"
)

// BusinessProfileHandler handles the outlet profile endpoints
type BusinessProfileHandler struct {
	profileService *service.BusinessProfileService
}

// NewBusinessProfileHandler creates a new business profile handler
func NewBusinessProfileHandler(profileService *service.BusinessProfileService) *BusinessProfileHandler {
	return &BusinessProfileHandler{profileService: profileService}
}

// GetProfile retrieves the outlet profile
func (h *BusinessProfileHandler) GetProfile(c *gin.Context) {
	profile, err := h.profileService.GetProfile(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Business profile retrieved successfully", profile)
}

// UpdateProfile replaces the outlet profile
func (h *BusinessProfileHandler) UpdateProfile(c *gin.Context) {
	var req request.UpdateBusinessProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	profile, err := h.profileService.UpdateProfile(c.Request.Context(), &service.UpdateProfileInput{
		Name:           req.Name,
		Address:        req.Address,
		Phone:          req.Phone,
		GSTIN:          req.GSTIN,
		FSSAI:          req.FSSAI,
		Footer:         req.Footer,
		CurrencySymbol: req.CurrencySymbol,
		ShowGST:        req.ShowGST,
		IsPureVeg:      req.IsPureVeg,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Business profile updated successfully", profile)
}
