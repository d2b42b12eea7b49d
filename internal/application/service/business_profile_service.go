package service

import (
	"context"
	"strings"

	"github.com/sangkips/posprint/internal/domain/entity"
	"github.com/sangkips/posprint/internal/domain/repository"
	"github.com/sangkips/posprint/pkg/apperror"
)

// BusinessProfileService handles the outlet profile printed on bills
type BusinessProfileService struct {
	profileRepo repository.BusinessProfileRepository
	defaults    entity.BusinessProfile
}

// NewBusinessProfileService creates a new business profile service. defaults is
// returned until a profile has been saved.
func NewBusinessProfileService(profileRepo repository.BusinessProfileRepository, defaults entity.BusinessProfile) *BusinessProfileService {
	return &BusinessProfileService{
		profileRepo: profileRepo,
		defaults:    defaults,
	}
}

// GetProfile retrieves the outlet profile, falling back to the configured defaults
func (s *BusinessProfileService) GetProfile(ctx context.Context) (*entity.BusinessProfile, error) {
	profile, err := s.profileRepo.Get(ctx)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		p := s.defaults
		if p.Footer == "" {
			p.Footer = "Thank you! Visit again"
		}
		if p.CurrencySymbol == "" {
			p.CurrencySymbol = entity.DefaultCurrency
		}
		return &p, nil
	}
	return profile, nil
}

// UpdateProfileInput represents the input for updating the profile
type UpdateProfileInput struct {
	Name           string
	Address        string
	Phone          string
	GSTIN          string
	FSSAI          string
	Footer         string
	CurrencySymbol string
	ShowGST        bool
	IsPureVeg      bool
}

// UpdateProfile saves the outlet profile
func (s *BusinessProfileService) UpdateProfile(ctx context.Context, input *UpdateProfileInput) (*entity.BusinessProfile, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, apperror.NewBadRequestError("Business name is required")
	}

	profile, err := s.profileRepo.Get(ctx)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		profile = &entity.BusinessProfile{}
	}

	profile.Name = strings.TrimSpace(input.Name)
	profile.Address = input.Address
	profile.Phone = input.Phone
	profile.GSTIN = strings.ToUpper(strings.TrimSpace(input.GSTIN))
	profile.FSSAI = strings.TrimSpace(input.FSSAI)
	profile.Footer = input.Footer
	profile.CurrencySymbol = input.CurrencySymbol
	if profile.CurrencySymbol == "" {
		profile.CurrencySymbol = entity.DefaultCurrency
	}
	profile.ShowGST = input.ShowGST
	profile.IsPureVeg = input.IsPureVeg

	if err := s.profileRepo.Save(ctx, profile); err != nil {
		return nil, err
	}
	return profile, nil
}
