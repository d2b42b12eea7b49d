package service

import (
	"context"
	"strings"

	"github.com/sangkips/posprint/internal/domain/entity"
	"github.com/sangkips/posprint/internal/domain/enum"
	"github.com/sangkips/posprint/internal/domain/repository"
	"github.com/sangkips/posprint/internal/receipt"
	"github.com/sangkips/posprint/pkg/apperror"
)

// Preview output formats
const (
	PreviewHTML   = "html"
	PreviewPNG    = "png"
	PreviewESCPOS = "escpos"
)

// Preview is a rendered document ready to be served.
type Preview struct {
	ContentType string
	Body        []byte
}

// PreviewService renders documents for on-screen display. Previews never
// consume a bill number.
type PreviewService struct {
	profiles repository.BusinessProfileRepository
}

// NewPreviewService creates a preview service. profiles may be nil.
func NewPreviewService(profiles repository.BusinessProfileRepository) *PreviewService {
	return &PreviewService{profiles: profiles}
}

// Bill renders a bill preview.
func (s *PreviewService) Bill(ctx context.Context, bill *entity.BillData, format enum.PaperFormat, output string) (*Preview, error) {
	if bill == nil {
		return nil, apperror.NewBadRequestError("Bill is required")
	}
	cp := *bill
	if s.profiles != nil {
		if profile, err := s.profiles.Get(ctx); err == nil && profile != nil {
			profile.Apply(&cp)
		}
	}
	layout, err := receipt.BuildBillLayout(ctx, &cp, format, nil)
	if err != nil {
		return nil, apperror.NewBadRequestError(err.Error())
	}
	return render(layout, output)
}

// KOT renders a kitchen ticket preview.
func (s *PreviewService) KOT(kot *entity.KOTData, format enum.PaperFormat, output string) (*Preview, error) {
	layout, err := receipt.BuildKOTLayout(kot, format)
	if err != nil {
		return nil, apperror.NewBadRequestError(err.Error())
	}
	return render(layout, output)
}

func render(l *receipt.Layout, output string) (*Preview, error) {
	switch strings.ToLower(output) {
	case "", PreviewHTML:
		doc, err := receipt.RenderHTML(l)
		if err != nil {
			return nil, err
		}
		return &Preview{ContentType: "text/html; charset=utf-8", Body: []byte(doc)}, nil
	case PreviewPNG:
		png, err := receipt.RenderPNG(l)
		if err != nil {
			return nil, err
		}
		return &Preview{ContentType: "image/png", Body: png}, nil
	case PreviewESCPOS:
		return &Preview{ContentType: "application/octet-stream", Body: receipt.RenderESCPOS(l)}, nil
	}
	return nil, apperror.NewBadRequestError("Unknown preview format " + output)
}
