package service

import (
	"context"
	"testing"
	"time"

	"github.com/sangkips/posprint/internal/domain/entity"
	"github.com/sangkips/posprint/internal/domain/enum"
	"github.com/sangkips/posprint/internal/infrastructure/repository"
	"github.com/sangkips/posprint/pkg/apperror"
	"github.com/sangkips/posprint/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBillNumbererDrawsFromSequence(t *testing.T) {
	n := NewBillNumberer(repository.NewMemoryBillSequence(100), "")
	first, err := n.NextBillNumber(context.Background())
	require.NoError(t, err)
	second, err := n.NextBillNumber(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first+1, second)
}

func TestBusinessProfileDefaultsAndUpdate(t *testing.T) {
	svc := NewBusinessProfileService(repository.NewMemoryBusinessProfileRepository(nil), entity.BusinessProfile{Name: "Spice Route"})

	p, err := svc.GetProfile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Spice Route", p.Name)
	assert.Equal(t, "Thank you! Visit again", p.Footer)
	assert.Equal(t, entity.DefaultCurrency, p.CurrencySymbol)

	_, err = svc.UpdateProfile(context.Background(), &UpdateProfileInput{Name: "  "})
	require.Error(t, err)
	assert.Equal(t, 400, apperror.GetAppError(err).Code)

	saved, err := svc.UpdateProfile(context.Background(), &UpdateProfileInput{Name: "Spice Route", GSTIN: " 29abcde1234f1z5 ", ShowGST: true})
	require.NoError(t, err)
	assert.Equal(t, "29ABCDE1234F1Z5", saved.GSTIN)

	p, err = svc.GetProfile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "29ABCDE1234F1Z5", p.GSTIN)
}

func TestPreviewFormats(t *testing.T) {
	svc := NewPreviewService(nil)

	html, err := svc.Bill(context.Background(), testBill(), enum.PaperFormat58mm, "")
	require.NoError(t, err)
	assert.Equal(t, "text/html; charset=utf-8", html.ContentType)
	assert.Contains(t, string(html.Body), "NET TOTAL")

	png, err := svc.KOT(testKOT(), enum.PaperFormat80mm, PreviewPNG)
	require.NoError(t, err)
	assert.Equal(t, "image/png", png.ContentType)

	raw, err := svc.Bill(context.Background(), testBill(), enum.PaperFormat76mm, PreviewESCPOS)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x1B, 0x40}, raw.Body[:2])

	_, err = svc.Bill(context.Background(), testBill(), enum.PaperFormat58mm, "pdf")
	assert.Error(t, err)
}

func TestIssueToken(t *testing.T) {
	hash, err := utils.HashPassword("till-secret")
	require.NoError(t, err)
	jwt := utils.NewJWTManager("secret", time.Hour, "")
	svc := NewAuthService([]AgentCredential{{ClientID: "till-1", KeyHash: hash}}, jwt)

	out, err := svc.IssueToken(context.Background(), &TokenInput{ClientID: "till-1", Key: "till-secret"})
	require.NoError(t, err)
	assert.Equal(t, "Bearer", out.TokenType)
	assert.Equal(t, []string{utils.ScopePrint}, out.Scopes)

	claims, err := jwt.ValidateAccessToken(out.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "till-1", claims.ClientID)

	_, err = svc.IssueToken(context.Background(), &TokenInput{ClientID: "till-1", Key: "nope"})
	assert.ErrorIs(t, err, apperror.ErrInvalidCredentials)
	_, err = svc.IssueToken(context.Background(), &TokenInput{ClientID: "ghost", Key: "till-secret"})
	assert.ErrorIs(t, err, apperror.ErrInvalidCredentials)
}
