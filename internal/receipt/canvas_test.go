package receipt

import (
	"bytes"
	"context"
	"image/png"
	"testing"

	"github.com/sangkips/posprint/internal/domain/enum"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrintableWidthDots(t *testing.T) {
	assert.Equal(t, 383, PrintableWidthDots(enum.PaperFormat58mm))
	assert.Equal(t, 511, PrintableWidthDots(enum.PaperFormat76mm))
	assert.Equal(t, 575, PrintableWidthDots(enum.PaperFormat80mm))
}

func TestRenderCanvasBill(t *testing.T) {
	l, err := BuildBillLayout(context.Background(), sampleBill(), enum.PaperFormat80mm, nil)
	require.NoError(t, err)

	img, err := RenderCanvas(l)
	require.NoError(t, err)
	assert.Equal(t, 575, img.Bounds().Dx())
	assert.Greater(t, img.Bounds().Dy(), 200)

	dark := 0
	for _, p := range img.Pix {
		if p < 128 {
			dark++
		}
	}
	assert.Greater(t, dark, 500, "text and rules are drawn")

	// the border frames the image
	assert.Less(t, img.GrayAt(img.Bounds().Dx()/2, 1).Y, uint8(128))
}

func TestRenderCanvasKOTShorterThanBill(t *testing.T) {
	bl, err := BuildBillLayout(context.Background(), sampleBill(), enum.PaperFormat58mm, nil)
	require.NoError(t, err)
	kl, err := BuildKOTLayout(sampleKOT(), enum.PaperFormat58mm)
	require.NoError(t, err)

	billImg, err := RenderCanvas(bl)
	require.NoError(t, err)
	kotImg, err := RenderCanvas(kl)
	require.NoError(t, err)

	assert.Equal(t, 383, kotImg.Bounds().Dx())
	assert.Less(t, kotImg.Bounds().Dy(), billImg.Bounds().Dy())
}

func TestRenderRasterAndPNG(t *testing.T) {
	l, err := BuildKOTLayout(sampleKOT(), enum.PaperFormat58mm)
	require.NoError(t, err)

	raw, err := RenderRaster(l)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x1B, 0x40, 0x1D, 0x76, 0x30, 0x00}, raw[:6])
	assert.Equal(t, []byte{0x1D, 0x56, 0x00}, raw[len(raw)-3:])

	pngBytes, err := RenderPNG(l)
	require.NoError(t, err)
	img, err := png.Decode(bytes.NewReader(pngBytes))
	require.NoError(t, err)
	assert.Equal(t, 383, img.Bounds().Dx())
}
