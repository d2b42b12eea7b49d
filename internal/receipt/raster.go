package receipt

import (
	"bytes"
	"fmt"
	"image/png"

	"github.com/sangkips/posprint/pkg/printer"
)

// RenderRaster renders the layout through the canvas and wraps the bitmap as
// ESC/POS raster bands, for printers without a usable code page.
func RenderRaster(l *Layout) ([]byte, error) {
	img, err := RenderCanvas(l)
	if err != nil {
		return nil, err
	}
	b := printer.NewBuilder(printer.PaperWidth(l.Format.Chars()))
	b.Init().Raster(img).Feed(tailFeed).Cut()
	if l.OpenDrawer {
		b.OpenDrawer()
	}
	return b.Build(), nil
}

// RenderPNG renders the layout as a PNG preview.
func RenderPNG(l *Layout) ([]byte, error) {
	img, err := RenderCanvas(l)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("receipt: encode png: %w", err)
	}
	return buf.Bytes(), nil
}
