package printer

import (
	"image"
	"image/color"
)

// rasterBandRows is the tallest GS v 0 block sent in one command. Many
// low-cost heads drop data on taller blocks.
const rasterBandRows = 256

// DefaultThreshold is the luminance below which a pixel prints black.
const DefaultThreshold = 128

// Raster appends img as one or more GS v 0 raster blocks. Pixels darker
// than DefaultThreshold print black.
func (b *Builder) Raster(img image.Image) *Builder {
	b.buf.Write(RasterBytes(img, DefaultThreshold))
	return b
}

// RasterBytes converts img to GS v 0 blocks of at most 256 rows each.
func RasterBytes(img image.Image, threshold uint8) []byte {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= 0 || h <= 0 {
		return nil
	}
	rowBytes := (w + 7) / 8

	var out []byte
	for top := 0; top < h; top += rasterBandRows {
		rows := rasterBandRows
		if top+rows > h {
			rows = h - top
		}
		out = append(out, GS, 'v', '0', 0x00,
			byte(rowBytes&0xFF), byte(rowBytes>>8),
			byte(rows&0xFF), byte(rows>>8))
		for y := top; y < top+rows; y++ {
			line := make([]byte, rowBytes)
			for x := 0; x < w; x++ {
				gray := color.GrayModel.Convert(img.At(bounds.Min.X+x, bounds.Min.Y+y)).(color.Gray)
				if gray.Y < threshold {
					line[x/8] |= 0x80 >> uint(x%8)
				}
			}
			out = append(out, line...)
		}
	}
	return out
}

// QRCode appends a model 2 QR symbol (GS ( k) holding data, module size 6,
// error correction M.
func (b *Builder) QRCode(data string) *Builder {
	payload := []byte(data)
	n := len(payload) + 3
	b.buf.Write([]byte{GS, '(', 'k', 0x04, 0x00, 0x31, 0x41, 0x32, 0x00})
	b.buf.Write([]byte{GS, '(', 'k', 0x03, 0x00, 0x31, 0x43, 0x06})
	b.buf.Write([]byte{GS, '(', 'k', 0x03, 0x00, 0x31, 0x45, 0x31})
	b.buf.Write([]byte{GS, '(', 'k', byte(n % 256), byte(n / 256), 0x31, 0x50, 0x30})
	b.buf.Write(payload)
	b.buf.Write([]byte{GS, '(', 'k', 0x03, 0x00, 0x31, 0x51, 0x30})
	return b
}
