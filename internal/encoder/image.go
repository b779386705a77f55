package encoder

import (
	"image"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/code128"
	"github.com/disintegration/imaging"
	"github.com/skip2/go-qrcode"
)

// maxRasterWidth is the printable dot width of 58mm paper
const maxRasterWidth = 384

// writeQR renders a QR code as a centered raster block. Generation
// failures are skipped silently: an optional block never fails a print.
func (e *Encoder) writeQR(value string) {
	qr, err := qrcode.New(value, qrcode.Medium)
	if err != nil {
		return
	}

	e.SetAlignment(AlignCenter)
	e.Raster(fitWidth(qr.Image(256)))
	e.Feed(1)
}

// writeBarcode renders a CODE128 barcode as a centered raster block
func (e *Encoder) writeBarcode(value string) {
	code, err := code128.Encode(value)
	if err != nil {
		return
	}

	scaled, err := barcode.Scale(code, maxRasterWidth, 80)
	if err != nil {
		return
	}

	e.SetAlignment(AlignCenter)
	e.Raster(fitWidth(scaled))
	e.Feed(1)
}

// fitWidth downscales an image to the printable dot width when it overflows
func fitWidth(img image.Image) image.Image {
	if img.Bounds().Dx() <= maxRasterWidth {
		return img
	}
	return imaging.Resize(img, maxRasterWidth, 0, imaging.Lanczos)
}
