// Package encoder turns receipt payloads into ESC/POS command streams
package encoder

import (
	"bytes"
	"image"
)

// ESC/POS command prefixes
const (
	ESC byte = 0x1B
	GS  byte = 0x1D
)

// Alignment values for ESC a
const (
	AlignLeft   byte = 0x00
	AlignCenter byte = 0x01
	AlignRight  byte = 0x02
)

// Print mode values for ESC !
const (
	ModeReset      byte = 0x00
	ModeDoubleSize byte = 0x18
	ModeEmphasized byte = 0x08
)

// Encoder accumulates an ESC/POS command stream. Formatting commands are
// interleaved in-band with text, the way ESC/POS devices consume them.
type Encoder struct {
	buf *bytes.Buffer
}

// New creates an empty encoder
func New() *Encoder {
	return &Encoder{
		buf: new(bytes.Buffer),
	}
}

// Initialize emits the device-initialization command (ESC @)
func (e *Encoder) Initialize() {
	e.buf.WriteByte(ESC)
	e.buf.WriteByte('@')
}

// SetAlignment emits ESC a with the given alignment value
func (e *Encoder) SetAlignment(align byte) {
	e.buf.WriteByte(ESC)
	e.buf.WriteByte('a')
	e.buf.WriteByte(align)
}

// SetMode emits ESC ! with the given print mode value
func (e *Encoder) SetMode(mode byte) {
	e.buf.WriteByte(ESC)
	e.buf.WriteByte('!')
	e.buf.WriteByte(mode)
}

// Text writes raw text. The stream is single-byte encoded on the wire;
// keeping characters in the printable single-byte range is the caller's
// responsibility, no transliteration is attempted.
func (e *Encoder) Text(s string) {
	e.buf.WriteString(s)
}

// Line writes text followed by a line feed
func (e *Encoder) Line(s string) {
	e.buf.WriteString(s)
	e.buf.WriteByte('\n')
}

// Feed emits n line feeds
func (e *Encoder) Feed(n int) {
	for i := 0; i < n; i++ {
		e.buf.WriteByte('\n')
	}
}

// PartialCut emits the partial paper cut command (GS V B 0)
func (e *Encoder) PartialCut() {
	e.buf.WriteByte(GS)
	e.buf.WriteByte('V')
	e.buf.WriteByte(0x42)
	e.buf.WriteByte(0x00)
}

// Raster emits an image as 24-dot double-density raster lines (ESC *)
func (e *Encoder) Raster(img image.Image) {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	bitmap := imageToBitmap(img)
	bytesPerLine := (width + 7) / 8

	for y := 0; y < height; y++ {
		e.buf.WriteByte(ESC)
		e.buf.WriteByte('*')
		e.buf.WriteByte(33)
		e.buf.WriteByte(byte(bytesPerLine & 0xFF))
		e.buf.WriteByte(byte((bytesPerLine >> 8) & 0xFF))

		e.buf.Write(bitmap[y*bytesPerLine : (y+1)*bytesPerLine])
		e.buf.WriteByte('\n')
	}
}

// Bytes returns the accumulated command stream
func (e *Encoder) Bytes() []byte {
	return e.buf.Bytes()
}

// Reset clears the accumulated stream
func (e *Encoder) Reset() {
	e.buf.Reset()
}

// imageToBitmap converts an image to a 1-bit bitmap, thresholding at 50%
func imageToBitmap(img image.Image) []byte {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	bytesPerLine := (width + 7) / 8
	bitmap := make([]byte, bytesPerLine*height)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			r, g, b, _ := img.At(x+bounds.Min.X, y+bounds.Min.Y).RGBA()
			gray := (r + g + b) / 3

			if gray < 32768 {
				byteIndex := y*bytesPerLine + x/8
				bitIndex := 7 - (x % 8)
				bitmap[byteIndex] |= 1 << bitIndex
			}
		}
	}

	return bitmap
}
