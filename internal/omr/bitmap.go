package omr

import (
	"image"
	"image/color"
)

// Bitmap is a preprocessed single-channel binary page, ink = true.
//
// It satisfies image.Image with ink rendered white on black (the inverted
// binary polarity), so a Bitmap can be handed back to the preprocessor.
type Bitmap struct {
	Width  int
	Height int
	Ink    []bool // row-major, len = Width*Height
}

// NewBitmap allocates an empty (all background) bitmap
func NewBitmap(width, height int) *Bitmap {
	return &Bitmap{
		Width:  width,
		Height: height,
		Ink:    make([]bool, width*height),
	}
}

// InkAt reports whether the pixel at (x, y) is foreground. Out-of-range is background.
func (b *Bitmap) InkAt(x, y int) bool {
	if x < 0 || y < 0 || x >= b.Width || y >= b.Height {
		return false
	}
	return b.Ink[y*b.Width+x]
}

// Set marks the pixel at (x, y)
func (b *Bitmap) Set(x, y int, ink bool) {
	if x < 0 || y < 0 || x >= b.Width || y >= b.Height {
		return
	}
	b.Ink[y*b.Width+x] = ink
}

// InkCount returns the number of foreground pixels
func (b *Bitmap) InkCount() int {
	n := 0
	for _, v := range b.Ink {
		if v {
			n++
		}
	}
	return n
}

func (b *Bitmap) ColorModel() color.Model { return color.GrayModel }

func (b *Bitmap) Bounds() image.Rectangle { return image.Rect(0, 0, b.Width, b.Height) }

func (b *Bitmap) At(x, y int) color.Color {
	if b.InkAt(x, y) {
		return color.Gray{Y: 0xff}
	}
	return color.Gray{Y: 0}
}

// valid reports whether the dimensions and mask agree
func (b *Bitmap) valid() bool {
	return b != nil && b.Width > 0 && b.Height > 0 && len(b.Ink) == b.Width*b.Height
}
