package epd2in7

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
)

// Geometry is the panel size in pixels. Both sides are multiples of 8.
type Geometry struct {
	Width  int
	Height int
}

// EPD2in7 is the Waveshare 2.7 inch panel, 176x264 in portrait.
var EPD2in7 = Geometry{Width: 176, Height: 264}

// BufSize is the length of a FrameBuffer for g.
func (g Geometry) BufSize() int {
	return g.Width / 8 * g.Height
}

// Bounds is the native orientation.
func (g Geometry) Bounds() image.Rectangle {
	return image.Rect(0, 0, g.Width, g.Height)
}

// RotatedBounds is the orientation turned by 90 degrees.
func (g Geometry) RotatedBounds() image.Rectangle {
	return image.Rect(0, 0, g.Height, g.Width)
}

func (g Geometry) validate() error {
	if g.Width <= 0 || g.Height <= 0 || g.Width%8 != 0 || g.Height%8 != 0 {
		return fmt.Errorf("epd2in7: geometry %dx%d is not a positive multiple of 8", g.Width, g.Height)
	}
	return nil
}

// FrameBuffer is the controller native format: one bit per pixel, rows of
// Width/8 bytes, most significant bit first. A set bit is white.
type FrameBuffer []byte

var (
	White = color.Gray{Y: 0xFF}
	Black = color.Gray{Y: 0}

	// Model maps any color to Black or White.
	Model = color.ModelFunc(model)

	palette = color.Palette{Black, White}
)

func model(c color.Color) color.Color {
	return palette.Convert(c)
}

// EncodeBitmap packs a row-major bitmap of one byte per pixel, where 0 is
// black and anything else white. The bitmap is w x h and must match g in
// either orientation; a bitmap of g.Height x g.Width is treated as rotated by
// 90 degrees.
func EncodeBitmap(g Geometry, pix []byte, w, h int) (FrameBuffer, error) {
	if w < 0 || h < 0 || len(pix) != w*h {
		return nil, fmt.Errorf("%w: bitmap of %d bytes is not %dx%d", ErrDimensionMismatch, len(pix), w, h)
	}
	return encode(g, w, h, func(x, y int) bool {
		return pix[x+y*w] == 0
	})
}

// Encode packs img the same way as EncodeBitmap. A pixel is black when its
// gray value is 0.
func Encode(g Geometry, img image.Image) (FrameBuffer, error) {
	b := img.Bounds()
	switch src := img.(type) {
	case *Image:
		if src.Rect == g.Bounds() && len(src.Pix) == g.BufSize() {
			return append(FrameBuffer(nil), src.Pix...), nil
		}
		return encode(g, b.Dx(), b.Dy(), func(x, y int) bool {
			return src.BlackAt(b.Min.X+x, b.Min.Y+y)
		})
	case *image.Gray:
		return encode(g, b.Dx(), b.Dy(), func(x, y int) bool {
			return src.GrayAt(b.Min.X+x, b.Min.Y+y).Y == 0
		})
	}
	return encode(g, b.Dx(), b.Dy(), func(x, y int) bool {
		return color.GrayModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.Gray).Y == 0
	})
}

func encode(g Geometry, w, h int, black func(x, y int) bool) (FrameBuffer, error) {
	if err := g.validate(); err != nil {
		return nil, err
	}
	var rotated bool
	switch {
	case w == g.Width && h == g.Height:
	case w == g.Height && h == g.Width:
		rotated = true
	default:
		return nil, fmt.Errorf("%w: source is %dx%d, panel takes %dx%d or %dx%d",
			ErrDimensionMismatch, w, h, g.Width, g.Height, g.Height, g.Width)
	}

	buf := FrameBuffer(bytes.Repeat([]byte{0xFF}, g.BufSize()))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if !black(x, y) {
				continue
			}
			if rotated {
				nx, ny := y, g.Height-x-1
				buf[(nx+ny*g.Width)/8] &^= 0x80 >> (uint(y) % 8)
			} else {
				buf[(x+y*g.Width)/8] &^= 0x80 >> (uint(x) % 8)
			}
		}
	}
	return buf, nil
}

// Image is a draw.Image backed by a FrameBuffer in native orientation.
type Image struct {
	// This display represents black pixels as 0, white as 1.
	Pix  FrameBuffer
	Rect image.Rectangle
}

// NewImage returns an all white image of the size of g.
func NewImage(g Geometry) *Image {
	return &Image{
		Pix:  bytes.Repeat([]byte{0xFF}, g.BufSize()),
		Rect: g.Bounds(),
	}
}

// Decode returns an Image view of fb. The buffer is shared, not copied.
func Decode(g Geometry, fb FrameBuffer) (*Image, error) {
	if err := g.validate(); err != nil {
		return nil, err
	}
	if len(fb) != g.BufSize() {
		return nil, fmt.Errorf("%w: buffer is %d bytes, want %d", ErrDimensionMismatch, len(fb), g.BufSize())
	}
	return &Image{Pix: fb, Rect: g.Bounds()}, nil
}

func (i *Image) offset(x, y int) (int, byte) {
	x, y = x-i.Rect.Min.X, y-i.Rect.Min.Y
	return (x + y*i.Rect.Dx()) / 8, byte(0x80 >> (uint(x) % 8))
}

// BlackAt reports whether the pixel at (x, y) is black.
func (i *Image) BlackAt(x, y int) bool {
	if !(image.Point{x, y}.In(i.Rect)) {
		return false
	}
	px, bit := i.offset(x, y)
	return i.Pix[px]&bit == 0
}

func (i *Image) Set(x, y int, c color.Color) {
	if !(image.Point{x, y}.In(i.Rect)) {
		return
	}
	px, bit := i.offset(x, y)
	if model(c) == Black {
		i.Pix[px] &^= bit
	} else {
		i.Pix[px] |= bit
	}
}

func (i *Image) ColorModel() color.Model {
	return Model
}

func (i *Image) Bounds() image.Rectangle {
	return i.Rect
}

func (i *Image) At(x, y int) color.Color {
	if i.BlackAt(x, y) {
		return Black
	}
	return White
}
