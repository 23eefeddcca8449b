// Package bitmap reduces arbitrary images to the black and white bitmaps the
// panel can show.
package bitmap

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
	"github.com/makeworld-the-better-one/dither"
)

// Fit rotates img by deg degrees counter-clockwise, scales it to fit w x h and
// centers it on a white canvas of that size.
func Fit(img image.Image, deg float64, w, h int) *image.NRGBA {
	rot := imaging.Rotate(img, deg, color.White)
	fit := imaging.Fit(rot, w, h, imaging.Lanczos)
	return imaging.PasteCenter(imaging.New(w, h, color.White), fit)
}

// Threshold maps every pixel darker than level to black and the rest to white.
func Threshold(img image.Image, level uint8) *image.Gray {
	b := img.Bounds()
	out := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			g := color.GrayModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.Gray)
			if g.Y >= level {
				out.Pix[out.PixOffset(x, y)] = 0xFF
			}
		}
	}
	return out
}

// Dither reduces img to black and white with Floyd-Steinberg error diffusion.
func Dither(img image.Image) *image.Gray {
	d := dither.NewDitherer([]color.Color{color.Black, color.White})
	d.Matrix = dither.FloydSteinberg
	d.Serpentine = true
	p := d.DitherPaletted(img)
	if p == nil {
		// Already two-toned.
		return Threshold(img, 0x80)
	}
	return Threshold(p, 0x80)
}

// IsBinary reports whether every pixel of g is 0 or 255.
func IsBinary(g *image.Gray) bool {
	b := g.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := g.Pix[g.PixOffset(b.Min.X, y) : g.PixOffset(b.Max.X-1, y)+1]
		for _, v := range row {
			if v != 0 && v != 0xFF {
				return false
			}
		}
	}
	return true
}
