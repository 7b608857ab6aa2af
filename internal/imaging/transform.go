package imaging

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
)

// Corrections are the optional geometric and tonal fixes applied after the
// adjustment chain, in the order the fields are declared.
type Corrections struct {
	Rotation  float64 // degrees, clockwise
	FlipH     bool
	FlipV     bool
	Grayscale bool
	Invert    bool
}

// ApplyCorrections runs the enabled corrections on img.
func ApplyCorrections(img *image.NRGBA, c Corrections) *image.NRGBA {
	if c.Rotation != 0 {
		img = Rotate(img, c.Rotation)
	}
	if c.FlipH {
		img = FlipHorizontal(img)
	}
	if c.FlipV {
		img = FlipVertical(img)
	}
	if c.Grayscale {
		img = Grayscale(img)
	}
	if c.Invert {
		img = Invert(img)
	}
	return img
}

// Rotate rotates the image clockwise by the given degrees, expanding the
// canvas to fit and filling the background with white.
func Rotate(img *image.NRGBA, degrees float64) *image.NRGBA {
	rad := degrees * math.Pi / 180
	sin, cos := math.Sincos(rad)
	b := img.Bounds()
	w, h := float64(b.Dx()), float64(b.Dy())

	// Expanded canvas size.
	nw := math.Abs(w*cos) + math.Abs(h*sin)
	nh := math.Abs(w*sin) + math.Abs(h*cos)
	// Tolerate float noise from Sincos at right angles before rounding up.
	dst := image.NewNRGBA(image.Rect(0, 0, int(math.Ceil(nw-1e-9)), int(math.Ceil(nh-1e-9))))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)

	// Rotate about the source center, then recenter on the new canvas.
	m := f64.Aff3{
		cos, -sin, nw/2 - cos*(w/2) + sin*(h/2),
		sin, cos, nh/2 - sin*(w/2) - cos*(h/2),
	}
	xdraw.ApproxBiLinear.Transform(dst, m, img, b, xdraw.Over, nil)
	return dst
}

// FlipHorizontal mirrors the image left to right.
func FlipHorizontal(img *image.NRGBA) *image.NRGBA {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	out := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			si := y*img.Stride + x*4
			di := y*out.Stride + (w-1-x)*4
			copy(out.Pix[di:di+4], img.Pix[si:si+4])
		}
	}
	return out
}

// FlipVertical mirrors the image top to bottom.
func FlipVertical(img *image.NRGBA) *image.NRGBA {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	out := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		si := y * img.Stride
		di := (h - 1 - y) * out.Stride
		copy(out.Pix[di:di+w*4], img.Pix[si:si+w*4])
	}
	return out
}

// Grayscale converts the image to gray while keeping the RGB layout.
func Grayscale(img *image.NRGBA) *image.NRGBA {
	out := image.NewNRGBA(img.Bounds())
	for i := 0; i < len(img.Pix); i += 4 {
		g := clamp8(luminance(img.Pix[i], img.Pix[i+1], img.Pix[i+2]))
		out.Pix[i] = g
		out.Pix[i+1] = g
		out.Pix[i+2] = g
		out.Pix[i+3] = img.Pix[i+3]
	}
	return out
}

// Invert inverts the color channels, preserving alpha.
func Invert(img *image.NRGBA) *image.NRGBA {
	out := image.NewNRGBA(img.Bounds())
	for i := 0; i < len(img.Pix); i += 4 {
		out.Pix[i] = 255 - img.Pix[i]
		out.Pix[i+1] = 255 - img.Pix[i+1]
		out.Pix[i+2] = 255 - img.Pix[i+2]
		out.Pix[i+3] = img.Pix[i+3]
	}
	return out
}
