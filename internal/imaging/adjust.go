package imaging

import (
	"image"

	"github.com/ocrstudio/ocrstudio/internal/apperr"
)

// Adjustments are the four multiplicative enhancement factors. 1.0 is the
// identity for each; factors must be positive.
type Adjustments struct {
	Brightness float64
	Contrast   float64
	Saturation float64
	Sharpness  float64
}

// Identity returns adjustments that leave the image unchanged.
func Identity() Adjustments {
	return Adjustments{Brightness: 1, Contrast: 1, Saturation: 1, Sharpness: 1}
}

// Validate rejects non-positive factors.
func (a Adjustments) Validate() error {
	checks := []struct {
		name  string
		value float64
	}{
		{"brightness", a.Brightness},
		{"contrast", a.Contrast},
		{"saturation", a.Saturation},
		{"sharpness", a.Sharpness},
	}
	for _, c := range checks {
		if c.value <= 0 {
			return apperr.New(apperr.InvalidParameter, "%s factor must be positive, got %g", c.name, c.value)
		}
	}
	return nil
}

// Apply runs the adjustment chain on a copy of src and returns the result.
// The order is fixed: brightness, then contrast, then saturation, then
// sharpness. The operations do not commute, so callers must not reorder them.
// Output dimensions always equal input dimensions.
func Apply(src *image.NRGBA, a Adjustments) (*image.NRGBA, error) {
	if err := a.Validate(); err != nil {
		return nil, err
	}
	img := clone(src)
	if a.Brightness != 1 {
		img = adjustBrightness(img, a.Brightness)
	}
	if a.Contrast != 1 {
		img = adjustContrast(img, a.Contrast)
	}
	if a.Saturation != 1 {
		img = adjustSaturation(img, a.Saturation)
	}
	if a.Sharpness != 1 {
		img = adjustSharpness(img, a.Sharpness)
	}
	return img, nil
}

// adjustBrightness interpolates each channel between black and the original.
func adjustBrightness(img *image.NRGBA, factor float64) *image.NRGBA {
	out := image.NewNRGBA(img.Bounds())
	for i := 0; i < len(img.Pix); i += 4 {
		out.Pix[i] = clamp8(float64(img.Pix[i]) * factor)
		out.Pix[i+1] = clamp8(float64(img.Pix[i+1]) * factor)
		out.Pix[i+2] = clamp8(float64(img.Pix[i+2]) * factor)
		out.Pix[i+3] = img.Pix[i+3]
	}
	return out
}

// adjustContrast interpolates between the mean luminance and the original.
func adjustContrast(img *image.NRGBA, factor float64) *image.NRGBA {
	var sum, count float64
	for i := 0; i < len(img.Pix); i += 4 {
		sum += luminance(img.Pix[i], img.Pix[i+1], img.Pix[i+2])
		count++
	}
	mean := 0.0
	if count > 0 {
		mean = sum / count
	}

	out := image.NewNRGBA(img.Bounds())
	for i := 0; i < len(img.Pix); i += 4 {
		out.Pix[i] = clamp8(mean + (float64(img.Pix[i])-mean)*factor)
		out.Pix[i+1] = clamp8(mean + (float64(img.Pix[i+1])-mean)*factor)
		out.Pix[i+2] = clamp8(mean + (float64(img.Pix[i+2])-mean)*factor)
		out.Pix[i+3] = img.Pix[i+3]
	}
	return out
}

// adjustSaturation interpolates between the per-pixel gray value and the
// original. A factor of 0 would be grayscale, but 0 is rejected upstream;
// Grayscale covers that case explicitly.
func adjustSaturation(img *image.NRGBA, factor float64) *image.NRGBA {
	out := image.NewNRGBA(img.Bounds())
	for i := 0; i < len(img.Pix); i += 4 {
		gray := luminance(img.Pix[i], img.Pix[i+1], img.Pix[i+2])
		out.Pix[i] = clamp8(gray + (float64(img.Pix[i])-gray)*factor)
		out.Pix[i+1] = clamp8(gray + (float64(img.Pix[i+1])-gray)*factor)
		out.Pix[i+2] = clamp8(gray + (float64(img.Pix[i+2])-gray)*factor)
		out.Pix[i+3] = img.Pix[i+3]
	}
	return out
}

// adjustSharpness interpolates between a smoothed copy and the original.
// Factors below 1 blur, above 1 sharpen.
func adjustSharpness(img *image.NRGBA, factor float64) *image.NRGBA {
	blurred := smooth(img)
	out := image.NewNRGBA(img.Bounds())
	for i := 0; i < len(img.Pix); i += 4 {
		for c := 0; c < 3; c++ {
			b := float64(blurred.Pix[i+c])
			o := float64(img.Pix[i+c])
			out.Pix[i+c] = clamp8(b + (o-b)*factor)
		}
		out.Pix[i+3] = img.Pix[i+3]
	}
	return out
}

// smooth applies a 3x3 smoothing kernel (center weight 5, neighbors 1) with
// edge pixels left untouched.
func smooth(img *image.NRGBA) *image.NRGBA {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	out := clone(img)
	if w < 3 || h < 3 {
		return out
	}
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			for c := 0; c < 3; c++ {
				var acc float64
				for dy := -1; dy <= 1; dy++ {
					for dx := -1; dx <= 1; dx++ {
						weight := 1.0
						if dx == 0 && dy == 0 {
							weight = 5.0
						}
						acc += weight * float64(img.Pix[(y+dy)*img.Stride+(x+dx)*4+c])
					}
				}
				out.Pix[y*out.Stride+x*4+c] = clamp8(acc / 13.0)
			}
		}
	}
	return out
}

func luminance(r, g, b uint8) float64 {
	return 0.299*float64(r) + 0.587*float64(g) + 0.114*float64(b)
}

func clamp8(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v + 0.5)
}

func clone(img *image.NRGBA) *image.NRGBA {
	out := image.NewNRGBA(img.Bounds())
	copy(out.Pix, img.Pix)
	return out
}
