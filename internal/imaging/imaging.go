// Package imaging implements the image preprocessing applied before
// inference: decode, the brightness/contrast/saturation/sharpness adjustment
// chain, and the extra corrections exposed by the preprocess endpoint.
package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/draw"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/ocrstudio/ocrstudio/internal/apperr"
)

// Decode parses raw image bytes into an NRGBA image. All upload formats the
// UI accepts (png, jpg, gif, bmp, webp, tiff) are registered.
func Decode(data []byte) (*image.NRGBA, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, apperr.Wrap(apperr.InvalidImage, err, "decode image")
	}
	return toNRGBA(img), nil
}

// DecodeDataURL parses a base64 data URL ("data:image/png;base64,....") or a
// bare base64 payload into an NRGBA image.
func DecodeDataURL(s string) (*image.NRGBA, error) {
	payload := s
	if strings.HasPrefix(s, "data:") {
		idx := strings.Index(s, ",")
		if idx < 0 {
			return nil, apperr.New(apperr.InvalidImage, "malformed data URL")
		}
		payload = s[idx+1:]
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, apperr.Wrap(apperr.InvalidImage, err, "decode base64 image")
	}
	return Decode(data)
}

// EncodePNG serializes an image as PNG.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// ToDataURL serializes an image as a PNG base64 data URL for the browser.
func ToDataURL(img image.Image) (string, error) {
	data, err := EncodePNG(img)
	if err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(data), nil
}

func toNRGBA(img image.Image) *image.NRGBA {
	if n, ok := img.(*image.NRGBA); ok {
		return n
	}
	b := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}
