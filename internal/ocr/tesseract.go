package ocr

import (
	"bytes"
	"context"
	"image"
	"strings"

	"github.com/otiai10/gosseract/v2"

	"github.com/ocrstudio/ocrstudio/internal/apperr"
)

// traineddata maps the language table codes to Tesseract traineddata names.
var traineddata = map[string]string{
	"ch":          "chi_sim",
	"en":          "eng",
	"chinese_cht": "chi_tra",
	"korean":      "kor",
	"japan":       "jpn",
	"arabic":      "ara",
	"latin":       "lat",
	"cyrillic":    "rus",
	"devanagari":  "hin",
	"ta":          "tam",
	"te":          "tel",
	"ka":          "kan",
	"german":      "deu",
	"french":      "fra",
	"spanish":     "spa",
	"italian":     "ita",
	"portuguese":  "por",
	"russian":     "rus",
	"hi":          "hin",
	"mr":          "mar",
}

// TesseractBackend recognizes text with a local Tesseract installation.
// A fresh gosseract client is created per call, so concurrent calls are safe.
type TesseractBackend struct {
	clientFactory func() *gosseract.Client
}

// NewTesseractBackend constructs the in-process backend.
func NewTesseractBackend() *TesseractBackend {
	return &TesseractBackend{clientFactory: gosseract.NewClient}
}

func (b *TesseractBackend) Name() string { return "tesseract" }

// Recognize runs word-level recognition and reshapes the output into the
// common result format. The version tag selects model weights on the paddle
// backend; Tesseract has a single model per language and ignores it.
func (b *TesseractBackend) Recognize(ctx context.Context, imgData []byte, opts Options) (*Result, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	// Reject undecodable input before handing it to the C library.
	if _, _, err := image.Decode(bytes.NewReader(imgData)); err != nil {
		return nil, apperr.Wrap(apperr.InvalidImage, err, "decode image")
	}

	c := b.clientFactory()
	defer c.Close()

	if err := c.SetImageFromBytes(imgData); err != nil {
		return nil, apperr.Wrap(apperr.InferenceFailure, err, "set image")
	}
	if err := c.SetLanguage(traineddata[opts.Lang]); err != nil {
		return nil, apperr.Wrap(apperr.InferenceFailure, err, "set language %s", opts.Lang)
	}

	boxes, err := c.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return nil, apperr.Wrap(apperr.InferenceFailure, err, "recognize")
	}

	res := &Result{Boxes: []Box{}, Texts: []Span{}}
	for _, bb := range boxes {
		text := strings.TrimSpace(bb.Word)
		if text == "" {
			continue
		}
		conf := bb.Confidence / 100.0
		min, max := bb.Box.Min, bb.Box.Max
		res.Boxes = append(res.Boxes, Box{
			Points: [][2]float64{
				{float64(min.X), float64(min.Y)},
				{float64(max.X), float64(min.Y)},
				{float64(max.X), float64(max.Y)},
				{float64(min.X), float64(max.Y)},
			},
			Text:       text,
			Confidence: conf,
		})
		res.Texts = append(res.Texts, Span{Text: text, Confidence: conf})
	}
	res.FullText = joinSpans(res.Texts)
	return res, nil
}
