package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ocrstudio/ocrstudio/internal/chat"
	"github.com/ocrstudio/ocrstudio/internal/config"
	"github.com/ocrstudio/ocrstudio/internal/imaging"
	"github.com/ocrstudio/ocrstudio/internal/ocr"
	"github.com/ocrstudio/ocrstudio/internal/registry"
	"github.com/ocrstudio/ocrstudio/internal/storage"
	"github.com/ocrstudio/ocrstudio/internal/structure"
	"github.com/ocrstudio/ocrstudio/internal/translate"
	"github.com/ocrstudio/ocrstudio/internal/vl"
)

type fakeOCRBackend struct{}

func (fakeOCRBackend) Name() string { return "fake" }

func (fakeOCRBackend) Recognize(ctx context.Context, img []byte, opts ocr.Options) (*ocr.Result, error) {
	return &ocr.Result{
		Boxes: []ocr.Box{{
			Points:     [][2]float64{{0, 0}, {10, 0}, {10, 5}, {0, 5}},
			Text:       "hello",
			Confidence: 0.99,
		}},
		Texts:    []ocr.Span{{Text: "hello", Confidence: 0.99}},
		FullText: "hello",
	}, nil
}

type fakeStructureBackend struct{}

func (fakeStructureBackend) Name() string { return "fake" }

func (fakeStructureBackend) ParsePage(ctx context.Context, img []byte, lang string) (*structure.Page, error) {
	return &structure.Page{
		Layout:   []structure.Region{{Type: "title", Box: []float64{0, 0, 10, 5}}},
		Markdown: "## Title",
	}, nil
}

type fakeVLBackend struct{}

func (fakeVLBackend) Name() string { return "fake" }

func (fakeVLBackend) Parse(ctx context.Context, img []byte) (*vl.Result, error) {
	return &vl.Result{FullText: "parsed", Markdown: "# parsed"}, nil
}

type fakeChatBackend struct{}

func (fakeChatBackend) Name() string { return "fake" }

func (fakeChatBackend) Extract(ctx context.Context, img []byte, keys []string) (map[string]string, error) {
	out := make(map[string]string, len(keys))
	for _, k := range keys {
		out[k] = "value of " + k
	}
	return out, nil
}

type fakeTranslateBackend struct{}

func (fakeTranslateBackend) Name() string { return "fake" }

func (fakeTranslateBackend) Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	return "[" + targetLang + "] " + text, nil
}

func testHandler(t *testing.T) *Handler {
	t.Helper()
	cfg := &config.Config{
		ModelDir:  t.TempDir(),
		UploadDir: t.TempDir(),
	}
	vlEngine := vl.NewWithBackend(fakeVLBackend{})
	return NewWithServices(
		cfg,
		registry.New(cfg.ModelDir, false),
		ocr.NewWithBackend(fakeOCRBackend{}),
		structure.NewWithBackend(fakeStructureBackend{}, nil),
		vlEngine,
		chat.NewWithBackend(fakeChatBackend{}),
		translate.NewWithBackend(fakeTranslateBackend{}, vlEngine),
	)
}

func testMux(t *testing.T) (*http.ServeMux, *Handler) {
	t.Helper()
	h := testHandler(t)
	mux := http.NewServeMux()
	h.Routes(mux)
	return mux, h
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 100, 100))
	for i := range img.Pix {
		img.Pix[i] = 255
	}
	data, err := imaging.EncodePNG(img)
	if err != nil {
		t.Fatal(err)
	}
	return data
}

func multipartBody(t *testing.T, filename string, content []byte, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatal(err)
	}
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatal(err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}
	return &buf, mw.FormDataContentType()
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON response: %v\n%s", err, rec.Body.String())
	}
	return body
}

func TestOCRUpload(t *testing.T) {
	mux, _ := testMux(t)

	body, contentType := multipartBody(t, "page.png", pngBytes(t), map[string]string{
		"lang":    "en",
		"version": "PP-OCRv5",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/ocr", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	resp := decodeBody(t, rec)
	if resp["full_text"] != "hello" {
		t.Errorf("full_text = %v", resp["full_text"])
	}
	if _, ok := resp["boxes"].([]any); !ok {
		t.Errorf("boxes missing: %v", resp["boxes"])
	}
	processed, _ := resp["processed_image"].(string)
	if !strings.HasPrefix(processed, "data:image/png;base64,") {
		t.Errorf("processed_image = %.40s", processed)
	}
}

func TestOCRRejectsNonImage(t *testing.T) {
	mux, _ := testMux(t)

	body, contentType := multipartBody(t, "notes.txt", []byte("plain text"), nil)
	req := httptest.NewRequest(http.MethodPost, "/api/ocr", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	resp := decodeBody(t, rec)
	if resp["error"] == "" {
		t.Error("error message missing")
	}
}

func TestOCRRejectsCorruptImage(t *testing.T) {
	mux, _ := testMux(t)

	body, contentType := multipartBody(t, "page.png", []byte("not a png"), nil)
	req := httptest.NewRequest(http.MethodPost, "/api/ocr", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestOCRRejectsUnknownLanguageAndVersion(t *testing.T) {
	mux, _ := testMux(t)

	for _, fields := range []map[string]string{
		{"lang": "klingon"},
		{"lang": "en", "version": "PP-OCRv9"},
	} {
		body, contentType := multipartBody(t, "page.png", pngBytes(t), fields)
		req := httptest.NewRequest(http.MethodPost, "/api/ocr", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("fields %v: status = %d, want 400", fields, rec.Code)
		}
	}
}

func TestOCRRejectsBadFactor(t *testing.T) {
	mux, _ := testMux(t)

	for _, brightness := range []string{"abc", "-1", "0"} {
		body, contentType := multipartBody(t, "page.png", pngBytes(t), map[string]string{
			"brightness": brightness,
		})
		req := httptest.NewRequest(http.MethodPost, "/api/ocr", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("brightness %q: status = %d, want 400", brightness, rec.Code)
		}
	}
}

func TestOCRJSONBody(t *testing.T) {
	mux, _ := testMux(t)

	img, err := imaging.Decode(pngBytes(t))
	if err != nil {
		t.Fatal(err)
	}
	dataURL, err := imaging.ToDataURL(img)
	if err != nil {
		t.Fatal(err)
	}
	payload, _ := json.Marshal(map[string]any{
		"image":      dataURL,
		"lang":       "en",
		"brightness": 1.2,
	})

	req := httptest.NewRequest(http.MethodPost, "/api/ocr", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	resp := decodeBody(t, rec)
	if resp["full_text"] != "hello" {
		t.Errorf("full_text = %v", resp["full_text"])
	}
}

func TestPreprocess(t *testing.T) {
	mux, _ := testMux(t)

	img, err := imaging.Decode(pngBytes(t))
	if err != nil {
		t.Fatal(err)
	}
	dataURL, err := imaging.ToDataURL(img)
	if err != nil {
		t.Fatal(err)
	}
	payload, _ := json.Marshal(map[string]any{
		"image":     dataURL,
		"contrast":  1.5,
		"grayscale": true,
	})

	req := httptest.NewRequest(http.MethodPost, "/api/preprocess", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	resp := decodeBody(t, rec)
	if resp["width"] != float64(100) || resp["height"] != float64(100) {
		t.Errorf("dimensions = %vx%v, want 100x100", resp["width"], resp["height"])
	}
}

func TestStructureUpload(t *testing.T) {
	mux, _ := testMux(t)

	body, contentType := multipartBody(t, "page.png", pngBytes(t), map[string]string{"lang": "en"})
	req := httptest.NewRequest(http.MethodPost, "/api/structure", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	resp := decodeBody(t, rec)
	if resp["markdown"] != "## Title" {
		t.Errorf("markdown = %v", resp["markdown"])
	}
}

func TestVLUpload(t *testing.T) {
	mux, _ := testMux(t)

	body, contentType := multipartBody(t, "page.png", pngBytes(t), nil)
	req := httptest.NewRequest(http.MethodPost, "/api/vl", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	resp := decodeBody(t, rec)
	if resp["full_text"] != "parsed" {
		t.Errorf("full_text = %v", resp["full_text"])
	}
}

func TestMetaEndpoints(t *testing.T) {
	mux, _ := testMux(t)

	tests := []struct {
		path string
		key  string
	}{
		{"/api/languages", "languages"},
		{"/api/language-groups", "groups"},
		{"/api/versions", "versions"},
		{"/api/vl/languages", "languages"},
		{"/api/structure/layout", "styles"},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, tt.path, nil)
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("%s: status = %d", tt.path, rec.Code)
			continue
		}
		resp := decodeBody(t, rec)
		if _, ok := resp[tt.key]; !ok {
			t.Errorf("%s: key %q missing in %v", tt.path, tt.key, resp)
		}
	}
}

func TestModelsList(t *testing.T) {
	mux, _ := testMux(t)

	req := httptest.NewRequest(http.MethodGet, "/api/models", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	resp := decodeBody(t, rec)
	models, ok := resp["models"].([]any)
	if !ok || len(models) == 0 {
		t.Fatalf("models = %v", resp["models"])
	}
	if _, ok := resp["disk_usage_mb"]; !ok {
		t.Error("disk_usage_mb missing")
	}
	for _, m := range models {
		if m.(map[string]any)["installed"] != false {
			t.Errorf("model reported installed on empty dir: %v", m)
		}
	}
}

func TestModelDownloadUnknownID(t *testing.T) {
	mux, _ := testMux(t)

	req := httptest.NewRequest(http.MethodPost, "/api/models/nonexistent-id/download", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code < 400 || rec.Code >= 500 {
		t.Fatalf("status = %d, want 4xx", rec.Code)
	}
	resp := decodeBody(t, rec)
	msg, _ := resp["error"].(string)
	if !strings.Contains(msg, "nonexistent-id") {
		t.Errorf("error = %q, want mention of the unknown id", msg)
	}
}

func TestModelDeleteNotInstalled(t *testing.T) {
	mux, _ := testMux(t)

	req := httptest.NewRequest(http.MethodDelete, "/api/models/PP-OCRv5_mobile_det", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestBatchLifecycle(t *testing.T) {
	mux, h := testMux(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, name := range []string{"a.png", "b.png"} {
		part, err := mw.CreateFormFile("files", name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := part.Write(pngBytes(t)); err != nil {
			t.Fatal(err)
		}
	}
	if err := mw.WriteField("type", "ocr"); err != nil {
		t.Fatal(err)
	}
	if err := mw.WriteField("lang", "en"); err != nil {
		t.Fatal(err)
	}
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/batch", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	resp := decodeBody(t, rec)
	id, _ := resp["job_id"].(string)
	if id == "" {
		t.Fatalf("job_id missing: %v", resp)
	}

	h.Batch().Wait(id)

	req = httptest.NewRequest(http.MethodGet, "/api/batch/"+id, nil)
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("poll status = %d", rec.Code)
	}
	job := decodeBody(t, rec)
	if job["status"] != string(storage.JobCompleted) {
		t.Errorf("job status = %v", job["status"])
	}
	if job["progress"] != float64(2) || job["total"] != float64(2) {
		t.Errorf("progress = %v / %v, want 2 / 2", job["progress"], job["total"])
	}
}

func TestBatchRejectsUnknownType(t *testing.T) {
	mux, _ := testMux(t)

	body, contentType := multipartBody(t, "a.png", pngBytes(t), map[string]string{"type": "translate"})
	req := httptest.NewRequest(http.MethodPost, "/api/batch", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestBatchUnknownJob(t *testing.T) {
	mux, _ := testMux(t)

	req := httptest.NewRequest(http.MethodGet, "/api/batch/batch_404", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	mux, _ := testMux(t)

	req := httptest.NewRequest(http.MethodGet, "/api/ocr", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", rec.Code)
	}
}

func TestChatExtract(t *testing.T) {
	mux, _ := testMux(t)

	body, contentType := multipartBody(t, "invoice.png", pngBytes(t), map[string]string{
		"keys": "invoice_number, total_amount",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/chat/extract", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	resp := decodeBody(t, rec)
	extracted, ok := resp["extracted"].(map[string]any)
	if !ok {
		t.Fatalf("extracted missing: %v", resp)
	}
	for _, key := range []string{"invoice_number", "total_amount"} {
		field, ok := extracted[key].(map[string]any)
		if !ok {
			t.Fatalf("key %q missing: %v", key, extracted)
		}
		if field["value"] != "value of "+key {
			t.Errorf("value for %q = %v", key, field["value"])
		}
	}
}

func TestChatExtractTemplate(t *testing.T) {
	mux, _ := testMux(t)

	body, contentType := multipartBody(t, "receipt.png", pngBytes(t), map[string]string{
		"template": "receipt",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/chat/extract", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	resp := decodeBody(t, rec)
	extracted, ok := resp["extracted"].(map[string]any)
	if !ok {
		t.Fatalf("extracted missing: %v", resp)
	}
	if _, ok := extracted["merchant_name"]; !ok {
		t.Errorf("receipt template should request merchant_name, got %v", extracted)
	}
}

func TestChatExtractRejectsUnknownTemplate(t *testing.T) {
	mux, _ := testMux(t)

	body, contentType := multipartBody(t, "doc.png", pngBytes(t), map[string]string{
		"template": "no-such-template",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/chat/extract", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestChatAsk(t *testing.T) {
	mux, _ := testMux(t)

	body, contentType := multipartBody(t, "doc.png", pngBytes(t), map[string]string{
		"question": "What is the due date?",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/chat/ask", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	resp := decodeBody(t, rec)
	if resp["answer"] != "value of What is the due date?" {
		t.Errorf("answer = %v", resp["answer"])
	}
}

func TestChatAskRejectsEmptyQuestion(t *testing.T) {
	mux, _ := testMux(t)

	body, contentType := multipartBody(t, "doc.png", pngBytes(t), nil)
	req := httptest.NewRequest(http.MethodPost, "/api/chat/ask", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestChatTemplates(t *testing.T) {
	mux, _ := testMux(t)

	req := httptest.NewRequest(http.MethodGet, "/api/chat/templates", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	resp := decodeBody(t, rec)
	templates, ok := resp["templates"].([]any)
	if !ok || len(templates) == 0 {
		t.Fatalf("templates missing: %v", resp)
	}
}

func TestTranslateText(t *testing.T) {
	mux, _ := testMux(t)

	payload := `{"text": "hello", "source": "en", "target": "fr"}`
	req := httptest.NewRequest(http.MethodPost, "/api/translate", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	resp := decodeBody(t, rec)
	if resp["translated"] != "[fr] hello" {
		t.Errorf("translated = %v", resp["translated"])
	}
}

func TestTranslateRejectsUnsupportedLanguage(t *testing.T) {
	mux, _ := testMux(t)

	payload := `{"text": "hello", "source": "en", "target": "xx"}`
	req := httptest.NewRequest(http.MethodPost, "/api/translate", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestTranslateDocument(t *testing.T) {
	mux, _ := testMux(t)

	body, contentType := multipartBody(t, "doc.png", pngBytes(t), map[string]string{
		"source": "en",
		"target": "zh",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/translate/document", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	resp := decodeBody(t, rec)
	if resp["translated_markdown"] != "[zh] # parsed" {
		t.Errorf("translated_markdown = %v", resp["translated_markdown"])
	}
	if resp["markdown"] != "# parsed" {
		t.Errorf("markdown = %v", resp["markdown"])
	}
}

func TestTranslateLanguages(t *testing.T) {
	mux, _ := testMux(t)

	req := httptest.NewRequest(http.MethodGet, "/api/translate/languages", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	resp := decodeBody(t, rec)
	langs, ok := resp["languages"].([]any)
	if !ok || len(langs) != 14 {
		t.Fatalf("languages = %v, want 14 entries", resp["languages"])
	}
}
