package utils

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http/httptest"
	"strings"
	"testing"
)

// buildUpload assembles a multipart request carrying the given files and
// returns its parsed file headers.
func buildUpload(t *testing.T, files map[string][]byte) []*multipart.FileHeader {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for name, content := range files {
		part, err := w.CreateFormFile("images", name)
		if err != nil {
			t.Fatalf("create part: %v", err)
		}
		if _, err := part.Write(content); err != nil {
			t.Fatalf("write part: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	req := httptest.NewRequest("POST", "/", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	if err := req.ParseMultipartForm(32 << 20); err != nil {
		t.Fatalf("parse form: %v", err)
	}
	return req.MultipartForm.File["images"]
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func TestValidateImagesAcceptsRealImage(t *testing.T) {
	files := buildUpload(t, map[string][]byte{"photo.png": pngBytes(t)})
	valid, errs := ValidateImages(files)
	if len(errs) != 0 {
		t.Fatalf("errs = %v, want none", errs)
	}
	if len(valid) != 1 {
		t.Fatalf("valid = %d, want 1", len(valid))
	}
}

func TestValidateImagesRejectsGarbage(t *testing.T) {
	files := buildUpload(t, map[string][]byte{"notes.txt": []byte("just text, no pixels")})
	valid, errs := ValidateImages(files)
	if len(valid) != 0 {
		t.Fatalf("valid = %d, want 0", len(valid))
	}
	if len(errs) != 1 || !strings.Contains(errs[0], "not a valid image") {
		t.Fatalf("errs = %v, want a not-a-valid-image message", errs)
	}
}

func TestValidateImagesRejectsOversize(t *testing.T) {
	big := make([]byte, MaxImageSizeBytes+1)
	files := buildUpload(t, map[string][]byte{"huge.png": big})
	valid, errs := ValidateImages(files)
	if len(valid) != 0 {
		t.Fatalf("valid = %d, want 0", len(valid))
	}
	if len(errs) != 1 || !strings.Contains(errs[0], "5MB") {
		t.Fatalf("errs = %v, want a size message", errs)
	}
}

func TestSaveImagesNamesFiles(t *testing.T) {
	dir := t.TempDir()
	files := buildUpload(t, map[string][]byte{"my photo.png": pngBytes(t)})

	names, err := SaveImages(42, files, dir)
	if err != nil {
		t.Fatalf("SaveImages: %v", err)
	}
	if len(names) != 1 {
		t.Fatalf("names = %d, want 1", len(names))
	}
	if !strings.HasPrefix(names[0], "42_") {
		t.Fatalf("name %q not prefixed with owner id", names[0])
	}
	if strings.Contains(names[0], " ") {
		t.Fatalf("name %q contains spaces", names[0])
	}
}
