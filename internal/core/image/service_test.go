package image

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"recipe-discovery/internal/core/httpclient"
	"recipe-discovery/internal/pkg/common"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.RGBA{R: 200, G: 100, B: 50, A: 255})
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png.Encode: %v", err)
	}
	return buf.Bytes()
}

func decodeEncoded(t *testing.T, enc *common.EncodedImage) image.Image {
	t.Helper()
	raw, err := base64.StdEncoding.DecodeString(enc.Data)
	if err != nil {
		t.Fatalf("base64 decode: %v", err)
	}
	img, format, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("image.Decode: %v", err)
	}
	if format != "jpeg" {
		t.Errorf("format = %q; want jpeg", format)
	}
	return img
}

func TestEncodeFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dish.png")
	if err := os.WriteFile(path, pngBytes(t, 40, 20), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	svc := NewService(10<<20, 0, nil)
	for _, source := range []string{path, "file://" + path} {
		enc, err := svc.Encode(context.Background(), source)
		if err != nil {
			t.Fatalf("Encode(%q): %v", source, err)
		}
		if enc.MimeType != "image/jpeg" {
			t.Errorf("MimeType = %q; want image/jpeg", enc.MimeType)
		}
		img := decodeEncoded(t, enc)
		if img.Bounds().Dx() != 40 || img.Bounds().Dy() != 20 {
			t.Errorf("size = %v; want 40x20", img.Bounds())
		}
	}
}

func TestEncodeDataURIAndURL(t *testing.T) {
	raw := pngBytes(t, 10, 10)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write(raw)
	}))
	defer srv.Close()

	svc := NewService(10<<20, 0, httpclient.New(httpclient.Options{Provider: "image-download"}))
	sources := []string{
		"data:image/png;base64," + base64.StdEncoding.EncodeToString(raw),
		srv.URL + "/dish.png",
	}
	for _, source := range sources {
		enc, err := svc.Encode(context.Background(), source)
		if err != nil {
			t.Fatalf("Encode: %v", err)
		}
		if enc.Size == 0 || enc.Data == "" {
			t.Errorf("Encode returned empty image")
		}
	}
}

func TestEncodeDownscalesLongSide(t *testing.T) {
	svc := NewService(10<<20, 100, nil)
	enc, err := svc.EncodeBytes(pngBytes(t, 400, 200))
	if err != nil {
		t.Fatalf("EncodeBytes: %v", err)
	}
	img := decodeEncoded(t, enc)
	if img.Bounds().Dx() != 100 || img.Bounds().Dy() != 50 {
		t.Errorf("size = %dx%d; want 100x50", img.Bounds().Dx(), img.Bounds().Dy())
	}
}

func TestEncodeInvalidInput(t *testing.T) {
	svc := NewService(64, 0, nil)

	tests := []struct {
		name   string
		source string
	}{
		{"empty", "  "},
		{"missing file", filepath.Join(t.TempDir(), "nope.png")},
		{"bad data uri", "data:image/png,notbase64"},
		{"not an image", "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("hello"))},
		{"too large", "data:image/png;base64," + base64.StdEncoding.EncodeToString(make([]byte, 128))},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Encode(context.Background(), tc.source)
			if !common.IsKind(err, common.KindInvalidInput) {
				t.Errorf("Encode(%q) err = %v; want INVALID_INPUT", tc.name, err)
			}
		})
	}
}

func TestEncodeDownloadFailureIsClassified(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	svc := NewService(10<<20, 0, nil)
	_, err := svc.Encode(context.Background(), srv.URL+"/missing.png")
	if !common.IsKind(err, common.KindNotFound) {
		t.Errorf("err = %v; want NOT_FOUND", err)
	}
}
