package photo

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"kpiteam/internal/platform/blob"
)

func pngDataURI(t *testing.T, w, h int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 80, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}

func TestNormalizeResizesDataURI(t *testing.T) {
	store := blob.NewMemory()
	svc := New(store, 64)

	out, err := svc.Normalize(context.Background(), "e1", pngDataURI(t, 300, 120))
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	data, ct, err := store.Get(context.Background(), "employees/e1.jpg")
	if err != nil {
		t.Fatalf("expected stored photo: %v", err)
	}
	if ct != "image/jpeg" {
		t.Fatalf("unexpected content type %q", ct)
	}
	img, err := jpeg.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("stored photo is not a jpeg: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 64 || b.Dy() != 64 {
		t.Fatalf("expected 64x64, got %dx%d", b.Dx(), b.Dy())
	}
	if out != "data:image/jpeg;base64,"+base64.StdEncoding.EncodeToString(data) {
		t.Fatalf("expected memory driver to return the stored data URI")
	}
}

func TestNormalizePassesThroughURLs(t *testing.T) {
	svc := New(blob.NewMemory(), 0)
	cases := []string{"", "https://example.com/a.jpg", "  /static/me.png  "}
	for _, in := range cases {
		out, err := svc.Normalize(context.Background(), "e1", in)
		if err != nil {
			t.Fatalf("%q: unexpected error %v", in, err)
		}
		if out == "" && in != "" {
			t.Fatalf("%q: expected passthrough", in)
		}
	}
}

func TestNormalizeRejectsBadInput(t *testing.T) {
	svc := New(blob.NewMemory(), 0)
	if _, err := svc.Normalize(context.Background(), "e1", "data:image/png,notbase64"); !errors.Is(err, ErrInvalidDataURI) {
		t.Fatalf("expected ErrInvalidDataURI, got %v", err)
	}
	garbage := "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("hello"))
	if _, err := svc.Normalize(context.Background(), "e1", garbage); !errors.Is(err, ErrNotAnImage) {
		t.Fatalf("expected ErrNotAnImage, got %v", err)
	}
}
