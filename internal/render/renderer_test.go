package render

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"testing"

	"github.com/disintegration/imaging"

	"server/internal/domain"
)

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		t.Fatalf("encode fixture: %v", err)
	}
	return buf.Bytes()
}

func solidImage(w, h int, c color.Color) *image.NRGBA {
	img := imaging.New(w, h, c)
	return img
}

func testCopies() []domain.CopyVariant {
	return []domain.CopyVariant{
		{Title: "One", Description: "First", CTA: "Go"},
		{Title: "Two", Description: "Second", CTA: "Buy"},
		{Title: "Three", Description: "Third", CTA: "Try"},
	}
}

func TestRenderProducesSizeByCopyMatrix(t *testing.T) {
	source := encodePNG(t, solidImage(1600, 900, color.NRGBA{R: 200, A: 255}))
	r := NewAdRenderer(nil)

	got, err := r.Render(context.Background(), source, nil, testCopies())
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	want := len(DefaultSizes) * 3
	if len(got) != want {
		t.Fatalf("got %d artifacts, want %d", len(got), want)
	}

	seen := map[string]int{}
	for _, a := range got {
		seen[a.SizeTag]++
		if a.Format != "jpg" {
			t.Errorf("artifact format = %q, want jpg", a.Format)
		}
		if len(a.Data) == 0 {
			t.Errorf("artifact %s has empty data", a.SizeTag)
		}
		decoded, err := imaging.Decode(bytes.NewReader(a.Data))
		if err != nil {
			t.Fatalf("decode artifact %s: %v", a.SizeTag, err)
		}
		if decoded.Bounds().Dx() != a.Width || decoded.Bounds().Dy() != a.Height {
			t.Errorf("artifact %s dimensions = %dx%d, want %dx%d",
				a.SizeTag, decoded.Bounds().Dx(), decoded.Bounds().Dy(), a.Width, a.Height)
		}
	}
	for _, size := range DefaultSizes {
		if seen[size.Tag] != 3 {
			t.Errorf("size %s produced %d artifacts, want 3", size.Tag, seen[size.Tag])
		}
	}
}

func TestRenderCarriesCopyVariant(t *testing.T) {
	source := encodePNG(t, solidImage(800, 800, color.NRGBA{G: 180, A: 255}))
	copies := testCopies()

	got, err := NewAdRenderer([]Size{{Tag: "square", Width: 400, Height: 400, Ratio: "1:1"}}).
		Render(context.Background(), source, nil, copies)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d artifacts, want 3", len(got))
	}
	for i, a := range got {
		if a.Copy != copies[i] {
			t.Errorf("artifact %d copy = %+v, want %+v", i, a.Copy, copies[i])
		}
	}
}

func TestRenderWithLogoOverlay(t *testing.T) {
	source := encodePNG(t, solidImage(1200, 1200, color.NRGBA{B: 255, A: 255}))
	logo := encodePNG(t, solidImage(300, 300, color.NRGBA{R: 255, G: 255, A: 255}))

	size := Size{Tag: "square", Width: 600, Height: 600, Ratio: "1:1"}
	got, err := NewAdRenderer([]Size{size}).
		Render(context.Background(), source, logo, testCopies()[:1])
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	decoded, err := imaging.Decode(bytes.NewReader(got[0].Data))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	// Top-right region should contain the bright logo, not the blue base.
	sample := decoded.At(decoded.Bounds().Max.X-30, 30)
	r, g, _, _ := sample.RGBA()
	if r < 0x8000 || g < 0x8000 {
		t.Errorf("top-right pixel %v does not look like the overlaid logo", sample)
	}
}

func TestRenderCompositesCopyOntoImage(t *testing.T) {
	source := encodePNG(t, solidImage(1200, 1200, color.NRGBA{R: 40, G: 120, B: 200, A: 255}))
	copies := []domain.CopyVariant{
		{Title: "Summer Sale", Description: "Everything must go", CTA: "Buy Now"},
		{Title: "Winter Launch", Description: "Brand new collection", CTA: "Learn More"},
	}

	size := Size{Tag: "square", Width: 600, Height: 600, Ratio: "1:1"}
	got, err := NewAdRenderer([]Size{size}).Render(context.Background(), source, nil, copies)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d artifacts, want 2", len(got))
	}
	if bytes.Equal(got[0].Data, got[1].Data) {
		t.Fatal("artifacts for different copy variants are byte-identical")
	}

	// The copy panel darkens the bottom band relative to the flat source.
	decoded, err := imaging.Decode(bytes.NewReader(got[0].Data))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	top := decoded.At(10, 10)
	bottom := decoded.At(10, decoded.Bounds().Max.Y-10)
	tr, tg, tb, _ := top.RGBA()
	br, bg, bb, _ := bottom.RGBA()
	if br+bg+bb >= tr+tg+tb {
		t.Errorf("bottom band (%v) is not darker than the source (%v); copy panel missing", bottom, top)
	}
}

func TestRenderIgnoresBadLogo(t *testing.T) {
	source := encodePNG(t, solidImage(500, 500, color.NRGBA{R: 10, G: 20, B: 30, A: 255}))

	got, err := NewAdRenderer([]Size{{Tag: "square", Width: 200, Height: 200, Ratio: "1:1"}}).
		Render(context.Background(), source, []byte("not an image"), testCopies()[:1])
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d artifacts, want 1", len(got))
	}
}

func TestRenderRejectsBadSource(t *testing.T) {
	if _, err := NewAdRenderer(nil).Render(context.Background(), []byte("garbage"), nil, testCopies()); err == nil {
		t.Fatal("expected error for undecodable source")
	}
}

func TestRenderRequiresCopies(t *testing.T) {
	source := encodePNG(t, solidImage(100, 100, color.NRGBA{A: 255}))
	if _, err := NewAdRenderer(nil).Render(context.Background(), source, nil, nil); err == nil {
		t.Fatal("expected error for empty copy list")
	}
}
