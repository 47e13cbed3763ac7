package render

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/disintegration/imaging"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"server/internal/domain"
)

// Size is one target ad format.
type Size struct {
	Tag    string
	Width  int
	Height int
	Ratio  string
}

// DefaultSizes are the standard display-ad formats rendered for every job.
var DefaultSizes = []Size{
	{Tag: "landscape", Width: 1200, Height: 628, Ratio: "1.91:1"},
	{Tag: "square", Width: 1200, Height: 1200, Ratio: "1:1"},
	{Tag: "portrait", Width: 960, Height: 1200, Ratio: "4:5"},
}

// Rendered is one produced ad variant prior to upload.
type Rendered struct {
	Data    []byte
	SizeTag string
	Format  string
	Width   int
	Height  int
	Copy    domain.CopyVariant
}

// Renderer produces one artifact per (target size x copy variant) from a
// single source image and an optional brand logo.
type Renderer interface {
	Render(ctx context.Context, source, logo []byte, copies []domain.CopyVariant) ([]Rendered, error)
}

// AdRenderer composites ad variants: the source photo is cover-cropped to
// each target size, the logo (when present) is scaled and overlaid in the
// bottom-right corner, and the result is encoded as JPEG. The associated
// copy variant travels with each artifact as metadata.
type AdRenderer struct {
	sizes   []Size
	quality int
}

// NewAdRenderer builds a renderer over the given sizes; nil selects
// DefaultSizes.
func NewAdRenderer(sizes []Size) *AdRenderer {
	if len(sizes) == 0 {
		sizes = DefaultSizes
	}
	return &AdRenderer{sizes: sizes, quality: 85}
}

// Sizes returns the renderer's target sizes.
func (r *AdRenderer) Sizes() []Size {
	return r.sizes
}

// Render decodes the source once and produces len(sizes)*len(copies)
// artifacts. An undecodable source is an error; an undecodable logo is
// ignored and rendering proceeds without it.
func (r *AdRenderer) Render(ctx context.Context, source, logo []byte, copies []domain.CopyVariant) ([]Rendered, error) {
	if len(copies) == 0 {
		return nil, fmt.Errorf("render: no copy variants")
	}
	src, err := imaging.Decode(bytes.NewReader(source), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("render: decode source: %w", err)
	}

	var logoImg image.Image
	if len(logo) > 0 {
		if decoded, err := imaging.Decode(bytes.NewReader(logo), imaging.AutoOrientation(true)); err == nil {
			logoImg = decoded
		}
	}

	out := make([]Rendered, 0, len(r.sizes)*len(copies))
	for _, size := range r.sizes {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		base := imaging.Fill(src, size.Width, size.Height, imaging.Center, imaging.Lanczos)
		if logoImg != nil {
			base = overlayLogo(base, logoImg, size)
		}
		for _, copyVariant := range copies {
			canvas := drawCopyPanel(base, copyVariant, size)
			var buf bytes.Buffer
			if err := imaging.Encode(&buf, canvas, imaging.JPEG, imaging.JPEGQuality(r.quality)); err != nil {
				return out, fmt.Errorf("render: encode %s: %w", size.Tag, err)
			}
			out = append(out, Rendered{
				Data:    buf.Bytes(),
				SizeTag: size.Tag,
				Format:  "jpg",
				Width:   size.Width,
				Height:  size.Height,
				Copy:    copyVariant,
			})
		}
	}
	return out, nil
}

// overlayLogo scales the logo to at most 15% of the short edge and places
// it in the top-right corner, clear of the copy panel along the bottom.
func overlayLogo(base *image.NRGBA, logo image.Image, size Size) *image.NRGBA {
	short := size.Width
	if size.Height < short {
		short = size.Height
	}
	maxEdge := short * 15 / 100
	if maxEdge < 1 {
		return base
	}
	scaled := imaging.Fit(logo, maxEdge, maxEdge, imaging.Lanczos)
	const margin = 20
	pos := image.Pt(size.Width-scaled.Bounds().Dx()-margin, margin)
	if pos.X < 0 {
		return base
	}
	return imaging.Overlay(base, scaled, pos, 1.0)
}

// drawCopyPanel composites the copy text onto a translucent band across
// the bottom of the canvas: title, description and call to action on
// separate lines. The text is rasterized with the built-in bitmap face at
// a reduced scale and upscaled with nearest-neighbor, so the renderer
// needs no external font assets.
func drawCopyPanel(base *image.NRGBA, cv domain.CopyVariant, size Size) *image.NRGBA {
	scale := size.Width / 300
	if scale < 2 {
		scale = 2
	}
	panelW := size.Width / scale
	panelH := size.Height * 22 / 100 / scale
	if panelH < 52 {
		// Three Face7x13 lines plus padding.
		panelH = 52
	}
	panel := imaging.New(panelW, panelH, color.NRGBA{R: 0, G: 0, B: 0, A: 170})

	maxChars := (panelW - 12) / 7
	lines := []struct {
		text string
		col  color.NRGBA
	}{
		{truncateLine(cv.Title, maxChars), color.NRGBA{R: 255, G: 255, B: 255, A: 255}},
		{truncateLine(cv.Description, maxChars), color.NRGBA{R: 224, G: 224, B: 224, A: 255}},
		{truncateLine(cv.CTA, maxChars), color.NRGBA{R: 255, G: 214, B: 0, A: 255}},
	}
	y := 17
	for _, line := range lines {
		if line.text == "" {
			continue
		}
		d := font.Drawer{
			Dst:  panel,
			Src:  image.NewUniform(line.col),
			Face: basicfont.Face7x13,
			Dot:  fixed.P(6, y),
		}
		d.DrawString(line.text)
		y += 15
	}

	scaled := imaging.Resize(panel, size.Width, panelH*scale, imaging.NearestNeighbor)
	if scaled.Bounds().Dy() >= size.Height {
		return base
	}
	return imaging.Overlay(base, scaled, image.Pt(0, size.Height-scaled.Bounds().Dy()), 1.0)
}

func truncateLine(s string, max int) string {
	s = strings.TrimSpace(s)
	if max < 4 {
		return ""
	}
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}

var _ Renderer = (*AdRenderer)(nil)
