// Package cover synthesizes decorative book cover images from title and
// author metadata.
//
// Each render draws a fresh design plan (palette, background gradient,
// decoration, text layout) from a seedable random source, paints it onto a
// pixel canvas in a fixed five-stage pipeline, and hands back the raster or
// its encoded bytes. Two renders with the same seed and inputs are
// pixel-identical.
package cover

import (
	"bytes"
	"errors"
	"image"
	"image/jpeg"
	"image/png"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// ErrInvalidDimensions is returned when a request's width or height is not
// positive. The canvas is never allocated in that case.
var ErrInvalidDimensions = errors.New("cover: width and height must be positive")

// DefaultJPEGQuality is the quality used when embedding a cover in a book.
const DefaultJPEGQuality = 95

// Request describes one cover to render.
type Request struct {
	Title    string
	Author   string // optional
	Subtitle string // optional, drawn at 55% height when present

	Width  int // canvas width in pixels; reference default is 1600
	Height int // canvas height in pixels; reference default is 2400

	// Seed fixes the random source for deterministic output. When nil the
	// source is seeded from the clock and every render differs.
	Seed *int64

	// FontPaths is an ordered fallback chain of font files or installed
	// font names, tried in sequence. Latin-only renders may leave it empty
	// and get the embedded Go fonts; CJK titles need an entry that resolves
	// to a wide-glyph font on the host.
	FontPaths []string

	// Stride overrides the diagonal gradient's column sampling stride.
	// Zero means the default.
	Stride int
}

// Result is a finished render.
type Result struct {
	Image *image.NRGBA

	// UsedFallbackFont reports that nothing in the request's font chain
	// loaded and the render degraded to a built-in face. Non-fatal, but
	// observable so callers can warn.
	UsedFallbackFont bool
}

// EncodeJPEG returns the cover as JPEG bytes at the given quality.
func (r *Result) EncodeJPEG(quality int) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, r.Image, &jpeg.Options{Quality: quality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// EncodePNG returns the cover as PNG bytes.
func (r *Result) EncodePNG() ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, r.Image); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// newRenderRNG builds the caller-scoped random source for one render.
// Every random decision in the pipeline draws from this source in a fixed
// order, which is what makes seeded renders reproducible.
func newRenderRNG(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

var (
	availableOnce sync.Once
	available     bool
)

// Available reports whether cover generation can run at all, checked once.
// Callers that treat covers as optional should consult this instead of
// inferring from an empty result, so "no cover possible" stays
// distinguishable from "no cover requested".
func Available() bool {
	availableOnce.Do(func() {
		f, err := opentype.Parse(goregular.TTF)
		if err != nil {
			return
		}
		_, degraded := newFace(f, referenceAuthorSize)
		available = !degraded
	})
	return available
}

// Render produces one cover. The pipeline is strictly forward: plan
// selection, background fill, decoration overlay, typography, and the
// caller encodes if it wants bytes. Nothing is shared across calls except
// the font files read from disk.
func Render(req Request) (*Result, error) {
	if req.Width <= 0 || req.Height <= 0 {
		return nil, ErrInvalidDimensions
	}

	seed := time.Now().UnixNano()
	if req.Seed != nil {
		seed = *req.Seed
	}
	rng := newRenderRNG(seed)

	p := newPlan(rng, req.Width, req.Height)
	img := image.NewNRGBA(image.Rect(0, 0, req.Width, req.Height))

	fillBackground(img, p, rng, req.Stride)
	applyDecoration(img, p, rng)

	scale := float64(req.Width) / referenceWidth
	fs := loadFaces(req.FontPaths, p.titleSize, p.authorSize, referenceSubtitleSize*scale)
	drawTypography(img, p, req.Title, req.Author, req.Subtitle, fs, rng)

	return &Result{Image: img, UsedFallbackFont: fs.usedFallback}, nil
}
