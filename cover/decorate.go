package cover

import (
	"image"
	"image/color"
	"math"
	"math/rand"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/draw"
)

// fillRect fills a rectangle clipped to the canvas, so callers may pass
// coordinates that extend past the edges.
func fillRect(img *image.NRGBA, r image.Rectangle, c color.NRGBA) {
	r = r.Intersect(img.Bounds())
	if r.Empty() {
		return
	}
	draw.Draw(img, r, image.NewUniform(c), image.Point{}, draw.Src)
}

// fillCircle draws a filled circle, clipped to the canvas.
func fillCircle(img *image.NRGBA, cx, cy int, radius float64, c color.NRGBA) {
	r := int(math.Ceil(radius))
	r2 := radius * radius
	b := img.Bounds()
	for dy := -r; dy <= r; dy++ {
		y := cy + dy
		if y < b.Min.Y || y >= b.Max.Y {
			continue
		}
		for dx := -r; dx <= r; dx++ {
			x := cx + dx
			if x < b.Min.X || x >= b.Max.X {
				continue
			}
			if float64(dx*dx+dy*dy) <= r2 {
				img.SetNRGBA(x, y, c)
			}
		}
	}
}

// lighten raises the HSL lightness of c by delta, clamped at full white.
func lighten(c color.NRGBA, delta float64) color.NRGBA {
	col, _ := colorful.MakeColor(c)
	h, s, l := col.Hsl()
	l += delta
	if l > 1 {
		l = 1
	}
	r, g, b := colorful.Hsl(h, s, l).Clamped().RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: 0xFF}
}

// applyDecoration overlays accent shapes on the filled background according
// to the plan's decoration style. Runs after the background fill and before
// any text. All writes are clipped to the canvas.
func applyDecoration(img *image.NRGBA, p plan, rng *rand.Rand) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()

	switch p.decoration {
	case decNone:

	case decTopBottomBorder:
		// Band thickness between roughly 1.5% and 3% of the height.
		th := h*3/200 + rng.Intn(h*3/200+1)
		fillRect(img, image.Rect(0, 0, w, th), p.accent)
		fillRect(img, image.Rect(0, h-th, w, h), p.accent)

	case decFullFrame:
		m := w
		if h < m {
			m = h
		}
		bw := m/100 + rng.Intn(m/100+1)
		fillRect(img, image.Rect(0, 0, w, bw), p.accent)
		fillRect(img, image.Rect(0, h-bw, w, h), p.accent)
		fillRect(img, image.Rect(0, 0, bw, h), p.accent)
		fillRect(img, image.Rect(w-bw, 0, w, h), p.accent)

	case decCornerAccents:
		// One size drawn per render, shared by all four corners.
		arm := w/12 + rng.Intn(w/12+1)
		th := w/150 + rng.Intn(w/150+1)
		corners := [4][2]int{{0, 0}, {w, 0}, {0, h}, {w, h}}
		for _, c := range corners {
			cx, cy := c[0], c[1]
			sx, sy := 1, 1
			if cx > 0 {
				sx = -1
			}
			if cy > 0 {
				sy = -1
			}
			// Horizontal and vertical arms of the L mark.
			fillRect(img, image.Rect(cx, cy, cx+sx*arm, cy+sy*th), p.accent)
			fillRect(img, image.Rect(cx, cy, cx+sx*th, cy+sy*arm), p.accent)
		}

	case decGeometricShapes:
		// A handful of circles in a lightened version of the light stop,
		// each with its own delta to fake translucency without alpha.
		n := 2 + rng.Intn(4)
		for i := 0; i < n; i++ {
			cx := rng.Intn(w)
			cy := rng.Intn(h)
			radius := float64(w/20 + rng.Intn(w/8+1))
			delta := 0.04 + rng.Float64()*0.12
			fillCircle(img, cx, cy, radius, lighten(p.pal[2], delta))
		}
	}
}
