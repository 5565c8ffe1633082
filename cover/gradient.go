package cover

import (
	"image"
	"image/color"
	"math"
	"math/rand"

	"golang.org/x/image/draw"
)

// defaultStride is the column sampling stride for diagonal gradients.
// Diagonal fills compute one color per stride of columns instead of per
// pixel; the gradient stays monotonic and adjacent bands differ by at most
// one stride's worth of color. Vertical and two-tone fills are per-row and
// radial is per-pixel, so the stride does not apply to them.
const defaultStride = 4

// blend linearly interpolates each channel between a and b at t in [0,1],
// rounding to the nearest integer.
func blend(a, b color.NRGBA, t float64) color.NRGBA {
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	lerp := func(x, y uint8) uint8 {
		v := math.Round(float64(x) + (float64(y)-float64(x))*t)
		if v < 0 {
			v = 0
		} else if v > 255 {
			v = 255
		}
		return uint8(v)
	}
	return color.NRGBA{R: lerp(a.R, b.R), G: lerp(a.G, b.G), B: lerp(a.B, b.B), A: 0xFF}
}

// bandColor evaluates the two-stage gradient (stop0→stop1→stop2) at
// position r in [0,1].
func bandColor(pal Palette, r float64) color.NRGBA {
	if r < 0.5 {
		return blend(pal[0], pal[1], r*2)
	}
	return blend(pal[1], pal[2], (r-0.5)*2)
}

// fillRow sets one horizontal run of pixels [x0,x1) on row y.
func fillRow(img *image.NRGBA, y, x0, x1 int, c color.NRGBA) {
	for x := x0; x < x1; x++ {
		img.SetNRGBA(x, y, c)
	}
}

// fillBackground paints the whole canvas according to the plan's background
// style. Two-tone is the only style that consumes randomness (its split row).
func fillBackground(img *image.NRGBA, p plan, rng *rand.Rand, stride int) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if stride <= 0 {
		stride = defaultStride
	}

	switch p.background {
	case bgSolid:
		draw.Draw(img, b, image.NewUniform(p.pal[0]), image.Point{}, draw.Src)

	case bgVertical:
		for y := 0; y < h; y++ {
			c := bandColor(p.pal, float64(y)/float64(h))
			fillRow(img, y, 0, w, c)
		}

	case bgDiagonal:
		denom := float64(w + h)
		for y := 0; y < h; y++ {
			for x := 0; x < w; x += stride {
				c := bandColor(p.pal, float64(x+y)/denom)
				end := x + stride
				if end > w {
					end = w
				}
				fillRow(img, y, x, end, c)
			}
		}

	case bgRadial:
		cx, cy := w/2, h/2
		// Farthest corner from the center pixel.
		fx := math.Max(float64(cx), float64(w-1-cx))
		fy := math.Max(float64(cy), float64(h-1-cy))
		maxDist := math.Hypot(fx, fy)
		for y := 0; y < h; y++ {
			dy := float64(y - cy)
			for x := 0; x < w; x++ {
				dx := float64(x - cx)
				t := math.Hypot(dx, dy) / maxDist
				// Single blend dark→light; the mid stop is unused here.
				img.SetNRGBA(x, y, blend(p.pal[0], p.pal[2], t))
			}
		}

	case bgTwoTone:
		// Split row uniform in [30%, 70%] of the height.
		lo := h * 30 / 100
		split := lo + rng.Intn(h*40/100+1)
		draw.Draw(img, image.Rect(0, 0, w, split), image.NewUniform(p.pal[0]), image.Point{}, draw.Src)
		draw.Draw(img, image.Rect(0, split, w, h), image.NewUniform(p.pal[1]), image.Point{}, draw.Src)
	}
}
