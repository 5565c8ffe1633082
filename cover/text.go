package cover

import (
	"image"
	"image/color"
	"math/rand"
	"os"
	"strings"

	findfont "github.com/flopp/go-findfont"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// maxLineFraction is the fraction of the canvas width a wrapped line may
// occupy.
const maxLineFraction = 0.80

// faceSet holds the resolved faces for one render plus whether the engine
// had to degrade past the caller's fallback chain.
type faceSet struct {
	title        font.Face
	author       font.Face
	subtitle     font.Face
	usedFallback bool
}

// resolveFont walks the ordered fallback chain and returns the first font
// that parses. Entries are tried first as file paths, then as names looked
// up in the system font directories, which is how CJK chains resolve on a
// host with Noto or similar installed. Returns nil if nothing in the chain
// loads.
func resolveFont(chain []string) *opentype.Font {
	for _, entry := range chain {
		data, err := os.ReadFile(entry)
		if err != nil {
			path, ferr := findfont.Find(entry)
			if ferr != nil {
				continue
			}
			data, err = os.ReadFile(path)
			if err != nil {
				continue
			}
		}
		f, err := opentype.Parse(data)
		if err != nil {
			continue
		}
		return f
	}
	return nil
}

// newFace builds a face at the given size, substituting the fixed bitmap
// fallback if the face cannot be constructed. The bool reports whether the
// substitution happened.
func newFace(f *opentype.Font, size float64) (font.Face, bool) {
	if f == nil {
		return basicfont.Face7x13, true
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return basicfont.Face7x13, true
	}
	return face, false
}

// loadFaces resolves all three faces for a render. The caller's chain wins;
// when it yields nothing the embedded Go fonts take over (bold for the
// title, regular for author and subtitle), and that degradation is reported
// as fallback use. The absolute floor is the built-in bitmap face, so face
// resolution can never fail a render.
func loadFaces(chain []string, titleSize, authorSize, subtitleSize float64) faceSet {
	var fs faceSet

	userFont := resolveFont(chain)
	titleFont, bodyFont := userFont, userFont
	if userFont == nil {
		fs.usedFallback = len(chain) > 0
		if f, err := opentype.Parse(gobold.TTF); err == nil {
			titleFont = f
		}
		if f, err := opentype.Parse(goregular.TTF); err == nil {
			bodyFont = f
		}
	}

	var degraded bool
	fs.title, degraded = newFace(titleFont, titleSize)
	fs.usedFallback = fs.usedFallback || degraded
	fs.author, degraded = newFace(bodyFont, authorSize)
	fs.usedFallback = fs.usedFallback || degraded
	fs.subtitle, degraded = newFace(bodyFont, subtitleSize)
	fs.usedFallback = fs.usedFallback || degraded
	return fs
}

// splitWords splits on whitespace, returning non-empty tokens.
func splitWords(s string) []string {
	return strings.Fields(s)
}

// wrapText greedily wraps text so each line's rendered width stays within
// maxWidth. A single word wider than maxWidth becomes its own line rather
// than being split. Joining the result with spaces reproduces the original
// word sequence.
func wrapText(text string, face font.Face, maxWidth int) []string {
	words := splitWords(text)
	if len(words) == 0 {
		return nil
	}

	var lines []string
	current := words[0]
	for _, word := range words[1:] {
		trial := current + " " + word
		if font.MeasureString(face, trial).Ceil() <= maxWidth {
			current = trial
		} else {
			lines = append(lines, current)
			current = word
		}
	}
	lines = append(lines, current)
	return lines
}

// drawString renders s with its baseline at (x, y).
func drawString(img *image.NRGBA, s string, face font.Face, x, y int, c color.NRGBA) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(s)
}

var (
	textColor   = color.NRGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}
	shadowColor = color.NRGBA{R: 0x14, G: 0x14, B: 0x14, A: 0xFF}
)

// drawLines stacks wrapped lines downward from startY, each centered
// horizontally and advanced by its measured height plus gap. When shadowed,
// every line is preceded by a near-black copy offset by (dx, dy). Returns
// the baseline of the last drawn line.
func drawLines(img *image.NRGBA, lines []string, face font.Face, c color.NRGBA, startY, gap, width int, shadow bool, dx, dy int) int {
	lineHeight := face.Metrics().Height.Ceil()
	y := startY
	last := startY
	for _, line := range lines {
		lineW := font.MeasureString(face, line).Ceil()
		x := (width - lineW) / 2
		if shadow {
			drawString(img, line, face, x+dx, y+dy, shadowColor)
		}
		drawString(img, line, face, x, y, c)
		last = y
		y += lineHeight + gap
	}
	return last
}

// dim scales a color's channels toward black; f=0.8 keeps 80% intensity.
func dim(c color.NRGBA, f float64) color.NRGBA {
	return color.NRGBA{
		R: uint8(float64(c.R) * f),
		G: uint8(float64(c.G) * f),
		B: uint8(float64(c.B) * f),
		A: 0xFF,
	}
}

// drawTypography lays out title, optional separator rule, author and
// subtitle per the plan's layout variant.
func drawTypography(img *image.NRGBA, p plan, title, author, subtitle string, fs faceSet, rng *rand.Rand) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	maxWidth := int(float64(w) * maxLineFraction)

	// Inter-line gaps are specified at the 1600x2400 reference and scale
	// with the canvas height.
	titleGap := 15 * h / referenceHeight
	authorGap := 10 * h / referenceHeight

	// One shadow offset per render keeps every line's shadow consistent.
	var dx, dy int
	if p.shadow {
		dx = 2 + rng.Intn(5)
		dy = 2 + rng.Intn(5)
	}

	fracs := layoutFractions[p.layout]
	titleStart := int(fracs[0] * float64(h))
	authorStart := int(fracs[1] * float64(h))

	titleLines := wrapText(title, fs.title, maxWidth)
	lastTitleY := drawLines(img, titleLines, fs.title, textColor, titleStart, titleGap, w, p.shadow, dx, dy)

	if p.separator && author != "" && len(titleLines) > 0 {
		// Accent rule below the title, 20-50% of the canvas width.
		ruleW := w * (20 + rng.Intn(31)) / 100
		ruleY := lastTitleY + fs.title.Metrics().Descent.Ceil() + titleGap
		ruleTh := h / 600
		if ruleTh < 2 {
			ruleTh = 2
		}
		fillRect(img, image.Rect((w-ruleW)/2, ruleY, (w+ruleW)/2, ruleY+ruleTh), p.accent)
	}

	if author != "" {
		authorLines := wrapText(author, fs.author, maxWidth)
		drawLines(img, authorLines, fs.author, textColor, authorStart, authorGap, w, p.shadow, dx, dy)
	}

	if subtitle != "" {
		// The subtitle flow is fixed at 55% height regardless of layout,
		// in the accent color dimmed to 80%.
		subStart := int(0.55 * float64(h))
		subLines := wrapText(subtitle, fs.subtitle, maxWidth)
		drawLines(img, subLines, fs.subtitle, dim(p.accent, 0.8), subStart, authorGap, w, p.shadow, dx, dy)
	}
}
