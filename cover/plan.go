package cover

import (
	"image/color"
	"math/rand"
)

type backgroundStyle int

const (
	bgSolid backgroundStyle = iota
	bgVertical
	bgDiagonal
	bgRadial
	bgTwoTone
	backgroundStyleCount
)

type decorationStyle int

const (
	decNone decorationStyle = iota
	decTopBottomBorder
	decFullFrame
	decCornerAccents
	decGeometricShapes
	decorationStyleCount
)

type layoutVariant int

const (
	layoutCentered layoutVariant = iota
	layoutTopHeavy
	layoutBottomHeavy
	layoutSplit
	layoutVariantCount
)

// layoutFractions maps each layout variant to the (title-start, author-start)
// baseline height fractions.
var layoutFractions = [layoutVariantCount][2]float64{
	layoutCentered:    {0.35, 0.70},
	layoutTopHeavy:    {0.20, 0.80},
	layoutBottomHeavy: {0.55, 0.85},
	layoutSplit:       {0.15, 0.65},
}

// plan is the fully-resolved set of rendering decisions for one cover.
// It is built once per render and never mutated afterwards.
type plan struct {
	aesthetic  string
	pal        Palette
	accent     color.NRGBA
	background backgroundStyle
	decoration decorationStyle
	layout     layoutVariant
	titleSize  float64
	authorSize float64
	shadow     bool
	separator  bool
}

// referenceWidth is the canvas width the fixed point sizes and pixel gaps
// are calibrated against. Other widths scale proportionally.
const (
	referenceWidth  = 1600
	referenceHeight = 2400

	referenceTitleSize    = 120
	referenceAuthorSize   = 64
	referenceSubtitleSize = 48
)

// newPlan draws every decision for one cover from rng. The draws happen in
// a fixed order (aesthetic, palette, background, accent, decoration, layout,
// shadow, separator) so that a given seed always yields the same plan; no
// draw depends on the value of another.
func newPlan(rng *rand.Rand, width, height int) plan {
	p := plan{}
	p.aesthetic = aesthetics[rng.Intn(len(aesthetics))]
	p.pal = palettes[rng.Intn(len(palettes))]
	p.background = backgroundStyle(rng.Intn(int(backgroundStyleCount)))
	p.accent = accentColor(rng)
	p.decoration = decorationStyle(rng.Intn(int(decorationStyleCount)))
	p.layout = layoutVariant(rng.Intn(int(layoutVariantCount)))
	p.shadow = rng.Intn(2) == 1
	p.separator = rng.Intn(2) == 1

	scale := float64(width) / referenceWidth
	p.titleSize = referenceTitleSize * scale
	p.authorSize = referenceAuthorSize * scale
	return p
}
