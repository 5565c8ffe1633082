package cover

import (
	"image/color"
	"math/rand"
)

// Palette is an ordered three-stop gradient: dark, mid, light.
// A palette is never mutated after selection.
type Palette [3]color.NRGBA

func rgb(r, g, b uint8) color.NRGBA {
	return color.NRGBA{R: r, G: g, B: b, A: 0xFF}
}

// palettes is the fixed library the selector draws from, grouped loosely
// by mood. Every entry runs dark to light so the gradient renderers can
// interpolate stop0 → stop1 → stop2 without reordering.
var palettes = []Palette{
	// dark
	{rgb(16, 24, 48), rgb(44, 62, 102), rgb(120, 144, 190)},
	{rgb(26, 18, 40), rgb(72, 48, 104), rgb(160, 130, 200)},
	{rgb(10, 32, 36), rgb(28, 84, 90), rgb(110, 180, 180)},
	{rgb(30, 30, 34), rgb(80, 78, 88), rgb(176, 172, 186)},
	// vibrant
	{rgb(120, 20, 60), rgb(200, 60, 100), rgb(250, 160, 180)},
	{rgb(150, 60, 10), rgb(225, 120, 40), rgb(255, 200, 130)},
	{rgb(20, 90, 130), rgb(50, 150, 190), rgb(150, 220, 240)},
	{rgb(90, 20, 130), rgb(150, 70, 190), rgb(215, 170, 240)},
	// earthy
	{rgb(60, 42, 24), rgb(120, 90, 56), rgb(200, 170, 130)},
	{rgb(34, 52, 30), rgb(80, 110, 66), rgb(170, 196, 150)},
	{rgb(72, 36, 28), rgb(140, 82, 60), rgb(220, 180, 150)},
	// cool
	{rgb(20, 34, 60), rgb(60, 96, 140), rgb(170, 200, 225)},
	{rgb(24, 50, 58), rgb(62, 110, 120), rgb(160, 205, 210)},
	{rgb(40, 40, 72), rgb(92, 92, 150), rgb(185, 185, 225)},
}

// aesthetics are descriptive tags recorded on the plan. Nothing downstream
// consumes them; they exist so a plan can be logged and reasoned about.
var aesthetics = []string{
	"minimal", "bold", "classic", "modern", "dramatic", "serene",
}

// accentColor draws a bright accent. Channels are biased toward the high
// end (red and green in [180,255], blue in [100,200]) so the accent reads
// against any palette in the library.
func accentColor(rng *rand.Rand) color.NRGBA {
	return color.NRGBA{
		R: uint8(180 + rng.Intn(76)),
		G: uint8(180 + rng.Intn(76)),
		B: uint8(100 + rng.Intn(101)),
		A: 0xFF,
	}
}
