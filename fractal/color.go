package fractal

// Color is a palette: per-channel multipliers applied to the iteration count.
// It is not an RGB value.
type Color struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// RGB is one 8-bit-per-channel output pixel.
type RGB struct {
	R, G, B uint8
}

// ColorIteration returns min(i, 255) * c per channel, saturating at 255.
func ColorIteration(i int, c Color) RGB {
	if i > 255 {
		i = 255
	}
	if i < 0 {
		i = 0
	}
	n := uint8(i)
	return RGB{
		R: saturatingMul(n, c.R),
		G: saturatingMul(n, c.G),
		B: saturatingMul(n, c.B),
	}
}

// FillColor is the colour given to points that never escape.
func FillColor(fill FillStyle, maxIter int, c Color) RGB {
	if fill == Black {
		return RGB{}
	}
	return ColorIteration(maxIter, c)
}

func Shade(i int, escaped bool, fill FillStyle, maxIter int, c Color) RGB {
	if !escaped {
		return FillColor(fill, maxIter, c)
	}
	return ColorIteration(i, c)
}

func saturatingMul(a, b uint8) uint8 {
	p := uint16(a) * uint16(b)
	if p > 0xff {
		return 0xff
	}
	return uint8(p)
}
