package fractal

import (
	"math"
)

// Marker geometry, in plane units.
const (
	MarkerRadius = 0.03
	RingRadius   = 0.04
)

var (
	MarkerColor = RGB{0, 120, 120}
	RingColor   = RGB{255, 255, 255}
)

// Overlay draws a marker at the recurrence constant of opts onto r, which
// must have been rendered with the same opts. r is modified in place and
// returned. Pixels further than RingRadius from the constant are not touched.
func Overlay(r *Raster, opts Options) *Raster {
	if r == nil || r.Width != opts.Width || r.Height != opts.Height || opts.Validate() != nil {
		return r
	}

	target := opts.Constant()
	scale := opts.Scale()

	// Pixel box around the marker, one pixel of slack on each side.
	reach := RingRadius*scale + 1
	centreX := target.X()*scale + float64(opts.Width)/2
	centreY := target.Y()*scale + float64(opts.Height)/2
	minX := clampPixel(math.Floor(centreX-reach), opts.Width)
	maxX := clampPixel(math.Ceil(centreX+reach), opts.Width)
	minY := clampPixel(math.Floor(centreY-reach), opts.Height)
	maxY := clampPixel(math.Ceil(centreY+reach), opts.Height)

	for y := minY; y < maxY; y++ {
		for x := minX; x < maxX; x++ {
			dist := opts.PlanePoint(x, y).Sub(target).Len()
			if dist < MarkerRadius {
				r.SetRGB(x, y, MarkerColor)
			} else if dist < RingRadius {
				r.SetRGB(x, y, RingColor)
			}
		}
	}
	return r
}

func clampPixel(v float64, limit int) int {
	if v < 0 {
		return 0
	}
	if v > float64(limit) {
		return limit
	}
	return int(v)
}
