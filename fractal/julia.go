// Package fractal renders quadratic Julia sets on the CPU.
package fractal

import (
	"github.com/go-gl/mathgl/mgl64"
)

// PlanePoint maps pixel (x, y) to the complex plane. The view is centred on
// the image, so pixel (Width/2, Height/2) maps to the origin.
func (o Options) PlanePoint(x, y int) mgl64.Vec2 {
	scale := o.Scale()
	return mgl64.Vec2{
		(float64(x) - float64(o.Width)/2) / scale,
		(float64(y) - float64(o.Height)/2) / scale,
	}
}

// Constant returns the recurrence constant as a plane point.
func (o Options) Constant() mgl64.Vec2 {
	return mgl64.Vec2{o.CX, o.CY}
}

// Escape iterates z = z*z + c from z = x+yi and returns the number of
// iterations survived before |z| reached 2. escaped is false when the cap was
// hit.
func Escape(x, y, cx, cy float64, maxIter int) (iterations int, escaped bool) {
	// The explicit conversions stop the compiler fusing multiply-adds, which
	// keeps counts identical across architectures.
	for float64(x*x)+float64(y*y) < 4 && iterations < maxIter {
		x, y = float64(x*x)-float64(y*y)+cx, float64(2*x*y)+cy
		iterations++
	}
	return iterations, iterations < maxIter
}
