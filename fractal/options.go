package fractal

import (
	"errors"
	"fmt"
	"math"
)

var ErrInvalidOptions = errors.New("invalid render options")

const (
	// MaxIterationLimit is the largest iteration cap a render accepts.
	MaxIterationLimit = math.MaxUint16

	// MaxPixels caps Width*Height so a typo in an export multiplier fails
	// fast instead of exhausting memory.
	MaxPixels = 1 << 28
)

type FillStyle int

const (
	// Bright colours bounded points with the max-iteration colour of the palette.
	Bright FillStyle = iota
	// Black colours bounded points black.
	Black
)

func (f FillStyle) String() string {
	switch f {
	case Bright:
		return "bright"
	case Black:
		return "black"
	}
	return fmt.Sprintf("FillStyle(%d)", int(f))
}

func (f FillStyle) MarshalText() ([]byte, error) {
	switch f {
	case Bright, Black:
		return []byte(f.String()), nil
	}
	return nil, fmt.Errorf("unknown fill style %d", int(f))
}

func (f *FillStyle) UnmarshalText(text []byte) error {
	style, err := ParseFillStyle(string(text))
	if err != nil {
		return err
	}
	*f = style
	return nil
}

func ParseFillStyle(s string) (FillStyle, error) {
	switch s {
	case "bright", "Bright":
		return Bright, nil
	case "black", "Black":
		return Black, nil
	}
	return 0, fmt.Errorf("unknown fill style %q", s)
}

// Options describes a single render. It is passed by value and never
// modified by the renderer.
type Options struct {
	Width         int       `json:"width"`
	Height        int       `json:"height"`
	UnitWidth     float64   `json:"unit_width"`
	MaxIterations int       `json:"max_iterations"`
	CX            float64   `json:"cx"`
	CY            float64   `json:"cy"`
	Fill          FillStyle `json:"fill_style"`
}

// Scale returns the number of pixels per plane unit.
func (o Options) Scale() float64 {
	return float64(o.Width) / o.UnitWidth
}

func (o Options) Validate() error {
	switch {
	case o.Width <= 0 || o.Height <= 0:
		return fmt.Errorf("%w: dimensions must be positive, got %vx%v", ErrInvalidOptions, o.Width, o.Height)
	case o.Width > MaxPixels/o.Height:
		return fmt.Errorf("%w: %vx%v exceeds %v pixels", ErrInvalidOptions, o.Width, o.Height, MaxPixels)
	case !(o.UnitWidth > 0) || math.IsInf(o.UnitWidth, 0):
		return fmt.Errorf("%w: unit width must be positive and finite, got %v", ErrInvalidOptions, o.UnitWidth)
	case o.MaxIterations < 1 || o.MaxIterations > MaxIterationLimit:
		return fmt.Errorf("%w: max iterations must be in [1, %v], got %v", ErrInvalidOptions, MaxIterationLimit, o.MaxIterations)
	case math.IsNaN(o.CX) || math.IsInf(o.CX, 0) || math.IsNaN(o.CY) || math.IsInf(o.CY, 0):
		return fmt.Errorf("%w: constant must be finite, got (%v, %v)", ErrInvalidOptions, o.CX, o.CY)
	}
	if o.Fill != Bright && o.Fill != Black {
		return fmt.Errorf("%w: unknown fill style %v", ErrInvalidOptions, int(o.Fill))
	}
	return nil
}
