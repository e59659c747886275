package fractal

import (
	"bytes"
	"errors"
	"fmt"
	"image/png"
	"sync/atomic"
	"testing"
)

var referenceOptions = Options{
	Width:         512,
	Height:        512,
	UnitWidth:     4,
	MaxIterations: 512,
	CX:            -0.981,
	CY:            -0.277,
	Fill:          Bright,
}

var referenceColor = Color{R: 12, G: 5, B: 10}

func TestRenderSmallGrid(t *testing.T) {
	// Plane points are {-2,-1,0,1}^2. Row 0 and column 0 start on or past
	// |z| = 2 and escape at once; the rest survive the single iteration.
	base := Options{Width: 4, Height: 4, UnitWidth: 4, MaxIterations: 1}
	palette := Color{12, 5, 10}

	for _, fill := range []FillStyle{Bright, Black} {
		t.Run(fill.String(), func(t *testing.T) {
			opts := base
			opts.Fill = fill
			r, err := Render(opts, palette)
			if err != nil {
				t.Fatal(err)
			}
			interior := FillColor(fill, 1, palette)
			for y := 0; y < 4; y++ {
				for x := 0; x < 4; x++ {
					want := interior
					if x == 0 || y == 0 {
						want = RGB{}
					}
					if got := r.RGBAt(x, y); got != want {
						t.Errorf("pixel (%d, %d) = %v, want %v", x, y, got, want)
					}
				}
			}
		})
	}
}

func TestRenderReferenceCentre(t *testing.T) {
	r, err := Render(referenceOptions, referenceColor)
	if err != nil {
		t.Fatal(err)
	}
	if r.Width != 512 || r.Height != 512 || len(r.Pix) != 3*512*512 {
		t.Fatalf("raster is %vx%v with %v bytes", r.Width, r.Height, len(r.Pix))
	}

	p := referenceOptions.PlanePoint(256, 256)
	i, escaped := Escape(p.X(), p.Y(), referenceOptions.CX, referenceOptions.CY, referenceOptions.MaxIterations)
	if i != 61 || !escaped {
		t.Fatalf("centre pixel count = %d, %v; want 61, true", i, escaped)
	}
	if got, want := r.RGBAt(256, 256), ColorIteration(61, referenceColor); got != want {
		t.Errorf("centre pixel = %v, want %v", got, want)
	}
}

func TestRenderFillStyles(t *testing.T) {
	opts := Options{Width: 96, Height: 64, UnitWidth: 3.5, MaxIterations: 64, CX: -0.8, CY: 0.156}
	palette := Color{3, 2, 1}

	for _, fill := range []FillStyle{Bright, Black} {
		t.Run(fill.String(), func(t *testing.T) {
			opts := opts
			opts.Fill = fill
			r, err := Render(opts, palette)
			if err != nil {
				t.Fatal(err)
			}

			bounded := 0
			for y := 0; y < opts.Height; y++ {
				for x := 0; x < opts.Width; x++ {
					p := opts.PlanePoint(x, y)
					i, escaped := Escape(p.X(), p.Y(), opts.CX, opts.CY, opts.MaxIterations)
					want := ColorIteration(i, palette)
					if !escaped {
						bounded++
						want = RGB{}
						if fill == Bright {
							want = ColorIteration(opts.MaxIterations, palette)
						}
					}
					if got := r.RGBAt(x, y); got != want {
						t.Fatalf("pixel (%d, %d) = %v, want %v", x, y, got, want)
					}
				}
			}
			if bounded == 0 {
				t.Fatal("expected some bounded points in the view")
			}
		})
	}
}

func TestRenderDeterministic(t *testing.T) {
	opts := referenceOptions
	opts.Width, opts.Height = 160, 90

	first, err := Render(opts, referenceColor)
	if err != nil {
		t.Fatal(err)
	}
	second, err := Render(opts, referenceColor)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(first.Pix, second.Pix) {
		t.Fatal("two renders of the same options differ")
	}

	for _, workers := range []int{1, 2, 3, 16, 200} {
		t.Run(fmt.Sprintf("workers=%d", workers), func(t *testing.T) {
			r, err := Renderer{Workers: workers}.Render(opts, referenceColor)
			if err != nil {
				t.Fatal(err)
			}
			if !bytes.Equal(first.Pix, r.Pix) {
				t.Error("raster differs from the default renderer")
			}
		})
	}
}

func TestRenderCountsRows(t *testing.T) {
	opts := referenceOptions
	opts.Width, opts.Height = 40, 30

	for _, workers := range []int{1, 4} {
		var rows atomic.Int64
		if _, err := (Renderer{Workers: workers, Rows: &rows}).Render(opts, referenceColor); err != nil {
			t.Fatal(err)
		}
		if rows.Load() != 30 {
			t.Errorf("workers=%d: counted %d rows, want 30", workers, rows.Load())
		}
	}
}

func TestRenderRejectsInvalidOptions(t *testing.T) {
	for _, opts := range []Options{
		{Width: 0, Height: 10, UnitWidth: 1, MaxIterations: 1},
		{Width: 10, Height: 10, UnitWidth: 0, MaxIterations: 1},
		{Width: 10, Height: 10, UnitWidth: 1, MaxIterations: 0},
	} {
		r, err := Render(opts, referenceColor)
		if !errors.Is(err, ErrInvalidOptions) {
			t.Errorf("Render(%+v) error = %v, want ErrInvalidOptions", opts, err)
		}
		if r != nil {
			t.Errorf("Render(%+v) returned a raster", opts)
		}
	}
}

func TestRasterImage(t *testing.T) {
	r := NewRaster(3, 2)
	r.SetRGB(2, 1, RGB{1, 2, 3})

	if got := r.RGBAt(2, 1); got != (RGB{1, 2, 3}) {
		t.Errorf("RGBAt = %v", got)
	}
	if got := r.Row(1)[6:9]; !bytes.Equal(got, []uint8{1, 2, 3}) {
		t.Errorf("Row(1) tail = %v", got)
	}
	cr, cg, cb, ca := r.At(2, 1).RGBA()
	if cr>>8 != 1 || cg>>8 != 2 || cb>>8 != 3 || ca>>8 != 0xff {
		t.Errorf("At = %v %v %v %v", cr, cg, cb, ca)
	}

	clone := r.Clone()
	clone.SetRGB(0, 0, RGB{9, 9, 9})
	if r.RGBAt(0, 0) != (RGB{}) {
		t.Error("Clone shares pixel memory")
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, r); err != nil {
		t.Fatal(err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatal(err)
	}
	pr, pg, pb, _ := img.At(2, 1).RGBA()
	if pr>>8 != 1 || pg>>8 != 2 || pb>>8 != 3 {
		t.Errorf("decoded pixel = %v %v %v", pr>>8, pg>>8, pb>>8)
	}

	rgba := r.RGBA()
	if rgba.RGBAAt(2, 1).B != 3 || rgba.RGBAAt(2, 1).A != 0xff {
		t.Errorf("RGBA() pixel = %v", rgba.RGBAAt(2, 1))
	}
}

func TestRenderSupersampled(t *testing.T) {
	opts := Options{Width: 32, Height: 24, UnitWidth: 3, MaxIterations: 50, CX: -0.8, CY: 0.156}

	img, err := Renderer{}.RenderSupersampled(opts, referenceColor, 3)
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 32 || b.Dy() != 24 {
		t.Errorf("bounds = %v, want 32x24", b)
	}

	img, err = Renderer{}.RenderSupersampled(opts, referenceColor, 1)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := img.(*Raster); !ok {
		t.Errorf("factor 1 returned %T, want *Raster", img)
	}

	for _, factor := range []int{0, -1, MaxSupersample + 1} {
		if _, err := (Renderer{}).RenderSupersampled(opts, referenceColor, factor); !errors.Is(err, ErrInvalidOptions) {
			t.Errorf("factor %d: error = %v, want ErrInvalidOptions", factor, err)
		}
	}
}

func BenchmarkRender(b *testing.B) {
	opts := referenceOptions
	opts.Width, opts.Height = 256, 256
	opts.MaxIterations = 128

	for _, workers := range []int{1, 0} {
		b.Run(fmt.Sprintf("workers=%d", workers), func(b *testing.B) {
			r := Renderer{Workers: workers}
			for b.Loop() {
				if _, err := r.Render(opts, referenceColor); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
