package fractal

import (
	"runtime"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

// Renderer renders full frames. The zero value renders with GOMAXPROCS
// workers.
type Renderer struct {
	// Workers bounds the number of rows rendered at once. 1 renders on the
	// calling goroutine; <= 0 means runtime.GOMAXPROCS(0).
	Workers int

	// Rows, when set, is incremented as each row completes.
	Rows *atomic.Int64
}

// Render renders opts with the default Renderer.
func Render(opts Options, c Color) (*Raster, error) {
	return Renderer{}.Render(opts, c)
}

// Render returns a fully populated raster for opts. Identical inputs always
// give identical rasters, whatever the worker count.
func (r Renderer) Render(opts Options, c Color) (*Raster, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	workers := r.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	raster := NewRaster(opts.Width, opts.Height)
	fill := FillColor(opts.Fill, opts.MaxIterations, c)

	if workers == 1 {
		for y := 0; y < opts.Height; y++ {
			renderRow(raster.Row(y), y, opts, c, fill)
			r.rowDone()
		}
		return raster, nil
	}

	// Each row gets its own buffer; rows are copied into place by index once
	// every worker is done.
	rows := make([][]uint8, opts.Height)
	var g errgroup.Group
	g.SetLimit(workers)
	for y := range rows {
		g.Go(func() error {
			row := make([]uint8, 3*opts.Width)
			renderRow(row, y, opts, c, fill)
			rows[y] = row
			r.rowDone()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for y, row := range rows {
		copy(raster.Row(y), row)
	}
	return raster, nil
}

func (r Renderer) rowDone() {
	if r.Rows != nil {
		r.Rows.Add(1)
	}
}

func renderRow(row []uint8, y int, opts Options, c Color, fill RGB) {
	for x := 0; x < opts.Width; x++ {
		p := opts.PlanePoint(x, y)
		i, escaped := Escape(p.X(), p.Y(), opts.CX, opts.CY, opts.MaxIterations)

		px := fill
		if escaped {
			px = ColorIteration(i, c)
		}
		row[3*x+0] = px.R
		row[3*x+1] = px.G
		row[3*x+2] = px.B
	}
}
