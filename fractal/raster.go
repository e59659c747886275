package fractal

import (
	"image"
	"image/color"
)

// Raster is a dense row-major RGB image, 3 bytes per pixel.
type Raster struct {
	Pix    []uint8
	Width  int
	Height int
}

func NewRaster(width, height int) *Raster {
	return &Raster{
		Pix:    make([]uint8, 3*width*height),
		Width:  width,
		Height: height,
	}
}

// Stride is the number of bytes in one row.
func (r *Raster) Stride() int {
	return 3 * r.Width
}

// Row returns row y of the raster. The slice aliases Pix.
func (r *Raster) Row(y int) []uint8 {
	return r.Pix[y*r.Stride() : (y+1)*r.Stride()]
}

func (r *Raster) RGBAt(x, y int) RGB {
	i := y*r.Stride() + 3*x
	return RGB{r.Pix[i], r.Pix[i+1], r.Pix[i+2]}
}

func (r *Raster) SetRGB(x, y int, c RGB) {
	i := y*r.Stride() + 3*x
	r.Pix[i], r.Pix[i+1], r.Pix[i+2] = c.R, c.G, c.B
}

func (r *Raster) Clone() *Raster {
	c := *r
	c.Pix = append([]uint8(nil), r.Pix...)
	return &c
}

func (r *Raster) Bounds() image.Rectangle {
	return image.Rect(0, 0, r.Width, r.Height)
}

func (r *Raster) At(x, y int) color.Color {
	if !(image.Point{x, y}.In(r.Bounds())) {
		return color.RGBA{}
	}
	c := r.RGBAt(x, y)
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: 0xff}
}

func (r *Raster) ColorModel() color.Model {
	return color.RGBAModel
}

func (r *Raster) Opaque() bool {
	return true
}

// RGBA copies the raster into a new *image.RGBA.
func (r *Raster) RGBA() *image.RGBA {
	img := image.NewRGBA(r.Bounds())
	for y := 0; y < r.Height; y++ {
		src := r.Row(y)
		dst := img.Pix[y*img.Stride : y*img.Stride+4*r.Width]
		for x := 0; x < r.Width; x++ {
			dst[4*x+0] = src[3*x+0]
			dst[4*x+1] = src[3*x+1]
			dst[4*x+2] = src[3*x+2]
			dst[4*x+3] = 0xff
		}
	}
	return img
}
