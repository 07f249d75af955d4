// internal/pixel/buffer.go
//
// Fixed-size RGBA pixel buffers, the unit the reveal engine compares.
//
// Buffers are non-premultiplied, 4 bytes per pixel, rows packed without
// padding. Every buffer entering the reveal engine is Width x Height.

package pixel

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"
)

const (
	Width  = 640
	Height = 480
)

// RGBA is one pixel.
type RGBA struct {
	R, G, B, A uint8
}

// SameColor reports whether two pixels agree on red, green and blue. Alpha is ignored.
func (p RGBA) SameColor(o RGBA) bool {
	return p.R == o.R && p.G == o.G && p.B == o.B
}

// Buffer is a width*height RGBA raster.
type Buffer struct {
	Width  int
	Height int
	Pix    []uint8
}

// New allocates a zeroed buffer.
func New(w, h int) *Buffer {
	return &Buffer{Width: w, Height: h, Pix: make([]uint8, 4*w*h)}
}

// Len is the pixel count.
func (b *Buffer) Len() int { return b.Width * b.Height }

// SameShape reports whether o has identical dimensions.
func (b *Buffer) SameShape(o *Buffer) bool {
	return b.Width == o.Width && b.Height == o.Height
}

// At returns pixel i in row-major order.
func (b *Buffer) At(i int) RGBA {
	o := 4 * i
	return RGBA{R: b.Pix[o], G: b.Pix[o+1], B: b.Pix[o+2], A: b.Pix[o+3]}
}

// Set writes pixel i.
func (b *Buffer) Set(i int, p RGBA) {
	o := 4 * i
	b.Pix[o], b.Pix[o+1], b.Pix[o+2], b.Pix[o+3] = p.R, p.G, p.B, p.A
}

// Fill paints the rectangle [x0,x1) x [y0,y1) with p, clipped to the buffer.
func (b *Buffer) Fill(x0, y0, x1, y1 int, p RGBA) {
	r := image.Rect(x0, y0, x1, y1).Intersect(image.Rect(0, 0, b.Width, b.Height))
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			b.Set(y*b.Width+x, p)
		}
	}
}

// Image wraps the buffer as an *image.NRGBA sharing the same pixels.
func (b *Buffer) Image() *image.NRGBA {
	return &image.NRGBA{Pix: b.Pix, Stride: 4 * b.Width, Rect: image.Rect(0, 0, b.Width, b.Height)}
}

// FromImage rasterises img into a w x h buffer. Images of another size are
// scaled nearest-neighbour so quantised palette colours survive untouched.
func FromImage(img image.Image, w, h int) *Buffer {
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	src := img.Bounds()
	if src.Dx() == w && src.Dy() == h {
		draw.Draw(dst, dst.Bounds(), img, src.Min, draw.Src)
	} else {
		draw.NearestNeighbor.Scale(dst, dst.Bounds(), img, src, draw.Src, nil)
	}
	return &Buffer{Width: w, Height: h, Pix: dst.Pix}
}

// Uniform returns a w x h buffer of one colour.
func Uniform(w, h int, c color.NRGBA) *Buffer {
	b := New(w, h)
	b.Fill(0, 0, w, h, RGBA{R: c.R, G: c.G, B: c.B, A: c.A})
	return b
}
