package pixel

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io/fs"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// twoBand is red on the left half, blue on the right.
func twoBand(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := color.NRGBA{R: 255, A: 255}
			if x >= w/2 {
				c = color.NRGBA{B: 255, A: 255}
			}
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func TestBufferAccess(t *testing.T) {
	b := New(4, 3)
	assert.Equal(t, 12, b.Len())
	assert.Len(t, b.Pix, 48)

	b.Set(5, RGBA{R: 1, G: 2, B: 3, A: 4})
	assert.Equal(t, RGBA{R: 1, G: 2, B: 3, A: 4}, b.At(5))

	b.Fill(2, 1, 10, 10, RGBA{R: 9, A: 255})
	assert.Equal(t, RGBA{R: 9, A: 255}, b.At(1*4+2))
	assert.Equal(t, RGBA{R: 9, A: 255}, b.At(2*4+3))
	assert.Equal(t, RGBA{}, b.At(0))

	assert.True(t, b.SameShape(New(4, 3)))
	assert.False(t, b.SameShape(New(3, 4)))
}

func TestSameColorIgnoresAlpha(t *testing.T) {
	assert.True(t, RGBA{R: 10, G: 20, B: 30, A: 0}.SameColor(RGBA{R: 10, G: 20, B: 30, A: 255}))
	assert.False(t, RGBA{R: 10, G: 20, B: 30}.SameColor(RGBA{R: 10, G: 21, B: 30}))
}

func TestFromImageScalesNearest(t *testing.T) {
	b := FromImage(twoBand(64, 48), Width, Height)
	require.Equal(t, Width, b.Width)
	require.Equal(t, Height, b.Height)

	assert.Equal(t, RGBA{R: 255, A: 255}, b.At(0))
	assert.Equal(t, RGBA{R: 255, A: 255}, b.At(100*Width+319))
	assert.Equal(t, RGBA{B: 255, A: 255}, b.At(100*Width+320))
	assert.Equal(t, RGBA{B: 255, A: 255}, b.At(b.Len()-1))
}

func TestFromImageSameSize(t *testing.T) {
	src := twoBand(8, 2)
	b := FromImage(src, 8, 2)
	assert.Equal(t, src.Pix, b.Pix)
	assert.Equal(t, b.Pix, b.Image().Pix)
}

func TestFSLoader(t *testing.T) {
	fsys := fstest.MapFS{
		"de.png":  {Data: encodePNG(t, twoBand(Width, Height))},
		"bad.png": {Data: []byte("not a png")},
	}
	l := NewFSLoader(fsys)
	ctx := context.Background()

	b, err := l.Load(ctx, "de")
	require.NoError(t, err)
	assert.Equal(t, Width*Height, b.Len())

	tests := []struct {
		name  string
		id    string
		cause error
	}{
		{name: "missing", id: "fr", cause: fs.ErrNotExist},
		{name: "corrupt", id: "bad"},
		{name: "path escape", id: "../etc/passwd"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := l.Load(ctx, tt.id)
			require.ErrorIs(t, err, ErrLoad)
			var le *LoadError
			require.True(t, errors.As(err, &le))
			assert.Equal(t, tt.id, le.ID)
			if tt.cause != nil {
				assert.ErrorIs(t, err, tt.cause)
			}
		})
	}
}

type countingLoader struct {
	calls int
	next  Loader
}

func (c *countingLoader) Load(ctx context.Context, id string) (*Buffer, error) {
	c.calls++
	return c.next.Load(ctx, id)
}

func TestCachingLoader(t *testing.T) {
	inner := &countingLoader{next: MapLoader{"aa": New(2, 2)}}
	c := NewCachingLoader(inner)
	ctx := context.Background()

	a, err := c.Load(ctx, "aa")
	require.NoError(t, err)
	b, err := c.Load(ctx, "aa")
	require.NoError(t, err)
	assert.Same(t, a, b)
	assert.Equal(t, 1, inner.calls)

	_, err = c.Load(ctx, "zz")
	require.ErrorIs(t, err, ErrLoad)
	_, err = c.Load(ctx, "zz")
	require.ErrorIs(t, err, ErrLoad)
	assert.Equal(t, 3, inner.calls, "failures must not be cached")
}
