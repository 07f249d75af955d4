package reveal

import (
	"errors"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/flagle/internal/pixel"
)

var (
	red   = pixel.RGBA{R: 206, G: 17, B: 38, A: 255}
	white = pixel.RGBA{R: 255, G: 255, B: 255, A: 255}
	blue  = pixel.RGBA{R: 0, G: 56, B: 168, A: 255}
)

// tricolour paints three vertical bands.
func tricolour(a, b, c pixel.RGBA) *pixel.Buffer {
	buf := pixel.New(pixel.Width, pixel.Height)
	third := pixel.Width / 3
	buf.Fill(0, 0, third, pixel.Height, a)
	buf.Fill(third, 0, 2*third, pixel.Height, b)
	buf.Fill(2*third, 0, pixel.Width, pixel.Height, c)
	return buf
}

func TestApplyGuessTargetAgainstItself(t *testing.T) {
	target := tricolour(blue, white, red)
	e := NewEngine(target)

	pct, err := e.ApplyGuess(target)
	require.NoError(t, err)
	assert.Equal(t, 100.0, pct)
	assert.Equal(t, target.Len(), e.Snapshot().Count())
}

func TestApplyGuessHalfMatch(t *testing.T) {
	target := tricolour(blue, white, red)
	guess := pixel.New(pixel.Width, pixel.Height)
	for y := 0; y < pixel.Height; y++ {
		copy(guess.Pix[4*y*pixel.Width:4*(y*pixel.Width+320)], target.Pix[4*y*pixel.Width:4*(y*pixel.Width+320)])
	}

	pct, err := NewEngine(target).ApplyGuess(guess)
	require.NoError(t, err)
	assert.Equal(t, 50.0, pct)
}

func TestApplyGuessIgnoresAlpha(t *testing.T) {
	target := pixel.New(4, 1)
	target.Fill(0, 0, 4, 1, pixel.RGBA{R: 1, G: 2, B: 3, A: 255})
	guess := pixel.New(4, 1)
	guess.Fill(0, 0, 2, 1, pixel.RGBA{R: 1, G: 2, B: 3, A: 0})

	pct, err := NewEngine(target).ApplyGuess(guess)
	require.NoError(t, err)
	assert.Equal(t, 50.0, pct)
}

func TestApplyGuessMonotonicAndIdempotent(t *testing.T) {
	target := tricolour(blue, white, red)
	guesses := []*pixel.Buffer{
		tricolour(red, white, blue), // middle band
		tricolour(blue, red, white), // left band
		tricolour(white, blue, red), // right band
		tricolour(red, white, blue), // repeat
		pixel.New(pixel.Width, pixel.Height),
	}

	e := NewEngine(target)
	prev := 0
	var prevPct float64
	for i, g := range guesses {
		pct, err := e.ApplyGuess(g)
		require.NoError(t, err)
		count := e.Revealed()
		require.GreaterOrEqual(t, count, prev, "guess %d hid pixels", i)
		require.GreaterOrEqual(t, pct, prevPct)
		prev, prevPct = count, pct
	}
	assert.Equal(t, 100.0, prevPct)

	once := NewEngine(target)
	p1, err := once.ApplyGuess(guesses[0])
	require.NoError(t, err)
	twice := NewEngine(target)
	_, err = twice.ApplyGuess(guesses[0])
	require.NoError(t, err)
	p2, err := twice.ApplyGuess(guesses[0])
	require.NoError(t, err)
	assert.Equal(t, p1, p2)
	assert.Equal(t, once.Snapshot(), twice.Snapshot())
	assert.Equal(t, 100*213.0/640, p1)
}

func TestBandedMatchesSerial(t *testing.T) {
	target := tricolour(blue, white, red)
	guess := tricolour(blue, red, red)
	// Speckle the guess so band edges see mixed pixels.
	for i := 0; i < guess.Len(); i += 7 {
		guess.Set(i, target.At(i))
	}

	banded := NewEngine(target)
	got, err := banded.ApplyGuess(guess)
	require.NoError(t, err)

	want := NewBitmap(target.Len())
	n := markRange(want, guess.Pix, target.Pix, 0, target.Len())
	assert.Equal(t, want, banded.Snapshot())
	assert.Equal(t, 100*float64(n)/float64(target.Len()), got)
}

func TestApplyGuessShapeMismatch(t *testing.T) {
	e := NewEngine(pixel.New(pixel.Width, pixel.Height))
	_, err := e.ApplyGuess(pixel.New(320, 240))
	require.ErrorIs(t, err, ErrShapeMismatch)

	var sm *ShapeMismatchError
	require.True(t, errors.As(err, &sm))
	assert.Equal(t, 320, sm.Got.X)
	assert.Equal(t, pixel.Height, sm.Want.Y)
	assert.Zero(t, e.Revealed())
}

func TestRevealAllAndComposite(t *testing.T) {
	target := pixel.New(2, 1)
	target.Set(0, red)
	target.Set(1, pixel.RGBA{R: 5, G: 6, B: 7, A: 0})
	e := NewEngine(target)

	guess := pixel.New(2, 1)
	guess.Set(0, red)
	_, err := e.ApplyGuess(guess)
	require.NoError(t, err)

	img := e.Composite(HiddenColor)
	assert.Equal(t, color.NRGBA{R: red.R, G: red.G, B: red.B, A: 255}, img.NRGBAAt(0, 0))
	assert.Equal(t, HiddenColor, img.NRGBAAt(1, 0))

	e.RevealAll()
	assert.Equal(t, 100.0, e.Percentage())
	img = e.Composite(HiddenColor)
	assert.Equal(t, color.NRGBA{R: 5, G: 6, B: 7, A: 255}, img.NRGBAAt(1, 0))
}
