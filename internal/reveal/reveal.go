// internal/reveal/reveal.go
//
// The reveal engine: which pixels of the hidden flag the player has uncovered.
//
// A pixel is uncovered as soon as any guess matches the target's red, green
// and blue at that position. The bitmap only ever grows; it is reset by
// creating a new Engine for a new game.
//
// Comparison of large buffers is split into row bands processed concurrently.
// Bands write disjoint bitmap ranges and the engine lock is held for the whole
// update, so callers never observe a partially applied guess.

package reveal

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/robalobadob/flagle/internal/pixel"
)

// HiddenColor is painted over pixels that are still covered (#1f2937).
var HiddenColor = color.NRGBA{R: 31, G: 41, B: 55, A: 255}

// ErrShapeMismatch marks guesses whose dimensions differ from the target.
var ErrShapeMismatch = errors.New("reveal: buffer shape mismatch")

// ShapeMismatchError is an asset pipeline bug: a flag was baked at the wrong size.
type ShapeMismatchError struct {
	Want, Got image.Point
}

func (e *ShapeMismatchError) Error() string {
	return fmt.Sprintf("reveal: guess is %dx%d, target is %dx%d", e.Got.X, e.Got.Y, e.Want.X, e.Want.Y)
}

func (e *ShapeMismatchError) Unwrap() error { return ErrShapeMismatch }

// Bitmap holds one revealed flag per pixel.
type Bitmap []bool

// NewBitmap returns an all-hidden bitmap of n pixels.
func NewBitmap(n int) Bitmap { return make(Bitmap, n) }

// Count returns the number of revealed pixels.
func (b Bitmap) Count() int {
	n := 0
	for _, v := range b {
		if v {
			n++
		}
	}
	return n
}

// Clone copies the bitmap.
func (b Bitmap) Clone() Bitmap { return append(Bitmap(nil), b...) }

// minBandPixels keeps small buffers on a single goroutine.
const minBandPixels = 64 * 1024

// Engine owns the reveal state of one game.
type Engine struct {
	mu       sync.Mutex
	target   *pixel.Buffer
	bitmap   Bitmap
	revealed int
}

// NewEngine starts a game against target with every pixel hidden.
func NewEngine(target *pixel.Buffer) *Engine {
	return &Engine{target: target, bitmap: NewBitmap(target.Len())}
}

// Target returns the target buffer.
func (e *Engine) Target() *pixel.Buffer { return e.target }

// ApplyGuess uncovers every pixel where guess matches the target's colour and
// returns the cumulative revealed percentage. A guess of another size is
// rejected without touching the bitmap.
func (e *Engine) ApplyGuess(guess *pixel.Buffer) (float64, error) {
	if !guess.SameShape(e.target) {
		return 0, &ShapeMismatchError{
			Want: image.Pt(e.target.Width, e.target.Height),
			Got:  image.Pt(guess.Width, guess.Height),
		}
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	total := e.target.Len()
	bands := runtime.GOMAXPROCS(0)
	if limit := total / minBandPixels; bands > limit {
		bands = limit
	}
	if bands <= 1 {
		e.revealed += markRange(e.bitmap, guess.Pix, e.target.Pix, 0, total)
		return e.percentage(), nil
	}

	counts := make([]int, bands)
	step := (total + bands - 1) / bands
	var g errgroup.Group
	for i := 0; i < bands; i++ {
		lo, hi := i*step, min((i+1)*step, total)
		g.Go(func() error {
			counts[i] = markRange(e.bitmap, guess.Pix, e.target.Pix, lo, hi)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}
	for _, c := range counts {
		e.revealed += c
	}
	return e.percentage(), nil
}

// markRange reveals matching pixels in [lo,hi) and returns how many flipped
// from hidden to revealed.
func markRange(bm Bitmap, guess, target []uint8, lo, hi int) int {
	flipped := 0
	for i := lo; i < hi; i++ {
		if bm[i] {
			continue
		}
		o := 4 * i
		if guess[o] == target[o] && guess[o+1] == target[o+1] && guess[o+2] == target[o+2] {
			bm[i] = true
			flipped++
		}
	}
	return flipped
}

// RevealAll uncovers the whole flag. Used when the game ends.
func (e *Engine) RevealAll() {
	e.mu.Lock()
	defer e.mu.Unlock()
	for i := range e.bitmap {
		e.bitmap[i] = true
	}
	e.revealed = len(e.bitmap)
}

// Percentage returns 100 * revealed / total.
func (e *Engine) Percentage() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.percentage()
}

func (e *Engine) percentage() float64 {
	if len(e.bitmap) == 0 {
		return 0
	}
	return 100 * float64(e.revealed) / float64(len(e.bitmap))
}

// Revealed returns the number of uncovered pixels.
func (e *Engine) Revealed() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.revealed
}

// Snapshot copies the bitmap.
func (e *Engine) Snapshot() Bitmap {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.bitmap.Clone()
}

// Composite renders what the player sees: target colours where revealed,
// hidden elsewhere, always opaque.
func (e *Engine) Composite(hidden color.NRGBA) *image.NRGBA {
	e.mu.Lock()
	defer e.mu.Unlock()

	w, h := e.target.Width, e.target.Height
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i, shown := range e.bitmap {
		o := 4 * i
		if shown {
			img.Pix[o], img.Pix[o+1], img.Pix[o+2] = e.target.Pix[o], e.target.Pix[o+1], e.target.Pix[o+2]
		} else {
			img.Pix[o], img.Pix[o+1], img.Pix[o+2] = hidden.R, hidden.G, hidden.B
		}
		img.Pix[o+3] = 255
	}
	return img
}
