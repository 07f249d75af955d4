package daily

import (
	"errors"
	"fmt"
	"time"

	"github.com/robalobadob/flagle/internal/rng"
)

// DefaultSeed is the fixed seed string of the published rotation. Changing it
// reshuffles every future day.
const DefaultSeed = "flagle-shuffle-seed-v2"

// ErrEmptyPool is returned when there is nothing to pick from.
var ErrEmptyPool = errors.New("daily: empty pool")

// PickTarget returns the identifier assigned to the calendar day of now.
// The ids are shuffled with the hash of seed and indexed by DayIndex modulo
// len(ids); reordering or resizing ids changes future assignments.
func PickTarget(ids []string, seed string, now, epoch time.Time) (string, error) {
	if len(ids) == 0 {
		return "", ErrEmptyPool
	}
	shuffled, err := rng.Shuffle(ids, rng.HashString(seed))
	if err != nil {
		return "", fmt.Errorf("shuffle pool: %w", err)
	}
	return shuffled[wrap(DayIndex(now, epoch), len(shuffled))], nil
}

// wrap maps idx into [0,n) for negative indexes as well.
func wrap(idx, n int) int {
	return ((idx % n) + n) % n
}

// Selector fixes the seed, epoch and pool order of a deployment.
// The shuffle is computed once at construction.
type Selector struct {
	seed     string
	epoch    time.Time
	shuffled []string
}

// NewSelector precomputes the permutation of ids.
func NewSelector(ids []string, seed string, epoch time.Time) (*Selector, error) {
	if len(ids) == 0 {
		return nil, ErrEmptyPool
	}
	shuffled, err := rng.Shuffle(ids, rng.HashString(seed))
	if err != nil {
		return nil, fmt.Errorf("shuffle pool: %w", err)
	}
	return &Selector{seed: seed, epoch: epoch, shuffled: shuffled}, nil
}

// Target returns the identifier for the day of now.
func (s *Selector) Target(now time.Time) string {
	return s.shuffled[wrap(DayIndex(now, s.epoch), len(s.shuffled))]
}

// DayIndex returns the rotation index of now.
func (s *Selector) DayIndex(now time.Time) int { return DayIndex(now, s.epoch) }

// Location is where day boundaries are drawn.
func (s *Selector) Location() *time.Location { return s.epoch.Location() }

// Day is one entry of a schedule.
type Day struct {
	Date   Date
	Index  int
	Target string
}

// Schedule lists the targets of n consecutive days starting at from's date.
func (s *Selector) Schedule(from time.Time, n int) []Day {
	start := DateOf(from.In(s.epoch.Location()))
	out := make([]Day, 0, n)
	for i := 0; i < n; i++ {
		at := time.Date(start.Year, start.Month, start.Day+i, 12, 0, 0, 0, s.epoch.Location())
		out = append(out, Day{Date: DateOf(at), Index: DayIndex(at, s.epoch), Target: s.Target(at)})
	}
	return out
}
