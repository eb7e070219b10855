// Package srs implements the spaced-repetition scheduler, an SM-2 variant
// with a four-grade rating scale. Scheduling is a pure function over the
// card's review state so it can be exercised without a store.
package srs

import (
	"fmt"
	"math"
	"time"
)

type Quality int

const (
	// Again marks forgotten material; the interval resets and a lapse is
	// recorded.
	Again Quality = iota
	// Hard means recalled with significant effort.
	Hard
	// Good means recalled correctly.
	Good
	// Easy means recalled effortlessly.
	Easy
)

func (q Quality) String() string {
	switch q {
	case Again:
		return "AGAIN"
	case Hard:
		return "HARD"
	case Good:
		return "GOOD"
	case Easy:
		return "EASY"
	}
	return fmt.Sprintf("Quality(%d)", int(q))
}

// ParseQuality accepts the wire names AGAIN/HARD/GOOD/EASY.
func ParseQuality(s string) (Quality, error) {
	switch s {
	case "AGAIN":
		return Again, nil
	case "HARD":
		return Hard, nil
	case "GOOD":
		return Good, nil
	case "EASY":
		return Easy, nil
	}
	return 0, fmt.Errorf("unknown review quality %q", s)
}

const (
	MinEaseFactor = 1.3
	MaxEaseFactor = 3.0
	MinInterval   = 1
	MaxInterval   = 365

	DefaultEaseFactor = 2.5
	DefaultInterval   = 1
)

// State is the scheduling state of one (user, flashcard) pair.
type State struct {
	EaseFactor   float64
	IntervalDays int
	Lapses       int
}

// NewState returns the state a card starts with on its first review.
func NewState() State {
	return State{EaseFactor: DefaultEaseFactor, IntervalDays: DefaultInterval, Lapses: 0}
}

// Result is the post-review state plus the next due date.
type Result struct {
	State
	NextReviewAt time.Time
}

// Schedule applies one review of the given quality. Early reviews climb a
// fixed graduation ladder (1 → 3 → 7 for Good, 1 → 4 → 10 for Easy)
// before the ease-factor formula takes over; the Easy ladder steps act as
// floors under the formula so a matured card is never pulled backwards.
// EaseFactor is clamped to [1.3, 3.0] and the interval to [1, 365] days.
func Schedule(quality Quality, state State, now time.Time) (Result, error) {
	if quality < Again || quality > Easy {
		return Result{}, fmt.Errorf("invalid review quality %d", int(quality))
	}

	ef := state.EaseFactor
	if ef == 0 {
		ef = DefaultEaseFactor
	}
	interval := state.IntervalDays
	if interval == 0 {
		interval = DefaultInterval
	}
	lapses := state.Lapses

	switch quality {
	case Again:
		interval = 1
		ef -= 0.2
		lapses++
	case Hard:
		interval = int(math.Round(float64(interval) * 1.2))
		if interval < 1 {
			interval = 1
		}
		ef -= 0.15
	case Good:
		switch {
		case interval == 1:
			interval = 3
		case interval < 7:
			interval = 7
		default:
			interval = int(math.Round(float64(interval) * ef))
		}
	case Easy:
		grown := int(math.Round(float64(interval) * ef * 1.3))
		switch {
		case interval == 1:
			interval = 4
		case interval < 7 && grown < 10:
			interval = 10
		default:
			interval = grown
		}
		ef += 0.15
	}

	if ef < MinEaseFactor {
		ef = MinEaseFactor
	}
	if ef > MaxEaseFactor {
		ef = MaxEaseFactor
	}
	if interval < MinInterval {
		interval = MinInterval
	}
	if interval > MaxInterval {
		interval = MaxInterval
	}

	return Result{
		State:        State{EaseFactor: ef, IntervalDays: interval, Lapses: lapses},
		NextReviewAt: now.AddDate(0, 0, interval),
	}, nil
}
