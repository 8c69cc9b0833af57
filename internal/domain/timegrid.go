package domain

import (
	"errors"
	"fmt"
	"math"

	"github.com/m04kA/SMC-StaffAllocator/pkg/types"
)

var (
	// ErrInvalidGrid is returned when business hours or granularity are inconsistent
	ErrInvalidGrid = errors.New("domain: invalid time grid")

	// ErrInvalidDuration is returned for non-positive or non-finite durations
	ErrInvalidDuration = errors.New("domain: invalid duration")
)

// TimeGrid is the static business-hours model.
// Slot arithmetic is done in whole minutes, which is the fixed-point form of
// the decimal hours used at the boundary (9.25 == 09:15 == 555 minutes).
type TimeGrid struct {
	opening     types.TimeString
	closing     types.TimeString
	granularity int
}

// DefaultTimeGrid returns the 09:00-17:00 grid with 15 minute slots
func DefaultTimeGrid() TimeGrid {
	return TimeGrid{
		opening:     DefaultOpeningTime,
		closing:     DefaultClosingTime,
		granularity: DefaultGranularityMinutes,
	}
}

// NewTimeGrid validates and builds a grid
func NewTimeGrid(opening, closing string, granularityMinutes int) (TimeGrid, error) {
	open, err := types.NewTimeStringFromString(opening)
	if err != nil {
		return TimeGrid{}, fmt.Errorf("%w: opening: %v", ErrInvalidGrid, err)
	}
	closeAt, err := types.NewTimeStringFromString(closing)
	if err != nil {
		return TimeGrid{}, fmt.Errorf("%w: closing: %v", ErrInvalidGrid, err)
	}
	if !open.IsBefore(closeAt) {
		return TimeGrid{}, fmt.Errorf("%w: opening %s must be before closing %s", ErrInvalidGrid, open, closeAt)
	}
	if granularityMinutes <= 0 {
		return TimeGrid{}, fmt.Errorf("%w: granularity must be positive", ErrInvalidGrid)
	}
	if (closeAt.Minutes()-open.Minutes())%granularityMinutes != 0 {
		return TimeGrid{}, fmt.Errorf("%w: granularity %d does not divide business hours", ErrInvalidGrid, granularityMinutes)
	}

	return TimeGrid{opening: open, closing: closeAt, granularity: granularityMinutes}, nil
}

func (g TimeGrid) Opening() types.TimeString { return g.opening }

func (g TimeGrid) Closing() types.TimeString { return g.closing }

func (g TimeGrid) GranularityMinutes() int { return g.granularity }

// ValidSlots returns every slot start from opening up to and including closing
func (g TimeGrid) ValidSlots() []types.TimeString {
	open, closeAt := g.opening.Minutes(), g.closing.Minutes()
	slots := make([]types.TimeString, 0, (closeAt-open)/g.granularity+1)
	for m := open; m <= closeAt; m += g.granularity {
		slot, err := types.NewTimeStringFromMinutes(m)
		if err != nil {
			break
		}
		slots = append(slots, slot)
	}
	return slots
}

// Contains reports whether t is a grid slot
func (g TimeGrid) Contains(t types.TimeString) bool {
	m := t.Minutes()
	if m < g.opening.Minutes() || m > g.closing.Minutes() {
		return false
	}
	return (m-g.opening.Minutes())%g.granularity == 0
}

// Offsets returns the stepping offsets {0, g, 2g, ...} strictly below durationMinutes
func (g TimeGrid) Offsets(durationMinutes int) []int {
	if durationMinutes <= 0 {
		return nil
	}
	offsets := make([]int, 0, durationMinutes/g.granularity+1)
	for i := 0; i < durationMinutes; i += g.granularity {
		offsets = append(offsets, i)
	}
	return offsets
}

// Expand returns the slots consumed by a job of durationMinutes starting at start.
// Points past midnight are dropped.
func (g TimeGrid) Expand(start types.TimeString, durationMinutes int) []types.TimeString {
	offsets := g.Offsets(durationMinutes)
	slots := make([]types.TimeString, 0, len(offsets))
	for _, i := range offsets {
		slot, err := start.AddMinutes(i)
		if err != nil {
			break
		}
		slots = append(slots, slot)
	}
	return slots
}

// EndsAfterClosing reports whether a job started at start would run past closing
func (g TimeGrid) EndsAfterClosing(start types.TimeString, durationMinutes int) bool {
	return start.Minutes()+durationMinutes > g.closing.Minutes()
}

// MinutesFromHours converts decimal hours into whole minutes
func MinutesFromHours(hours float64) (int, error) {
	if math.IsNaN(hours) || math.IsInf(hours, 0) || hours <= 0 || hours > MaxDurationHours {
		return 0, fmt.Errorf("%w: %v hours", ErrInvalidDuration, hours)
	}
	minutes := int(math.Round(hours * 60))
	if minutes <= 0 {
		return 0, fmt.Errorf("%w: %v hours rounds to zero minutes", ErrInvalidDuration, hours)
	}
	return minutes, nil
}
