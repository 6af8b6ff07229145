// Package factors generates daily multiplier series for every combination of
// a dimension set.
//
// A Factor is built once with its parameters fixed and may then be asked to
// Generate any number of, possibly overlapping, date windows. Factors are not
// safe for concurrent Generate calls on the same instance; distinct instances
// share no state and may generate in parallel.
package factors

import (
	"fmt"
	"time"

	"github.com/mmrzaf/tsgen/internal/domain"
)

// Re-exported so callers of this package need not import domain to branch on errors.
var (
	ErrConfiguration = domain.ErrConfiguration
	ErrRange         = domain.ErrRange
	ErrNotSupported  = domain.ErrNotSupported
)

// Factor produces one flat table per window: date, one column per dimension,
// and the factor's value column.
type Factor interface {
	// Name is the output value column.
	Name() string
	// Dimensions is nil for aggregate-only factors.
	Dimensions() domain.DimensionSet
	// Generate covers [start, end] inclusive at daily resolution. A zero end
	// means the caller omitted it; each variant decides the default.
	Generate(start, end time.Time) (*domain.Table, error)
	// Clone returns an independent copy; later use of either does not affect the other.
	Clone() Factor
}

// Seed is the two-word state used to start a PCG stream.
type Seed struct {
	Hi uint64 `json:"hi"`
	Lo uint64 `json:"lo"`
}

// SeedFromTime splits a wall-clock instant into whole seconds and microseconds.
func SeedFromTime(t time.Time) Seed {
	return Seed{Hi: uint64(t.Unix()), Lo: uint64(t.Nanosecond() / 1000)}
}

func (s Seed) String() string {
	return fmt.Sprintf("%d:%d", s.Hi, s.Lo)
}

// window truncates both ends to days and checks ordering. A zero end is
// replaced by def when def is non-zero, otherwise it is rejected.
func window(method string, start, end, def time.Time) (time.Time, time.Time, error) {
	if start.IsZero() {
		return time.Time{}, time.Time{}, fmt.Errorf("%s: start date required: %w", method, ErrRange)
	}
	if end.IsZero() {
		if def.IsZero() {
			return time.Time{}, time.Time{}, fmt.Errorf("%s: end date required: %w", method, ErrRange)
		}
		end = def
	}
	start, end = domain.Day(start), domain.Day(end)
	if start.After(end) {
		return time.Time{}, time.Time{}, fmt.Errorf("%s: start %s is after end %s: %w",
			method, start.Format(time.DateOnly), end.Format(time.DateOnly), ErrRange)
	}
	return start, end, nil
}

// dateRange lists every day in [start, end].
func dateRange(start, end time.Time) []time.Time {
	days := make([]time.Time, 0, domain.DaysBetween(start, end)+1)
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}
