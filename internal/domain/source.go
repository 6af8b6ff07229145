package domain

import "time"

// AggregatedSource is a pre-aggregated external table already loaded in memory.
//
// When DateIndexed is true the date field is an index level and every row
// carries its Period (Freq set) or instant Date (Freq empty). Levels are the
// non-date index levels, passed through to generated output.
type AggregatedSource struct {
	DateField   string
	DateIndexed bool
	Freq        Frequency
	Levels      []string
	Columns     []string
	Rows        []AggregatedRow
}

type AggregatedRow struct {
	Date   time.Time
	Period *Period
	Labels []string
	Values []float64
}

// PeriodIndexed reports whether the date field holds periods rather than instants.
func (s *AggregatedSource) PeriodIndexed() bool {
	return s.Freq != ""
}

func (s *AggregatedSource) ColumnIndex(name string) int {
	for i, c := range s.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

func (s *AggregatedSource) LevelIndex(name string) int {
	for i, l := range s.Levels {
		if l == name {
			return i
		}
	}
	return -1
}

// DateBounds returns the earliest and latest day covered by the date field.
// Periods contribute their first day to the minimum and last day to the maximum.
func (s *AggregatedSource) DateBounds() (time.Time, time.Time, bool) {
	var lo, hi time.Time
	for i, r := range s.Rows {
		first, last := Day(r.Date), Day(r.Date)
		if r.Period != nil {
			first, last = r.Period.StartTime(), r.Period.EndTime()
		}
		if i == 0 || first.Before(lo) {
			lo = first
		}
		if i == 0 || last.After(hi) {
			hi = last
		}
	}
	return lo, hi, len(s.Rows) > 0
}
