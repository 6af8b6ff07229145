package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Frequency is the length of a coarse calendar period.
type Frequency string

const (
	FreqDay     Frequency = "D"
	FreqWeek    Frequency = "W"
	FreqMonth   Frequency = "M"
	FreqQuarter Frequency = "Q"
	FreqYear    Frequency = "Y"
)

func (f Frequency) Valid() bool {
	switch f {
	case FreqDay, FreqWeek, FreqMonth, FreqQuarter, FreqYear:
		return true
	default:
		return false
	}
}

// Period is a fixed calendar interval identified by its first day.
// Weeks start on Monday.
type Period struct {
	Freq  Frequency
	Start time.Time
}

// Day truncates t to UTC midnight of its calendar date.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween counts calendar days from a to b; negative when b is before a.
func DaysBetween(a, b time.Time) int {
	return int((Day(b).Unix() - Day(a).Unix()) / secondsPerDay)
}

const secondsPerDay = 24 * 60 * 60

// PeriodOf returns the period of frequency f containing t.
func PeriodOf(f Frequency, t time.Time) Period {
	t = Day(t)
	y, m, _ := t.Date()
	switch f {
	case FreqWeek:
		offset := (int(t.Weekday()) + 6) % 7
		return Period{Freq: f, Start: t.AddDate(0, 0, -offset)}
	case FreqMonth:
		return Period{Freq: f, Start: time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)}
	case FreqQuarter:
		qm := time.Month((int(m)-1)/3*3 + 1)
		return Period{Freq: f, Start: time.Date(y, qm, 1, 0, 0, 0, 0, time.UTC)}
	case FreqYear:
		return Period{Freq: f, Start: time.Date(y, time.January, 1, 0, 0, 0, 0, time.UTC)}
	default:
		return Period{Freq: FreqDay, Start: t}
	}
}

func (p Period) StartTime() time.Time { return p.Start }

// EndTime is the last calendar day belonging to the period.
func (p Period) EndTime() time.Time { return p.Next().Start.AddDate(0, 0, -1) }

func (p Period) Next() Period {
	switch p.Freq {
	case FreqWeek:
		return Period{Freq: p.Freq, Start: p.Start.AddDate(0, 0, 7)}
	case FreqMonth:
		return Period{Freq: p.Freq, Start: p.Start.AddDate(0, 1, 0)}
	case FreqQuarter:
		return Period{Freq: p.Freq, Start: p.Start.AddDate(0, 3, 0)}
	case FreqYear:
		return Period{Freq: p.Freq, Start: p.Start.AddDate(1, 0, 0)}
	default:
		return Period{Freq: p.Freq, Start: p.Start.AddDate(0, 0, 1)}
	}
}

func (p Period) Contains(t time.Time) bool {
	t = Day(t)
	return !t.Before(p.Start) && !t.After(p.EndTime())
}

// Compare orders periods of the same frequency by start date.
func (p Period) Compare(o Period) int {
	return p.Start.Compare(o.Start)
}

func (p Period) String() string {
	switch p.Freq {
	case FreqMonth:
		return p.Start.Format("2006-01")
	case FreqQuarter:
		return fmt.Sprintf("%dQ%d", p.Start.Year(), (int(p.Start.Month())-1)/3+1)
	case FreqYear:
		return strconv.Itoa(p.Start.Year())
	default:
		return p.Start.Format("2006-01-02")
	}
}

// ParsePeriod reads a period label: "2021-03" (M), "2021Q1" (Q), "2021" (Y) or
// any date inside the period ("2021-03-04") for every frequency.
func ParsePeriod(f Frequency, s string) (Period, error) {
	if !f.Valid() {
		return Period{}, fmt.Errorf("unknown period frequency: %q", f)
	}
	s = strings.TrimSpace(s)
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return PeriodOf(f, t), nil
	}
	switch f {
	case FreqMonth:
		t, err := time.Parse("2006-01", s)
		if err != nil {
			return Period{}, fmt.Errorf("invalid month period %q: %w", s, err)
		}
		return PeriodOf(f, t), nil
	case FreqQuarter:
		upper := strings.ToUpper(s)
		parts := strings.SplitN(upper, "Q", 2)
		if len(parts) != 2 {
			return Period{}, fmt.Errorf("invalid quarter period %q", s)
		}
		y, err := strconv.Atoi(strings.TrimSuffix(parts[0], "-"))
		if err != nil {
			return Period{}, fmt.Errorf("invalid quarter year %q: %w", s, err)
		}
		q, err := strconv.Atoi(parts[1])
		if err != nil || q < 1 || q > 4 {
			return Period{}, fmt.Errorf("invalid quarter number %q", s)
		}
		return Period{Freq: f, Start: time.Date(y, time.Month((q-1)*3+1), 1, 0, 0, 0, 0, time.UTC)}, nil
	case FreqYear:
		y, err := strconv.Atoi(s)
		if err != nil {
			return Period{}, fmt.Errorf("invalid year period %q: %w", s, err)
		}
		return Period{Freq: f, Start: time.Date(y, time.January, 1, 0, 0, 0, 0, time.UTC)}, nil
	default:
		return Period{}, fmt.Errorf("invalid %s period %q", f, s)
	}
}
