package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestPeriodOf(t *testing.T) {
	tests := []struct {
		freq       Frequency
		in         time.Time
		start, end time.Time
		label      string
	}{
		{FreqMonth, date(2024, 2, 15), date(2024, 2, 1), date(2024, 2, 29), "2024-02"},
		{FreqQuarter, date(2021, 8, 3), date(2021, 7, 1), date(2021, 9, 30), "2021Q3"},
		{FreqYear, date(2021, 8, 3), date(2021, 1, 1), date(2021, 12, 31), "2021"},
		{FreqWeek, date(2024, 1, 3), date(2024, 1, 1), date(2024, 1, 7), "2024-01-01"},
		{FreqDay, date(2024, 1, 3), date(2024, 1, 3), date(2024, 1, 3), "2024-01-03"},
	}
	for _, tt := range tests {
		t.Run(string(tt.freq), func(t *testing.T) {
			p := PeriodOf(tt.freq, tt.in.Add(13*time.Hour))
			assert.Equal(t, tt.start, p.StartTime())
			assert.Equal(t, tt.end, p.EndTime())
			assert.Equal(t, tt.label, p.String())
			assert.True(t, p.Contains(tt.in))
			assert.False(t, p.Contains(tt.end.AddDate(0, 0, 1)))
		})
	}
}

func TestParsePeriod(t *testing.T) {
	p, err := ParsePeriod(FreqMonth, "2021-03")
	require.NoError(t, err)
	assert.Equal(t, date(2021, 3, 1), p.Start)

	p, err = ParsePeriod(FreqQuarter, "2021Q4")
	require.NoError(t, err)
	assert.Equal(t, date(2021, 10, 1), p.Start)

	p, err = ParsePeriod(FreqYear, "2020")
	require.NoError(t, err)
	assert.Equal(t, date(2020, 1, 1), p.Start)

	p, err = ParsePeriod(FreqMonth, "2021-03-17")
	require.NoError(t, err)
	assert.Equal(t, date(2021, 3, 1), p.Start)

	_, err = ParsePeriod(FreqQuarter, "2021Q5")
	assert.Error(t, err)
	_, err = ParsePeriod("X", "2021")
	assert.Error(t, err)
}

func TestAggregatedSource_DateBounds(t *testing.T) {
	jan, _ := ParsePeriod(FreqMonth, "2021-01")
	mar, _ := ParsePeriod(FreqMonth, "2021-03")
	src := &AggregatedSource{
		DateField: "date", DateIndexed: true, Freq: FreqMonth,
		Rows: []AggregatedRow{{Period: &mar}, {Period: &jan}},
	}
	lo, hi, ok := src.DateBounds()
	require.True(t, ok)
	assert.Equal(t, date(2021, 1, 1), lo)
	assert.Equal(t, date(2021, 3, 31), hi)
}

func TestDaysBetween(t *testing.T) {
	d := func(y int, m time.Month, day int) time.Time { return time.Date(y, m, day, 0, 0, 0, 0, time.UTC) }

	assert.Equal(t, 0, DaysBetween(d(2021, 3, 1), d(2021, 3, 1)))
	assert.Equal(t, 29, DaysBetween(d(2020, 2, 1), d(2020, 3, 1)))
	assert.Equal(t, -1, DaysBetween(d(2021, 3, 2), d(2021, 3, 1)))
	assert.Equal(t, 1, DaysBetween(d(2021, 3, 1).Add(23*time.Hour), d(2021, 3, 2)))
	assert.Equal(t, 182621, DaysBetween(d(1800, 1, 1), d(2300, 1, 1)))
}
