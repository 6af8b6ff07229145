package sources

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmrzaf/tsgen/internal/domain"
)

const weatherCSV = `date,country,temp,rain
2021-01,de,1.5,10
2021-01,fr,4.0,12
2021-02,de,2.5,8
`

func TestLoadCSV_PeriodIndexed(t *testing.T) {
	src, err := LoadCSV(strings.NewReader(weatherCSV), CSVOptions{
		DateField: "date",
		Index:     []string{"date", "country"},
		Freq:      domain.FreqMonth,
	})
	require.NoError(t, err)

	assert.True(t, src.DateIndexed)
	assert.True(t, src.PeriodIndexed())
	assert.Equal(t, []string{"country"}, src.Levels)
	assert.Equal(t, []string{"temp", "rain"}, src.Columns)
	require.Len(t, src.Rows, 3)
	assert.Equal(t, "2021-02", src.Rows[2].Period.String())
	assert.Equal(t, []string{"de"}, src.Rows[2].Labels)
	assert.Equal(t, []float64{2.5, 8}, src.Rows[2].Values)
}

func TestLoadCSV_ColumnDates(t *testing.T) {
	input := "day,sales\n2021-01-03,4\n2021-01-04,5\n"
	src, err := LoadCSV(strings.NewReader(input), CSVOptions{DateField: "day"})
	require.NoError(t, err)
	assert.False(t, src.DateIndexed)
	assert.False(t, src.PeriodIndexed())
	assert.Equal(t, time.Date(2021, 1, 4, 0, 0, 0, 0, time.UTC), src.Rows[1].Date)
}

func TestLoadCSV_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		opts  CSVOptions
	}{
		{"missing date column", "when,v\n2021-01,1\n", CSVOptions{Freq: domain.FreqMonth}},
		{"missing index column", weatherCSV, CSVOptions{Index: []string{"date", "city"}, Freq: domain.FreqMonth}},
		{"bad number", "date,v\n2021-01,abc\n", CSVOptions{Index: []string{"date"}, Freq: domain.FreqMonth}},
		{"bad period", "date,v\n2021-13,1\n", CSVOptions{Index: []string{"date"}, Freq: domain.FreqMonth}},
		{"unknown frequency", weatherCSV, CSVOptions{Freq: "H"}},
		{"missing value column", weatherCSV, CSVOptions{Freq: domain.FreqMonth, Columns: []string{"wind"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadCSV(strings.NewReader(tt.input), tt.opts)
			assert.Error(t, err)
		})
	}
}
