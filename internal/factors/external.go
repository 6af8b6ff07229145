package factors

import (
	"fmt"
	"time"

	"github.com/mmrzaf/tsgen/internal/domain"
	"github.com/mmrzaf/tsgen/internal/grid"
)

const methodExternalAggregated = "ExternalAggregated"

// ExternalAggregated expands a period-aggregated source table to daily rows.
// Every day inherits the values of the source period containing it; non-date
// index levels pass through as label columns. The source is never modified.
type ExternalAggregated struct {
	name    string
	src     *domain.AggregatedSource
	dims    domain.DimensionSet
	filter  map[int]map[string]bool
	minDate time.Time
	maxDate time.Time
}

// NewExternalAggregated binds a loaded source. name selects the value column
// the factor stands for; it may be empty when the source has a single column.
// Bounds not given with WithMinDate/WithMaxDate are inferred from the source.
func NewExternalAggregated(src *domain.AggregatedSource, name string, opts ...Option) (*ExternalAggregated, error) {
	o := newOptions(opts...)
	if src == nil {
		return nil, fmt.Errorf("%s: source is required: %w", methodExternalAggregated, ErrConfiguration)
	}
	if src.DateField == "" {
		return nil, fmt.Errorf("%s: date field is required: %w", methodExternalAggregated, ErrConfiguration)
	}
	if src.LevelIndex(src.DateField) >= 0 || src.ColumnIndex(src.DateField) >= 0 {
		return nil, fmt.Errorf("%s: date field %q also names a level or value column: %w",
			methodExternalAggregated, src.DateField, ErrConfiguration)
	}
	if name == "" && len(src.Columns) == 1 {
		name = src.Columns[0]
	}
	if src.ColumnIndex(name) < 0 {
		return nil, fmt.Errorf("%s: value column %q not in source columns %v: %w",
			methodExternalAggregated, name, src.Columns, ErrConfiguration)
	}
	if src.PeriodIndexed() {
		if !src.Freq.Valid() {
			return nil, fmt.Errorf("%s: unknown frequency %q: %w", methodExternalAggregated, src.Freq, ErrConfiguration)
		}
		for i, r := range src.Rows {
			if r.Period == nil || r.Period.Freq != src.Freq {
				return nil, fmt.Errorf("%s: row %d is not a %s period: %w", methodExternalAggregated, i, src.Freq, ErrConfiguration)
			}
		}
	}

	f := &ExternalAggregated{name: name, src: src}

	if len(o.dims) > 0 {
		if err := grid.Validate(o.dims); err != nil {
			return nil, fmt.Errorf("%s: %w", methodExternalAggregated, err)
		}
		f.dims = o.dims
		f.filter = make(map[int]map[string]bool, len(o.dims))
		for _, d := range o.dims {
			li := src.LevelIndex(d.Name)
			if li < 0 {
				return nil, fmt.Errorf("%s: dimension %q is not a source index level: %w",
					methodExternalAggregated, d.Name, ErrConfiguration)
			}
			allowed := make(map[string]bool, len(d.Values))
			for _, v := range d.Values {
				allowed[v] = true
			}
			f.filter[li] = allowed
		}
	}

	lo, hi, ok := src.DateBounds()
	if o.minDate.IsZero() {
		if !ok {
			return nil, fmt.Errorf("%s: cannot infer min date from an empty source: %w", methodExternalAggregated, ErrConfiguration)
		}
		f.minDate = lo
	} else {
		f.minDate = domain.Day(o.minDate)
	}
	if o.maxDate.IsZero() {
		if !ok {
			return nil, fmt.Errorf("%s: cannot infer max date from an empty source: %w", methodExternalAggregated, ErrConfiguration)
		}
		f.maxDate = hi
	} else {
		f.maxDate = domain.Day(o.maxDate)
	}
	if f.minDate.After(f.maxDate) {
		return nil, fmt.Errorf("%s: min date %s is after max date %s: %w", methodExternalAggregated,
			f.minDate.Format(time.DateOnly), f.maxDate.Format(time.DateOnly), ErrConfiguration)
	}
	return f, nil
}

func (f *ExternalAggregated) Name() string                    { return f.name }
func (f *ExternalAggregated) Dimensions() domain.DimensionSet { return f.dims }
func (f *ExternalAggregated) MinDate() time.Time              { return f.minDate }
func (f *ExternalAggregated) MaxDate() time.Time              { return f.maxDate }

// Generate defaults a zero end to the source's max date.
func (f *ExternalAggregated) Generate(start, end time.Time) (*domain.Table, error) {
	if !start.IsZero() && domain.Day(start).Before(f.minDate) {
		return nil, fmt.Errorf("%s: start date %s is before the dataset start %s: %w", methodExternalAggregated,
			domain.Day(start).Format(time.DateOnly), f.minDate.Format(time.DateOnly), ErrRange)
	}
	if !end.IsZero() && domain.Day(end).After(f.maxDate) {
		return nil, fmt.Errorf("%s: end date %s is after the dataset end %s: %w", methodExternalAggregated,
			domain.Day(end).Format(time.DateOnly), f.maxDate.Format(time.DateOnly), ErrRange)
	}
	start, end, err := window(methodExternalAggregated, start, end, f.maxDate)
	if err != nil {
		return nil, err
	}
	if !f.src.DateIndexed {
		return nil, fmt.Errorf("%s: sources not indexed by date field %q: %w", methodExternalAggregated, f.src.DateField, ErrNotSupported)
	}
	if !f.src.PeriodIndexed() {
		return nil, fmt.Errorf("%s: sources not indexed by a period: %w", methodExternalAggregated, ErrNotSupported)
	}

	freq := f.src.Freq
	first, last := domain.PeriodOf(freq, start), domain.PeriodOf(freq, end)

	t := domain.NewTable(f.src.Levels, f.src.Columns)
	t.DateColumn = f.src.DateField
	for _, r := range f.src.Rows {
		p := *r.Period
		if p.Compare(first) < 0 || p.Compare(last) > 0 {
			continue
		}
		if !f.keep(r) {
			continue
		}
		from, to := p.StartTime(), p.EndTime()
		if from.Before(start) {
			from = start
		}
		if to.After(end) {
			to = end
		}
		for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
			t.Rows = append(t.Rows, domain.Row{
				Date:   d,
				Labels: append([]string(nil), r.Labels...),
				Values: append([]float64(nil), r.Values...),
			})
		}
	}
	return t, nil
}

func (f *ExternalAggregated) keep(r domain.AggregatedRow) bool {
	for li, allowed := range f.filter {
		if !allowed[r.Labels[li]] {
			return false
		}
	}
	return true
}

// Clone shares the read-only source.
func (f *ExternalAggregated) Clone() Factor {
	c := *f
	c.dims = f.dims.Clone()
	return &c
}
