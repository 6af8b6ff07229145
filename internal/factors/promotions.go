package factors

import (
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"github.com/mmrzaf/tsgen/internal/domain"
	"github.com/mmrzaf/tsgen/internal/grid"
)

const methodRandomPromotions = "RandomPromotions"

// Event is one promotion: it occupies [Start, End) and lifts the factor to Impact.
type Event struct {
	StartOffsetDays int       `json:"start_offset_days"`
	DurationDays    int       `json:"duration_days"`
	Impact          float64   `json:"impact"`
	Start           time.Time `json:"start"`
	End             time.Time `json:"end"`
}

type CombinationEvents struct {
	Combination domain.Combination `json:"combination"`
	Events      []Event            `json:"events"`
}

// RandomPromotions simulates a renewal process of promotion events per
// combination. Gaps, durations and impacts are drawn from exponential
// distributions with the configured means. The factor is 1.0 outside events
// and 1+impact during them.
//
// The seed is fixed at construction and replayed from the start of the window
// on every call, so the same window always yields the same events.
type RandomPromotions struct {
	name         string
	dims         domain.DimensionSet
	combos       []domain.Combination
	gapRate      float64
	durationRate float64
	impactRate   float64
	seed         Seed
}

func NewRandomPromotions(dims domain.DimensionSet, name string, opts ...Option) (*RandomPromotions, error) {
	o := newOptions(opts...)
	if name == "" {
		name = DefaultPromotionsColumn
	}
	for _, r := range []struct {
		label string
		v     float64
	}{
		{"gap rate", o.gapRate},
		{"duration rate", o.durationRate},
		{"impact rate", o.impactRate},
	} {
		if !(r.v > 0) || math.IsInf(r.v, 0) {
			return nil, fmt.Errorf("%s: %s must be > 0, got %v: %w", methodRandomPromotions, r.label, r.v, ErrConfiguration)
		}
	}
	combos, err := grid.Product(dims)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", methodRandomPromotions, err)
	}

	seed := SeedFromTime(o.clock.Now())
	if o.seed != nil {
		seed = *o.seed
	}

	return &RandomPromotions{
		name:         name,
		dims:         dims.Clone(),
		combos:       combos,
		gapRate:      o.gapRate,
		durationRate: o.durationRate,
		impactRate:   o.impactRate,
		seed:         seed,
	}, nil
}

func (f *RandomPromotions) Name() string                    { return f.name }
func (f *RandomPromotions) Dimensions() domain.DimensionSet { return f.dims }
func (f *RandomPromotions) Seed() Seed                      { return f.seed }

// Events returns the promotions drawn for each combination over the window.
// An event starting after end is dropped; one starting on or before end is
// kept whole even if it runs past end.
func (f *RandomPromotions) Events(start, end time.Time) ([]CombinationEvents, error) {
	start, end, err := window(methodRandomPromotions, start, end, time.Time{})
	if err != nil {
		return nil, err
	}
	return f.events(start, end), nil
}

func (f *RandomPromotions) events(start, end time.Time) []CombinationEvents {
	rng := rand.New(rand.NewPCG(f.seed.Hi, f.seed.Lo))
	out := make([]CombinationEvents, len(f.combos))
	for i, c := range f.combos {
		out[i].Combination = append(domain.Combination(nil), c...)
		cursor := start
		for !cursor.After(end) {
			gap := int(math.RoundToEven(f.gapRate * rng.ExpFloat64()))
			duration := max(1, int(math.RoundToEven(f.durationRate*rng.ExpFloat64())))
			impact := 1.0 + f.impactRate*rng.ExpFloat64()

			evStart := cursor.AddDate(0, 0, gap)
			if evStart.After(end) {
				break
			}
			evEnd := evStart.AddDate(0, 0, duration+1)
			out[i].Events = append(out[i].Events, Event{
				StartOffsetDays: domain.DaysBetween(start, evStart),
				DurationDays:    duration,
				Impact:          impact,
				Start:           evStart,
				End:             evEnd,
			})
			cursor = evEnd
		}
	}
	return out
}

func (f *RandomPromotions) Generate(start, end time.Time) (*domain.Table, error) {
	start, end, err := window(methodRandomPromotions, start, end, time.Time{})
	if err != nil {
		return nil, err
	}

	days := dateRange(start, end)
	n := len(f.combos)
	t := domain.NewTable(f.dims.Names(), []string{f.name})
	t.Rows = make([]domain.Row, 0, len(days)*n)
	for _, d := range days {
		for _, c := range f.combos {
			t.Rows = append(t.Rows, domain.Row{Date: d, Labels: append([]string(nil), c...), Values: []float64{1.0}})
		}
	}

	for ci, ce := range f.events(start, end) {
		for _, ev := range ce.Events {
			last := min(domain.DaysBetween(start, ev.End), len(days))
			for di := ev.StartOffsetDays; di < last; di++ {
				t.Rows[di*n+ci].Values[0] = ev.Impact
			}
		}
	}
	return t, nil
}

func (f *RandomPromotions) Clone() Factor {
	c := *f
	c.dims = f.dims.Clone()
	return &c
}
