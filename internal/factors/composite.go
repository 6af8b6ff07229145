package factors

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/mmrzaf/tsgen/internal/domain"
	"github.com/mmrzaf/tsgen/internal/grid"
)

const methodRandomComposite = "RandomComposite"

// RandomComposite draws one uniform scalar per dimension combination and holds
// it constant across the window. Every Generate call draws afresh from the
// factor's stream, so two calls differ unless the stream is reset by Clone.
type RandomComposite struct {
	name     string
	dims     domain.DimensionSet
	combos   []domain.Combination
	min, max float64
	src      *rand.PCG
	rng      *rand.Rand
}

func NewRandomComposite(dims domain.DimensionSet, name string, opts ...Option) (*RandomComposite, error) {
	o := newOptions(opts...)
	if name == "" {
		name = DefaultCompositeColumn
	}
	if o.minValue > o.maxValue {
		return nil, fmt.Errorf("%s: min value %v > max value %v: %w",
			methodRandomComposite, o.minValue, o.maxValue, ErrConfiguration)
	}
	combos, err := grid.Product(dims)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", methodRandomComposite, err)
	}

	seed := Seed{Hi: rand.Uint64(), Lo: rand.Uint64()}
	if o.seed != nil {
		seed = *o.seed
	}
	src := rand.NewPCG(seed.Hi, seed.Lo)

	return &RandomComposite{
		name:   name,
		dims:   dims.Clone(),
		combos: combos,
		min:    o.minValue,
		max:    o.maxValue,
		src:    src,
		rng:    rand.New(src),
	}, nil
}

func (f *RandomComposite) Name() string                    { return f.name }
func (f *RandomComposite) Dimensions() domain.DimensionSet { return f.dims }

func (f *RandomComposite) Generate(start, end time.Time) (*domain.Table, error) {
	start, end, err := window(methodRandomComposite, start, end, time.Time{})
	if err != nil {
		return nil, err
	}

	values := make([]float64, len(f.combos))
	for i := range values {
		values[i] = f.min + (f.max-f.min)*f.rng.Float64()
	}

	days := dateRange(start, end)
	t := domain.NewTable(f.dims.Names(), []string{f.name})
	t.Rows = make([]domain.Row, 0, len(days)*len(f.combos))
	for _, d := range days {
		for i, c := range f.combos {
			t.Rows = append(t.Rows, domain.Row{Date: d, Labels: append([]string(nil), c...), Values: []float64{values[i]}})
		}
	}
	return t, nil
}

// Clone copies the stream state, so the clone's next draw equals the original's next draw.
func (f *RandomComposite) Clone() Factor {
	src := *f.src
	return &RandomComposite{
		name:   f.name,
		dims:   f.dims.Clone(),
		combos: f.combos,
		min:    f.min,
		max:    f.max,
		src:    &src,
		rng:    rand.New(&src),
	}
}
