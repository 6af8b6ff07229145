package factors

import (
	"fmt"
	"time"

	"github.com/mmrzaf/tsgen/internal/domain"
)

type transformKind int

const (
	transformInvert transformKind = iota
	transformScale
)

// Transformed generates a pure function of a wrapped factor's output.
//
// It owns a clone of the wrapped factor taken at construction. The mapping
// only lines up with the wrapped factor when its Generate is deterministic
// for identical arguments; RandomPromotions is, RandomComposite is not.
type Transformed struct {
	inner Factor
	kind  transformKind
	scale float64
	base  float64
	alias string
}

// Invert returns a factor generating 1/v for every value v of f.
func Invert(f Factor) *Transformed {
	return &Transformed{inner: f.Clone(), kind: transformInvert}
}

// Scale returns a factor generating base + (v-base)*scale; base 0 gives v*scale.
func Scale(f Factor, scale, base float64) *Transformed {
	return &Transformed{inner: f.Clone(), kind: transformScale, scale: scale, base: base}
}

// As renames the output value column. An empty name keeps the wrapped one.
func (f *Transformed) As(name string) *Transformed {
	c := *f
	c.alias = name
	return &c
}

func (f *Transformed) Name() string {
	if f.alias != "" {
		return f.alias
	}
	return f.inner.Name()
}

func (f *Transformed) Dimensions() domain.DimensionSet { return f.inner.Dimensions() }

func (f *Transformed) Generate(start, end time.Time) (*domain.Table, error) {
	t, err := f.inner.Generate(start, end)
	if err != nil {
		return nil, err
	}
	idx, err := t.ValueIndex(f.inner.Name())
	if err != nil {
		return nil, fmt.Errorf("transform %s: %w", f.Name(), err)
	}
	t.ValueColumns[idx] = f.Name()
	for i := range t.Rows {
		t.Rows[i].Values[idx] = f.apply(t.Rows[i].Values[idx])
	}
	return t, nil
}

func (f *Transformed) apply(v float64) float64 {
	switch f.kind {
	case transformInvert:
		return 1.0 / v
	default:
		if f.base == 0 {
			return v * f.scale
		}
		return f.base + (v-f.base)*f.scale
	}
}

func (f *Transformed) Clone() Factor {
	c := *f
	c.inner = f.inner.Clone()
	return &c
}
