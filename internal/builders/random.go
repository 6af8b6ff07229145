package builders

import (
	"fmt"

	"github.com/mmrzaf/tsgen/internal/domain"
	"github.com/mmrzaf/tsgen/internal/factors"
)

type RandomCompositeBuilder struct{}

func (b *RandomCompositeBuilder) Validate(spec domain.FactorSpec) error {
	lo, err := floatParam(spec.Params, "min", 1)
	if err != nil {
		return err
	}
	hi, err := floatParam(spec.Params, "max", 10)
	if err != nil {
		return err
	}
	if lo > hi {
		return fmt.Errorf("'min' (%v) must not exceed 'max' (%v)", lo, hi)
	}
	return nil
}

func (b *RandomCompositeBuilder) Build(spec domain.FactorSpec, ctx BuildContext) (factors.Factor, error) {
	if err := b.Validate(spec); err != nil {
		return nil, err
	}
	lo, _ := floatParam(spec.Params, "min", 1)
	hi, _ := floatParam(spec.Params, "max", 10)
	opts := append(ctx.options(), factors.WithRange(lo, hi))
	return factors.NewRandomComposite(ctx.Dimensions, spec.Name, opts...)
}

type RandomPromotionsBuilder struct{}

func (b *RandomPromotionsBuilder) Validate(spec domain.FactorSpec) error {
	for _, name := range []string{"gap_rate", "duration_rate", "impact_rate"} {
		v, err := floatParam(spec.Params, name, 1)
		if err != nil {
			return err
		}
		if !(v > 0) {
			return fmt.Errorf("'%s' must be > 0", name)
		}
	}
	return nil
}

func (b *RandomPromotionsBuilder) Build(spec domain.FactorSpec, ctx BuildContext) (factors.Factor, error) {
	if err := b.Validate(spec); err != nil {
		return nil, err
	}
	opts := ctx.options()
	for _, p := range []struct {
		name   string
		option func(float64) factors.Option
	}{
		{"gap_rate", factors.WithGapRate},
		{"duration_rate", factors.WithDurationRate},
		{"impact_rate", factors.WithImpactRate},
	} {
		// Absent and null params keep the factor default.
		if spec.Params[p.name] == nil {
			continue
		}
		r, err := floatParam(spec.Params, p.name, 0)
		if err != nil {
			return nil, err
		}
		opts = append(opts, p.option(r))
	}
	return factors.NewRandomPromotions(ctx.Dimensions, spec.Name, opts...)
}
