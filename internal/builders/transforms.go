package builders

import (
	"fmt"

	"github.com/mmrzaf/tsgen/internal/domain"
	"github.com/mmrzaf/tsgen/internal/factors"
)

type InvertBuilder struct{}

func (b *InvertBuilder) Validate(spec domain.FactorSpec) error {
	if err := requireParams(spec, "factor"); err != nil {
		return err
	}
	_, err := referencedFactor(spec)
	return err
}

func (b *InvertBuilder) Build(spec domain.FactorSpec, ctx BuildContext) (factors.Factor, error) {
	inner, err := resolveReference(spec, ctx)
	if err != nil {
		return nil, err
	}
	return factors.Invert(inner).As(spec.Name), nil
}

type ScaleBuilder struct{}

func (b *ScaleBuilder) Validate(spec domain.FactorSpec) error {
	if err := requireParams(spec, "factor", "scale"); err != nil {
		return err
	}
	if _, err := referencedFactor(spec); err != nil {
		return err
	}
	if _, err := floatParam(spec.Params, "scale", 1); err != nil {
		return err
	}
	_, err := floatParam(spec.Params, "base", 0)
	return err
}

func (b *ScaleBuilder) Build(spec domain.FactorSpec, ctx BuildContext) (factors.Factor, error) {
	if err := b.Validate(spec); err != nil {
		return nil, err
	}
	inner, err := resolveReference(spec, ctx)
	if err != nil {
		return nil, err
	}
	scale, _ := floatParam(spec.Params, "scale", 1)
	base, _ := floatParam(spec.Params, "base", 0)
	return factors.Scale(inner, scale, base).As(spec.Name), nil
}

func referencedFactor(spec domain.FactorSpec) (string, error) {
	ref, err := stringParam(spec.Params, "factor", "")
	if err != nil {
		return "", err
	}
	if ref == "" {
		return "", fmt.Errorf("'factor' must name another factor")
	}
	if ref == spec.Name {
		return "", fmt.Errorf("factor %s cannot transform itself", spec.Name)
	}
	return ref, nil
}

func resolveReference(spec domain.FactorSpec, ctx BuildContext) (factors.Factor, error) {
	ref, err := referencedFactor(spec)
	if err != nil {
		return nil, err
	}
	inner, ok := ctx.Built[ref]
	if !ok {
		return nil, fmt.Errorf("referenced factor %s is not built: %w", ref, domain.ErrConfiguration)
	}
	return inner, nil
}
