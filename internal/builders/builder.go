// Package builders turns scenario factor specs into configured factors.
package builders

import (
	"fmt"

	"github.com/jonboulle/clockwork"

	"github.com/mmrzaf/tsgen/internal/domain"
	"github.com/mmrzaf/tsgen/internal/factors"
	"github.com/mmrzaf/tsgen/internal/sources"
)

type Builder interface {
	// Validate checks the params of spec without touching sources.
	Validate(spec domain.FactorSpec) error
	Build(spec domain.FactorSpec, ctx BuildContext) (factors.Factor, error)
}

// SourceLoader resolves the "source" param of external factors.
type SourceLoader interface {
	Load(name string, opts sources.CSVOptions) (*domain.AggregatedSource, error)
}

type BuildContext struct {
	// Dimensions is the resolved dimension set of the factor being built.
	Dimensions domain.DimensionSet
	Seed       factors.Seed
	Clock      clockwork.Clock
	Sources    SourceLoader
	// Built holds the factors already built for this scenario, by name.
	Built map[string]factors.Factor
}

// Dependencies lists the factors spec reads from.
func Dependencies(spec domain.FactorSpec) []string {
	switch spec.Type {
	case domain.FactorTypeInvert, domain.FactorTypeScale:
		if ref, ok := spec.Params["factor"].(string); ok && ref != "" {
			return []string{ref}
		}
	}
	return nil
}

func (c BuildContext) options() []factors.Option {
	opts := []factors.Option{factors.WithSeed(c.Seed)}
	if c.Clock != nil {
		opts = append(opts, factors.WithClock(c.Clock))
	}
	return opts
}

func requireParams(spec domain.FactorSpec, names ...string) error {
	for _, name := range names {
		if _, ok := spec.Params[name]; !ok {
			return fmt.Errorf("%s requires '%s' param", spec.Type, name)
		}
	}
	return nil
}

// floatParam reads an optional numeric param; YAML and JSON decode numbers differently.
func floatParam(params map[string]interface{}, name string, def float64) (float64, error) {
	raw, ok := params[name]
	if !ok || raw == nil {
		return def, nil
	}
	v, ok := toFloat64(raw)
	if !ok {
		return 0, fmt.Errorf("'%s' must be a number, got %T", name, raw)
	}
	return v, nil
}

func stringParam(params map[string]interface{}, name, def string) (string, error) {
	raw, ok := params[name]
	if !ok || raw == nil {
		return def, nil
	}
	s, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("'%s' must be a string, got %T", name, raw)
	}
	return s, nil
}

func stringListParam(params map[string]interface{}, name string) ([]string, error) {
	raw, ok := params[name]
	if !ok || raw == nil {
		return nil, nil
	}
	switch v := raw.(type) {
	case []string:
		return append([]string(nil), v...), nil
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("'%s' must be a list of strings", name)
			}
			out = append(out, s)
		}
		return out, nil
	case string:
		return []string{v}, nil
	default:
		return nil, fmt.Errorf("'%s' must be a list of strings, got %T", name, raw)
	}
}

func toFloat64(v interface{}) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, true
	case float32:
		return float64(val), true
	case int:
		return float64(val), true
	case int64:
		return float64(val), true
	case uint64:
		return float64(val), true
	default:
		return 0, false
	}
}
