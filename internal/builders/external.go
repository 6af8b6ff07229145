package builders

import (
	"fmt"

	"github.com/mmrzaf/tsgen/internal/domain"
	"github.com/mmrzaf/tsgen/internal/factors"
	"github.com/mmrzaf/tsgen/internal/sources"
)

type ExternalAggregatedBuilder struct{}

func (b *ExternalAggregatedBuilder) Validate(spec domain.FactorSpec) error {
	if err := requireParams(spec, "source"); err != nil {
		return err
	}
	_, err := b.csvOptions(spec)
	return err
}

func (b *ExternalAggregatedBuilder) csvOptions(spec domain.FactorSpec) (sources.CSVOptions, error) {
	var opts sources.CSVOptions
	dateField, err := stringParam(spec.Params, "date_field", domain.DefaultDateColumn)
	if err != nil {
		return opts, err
	}
	freq, err := stringParam(spec.Params, "freq", string(domain.FreqMonth))
	if err != nil {
		return opts, err
	}
	if freq != "" && !domain.Frequency(freq).Valid() {
		return opts, fmt.Errorf("unknown 'freq': %q", freq)
	}
	index, err := stringListParam(spec.Params, "index")
	if err != nil {
		return opts, err
	}
	if len(index) == 0 {
		index = []string{dateField}
	}
	column, err := stringParam(spec.Params, "column", "")
	if err != nil {
		return opts, err
	}
	opts = sources.CSVOptions{
		DateField: dateField,
		Index:     index,
		Freq:      domain.Frequency(freq),
	}
	if column != "" {
		opts.Columns = []string{column}
	}
	return opts, nil
}

// Build loads the source and, when the spec lists dimensions, keeps only the
// source rows whose levels match their values.
func (b *ExternalAggregatedBuilder) Build(spec domain.FactorSpec, ctx BuildContext) (factors.Factor, error) {
	if err := b.Validate(spec); err != nil {
		return nil, err
	}
	if ctx.Sources == nil {
		return nil, fmt.Errorf("no source loader configured: %w", domain.ErrConfiguration)
	}
	opts, _ := b.csvOptions(spec)
	name, _ := stringParam(spec.Params, "source", "")
	src, err := ctx.Sources.Load(name, opts)
	if err != nil {
		return nil, fmt.Errorf("loading source %s: %w", name, err)
	}

	column, _ := stringParam(spec.Params, "column", "")
	var fopts []factors.Option
	if len(spec.Dimensions) > 0 {
		fopts = append(fopts, factors.WithDimensions(ctx.Dimensions))
	}
	f, err := factors.NewExternalAggregated(src, column, fopts...)
	if err != nil {
		return nil, err
	}
	return f, nil
}
