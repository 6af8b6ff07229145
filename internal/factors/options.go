package factors

import (
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/mmrzaf/tsgen/internal/domain"
)

// Option customizes a factor constructor. Options a variant does not use are ignored.
type Option func(*options)

type options struct {
	minValue, maxValue float64

	gapRate      float64
	durationRate float64
	impactRate   float64

	seed  *Seed
	clock clockwork.Clock

	dims             domain.DimensionSet
	minDate, maxDate time.Time
}

const (
	DefaultCompositeColumn  = "random_feature_factor"
	DefaultPromotionsColumn = "random_promos_factor"

	defaultMinValue     = 1.0
	defaultMaxValue     = 10.0
	defaultGapRate      = 365.25 / 3
	defaultDurationRate = 7.0
	defaultImpactRate   = 0.3
)

func newOptions(opts ...Option) options {
	o := options{
		minValue:     defaultMinValue,
		maxValue:     defaultMaxValue,
		gapRate:      defaultGapRate,
		durationRate: defaultDurationRate,
		impactRate:   defaultImpactRate,
		clock:        clockwork.NewRealClock(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithRange sets the uniform range [min, max) of a composite factor.
func WithRange(min, max float64) Option {
	return func(o *options) {
		o.minValue, o.maxValue = min, max
	}
}

// WithSeed fixes the random stream.
func WithSeed(s Seed) Option {
	return func(o *options) {
		o.seed = &s
	}
}

// WithClock sets the clock a default seed is derived from.
func WithClock(c clockwork.Clock) Option {
	if c == nil {
		panic("factors: WithClock(nil)")
	}
	return func(o *options) {
		o.clock = c
	}
}

// WithGapRate is the mean number of days between promotion events.
func WithGapRate(r float64) Option {
	return func(o *options) { o.gapRate = r }
}

// WithDurationRate is the mean promotion length in days.
func WithDurationRate(r float64) Option {
	return func(o *options) { o.durationRate = r }
}

// WithImpactRate is the mean uplift of a promotion (0.3 = +30%).
func WithImpactRate(r float64) Option {
	return func(o *options) { o.impactRate = r }
}

// WithDimensions restricts an external factor to the listed index level values.
func WithDimensions(dims domain.DimensionSet) Option {
	return func(o *options) { o.dims = dims.Clone() }
}

func WithMinDate(t time.Time) Option {
	return func(o *options) { o.minDate = t }
}

func WithMaxDate(t time.Time) Option {
	return func(o *options) { o.maxDate = t }
}
