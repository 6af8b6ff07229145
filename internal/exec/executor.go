package exec

import (
	"context"
	"fmt"
	"hash/fnv"
	"io"
	"math"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/errgroup"

	"github.com/mmrzaf/tsgen/internal/builders"
	"github.com/mmrzaf/tsgen/internal/domain"
	"github.com/mmrzaf/tsgen/internal/factors"
	"github.com/mmrzaf/tsgen/internal/labels"
	"github.com/mmrzaf/tsgen/internal/logging"
	"github.com/mmrzaf/tsgen/internal/metrics"
	"github.com/mmrzaf/tsgen/internal/registry"
	"github.com/mmrzaf/tsgen/internal/validation"
)

type Executor struct {
	factorRegistry *registry.FactorRegistry
	sources        builders.SourceLoader
	clock          clockwork.Clock
	maxParallel    int
	logger         *logging.Logger
}

// Result holds every generated table keyed by factor name.
type Result struct {
	Order      []string
	Dimensions domain.DimensionSet
	Factors    map[string]factors.Factor
	Tables     map[string]*domain.Table
	Stats      *domain.RunStats
}

func NewExecutor(factorRegistry *registry.FactorRegistry, sources builders.SourceLoader, clock clockwork.Clock, maxParallel int, logger *logging.Logger) *Executor {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if maxParallel <= 0 {
		maxParallel = 1
	}
	if logger == nil {
		logger = logging.NewLoggerWithWriter("error", io.Discard)
	}
	return &Executor{
		factorRegistry: factorRegistry,
		sources:        sources,
		clock:          clock,
		maxParallel:    maxParallel,
		logger:         logger.WithComponent("executor"),
	}
}

// ResolveDimensions expands the scenario's dimension specs into concrete
// values. Generated labels draw from a stream derived from seed and the
// dimension name.
func ResolveDimensions(scenario *domain.Scenario, seed int64) (domain.DimensionSet, error) {
	dims := make(domain.DimensionSet, 0, len(scenario.Dimensions))
	for _, spec := range scenario.Dimensions {
		if spec.Generate == nil {
			dims = append(dims, domain.Dimension{Name: spec.Name, Values: append([]string(nil), spec.Values...)})
			continue
		}
		rng := rand.New(rand.NewPCG(uint64(seed), nameHash("dimension/"+spec.Name)))
		values, err := labels.Generate(rng, *spec.Generate)
		if err != nil {
			return nil, fmt.Errorf("dimension '%s': %w", spec.Name, err)
		}
		dims = append(dims, domain.Dimension{Name: spec.Name, Values: values})
	}
	return dims, nil
}

// FactorSeed derives an independent stream per factor from the run seed.
func FactorSeed(runSeed int64, factorName string) factors.Seed {
	return factors.Seed{Hi: uint64(runSeed), Lo: nameHash(factorName)}
}

func nameHash(s string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(s))
	return h.Sum64()
}

// Build constructs every factor of the scenario in dependency order.
func (e *Executor) Build(scenario *domain.Scenario, dims domain.DimensionSet, seed int64) ([]string, map[string]factors.Factor, error) {
	order, err := validation.TopologicalSort(scenario)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to sort factors: %w", err)
	}

	specs := make(map[string]domain.FactorSpec, len(scenario.Factors))
	for _, f := range scenario.Factors {
		specs[f.Name] = f
	}

	built := make(map[string]factors.Factor, len(order))
	for _, name := range order {
		spec := specs[name]
		b, err := e.factorRegistry.Get(spec.Type)
		if err != nil {
			return nil, nil, fmt.Errorf("factor '%s': %w", name, err)
		}
		factorDims, err := selectDimensions(dims, spec.Dimensions)
		if err != nil {
			return nil, nil, fmt.Errorf("factor '%s': %w", name, err)
		}
		f, err := b.Build(spec, builders.BuildContext{
			Dimensions: factorDims,
			Seed:       FactorSeed(seed, name),
			Clock:      e.clock,
			Sources:    e.sources,
			Built:      built,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("factor '%s': %w", name, err)
		}
		built[name] = f
	}
	return order, built, nil
}

// Execute builds all factors, then generates them concurrently over [start, end].
func (e *Executor) Execute(ctx context.Context, scenario *domain.Scenario, dims domain.DimensionSet, start, end time.Time, seed int64) (*Result, error) {
	runStart := e.clock.Now()

	order, built, err := e.Build(scenario, dims, seed)
	if err != nil {
		return nil, err
	}

	specs := make(map[string]domain.FactorSpec, len(scenario.Factors))
	for _, f := range scenario.Factors {
		specs[f.Name] = f
	}

	tables := make([]*domain.Table, len(order))
	factorStats := make([]domain.FactorRunStats, len(order))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.maxParallel)
	for i, name := range order {
		f := built[name]
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			factorType := specs[name].Type
			started := e.clock.Now()
			tbl, err := f.Generate(start, end)
			metrics.FactorGenerationDuration.WithLabelValues(factorType).Observe(e.clock.Since(started).Seconds())
			if err != nil {
				metrics.FactorsGeneratedTotal.WithLabelValues(factorType, "error").Inc()
				return fmt.Errorf("factor '%s': %w", name, err)
			}
			metrics.FactorsGeneratedTotal.WithLabelValues(factorType, "success").Inc()
			metrics.RowsGeneratedTotal.WithLabelValues(factorType).Add(float64(tbl.Len()))
			st, err := summarize(tbl, f.Name())
			if err != nil {
				return fmt.Errorf("factor '%s': %w", name, err)
			}
			st.FactorName = name
			st.FactorType = factorType
			st.DurationSeconds = e.clock.Since(started).Seconds()

			tables[i] = tbl
			factorStats[i] = st
			e.logger.Debugw("factor.generated", map[string]any{
				"factor": name,
				"type":   st.FactorType,
				"rows":   st.Rows,
			})
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	res := &Result{
		Order:      order,
		Dimensions: dims,
		Factors:    built,
		Tables:     make(map[string]*domain.Table, len(order)),
		Stats:      &domain.RunStats{FactorStats: factorStats},
	}
	for i, name := range order {
		res.Tables[name] = tables[i]
		res.Stats.TotalRows += factorStats[i].Rows
	}
	res.Stats.FactorsGenerated = len(order)
	res.Stats.DurationSeconds = e.clock.Since(runStart).Seconds()
	return res, nil
}

// selectDimensions picks the named dimensions in the listed order; no names
// selects all of them.
func selectDimensions(all domain.DimensionSet, names []string) (domain.DimensionSet, error) {
	if len(names) == 0 {
		return all.Clone(), nil
	}
	out := make(domain.DimensionSet, 0, len(names))
	for _, name := range names {
		d, ok := all.Lookup(name)
		if !ok {
			return nil, fmt.Errorf("unknown dimension: %s", name)
		}
		out = append(out, domain.Dimension{Name: d.Name, Values: append([]string(nil), d.Values...)})
	}
	return out, nil
}

// summarize reports min, max and mean over finite values only; NaN and
// infinities are counted in NonFinite.
func summarize(tbl *domain.Table, column string) (domain.FactorRunStats, error) {
	st := domain.FactorRunStats{Rows: int64(tbl.Len())}
	values, err := tbl.Column(column)
	if err != nil {
		return st, err
	}

	combos := make(map[string]struct{})
	for _, r := range tbl.Rows {
		combos[strings.Join(r.Labels, "\x00")] = struct{}{}
	}
	st.Combinations = int64(len(combos))

	var (
		sum    float64
		finite int
	)
	st.Min, st.Max = math.Inf(1), math.Inf(-1)
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			st.NonFinite++
			continue
		}
		st.Min = math.Min(st.Min, v)
		st.Max = math.Max(st.Max, v)
		sum += v
		finite++
	}
	if finite == 0 {
		st.Min, st.Max = 0, 0
		return st, nil
	}
	st.Mean = sum / float64(finite)
	return st, nil
}
