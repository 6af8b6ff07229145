package app

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/mmrzaf/tsgen/internal/builders"
	"github.com/mmrzaf/tsgen/internal/domain"
	"github.com/mmrzaf/tsgen/internal/exec"
	"github.com/mmrzaf/tsgen/internal/grid"
	"github.com/mmrzaf/tsgen/internal/hashing"
	"github.com/mmrzaf/tsgen/internal/infra/repos/runs"
	"github.com/mmrzaf/tsgen/internal/infra/repos/scenarios"
	"github.com/mmrzaf/tsgen/internal/logging"
	"github.com/mmrzaf/tsgen/internal/metrics"
	"github.com/mmrzaf/tsgen/internal/registry"
	"github.com/mmrzaf/tsgen/internal/timeutil"
	"github.com/mmrzaf/tsgen/internal/validation"
)

const daysPerYear = 365.25

type RunService struct {
	scenarioRepo scenarios.Repository
	runRepo      runs.Repository
	validator    *validation.Validator
	executor     *exec.Executor
	clock        clockwork.Clock
	logger       *logging.Logger
}

func NewRunService(
	scenarioRepo scenarios.Repository,
	runRepo runs.Repository,
	factorRegistry *registry.FactorRegistry,
	sources builders.SourceLoader,
	clock clockwork.Clock,
	maxParallel int,
	logger *logging.Logger,
) *RunService {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if logger == nil {
		logger = logging.NewLogger("info")
	}
	return &RunService{
		scenarioRepo: scenarioRepo,
		runRepo:      runRepo,
		validator:    validation.NewValidatorWithClock(factorRegistry, clock),
		executor:     exec.NewExecutor(factorRegistry, sources, clock, maxParallel, logger),
		clock:        clock,
		logger:       logger.WithComponent("run_service"),
	}
}

// resolvedRun is a request with its scenario loaded and every default applied.
type resolvedRun struct {
	scenario   *domain.Scenario
	seed       int64
	start, end time.Time
	dims       domain.DimensionSet
}

func (s *RunService) resolve(req *domain.RunRequest) (*resolvedRun, error) {
	if err := s.validator.ValidateRunRequest(req); err != nil {
		return nil, fmt.Errorf("invalid run request: %w", err)
	}

	scenario := req.Scenario
	if req.ScenarioID != "" {
		var err error
		scenario, err = s.scenarioRepo.Get(req.ScenarioID)
		if err != nil {
			return nil, fmt.Errorf("failed to load scenario: %w", err)
		}
		if err := s.validator.ValidateScenario(scenario); err != nil {
			return nil, fmt.Errorf("scenario validation failed: %w", err)
		}
	}

	var seed int64
	switch {
	case req.Seed != nil:
		seed = *req.Seed
	case scenario.Seed != nil:
		seed = *scenario.Seed
	default:
		seed = s.clock.Now().UnixMicro()
	}

	now := s.clock.Now()
	startStr, endStr := scenario.Start, scenario.End
	if req.Start != "" {
		startStr = req.Start
	}
	if req.End != "" {
		endStr = req.End
	}
	start, err := timeutil.ParseDate(startStr, now)
	if err != nil {
		return nil, fmt.Errorf("invalid start: %w", err)
	}
	end, err := timeutil.ParseDate(endStr, now)
	if err != nil {
		return nil, fmt.Errorf("invalid end: %w", err)
	}
	if start.After(end) {
		return nil, fmt.Errorf("start %s is after end %s: %w", start.Format(time.DateOnly), end.Format(time.DateOnly), domain.ErrRange)
	}

	dims, err := exec.ResolveDimensions(scenario, seed)
	if err != nil {
		return nil, err
	}

	return &resolvedRun{scenario: scenario, seed: seed, start: start, end: end, dims: dims}, nil
}

// StartRun records a run in the ledger and generates every factor before
// returning. The run is returned even when generation fails.
func (s *RunService) StartRun(ctx context.Context, req *domain.RunRequest) (*domain.Run, *exec.Result, error) {
	rr, err := s.resolve(req)
	if err != nil {
		return nil, nil, err
	}

	configHash, err := hashing.HashRunConfig(rr.scenario, rr.start, rr.end, rr.seed, rr.dims)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to hash run config: %w", err)
	}

	run := &domain.Run{
		ScenarioID:      rr.scenario.ID,
		ScenarioName:    rr.scenario.Name,
		ScenarioVersion: rr.scenario.Version,
		WindowStart:     rr.start,
		WindowEnd:       rr.end,
		Seed:            rr.seed,
		ConfigHash:      configHash,
		Status:          domain.RunStatusRunning,
		StartedAt:       s.clock.Now().UTC(),
	}

	if err := s.runRepo.Create(run); err != nil {
		return nil, nil, fmt.Errorf("failed to create run: %w", err)
	}

	s.logger.Infow("run.started", map[string]any{
		"run_id":   run.ID,
		"scenario": rr.scenario.Name,
		"seed":     rr.seed,
		"start":    rr.start.Format(time.DateOnly),
		"end":      rr.end.Format(time.DateOnly),
	})

	res, err := s.executor.Execute(ctx, rr.scenario, rr.dims, rr.start, rr.end, rr.seed)
	if err != nil {
		s.failRun(run, err)
		return run, nil, err
	}

	now := s.clock.Now().UTC()
	res.Stats.DurationSeconds = now.Sub(run.StartedAt).Seconds()

	statsJSON, err := json.Marshal(res.Stats)
	if err != nil {
		err = fmt.Errorf("failed to encode run stats: %w", err)
		s.failRun(run, err)
		return run, nil, err
	}
	run.Stats = statsJSON
	run.Status = domain.RunStatusSuccess
	run.CompletedAt = &now

	if err := s.runRepo.Update(run); err != nil {
		s.logger.Error("Failed to update run %s: %v", run.ID, err)
	}
	metrics.RunsTotal.WithLabelValues(string(domain.RunStatusSuccess)).Inc()

	s.logger.Infow("run.completed", map[string]any{
		"run_id":     run.ID,
		"factors":    res.Stats.FactorsGenerated,
		"total_rows": res.Stats.TotalRows,
		"duration_s": res.Stats.DurationSeconds,
	})
	return run, res, nil
}

func (s *RunService) failRun(run *domain.Run, err error) {
	s.logger.Errorw("run.failed", map[string]any{"run_id": run.ID, "error": err.Error()})
	s.updateRunFailed(run, err.Error())
	metrics.RunsTotal.WithLabelValues(string(domain.RunStatusFailed)).Inc()
}

func (s *RunService) updateRunFailed(run *domain.Run, errorMsg string) {
	now := s.clock.Now().UTC()
	run.Status = domain.RunStatusFailed
	run.Error = errorMsg
	run.CompletedAt = &now
	if err := s.runRepo.Update(run); err != nil {
		s.logger.Error("Failed to update run %s: %v", run.ID, err)
	}
}

// PreviewFactor generates a single factor of the requested scenario without
// recording a run. Factors it transforms are built but not generated.
func (s *RunService) PreviewFactor(req *domain.RunRequest, name string) (*domain.Table, error) {
	rr, err := s.resolve(req)
	if err != nil {
		return nil, err
	}
	_, built, err := s.executor.Build(rr.scenario, rr.dims, rr.seed)
	if err != nil {
		return nil, err
	}
	f, ok := built[name]
	if !ok {
		return nil, fmt.Errorf("factor not found: %s", name)
	}
	return f.Generate(rr.start, rr.end)
}

// Plan reports how much data a run of the request would generate. Days counts
// the window inclusively, the same days Generate emits, so TotalDataPoints is
// Series*Days. Years divides Days by 365.25.
func (s *RunService) Plan(req *domain.RunRequest) (*domain.Plan, error) {
	rr, err := s.resolve(req)
	if err != nil {
		return nil, err
	}

	series := grid.Size(rr.dims)
	days := domain.DaysBetween(rr.start, rr.end) + 1

	factorNames := make([]string, 0, len(rr.scenario.Factors))
	for _, f := range rr.scenario.Factors {
		factorNames = append(factorNames, f.Name)
	}

	return &domain.Plan{
		Series:          series,
		Days:            days,
		Years:           float64(days) / daysPerYear,
		TotalDataPoints: series * int64(days),
		Factors:         factorNames,
		Dimensions:      rr.dims.Names(),
	}, nil
}

func (s *RunService) GetRun(id string) (*domain.Run, error) {
	return s.runRepo.Get(id)
}

func (s *RunService) ListRuns(limit int, status string) ([]*domain.Run, error) {
	return s.runRepo.List(limit, status)
}
