package app

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmrzaf/tsgen/internal/domain"
	"github.com/mmrzaf/tsgen/internal/infra/repos/runs"
	"github.com/mmrzaf/tsgen/internal/infra/repos/scenarios"
	"github.com/mmrzaf/tsgen/internal/logging"
	"github.com/mmrzaf/tsgen/internal/registry"
	"github.com/mmrzaf/tsgen/internal/sources"
)

const scenarioYAML = `id: shop
name: Shop
version: "2"
seed: 99
start: 2022-01-01
end: 2022-03-31
dimensions:
  - name: product
    values: [p1, p2, p3]
  - name: store
    generate: {kind: sequence, count: 2, prefix: store}
factors:
  - name: level
    type: random_composite
    dimensions: [store]
  - name: promos
    type: random_promotions
    params: {gap_rate: 10, duration_rate: 3, impact_rate: 0.4}
  - name: discount
    type: invert
    params: {factor: promos}
`

type fixture struct {
	dir   string
	svc   *RunService
	runs  *runs.SQLiteRepository
	clock *clockwork.FakeClock
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()
	scDir := filepath.Join(dir, "scenarios")
	require.NoError(t, os.MkdirAll(scDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(scDir, "shop.yaml"), []byte(scenarioYAML), 0o644))

	runRepo := runs.NewSQLiteRepository(filepath.Join(dir, "runs.db"))
	require.NoError(t, runRepo.Init())
	t.Cleanup(func() { _ = runRepo.Close() })

	clock := clockwork.NewFakeClockAt(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))
	svc := NewRunService(
		scenarios.NewFileRepository(scDir),
		runRepo,
		registry.DefaultFactorRegistry(),
		sources.NewDirLoader(filepath.Join(dir, "sources")),
		clock,
		2,
		logging.NewLoggerWithWriter("error", io.Discard),
	)
	return &fixture{dir: dir, svc: svc, runs: runRepo, clock: clock}
}

func TestStartRun_RecordsSuccess(t *testing.T) {
	fx := newFixture(t)

	run, res, err := fx.svc.StartRun(context.Background(), &domain.RunRequest{ScenarioID: "shop"})
	require.NoError(t, err)
	require.NotNil(t, res)

	assert.Equal(t, int64(99), run.Seed)
	assert.Equal(t, domain.RunStatusSuccess, run.Status)
	assert.Len(t, run.ConfigHash, 64)

	stored, err := fx.svc.GetRun(run.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RunStatusSuccess, stored.Status)
	assert.Equal(t, "Shop", stored.ScenarioName)
	assert.Equal(t, "2", stored.ScenarioVersion)
	assert.True(t, time.Date(2022, 3, 31, 0, 0, 0, 0, time.UTC).Equal(stored.WindowEnd))
	require.NotNil(t, stored.CompletedAt)

	var stats domain.RunStats
	require.NoError(t, json.Unmarshal(stored.Stats, &stats))
	assert.Equal(t, 3, stats.FactorsGenerated)
	assert.Equal(t, int64(90*2+90*6*2), stats.TotalRows)

	list, err := fx.svc.ListRuns(10, "")
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestStartRun_SameSeedSameHashAndOutput(t *testing.T) {
	fx := newFixture(t)
	seed := int64(5)
	req := &domain.RunRequest{ScenarioID: "shop", Seed: &seed, Start: "2022-02-01", End: "2022-02-28"}

	r1, a, err := fx.svc.StartRun(context.Background(), req)
	require.NoError(t, err)
	r2, b, err := fx.svc.StartRun(context.Background(), req)
	require.NoError(t, err)

	assert.NotEqual(t, r1.ID, r2.ID)
	assert.Equal(t, r1.ConfigHash, r2.ConfigHash)
	assert.Equal(t, a.Tables["promos"], b.Tables["promos"])
	assert.Equal(t, a.Tables["level"], b.Tables["level"])
	assert.Equal(t, 28*6, a.Tables["promos"].Len())
}

func TestStartRun_ClockSeed(t *testing.T) {
	fx := newFixture(t)
	sc := &domain.Scenario{
		ID:    "inline",
		Name:  "Inline",
		Start: "-7d",
		End:   "today",
		Factors: []domain.FactorSpec{
			{Name: "promos", Type: domain.FactorTypeRandomPromotions},
		},
	}
	run, res, err := fx.svc.StartRun(context.Background(), &domain.RunRequest{Scenario: sc})
	require.NoError(t, err)
	assert.Equal(t, fx.clock.Now().UnixMicro(), run.Seed)
	assert.True(t, time.Date(2024, 5, 25, 0, 0, 0, 0, time.UTC).Equal(run.WindowStart))
	assert.Equal(t, 8, res.Tables["promos"].Len())
}

func TestStartRun_RecordsFailure(t *testing.T) {
	fx := newFixture(t)
	sc := &domain.Scenario{
		Name:  "Broken source",
		Start: "2022-01-01",
		End:   "2022-01-31",
		Factors: []domain.FactorSpec{
			{Name: "weather", Type: domain.FactorTypeExternalAggregated, Params: map[string]interface{}{"source": "missing.csv"}},
		},
	}
	run, _, err := fx.svc.StartRun(context.Background(), &domain.RunRequest{Scenario: sc})
	require.Error(t, err)
	require.NotNil(t, run)

	stored, err := fx.svc.GetRun(run.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RunStatusFailed, stored.Status)
	assert.Contains(t, stored.Error, "missing.csv")
}

func TestStartRun_InvertOverZeroSourceValue(t *testing.T) {
	fx := newFixture(t)
	srcDir := filepath.Join(fx.dir, "sources")
	require.NoError(t, os.MkdirAll(srcDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(srcDir, "temp.csv"), []byte("month,temp\n2020-01,0.0\n2020-02,2.0\n"), 0o644))

	sc := &domain.Scenario{
		Name:  "Zero source",
		Start: "2020-01-01",
		End:   "2020-02-29",
		Factors: []domain.FactorSpec{
			{Name: "temp", Type: domain.FactorTypeExternalAggregated, Params: map[string]interface{}{
				"source": "temp.csv", "date_field": "month", "freq": "M", "index": []interface{}{"month"}, "column": "temp",
			}},
			{Name: "inv_temp", Type: domain.FactorTypeInvert, Params: map[string]interface{}{"factor": "temp"}},
		},
	}
	run, _, err := fx.svc.StartRun(context.Background(), &domain.RunRequest{Scenario: sc})
	require.NoError(t, err)

	stored, err := fx.svc.GetRun(run.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RunStatusSuccess, stored.Status)
	require.NotNil(t, stored.CompletedAt)

	var stats domain.RunStats
	require.NoError(t, json.Unmarshal(stored.Stats, &stats))
	require.Len(t, stats.FactorStats, 2)
	inv := stats.FactorStats[1]
	assert.Equal(t, "inv_temp", inv.FactorName)
	assert.Equal(t, int64(60), inv.Rows)
	assert.Equal(t, int64(31), inv.NonFinite)
	assert.Equal(t, 0.5, inv.Min)
	assert.Equal(t, 0.5, inv.Max)
	assert.Equal(t, 0.5, inv.Mean)
}

func TestStartRun_RejectsInvalidRequest(t *testing.T) {
	fx := newFixture(t)
	_, _, err := fx.svc.StartRun(context.Background(), &domain.RunRequest{})
	assert.Error(t, err)
	_, _, err = fx.svc.StartRun(context.Background(), &domain.RunRequest{ScenarioID: "nope"})
	assert.Error(t, err)

	list, err := fx.svc.ListRuns(10, "")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestPlan(t *testing.T) {
	fx := newFixture(t)
	plan, err := fx.svc.Plan(&domain.RunRequest{ScenarioID: "shop"})
	require.NoError(t, err)

	assert.Equal(t, int64(6), plan.Series)
	assert.Equal(t, 90, plan.Days)
	assert.InDelta(t, 90/365.25, plan.Years, 1e-12)
	assert.Equal(t, int64(540), plan.TotalDataPoints)
	assert.Equal(t, []string{"level", "promos", "discount"}, plan.Factors)
	assert.Equal(t, []string{"product", "store"}, plan.Dimensions)
}

func TestPreviewFactor(t *testing.T) {
	fx := newFixture(t)
	tbl, err := fx.svc.PreviewFactor(&domain.RunRequest{ScenarioID: "shop", End: "2022-01-10"}, "discount")
	require.NoError(t, err)
	assert.Equal(t, 60, tbl.Len())
	assert.Equal(t, []string{"product", "store"}, tbl.LabelColumns)

	_, err = fx.svc.PreviewFactor(&domain.RunRequest{ScenarioID: "shop"}, "nope")
	assert.Error(t, err)

	list, err := fx.svc.ListRuns(10, "")
	require.NoError(t, err)
	assert.Empty(t, list)
}
