package validation

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmrzaf/tsgen/internal/domain"
	"github.com/mmrzaf/tsgen/internal/registry"
)

func validScenario() *domain.Scenario {
	return &domain.Scenario{
		ID:    "demo",
		Name:  "Demo",
		Start: "2021-01-01",
		End:   "2021-03-31",
		Dimensions: []domain.DimensionSpec{
			{Name: "product", Values: []string{"p1", "p2"}},
			{Name: "store", Generate: &domain.LabelSpec{Kind: "sequence", Count: 2, Prefix: "s"}},
		},
		Factors: []domain.FactorSpec{
			{Name: "muted", Type: domain.FactorTypeScale, Params: map[string]interface{}{"factor": "promos", "scale": 0.5, "base": 1}},
			{Name: "level", Type: domain.FactorTypeRandomComposite, Dimensions: []string{"store"}},
			{Name: "promos", Type: domain.FactorTypeRandomPromotions},
			{Name: "discount", Type: domain.FactorTypeInvert, Params: map[string]interface{}{"factor": "muted"}},
		},
	}
}

func TestIsValidIdentifier(t *testing.T) {
	ok := []string{"a", "A", "_a", "a1", "a_b2", "snake_case_123"}
	bad := []string{"", "1a", "a-b", "a b", "a;b", "a\"b", "a.b", "a/b", "select", "from", "date", "table"}

	for _, s := range ok {
		assert.True(t, IsValidIdentifier(s), s)
	}
	for _, s := range bad {
		assert.False(t, IsValidIdentifier(s), s)
	}
}

func TestValidateScenario_Valid(t *testing.T) {
	v := NewValidator(registry.DefaultFactorRegistry())
	require.NoError(t, v.ValidateScenario(validScenario()))
}

func TestValidateScenario_Rejects(t *testing.T) {
	v := NewValidator(registry.DefaultFactorRegistry())

	tests := []struct {
		name   string
		mutate func(s *domain.Scenario)
	}{
		{"missing name", func(s *domain.Scenario) { s.Name = "" }},
		{"no factors", func(s *domain.Scenario) { s.Factors = nil }},
		{"bad identifier", func(s *domain.Scenario) { s.Factors[1].Name = "bad-name" }},
		{"duplicate factor", func(s *domain.Scenario) { s.Factors[1].Name = "promos" }},
		{"unknown type", func(s *domain.Scenario) { s.Factors[1].Type = "seasonality" }},
		{"bad params", func(s *domain.Scenario) { s.Factors[1].Params = map[string]interface{}{"min": 5, "max": 1} }},
		{"unknown dimension", func(s *domain.Scenario) { s.Factors[1].Dimensions = []string{"region"} }},
		{"missing reference", func(s *domain.Scenario) { s.Factors[0].Params["factor"] = "nope" }},
		{"cycle", func(s *domain.Scenario) { s.Factors[0].Params["factor"] = "discount" }},
		{"duplicate dimension", func(s *domain.Scenario) { s.Dimensions[1].Name = "product" }},
		{"values and generate", func(s *domain.Scenario) { s.Dimensions[0].Generate = &domain.LabelSpec{Kind: "sequence", Count: 1} }},
		{"duplicate value", func(s *domain.Scenario) { s.Dimensions[0].Values = []string{"p1", "p1"} }},
		{"bad label kind", func(s *domain.Scenario) { s.Dimensions[1].Generate.Kind = "planet" }},
		{"inverted window", func(s *domain.Scenario) { s.Start, s.End = "2021-05-01", "2021-01-01" }},
		{"bad start", func(s *domain.Scenario) { s.Start = "soon" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := validScenario()
			tt.mutate(s)
			assert.Error(t, v.ValidateScenario(s))
		})
	}
}

func TestTopologicalSort(t *testing.T) {
	order, err := TopologicalSort(validScenario())
	require.NoError(t, err)
	assert.Equal(t, []string{"level", "promos", "muted", "discount"}, order)

	s := validScenario()
	s.Factors[0].Params["factor"] = "discount"
	_, err = TopologicalSort(s)
	assert.Error(t, err)
}

func TestValidateRunRequest(t *testing.T) {
	v := NewValidator(registry.DefaultFactorRegistry())

	assert.Error(t, v.ValidateRunRequest(&domain.RunRequest{}))
	assert.Error(t, v.ValidateRunRequest(&domain.RunRequest{ScenarioID: "demo", Scenario: validScenario()}))
	assert.NoError(t, v.ValidateRunRequest(&domain.RunRequest{ScenarioID: "demo", Start: "-30d", End: "today"}))
	assert.Error(t, v.ValidateRunRequest(&domain.RunRequest{ScenarioID: "demo", Start: "2021-02-01", End: "2021-01-01"}))
	assert.Error(t, v.ValidateRunRequest(&domain.RunRequest{ScenarioID: "demo", End: "whenever"}))

	bad := validScenario()
	bad.Factors = nil
	assert.Error(t, v.ValidateRunRequest(&domain.RunRequest{Scenario: bad}))
	assert.NoError(t, v.ValidateRunRequest(&domain.RunRequest{Scenario: validScenario()}))
}

func TestValidateRunRequest_RelativeDatesUseClock(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2021, 2, 15, 9, 0, 0, 0, time.UTC))
	v := NewValidatorWithClock(registry.DefaultFactorRegistry(), clock)

	assert.NoError(t, v.ValidateRunRequest(&domain.RunRequest{ScenarioID: "demo", Start: "today", End: "2021-03-01"}))
	assert.Error(t, v.ValidateRunRequest(&domain.RunRequest{ScenarioID: "demo", Start: "2021-02-10", End: "-10d"}))

	sc := validScenario()
	sc.Start, sc.End = "-30d", "today"
	assert.NoError(t, v.ValidateScenario(sc))
	sc.End = "2021-01-01"
	assert.Error(t, v.ValidateScenario(sc))
}
