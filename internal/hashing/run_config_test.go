package hashing

import (
	"testing"
	"time"

	"github.com/mmrzaf/tsgen/internal/domain"
)

func TestHashRunConfig_IncludesWindowSeedAndDimensions(t *testing.T) {
	sc := &domain.Scenario{
		ID:      "s1",
		Name:    "scenario",
		Version: "1.0.0",
		Dimensions: []domain.DimensionSpec{
			{Name: "store", Generate: &domain.LabelSpec{Kind: "faker_word", Count: 2}},
		},
		Factors: []domain.FactorSpec{
			{Name: "level", Type: domain.FactorTypeRandomComposite, Params: map[string]interface{}{"min": 1, "max": 10}},
		},
	}
	start := time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2021, 12, 31, 0, 0, 0, 0, time.UTC)
	dims := domain.DimensionSet{{Name: "store", Values: []string{"alpha", "beta"}}}

	h1, err := HashRunConfig(sc, start, end, 11, dims)
	if err != nil {
		t.Fatal(err)
	}
	h2, err := HashRunConfig(sc, start, end.AddDate(0, 0, -1), 11, dims)
	if err != nil {
		t.Fatal(err)
	}
	h3, err := HashRunConfig(sc, start, end, 12, dims)
	if err != nil {
		t.Fatal(err)
	}
	h4, err := HashRunConfig(sc, start, end, 11, domain.DimensionSet{{Name: "store", Values: []string{"alpha", "gamma"}}})
	if err != nil {
		t.Fatal(err)
	}
	again, err := HashRunConfig(sc, start, end, 11, dims)
	if err != nil {
		t.Fatal(err)
	}

	if h1 == h2 {
		t.Fatal("expected window to affect hash")
	}
	if h1 == h3 {
		t.Fatal("expected seed to affect hash")
	}
	if h1 == h4 {
		t.Fatal("expected resolved dimensions to affect hash")
	}
	if h1 != again {
		t.Fatal("expected stable hash")
	}
}

func TestHashScenario_NumericParamsNormalized(t *testing.T) {
	a := &domain.Scenario{Name: "s", Factors: []domain.FactorSpec{
		{Name: "level", Type: domain.FactorTypeRandomComposite, Params: map[string]interface{}{"max": 10}},
	}}
	b := &domain.Scenario{Name: "s", Factors: []domain.FactorSpec{
		{Name: "level", Type: domain.FactorTypeRandomComposite, Params: map[string]interface{}{"max": 10.0}},
	}}
	ha, err := HashScenario(a)
	if err != nil {
		t.Fatal(err)
	}
	hb, err := HashScenario(b)
	if err != nil {
		t.Fatal(err)
	}
	if ha != hb {
		t.Fatal("expected YAML ints and JSON floats to hash the same")
	}
}
