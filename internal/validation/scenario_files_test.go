package validation

import (
	"testing"

	"github.com/mmrzaf/tsgen/internal/infra/repos/scenarios"
	"github.com/mmrzaf/tsgen/internal/registry"
)

func TestRepositoryScenariosValidate(t *testing.T) {
	repo := scenarios.NewFileRepository("../../scenarios")
	list, err := repo.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(list) == 0 {
		t.Fatal("expected scenario files")
	}

	v := NewValidator(registry.DefaultFactorRegistry())
	for _, sc := range list {
		if err := v.ValidateScenario(sc); err != nil {
			t.Fatalf("scenario %q failed validation: %v", sc.ID, err)
		}
	}
}
