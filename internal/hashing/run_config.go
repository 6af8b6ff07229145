package hashing

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/mmrzaf/tsgen/internal/domain"
)

type runConfigHashPayload struct {
	ScenarioHash string              `json:"scenario_hash"`
	Start        string              `json:"start"`
	End          string              `json:"end"`
	Seed         int64               `json:"seed"`
	Dimensions   map[string][]string `json:"dimensions"`
}

// HashRunConfig identifies a run: two runs with the same hash produce the same
// deterministic factors. dims holds the resolved dimension values, since
// generated labels are only fixed once resolved.
func HashRunConfig(scenario *domain.Scenario, start, end time.Time, seed int64, dims domain.DimensionSet) (string, error) {
	sh, err := HashScenario(scenario)
	if err != nil {
		return "", err
	}

	resolved := make(map[string][]string, len(dims))
	for _, d := range dims {
		resolved[d.Name] = d.Values
	}

	p := runConfigHashPayload{
		ScenarioHash: sh,
		Start:        start.Format(time.DateOnly),
		End:          end.Format(time.DateOnly),
		Seed:         seed,
		Dimensions:   resolved,
	}
	b, err := json.Marshal(p)
	if err != nil {
		return "", err
	}

	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:]), nil
}
