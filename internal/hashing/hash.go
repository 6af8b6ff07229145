package hashing

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"

	"github.com/mmrzaf/tsgen/internal/domain"
)

// HashScenario hashes the parts of a scenario that affect generated output.
// The window strings and seed are excluded; HashRunConfig covers the resolved ones.
func HashScenario(scenario *domain.Scenario) (string, error) {
	canonical := canonicalizeScenario(scenario)
	data, err := json.Marshal(canonical)
	if err != nil {
		return "", err
	}

	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:]), nil
}

func canonicalizeScenario(scenario *domain.Scenario) map[string]interface{} {
	dims := make([]map[string]interface{}, len(scenario.Dimensions))
	for i, d := range scenario.Dimensions {
		m := map[string]interface{}{"name": d.Name}
		if len(d.Values) > 0 {
			m["values"] = d.Values
		}
		if d.Generate != nil {
			m["generate"] = map[string]interface{}{
				"kind":   d.Generate.Kind,
				"count":  d.Generate.Count,
				"prefix": d.Generate.Prefix,
			}
		}
		dims[i] = m
	}

	factors := make([]map[string]interface{}, len(scenario.Factors))
	for i, f := range scenario.Factors {
		m := map[string]interface{}{
			"name": f.Name,
			"type": f.Type,
		}
		if len(f.Dimensions) > 0 {
			m["dimensions"] = f.Dimensions
		}
		if len(f.Params) > 0 {
			m["params"] = canonicalizeParams(f.Params)
		}
		factors[i] = m
	}

	result := map[string]interface{}{
		"name":       scenario.Name,
		"dimensions": dims,
		"factors":    factors,
	}
	if scenario.ID != "" {
		result["id"] = scenario.ID
	}
	if scenario.Version != "" {
		result["version"] = scenario.Version
	}

	return result
}

func canonicalizeParams(params map[string]interface{}) map[string]interface{} {
	result := make(map[string]interface{})
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		v := params[k]
		switch val := v.(type) {
		case map[string]interface{}:
			result[k] = canonicalizeParams(val)
		case int:
			result[k] = float64(val)
		case int64:
			result[k] = float64(val)
		default:
			result[k] = val
		}
	}
	return result
}
