package domain

import (
	"encoding/json"
	"time"
)

type Scenario struct {
	ID          string          `json:"id" yaml:"id"`
	Name        string          `json:"name" yaml:"name" validate:"required"`
	Version     string          `json:"version" yaml:"version"`
	Description string          `json:"description" yaml:"description"`
	Seed        *int64          `json:"seed,omitempty" yaml:"seed,omitempty"`
	Start       string          `json:"start" yaml:"start" validate:"required"`
	End         string          `json:"end" yaml:"end" validate:"required"`
	Dimensions  []DimensionSpec `json:"dimensions" yaml:"dimensions" validate:"dive"`
	Factors     []FactorSpec    `json:"factors" yaml:"factors" validate:"required,min=1,dive"`
}

// DimensionSpec declares a dimension either by explicit values or by a label generator.
type DimensionSpec struct {
	Name     string     `json:"name" yaml:"name" validate:"required,ident"`
	Values   []string   `json:"values,omitempty" yaml:"values,omitempty"`
	Generate *LabelSpec `json:"generate,omitempty" yaml:"generate,omitempty" validate:"omitempty"`
}

type LabelSpec struct {
	Kind   string `json:"kind" yaml:"kind" validate:"required,oneof=sequence city faker_word faker_name"`
	Count  int    `json:"count" yaml:"count" validate:"min=1"`
	Prefix string `json:"prefix,omitempty" yaml:"prefix,omitempty" validate:"omitempty,max=32"`
}

type FactorSpec struct {
	Name       string                 `json:"name" yaml:"name" validate:"required,ident"`
	Type       string                 `json:"type" yaml:"type" validate:"required"`
	Dimensions []string               `json:"dimensions,omitempty" yaml:"dimensions,omitempty" validate:"dive,ident"`
	Params     map[string]interface{} `json:"params,omitempty" yaml:"params,omitempty"`
}

const (
	FactorTypeRandomComposite    = "random_composite"
	FactorTypeRandomPromotions   = "random_promotions"
	FactorTypeExternalAggregated = "external_aggregated"
	FactorTypeInvert             = "invert"
	FactorTypeScale              = "scale"
)

type Run struct {
	ID              string          `json:"id"`
	ScenarioID      string          `json:"scenario_id"`
	ScenarioName    string          `json:"scenario_name"`
	ScenarioVersion string          `json:"scenario_version"`
	WindowStart     time.Time       `json:"window_start"`
	WindowEnd       time.Time       `json:"window_end"`
	Seed            int64           `json:"seed"`
	ConfigHash      string          `json:"config_hash"`
	Status          RunStatus       `json:"status"`
	StartedAt       time.Time       `json:"started_at"`
	CompletedAt     *time.Time      `json:"completed_at,omitempty"`
	Stats           json.RawMessage `json:"stats,omitempty"`
	Error           string          `json:"error,omitempty"`
}

type RunStatus string

const (
	RunStatusPending RunStatus = "pending"
	RunStatusRunning RunStatus = "running"
	RunStatusSuccess RunStatus = "success"
	RunStatusFailed  RunStatus = "failed"
)

type RunStats struct {
	FactorsGenerated int              `json:"factors_generated"`
	TotalRows        int64            `json:"total_rows"`
	DurationSeconds  float64          `json:"duration_seconds"`
	FactorStats      []FactorRunStats `json:"factor_stats"`
}

type FactorRunStats struct {
	FactorName      string  `json:"factor_name"`
	FactorType      string  `json:"factor_type"`
	Rows            int64   `json:"rows"`
	Combinations    int64   `json:"combinations"`
	Min             float64 `json:"min"`
	Max             float64 `json:"max"`
	Mean            float64 `json:"mean"`
	NonFinite       int64   `json:"non_finite,omitempty"`
	DurationSeconds float64 `json:"duration_seconds"`
}

type RunRequest struct {
	ScenarioID string    `json:"scenario_id,omitempty"`
	Scenario   *Scenario `json:"scenario,omitempty"`
	Seed       *int64    `json:"seed,omitempty"`
	Start      string    `json:"start,omitempty"`
	End        string    `json:"end,omitempty"`
}

// Plan summarises the size of a scenario before anything is generated.
type Plan struct {
	Series          int64    `json:"series"`
	Days            int      `json:"days"`
	Years           float64  `json:"years"`
	TotalDataPoints int64    `json:"total_data_points"`
	Factors         []string `json:"factors"`
	Dimensions      []string `json:"dimensions"`
}
