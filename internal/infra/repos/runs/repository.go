package runs

import (
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/mmrzaf/tsgen/internal/domain"
)

// ErrNotFound is returned by Get when no run has the requested id.
var ErrNotFound = errors.New("run not found")

// Repository stores run metadata for the tsgen ledger. Generated tables are
// never persisted here.
type Repository interface {
	Init() error
	Create(run *domain.Run) error
	Update(run *domain.Run) error
	Get(id string) (*domain.Run, error)
	List(limit int, status string) ([]*domain.Run, error)
	Close() error
}

const runColumns = `id, scenario_id, scenario_name, scenario_version,
	window_start, window_end, seed, config_hash, status,
	started_at, completed_at, stats, error`

func statsValue(raw json.RawMessage) interface{} {
	if len(raw) == 0 {
		return nil
	}
	return string(raw)
}

func applyNullable(run *domain.Run, stats, errStr sql.NullString) {
	if stats.Valid && stats.String != "" {
		run.Stats = json.RawMessage(stats.String)
	}
	if errStr.Valid {
		run.Error = errStr.String
	}
}
