package metrics

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteTextfile(t *testing.T) {
	RunsTotal.WithLabelValues("success").Inc()
	RowsGeneratedTotal.WithLabelValues("scale").Add(30)
	FactorGenerationDuration.WithLabelValues("scale").Observe(0.01)

	path := filepath.Join(t.TempDir(), "tsgen.prom")
	require.NoError(t, WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)
	assert.Contains(t, out, `tsgen_runs_total{status="success"}`)
	assert.Contains(t, out, `tsgen_rows_generated_total{factor_type="scale"}`)
	assert.Contains(t, out, `tsgen_factor_generation_duration_seconds_count{factor_type="scale"}`)
}
