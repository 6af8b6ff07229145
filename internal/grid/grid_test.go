package grid

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmrzaf/tsgen/internal/domain"
)

func TestProduct_OrderAndSize(t *testing.T) {
	dims := domain.DimensionSet{
		{Name: "product", Values: []string{"p1", "p2"}},
		{Name: "store", Values: []string{"s1", "s2", "s3"}},
	}

	combos, err := Product(dims)
	require.NoError(t, err)
	require.Len(t, combos, 6)
	assert.Equal(t, int64(6), Size(dims))

	want := []domain.Combination{
		{"p1", "s1"}, {"p1", "s2"}, {"p1", "s3"},
		{"p2", "s1"}, {"p2", "s2"}, {"p2", "s3"},
	}
	assert.Equal(t, want, combos)
}

func TestProduct_Unique(t *testing.T) {
	dims := domain.DimensionSet{
		{Name: "a", Values: []string{"1", "2", "3"}},
		{Name: "b", Values: []string{"x", "y"}},
		{Name: "c", Values: []string{"m", "n", "o", "p"}},
	}
	combos, err := Product(dims)
	require.NoError(t, err)
	require.Len(t, combos, 24)

	seen := make(map[string]bool)
	for _, c := range combos {
		key := strings.Join(c, "|")
		assert.False(t, seen[key], "duplicate combination %s", key)
		seen[key] = true
	}
}

func TestProduct_EmptySetYieldsSingleCombination(t *testing.T) {
	combos, err := Product(nil)
	require.NoError(t, err)
	require.Len(t, combos, 1)
	assert.Empty(t, combos[0])
}

func TestValidate_Rejections(t *testing.T) {
	tests := []struct {
		name string
		dims domain.DimensionSet
	}{
		{"empty values", domain.DimensionSet{{Name: "a", Values: nil}}},
		{"duplicate name", domain.DimensionSet{{Name: "a", Values: []string{"1"}}, {Name: "a", Values: []string{"2"}}}},
		{"empty name", domain.DimensionSet{{Name: "", Values: []string{"1"}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Product(tt.dims)
			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrConfiguration))
			assert.Contains(t, err.Error(), "dimension configuration invalid")
		})
	}
}

func TestTable_Columns(t *testing.T) {
	dims := domain.DimensionSet{
		{Name: "country", Values: []string{"de", "fr"}},
	}
	tbl, err := Table(dims)
	require.NoError(t, err)
	assert.Equal(t, []string{"country"}, tbl.LabelColumns)
	assert.Empty(t, tbl.ValueColumns)
	require.Equal(t, 2, tbl.Len())
	assert.Equal(t, []string{"fr"}, tbl.Rows[1].Labels)
}
