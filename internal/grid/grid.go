// Package grid enumerates the cartesian product of a dimension set.
package grid

import (
	"fmt"

	"github.com/mmrzaf/tsgen/internal/domain"
)

// Validate rejects empty names, duplicate names and empty value lists.
func Validate(dims domain.DimensionSet) error {
	seen := make(map[string]bool, len(dims))
	for _, d := range dims {
		if d.Name == "" {
			return fmt.Errorf("dimension configuration invalid: empty dimension name: %w", domain.ErrConfiguration)
		}
		if seen[d.Name] {
			return fmt.Errorf("dimension configuration invalid: duplicate dimension %q: %w", d.Name, domain.ErrConfiguration)
		}
		seen[d.Name] = true
		if len(d.Values) == 0 {
			return fmt.Errorf("dimension configuration invalid: dimension %q has no values: %w", d.Name, domain.ErrConfiguration)
		}
	}
	return nil
}

// Size is the number of combinations without materializing them.
func Size(dims domain.DimensionSet) int64 {
	n := int64(1)
	for _, d := range dims {
		n *= int64(len(d.Values))
	}
	return n
}

// Product returns every combination, ordered by the first dimension's values,
// then the second's, and so on. An empty set yields one empty combination.
func Product(dims domain.DimensionSet) ([]domain.Combination, error) {
	if err := Validate(dims); err != nil {
		return nil, err
	}

	total := Size(dims)
	out := make([]domain.Combination, 0, total)
	idx := make([]int, len(dims))
	for {
		combo := make(domain.Combination, len(dims))
		for i, d := range dims {
			combo[i] = d.Values[idx[i]]
		}
		out = append(out, combo)

		// odometer increment, last dimension fastest
		pos := len(dims) - 1
		for pos >= 0 {
			idx[pos]++
			if idx[pos] < len(dims[pos].Values) {
				break
			}
			idx[pos] = 0
			pos--
		}
		if pos < 0 {
			return out, nil
		}
	}
}

// Table returns the product as a label-only table, one column per dimension.
func Table(dims domain.DimensionSet) (*domain.Table, error) {
	combos, err := Product(dims)
	if err != nil {
		return nil, err
	}
	t := domain.NewTable(dims.Names(), nil)
	t.Rows = make([]domain.Row, len(combos))
	for i, c := range combos {
		t.Rows[i] = domain.Row{Labels: c}
	}
	return t, nil
}
