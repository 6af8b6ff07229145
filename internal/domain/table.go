package domain

import (
	"fmt"
	"time"
)

const DefaultDateColumn = "date"

// Dimension is a named categorical axis and its ordered values.
type Dimension struct {
	Name   string   `json:"name" yaml:"name"`
	Values []string `json:"values" yaml:"values"`
}

// DimensionSet keeps declaration order; combinations are enumerated in it.
type DimensionSet []Dimension

func (s DimensionSet) Names() []string {
	names := make([]string, len(s))
	for i, d := range s {
		names[i] = d.Name
	}
	return names
}

// Lookup returns the dimension with the given name.
func (s DimensionSet) Lookup(name string) (Dimension, bool) {
	for _, d := range s {
		if d.Name == name {
			return d, true
		}
	}
	return Dimension{}, false
}

func (s DimensionSet) Clone() DimensionSet {
	if s == nil {
		return nil
	}
	out := make(DimensionSet, len(s))
	for i, d := range s {
		out[i] = Dimension{Name: d.Name, Values: append([]string(nil), d.Values...)}
	}
	return out
}

// Combination assigns one value to every dimension of a set, in set order.
type Combination []string

// Table is the flat output of a factor: one row per (day, combination).
type Table struct {
	DateColumn   string   `json:"date_column"`
	LabelColumns []string `json:"label_columns"`
	ValueColumns []string `json:"value_columns"`
	Rows         []Row    `json:"rows"`
}

type Row struct {
	Date   time.Time `json:"date"`
	Labels []string  `json:"labels"`
	Values []float64 `json:"values"`
}

func NewTable(labelColumns, valueColumns []string) *Table {
	return &Table{
		DateColumn:   DefaultDateColumn,
		LabelColumns: append([]string(nil), labelColumns...),
		ValueColumns: append([]string(nil), valueColumns...),
	}
}

func (t *Table) Len() int { return len(t.Rows) }

// Columns returns the full header: date, labels, values.
func (t *Table) Columns() []string {
	cols := make([]string, 0, 1+len(t.LabelColumns)+len(t.ValueColumns))
	cols = append(cols, t.DateColumn)
	cols = append(cols, t.LabelColumns...)
	cols = append(cols, t.ValueColumns...)
	return cols
}

func (t *Table) ValueIndex(col string) (int, error) {
	for i, c := range t.ValueColumns {
		if c == col {
			return i, nil
		}
	}
	return -1, fmt.Errorf("value column not found: %s", col)
}

// Column returns every value of a value column in row order.
func (t *Table) Column(col string) ([]float64, error) {
	idx, err := t.ValueIndex(col)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(t.Rows))
	for i, r := range t.Rows {
		out[i] = r.Values[idx]
	}
	return out, nil
}

func (t *Table) Clone() *Table {
	out := NewTable(t.LabelColumns, t.ValueColumns)
	out.DateColumn = t.DateColumn
	out.Rows = make([]Row, len(t.Rows))
	for i, r := range t.Rows {
		out.Rows[i] = Row{
			Date:   r.Date,
			Labels: append([]string(nil), r.Labels...),
			Values: append([]float64(nil), r.Values...),
		}
	}
	return out
}
