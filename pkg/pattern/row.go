package pattern

// Row is one example: column names mapped to textual values.
type Row struct {
	columns []string
	values  map[string]string
}

// NewRow pairs columns with values positionally. Surplus entries on either
// side are dropped.
func NewRow(columns, values []string) Row {
	n := min(len(columns), len(values))
	r := Row{values: make(map[string]string, n)}
	for i := range n {
		if _, exists := r.values[columns[i]]; !exists {
			r.columns = append(r.columns, columns[i])
		}
		r.values[columns[i]] = values[i]
	}
	return r
}

// RowOf builds a row from a column map, columns in the order given by keys.
// With no keys, columns are taken from the map in unspecified order.
func RowOf(m map[string]string, keys ...string) Row {
	if len(keys) == 0 {
		for k := range m {
			keys = append(keys, k)
		}
	}
	values := make([]string, 0, len(keys))
	cols := make([]string, 0, len(keys))
	for _, k := range keys {
		if v, ok := m[k]; ok {
			cols = append(cols, k)
			values = append(values, v)
		}
	}
	return NewRow(cols, values)
}

// Contains reports whether the row has a column.
func (r Row) Contains(column string) bool {
	_, ok := r.values[column]
	return ok
}

// Get returns a column's value, or "" when absent.
func (r Row) Get(column string) string {
	return r.values[column]
}

// Columns returns the column names in order.
func (r Row) Columns() []string {
	return append([]string(nil), r.columns...)
}

// IsEmpty reports whether the row has no columns.
func (r Row) IsEmpty() bool {
	return len(r.columns) == 0
}
