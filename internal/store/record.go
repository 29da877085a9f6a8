package store

// Record is a schema-agnostic object row: column names paired with the
// values scanned for them.
type Record struct {
	Columns []string
	Values  []any
}

// Get returns the value of the named column.
func (r Record) Get(column string) (any, bool) {
	for i, c := range r.Columns {
		if c == column {
			return r.Values[i], true
		}
	}
	return nil, false
}

// Map returns the record as a column → value map.
func (r Record) Map() map[string]any {
	m := make(map[string]any, len(r.Columns))
	for i, c := range r.Columns {
		m[c] = r.Values[i]
	}
	return m
}

// RecordMaterializer scans every column into a Record. Text returned as
// []byte by the driver is converted to string.
func RecordMaterializer(columns []string) Materializer[Record] {
	cols := append([]string(nil), columns...)
	return func(row RowScanner) (Record, error) {
		values := make([]any, len(cols))
		dest := make([]any, len(cols))
		for i := range values {
			dest[i] = &values[i]
		}
		if err := row.Scan(dest...); err != nil {
			return Record{}, err
		}
		for i, v := range values {
			if b, ok := v.([]byte); ok {
				values[i] = string(b)
			}
		}
		return Record{Columns: cols, Values: values}, nil
	}
}
