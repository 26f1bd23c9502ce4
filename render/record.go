package render

import "github.com/vegasq/pqview/output"

// Record is one rendered row. Keys are the result titles in title order.
type Record struct {
	columns []string
	values  []interface{}
}

// NewRecord pairs columns with values. Both slices are retained.
func NewRecord(columns []string, values []interface{}) Record {
	return Record{columns: columns, values: values}
}

// Get returns the value stored under key
func (r Record) Get(key string) (interface{}, bool) {
	for i, c := range r.columns {
		if c == key {
			return r.values[i], true
		}
	}
	return nil, false
}

// Columns returns the record keys in order
func (r Record) Columns() []string { return r.columns }

// Values returns the record values aligned with Columns
func (r Record) Values() []interface{} { return r.values }

// Len returns the number of keys
func (r Record) Len() int { return len(r.columns) }

// MarshalJSON encodes the record as an object with keys in title order
func (r Record) MarshalJSON() ([]byte, error) {
	return output.MarshalObject(r.columns, r.values)
}
