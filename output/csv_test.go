package output

import (
	"bytes"
	"encoding/csv"
	"testing"
)

func TestCSVFormatter_Format(t *testing.T) {
	tests := []struct {
		name      string
		columns   []string
		rows      [][]interface{}
		wantLines int
	}{
		{
			name:      "header only",
			columns:   []string{"id", "name"},
			rows:      nil,
			wantLines: 1,
		},
		{
			name:      "single row",
			columns:   []string{"id", "name"},
			rows:      [][]interface{}{{int64(1), "alice"}},
			wantLines: 2,
		},
		{
			name:    "multiple rows",
			columns: []string{"id", "name"},
			rows: [][]interface{}{
				{int64(1), "alice"},
				{int64(2), "bob"},
			},
			wantLines: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := NewCSVFormatter(&buf).Format(tt.columns, tt.rows); err != nil {
				t.Fatalf("Format() error = %v", err)
			}

			records, err := csv.NewReader(&buf).ReadAll()
			if err != nil {
				t.Fatalf("Format() produced invalid CSV: %v", err)
			}
			if len(records) != tt.wantLines {
				t.Errorf("Format() wrote %d lines, want %d", len(records), tt.wantLines)
			}
			for i, col := range tt.columns {
				if records[0][i] != col {
					t.Errorf("header[%d] = %q, want %q", i, records[0][i], col)
				}
			}
		})
	}
}

func TestCSVFormatter_ColumnOrderIsPreserved(t *testing.T) {
	var buf bytes.Buffer
	columns := []string{"zeta", "alpha", "mid"}
	if err := NewCSVFormatter(&buf).Format(columns, [][]interface{}{{"z", "a", "m"}}); err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	want := "zeta,alpha,mid\nz,a,m\n"
	if buf.String() != want {
		t.Errorf("Format() = %q, want %q", buf.String(), want)
	}
}

func TestFormatValue(t *testing.T) {
	tests := []struct {
		name string
		in   interface{}
		want string
	}{
		{"nil", nil, ""},
		{"string", "alice", "alice"},
		{"int64", int64(42), "42"},
		{"negative int stays numeric", int64(-5), "-5"},
		{"float", 3.14, "3.14"},
		{"bool", true, "true"},
		{"formula injection", "=SUM(A1)", "'=SUM(A1)"},
		{"leading minus string", "-rf", "'-rf"},
		{"quote escaping", "@it's", "'@it''s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatValue(tt.in); got != tt.want {
				t.Errorf("formatValue(%v) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
