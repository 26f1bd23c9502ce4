package output

import (
	"bytes"
	"encoding/json"
	"math"
	"strings"
	"testing"
)

func TestJSONFormatter_Format(t *testing.T) {
	columns := []string{"name", "age", "active"}

	tests := []struct {
		name string
		rows [][]interface{}
		want string
	}{
		{
			name: "empty rows",
			rows: nil,
			want: "[]",
		},
		{
			name: "single row",
			rows: [][]interface{}{{"alice", int64(30), true}},
			want: `[{"name":"alice","age":30,"active":true}]`,
		},
		{
			name: "nil values",
			rows: [][]interface{}{{"bob", nil, false}},
			want: `[{"name":"bob","age":null,"active":false}]`,
		},
		{
			name: "multiple rows keep order",
			rows: [][]interface{}{
				{"alice", int64(30), true},
				{"bob", int64(25), false},
			},
			want: `[{"name":"alice","age":30,"active":true},{"name":"bob","age":25,"active":false}]`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := NewJSONFormatter(&buf).Format(columns, tt.rows); err != nil {
				t.Fatalf("Format() error = %v", err)
			}
			if got := buf.String(); got != tt.want {
				t.Errorf("Format() = %s, want %s", got, tt.want)
			}
			var decoded []map[string]interface{}
			if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
				t.Errorf("Format() produced invalid JSON: %v", err)
			}
		})
	}
}

func TestJSONFormatter_RowWidthMismatch(t *testing.T) {
	var buf bytes.Buffer
	err := NewJSONFormatter(&buf).Format([]string{"a", "b"}, [][]interface{}{{"only"}})
	if err == nil {
		t.Fatal("Format() expected error for short row")
	}
}

func TestJSONLinesFormatter_Format(t *testing.T) {
	var buf bytes.Buffer
	rows := [][]interface{}{
		{int64(1), "alice"},
		{int64(2), "bob"},
	}
	if err := NewJSONLinesFormatter(&buf).Format([]string{"id", "name"}, rows); err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("Format() wrote %d lines, want 2", len(lines))
	}
	if lines[0] != `{"id":1,"name":"alice"}` {
		t.Errorf("line 0 = %s", lines[0])
	}
	if lines[1] != `{"id":2,"name":"bob"}` {
		t.Errorf("line 1 = %s", lines[1])
	}
}

func TestJSONFormatter_SetOutput(t *testing.T) {
	var first, second bytes.Buffer
	formatter := NewJSONFormatter(&first)
	formatter.SetOutput(&second)

	if err := formatter.Format([]string{"id"}, [][]interface{}{{int64(1)}}); err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	if first.Len() != 0 {
		t.Errorf("original writer received output after SetOutput")
	}
	if second.String() != `[{"id":1}]` {
		t.Errorf("new writer got %q", second.String())
	}
}

func TestMarshalObject_NestedLists(t *testing.T) {
	got, err := MarshalObject([]string{"tags", "scores"}, []interface{}{[]string{"a", "b"}, []int64{1, 2}})
	if err != nil {
		t.Fatalf("MarshalObject() error = %v", err)
	}
	if string(got) != `{"tags":["a","b"],"scores":[1,2]}` {
		t.Errorf("MarshalObject() = %s", got)
	}
}

func TestMarshalObject_NonFiniteFloats(t *testing.T) {
	got, err := MarshalObject(
		[]string{"nan", "inf", "ok", "list"},
		[]interface{}{math.NaN(), float32(math.Inf(-1)), 1.5, []float64{0.5, math.Inf(1)}},
	)
	if err != nil {
		t.Fatalf("MarshalObject() error = %v", err)
	}
	if string(got) != `{"nan":null,"inf":null,"ok":1.5,"list":[0.5,null]}` {
		t.Errorf("MarshalObject() = %s", got)
	}
}
