package result

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"github.com/vegasq/pqview/output"
)

// ErrNoRows is returned by the serializers when the result set holds no rows.
var ErrNoRows = errors.New("result set has no rows")

// AsJSON serializes every visible column of every row, across all groups,
// into one JSON array of objects keyed by title.
func (rs *ResultSet) AsJSON() (string, error) {
	var buf bytes.Buffer
	return rs.serialize(output.NewJSONFormatter(&buf), &buf, jsonCell)
}

// AsJSONLines is like AsJSON but writes one object per line.
func (rs *ResultSet) AsJSONLines() (string, error) {
	var buf bytes.Buffer
	return rs.serialize(output.NewJSONLinesFormatter(&buf), &buf, jsonCell)
}

// AsCSV serializes the result set as CSV with a header row of titles.
// Null cells are written as empty fields.
func (rs *ResultSet) AsCSV() (string, error) {
	var buf bytes.Buffer
	return rs.serialize(output.NewCSVFormatter(&buf), &buf, csvCell)
}

func (rs *ResultSet) serialize(f output.Formatter, buf *bytes.Buffer, cell func(Value) interface{}) (string, error) {
	if rs == nil || rs.Len() == 0 {
		return "", ErrNoRows
	}
	if err := rs.Validate(); err != nil {
		return "", err
	}

	cols := rs.VisibleColumns()
	rows := make([][]interface{}, 0, rs.Len())
	for _, g := range rs.Groups {
		for _, row := range g.Rows {
			cells := make([]interface{}, len(cols))
			for i, c := range cols {
				cells[i] = cell(row.Values[c])
			}
			rows = append(rows, cells)
		}
	}

	if err := f.Format(rs.Titles, rows); err != nil {
		return "", fmt.Errorf("failed to serialize result set: %w", err)
	}
	return buf.String(), nil
}

// jsonCell maps a value onto the closest JSON type
func jsonCell(v Value) interface{} {
	switch v.Kind() {
	case KindInteger:
		return v.AsInt()
	case KindFloat:
		return v.AsFloat()
	case KindText:
		return v.AsText()
	case KindBoolean:
		return v.AsBool()
	case KindDate, KindTime, KindRange:
		return v.String()
	case KindDateTime:
		return time.Unix(v.AsDateTime(), 0).UTC().Format(time.RFC3339)
	case KindArray:
		_, elems := v.AsArray()
		out := make([]interface{}, len(elems))
		for i, e := range elems {
			out[i] = jsonCell(e)
		}
		return out
	case KindNull:
		return nil
	default:
		panic(fmt.Sprintf("result: unhandled value kind %v", v.Kind()))
	}
}

// csvCell keeps numbers and booleans native so the CSV writer does not treat
// negative numbers as formula text.
func csvCell(v Value) interface{} {
	switch v.Kind() {
	case KindInteger:
		return v.AsInt()
	case KindFloat:
		return v.AsFloat()
	case KindBoolean:
		return v.AsBool()
	case KindNull:
		return nil
	case KindText, KindDate, KindTime, KindDateTime, KindArray, KindRange:
		return v.String()
	default:
		panic(fmt.Sprintf("result: unhandled value kind %v", v.Kind()))
	}
}
