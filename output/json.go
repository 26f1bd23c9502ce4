package output

import (
	"io"
)

// JSONFormatter outputs rows as a single JSON array of objects
type JSONFormatter struct {
	writer io.Writer
}

// NewJSONFormatter creates a new JSON array formatter
func NewJSONFormatter(w io.Writer) *JSONFormatter {
	return &JSONFormatter{writer: w}
}

// SetOutput sets the output writer
func (j *JSONFormatter) SetOutput(w io.Writer) {
	j.writer = w
}

// Format writes rows as one JSON array. Object keys follow column order.
func (j *JSONFormatter) Format(columns []string, rows [][]interface{}) error {
	if _, err := io.WriteString(j.writer, "["); err != nil {
		return err
	}
	for i, row := range rows {
		obj, err := MarshalObject(columns, row)
		if err != nil {
			return err
		}
		if i > 0 {
			if _, err := io.WriteString(j.writer, ","); err != nil {
				return err
			}
		}
		if _, err := j.writer.Write(obj); err != nil {
			return err
		}
	}
	_, err := io.WriteString(j.writer, "]")
	return err
}

// JSONLinesFormatter outputs rows as JSON Lines format
type JSONLinesFormatter struct {
	writer io.Writer
}

// NewJSONLinesFormatter creates a new JSON Lines formatter
func NewJSONLinesFormatter(w io.Writer) *JSONLinesFormatter {
	return &JSONLinesFormatter{writer: w}
}

// SetOutput sets the output writer
func (j *JSONLinesFormatter) SetOutput(w io.Writer) {
	j.writer = w
}

// Format writes rows as JSON Lines (one JSON object per line)
func (j *JSONLinesFormatter) Format(columns []string, rows [][]interface{}) error {
	for _, row := range rows {
		obj, err := MarshalObject(columns, row)
		if err != nil {
			return err
		}
		obj = append(obj, '\n')
		if _, err := j.writer.Write(obj); err != nil {
			return err
		}
	}
	return nil
}
