package output

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"
	"github.com/olekukonko/tablewriter"
)

// TableFormatter outputs rows as a bordered text table
type TableFormatter struct {
	writer io.Writer
	// MaxCellWidth truncates wider cells (0 disables truncation)
	MaxCellWidth int
}

// NewTableFormatter creates a new table formatter
func NewTableFormatter(w io.Writer) *TableFormatter {
	return &TableFormatter{writer: w, MaxCellWidth: 60}
}

// SetOutput sets the output writer
func (t *TableFormatter) SetOutput(w io.Writer) {
	t.writer = w
}

// Format writes the columns as the header and one table line per row
func (t *TableFormatter) Format(columns []string, rows [][]interface{}) error {
	table := tablewriter.NewWriter(t.writer)
	table.SetHeader(columns)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)

	for i, row := range rows {
		if len(row) != len(columns) {
			return fmt.Errorf("row %d has %d cells, want %d", i, len(row), len(columns))
		}
		line := make([]string, len(row))
		for j, cell := range row {
			line[j] = t.cell(cell)
		}
		table.Append(line)
	}

	table.Render()
	return nil
}

func (t *TableFormatter) cell(v interface{}) string {
	s := displayValue(v)
	if t.MaxCellWidth > 0 && runewidth.StringWidth(s) > t.MaxCellWidth {
		s = runewidth.Truncate(s, t.MaxCellWidth, "...")
	}
	return s
}

// displayValue renders a cell for humans. Lists print as [a, b].
func displayValue(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case time.Time:
		return val.Format(time.RFC3339)
	case []string:
		return "[" + strings.Join(val, ", ") + "]"
	case []int64, []float64, []bool:
		s := fmt.Sprintf("%v", val)
		return strings.ReplaceAll(s, " ", ", ")
	default:
		return fmt.Sprintf("%v", val)
	}
}
