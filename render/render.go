package render

import (
	"io"
	"os"

	"github.com/vegasq/pqview/result"
)

// Messages returned as Text
const (
	NoDataMessage            = "No data to display"
	NoJSONMessage            = "No JSON data to show"
	NoCSVMessage             = "No CSV data to show"
	NotSelectedGroupsMessage = "Not a SelectedGroups result"
)

// DefaultPageSize is used when pagination is enabled without a positive
// page size
const DefaultPageSize = 10

// Options controls how a result is materialized
type Options struct {
	Format     Format
	Pagination bool
	PageSize   int
	// Prompter reads pager commands. Nil reads lines from standard input.
	Prompter Prompter
	// Out receives pager output. Nil writes to standard output.
	Out io.Writer
}

func (o Options) pageSize() int {
	if o.PageSize <= 0 {
		return DefaultPageSize
	}
	return o.PageSize
}

func (o Options) out() io.Writer {
	if o.Out == nil {
		return os.Stdout
	}
	return o.Out
}

func (o Options) prompter() Prompter {
	if o.Prompter == nil {
		return NewLinePrompter(os.Stdin, o.out())
	}
	return o.Prompter
}

// Render materializes rs as records.
//
// Multiple groups are flattened into one first; rs itself is not modified.
// With pagination enabled and more rows than fit one page, the rows are
// shown page by page through an interactive Pager and Nothing is returned.
// Rows whose width does not match the titles are an engine bug and panic
// with the result.ErrRowWidth error.
func Render(rs *result.ResultSet, opts Options) Value {
	view := rs
	if rs != nil && len(rs.Groups) > 1 {
		view = rs.Flattened()
	}
	if view.IsEmpty() {
		return Text(NoDataMessage)
	}
	if err := view.Validate(); err != nil {
		panic(err)
	}

	rows := view.Groups[0].Rows
	if !opts.Pagination || opts.pageSize() >= len(rows) {
		return records(view, rows)
	}

	pager := NewPager(view, opts.pageSize(), opts.prompter(), opts.out())
	// A prompt failure ends the session like 'q' does
	_ = pager.Run()
	return Nothing{}
}

// records converts rows of the single-group view rs
func records(rs *result.ResultSet, rows []result.Row) Records {
	cols := rs.VisibleColumns()
	out := make(Records, len(rows))
	for i, row := range rows {
		values := make([]interface{}, len(cols))
		for j, c := range cols {
			values[j] = Cell(row.Values[c])
		}
		out[i] = NewRecord(rs.Titles, values)
	}
	return out
}
