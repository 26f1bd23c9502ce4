package result

import (
	"errors"
	"fmt"
)

// ErrRowWidth is returned by Validate when a row does not hold exactly one
// value per title plus the hidden columns.
var ErrRowWidth = errors.New("row width does not match titles")

// Row is one result row. Values are positionally aligned with the hidden
// columns followed by the result set titles.
type Row struct {
	Values []Value
}

// Group is an ordered batch of rows sharing the result set titles.
type Group struct {
	Rows []Row
}

// Len returns the number of rows in the group
func (g Group) Len() int { return len(g.Rows) }

// ResultSet is the engine's output for one selecting statement.
//
// Hidden counts the leading values of every row that hold grouping or
// ordering keys. They are never surfaced to callers.
type ResultSet struct {
	Titles []string
	Groups []Group
	Hidden int
}

// Len returns the total number of rows across all groups
func (rs *ResultSet) Len() int {
	n := 0
	for _, g := range rs.Groups {
		n += len(g.Rows)
	}
	return n
}

// IsEmpty reports the "no data" condition: no groups, or a first group
// without rows.
func (rs *ResultSet) IsEmpty() bool {
	return rs == nil || len(rs.Groups) == 0 || len(rs.Groups[0].Rows) == 0
}

// VisibleColumns returns the row positions of the titled columns, in title
// order.
func (rs *ResultSet) VisibleColumns() []int {
	cols := make([]int, len(rs.Titles))
	for i := range rs.Titles {
		cols[i] = rs.Hidden + i
	}
	return cols
}

// Flattened returns a view holding at most one group whose rows are the
// concatenation of every group in order. The receiver is left unmodified;
// rows are shared, not copied.
func (rs *ResultSet) Flattened() *ResultSet {
	if len(rs.Groups) <= 1 {
		return rs
	}
	rows := make([]Row, 0, rs.Len())
	for _, g := range rs.Groups {
		rows = append(rows, g.Rows...)
	}
	return &ResultSet{
		Titles: rs.Titles,
		Groups: []Group{{Rows: rows}},
		Hidden: rs.Hidden,
	}
}

// Flatten collapses all groups into the first one in place.
func (rs *ResultSet) Flatten() {
	if len(rs.Groups) <= 1 {
		return
	}
	flat := rs.Flattened()
	rs.Groups = flat.Groups
}

// Validate checks that every row holds len(Titles)+Hidden values.
func (rs *ResultSet) Validate() error {
	want := len(rs.Titles) + rs.Hidden
	for gi, g := range rs.Groups {
		for ri, row := range g.Rows {
			if len(row.Values) != want {
				return fmt.Errorf("%w: group %d row %d has %d values, want %d", ErrRowWidth, gi, ri, len(row.Values), want)
			}
		}
	}
	return nil
}

// Visible returns the titled values of row in title order.
func (rs *ResultSet) Visible(row Row) []Value {
	return row.Values[rs.Hidden : rs.Hidden+len(rs.Titles)]
}
