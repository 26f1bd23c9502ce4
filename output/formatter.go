// Package output provides writers that turn ordered tabular data into
// documents: a JSON array, JSON Lines, CSV, or a text table.
//
// Every formatter receives the column names once and the rows as positional
// cells, so column order is always the caller's order.
//
// Example usage:
//
//	formatter := output.NewCSVFormatter(os.Stdout)
//	if err := formatter.Format(columns, rows); err != nil {
//	    log.Fatal(err)
//	}
package output

import "io"

// Formatter defines the interface for output formatters.
//
// Implementers must provide Format to write rows in the target format
// and SetOutput to change the output destination.
type Formatter interface {
	// Format writes the rows. Each row holds one cell per column, in order.
	Format(columns []string, rows [][]interface{}) error

	// SetOutput changes the output writer
	SetOutput(w io.Writer)
}
