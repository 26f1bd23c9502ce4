// Package diagnostic carries user-facing failure reports from every stage of
// query processing.
//
// A Diagnostic is either an Error (the query text or the repositories are
// wrong) or an Exception (the engine failed while evaluating a valid query).
// Reporters decide how the report reaches the user.
package diagnostic

import "fmt"

// Label distinguishes error diagnostics from runtime exceptions.
type Label int

const (
	LabelError Label = iota
	LabelException
)

// String returns the label as printed in reports
func (l Label) String() string {
	switch l {
	case LabelError:
		return "Error"
	case LabelException:
		return "Exception"
	default:
		return fmt.Sprintf("Label(%d)", int(l))
	}
}

// Location is a byte span [Start, End) in the query text.
type Location struct {
	Start int
	End   int
}

// Diagnostic describes one failure.
type Diagnostic struct {
	Label    Label
	Message  string
	Location *Location
	Notes    []string
	Helps    []string
	Docs     string
}

// Error creates an error diagnostic
func Error(message string) *Diagnostic {
	return &Diagnostic{Label: LabelError, Message: message}
}

// Errorf creates an error diagnostic from a format string
func Errorf(format string, args ...interface{}) *Diagnostic {
	return Error(fmt.Sprintf(format, args...))
}

// Exception creates an exception diagnostic, used for evaluation failures
func Exception(message string) *Diagnostic {
	return &Diagnostic{Label: LabelException, Message: message}
}

// WithLocation sets the span the diagnostic points at
func (d *Diagnostic) WithLocation(start, end int) *Diagnostic {
	d.Location = &Location{Start: start, End: end}
	return d
}

// AddNote appends a note line
func (d *Diagnostic) AddNote(note string) *Diagnostic {
	d.Notes = append(d.Notes, note)
	return d
}

// AddHelp appends a help line
func (d *Diagnostic) AddHelp(help string) *Diagnostic {
	d.Helps = append(d.Helps, help)
	return d
}

// WithDocs sets a documentation link
func (d *Diagnostic) WithDocs(docs string) *Diagnostic {
	d.Docs = docs
	return d
}

// IsException reports whether the diagnostic came from evaluation
func (d *Diagnostic) IsException() bool {
	return d.Label == LabelException
}

// Error implements the error interface so a diagnostic can travel through
// error-returning code paths.
func (d *Diagnostic) Error() string {
	return fmt.Sprintf("%s: %s", d.Label, d.Message)
}
