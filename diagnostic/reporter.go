package diagnostic

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"
)

// Reporter receives a diagnostic together with the query that caused it.
type Reporter interface {
	ReportDiagnostic(query string, d *Diagnostic)
}

// Printer writes human-readable reports and logs them.
type Printer struct {
	out    io.Writer
	logger *slog.Logger
}

// NewPrinter creates a printer writing to w. A nil logger uses slog.Default.
func NewPrinter(w io.Writer, logger *slog.Logger) *Printer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Printer{out: w, logger: logger}
}

// ReportDiagnostic prints the label and message, the query with the
// diagnostic's span underlined, then notes, helps and docs.
func (p *Printer) ReportDiagnostic(query string, d *Diagnostic) {
	p.logger.Warn("query diagnostic",
		"label", d.Label.String(),
		"message", d.Message,
	)

	var b strings.Builder
	fmt.Fprintf(&b, "[%s]: %s\n", d.Label, d.Message)

	if d.Location != nil && query != "" {
		pad, width := underline(query, d.Location)
		b.WriteString("  " + query + "\n")
		b.WriteString("  " + strings.Repeat(" ", pad) + strings.Repeat("^", width) + "\n")
	}

	for _, note := range d.Notes {
		fmt.Fprintf(&b, "  => Note: %s\n", note)
	}
	for _, help := range d.Helps {
		fmt.Fprintf(&b, "  => Help: %s\n", help)
	}
	if d.Docs != "" {
		fmt.Fprintf(&b, "  => Docs: %s\n", d.Docs)
	}

	_, _ = io.WriteString(p.out, b.String())
}

// underline converts the byte span of loc into the display column where the
// carets start and how many there are. Wide runes count as two columns. The
// span is kept inside the query and at least one caret wide.
func underline(query string, loc *Location) (pad, width int) {
	n := len(query)
	start, end := loc.Start, loc.End
	if start < 0 {
		start = 0
	}
	if start > n {
		start = n
	}
	if end > n {
		end = n
	}
	if end < start {
		end = start
	}
	for start > 0 && start < n && !utf8.RuneStart(query[start]) {
		start--
	}
	for end < n && !utf8.RuneStart(query[end]) {
		end++
	}

	pad = runewidth.StringWidth(query[:start])
	width = runewidth.StringWidth(query[start:end])
	if width < 1 {
		width = 1
	}
	return pad, width
}

// Report is one recorded diagnostic
type Report struct {
	Query      string
	Diagnostic *Diagnostic
}

// Recorder keeps every report in memory.
type Recorder struct {
	mu      sync.Mutex
	reports []Report
}

// ReportDiagnostic records the report
func (r *Recorder) ReportDiagnostic(query string, d *Diagnostic) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reports = append(r.reports, Report{Query: query, Diagnostic: d})
}

// Reports returns a copy of everything recorded so far
func (r *Recorder) Reports() []Report {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Report, len(r.reports))
	copy(out, r.reports)
	return out
}
