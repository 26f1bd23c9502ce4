package render

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/vegasq/pqview/output"
	"github.com/vegasq/pqview/result"
)

// Pager messages
const (
	LastPageMessage     = "Already on the last page"
	FirstPageMessage    = "Already on the first page"
	InvalidInputMessage = "Invalid input"
)

// Pager prompts
const (
	FirstPagePrompt  = "Enter 'n' for next page, or 'q' to quit:"
	LastPagePrompt   = "'p' for previous page, or 'q' to quit:"
	MiddlePagePrompt = "Enter 'n' for next page, 'p' for previous page, or 'q' to quit:"
)

// Prompter reads one line of user input after showing prompt
type Prompter interface {
	Prompt(prompt string) (string, error)
}

// LinePrompter prompts on a writer and reads lines from a reader
type LinePrompter struct {
	in  *bufio.Reader
	out io.Writer
}

// NewLinePrompter creates a prompter reading from in and writing to out
func NewLinePrompter(in io.Reader, out io.Writer) *LinePrompter {
	return &LinePrompter{in: bufio.NewReader(in), out: out}
}

// Prompt writes prompt and returns the next line without its terminator.
// A final line without a newline is returned before io.EOF.
func (l *LinePrompter) Prompt(prompt string) (string, error) {
	if _, err := fmt.Fprint(l.out, prompt+" "); err != nil {
		return "", err
	}
	line, err := l.in.ReadString('\n')
	if err != nil && (!errors.Is(err, io.EOF) || line == "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// Pager shows the single group of a flattened result set one page at a
// time. Commands: n (next), p (previous), q (quit).
type Pager struct {
	rs       *result.ResultSet
	rows     []result.Row
	size     int
	pages    int
	page     int
	prompter Prompter
	out      io.Writer
	table    *output.TableFormatter
}

// NewPager creates a pager over the rows of rs, which must hold at most one
// group
func NewPager(rs *result.ResultSet, size int, prompter Prompter, out io.Writer) *Pager {
	if size <= 0 {
		size = DefaultPageSize
	}
	var rows []result.Row
	if len(rs.Groups) > 0 {
		rows = rs.Groups[0].Rows
	}
	return &Pager{
		rs:       rs,
		rows:     rows,
		size:     size,
		pages:    (len(rows) + size - 1) / size,
		page:     1,
		prompter: prompter,
		out:      out,
		table:    output.NewTableFormatter(out),
	}
}

// Pages returns the number of pages
func (p *Pager) Pages() int { return p.pages }

// Page returns the current page number, starting at 1
func (p *Pager) Page() int { return p.page }

// Records returns the rows of page n, which starts at 1
func (p *Pager) Records(n int) Records {
	if n < 1 || n > p.pages {
		return nil
	}
	start := (n - 1) * p.size
	end := start + p.size
	if end > len(p.rows) {
		end = len(p.rows)
	}
	return records(p.rs, p.rows[start:end])
}

// Run shows the first page and then follows commands until q or until the
// prompter fails. io.EOF from the prompter ends the session without error.
func (p *Pager) Run() error {
	if p.pages == 0 {
		return nil
	}
	for {
		if err := p.show(); err != nil {
			return err
		}
		next, err := p.command()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		if next == 0 {
			return nil
		}
		p.page = next
	}
}

// command prompts until the input moves to another page. It returns the
// new page number, or 0 to quit.
func (p *Pager) command() (int, error) {
	for {
		input, err := p.prompter.Prompt(p.prompt())
		if err != nil {
			return 0, err
		}
		switch strings.TrimSpace(input) {
		case "n":
			if p.page < p.pages {
				return p.page + 1, nil
			}
			fmt.Fprintln(p.out, LastPageMessage)
		case "p":
			if p.page > 1 {
				return p.page - 1, nil
			}
			fmt.Fprintln(p.out, FirstPageMessage)
		case "q":
			return 0, nil
		default:
			fmt.Fprintln(p.out, InvalidInputMessage)
		}
	}
}

func (p *Pager) prompt() string {
	switch p.page {
	case 1:
		return FirstPagePrompt
	case p.pages:
		return LastPagePrompt
	default:
		return MiddlePagePrompt
	}
}

func (p *Pager) show() error {
	fmt.Fprintf(p.out, "Page %d/%d\n", p.page, p.pages)
	recs := p.Records(p.page)
	rows := make([][]interface{}, len(recs))
	for i, r := range recs {
		rows[i] = r.Values()
	}
	return p.table.Format(p.rs.Titles, rows)
}
