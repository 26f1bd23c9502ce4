package pipeline

import (
	"fmt"
	"io"
	"time"
)

// Analysis holds the stage timings of one query
type Analysis struct {
	Frontend time.Duration
	Engine   time.Duration
}

// Total returns the sum of every stage
func (a Analysis) Total() time.Duration { return a.Frontend + a.Engine }

// WriteAnalysis prints the timings in a fixed three line block
func WriteAnalysis(w io.Writer, a Analysis) {
	fmt.Fprintf(w, "Analysis:\nFrontend : %v\nEngine   : %v\nTotal    : %v\n", a.Frontend, a.Engine, a.Total())
}
