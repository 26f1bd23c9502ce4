// Package pipeline runs one query end to end: tokenize, parse, evaluate and
// render, reporting failures through a diagnostic.Reporter.
package pipeline

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/vegasq/pqview/diagnostic"
	"github.com/vegasq/pqview/query"
	"github.com/vegasq/pqview/reader"
	"github.com/vegasq/pqview/render"
)

// Messages returned when a stage fails
const (
	NoTokensMessage     = "No tokens to parse"
	TokenizationFailed  = "Tokenization failed"
	ParsingFailed       = "Parsing failed"
	EvaluationFailed    = "Evaluation failed"
	InvalidRepositories = "Invalid repositories paths"
)

// Arguments holds the per-invocation settings of a query run
type Arguments struct {
	// Analysis writes stage timings to AnalysisOut
	Analysis    bool
	AnalysisOut io.Writer

	Format     render.Format
	Pagination bool
	PageSize   int
	Prompter   render.Prompter
	Out        io.Writer

	Metrics *Metrics
	Logger  *slog.Logger
}

func (a Arguments) renderOptions() render.Options {
	return render.Options{
		Format:     a.Format,
		Pagination: a.Pagination,
		PageSize:   a.PageSize,
		Prompter:   a.Prompter,
		Out:        a.Out,
	}
}

func (a Arguments) logger() *slog.Logger {
	if a.Logger == nil {
		return slog.Default()
	}
	return a.Logger
}

func (a Arguments) analysisOut() io.Writer {
	if a.AnalysisOut == nil {
		return os.Stderr
	}
	return a.AnalysisOut
}

// Execute runs queryText against repos.
//
// Tokenizer and parser failures are reported as error diagnostics and
// evaluation failures as exceptions; in each case the returned value is the
// stage's failure message. Otherwise the outcome is rendered in the format
// selected by args.
func Execute(queryText string, args Arguments, repos []*reader.Repository, env *query.Environment, reporter diagnostic.Reporter) render.Value {
	log := args.logger()
	m := args.Metrics
	start := time.Now()

	tokens, diag := query.Tokenize(queryText)
	if diag != nil {
		reporter.ReportDiagnostic(queryText, diag)
		m.countOutcome(outcomeTokenizeError)
		return render.Text(TokenizationFailed)
	}
	if len(tokens) == 0 {
		m.countOutcome(outcomeEmpty)
		return render.Text(NoTokensMessage)
	}

	stmt, diag := query.Parse(tokens, env)
	if diag != nil {
		reporter.ReportDiagnostic(queryText, diag)
		m.countOutcome(outcomeParseError)
		return render.Text(ParsingFailed)
	}

	frontend := time.Since(start)
	m.observeStage(stageFrontend, frontend)
	log.Debug("query parsed", "tokens", len(tokens), "statement", fmt.Sprintf("%T", stmt), "duration", frontend)

	engineStart := time.Now()
	outcome, err := query.Evaluate(env, reader.NewProvider(repos), stmt)
	if err != nil {
		reporter.ReportDiagnostic(queryText, diagnostic.Exception(err.Error()))
		m.countOutcome(outcomeEvaluationError)
		return render.Text(EvaluationFailed)
	}
	value := render.Select(outcome, args.renderOptions())

	engine := time.Since(engineStart)
	m.observeStage(stageEngine, engine)
	m.countOutcome(outcomeOK)
	log.Debug("query evaluated", "outcome", fmt.Sprintf("%T", outcome), "duration", engine)

	if args.Analysis {
		WriteAnalysis(args.analysisOut(), Analysis{Frontend: frontend, Engine: engine})
	}
	return value
}
