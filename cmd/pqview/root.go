package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/vegasq/pqview/diagnostic"
	"github.com/vegasq/pqview/internal/config"
	"github.com/vegasq/pqview/internal/logging"
	"github.com/vegasq/pqview/output"
	"github.com/vegasq/pqview/pipeline"
	"github.com/vegasq/pqview/query"
	"github.com/vegasq/pqview/render"
)

func newRootCmd() *cobra.Command {
	var configFile string

	cmd := &cobra.Command{
		Use:   "pqview",
		Short: "Query parquet files with SQL",
		Example: `  pqview -r users.parquet -q "SELECT name, age FROM users WHERE age > 30"
  pqview -r events=logs/*.parquet -q "SELECT kind, count(*) FROM events GROUP BY kind" -o json
  pqview -r users.parquet -p -s 20`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			v := config.New()
			if err := config.BindFlags(v, cmd.Flags()); err != nil {
				return err
			}
			cfg, err := config.Load(v, configFile)
			if err != nil {
				return err
			}
			a, cleanup, err := newApp(cfg, cmd.OutOrStdout(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer cleanup()

			if cfg.Query == "" {
				err = a.repl(cmd.Context(), cmd.InOrStdin())
			} else {
				err = a.runQuery(cmd.Context(), cfg.Query, render.NewLinePrompter(cmd.InOrStdin(), cmd.OutOrStdout()))
			}
			if werr := a.writeMetrics(); werr != nil && err == nil {
				err = werr
			}
			return err
		},
	}

	flags := cmd.Flags()
	flags.StringSliceP(config.KeyRepo, "r", nil, "parquet file or glob to query, optionally as name=path (repeatable)")
	flags.StringP(config.KeyQuery, "q", "", "query to run; starts an interactive shell when empty")
	flags.StringP(config.KeyOutput, "o", render.FormatRender.String(), "output format: render, json, jsonl, csv")
	flags.BoolP(config.KeyPagination, "p", false, "page through rendered results")
	flags.IntP(config.KeyPageSize, "s", render.DefaultPageSize, "rows per page")
	flags.BoolP(config.KeyAnalysis, "a", false, "print frontend and engine timings")
	flags.String(config.KeyLogLevel, "warn", "log level: debug, info, warn, error")
	flags.String(config.KeyLogFormat, "text", "log format: text, json")
	flags.String(config.KeySeqURL, "", "Seq server URL for log shipping")
	flags.String(config.KeyMetricsFile, "", "write Prometheus metrics to this file on exit")
	flags.StringVar(&configFile, "config", "", "config file (yaml, json or toml)")
	return cmd
}

// app holds everything one pqview process shares across queries
type app struct {
	cfg      config.Config
	format   render.Format
	logger   *slog.Logger
	registry *prometheus.Registry
	metrics  *pipeline.Metrics
	reporter diagnostic.Reporter
	// env keeps globals alive across shell statements
	env *query.Environment
	out io.Writer
	err io.Writer
}

func newApp(cfg config.Config, out, errOut io.Writer) (*app, func(), error) {
	format, err := cfg.Format()
	if err != nil {
		return nil, nil, err
	}

	logger, cleanup := logging.Setup(logging.Options{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		SeqURL: cfg.SeqURL,
		Writer: errOut,
	})

	registry := prometheus.NewRegistry()
	return &app{
		cfg:      cfg,
		format:   format,
		logger:   logger,
		registry: registry,
		metrics:  pipeline.NewMetrics(registry),
		reporter: diagnostic.NewPrinter(errOut, logger),
		env:      query.NewEnvironment(query.Schema{}),
		out:      out,
		err:      errOut,
	}, cleanup, nil
}

// runQuery runs one statement and prints its outcome. prompter reads pager
// commands.
func (a *app) runQuery(ctx context.Context, q string, prompter render.Prompter) error {
	value, err := pipeline.Run(ctx, pipeline.Request{
		Query:        q,
		Repositories: a.cfg.Repositories,
		Arguments: pipeline.Arguments{
			Analysis:    a.cfg.Analysis,
			AnalysisOut: a.err,
			Format:      a.format,
			Pagination:  a.cfg.Pagination,
			PageSize:    a.cfg.PageSize,
			Prompter:    prompter,
			Out:         a.out,
			Metrics:     a.metrics,
			Logger:      a.logger,
		},
		Reporter: a.reporter,
		Env:      a.env,
	})
	if err != nil {
		return err
	}
	return printValue(a.out, value)
}

func (a *app) writeMetrics() error {
	if a.cfg.MetricsFile == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(a.cfg.MetricsFile, a.registry); err != nil {
		return fmt.Errorf("failed to write metrics: %w", err)
	}
	return nil
}

// printValue writes a rendered outcome: records as a table, text as is
func printValue(w io.Writer, v render.Value) error {
	switch val := v.(type) {
	case render.Records:
		if len(val) == 0 {
			return nil
		}
		rows := make([][]interface{}, len(val))
		for i, r := range val {
			rows[i] = r.Values()
		}
		return output.NewTableFormatter(w).Format(val[0].Columns(), rows)
	case render.Text:
		_, err := fmt.Fprintln(w, string(val))
		return err
	case render.Nothing:
		return nil
	default:
		return fmt.Errorf("unexpected render value %T", v)
	}
}
