package pipeline

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/vegasq/pqview/diagnostic"
	"github.com/vegasq/pqview/query"
	"github.com/vegasq/pqview/reader"
	"github.com/vegasq/pqview/render"
)

// ErrInvalidRepositories is returned by Run when a repository path cannot
// be opened
var ErrInvalidRepositories = errors.New(InvalidRepositories)

// Request is one invocation of the query command
type Request struct {
	Query        string
	Repositories []string
	Arguments    Arguments
	Reporter     diagnostic.Reporter
	// Env carries globals across requests. Nil builds a fresh environment.
	Env *query.Environment
}

// Run opens the repositories, builds the query environment from their
// schemas and executes the query.
//
// A repository that cannot be opened is reported as an error diagnostic and
// Run returns ErrInvalidRepositories.
func Run(ctx context.Context, req Request) (render.Value, error) {
	args := req.Arguments
	log := args.logger().With("run_id", uuid.NewString())
	args.Logger = log

	repos, err := reader.ValidateRepositories(req.Repositories)
	if err != nil {
		log.WarnContext(ctx, "invalid repositories", "paths", req.Repositories, "error", err)
		req.Reporter.ReportDiagnostic("", diagnostic.Error(err.Error()))
		args.Metrics.countOutcome(outcomeInvalidRepositories)
		return nil, ErrInvalidRepositories
	}

	env := Environment(req.Env, repos)
	log.DebugContext(ctx, "repositories opened", "tables", env.Schema.TableNames())
	return Execute(req.Query, args, repos, env, req.Reporter), nil
}

// Environment returns env with its schema replaced by the schema of repos,
// or a new environment over that schema when env is nil. Globals are kept.
func Environment(env *query.Environment, repos []*reader.Repository) *query.Environment {
	schema := reader.Schema(repos)
	if env == nil {
		return query.NewEnvironment(schema)
	}
	env.Schema = schema
	if env.Functions == nil {
		env.Functions = query.StandardFunctions()
	}
	if env.Aggregations == nil {
		env.Aggregations = query.StandardAggregations()
	}
	return env
}
