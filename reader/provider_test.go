package reader

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vegasq/pqview/query"
)

func TestProviderRows(t *testing.T) {
	dir := t.TempDir()
	path := writeParquet(t, dir, "users.parquet", sampleUsers())
	repos, err := ValidateRepositories([]string{path})
	require.NoError(t, err)

	p := NewProvider(repos)
	rows, err := p.Provide("users", []string{"name", "id", "score", "active"})
	require.NoError(t, err)
	require.Len(t, rows, 2)

	first := rows[0].Values
	assert.Equal(t, "alice", first[0].AsText())
	assert.Equal(t, int64(1), first[1].AsInt())
	assert.Equal(t, 9.5, first[2].AsFloat())
	assert.True(t, first[3].AsBool())

	again, err := p.Provide("users", []string{"name", "id", "score", "active"})
	require.NoError(t, err)
	assert.Same(t, &rows[0], &again[0], "second request is served from the cache")
}

func TestProviderErrors(t *testing.T) {
	dir := t.TempDir()
	path := writeParquet(t, dir, "users.parquet", sampleUsers())
	repos, err := ValidateRepositories([]string{path})
	require.NoError(t, err)

	p := NewProvider(repos)
	_, err = p.Provide("nope", []string{"id"})
	assert.ErrorContains(t, err, "unknown repository nope")

	_, err = p.Provide("users", []string{"missing"})
	assert.ErrorContains(t, err, "has no column missing")
}

func TestProviderWithEngine(t *testing.T) {
	dir := t.TempDir()
	path := writeParquet(t, dir, "users.parquet", sampleUsers())
	repos, err := ValidateRepositories([]string{path})
	require.NoError(t, err)

	env := query.NewEnvironment(Schema(repos))
	tokens, diag := query.Tokenize("SELECT name FROM users WHERE score > 8")
	require.Nil(t, diag)
	stmt, diag := query.Parse(tokens, env)
	require.Nil(t, diag)

	outcome, err := query.Evaluate(env, NewProvider(repos), stmt)
	require.NoError(t, err)
	groups := outcome.(*query.SelectedGroups)
	require.Equal(t, 1, groups.Set.Len())
	assert.Equal(t, "alice", groups.Set.Groups[0].Rows[0].Values[0].AsText())
}
