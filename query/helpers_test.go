package query

import (
	"fmt"
	"testing"

	"github.com/vegasq/pqview/result"
)

// memTable is an in-memory table used by the tests
type memTable struct {
	columns []string
	types   []result.DataType
	rows    [][]result.Value
}

// memProvider serves memTables and records every request
type memProvider struct {
	tables   map[string]memTable
	requests []string
}

func (m *memProvider) Provide(table string, fields []string) ([]result.Row, error) {
	m.requests = append(m.requests, fmt.Sprintf("%s%v", table, fields))
	tbl, ok := m.tables[table]
	if !ok {
		return nil, fmt.Errorf("no table %s", table)
	}
	idx := make([]int, len(fields))
	for i, f := range fields {
		idx[i] = -1
		for j, c := range tbl.columns {
			if c == f {
				idx[i] = j
			}
		}
		if idx[i] < 0 {
			return nil, fmt.Errorf("no column %s", f)
		}
	}
	rows := make([]result.Row, len(tbl.rows))
	for i, r := range tbl.rows {
		values := make([]result.Value, len(fields))
		for j, k := range idx {
			values[j] = r[k]
		}
		rows[i] = result.Row{Values: values}
	}
	return rows, nil
}

func (m *memProvider) schema() Schema {
	s := Schema{Tables: map[string][]string{}, Types: map[string]map[string]result.DataType{}}
	for name, tbl := range m.tables {
		s.Tables[name] = tbl.columns
		s.Types[name] = map[string]result.DataType{}
		for i, c := range tbl.columns {
			s.Types[name][c] = tbl.types[i]
		}
	}
	return s
}

// newUsers returns a provider with a users table
func newUsers() *memProvider {
	i, s, n := result.Integer, result.Text, result.Null()
	return &memProvider{tables: map[string]memTable{
		"users": {
			columns: []string{"id", "name", "age", "city", "score"},
			types:   []result.DataType{result.IntegerType, result.TextType, result.IntegerType, result.TextType, result.FloatType},
			rows: [][]result.Value{
				{i(1), s("alice"), i(30), s("NYC"), result.Float(9.5)},
				{i(2), s("bob"), i(25), s("LA"), result.Float(7)},
				{i(3), s("carol"), i(35), s("NYC"), n},
				{i(4), s("dave"), n, s("SF"), result.Float(8.25)},
				{i(5), s("eve"), i(28), s("LA"), result.Float(6.5)},
			},
		},
		"events": {
			columns: []string{"kind", "at"},
			types:   []result.DataType{result.TextType, result.DateTimeType},
			rows: [][]result.Value{
				{s("login"), result.DateTime(1000)},
				{s("logout"), result.DateTime(2000)},
			},
		},
	}}
}

// runQuery tokenizes, parses and evaluates q, failing the test on any error
func runQuery(t *testing.T, env *Environment, provider DataProvider, q string) EvaluationResult {
	t.Helper()
	tokens, diag := Tokenize(q)
	if diag != nil {
		t.Fatalf("Tokenize(%q): %v", q, diag)
	}
	stmt, diag := Parse(tokens, env)
	if diag != nil {
		t.Fatalf("Parse(%q): %v", q, diag)
	}
	outcome, err := Evaluate(env, provider, stmt)
	if err != nil {
		t.Fatalf("Evaluate(%q): %v", q, err)
	}
	return outcome
}

// selectRows runs q and returns the visible values of every row as strings,
// one slice per group
func selectRows(t *testing.T, env *Environment, provider DataProvider, q string) (*result.ResultSet, [][]string) {
	t.Helper()
	groups, ok := runQuery(t, env, provider, q).(*SelectedGroups)
	if !ok {
		t.Fatalf("%q did not produce SelectedGroups", q)
	}
	var out [][]string
	for _, g := range groups.Set.Groups {
		for _, row := range g.Rows {
			var cells []string
			for _, v := range groups.Set.Visible(row) {
				cells = append(cells, v.String())
			}
			out = append(out, cells)
		}
	}
	return groups.Set, out
}

func parseQuery(env *Environment, q string) (Statement, string) {
	tokens, diag := Tokenize(q)
	if diag != nil {
		return nil, diag.Message
	}
	stmt, diag := Parse(tokens, env)
	if diag != nil {
		return nil, diag.Message
	}
	return stmt, ""
}
