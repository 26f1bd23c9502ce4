package query

import (
	"fmt"
	"sort"
	"strings"

	"github.com/vegasq/pqview/result"
)

// DataProvider supplies the rows of a table. Each returned row holds the
// requested fields in order.
type DataProvider interface {
	Provide(table string, fields []string) ([]result.Row, error)
}

// EvaluationResult is the outcome of evaluating one statement
type EvaluationResult interface {
	evaluationResult()
}

// SelectedGroups is the outcome of a selecting statement
type SelectedGroups struct {
	Set *result.ResultSet
}

// SetGlobalVariable is the outcome of SET @name = value
type SetGlobalVariable struct {
	Name  string
	Value result.Value
}

func (*SelectedGroups) evaluationResult()    {}
func (*SetGlobalVariable) evaluationResult() {}

// Evaluate executes stmt against env, reading table rows from provider
func Evaluate(env *Environment, provider DataProvider, stmt Statement) (EvaluationResult, error) {
	switch s := stmt.(type) {
	case *SelectStatement:
		rs, err := executeSelect(env, provider, s)
		if err != nil {
			return nil, err
		}
		return &SelectedGroups{Set: rs}, nil
	case *ShowTablesStatement:
		rs := &result.ResultSet{Titles: []string{"tables"}, Groups: []result.Group{{}}}
		for _, name := range env.Schema.TableNames() {
			rs.Groups[0].Rows = append(rs.Groups[0].Rows, result.Row{Values: []result.Value{result.Text(name)}})
		}
		return &SelectedGroups{Set: rs}, nil
	case *DescribeStatement:
		rs := &result.ResultSet{Titles: []string{"field", "type"}, Groups: []result.Group{{}}}
		for _, col := range env.Schema.Tables[s.Table] {
			rs.Groups[0].Rows = append(rs.Groups[0].Rows, result.Row{Values: []result.Value{
				result.Text(col),
				result.Text(env.Schema.ColumnType(s.Table, col).String()),
			}})
		}
		return &SelectedGroups{Set: rs}, nil
	case *SetStatement:
		v, err := (&scope{env: env}).eval(s.Value)
		if err != nil {
			return nil, err
		}
		env.SetGlobal(s.Name, v)
		return &SetGlobalVariable{Name: s.Name, Value: v}, nil
	default:
		return nil, fmt.Errorf("unsupported statement %T", stmt)
	}
}

// executeSelect runs WHERE, grouping and aggregation, HAVING, projection,
// DISTINCT, ORDER BY and finally OFFSET/LIMIT
func executeSelect(env *Environment, provider DataProvider, stmt *SelectStatement) (*result.ResultSet, error) {
	rows, err := loadRows(provider, stmt)
	if err != nil {
		return nil, err
	}

	base := &scope{env: env, columns: make(map[string]int, len(stmt.Fields))}
	for i, f := range stmt.Fields {
		base.columns[f] = i
	}

	if stmt.Where != nil {
		rows, err = filterRows(base, rows, stmt.Where, "WHERE")
		if err != nil {
			return nil, err
		}
	}

	projections := append(append([]Selection{}, stmt.Hidden...), stmt.Selections...)
	rs := &result.ResultSet{Hidden: len(stmt.Hidden)}
	for _, sel := range stmt.Selections {
		rs.Titles = append(rs.Titles, sel.Title)
	}

	if stmt.Aggregated || len(stmt.GroupBy) > 0 {
		partitions, err := partition(base, rows, stmt.GroupBy)
		if err != nil {
			return nil, err
		}
		for _, part := range partitions {
			s := &scope{env: env, columns: base.columns, group: part}
			if len(part) > 0 {
				s.row = part[0]
			}
			if stmt.Having != nil {
				v, err := s.eval(stmt.Having)
				if err != nil {
					return nil, err
				}
				keep, err := truthy(v, "HAVING")
				if err != nil {
					return nil, err
				}
				if !keep {
					continue
				}
			}
			row, err := project(s, projections)
			if err != nil {
				return nil, err
			}
			rs.Groups = append(rs.Groups, result.Group{Rows: []result.Row{row}})
		}
	} else {
		if stmt.Having != nil {
			if rows, err = filterRows(base, rows, stmt.Having, "HAVING"); err != nil {
				return nil, err
			}
		}
		group := result.Group{Rows: make([]result.Row, 0, len(rows))}
		for _, r := range rows {
			row, err := project(base.withRow(r), projections)
			if err != nil {
				return nil, err
			}
			group.Rows = append(group.Rows, row)
		}
		rs.Groups = []result.Group{group}
	}

	if stmt.Distinct {
		for i := range rs.Groups {
			rs.Groups[i].Rows = distinctRows(rs, rs.Groups[i].Rows)
		}
	}

	if len(stmt.OrderBy) > 0 {
		if err := sortResult(rs, stmt.OrderBy); err != nil {
			return nil, err
		}
	}

	applyWindow(rs, stmt.Offset, stmt.Limit)
	return rs, nil
}

// loadRows fetches the referenced fields. SELECT without FROM evaluates
// over one empty row.
func loadRows(provider DataProvider, stmt *SelectStatement) ([][]result.Value, error) {
	if stmt.Table == "" {
		return [][]result.Value{{}}, nil
	}
	if provider == nil {
		return nil, fmt.Errorf("no data provider for table %s", stmt.Table)
	}
	provided, err := provider.Provide(stmt.Table, stmt.Fields)
	if err != nil {
		return nil, fmt.Errorf("failed to read table %s: %w", stmt.Table, err)
	}
	rows := make([][]result.Value, len(provided))
	for i, r := range provided {
		rows[i] = r.Values
	}
	return rows, nil
}

func filterRows(base *scope, rows [][]result.Value, cond Expression, clause string) ([][]result.Value, error) {
	kept := rows[:0:0]
	for _, r := range rows {
		v, err := base.withRow(r).eval(cond)
		if err != nil {
			return nil, err
		}
		keep, err := truthy(v, clause)
		if err != nil {
			return nil, err
		}
		if keep {
			kept = append(kept, r)
		}
	}
	return kept, nil
}

// partition splits rows by the GROUP BY keys in first-seen order. Without
// keys every row, possibly none, forms a single partition.
func partition(base *scope, rows [][]result.Value, keys []Expression) ([][][]result.Value, error) {
	if len(keys) == 0 {
		return [][][]result.Value{rows}, nil
	}

	index := make(map[string]int)
	var parts [][][]result.Value
	var key strings.Builder
	for _, r := range rows {
		key.Reset()
		s := base.withRow(r)
		for _, k := range keys {
			v, err := s.eval(k)
			if err != nil {
				return nil, err
			}
			key.WriteString(v.Key())
			key.WriteByte(0)
		}
		i, ok := index[key.String()]
		if !ok {
			i = len(parts)
			index[key.String()] = i
			parts = append(parts, nil)
		}
		parts[i] = append(parts[i], r)
	}
	return parts, nil
}

// project evaluates hidden then visible selections into one row
func project(s *scope, selections []Selection) (result.Row, error) {
	values := make([]result.Value, len(selections))
	for i, sel := range selections {
		v, err := s.eval(sel.Expr)
		if err != nil {
			return result.Row{}, err
		}
		values[i] = v
	}
	return result.Row{Values: values}, nil
}

// distinctRows keeps the first row for each distinct visible tuple
func distinctRows(rs *result.ResultSet, rows []result.Row) []result.Row {
	seen := make(map[string]bool, len(rows))
	out := rows[:0:0]
	var key strings.Builder
	for _, row := range rows {
		key.Reset()
		for _, v := range rs.Visible(row) {
			key.WriteString(v.Key())
			key.WriteByte(0)
		}
		if seen[key.String()] {
			continue
		}
		seen[key.String()] = true
		out = append(out, row)
	}
	return out
}

// sortResult orders rows within each group, then groups by their first row.
// Empty groups sort last.
func sortResult(rs *result.ResultSet, order []OrderItem) error {
	var sortErr error
	less := func(a, b result.Row) bool {
		for _, item := range order {
			c, err := result.Compare(a.Values[item.Column], b.Values[item.Column])
			if err != nil {
				if sortErr == nil {
					sortErr = fmt.Errorf("ORDER BY %s: %w", item.Expr, err)
				}
				return false
			}
			if c == 0 {
				continue
			}
			if item.Desc {
				return c > 0
			}
			return c < 0
		}
		return false
	}

	for i := range rs.Groups {
		rows := rs.Groups[i].Rows
		sort.SliceStable(rows, func(x, y int) bool { return less(rows[x], rows[y]) })
	}
	sort.SliceStable(rs.Groups, func(x, y int) bool {
		gx, gy := rs.Groups[x], rs.Groups[y]
		if len(gx.Rows) == 0 || len(gy.Rows) == 0 {
			return len(gx.Rows) > len(gy.Rows)
		}
		return less(gx.Rows[0], gy.Rows[0])
	})
	return sortErr
}

// applyWindow skips offset rows and keeps at most limit rows counted across
// the concatenated groups. Groups left without rows are dropped.
func applyWindow(rs *result.ResultSet, offset int64, limit *int64) {
	if offset == 0 && limit == nil {
		return
	}
	skip := offset
	remaining := int64(-1)
	if limit != nil {
		remaining = *limit
	}

	groups := rs.Groups[:0]
	for _, g := range rs.Groups {
		rows := g.Rows
		if skip > 0 {
			n := skip
			if n > int64(len(rows)) {
				n = int64(len(rows))
			}
			rows = rows[n:]
			skip -= n
		}
		if remaining >= 0 && int64(len(rows)) > remaining {
			rows = rows[:remaining]
		}
		if remaining >= 0 {
			remaining -= int64(len(rows))
		}
		if len(rows) > 0 {
			groups = append(groups, result.Group{Rows: rows})
		}
	}
	rs.Groups = groups
}
