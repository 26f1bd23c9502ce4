package query

import (
	"sort"
	"strings"

	"github.com/vegasq/pqview/result"
)

// Schema describes the tables a query may reference
type Schema struct {
	// Tables maps a table name to its column names in declaration order
	Tables map[string][]string
	// Types maps a table name to the data type of each column
	Types map[string]map[string]result.DataType
}

// TableNames returns the table names in sorted order
func (s Schema) TableNames() []string {
	names := make([]string, 0, len(s.Tables))
	for name := range s.Tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// HasTable reports whether the schema defines table
func (s Schema) HasTable(table string) bool {
	_, ok := s.Tables[table]
	return ok
}

// HasColumn reports whether table defines column
func (s Schema) HasColumn(table, column string) bool {
	for _, c := range s.Tables[table] {
		if c == column {
			return true
		}
	}
	return false
}

// ColumnType returns the declared type of a column, Dynamic when unknown
func (s Schema) ColumnType(table, column string) result.DataType {
	if t, ok := s.Types[table][column]; ok {
		return t
	}
	return result.DynamicType
}

// Environment holds everything the parser and evaluator resolve names
// against. Globals survive across statements so SET is visible to later
// queries evaluated with the same environment.
type Environment struct {
	Schema       Schema
	Functions    *FunctionRegistry
	Aggregations *AggregationRegistry
	Globals      map[string]result.Value
}

// NewEnvironment creates an environment over schema with the standard
// scalar functions and aggregations registered
func NewEnvironment(schema Schema) *Environment {
	return &Environment{
		Schema:       schema,
		Functions:    StandardFunctions(),
		Aggregations: StandardAggregations(),
		Globals:      make(map[string]result.Value),
	}
}

// Global returns the value of a global variable
func (e *Environment) Global(name string) (result.Value, bool) {
	v, ok := e.Globals[globalKey(name)]
	return v, ok
}

// SetGlobal defines or replaces a global variable
func (e *Environment) SetGlobal(name string, v result.Value) {
	if e.Globals == nil {
		e.Globals = make(map[string]result.Value)
	}
	e.Globals[globalKey(name)] = v
}

func globalKey(name string) string {
	return strings.ToLower(strings.TrimPrefix(name, "@"))
}
