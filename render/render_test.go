package render

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vegasq/pqview/query"
	"github.com/vegasq/pqview/result"
)

// scriptedPrompter replays inputs and records every prompt shown
type scriptedPrompter struct {
	inputs  []string
	prompts []string
}

func (s *scriptedPrompter) Prompt(prompt string) (string, error) {
	s.prompts = append(s.prompts, prompt)
	if len(s.inputs) == 0 {
		return "", io.EOF
	}
	in := s.inputs[0]
	s.inputs = s.inputs[1:]
	return in, nil
}

func numbered(n int) *result.ResultSet {
	rs := &result.ResultSet{Titles: []string{"n"}, Groups: []result.Group{{}}}
	for i := 0; i < n; i++ {
		rs.Groups[0].Rows = append(rs.Groups[0].Rows, result.Row{Values: []result.Value{result.Integer(int64(i))}})
	}
	return rs
}

func TestRenderEmpty(t *testing.T) {
	assert.Equal(t, Text(NoDataMessage), Render(nil, Options{}))
	assert.Equal(t, Text(NoDataMessage), Render(&result.ResultSet{Titles: []string{"a"}}, Options{}))
	assert.Equal(t, Text(NoDataMessage), Render(&result.ResultSet{Titles: []string{"a"}, Groups: []result.Group{{}}}, Options{}))
}

func TestRenderRecords(t *testing.T) {
	rs := &result.ResultSet{
		Titles: []string{"name", "age"},
		Groups: []result.Group{{Rows: []result.Row{
			{Values: []result.Value{result.Text("alice"), result.Integer(30)}},
		}}},
	}

	got := Render(rs, Options{})
	recs, ok := got.(Records)
	require.True(t, ok, "got %T", got)
	require.Len(t, recs, 1)

	name, _ := recs[0].Get("name")
	age, _ := recs[0].Get("age")
	assert.Equal(t, "alice", name)
	assert.Equal(t, int64(30), age)
	assert.Equal(t, []string{"name", "age"}, recs[0].Columns())

	doc, err := json.Marshal(recs)
	require.NoError(t, err)
	assert.Equal(t, `[{"name":"alice","age":30}]`, string(doc))
}

func TestRenderRejectsMalformedRows(t *testing.T) {
	rs := &result.ResultSet{
		Titles: []string{"name", "age"},
		Groups: []result.Group{
			{Rows: []result.Row{{Values: []result.Value{result.Text("alice"), result.Integer(30)}}}},
			{Rows: []result.Row{{Values: []result.Value{result.Text("bob")}}}},
		},
	}
	for _, opts := range []Options{{}, {Pagination: true, PageSize: 1, Prompter: &scriptedPrompter{}, Out: io.Discard}} {
		assert.PanicsWithError(t, "row width does not match titles: group 0 row 1 has 1 values, want 2", func() {
			Render(rs, opts)
		})
	}
}

func TestRenderNonFiniteFloatRecord(t *testing.T) {
	rs := &result.ResultSet{
		Titles: []string{"id", "x"},
		Groups: []result.Group{{Rows: []result.Row{
			{Values: []result.Value{result.Integer(1), result.Float(1.5)}},
			{Values: []result.Value{result.Integer(2), result.Float(math.NaN())}},
		}}},
	}
	doc, err := json.Marshal(Render(rs, Options{}))
	require.NoError(t, err)
	assert.Equal(t, `[{"id":1,"x":1.5},{"id":2,"x":null}]`, string(doc))

	assert.Equal(t, Text(`[{"id":1,"x":1.5},{"id":2,"x":null}]`), Select(&query.SelectedGroups{Set: rs}, Options{Format: FormatJSON}))
}

func TestRenderHidesHiddenColumns(t *testing.T) {
	rs := &result.ResultSet{
		Titles: []string{"name"},
		Hidden: 1,
		Groups: []result.Group{{Rows: []result.Row{
			{Values: []result.Value{result.Integer(99), result.Text("alice")}},
			{Values: []result.Value{result.Integer(98), result.Text("bob")}},
		}}},
	}
	recs := Render(rs, Options{}).(Records)
	for _, r := range recs {
		assert.Equal(t, []string{"name"}, r.Columns())
		assert.Equal(t, 1, r.Len())
	}
	v, _ := recs[1].Get("name")
	assert.Equal(t, "bob", v)
}

func TestRenderFlattensGroups(t *testing.T) {
	rs := &result.ResultSet{
		Titles: []string{"x"},
		Groups: []result.Group{
			{Rows: []result.Row{{Values: []result.Value{result.Text("A")}}}},
			{Rows: []result.Row{{Values: []result.Value{result.Text("B")}}}},
		},
	}
	recs := Render(rs, Options{}).(Records)
	require.Len(t, recs, 2)
	a, _ := recs[0].Get("x")
	b, _ := recs[1].Get("x")
	assert.Equal(t, "A", a)
	assert.Equal(t, "B", b)
	assert.Len(t, rs.Groups, 2, "input result set is not modified")

	flat := Render(rs.Flattened(), Options{}).(Records)
	assert.Equal(t, recs, flat)
}

func TestRenderFlattenedEmptyFirstGroup(t *testing.T) {
	rs := &result.ResultSet{
		Titles: []string{"x"},
		Groups: []result.Group{{}, {Rows: []result.Row{{Values: []result.Value{result.Text("B")}}}}},
	}
	recs, ok := Render(rs, Options{}).(Records)
	require.True(t, ok)
	assert.Len(t, recs, 1)
}

func TestRenderWithoutPagingWhenOnePage(t *testing.T) {
	p := &scriptedPrompter{}
	got := Render(numbered(10), Options{Pagination: true, PageSize: 10, Prompter: p, Out: io.Discard})
	recs, ok := got.(Records)
	require.True(t, ok)
	assert.Len(t, recs, 10)
	assert.Empty(t, p.prompts)
}

func TestRenderPaginated(t *testing.T) {
	var out strings.Builder
	p := &scriptedPrompter{inputs: []string{"p", "n", "x", "n", "n", " p ", "q"}}

	got := Render(numbered(25), Options{Pagination: true, PageSize: 10, Prompter: p, Out: &out})
	assert.Equal(t, Nothing{}, got)

	assert.Equal(t, []string{
		FirstPagePrompt,  // p: already first
		FirstPagePrompt,  // n -> 2
		MiddlePagePrompt, // x: invalid
		MiddlePagePrompt, // n -> 3
		LastPagePrompt,   // n: already last
		LastPagePrompt,   // p -> 2
		MiddlePagePrompt, // q
	}, p.prompts)

	text := out.String()
	assert.Contains(t, text, FirstPageMessage)
	assert.Contains(t, text, InvalidInputMessage)
	assert.Contains(t, text, LastPageMessage)
	assert.Equal(t, 2, strings.Count(text, "Page 2/3"))
	assert.Equal(t, 1, strings.Count(text, "Page 3/3"))
}

func TestPagerPages(t *testing.T) {
	pager := NewPager(numbered(25), 10, &scriptedPrompter{}, io.Discard)
	assert.Equal(t, 3, pager.Pages())
	assert.Len(t, pager.Records(1), 10)
	assert.Len(t, pager.Records(2), 10)
	assert.Len(t, pager.Records(3), 5)
	assert.Nil(t, pager.Records(4))

	first, _ := pager.Records(3)[0].Get("n")
	assert.Equal(t, int64(20), first)
}

func TestPagerNextOnLastPageStays(t *testing.T) {
	p := &scriptedPrompter{inputs: []string{"n", "n", "n", "n"}}
	pager := NewPager(numbered(25), 10, p, io.Discard)
	require.NoError(t, pager.Run())
	assert.Equal(t, 3, pager.Page())
}

func TestPagerEndsOnPromptError(t *testing.T) {
	p := &errPrompter{err: fmt.Errorf("terminal closed")}
	pager := NewPager(numbered(25), 10, p, io.Discard)
	assert.EqualError(t, pager.Run(), "terminal closed")
}

type errPrompter struct{ err error }

func (e *errPrompter) Prompt(string) (string, error) { return "", e.err }

func TestLinePrompter(t *testing.T) {
	var out strings.Builder
	lp := NewLinePrompter(strings.NewReader("n\r\nq"), &out)

	line, err := lp.Prompt("next?")
	require.NoError(t, err)
	assert.Equal(t, "n", line)

	line, err = lp.Prompt("next?")
	require.NoError(t, err)
	assert.Equal(t, "q", line)

	_, err = lp.Prompt("next?")
	assert.ErrorIs(t, err, io.EOF)
	assert.Equal(t, "next? next? next? ", out.String())
}

func TestCell(t *testing.T) {
	assert.Equal(t, 3.14, Cell(result.Float(3.14)))
	assert.Equal(t, int64(42), Cell(result.Integer(42)))
	assert.Equal(t, "hi", Cell(result.Text("hi")))
	assert.Equal(t, true, Cell(result.Boolean(true)))
	assert.Nil(t, Cell(result.Null()))
	assert.Equal(t, time.Unix(1000, 0).UTC(), Cell(result.DateTime(1000)))
	assert.Equal(t, time.Date(9999, 12, 31, 0, 0, 0, 0, time.UTC), Cell(result.DateTime(253402214400)))
	assert.Equal(t, "2024-03-15", Cell(result.Date(time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC))))
	assert.Equal(t, "01:02:03", Cell(result.Time(time.Hour+2*time.Minute+3*time.Second)))
	assert.Equal(t, "1..5", Cell(result.Range(result.Integer(1), result.Integer(5))))
}

func TestCellArrays(t *testing.T) {
	ints := result.MustArray(result.IntegerType, []result.Value{result.Integer(1), result.Integer(2), result.Integer(3)})
	assert.Equal(t, []int64{1, 2, 3}, Cell(ints))

	floats := result.MustArray(result.FloatType, []result.Value{result.Float(0.5)})
	assert.Equal(t, []float64{0.5}, Cell(floats))

	bools := result.MustArray(result.BooleanType, []result.Value{result.Boolean(true), result.Boolean(false)})
	assert.Equal(t, []bool{true, false}, Cell(bools))

	texts := result.MustArray(result.TextType, []result.Value{result.Text("a")})
	assert.Equal(t, []string{"a"}, Cell(texts))

	dynamic := result.MustArray(result.DynamicType, []result.Value{result.Integer(1), result.Text("b"), result.Null()})
	assert.Equal(t, []string{"1", "b", "NULL"}, Cell(dynamic))

	empty := result.MustArray(result.IntegerType, nil)
	assert.Equal(t, []int64{}, Cell(empty))
}

func TestCellArrayPanics(t *testing.T) {
	for _, elem := range []result.DataType{result.UndefinedType, result.AnyType, result.NullType} {
		arr, err := result.NewArray(elem, nil)
		require.NoError(t, err)
		assert.Panics(t, func() { Cell(arr) }, elem.String())
	}
}

func TestCellHandlesEveryKind(t *testing.T) {
	samples := map[result.Kind]result.Value{
		result.KindInteger:  result.Integer(1),
		result.KindFloat:    result.Float(1),
		result.KindText:     result.Text("a"),
		result.KindBoolean:  result.Boolean(true),
		result.KindDate:     result.Date(time.Unix(0, 0)),
		result.KindTime:     result.Time(0),
		result.KindDateTime: result.DateTime(0),
		result.KindArray:    result.MustArray(result.TextType, nil),
		result.KindRange:    result.Range(result.Integer(0), result.Integer(1)),
		result.KindNull:     result.Null(),
	}
	for _, k := range result.Kinds() {
		v, ok := samples[k]
		require.True(t, ok, "no sample for kind %s", k)
		assert.NotPanics(t, func() { Cell(v) }, k.String())
	}
}

func TestCellHandlesEveryElementType(t *testing.T) {
	fatal := map[result.TypeKind]bool{result.TypeUndefined: true, result.TypeAny: true, result.TypeNull: true}
	for _, k := range result.TypeKinds() {
		arr := result.MustArray(result.DataType{Kind: k}, nil)
		if fatal[k] {
			assert.Panics(t, func() { Cell(arr) }, k.String())
		} else {
			assert.NotPanics(t, func() { Cell(arr) }, k.String())
		}
	}
}

func TestSelect(t *testing.T) {
	rs := &result.ResultSet{
		Titles: []string{"name", "age"},
		Groups: []result.Group{{Rows: []result.Row{
			{Values: []result.Value{result.Text("alice"), result.Integer(30)}},
		}}},
	}
	outcome := &query.SelectedGroups{Set: rs}

	assert.Equal(t, Text(`[{"name":"alice","age":30}]`), Select(outcome, Options{Format: FormatJSON}))
	assert.Equal(t, Text("{\"name\":\"alice\",\"age\":30}\n"), Select(outcome, Options{Format: FormatJSONLines}))
	assert.Equal(t, Text("name,age\nalice,30\n"), Select(outcome, Options{Format: FormatCSV}))

	recs, ok := Select(outcome, Options{Format: FormatRender}).(Records)
	require.True(t, ok)
	assert.Len(t, recs, 1)
}

func TestSelectPlaceholders(t *testing.T) {
	empty := &query.SelectedGroups{Set: &result.ResultSet{Titles: []string{"a"}, Groups: []result.Group{{}}}}

	assert.Equal(t, Text(NoJSONMessage), Select(empty, Options{Format: FormatJSON}))
	assert.Equal(t, Text(NoJSONMessage), Select(empty, Options{Format: FormatJSONLines}))
	assert.Equal(t, Text(NoCSVMessage), Select(empty, Options{Format: FormatCSV}))
	assert.Equal(t, Text(NoDataMessage), Select(empty, Options{Format: FormatRender}))

	set := &query.SetGlobalVariable{Name: "@x", Value: result.Integer(1)}
	for _, f := range []Format{FormatRender, FormatJSON, FormatJSONLines, FormatCSV} {
		assert.Equal(t, Text(NotSelectedGroupsMessage), Select(set, Options{Format: f}), f.String())
	}
}

func TestParseFormat(t *testing.T) {
	for _, f := range []Format{FormatRender, FormatJSON, FormatJSONLines, FormatCSV} {
		got, err := ParseFormat(f.String())
		require.NoError(t, err)
		assert.Equal(t, f, got)
	}
	got, err := ParseFormat("JSON")
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, got)

	_, err = ParseFormat("xml")
	assert.ErrorContains(t, err, `unsupported output format "xml"`)
}
