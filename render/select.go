package render

import (
	"fmt"
	"strings"

	"github.com/vegasq/pqview/query"
)

// Format is an output representation
type Format int

const (
	FormatRender Format = iota
	FormatJSON
	FormatJSONLines
	FormatCSV
)

var formatNames = map[Format]string{
	FormatRender:    "render",
	FormatJSON:      "json",
	FormatJSONLines: "jsonl",
	FormatCSV:       "csv",
}

// String returns the flag spelling of the format
func (f Format) String() string {
	if name, ok := formatNames[f]; ok {
		return name
	}
	return fmt.Sprintf("Format(%d)", int(f))
}

// ParseFormat parses a flag value such as "json"
func ParseFormat(s string) (Format, error) {
	for f, name := range formatNames {
		if strings.EqualFold(s, name) {
			return f, nil
		}
	}
	return 0, fmt.Errorf("unsupported output format %q (supported: render, json, jsonl, csv)", s)
}

// Select materializes an evaluation outcome in the requested format.
// Serializer failures, including empty results, yield the format's
// placeholder message.
func Select(outcome query.EvaluationResult, opts Options) Value {
	groups, ok := outcome.(*query.SelectedGroups)
	if !ok || groups == nil {
		return Text(NotSelectedGroupsMessage)
	}

	switch opts.Format {
	case FormatJSON:
		doc, err := groups.Set.AsJSON()
		if err != nil {
			return Text(NoJSONMessage)
		}
		return Text(doc)
	case FormatJSONLines:
		doc, err := groups.Set.AsJSONLines()
		if err != nil {
			return Text(NoJSONMessage)
		}
		return Text(doc)
	case FormatCSV:
		doc, err := groups.Set.AsCSV()
		if err != nil {
			return Text(NoCSVMessage)
		}
		return Text(doc)
	default:
		return Render(groups.Set, opts)
	}
}
