// Package render materializes query results for a consuming host.
//
// A result set becomes one of three host-native values: Records, one ordered
// record per row; Text, a message or a serialized document; or Nothing, after
// an interactive paging session has already shown the rows.
package render

// Value is the host-facing outcome of rendering. The set of implementations
// is closed: Records, Text and Nothing.
type Value interface {
	isValue()
}

// Records is the list of rows of a rendered result, in result order
type Records []Record

// Text is a message or a serialized document
type Text string

// Nothing is returned once an interactive pager has shown the rows
type Nothing struct{}

func (Records) isValue() {}
func (Text) isValue()    {}
func (Nothing) isValue() {}
