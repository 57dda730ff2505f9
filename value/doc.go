// Package value implements the generic value protocol shared by the data
// store and the expression evaluator: indexing, assignment, iteration,
// truthiness, comparison and rendering of arbitrary Go values.
//
// Plain Go data (map[string]any, []any, strings, numbers, structs reached
// through reflection) works out of the box. Application types opt in to
// richer behavior by implementing the small interfaces in this package, such
// as [Indexer], [Assigner] or [Truther].
//
// A failed lookup is represented by [Missing], a falsy value that renders as
// the empty string and absorbs further indexing.
package value
