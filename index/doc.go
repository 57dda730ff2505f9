// Package index parses and builds dotted data indices such as
// `.site.pages.0."index.html"`.
//
// An [Index] is an immutable sequence of tokens, each a string key or an int
// position, plus a flag recording whether the index is absolute (written with
// a leading dot, resolved from the root of a data store). Parsed indices are
// cached process-wide by source text.
package index
