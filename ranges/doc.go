// Package ranges implements the lazy integer and character ranges produced
// by the `..` and `...` operators of the expression language.
//
// A range stores only its bounds. Length, membership and positional access
// are computed, and iteration yields elements on demand, so 1..1000000 costs
// the same as 1..2.
package ranges
