// Package lang compiles and evaluates the expression language used to read
// and combine values in a [store.Context].
//
// Expressions are compiled once per distinct source string and cached for
// the life of the process:
//
//	e, err := lang.Compile(`upper:name + "!"`)
//	v, err := e.Eval(c)
//
// Operands are numbers, strings, timespans (10s, 2h), regular expressions
// (/re/), the constants True, False, None, yes and no, lists, dicts,
// key=value pairs, backtick functions and context variables. Variables are
// data indices (see package index): name, user.email, .absolute, $path and
// $$ for the current scope object.
//
// Operators, from tightest to loosest binding:
//
//	+x -x                 sign
//	a...b                 exclusive range
//	a..b                  inclusive range
//	x[i] x(p) x[a:b:c] x.name
//	name:x                modifier
//	x::"spec"             format
//	* / // % bitand bitor bitxor
//	+ -
//	x|filter
//	== != < <= > >= lt lte gt gte ~= ^= $= is [not] [not] in [not] instr matches fnmatches
//	not x
//	and
//	or
//	cond ? a : b
//
// Importing lang registers its evaluator with the store package, so
// [store.Context.Eval] and [store.Context.Substitute] work on any Context.
package lang
