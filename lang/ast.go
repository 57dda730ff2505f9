package lang

import (
	"encoding/gob"
	"time"

	"github.com/ardnew/scopex/store"
)

// Node is a compiled expression tree node.
//
// Node types keep their fields exported so a compiled tree can be
// serialized with encoding/gob (see [Dump]).
type Node interface {
	Eval(c *store.Context) (any, error)
	Col() int
}

// Pos is the 1-based source column of a node.
type Pos struct {
	At int
}

// Col returns the source column.
func (p Pos) Col() int { return p.At }

type (
	// Const is a literal: int, float64, string, bool, nil or time.Duration.
	Const struct {
		Value any
		Pos
	}

	// Regex is a /pattern/ literal.
	Regex struct {
		Pattern *Pattern
		Pos
	}

	// Var is a bare or $-prefixed data index.
	Var struct {
		Path string
		Pos
	}

	// Scope is $$, the object of the current scope.
	Scope struct {
		Pos
	}

	// List is [a, b, ...].
	List struct {
		Items []Node
		Pos
	}

	// Dict is {k: v, ...}.
	Dict struct {
		Keys   []Node
		Values []Node
		Pos
	}

	// Pairs is k=v, k2=v2.
	Pairs struct {
		Keys   []string
		Values []Node
		Pos
	}

	// Func is a backtick function `expr`.
	Func struct {
		Body   Node
		Source string
		Pos
	}

	// Unary is a sign or not.
	Unary struct {
		X  Node
		Op string
		Pos
	}

	// Binary is an arithmetic, range, format or filter operation.
	Binary struct {
		L, R Node
		Op   string
		Pos
	}

	// Logic is a short-circuiting and/or.
	Logic struct {
		L, R Node
		Op   string
		Pos
	}

	// Compare is a chain of comparisons: Operands[i] Ops[i] Operands[i+1].
	Compare struct {
		Operands []Node
		Ops      []string
		Pos
	}

	// Ternary is cond ? then : else.
	Ternary struct {
		Cond, Then, Else Node
		Pos
	}

	// Modify applies the named modifier to X.
	Modify struct {
		X    Node
		Name string
		Pos
	}

	// Subscript is X[Key].
	Subscript struct {
		X, Key Node
		Pos
	}

	// Slice is X[Start:Stop:Step]; omitted parts are nil.
	Slice struct {
		X                 Node
		Start, Stop, Step Node
		Pos
	}

	// Call is X(Arg); Arg is nil for an empty call.
	Call struct {
		X, Arg Node
		Pos
	}

	// LiteralIndex is X.Path, looked up with X as the data frame.
	LiteralIndex struct {
		X    Node
		Path string
		Pos
	}
)

func init() {
	for _, n := range []Node{
		&Const{}, &Regex{}, &Var{}, &Scope{}, &List{}, &Dict{}, &Pairs{},
		&Func{}, &Unary{}, &Binary{}, &Logic{}, &Compare{}, &Ternary{},
		&Modify{}, &Subscript{}, &Slice{}, &Call{}, &LiteralIndex{},
	} {
		gob.Register(n)
	}

	gob.Register(time.Duration(0))
}
