package repl

import "github.com/ardnew/scopex/pkg"

// Sentinel errors.
var (
	ErrOutOfBounds     = pkg.NewError("index out of range")
	ErrEditDeclined    = pkg.NewError("decline edit")
	ErrUnknownCommand  = pkg.NewError("unknown command (try :help)")
	ErrMissingArgument = pkg.NewError("missing command argument (try :help)")
)
