package store

import (
	"log/slog"
	"strings"

	"github.com/ardnew/scopex/pkg"
)

// Sentinel errors.
var (
	ErrContextKey     = pkg.NewError("context key error")
	ErrSubstitution   = pkg.NewError("substitution failed")
	ErrStackUnderflow = pkg.NewError("cannot pop base of stack")
	ErrLinkCycle      = pkg.NewError("link cycle")
	ErrNoEvaluator    = pkg.NewError("no expression evaluator registered")
	ErrNotStack       = pkg.NewError("value is not a stack")
)

// KeyError reports an index that could not be set or deleted.
type KeyError struct {
	Index string
	Msg   string
	Err   error // optional cause
}

func newKeyError(c *Context, idx string, cause error) *KeyError {
	var msg string

	if strings.HasPrefix(idx, ".") {
		msg = "'" + idx + "' not found in context"
	} else {
		scopes := c.CurrentFrame().Scopes()
		names := make([]string, 0, len(scopes))

		for i := len(scopes) - 1; i >= 0; i-- {
			name := scopes[i].Index.String()
			if name == "" {
				name = "."
			}

			names = append(names, "'"+name+"'")
		}

		msg = "index '" + idx + "' not found in context frame " + strings.Join(names, ", ")
	}

	return &KeyError{Index: idx, Msg: msg, Err: cause}
}

func (e *KeyError) Error() string { return e.Msg }

func (e *KeyError) Unwrap() error { return e.Err }

// Is matches [ErrContextKey].
func (e *KeyError) Is(target error) bool { return target == ErrContextKey }

// LogValue implements slog.LogValuer.
func (e *KeyError) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.String("error", e.Msg),
		slog.String("index", e.Index),
	}
	if e.Err != nil {
		attrs = append(attrs, slog.String("cause", e.Err.Error()))
	}

	return slog.GroupValue(attrs...)
}

// SubstitutionError reports a failed ${...} expression inside a string.
type SubstitutionError struct {
	Expr  string
	Start int // byte offset of Expr in the enclosing string
	End   int
	Err   error
}

func (e *SubstitutionError) Error() string {
	if e.Err == nil {
		return "substitution failed for ${" + e.Expr + "}"
	}

	return "substitution failed for ${" + e.Expr + "} (" + e.Err.Error() + ")"
}

func (e *SubstitutionError) Unwrap() error { return e.Err }

// Is matches [ErrSubstitution].
func (e *SubstitutionError) Is(target error) bool { return target == ErrSubstitution }

// LogValue implements slog.LogValuer.
func (e *SubstitutionError) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.String("error", ErrSubstitution.Error()),
		slog.String("expr", e.Expr),
		slog.Int("start", e.Start),
		slog.Int("end", e.End),
	}
	if e.Err != nil {
		attrs = append(attrs, slog.Any("cause", e.Err))
	}

	return slog.GroupValue(attrs...)
}
