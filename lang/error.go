package lang

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/ardnew/scopex/pkg"
	"github.com/ardnew/scopex/value"
)

// Sentinel errors.
var (
	ErrExprCompile     = pkg.NewError("unable to parse expression")
	ErrExprEvaluate    = pkg.NewError("expression evaluation failed")
	ErrDivisionByZero  = pkg.NewError("math.division-error")
	ErrUnknownModifier = pkg.NewError("unknown modifier")
	ErrCacheVersion    = pkg.NewError("expression cache version mismatch")
	ErrCacheCorrupt    = pkg.NewError("expression cache corrupt")
)

// CompileError reports source that could not be parsed.
type CompileError struct {
	Source string
	Msg    string
	Col    int // 1-based
}

func (e *CompileError) Error() string {
	return e.Msg + " in \"" + e.Source + "\" at column " + strconv.Itoa(e.Col)
}

// Is matches [ErrExprCompile].
func (e *CompileError) Is(target error) bool { return target == ErrExprCompile }

// LogValue implements slog.LogValuer.
func (e *CompileError) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("error", e.Msg),
		slog.String("source", e.Source),
		slog.Int("col", e.Col))
}

// Caret renders the source with a marker under the failing column.
func (e *CompileError) Caret() string {
	return caret(e.Source, e.Col)
}

// EvalError reports a failure while evaluating a compiled expression.
type EvalError struct {
	Source string
	Err    error
	Col    int // 1-based; 0 if unknown
}

func (e *EvalError) Error() string {
	if e.Err == nil {
		return "error in expression '" + e.Source + "'"
	}

	return "error in expression '" + e.Source + "': " + e.Err.Error()
}

func (e *EvalError) Unwrap() error { return e.Err }

// Is matches [ErrExprEvaluate].
func (e *EvalError) Is(target error) bool { return target == ErrExprEvaluate }

// LogValue implements slog.LogValuer.
func (e *EvalError) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.String("error", ErrExprEvaluate.Error()),
		slog.String("source", e.Source),
		slog.Int("col", e.Col),
	}
	if e.Err != nil {
		attrs = append(attrs, slog.Any("cause", e.Err))
	}

	return slog.GroupValue(attrs...)
}

// Caret renders the source with a marker under the failing column.
func (e *EvalError) Caret() string {
	return caret(e.Source, e.Col)
}

func caret(src string, col int) string {
	if col < 1 {
		return src
	}

	return src + "\n" + strings.Repeat(" ", col-1) + "^"
}

// nodeError carries the column of the node where evaluation failed until
// the expression wraps it in an EvalError.
type nodeError struct {
	err error
	col int
}

func (e *nodeError) Error() string { return e.err.Error() }

func (e *nodeError) Unwrap() error { return e.err }

// fail attaches the column of n to err unless a deeper node already did.
func fail(n Node, err error) error {
	if err == nil {
		return nil
	}

	var ne *nodeError
	if errors.As(err, &ne) {
		return err
	}

	return &nodeError{err: err, col: n.Col()}
}

// typeError is the error for operand types an operator does not support.
func typeError(op string, a, b any) error {
	return fmt.Errorf("unsupported operand types for %s: '%s' and '%s'",
		op, value.TypeName(a), value.TypeName(b))
}

func unaryTypeError(op string, v any) error {
	return fmt.Errorf("bad operand type for unary %s: '%s'", op, value.TypeName(v))
}
