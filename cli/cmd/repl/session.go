package repl

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/ardnew/scopex/lang"
	"github.com/ardnew/scopex/log"
	"github.com/ardnew/scopex/store"
	"github.com/ardnew/scopex/value"
)

// commandPrefix introduces a REPL command instead of an expression.
const commandPrefix = ":"

// commands are the REPL commands, in help order.
var commands = []struct { //nolint:gochecknoglobals
	name, args, help string
}{
	{"frame", "PATH", "Push a frame at PATH"},
	{"scope", "PATH", "Push a scope at PATH onto the current frame"},
	{"pop", "", "Pop the innermost scope, or the frame when it has one scope"},
	{"set", "PATH EXPR", "Assign the value of EXPR to PATH"},
	{"keys", "[PATH]", "List the keys of PATH or of the current scope"},
	{"sub", "TEXT", "Substitute ${...} expressions in TEXT"},
	{"edit", "", "Edit the root data as YAML in $EDITOR"},
	{"clear", "", "Clear the screen"},
	{"help", "", "Print this help"},
	{"quit", "", "Exit the REPL"},
}

// commandNames returns the command names with the command prefix.
func commandNames() []string {
	names := make([]string, len(commands))
	for i, c := range commands {
		names[i] = commandPrefix + c.name
	}

	return names
}

func helpMessage() string {
	var b strings.Builder

	b.WriteString("Type an expression to evaluate it, or a command:\n\n")

	for _, c := range commands {
		fmt.Fprintf(&b, "  %-16s %s\n", commandPrefix+c.name+" "+c.args, c.help)
	}

	b.WriteString(`
Completions appear as you type; Tab / Shift-Tab cycle through them.
Up/Down browse history. Ctrl+C on an empty line or Ctrl+D exits.`)

	return b.String()
}

// reply is the outcome of one line of input.
type reply struct {
	text  string
	err   error
	quit  bool
	clear bool
	edit  bool
}

// session evaluates REPL input against a Context.
type session struct {
	ctx    context.Context //nolint:containedctx
	c      *store.Context
	logger log.Logger
}

func newSession(ctx context.Context, c *store.Context, logger log.Logger) *session {
	return &session{ctx: ctx, c: c, logger: logger}
}

// prompt returns the current frame index, or "." at the root.
func (s *session) prompt() string {
	if f := s.c.GetFrame(); f != "" {
		return f
	}

	return "."
}

// exec runs one line of input.
func (s *session) exec(line string) reply {
	line = strings.TrimSpace(line)
	if line == "" {
		return reply{}
	}

	if cmd, ok := strings.CutPrefix(line, commandPrefix); ok {
		return s.command(cmd)
	}

	v, err := lang.Eval(s.c, line)

	s.logger.TraceContext(s.ctx, "repl eval",
		slog.String("input", line),
		slog.String("type", value.TypeName(v)),
		slog.Bool("ok", err == nil),
	)

	if err != nil {
		return reply{err: err}
	}

	return reply{text: value.Repr(v)}
}

func (s *session) command(input string) reply {
	name, arg, _ := strings.Cut(strings.TrimSpace(input), " ")
	arg = strings.TrimSpace(arg)

	s.logger.TraceContext(s.ctx, "repl command",
		slog.String("command", name), slog.String("arg", arg))

	switch name {
	case "q", "quit", "exit":
		return reply{quit: true}

	case "h", "help":
		return reply{text: helpMessage()}

	case "c", "clear":
		return reply{clear: true}

	case "e", "edit":
		return reply{edit: true}

	case "frame":
		if arg == "" {
			return reply{err: ErrMissingArgument.With(slog.String("command", name))}
		}

		return s.done(s.c.PushFrame(arg))

	case "scope":
		if arg == "" {
			return reply{err: ErrMissingArgument.With(slog.String("command", name))}
		}

		return s.done(s.c.PushScope(arg))

	case "pop":
		if s.c.CurrentFrame().Len() > 1 {
			return s.done(s.c.PopScope())
		}

		return s.done(s.c.PopFrame())

	case "set":
		path, src, ok := strings.Cut(arg, " ")
		if !ok || strings.TrimSpace(src) == "" {
			return reply{err: ErrMissingArgument.With(slog.String("command", name))}
		}

		v, err := lang.Eval(s.c, src)
		if err != nil {
			return reply{err: err}
		}

		if err := s.c.Set(path, v); err != nil {
			return reply{err: err}
		}

		return reply{text: path + " = " + value.Repr(v)}

	case "keys":
		keys, err := s.keys(arg)
		if err != nil {
			return reply{err: err}
		}

		return reply{text: strings.Join(keys, "\n")}

	case "sub":
		out, err := s.c.Substitute(arg)
		if err != nil {
			return reply{err: err}
		}

		return reply{text: out}
	}

	return reply{err: ErrUnknownCommand.With(slog.String("command", name))}
}

func (s *session) done(err error) reply {
	if err != nil {
		return reply{err: err}
	}

	return reply{text: "frame " + s.prompt()}
}

// keys returns the sorted keys of path, or the distinct keys of every scope
// in the current frame when path is empty.
func (s *session) keys(path string) ([]string, error) {
	var objs []any

	if path == "" {
		objs = s.c.CurrentFrame().Objs()
	} else {
		v, err := s.c.Get(path)
		if err != nil {
			return nil, err
		}

		objs = []any{v}
	}

	var out []string

	for _, obj := range objs {
		for _, k := range value.Keys(obj) {
			out = append(out, value.Str(k))
		}
	}

	slices.Sort(out)

	return slices.Compact(out), nil
}

// replaceRoot swaps the session Context for one over root. Frames and
// scopes are reset.
func (s *session) replaceRoot(root any) {
	s.c = store.New(root,
		store.WithName(s.c.Name()),
		store.WithLogger(s.c.Logger()),
		store.WithThreadSafe(s.c.ThreadSafe()),
	)

	s.logger.DebugContext(s.ctx, "repl root replaced",
		slog.String("type", value.TypeName(root)))
}
