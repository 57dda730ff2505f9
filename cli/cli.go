package cli

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/ardnew/scopex/cli/cmd"
	"github.com/ardnew/scopex/lang"
	"github.com/ardnew/scopex/log"
	"github.com/ardnew/scopex/pkg"
)

// baseConfig is the base name of the configuration file and the name of the
// mapping within it that holds flag values.
const baseConfig = "config"

// baseExprCache is the file name of the default compiled expression cache.
const baseExprCache = "expcache.bin"

// CLI is the top-level command-line interface for scopex.
type CLI struct {
	Log   logConfig   `embed:"" group:"log"   prefix:"log-"`
	Pprof pprofConfig `embed:"" group:"pprof" prefix:"pprof-"`

	Version kong.VersionFlag `help:"Print version and exit" short:"V"`

	Data      []string `help:"Data file(s) merged into the root object, or '-' for stdin" placeholder:"FILE" short:"d" type:"existingfile"`
	RootFrame string   `help:"Frame pushed before any command runs"                      placeholder:"PATH" short:"r"`
	ExprCache string   `help:"Compiled expression cache loaded at startup"               placeholder:"FILE" default:"${exprCache}" type:"path"`

	Init  cmd.Init  `cmd:"" help:"Write a configuration file with the current flag values"`
	Sub   cmd.Sub   `cmd:"" help:"Substitute ${...} expressions in text"`
	Index cmd.Index `cmd:"" help:"Parse path indices"`
	Keys  cmd.Keys  `cmd:"" help:"List every key reachable from a path"`
	Warm  cmd.Warm  `cmd:"" help:"Compile expressions and write the expression cache"`
	Repl  cmd.Repl  `cmd:"" help:"Evaluate expressions interactively"`

	Eval cmd.Eval `cmd:"" default:"withargs" help:"Evaluate expressions"`
}

// Run executes the scopex CLI with the given context and arguments.
// The exit function is called with the appropriate exit code upon completion.
func Run(
	ctx context.Context,
	exit func(code int),
	args ...string,
) error {
	var cli CLI

	if err := pkg.MkdirAll(); err != nil {
		return err
	}

	configFilePath := pkg.ConfigPath(baseConfig)

	vars := kong.Vars{
		"version":               versionString(),
		"exprCache":             pkg.CachePath(baseExprCache),
		cmd.ConfigIdentifier:    configFilePath,
		cmd.CacheIdentifier:     pkg.CacheDir(),
		cmd.ExprCacheIdentifier: pkg.CachePath(baseExprCache),
	}.
		CloneWith(cli.Log.vars()).
		CloneWith(cli.Pprof.vars())

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Logger flags apply before kong parses so that errors raised while
	// parsing are already formatted as requested.
	cli.Log.scan(args)

	parser, err := kong.New(&cli,
		kong.Name(pkg.Name),
		kong.Description(pkg.Description),
		kong.UsageOnError(),
		kong.Exit(exit),
		kong.ExplicitGroups(
			[]kong.Group{cli.Log.group(), cli.Pprof.group()},
		),
		kong.BindSingletonProvider(func() context.Context {
			return ctx
		}),
		kong.ConfigureHelp(
			kong.HelpOptions{
				Compact:             true,
				Summary:             true,
				Tree:                true,
				FlagsLast:           false,
				NoAppSummary:        false,
				NoExpandSubcommands: true,
			}),
		kong.Configuration(kong.JSON, configFilePath+".json"),
		kong.Configuration(resolve(baseConfig), configFilePath),
		vars,
	)
	if err != nil {
		return err
	}

	ktx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	ctx = cmd.WithContext(ctx, ktx)
	ctx = cmd.WithSourceFiles(ctx, cli.Data)
	ctx = cmd.WithRootFrame(ctx, cli.RootFrame)

	cli.Log.start(ctx)

	// [pprofConfig.start] is no-op unless built with tag pprof and enabled.
	defer cli.Pprof.start(ctx)()

	loadExprCache(ctx, cli.ExprCache)

	log.DebugContext(ctx, "run command", slog.String("command", ktx.Command()))

	return ktx.Run(ctx, &cli)
}

// loadExprCache preloads compiled expressions from path. A missing file is
// not an error, and an unreadable or stale cache is logged and skipped.
func loadExprCache(ctx context.Context, path string) {
	if path == "" {
		return
	}

	f, err := os.Open(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			log.WarnContext(ctx, "open expression cache",
				slog.String("path", path), slog.Any("error", err))
		}

		return
	}
	defer f.Close()

	n, err := lang.Load(f)
	if err != nil {
		log.WarnContext(ctx, "skip expression cache",
			slog.String("path", path), slog.Any("error", err))

		return
	}

	log.DebugContext(ctx, "expression cache loaded",
		slog.String("path", path), slog.Int("expressions", n))
}

// versionString is printed by --version.
func versionString() string {
	authors := make([]string, len(pkg.Author))
	for i, a := range pkg.Author {
		authors[i] = a.String()
	}

	return pkg.Name + " " + pkg.Version + " (" + strings.Join(authors, ", ") + ")"
}
