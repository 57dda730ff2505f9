package cmd

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"reflect"
	"slices"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"
	"github.com/ohler55/ojg/oj"

	"github.com/ardnew/scopex/log"
	"github.com/ardnew/scopex/pkg"
	"github.com/ardnew/scopex/profile"
)

// Init generates a configuration file with the current flag values.
type Init struct {
	Force bool `help:"Overwrite existing configuration file" short:"f"`
	JSON  bool `help:"Write the JSON configuration file instead of YAML"`
}

// ignoredFlags are never written to a configuration file.
var ignoredFlags = []string{"help", "version", profile.Tag} //nolint:gochecknoglobals

// Run executes the init command.
func (i *Init) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	ktx := kongContextFrom(ctx)
	if ktx == nil {
		return ErrWriteConfig.Wrap(errors.New("no command-line context"))
	}

	confPath := kongVar(ctx, ConfigIdentifier, pkg.ConfigPath(ConfigIdentifier))
	if i.JSON {
		confPath += ".json"
	}

	if _, err := os.Stat(confPath); err == nil && !i.Force {
		return ErrWriteConfig.
			With(slog.String("file", confPath)).
			With(slog.Bool("exists", true)).
			Wrap(ErrFileExists)
	}

	values := flagValues(ktx)

	var data []byte

	if i.JSON {
		data = []byte(oj.JSON(values, &oj.Options{Sort: true, Indent: 2}) + "\n")
	} else {
		data, err = yaml.Marshal(map[string]any{ConfigIdentifier: values})
		if err != nil {
			return ErrWriteConfig.With(slog.String("file", confPath)).Wrap(err)
		}
	}

	if err := os.WriteFile(confPath, data, 0o600); err != nil { //nolint:mnd
		return ErrWriteConfig.With(slog.String("file", confPath)).Wrap(err)
	}

	log.DebugContext(ctx, "initialized configuration file",
		slog.String("path", confPath),
		slog.Int("flags", len(values)),
	)

	return nil
}

// flagValues returns the set, non-empty top-level flag values in ktx keyed
// by flag name.
func flagValues(ktx *kong.Context) map[string]any {
	values := map[string]any{}

	for _, flag := range ktx.Model.Flags {
		if flag.Hidden || slices.ContainsFunc(ignoredFlags, func(s string) bool {
			return strings.HasPrefix(flag.Name, s)
		}) {
			continue
		}

		if v := plainFlag(ktx.FlagValue(flag)); v != nil {
			values[flag.Name] = v
		}
	}

	return values
}

// plainFlag converts a flag value to a string, bool, number or list of
// those. Empty strings and lists yield nil.
func plainFlag(v any) any {
	if v == nil {
		return nil
	}

	rv := reflect.ValueOf(v)

	switch rv.Kind() { //nolint:exhaustive
	case reflect.String:
		if rv.Len() == 0 {
			return nil
		}

		return rv.String()
	case reflect.Bool:
		return rv.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return rv.Uint()
	case reflect.Float32, reflect.Float64:
		return rv.Float()
	case reflect.Slice, reflect.Array:
		if rv.Len() == 0 {
			return nil
		}

		out := make([]any, 0, rv.Len())
		for j := range rv.Len() {
			if e := plainFlag(rv.Index(j).Interface()); e != nil {
				out = append(out, e)
			}
		}

		return out
	}

	return nil
}
