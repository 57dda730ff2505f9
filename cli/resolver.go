package cli

import (
	"io"
	"log/slog"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"

	"github.com/ardnew/scopex/log"
	"github.com/ardnew/scopex/store"
	"github.com/ardnew/scopex/value"
)

// resolve returns a [kong.ConfigurationLoader] reading a YAML document and
// resolving flags from its mapping called name.
//
// Flag names may be spelled with hyphens or underscores. String values may
// contain ${...} expressions, evaluated with the named mapping as the current
// frame so that relative names refer to sibling settings and absolute names
// (with a leading dot) refer to the whole document:
//
//	paths:
//	  cache: /var/tmp/scopex
//	config:
//	  log_level: debug
//	  expr-cache: ${.paths.cache}/expcache.bin
//
// Command-line flags override config file values.
func resolve(name string) func(r io.Reader) (kong.Resolver, error) {
	return func(r io.Reader) (kong.Resolver, error) {
		var doc map[string]any

		if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
			if err == io.EOF { //nolint:errorlint
				return config{}, nil
			}

			log.Warn("ignore configuration file", slog.Any("error", err))

			return config{}, nil
		}

		doc, _ = value.Normalize(doc).(map[string]any)

		section, ok := doc[name].(map[string]any)
		if !ok {
			return config{}, nil
		}

		c := store.New(doc, store.WithName(name))
		if err := c.PushFrame(name); err != nil {
			return nil, err
		}

		return config{values: section, ctx: c}, nil
	}
}

// config implements [kong.Resolver] for a YAML mapping of flag values.
type config struct {
	values map[string]any
	ctx    *store.Context
}

// Validate implements [kong.Resolver].
func (config) Validate(*kong.Application) error { return nil }

// Resolve implements [kong.Resolver].
func (r config) Resolve(
	_ *kong.Context,
	_ *kong.Path,
	flag *kong.Flag,
) (any, error) {
	for _, key := range []string{flag.Name, strings.ReplaceAll(flag.Name, "-", "_")} {
		if v, ok := r.values[key]; ok {
			return r.flagValue(v)
		}
	}

	return nil, nil //nolint:nilnil
}

// flagValue substitutes expressions in strings and renders scalars as the
// strings kong's mappers expect. Sequences are rendered element-wise.
func (r config) flagValue(v any) (any, error) {
	switch t := v.(type) {
	case nil, bool:
		return t, nil
	case string:
		return r.ctx.Substitute(t)
	case []any:
		out := make([]any, len(t))

		for i, e := range t {
			s, err := r.flagValue(e)
			if err != nil {
				return nil, err
			}

			out[i] = s
		}

		return out, nil
	}

	return value.Str(v), nil
}
