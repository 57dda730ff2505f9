// Package cmd implements the scopex subcommands.
//
// Commands receive a context.Context carrying the parsed kong.Context, the
// data files named by --data, the --root-frame path and the streams they
// read and write. Each command builds its own store.Context from those
// values.
package cmd

var (
	// CacheIdentifier is the kong variable identifier containing the path to
	// the runtime cache directory.
	CacheIdentifier = "cache"

	// ConfigIdentifier is the kong variable identifier containing the path to
	// the YAML configuration file. It is also the name of the mapping within
	// that file holding flag values.
	ConfigIdentifier = "config"

	// ExprCacheIdentifier is the kong variable identifier containing the path
	// to the default compiled expression cache.
	ExprCacheIdentifier = "exprCache"
)
