// Package cli contains the command line interface for scopex.
//
// # Usage
//
//	scopex [--log-*] [--pprof-*] [--data FILE...] [--root-frame PATH] <command>
//
// Data files (YAML, or JSON by extension) are merged into the root object of
// a store.Context that every command evaluates against. Later files win
// where keys collide; nested mappings are merged.
//
//	scopex -d site.yaml 'upper:site.title' 'len:pages'
//	scopex -d site.yaml sub 'Welcome to ${site.title}!'
//	scopex index '.site.pages.0."index.html"'
//	scopex -d site.yaml keys --depth 1
//	scopex warm --from templates.html --extract
//	scopex -d site.yaml repl
//
// # Configuration
//
// Flags may also be set in the "config" mapping of the YAML file
// <configDir>/config, or in <configDir>/config.json. Run "scopex init" to
// write the current flag values there. String values in the YAML file may
// contain ${...} expressions (see [resolve]).
//
// # Expression Cache
//
// Every command loads the compiled expression cache named by --expr-cache
// (default <cacheDir>/expcache.bin) when it exists. The warm command writes
// it.
//
// # Logging Options
//
//   - --log-level: minimum log level (trace, debug, info, warn, error)
//   - --log-format: log output format (json, text)
//   - --log-time-layout: timestamp format (RFC3339, Kitchen, etc.)
//   - --log-caller: include caller information
//   - --log-pretty: colorize log output
//
// # Profiling Options
//
// Profiling is only available when built with the pprof build tag:
//
//	go build -tags pprof .
//
//   - --pprof-mode: profiling mode (allocs, block, clock, cpu, goroutine,
//     heap, mem, mutex, thread, trace)
//   - --pprof-dir: profile output directory (default <cacheDir>/pprof)
package cli
