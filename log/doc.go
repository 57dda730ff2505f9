// Package log provides structured logging for scopex on top of [log/slog].
//
// A [Logger] is an immutable value: options are applied when it is made
// with [Make] or derived with [Logger.Wrap], and [Logger.With] returns a
// copy carrying extra attributes. The zero Logger discards everything, so
// components may embed one without initialization.
//
//	logger := log.Make(os.Stderr,
//		log.WithLevel(log.LevelDebug),
//		log.WithFormat(log.FormatText),
//		log.WithComponent("store"))
//	logger.Debug("push frame", slog.String("index", ".page"))
//
// Every level has a context-aware variant. The context-unaware variants use
// [DefaultContextProvider], which returns [context.TODO] unless replaced.
//
// The package also keeps a process-wide default logger, configured with
// [Config] and used by the package-level functions such as [Info] and
// [Trace]. It discards output until configured.
//
// Two formats are supported, [FormatJSON] (default) and [FormatText]. Either
// may be pretty-printed with ANSI colors using [WithPretty].
package log
