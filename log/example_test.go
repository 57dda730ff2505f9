package log_test

import (
	"context"
	"log/slog"
	"os"

	"github.com/ardnew/scopex/log"
)

func Example_textFormat() {
	logger := log.Make(os.Stdout,
		log.WithFormat(log.FormatText),
		log.WithTimeLayout("none"))
	logger.Info("push frame", slog.String("index", ".page"))
	// Output: level=INFO msg="push frame" index=.page
}

func Example_component() {
	logger := log.Make(os.Stdout,
		log.WithTimeLayout("none"),
		log.WithComponent("lang"),
		log.WithLevel(log.LevelTrace))
	logger.Trace("compile", slog.String("source", "1+1"))
	// Output: {"level":"TRACE","msg":"compile","component":"lang","source":"1+1"}
}

func Example_withContext() {
	type requestKey struct{}

	ctx := context.WithValue(context.Background(), requestKey{}, "req-789")

	logger := log.Make(os.Stdout, log.WithLevel(log.LevelWarn))
	logger.InfoContext(ctx, "suppressed")
}
