package cmd

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/klauspost/readahead"
	"github.com/ohler55/ojg/oj"

	"github.com/ardnew/scopex/log"
	"github.com/ardnew/scopex/store"
	"github.com/ardnew/scopex/value"
)

// newStore returns a Context over the merged data files in ctx, with the
// root frame pushed.
func newStore(ctx context.Context) (*store.Context, error) {
	root, err := loadRoot(ctx)
	if err != nil {
		return nil, err
	}

	c := store.New(root,
		store.WithName("cli"),
		store.WithLogger(log.Default().Wrap(log.WithComponent("store"))),
	)

	if frame := rootFrameFrom(ctx); frame != "" {
		if err := c.PushFrame(frame); err != nil {
			return nil, err
		}
	}

	return c, nil
}

// loadRoot decodes every data file in ctx. A lone document is the root as
// is; several documents must be mappings and are merged in order.
func loadRoot(ctx context.Context) (any, error) {
	paths := sourceFilesFrom(ctx).Paths()

	docs := make([]any, 0, len(paths))

	for _, path := range paths {
		doc, err := readData(ctx, path)
		if err != nil {
			return nil, ErrDataFile.Wrap(err).With(slog.String("file", path))
		}

		log.TraceContext(ctx, "data file loaded",
			slog.String("file", path), slog.String("type", value.TypeName(doc)))

		docs = append(docs, doc)
	}

	switch len(docs) {
	case 0:
		return map[string]any{}, nil
	case 1:
		if docs[0] == nil {
			return map[string]any{}, nil
		}

		return docs[0], nil
	}

	root := map[string]any{}

	for i, doc := range docs {
		if doc == nil {
			continue
		}

		m, ok := doc.(map[string]any)
		if !ok {
			return nil, ErrDataFile.
				Wrap(errors.New("merged data must be a mapping")).
				With(slog.String("file", paths[i]), slog.String("type", value.TypeName(doc)))
		}

		merge(root, m)
	}

	return root, nil
}

func readData(ctx context.Context, path string) (any, error) {
	if path == stdinSource {
		return decodeData(path, stdinFrom(ctx))
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return decodeData(path, f)
}

// decodeData decodes one document from r: JSON when name ends in ".json",
// YAML otherwise. An empty input decodes to nil.
func decodeData(name string, r io.Reader) (any, error) {
	ra := readahead.NewReader(r)
	defer ra.Close()

	var (
		doc any
		err error
	)

	if strings.EqualFold(filepath.Ext(name), ".json") {
		doc, err = oj.Load(ra)
	} else {
		err = yaml.NewDecoder(ra).Decode(&doc)
	}

	if errors.Is(err, io.EOF) {
		return nil, nil //nolint:nilnil
	}

	if err != nil {
		return nil, err
	}

	return value.Normalize(doc), nil
}

// merge copies src into dst. Mappings present in both are merged
// recursively; any other value in src replaces the one in dst.
func merge(dst, src map[string]any) {
	for k, v := range src {
		sm, srcMap := v.(map[string]any)
		dm, dstMap := dst[k].(map[string]any)

		if srcMap && dstMap {
			merge(dm, sm)

			continue
		}

		dst[k] = v
	}
}
