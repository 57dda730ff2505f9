package lang

import (
	"bufio"
	"bytes"
	"cmp"
	"encoding/binary"
	"encoding/gob"
	"errors"
	"io"
	"log/slog"
	"slices"
	"strconv"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/klauspost/readahead"
	"github.com/zeebo/xxh3"

	"github.com/ardnew/scopex/log"
	"github.com/ardnew/scopex/pkg"
)

// record is the persisted form of one compiled expression.
type record struct {
	Source string
	Root   Node
}

// cacheKey identifies blobs this build can read.
func cacheKey() string {
	return "expcache." + strconv.Itoa(CacheVersion) + "." + pkg.Version
}

// Dump writes every successfully compiled expression to w.
//
// The blob is the cache key on its own line, an 8-byte big-endian xxh3
// checksum of the payload, and the payload: a zstd-compressed gob stream of
// records sorted by source.
func Dump(w io.Writer) error {
	var recs []record

	cache.Range(func(_, v any) bool {
		e := v.(*entry) //nolint:forcetypeassert
		if e.done.Load() && e.err == nil {
			recs = append(recs, record{Source: e.expr.Source, Root: e.expr.Root})
		}

		return true
	})

	slices.SortFunc(recs, func(a, b record) int { return cmp.Compare(a.Source, b.Source) })

	var payload bytes.Buffer

	zw, err := zstd.NewWriter(&payload)
	if err != nil {
		return err
	}

	if err := gob.NewEncoder(zw).Encode(recs); err != nil {
		_ = zw.Close()

		return err
	}

	if err := zw.Close(); err != nil {
		return err
	}

	var sum [8]byte
	binary.BigEndian.PutUint64(sum[:], xxh3.Hash(payload.Bytes()))

	bw := bufio.NewWriter(w)
	_, _ = bw.WriteString(cacheKey() + "\n")
	_, _ = bw.Write(sum[:])
	_, _ = bw.Write(payload.Bytes())

	if err := bw.Flush(); err != nil {
		return err
	}

	log.Debug("dumped expression cache",
		slog.Int("expressions", len(recs)),
		slog.Int("bytes", payload.Len()))

	return nil
}

// Load restores expressions written by [Dump] and returns how many were
// added. Sources already compiled are left alone.
func Load(r io.Reader) (int, error) {
	ra := readahead.NewReader(r)
	defer ra.Close()

	br := bufio.NewReader(ra)

	key, err := br.ReadString('\n')
	if err != nil {
		return 0, ErrCacheCorrupt.Wrap(err)
	}

	if key = strings.TrimSuffix(key, "\n"); key != cacheKey() {
		return 0, ErrCacheVersion.With(
			slog.String("found", key),
			slog.String("want", cacheKey()))
	}

	var sum [8]byte
	if _, err := io.ReadFull(br, sum[:]); err != nil {
		return 0, ErrCacheCorrupt.Wrap(err)
	}

	payload, err := io.ReadAll(br)
	if err != nil {
		return 0, ErrCacheCorrupt.Wrap(err)
	}

	if xxh3.Hash(payload) != binary.BigEndian.Uint64(sum[:]) {
		return 0, ErrCacheCorrupt.Wrap(errors.New("checksum mismatch"))
	}

	zr, err := zstd.NewReader(bytes.NewReader(payload))
	if err != nil {
		return 0, ErrCacheCorrupt.Wrap(err)
	}
	defer zr.Close()

	var recs []record
	if err := gob.NewDecoder(zr).Decode(&recs); err != nil {
		return 0, ErrCacheCorrupt.Wrap(err)
	}

	n := 0

	for _, rec := range recs {
		e := &entry{expr: &Expression{Source: rec.Source, Root: rec.Root}}
		e.once.Do(func() {})
		e.done.Store(true)

		if _, loaded := cache.LoadOrStore(rec.Source, e); !loaded {
			n++
		}
	}

	log.Debug("loaded expression cache", slog.Int("expressions", n))

	return n, nil
}
