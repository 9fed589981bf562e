package lang

import (
	"bytes"
	"context"
	"encoding/gob"
	"io"
	"log/slog"
	"strconv"
	"sync"

	"github.com/zeebo/xxh3"
)

// Cache memoizes evaluated namespaces by source content, so identical
// sources are parsed and evaluated once. Namespaces are read-only and safe to
// share. The zero Cache is ready to use and safe for concurrent use.
type Cache struct {
	entries sync.Map // key → *cacheEntry
}

type cacheEntry struct {
	once sync.Once
	ns   *Namespace
	err  error
}

// hashOptions encodes options using gob and hashes with xxh3.
// Returns a hash that uniquely identifies the options configuration.
// The logger does not affect results and is not included.
func hashOptions(o options) uint64 {
	var buf bytes.Buffer

	enc := gob.NewEncoder(&buf)

	_ = enc.Encode(o.maxDepth)

	return xxh3.Hash(buf.Bytes())
}

// Key returns the cache key of src evaluated with opts.
func (c *Cache) Key(src string, opts ...Option) string {
	return strconv.FormatUint(xxh3.HashString(src)^hashOptions(makeOptions(opts...)), 36)
}

// LoadString returns the namespace of src, evaluating it on first use.
// Failures are cached too.
func (c *Cache) LoadString(
	ctx context.Context,
	src string,
	opts ...Option,
) (*Namespace, error) {
	key := c.Key(src, opts...)

	value, hit := c.entries.LoadOrStore(key, new(cacheEntry))
	entry := value.(*cacheEntry) //nolint:forcetypeassert

	makeOptions(opts...).logger.TraceContext(ctx, "cache lookup",
		slog.String("key", key),
		slog.Bool("cache_hit", hit))

	entry.once.Do(func() {
		entry.ns, entry.err = LoadString(ctx, src, opts...)
	})

	return entry.ns, entry.err
}

// LoadReader reads all of r and returns its namespace as with
// [Cache.LoadString].
func (c *Cache) LoadReader(
	ctx context.Context,
	r io.Reader,
	opts ...Option,
) (*Namespace, error) {
	src, err := readAll(r)
	if err != nil {
		return nil, err
	}

	return c.LoadString(ctx, src, opts...)
}

// Len returns the number of cached sources.
func (c *Cache) Len() int {
	n := 0

	c.entries.Range(func(any, any) bool {
		n++

		return true
	})

	return n
}

// Clear removes all cached entries.
func (c *Cache) Clear() {
	c.entries.Clear()
}
