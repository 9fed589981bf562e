package mission

import (
	"archive/zip"
	"context"
	"encoding/binary"
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"github.com/klauspost/readahead"
	"github.com/zeebo/xxh3"

	"github.com/ardnew/dcsmiz/lang"
	"github.com/ardnew/dcsmiz/log"
)

// Archive entry names.
const (
	EntryMission     = "mission"
	EntryTheatre     = "theatre"
	EntryDictionary  = "l10n/DEFAULT/dictionary"
	EntryMapResource = "l10n/DEFAULT/mapResource"

	resourceDir = "l10n/DEFAULT"
)

// Extensions of paths opened as zip archives.
var archiveExt = []string{".miz", ".zip"}

type options struct {
	cache    *lang.Cache
	logger   log.Logger
	kind     Type
	langOpts []lang.Option
}

// Option configures how a [Mission] is opened and parsed.
type Option func(*options)

// WithCache parses entries through c, so identical entries shared by several
// missions are evaluated once.
func WithCache(c *lang.Cache) Option {
	return func(o *options) { o.cache = c }
}

// WithLogger sets the logger of the mission and of its parsers.
func WithLogger(logger log.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithType marks the mission as an official mission of the given type.
func WithType(kind Type) Option {
	return func(o *options) { o.kind = kind }
}

// WithLangOptions adds options used when parsing entries.
func WithLangOptions(opts ...lang.Option) Option {
	return func(o *options) { o.langOpts = append(o.langOpts, opts...) }
}

// lazy memoizes one parsed entry.
type lazy struct {
	once sync.Once
	ns   *lang.Namespace
	err  error
}

// digest memoizes the fingerprint of a Mission.
type digest struct {
	once sync.Once
	sum  uint64
	err  error
}

// Mission is an opened mission archive or directory. Entries are parsed on
// first use and memoized. A Mission is safe for concurrent use.
type Mission struct {
	path   string
	fsys   fs.FS
	closer io.Closer
	opts   options

	mission, dictionary, mapResource lazy

	digest digest
}

// Open opens the mission at path. Paths ending in .miz or .zip are read as
// zip archives; anything else must be a directory with the archive layout.
func Open(ctx context.Context, path string, opts ...Option) (*Mission, error) {
	o := makeOptions(opts...)

	info, err := os.Stat(path)
	if err != nil {
		return nil, ErrOpen.Wrap(err).With(slog.String("path", path))
	}

	if info.IsDir() {
		o.logger.DebugContext(ctx, "open mission directory", slog.String("path", path))

		return &Mission{path: path, fsys: os.DirFS(path), opts: o}, nil
	}

	if !isArchive(path) {
		return nil, ErrOpen.With(
			slog.String("path", path),
			slog.String("reason", "not a .miz archive or directory"),
		)
	}

	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, ErrOpen.Wrap(err).With(slog.String("path", path))
	}

	o.logger.DebugContext(ctx, "open mission archive",
		slog.String("path", path),
		slog.Int("entries", len(zr.File)))

	return &Mission{path: path, fsys: zr, closer: zr, opts: o}, nil
}

// OpenFS returns a Mission reading its entries from fsys. The name is used
// only for reporting.
func OpenFS(fsys fs.FS, name string, opts ...Option) *Mission {
	return &Mission{path: name, fsys: fsys, opts: makeOptions(opts...)}
}

func makeOptions(opts ...Option) options {
	var o options

	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	return o
}

func isArchive(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))

	for _, e := range archiveExt {
		if ext == e {
			return true
		}
	}

	return false
}

// Close releases the archive. It is a no-op for directories.
func (m *Mission) Close() error {
	if m.closer == nil {
		return nil
	}

	return m.closer.Close()
}

// Path returns the path the mission was opened from.
func (m *Mission) Path() string { return m.path }

// Type returns the official mission type, or "" for other missions.
func (m *Mission) Type() Type { return m.opts.kind }

// Official reports whether the mission ships with an installed aircraft.
func (m *Mission) Official() bool { return m.opts.kind != "" }

// String returns a short description of the mission for logs.
func (m *Mission) String() string { return "Mission(" + m.path + ")" }

// LogValue implements [slog.LogValuer].
func (m *Mission) LogValue() slog.Value {
	attrs := []slog.Attr{slog.String("path", m.path)}
	if m.Official() {
		attrs = append(attrs, slog.String("type", string(m.opts.kind)))
	}

	return slog.GroupValue(attrs...)
}

// ReadEntry returns the content of the named archive entry.
func (m *Mission) ReadEntry(name string) ([]byte, error) {
	f, err := m.fsys.Open(name)
	if err != nil {
		return nil, ErrEntry.Wrap(err).With(
			slog.String("mission", m.path),
			slog.String("entry", name))
	}
	defer f.Close()

	ra := readahead.NewReader(f)
	defer ra.Close()

	data, err := io.ReadAll(ra)
	if err != nil {
		return nil, ErrEntry.Wrap(err).With(
			slog.String("mission", m.path),
			slog.String("entry", name))
	}

	return data, nil
}

// Namespace returns the evaluated namespace of the named entry. The three
// data entries are parsed once per Mission; other entries are parsed on
// every call.
func (m *Mission) Namespace(ctx context.Context, name string) (*lang.Namespace, error) {
	var l *lazy

	switch name {
	case EntryMission:
		l = &m.mission
	case EntryDictionary:
		l = &m.dictionary
	case EntryMapResource:
		l = &m.mapResource
	default:
		return m.load(ctx, name, new(lazy))
	}

	l.once.Do(func() { _, _ = m.load(ctx, name, l) })

	return l.ns, l.err
}

func (m *Mission) load(ctx context.Context, name string, l *lazy) (*lang.Namespace, error) {
	data, err := m.ReadEntry(name)
	if err != nil {
		l.err = err

		return nil, err
	}

	opts := append([]lang.Option{lang.WithLogger(m.opts.logger)}, m.opts.langOpts...)

	if m.opts.cache != nil {
		l.ns, l.err = m.opts.cache.LoadString(ctx, string(data), opts...)
	} else {
		l.ns, l.err = lang.LoadString(ctx, string(data), opts...)
	}

	if l.err != nil {
		l.err = lang.WrapError(l.err).With(
			slog.String("mission", m.path),
			slog.String("entry", name))

		return nil, l.err
	}

	m.opts.logger.TraceContext(ctx, "mission entry parsed",
		slog.String("entry", name),
		slog.Int("names", l.ns.Len()))

	return l.ns, nil
}

// table returns the table bound to name in the given entry.
func (m *Mission) table(ctx context.Context, entry, name string) (*lang.Table, error) {
	ns, err := m.Namespace(ctx, entry)
	if err != nil {
		return nil, err
	}

	v, ok := ns.Get(name)
	if !ok {
		return nil, ErrMissingField.With(
			slog.String("mission", m.path),
			slog.String("entry", entry),
			slog.String("field", name))
	}

	t, ok := v.AsTable()
	if !ok {
		return nil, ErrMissingField.With(
			slog.String("mission", m.path),
			slog.String("entry", entry),
			slog.String("field", name),
			slog.String("kind", v.Kind().String()))
	}

	return t, nil
}

// field returns the string field of the mission table.
func (m *Mission) field(ctx context.Context, name string) (string, bool, error) {
	t, err := m.table(ctx, EntryMission, "mission")
	if err != nil {
		return "", false, err
	}

	v, ok := t.Field(name)
	if !ok {
		return "", false, nil
	}

	s, ok := v.AsString()

	return s, ok, nil
}

// localized resolves a dictionary-keyed field of the mission table. A key
// absent from the dictionary is returned as is.
func (m *Mission) localized(ctx context.Context, name string) (string, error) {
	key, ok, err := m.field(ctx, name)
	if err != nil {
		return "", err
	}

	if !ok {
		return "", ErrMissingField.With(
			slog.String("mission", m.path),
			slog.String("field", name))
	}

	dict, err := m.table(ctx, EntryDictionary, "dictionary")
	if err != nil {
		return "", err
	}

	if v, ok := dict.Field(key); ok {
		if s, ok := v.AsString(); ok {
			return s, nil
		}
	}

	m.opts.logger.DebugContext(ctx, "dictionary key not found",
		slog.String("field", name),
		slog.String("key", key))

	return key, nil
}

// Theatre returns the map the mission is played on. Older missions store it
// only in the theatre entry.
func (m *Mission) Theatre(ctx context.Context) (string, error) {
	theatre, ok, err := m.field(ctx, "theatre")
	if err != nil {
		return "", err
	}

	if ok {
		return theatre, nil
	}

	data, err := m.ReadEntry(EntryTheatre)
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(string(data)), nil
}

// Sortie returns the mission title.
func (m *Mission) Sortie(ctx context.Context) (string, error) {
	return m.localized(ctx, "sortie")
}

// Description returns the situation text of the briefing.
func (m *Mission) Description(ctx context.Context) (string, error) {
	return m.localized(ctx, "descriptionText")
}

// BlueTaskDescription returns the task of the blue coalition.
func (m *Mission) BlueTaskDescription(ctx context.Context) (string, error) {
	return m.localized(ctx, "descriptionBlueTask")
}

// RedTaskDescription returns the task of the red coalition.
func (m *Mission) RedTaskDescription(ctx context.Context) (string, error) {
	return m.localized(ctx, "descriptionRedTask")
}

// BriefingImagePaths returns the blue briefing images as paths relative to
// l10n/DEFAULT, in mission order.
func (m *Mission) BriefingImagePaths(ctx context.Context) ([]string, error) {
	t, err := m.table(ctx, EntryMission, "mission")
	if err != nil {
		return nil, err
	}

	v, ok := t.Field("pictureFileNameB")
	if !ok {
		return nil, nil
	}

	pictures, ok := v.AsTable()
	if !ok {
		return nil, nil
	}

	resources, err := m.table(ctx, EntryMapResource, "mapResource")
	if err != nil {
		return nil, err
	}

	paths := make([]string, 0, pictures.Len())

	for _, ref := range pictures.All() {
		key, ok := ref.AsString()
		if !ok {
			continue
		}

		res, ok := resources.Field(key)
		if !ok {
			return nil, ErrMissingField.With(
				slog.String("mission", m.path),
				slog.String("entry", EntryMapResource),
				slog.String("field", key))
		}

		if p, ok := res.AsString(); ok {
			paths = append(paths, p)
		}
	}

	return paths, nil
}

// Image is a briefing image read from the archive.
type Image struct {
	Path string
	Data []byte
}

// BriefingImages returns the blue briefing images.
func (m *Mission) BriefingImages(ctx context.Context) ([]Image, error) {
	paths, err := m.BriefingImagePaths(ctx)
	if err != nil {
		return nil, err
	}

	images := make([]Image, 0, len(paths))

	for _, p := range paths {
		data, err := m.ReadEntry(path.Join(resourceDir, p))
		if err != nil {
			return nil, err
		}

		images = append(images, Image{Path: p, Data: data})
	}

	return images, nil
}

// ExtractImages writes the briefing images into dir and returns the written
// file paths.
func (m *Mission) ExtractImages(ctx context.Context, dir string) ([]string, error) {
	images, err := m.BriefingImages(ctx)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, ErrEntry.Wrap(err).With(slog.String("dir", dir))
	}

	written := make([]string, 0, len(images))

	for _, img := range images {
		name := filepath.Join(dir, filepath.Base(filepath.FromSlash(img.Path)))

		if err := os.WriteFile(name, img.Data, 0o644); err != nil {
			return written, ErrEntry.Wrap(err).With(slog.String("file", name))
		}

		m.opts.logger.DebugContext(ctx, "briefing image extracted",
			slog.String("file", name),
			slog.Int("bytes", len(img.Data)))

		written = append(written, name)
	}

	return written, nil
}

// Fingerprint returns an xxh3 hash over the mission entry and every file
// under l10n/DEFAULT, which holds the dictionary, the map resources and the
// briefing images. Missions copied under different names share a
// fingerprint. Missions differing only in text or images do not.
//
// The entries are hashed as bytes, so a mission that fails to evaluate still
// has a fingerprint.
func (m *Mission) Fingerprint(ctx context.Context) (uint64, error) {
	m.digest.once.Do(func() { m.digest.sum, m.digest.err = m.fingerprint(ctx) })

	return m.digest.sum, m.digest.err
}

func (m *Mission) fingerprint(ctx context.Context) (uint64, error) {
	names := []string{EntryMission}

	err := fs.WalkDir(m.fsys, resourceDir, func(name string, d fs.DirEntry, err error) error {
		switch {
		case err != nil && name == resourceDir && errors.Is(err, fs.ErrNotExist):
			return fs.SkipAll
		case err != nil:
			return err
		case !d.IsDir():
			names = append(names, name)
		}

		return nil
	})
	if err != nil {
		return 0, ErrEntry.Wrap(err).With(
			slog.String("mission", m.path),
			slog.String("entry", resourceDir))
	}

	h := xxh3.New()

	for _, name := range names {
		data, err := m.ReadEntry(name)
		if err != nil {
			return 0, err
		}

		hashEntry(h, name, data)
	}

	m.opts.logger.TraceContext(ctx, "mission fingerprinted",
		slog.String("mission", m.path),
		slog.Int("entries", len(names)))

	return h.Sum64(), nil
}

// hashEntry writes the length-prefixed name and content of one entry to h.
func hashEntry(h *xxh3.Hasher, name string, data []byte) {
	var n [8]byte

	binary.LittleEndian.PutUint64(n[:], uint64(len(name)))
	_, _ = h.Write(n[:])
	_, _ = h.WriteString(name)

	binary.LittleEndian.PutUint64(n[:], uint64(len(data)))
	_, _ = h.Write(n[:])
	_, _ = h.Write(data)
}
