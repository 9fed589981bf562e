package report

import (
	"context"
	_ "embed"
	"encoding/base64"
	"html/template"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/ardnew/dcsmiz/lang"
	"github.com/ardnew/dcsmiz/log"
	"github.com/ardnew/dcsmiz/mission"
)

// DefaultTitle is the page title used unless [WithTitle] is given.
const DefaultTitle = "Installed Missions"

// Error kinds.
var (
	ErrRender  = lang.NewError("render report")
	ErrBrowser = lang.NewError("open browser")
)

//go:embed report.html.tmpl
var pageSource string

var page = template.Must(template.New("report").
	Funcs(template.FuncMap{"text": text}).
	Parse(pageSource))

// text escapes s for HTML and keeps its line breaks.
func text(s string) template.HTML {
	return template.HTML(strings.ReplaceAll(template.HTMLEscapeString(s), "\n", "<br>")) //nolint:gosec
}

type options struct {
	title  string
	logger log.Logger
}

// Option configures a report.
type Option func(*options)

// WithTitle sets the page title.
func WithTitle(title string) Option {
	return func(o *options) { o.title = title }
}

// WithLogger sets the logger that receives skipped missions.
func WithLogger(logger log.Logger) Option {
	return func(o *options) { o.logger = logger }
}

func makeOptions(opts ...Option) options {
	o := options{title: DefaultTitle}

	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	return o
}

// Section is a group of missions under one heading, usually an aircraft.
type Section struct {
	Title    string
	Missions []*mission.Mission
}

type pageView struct {
	Title    string
	Sections []sectionView
}

type sectionView struct {
	Title    string
	Missions []missionView
}

type missionView struct {
	mission.Summary

	URL    template.URL
	Images []template.URL
}

// Write renders sections to w. Missions that fail to load are logged and
// left out, and a mission whose fingerprint already appeared in the same
// section is rendered once.
func Write(ctx context.Context, w io.Writer, sections []Section, opts ...Option) error {
	o := makeOptions(opts...)
	view := pageView{Title: o.title}

	for _, s := range sections {
		b := newSectionBuilder(s.Title, o)
		for _, m := range s.Missions {
			b.add(ctx, m)
		}

		view.Sections = append(view.Sections, b.view)
	}

	return render(w, view)
}

// WriteInstalled renders the official missions of each aircraft of in. An
// empty aircraft list selects every installed aircraft.
func WriteInstalled(
	ctx context.Context,
	w io.Writer,
	in mission.Installation,
	aircraft []string,
	opts ...Option,
) error {
	o := makeOptions(opts...)

	if len(aircraft) == 0 {
		var err error
		if aircraft, err = in.Aircraft(); err != nil {
			return err
		}
	}

	view := pageView{Title: o.title}
	cache := new(lang.Cache)

	for _, name := range aircraft {
		b := newSectionBuilder(name, o)

		for m, err := range in.Missions(ctx, name,
			mission.WithCache(cache), mission.WithLogger(o.logger)) {
			if err != nil {
				o.logger.WarnContext(ctx, "mission skipped",
					slog.String("aircraft", name),
					slog.Any("error", err))

				continue
			}

			b.add(ctx, m)
			_ = m.Close()
		}

		view.Sections = append(view.Sections, b.view)
	}

	return render(w, view)
}

func render(w io.Writer, view pageView) error {
	if err := page.Execute(w, view); err != nil {
		return ErrRender.Wrap(err)
	}

	return nil
}

type sectionBuilder struct {
	view   sectionView
	seen   map[uint64]string
	logger log.Logger
}

func newSectionBuilder(title string, o options) *sectionBuilder {
	return &sectionBuilder{
		view:   sectionView{Title: title},
		seen:   make(map[uint64]string),
		logger: o.logger,
	}
}

func (b *sectionBuilder) add(ctx context.Context, m *mission.Mission) {
	sum, err := m.Fingerprint(ctx)
	if err != nil {
		b.skip(ctx, m, err)

		return
	}

	if first, ok := b.seen[sum]; ok {
		b.logger.InfoContext(ctx, "duplicate mission skipped",
			slog.Any("mission", m),
			slog.String("duplicate_of", first))

		return
	}

	v, err := viewOf(ctx, m)
	if err != nil {
		b.skip(ctx, m, err)

		return
	}

	b.seen[sum] = m.Path()
	b.view.Missions = append(b.view.Missions, v)
}

func (b *sectionBuilder) skip(ctx context.Context, m *mission.Mission, err error) {
	b.logger.WarnContext(ctx, "mission skipped",
		slog.String("section", b.view.Title),
		slog.Any("mission", m),
		slog.Any("error", err))
}

func viewOf(ctx context.Context, m *mission.Mission) (missionView, error) {
	s, err := m.Summary(ctx)
	if err != nil {
		return missionView{}, err
	}

	images, err := m.BriefingImages(ctx)
	if err != nil {
		return missionView{}, err
	}

	v := missionView{Summary: s, URL: fileURL(m.Path())}

	for _, img := range images {
		v.Images = append(v.Images, dataURL(img.Data))
	}

	return v, nil
}

// fileURL returns the file: URL of path.
func fileURL(path string) template.URL {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}

	p := filepath.ToSlash(path)
	if !strings.HasPrefix(p, "/") {
		p = "/" + p // drive letter
	}

	return template.URL((&url.URL{Scheme: "file", Path: p}).String()) //nolint:gosec
}

// dataURL embeds data in a data: URL with its sniffed media type.
func dataURL(data []byte) template.URL {
	mediaType := http.DetectContentType(data)
	if i := strings.IndexByte(mediaType, ';'); i >= 0 {
		mediaType = mediaType[:i]
	}

	return template.URL("data:" + mediaType + ";base64," + //nolint:gosec
		base64.StdEncoding.EncodeToString(data))
}
