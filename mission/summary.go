package mission

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/goccy/go-yaml"

	"github.com/ardnew/dcsmiz/lang"
)

// Summary collects the briefing of a mission.
type Summary struct {
	Path        string   `json:"path" yaml:"path"`
	Type        Type     `json:"type,omitempty" yaml:"type,omitempty"`
	Theatre     string   `json:"theatre" yaml:"theatre"`
	Sortie      string   `json:"sortie" yaml:"sortie"`
	Description string   `json:"description" yaml:"description"`
	BlueTask    string   `json:"blue_task" yaml:"blue_task"`
	RedTask     string   `json:"red_task,omitempty" yaml:"red_task,omitempty"`
	Images      []string `json:"images,omitempty" yaml:"images,omitempty"`
	Fingerprint string   `json:"fingerprint" yaml:"fingerprint"`
}

// Summary reads every briefing field of the mission. The red task is
// optional; any other missing field is an error.
func (m *Mission) Summary(ctx context.Context) (Summary, error) {
	s := Summary{Path: m.path, Type: m.opts.kind}

	for _, f := range []struct {
		dst *string
		get func(context.Context) (string, error)
	}{
		{&s.Theatre, m.Theatre},
		{&s.Sortie, m.Sortie},
		{&s.Description, m.Description},
		{&s.BlueTask, m.BlueTaskDescription},
	} {
		v, err := f.get(ctx)
		if err != nil {
			return Summary{}, err
		}

		*f.dst = v
	}

	red, err := m.RedTaskDescription(ctx)

	switch {
	case err == nil:
		s.RedTask = red
	case !errors.Is(err, ErrMissingField):
		return Summary{}, err
	}

	if s.Images, err = m.BriefingImagePaths(ctx); err != nil {
		return Summary{}, err
	}

	sum, err := m.Fingerprint(ctx)
	if err != nil {
		return Summary{}, err
	}

	s.Fingerprint = FormatFingerprint(sum)

	m.opts.logger.DebugContext(ctx, "mission summarized",
		slog.Any("mission", m),
		slog.String("sortie", s.Sortie))

	return s, nil
}

// FormatFingerprint renders a fingerprint as 16 hex digits.
func FormatFingerprint(sum uint64) string {
	s := strconv.FormatUint(sum, 16)
	for len(s) < 16 {
		s = "0" + s
	}

	return s
}

// WriteText writes the summary as aligned "key: value" lines. Multi-line
// values are indented under their key.
func (s Summary) WriteText(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 1, ' ', 0)

	row := func(key, value string) {
		lines := strings.Split(value, "\n")
		fmt.Fprintf(tw, "%s:\t%s\n", key, lines[0])

		for _, line := range lines[1:] {
			fmt.Fprintf(tw, "\t%s\n", line)
		}
	}

	row("path", s.Path)

	if s.Type != "" {
		row("type", string(s.Type))
	}

	row("theatre", s.Theatre)
	row("sortie", s.Sortie)
	row("description", s.Description)
	row("blue task", s.BlueTask)

	if s.RedTask != "" {
		row("red task", s.RedTask)
	}

	for _, img := range s.Images {
		row("image", img)
	}

	row("fingerprint", s.Fingerprint)

	return tw.Flush()
}

// WriteJSON writes the summary as an indented JSON object.
func (s Summary) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(s)
}

// WriteYAML writes the summary as a YAML mapping. Multi-line text uses the
// literal block style.
func (s Summary) WriteYAML(w io.Writer) error {
	out, err := yaml.MarshalWithOptions(s,
		yaml.UseLiteralStyleIfMultiline(true),
		yaml.Indent(2))
	if err != nil {
		return lang.WrapError(err)
	}

	_, err = w.Write(out)

	return err
}
