package report

import (
	"archive/zip"
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ardnew/dcsmiz/log"
	"github.com/ardnew/dcsmiz/mission"
)

const missionSrc = `mission = {
    ["theatre"] = "Caucasus",
    ["sortie"] = "DictKey_sortie_5",
    ["descriptionText"] = "DictKey_descriptionText_1",
    ["descriptionBlueTask"] = "DictKey_descriptionBlueTask_3",
    ["pictureFileNameB"] = { [1] = "ResKey_ImageBriefing_7" },
}
`

var pngData = []byte("\x89PNG\r\n\x1a\n0000")

func entries(sortie string) map[string]string {
	return map[string]string{
		mission.EntryMission: missionSrc,
		mission.EntryDictionary: `dictionary = {
    ["DictKey_sortie_5"] = "` + sortie + `",
    ["DictKey_descriptionText_1"] = "Ships <b>inbound</b>.\nStand by.",
    ["DictKey_descriptionBlueTask_3"] = "Sink the cargo ship.",
}`,
		mission.EntryMapResource: `mapResource = { ["ResKey_ImageBriefing_7"] = "brief.png" }`,
		"l10n/DEFAULT/brief.png": string(pngData),
	}
}

func memMission(name string, files map[string]string) *mission.Mission {
	fsys := fstest.MapFS{}
	for path, data := range files {
		fsys[path] = &fstest.MapFile{Data: []byte(data)}
	}

	return mission.OpenFS(fsys, name)
}

func TestWrite(t *testing.T) {
	ctx := context.Background()

	var logs bytes.Buffer

	logger := log.Make(&logs, log.WithPretty(false), log.WithTimeLayout("none"))

	broken := entries("Broken")
	delete(broken, mission.EntryDictionary)

	var out bytes.Buffer

	err := Write(ctx, &out, []Section{
		{
			Title: "Su-25T",
			Missions: []*mission.Mission{
				memMission("first.miz", entries("Harpoon Radar Engagement")),
				memMission("copy.miz", entries("Harpoon Radar Engagement")),
				memMission("broken.miz", broken),
			},
		},
		{
			Title:    "TF-51D",
			Missions: []*mission.Mission{memMission("copy.miz", entries("Takeoff"))},
		},
	}, WithLogger(logger), WithTitle("Missions & more"))
	require.NoError(t, err)

	html := out.String()

	assert.Contains(t, html, "<title>Missions &amp; more</title>")
	assert.Contains(t, html, "<h1>Su-25T</h1>")
	assert.Contains(t, html, "<h1>TF-51D</h1>")
	assert.Equal(t, 2, strings.Count(html, "<h2>"), "duplicate and broken missions left out")
	assert.Contains(t, html, "<h2>Harpoon Radar Engagement</h2>")
	assert.Contains(t, html, "Ships &lt;b&gt;inbound&lt;/b&gt;.<br>Stand by.")
	assert.Contains(t, html, `<img src="data:image/png;base64,`)
	assert.Contains(t, html, "<td>Caucasus</td>")
	assert.NotContains(t, html, "red_task_description")

	assert.Contains(t, logs.String(), "mission skipped")
	assert.Contains(t, logs.String(), "broken.miz")
}

func TestWrite_SharedMissionEntry(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name   string
		second map[string]string
		h2     int
	}{
		{"identical", entries("Alpha Strike"), 1},
		{"dictionary", entries("Bravo Recon"), 2},
		{"image", func() map[string]string {
			e := entries("Alpha Strike")
			e["l10n/DEFAULT/brief.png"] = string(pngData) + "1111"

			return e
		}(), 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer

			err := Write(ctx, &out, []Section{{
				Title: "F-16C",
				Missions: []*mission.Mission{
					memMission("a.miz", entries("Alpha Strike")),
					memMission("b.miz", tt.second),
				},
			}})
			require.NoError(t, err)

			html := out.String()
			assert.Equal(t, tt.h2, strings.Count(html, "<h2>"))
			assert.Contains(t, html, "<h2>Alpha Strike</h2>")

			if tt.name == "dictionary" {
				assert.Contains(t, html, "<h2>Bravo Recon</h2>")
			}
		})
	}
}

func TestWriteInstalled(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()

	dir := filepath.Join(root, "Mods", "aircraft", "Su-25T", "Missions", "Single")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	writeArchive(t, filepath.Join(dir, "harpoon.miz"), entries("Harpoon Radar Engagement"))
	writeArchive(t, filepath.Join(dir, "harpoon-copy.miz"), entries("Harpoon Radar Engagement"))

	var out bytes.Buffer

	require.NoError(t, WriteInstalled(ctx, &out, mission.Installation{Root: root}, nil))

	html := out.String()
	assert.Contains(t, html, "<h1>Su-25T</h1>")
	assert.Equal(t, 1, strings.Count(html, "<h2>"))
	assert.Contains(t, html, "<td>Single</td>")
	assert.Contains(t, html, `href="file:///`)

	err := WriteInstalled(ctx, &out, mission.Installation{Root: t.TempDir()}, nil)
	require.ErrorIs(t, err, mission.ErrAircraft)
}

func writeArchive(t *testing.T, path string, files map[string]string) {
	t.Helper()

	var buf bytes.Buffer

	zw := zip.NewWriter(&buf)

	for name, data := range files {
		w, err := zw.Create(name)
		require.NoError(t, err)

		_, err = w.Write([]byte(data))
		require.NoError(t, err)
	}

	require.NoError(t, zw.Close())
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
}

func TestText(t *testing.T) {
	assert.Equal(t, "a &amp; b<br>&#34;c&#34;", string(text("a & b\n\"c\"")))
}

func TestDataURL(t *testing.T) {
	assert.Equal(t, "data:image/png;base64,iVBORw0KGgowMDAw", string(dataURL(pngData)))
	assert.True(t, strings.HasPrefix(string(dataURL([]byte("plain"))), "data:text/plain;base64,"))
}

func TestFileURL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a mission.miz")

	got := string(fileURL(path))
	assert.True(t, strings.HasPrefix(got, "file:///"), got)
	assert.True(t, strings.HasSuffix(got, "/a%20mission.miz"), got)
}

func TestBrowserCommand(t *testing.T) {
	tests := []struct {
		goos string
		name string
		args []string
	}{
		{"windows", "rundll32", []string{"url.dll,FileProtocolHandler", "file:///r.html"}},
		{"darwin", "open", []string{"file:///r.html"}},
		{"linux", "xdg-open", []string{"file:///r.html"}},
		{"freebsd", "xdg-open", []string{"file:///r.html"}},
	}

	for _, tt := range tests {
		t.Run(tt.goos, func(t *testing.T) {
			name, args := browserCommand(tt.goos, "file:///r.html")
			assert.Equal(t, tt.name, name)
			assert.Equal(t, tt.args, args)
		})
	}
}
