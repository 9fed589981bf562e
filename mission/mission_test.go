package mission

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ardnew/dcsmiz/lang"
)

const (
	missionSrc = `mission = {
    ["theatre"] = "Caucasus",
    ["sortie"] = "DictKey_sortie_5",
    ["descriptionText"] = "DictKey_descriptionText_1",
    ["descriptionBlueTask"] = "DictKey_descriptionBlueTask_3",
    ["descriptionRedTask"] = "DictKey_descriptionRedTask_2",
    ["pictureFileNameB"] = {
        [1] = "ResKey_ImageBriefing_7",
    },
    ["version"] = 21,
}
`
	dictionarySrc = `dictionary = {
    ["DictKey_sortie_5"] = "Harpoon Radar Engagement",
    ["DictKey_descriptionText_1"] = "An ememy cargo skip is heading to Gudauta to drop off vital supplies.",
    ["DictKey_descriptionBlueTask_3"] = "Sink the enemy cargo skip that is about 15nm to your west.",
    ["DictKey_descriptionRedTask_2"] = "Deliver the supplies.\
Stay clear of the coast.",
}
`
	mapResourceSrc = `mapResource = {
    ["ResKey_ImageBriefing_7"] = "harpoon-radar-mission.png",
}
`
	imageName = "harpoon-radar-mission.png"
)

var pngData = []byte("\x89PNG\r\n\x1a\nnot really an image")

// fixture returns the entries of a complete mission archive.
func fixture() map[string][]byte {
	return map[string][]byte{
		EntryMission:                []byte(missionSrc),
		EntryDictionary:             []byte(dictionarySrc),
		EntryMapResource:            []byte(mapResourceSrc),
		"l10n/DEFAULT/" + imageName: pngData,
		"options":                   []byte("options = {}\n"),
	}
}

// writeArchive writes entries into a .miz file under dir.
func writeArchive(t *testing.T, dir, name string, entries map[string][]byte) string {
	t.Helper()

	path := filepath.Join(dir, name)

	f, err := os.Create(path)
	require.NoError(t, err)

	zw := zip.NewWriter(f)

	for entry, data := range entries {
		w, err := zw.Create(entry)
		require.NoError(t, err)

		_, err = w.Write(data)
		require.NoError(t, err)
	}

	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())

	return path
}

// writeDir writes entries as files under a new directory.
func writeDir(t *testing.T, entries map[string][]byte) string {
	t.Helper()

	dir := t.TempDir()

	for entry, data := range entries {
		path := filepath.Join(dir, filepath.FromSlash(entry))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, data, 0o644))
	}

	return dir
}

func openFixture(t *testing.T, entries map[string][]byte, opts ...Option) *Mission {
	t.Helper()

	path := writeArchive(t, t.TempDir(), "harpoon-radar.miz", entries)

	m, err := Open(context.Background(), path, opts...)
	require.NoError(t, err)

	t.Cleanup(func() { _ = m.Close() })

	return m
}

func TestMission_Accessors(t *testing.T) {
	ctx := context.Background()

	sources := map[string]func(t *testing.T) *Mission{
		"archive": func(t *testing.T) *Mission {
			return openFixture(t, fixture())
		},
		"directory": func(t *testing.T) *Mission {
			m, err := Open(ctx, writeDir(t, fixture()))
			require.NoError(t, err)

			return m
		},
		"fs": func(*testing.T) *Mission {
			fsys := fstest.MapFS{}
			for name, data := range fixture() {
				fsys[name] = &fstest.MapFile{Data: data}
			}

			return OpenFS(fsys, "memory")
		},
	}

	for name, open := range sources {
		t.Run(name, func(t *testing.T) {
			m := open(t)

			theatre, err := m.Theatre(ctx)
			require.NoError(t, err)
			assert.Equal(t, "Caucasus", theatre)

			sortie, err := m.Sortie(ctx)
			require.NoError(t, err)
			assert.Equal(t, "Harpoon Radar Engagement", sortie)

			desc, err := m.Description(ctx)
			require.NoError(t, err)
			assert.Equal(t,
				"An ememy cargo skip is heading to Gudauta to drop off vital supplies.", desc)

			blue, err := m.BlueTaskDescription(ctx)
			require.NoError(t, err)
			assert.Equal(t,
				"Sink the enemy cargo skip that is about 15nm to your west.", blue)

			red, err := m.RedTaskDescription(ctx)
			require.NoError(t, err)
			assert.Equal(t, "Deliver the supplies.\nStay clear of the coast.", red)

			paths, err := m.BriefingImagePaths(ctx)
			require.NoError(t, err)
			assert.Equal(t, []string{imageName}, paths)

			images, err := m.BriefingImages(ctx)
			require.NoError(t, err)
			require.Len(t, images, 1)
			assert.Equal(t, imageName, images[0].Path)
			assert.True(t, bytes.HasPrefix(images[0].Data, []byte("\x89PNG")))

			sum, err := m.Fingerprint(ctx)
			require.NoError(t, err)
			assert.Equal(t, fixtureSum(t), sum)

			assert.False(t, m.Official())
		})
	}
}

func TestMission_TheatreEntry(t *testing.T) {
	entries := fixture()
	entries[EntryMission] = []byte(strings.Replace(missionSrc,
		`["theatre"] = "Caucasus",`, "", 1))
	entries[EntryTheatre] = []byte("Syria\n")

	theatre, err := openFixture(t, entries).Theatre(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Syria", theatre)
}

func TestMission_DictionaryFallback(t *testing.T) {
	entries := fixture()
	entries[EntryMission] = []byte(strings.Replace(missionSrc,
		`"DictKey_sortie_5"`, `"Free Flight"`, 1))

	sortie, err := openFixture(t, entries).Sortie(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Free Flight", sortie)
}

func TestMission_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("missing field", func(t *testing.T) {
		entries := fixture()
		entries[EntryMission] = []byte(strings.Replace(missionSrc,
			`["descriptionText"] = "DictKey_descriptionText_1",`, "", 1))

		m := openFixture(t, entries)

		_, err := m.Description(ctx)
		require.ErrorIs(t, err, ErrMissingField)

		_, err = m.Summary(ctx)
		require.ErrorIs(t, err, ErrMissingField)
	})

	t.Run("missing entry", func(t *testing.T) {
		entries := fixture()
		delete(entries, EntryDictionary)

		_, err := openFixture(t, entries).Sortie(ctx)
		require.ErrorIs(t, err, ErrEntry)
	})

	t.Run("missing resource", func(t *testing.T) {
		entries := fixture()
		entries[EntryMapResource] = []byte("mapResource = {}\n")

		_, err := openFixture(t, entries).BriefingImagePaths(ctx)
		require.ErrorIs(t, err, ErrMissingField)
	})

	t.Run("mission not a table", func(t *testing.T) {
		entries := fixture()
		entries[EntryMission] = []byte(`mission = "flat"`)

		_, err := openFixture(t, entries).Theatre(ctx)
		require.ErrorIs(t, err, ErrMissingField)
	})

	t.Run("syntax error", func(t *testing.T) {
		entries := fixture()
		entries[EntryMission] = []byte("mission = {\n  [\"sortie\"] = ,\n}\n")

		m := openFixture(t, entries)

		_, err := m.Sortie(ctx)
		require.ErrorIs(t, err, lang.ErrSyntax)

		// The same failure is returned without parsing again.
		_, again := m.Namespace(ctx, EntryMission)
		assert.Same(t, err, again)

		sum, err := m.Fingerprint(ctx)
		require.NoError(t, err)
		assert.NotZero(t, sum)
	})
}

// fixtureSum returns the fingerprint of the unmodified fixture.
func fixtureSum(t *testing.T) uint64 {
	t.Helper()

	sum, err := openFixture(t, fixture()).Fingerprint(context.Background())
	require.NoError(t, err)
	require.NotZero(t, sum)

	return sum
}

func TestMission_Fingerprint(t *testing.T) {
	ctx := context.Background()
	base := fixtureSum(t)

	tests := []struct {
		name   string
		edit   func(map[string][]byte)
		differ bool
	}{
		{
			name:   "copy",
			edit:   func(map[string][]byte) {},
			differ: false,
		},
		{
			name:   "unrelated entry",
			edit:   func(e map[string][]byte) { e["options"] = []byte("options = { [1] = 2 }\n") },
			differ: false,
		},
		{
			name: "dictionary",
			edit: func(e map[string][]byte) {
				e[EntryDictionary] = bytes.Replace(e[EntryDictionary],
					[]byte("Harpoon Radar Engagement"), []byte("Bravo Recon"), 1)
			},
			differ: true,
		},
		{
			name: "map resource",
			edit: func(e map[string][]byte) {
				e[EntryMapResource] = append(e[EntryMapResource], '\n')
			},
			differ: true,
		},
		{
			name:   "image",
			edit:   func(e map[string][]byte) { e["l10n/DEFAULT/"+imageName] = []byte("\x89PNG other") },
			differ: true,
		},
		{
			name: "extra resource",
			edit: func(e map[string][]byte) {
				e["l10n/DEFAULT/kneeboard.png"] = pngData
			},
			differ: true,
		},
		{
			name:   "mission",
			edit:   func(e map[string][]byte) { e[EntryMission] = append(e[EntryMission], '\n') },
			differ: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries := fixture()
			tt.edit(entries)

			sum, err := openFixture(t, entries).Fingerprint(ctx)
			require.NoError(t, err)

			if tt.differ {
				assert.NotEqual(t, base, sum)
			} else {
				assert.Equal(t, base, sum)
			}
		})
	}

	t.Run("directory matches archive", func(t *testing.T) {
		m, err := Open(ctx, writeDir(t, fixture()))
		require.NoError(t, err)

		sum, err := m.Fingerprint(ctx)
		require.NoError(t, err)
		assert.Equal(t, base, sum)
	})

	t.Run("without resources", func(t *testing.T) {
		sum, err := openFixture(t, map[string][]byte{
			EntryMission: []byte(missionSrc),
		}).Fingerprint(ctx)
		require.NoError(t, err)
		assert.NotZero(t, sum)
		assert.NotEqual(t, base, sum)
	})

	t.Run("without mission", func(t *testing.T) {
		entries := fixture()
		delete(entries, EntryMission)

		_, err := openFixture(t, entries).Fingerprint(ctx)
		require.ErrorIs(t, err, ErrEntry)
	})
}

func TestOpen_Errors(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	text := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(text, []byte("hello"), 0o644))

	corrupt := filepath.Join(dir, "broken.miz")
	require.NoError(t, os.WriteFile(corrupt, []byte("PK not a zip"), 0o644))

	for name, path := range map[string]string{
		"missing":     filepath.Join(dir, "missing.miz"),
		"not archive": text,
		"corrupt":     corrupt,
	} {
		t.Run(name, func(t *testing.T) {
			m, err := Open(ctx, path)
			require.ErrorIs(t, err, ErrOpen)
			assert.Nil(t, m)
		})
	}
}

func TestMission_Summary(t *testing.T) {
	ctx := context.Background()
	m := openFixture(t, fixture(), WithType(TypeTraining))

	s, err := m.Summary(ctx)
	require.NoError(t, err)

	assert.Equal(t, TypeTraining, s.Type)
	assert.Equal(t, "Harpoon Radar Engagement", s.Sortie)
	assert.Equal(t, []string{imageName}, s.Images)
	assert.Len(t, s.Fingerprint, 16)
	assert.True(t, m.Official())

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, s.WriteJSON(&buf))

		var got Summary
		require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
		assert.Equal(t, s, got)
	})

	t.Run("yaml", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, s.WriteYAML(&buf))

		assert.Contains(t, buf.String(), "sortie: Harpoon Radar Engagement\n")
		assert.Contains(t, buf.String(), "type: Training\n")
		assert.Contains(t, buf.String(), "red_task: |")
	})

	t.Run("text", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, s.WriteText(&buf))

		out := buf.String()
		assert.Contains(t, out, "Harpoon Radar Engagement")
		assert.Contains(t, out, "Deliver the supplies.\n")
		assert.Contains(t, out, "Stay clear of the coast.\n")
		assert.True(t, strings.HasPrefix(out, "path:"))
	})

	t.Run("optional red task", func(t *testing.T) {
		entries := fixture()
		entries[EntryMission] = []byte(strings.Replace(missionSrc,
			`["descriptionRedTask"] = "DictKey_descriptionRedTask_2",`, "", 1))

		s, err := openFixture(t, entries).Summary(ctx)
		require.NoError(t, err)
		assert.Empty(t, s.RedTask)
	})
}

func TestMission_ExtractImages(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "images")

	written, err := openFixture(t, fixture()).ExtractImages(context.Background(), dir)
	require.NoError(t, err)
	require.Equal(t, []string{filepath.Join(dir, imageName)}, written)

	data, err := os.ReadFile(written[0])
	require.NoError(t, err)
	assert.Equal(t, pngData, data)
}

func TestMission_Cache(t *testing.T) {
	ctx := context.Background()

	var cache lang.Cache

	dir := t.TempDir()

	for _, name := range []string{"a.miz", "b.miz"} {
		m, err := Open(ctx, writeArchive(t, dir, name, fixture()), WithCache(&cache))
		require.NoError(t, err)

		_, err = m.Summary(ctx)
		require.NoError(t, err)
		require.NoError(t, m.Close())
	}

	// mission, dictionary and mapResource, each evaluated once.
	assert.Equal(t, 3, cache.Len())
}

func TestMission_NamespaceOtherEntry(t *testing.T) {
	ns, err := openFixture(t, fixture()).Namespace(context.Background(), "options")
	require.NoError(t, err)

	v, ok := ns.Get("options")
	require.True(t, ok)
	assert.Equal(t, lang.KindTable, v.Kind())
}
