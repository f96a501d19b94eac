package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/require"

	"github.com/Knagis/GeoTransformer-sub000/garmin"
	"github.com/Knagis/GeoTransformer-sub000/gpx"
	"github.com/Knagis/GeoTransformer-sub000/internal/config"
)

const (
	pocketQuery = "../../gpx/testdata/pocket_query_10.gpx"
	saved       = "../../gpx/testdata/saved_11.gpx"
)

func run(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())

	cmd := newRootCommand(config.New())
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err = cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestInfo(t *testing.T) {
	out, _, err := run(t, "info", pocketQuery, saved)
	require.NoError(t, err)
	require.Equal(t,
		pocketQuery+": 2 waypoints, 1 geocaches, 2 logs\n"+
			saved+": 1 waypoints, 1 geocaches, 1 logs\n",
		out)
}

func TestInfoWithTokenizer(t *testing.T) {
	out, _, err := run(t, "info", "--tokenizer", pocketQuery)
	require.NoError(t, err)
	require.Equal(t, pocketQuery+": 2 waypoints, 1 geocaches, 2 logs\n", out)
}

func TestConvert(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.gpx")
	_, _, err := run(t, "convert", "--preset", "compatibility", "-o", path, saved)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), `<gpx xmlns="http://www.topografix.com/GPX/1/0" version="1.0"`)
	require.Contains(t, string(data), `<groundspeak:cache`)
	require.NotContains(t, string(data), "personal_note")

	doc, err := gpx.LoadFile(path)
	require.NoError(t, err)
	require.Equal(t, "Old Town", gpx.Value(doc.Waypoints().At(0).Geocache().Name()))
}

func TestConvertToStdout(t *testing.T) {
	out, _, err := run(t, "convert", "--gpx", "1.0", "--geocache", "1.0.2", pocketQuery)
	require.NoError(t, err)
	require.Contains(t, out, `<?xml version="1.0" encoding="utf-8"?>`)
	require.Contains(t, out, `http://www.groundspeak.com/cache/1/0/2`)
}

func TestConvertPlainText(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.gpx")
	_, _, err := run(t, "convert", "--plain-text", "-o", path, pocketQuery)
	require.NoError(t, err)

	doc, err := gpx.LoadFile(path)
	require.NoError(t, err)
	d := doc.Waypoints().At(0).Geocache().LongDescription()
	require.False(t, d.IsHTML())
	require.Contains(t, gpx.Value(d.Text()), "under")
	require.NotContains(t, gpx.Value(d.Text()), "<b>")
}

func TestMerge(t *testing.T) {
	path := filepath.Join(t.TempDir(), "merged.gpx")
	_, stderr, err := run(t, "merge", "--preset", "roundtrip", "-o", path, saved, pocketQuery)
	require.NoError(t, err)
	require.Contains(t, stderr, "merged")

	doc, err := gpx.LoadFile(path)
	require.NoError(t, err)
	require.Equal(t, 2, doc.Waypoints().Len())

	g := doc.Waypoints().At(0).Geocache()
	require.Equal(t, "Riga", gpx.Value(g.State()))
	require.Equal(t, "Checked in 2012", gpx.Value(g.PersonalNote()))
	require.Equal(t, 2, g.Attributes().Len())

	var ids []int64
	for _, l := range g.Logs().Items() {
		ids = append(ids, gpx.Value(l.ID()))
	}
	require.Equal(t, []int64{100, 200}, ids)
	require.Equal(t, "PARK01", gpx.Value(doc.Waypoints().At(1).Name()))
}

func TestGGZ(t *testing.T) {
	path := filepath.Join(t.TempDir(), "caches.ggz")
	_, _, err := run(t, "ggz", "--chunk", "1", path, pocketQuery, saved)
	require.NoError(t, err)

	r, err := zip.OpenReader(path)
	require.NoError(t, err)
	defer r.Close()

	var names []string
	for _, f := range r.File {
		names = append(names, f.Name)
	}
	require.Equal(t, []string{"data/Default_1.gpx", "data/Default_2.gpx", garmin.IndexPath}, names)
}

func TestRejectsUnknownPreset(t *testing.T) {
	_, _, err := run(t, "info", "--preset", "fancy", pocketQuery)
	require.ErrorIs(t, err, gpx.ErrUnknownPreset)
}

func TestConfigFile(t *testing.T) {
	dir := t.TempDir()
	cfg := filepath.Join(dir, "geotransformer.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("output:\n  preset: compatibility\n"), 0o600))

	out, _, err := run(t, "convert", "--config", cfg, saved)
	require.NoError(t, err)
	require.Contains(t, out, `version="1.0"`)
}
