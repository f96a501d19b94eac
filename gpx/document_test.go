package gpx_test

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/beevik/etree"
	"github.com/google/go-cmp/cmp"

	"github.com/Knagis/GeoTransformer-sub000/gpx"
	"github.com/Knagis/GeoTransformer-sub000/observable"
)

func load(t *testing.T, name string, opts ...gpx.Option) *gpx.Document {
	t.Helper()
	doc, err := gpx.LoadFile(filepath.Join("testdata", name), opts...)
	if err != nil {
		t.Fatalf("load %s: %v", name, err)
	}
	return doc
}

func write(t *testing.T, doc *gpx.Document, o gpx.SerializationOptions) string {
	t.Helper()
	var buf bytes.Buffer
	if _, err := doc.WriteTo(&buf, o); err != nil {
		t.Fatalf("write: %v", err)
	}
	return buf.String()
}

func xmlString(t *testing.T, el *etree.Element) string {
	t.Helper()
	if el == nil {
		return ""
	}
	doc := etree.NewDocument()
	doc.SetRoot(el)
	s, err := doc.WriteToString()
	if err != nil {
		t.Fatalf("write element: %v", err)
	}
	return s
}

func deref[T any](t *testing.T, p *T) T {
	t.Helper()
	if p == nil {
		t.Fatalf("expected a value, got nil")
	}
	return *p
}

var fixtures = []string{"pocket_query_10.gpx", "saved_11.gpx", "padded.gpx"}

func TestLoadGpx10PocketQuery(t *testing.T) {
	doc := load(t, "pocket_query_10.gpx")

	if diff := cmp.Diff("Groundspeak Pocket Query", deref(t, doc.Creator())); diff != "" {
		t.Fatalf("creator: %s", diff)
	}
	m := doc.Metadata()
	if diff := cmp.Diff("Riga caches", deref(t, m.Name())); diff != "" {
		t.Fatalf("name: %s", diff)
	}
	if diff := cmp.Diff("contact@groundspeak.com", deref(t, m.Author().Email())); diff != "" {
		t.Fatalf("email: %s", diff)
	}
	if m.Links().Len() != 1 || deref(t, m.Links().At(0).Href()) != "http://www.groundspeak.com" {
		t.Fatalf("unexpected metadata links")
	}
	if !deref(t, m.Time()).Equal(time.Date(2011, 3, 5, 10, 21, 34, 0, time.UTC)) {
		t.Fatalf("unexpected time: %v", m.Time())
	}
	if deref(t, m.Bounds().MaxLat()) != 57.01 {
		t.Fatalf("unexpected bounds")
	}
	if doc.Waypoints().Len() != 2 || doc.Routes().Len() != 1 || doc.Tracks().Len() != 0 {
		t.Fatalf("unexpected content: %d waypoints, %d routes, %d tracks",
			doc.Waypoints().Len(), doc.Routes().Len(), doc.Tracks().Len())
	}

	w := doc.Waypoints().At(0)
	if w.Latitude() != 56.949617 || w.Longitude() != 24.105283 {
		t.Fatalf("unexpected coordinates: %v", w)
	}
	if w.Links().Len() != 1 || deref(t, w.Links().At(0).Text()) != "Old Town" {
		t.Fatalf("url and urlname must form one link")
	}

	g := w.Geocache()
	if !g.IsDefined() {
		t.Fatalf("geocache must be defined")
	}
	if deref(t, g.ID()) != 1234567 || !deref(t, g.Available()) || deref(t, g.Archived()) {
		t.Fatalf("unexpected cache attributes")
	}
	if deref(t, g.Owner().ID()) != 7654 || deref(t, g.Owner().Name()) != "riga_cacher" {
		t.Fatalf("unexpected owner")
	}
	if g.CacheType().ID() != nil || deref(t, g.CacheType().Name()) != "Traditional Cache" {
		t.Fatalf("unexpected type")
	}
	if size, ok := g.Container().NumericValue(); !ok || size != 3 {
		t.Fatalf("unexpected container size: %d, %t", size, ok)
	}
	if g.Attributes().Len() != 2 || deref(t, g.Attributes().At(1).Include()) {
		t.Fatalf("unexpected attributes")
	}
	if deref(t, g.Difficulty()) != 2 || deref(t, g.Terrain()) != 1.5 {
		t.Fatalf("unexpected rating")
	}
	if !g.LongDescription().IsHTML() || deref(t, g.LongDescription().Text()) != "<p>Look <b>under</b> the bench.</p>" {
		t.Fatalf("unexpected long description: %v", g.LongDescription().Text())
	}
	if plain := g.LongDescription().PlainText(); !strings.Contains(plain, "Look under the bench.") || strings.Contains(plain, "<") {
		t.Fatalf("unexpected plain text: %q", plain)
	}
	if diff := cmp.Diff("A quick one.", g.ShortDescription().PlainText()); diff != "" {
		t.Fatalf("short description: %s", diff)
	}

	if g.Logs().Len() != 2 {
		t.Fatalf("expected 2 logs, got %d", g.Logs().Len())
	}
	l := g.Logs().At(0)
	if deref(t, l.ID()) != 200 || deref(t, l.Type().Name()) != "Found it" || deref(t, l.Finder().Name()) != "finder_one" {
		t.Fatalf("unexpected first log")
	}
	if !deref(t, g.Logs().At(1).Text().Encoded()) {
		t.Fatalf("second log text must be encoded")
	}
	if g.Trackables().Len() != 1 || deref(t, g.Trackables().At(0).Ref()) != "TB12345" {
		t.Fatalf("unexpected trackables")
	}
	if g.ExtensionElements().Len() != 1 || g.ExtensionElements().At(0).Tag() != "vendor:rating" {
		t.Fatalf("unknown cache content must be kept")
	}

	parking := doc.Waypoints().At(1)
	if parking.Geocache().IsDefined() {
		t.Fatalf("plain waypoint must not be a geocache")
	}
	if parking.Elevation() != nil {
		t.Fatalf("malformed elevation must be left unset")
	}
	if attrs := parking.ExtensionAttributes(); attrs.Len() != 1 || attrs.At(0).Local != "quality" {
		t.Fatalf("unknown attribute must be kept")
	}
}

func TestLoadGpx11Saved(t *testing.T) {
	doc := load(t, "saved_11.gpx")

	m := doc.Metadata()
	if diff := cmp.Diff("knagis@example.com", deref(t, m.Author().Email())); diff != "" {
		t.Fatalf("email: %s", diff)
	}
	if doc.ExtensionAttributes().Len() != 1 || doc.ExtensionAttributes().At(0).Value != "yes" {
		t.Fatalf("unknown root attribute must be kept")
	}

	w := doc.Waypoints().At(0)
	if w.Links().Len() != 2 || deref(t, w.Elevation()) != 12.5 {
		t.Fatalf("unexpected waypoint: %v", w)
	}
	if !deref(t, w.LastRefresh()).Equal(time.Date(2012, 1, 15, 11, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected last refresh")
	}
	if w.ExtensionElements().Len() != 1 || w.ExtensionElements().At(0).Tag() != "vendor:note" {
		t.Fatalf("unknown waypoint extension must be kept")
	}

	g := w.Geocache()
	if !deref(t, g.MemberOnly()) || deref(t, g.CustomCoordinates()) {
		t.Fatalf("unexpected 1.0.2 flags")
	}
	if deref(t, g.CacheType().ID()) != 2 || deref(t, g.Container().ID()) != 8 {
		t.Fatalf("unexpected type ids")
	}
	if deref(t, g.PersonalNote()) != "Checked in 2012" || deref(t, g.FavoritePoints()) != 17 {
		t.Fatalf("unexpected personal data")
	}
	if g.Images().Len() != 1 || deref(t, g.Images().At(0).Name()) != "Spoiler" {
		t.Fatalf("unexpected images")
	}
	if deref(t, g.Logs().At(0).Latitude()) != 56.95 {
		t.Fatalf("unexpected log coordinates")
	}
}

func TestParsePathsAgree(t *testing.T) {
	for _, name := range fixtures {
		t.Run(name, func(t *testing.T) {
			for _, o := range []gpx.SerializationOptions{gpx.DefaultOptions(), gpx.RoundtripOptions()} {
				expected := write(t, load(t, name), o)
				result := write(t, load(t, name, gpx.WithTokenizer()), o)
				if diff := cmp.Diff(expected, result); diff != "" {
					t.Fatalf("tokenizer path differs: %s", diff)
				}
			}
		})
	}
}

func TestParsePathsKeepText(t *testing.T) {
	for _, tc := range []struct {
		name string
		opts []gpx.Option
	}{
		{name: "etree"},
		{name: "tokenizer", opts: []gpx.Option{gpx.WithTokenizer()}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			w := load(t, "padded.gpx", tc.opts...).Waypoints().At(0)
			g := w.Geocache()

			if diff := cmp.Diff("\n  <p>Hello</p> dash\u0096here\n", deref(t, g.LongDescription().Text())); diff != "" {
				t.Fatalf("long description: %s", diff)
			}
			if diff := cmp.Diff("Found it  ", deref(t, g.Logs().At(0).Text().Text())); diff != "" {
				t.Fatalf("log text: %s", diff)
			}
			attrs := w.ExtensionAttributes()
			if attrs.Len() != 1 {
				t.Fatalf("expected 1 extension attribute, got %d", attrs.Len())
			}
			if diff := cmp.Diff("  padded  ", attrs.At(0).Value); diff != "" {
				t.Fatalf("extension attribute: %s", diff)
			}
		})
	}
}

func TestRoundtripIsStable(t *testing.T) {
	for _, name := range fixtures {
		t.Run(name, func(t *testing.T) {
			first := write(t, load(t, name), gpx.RoundtripOptions())

			doc, err := gpx.Load(strings.NewReader(first))
			if err != nil {
				t.Fatalf("reload: %v", err)
			}
			second := write(t, doc, gpx.RoundtripOptions())
			if diff := cmp.Diff(first, second); diff != "" {
				t.Fatalf("second roundtrip differs: %s", diff)
			}
		})
	}
}

func TestRoundtripKeepsUnknownContent(t *testing.T) {
	out := write(t, load(t, "pocket_query_10.gpx"), gpx.RoundtripOptions())
	for _, want := range []string{
		`<vendor:rating xmlns:vendor="urn:example:vendor" stars="4"/>`,
		`quality="good"`,
		`xsi:schemaLocation=`,
		`lat="56.949617"`,
		`<rtept lat="56.949" lon="24.105"/>`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %s in:\n%s", want, out)
		}
	}

	out = write(t, load(t, "saved_11.gpx"), gpx.RoundtripOptions())
	for _, want := range []string{`lat="56.9496171234"`, `vendor:flag="yes"`, `<vendor:note>kept</vendor:note>`} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %s in:\n%s", want, out)
		}
	}
}

func TestRoundtripKeepsWrapperContent(t *testing.T) {
	const input = `<gpx xmlns="http://www.topografix.com/GPX/1/1" version="1.1" creator="test"` +
		` xmlns:groundspeak="http://www.groundspeak.com/cache/1/0/2" xmlns:v="urn:example:vendor">` +
		`<wpt lat="1" lon="2"><name>GC1</name><extensions><groundspeak:cache id="1">` +
		`<groundspeak:attributes v:sorted="yes">` +
		`<groundspeak:attribute id="1" inc="1">Dogs</groundspeak:attribute><v:extra>inside attributes</v:extra>` +
		`</groundspeak:attributes>` +
		`<groundspeak:logs v:wrap="kept">` +
		`<groundspeak:log id="2"><groundspeak:text encoded="False">TFTC</groundspeak:text>` +
		`<groundspeak:log_wpt lat="1.5" lon="2.5" v:source="gps"><v:fix>3d</v:fix></groundspeak:log_wpt>` +
		`<groundspeak:images v:order="date"/></groundspeak:log>` +
		`<v:extra>inside logs</v:extra>` +
		`</groundspeak:logs>` +
		`<groundspeak:travelbugs v:count="1">` +
		`<groundspeak:travelbug id="3" ref="TB1"><groundspeak:name>Duck</groundspeak:name></groundspeak:travelbug>` +
		`</groundspeak:travelbugs>` +
		`<groundspeak:images><v:extra>inside images</v:extra></groundspeak:images>` +
		`</groundspeak:cache></extensions></wpt></gpx>`

	doc, err := gpx.Load(strings.NewReader(input))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	g := doc.Waypoints().At(0).Geocache()
	if g.Attributes().Len() != 1 || g.Logs().Len() != 1 || g.Trackables().Len() != 1 || g.Images().Len() != 0 {
		t.Fatalf("list items must still be mapped")
	}
	if diff := cmp.Diff(2.5, deref(t, g.Logs().At(0).Longitude())); diff != "" {
		t.Fatalf("log coordinates: %s", diff)
	}

	kept := []string{
		`v:sorted="yes"`,
		`inside attributes</v:extra>`,
		`v:wrap="kept"`,
		`inside logs</v:extra>`,
		`v:source="gps"`,
		`3d</v:fix>`,
		`v:order="date"`,
		`v:count="1"`,
		`inside images</v:extra>`,
	}
	out := write(t, doc, gpx.RoundtripOptions())
	for _, want := range kept {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %s in:\n%s", want, out)
		}
	}

	reloaded, err := gpx.Load(strings.NewReader(out))
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if diff := cmp.Diff(out, write(t, reloaded, gpx.RoundtripOptions())); diff != "" {
		t.Fatalf("second roundtrip differs: %s", diff)
	}

	out = write(t, doc, gpx.DefaultOptions())
	for _, unwanted := range kept {
		if strings.Contains(out, unwanted) {
			t.Fatalf("unexpected %s in:\n%s", unwanted, out)
		}
	}
}

func TestDefaultOptionsDropExtensions(t *testing.T) {
	out := write(t, load(t, "saved_11.gpx"), gpx.DefaultOptions())
	for _, unwanted := range []string{"vendor", "lastRefresh", "personal_note", `lat="56.9496171234"`} {
		if strings.Contains(out, unwanted) {
			t.Fatalf("unexpected %s in:\n%s", unwanted, out)
		}
	}
	if !strings.Contains(out, `lat="56.9496171"`) {
		t.Fatalf("coordinates must be rounded to 7 decimals:\n%s", out)
	}
}

func TestCompatibilityOutput(t *testing.T) {
	out := write(t, load(t, "saved_11.gpx"), gpx.CompatibilityOptions())
	for _, want := range []string{
		`xmlns="http://www.topografix.com/GPX/1/0"`,
		`xmlns:groundspeak="http://www.groundspeak.com/cache/1/0/1"`,
		`<url>https://coord.info/GC1Q2W3</url>`,
		`<urlname>Old Town</urlname>`,
		`<groundspeak:cache id="1234567">`,
		`<author>Knagis</author>`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %s in:\n%s", want, out)
		}
	}
	for _, unwanted := range []string{"<metadata>", "<extensions>", "Photos", "memberonly"} {
		if strings.Contains(out, unwanted) {
			t.Fatalf("unexpected %s in:\n%s", unwanted, out)
		}
	}
}

func TestCopyrightGpx10(t *testing.T) {
	doc := gpx.NewDocument()
	doc.Metadata().SetName(gpx.String("Riga"))
	doc.Metadata().Copyright().SetAuthor(gpx.String("Knagis"))

	o := gpx.CompatibilityOptions()
	out := xmlString(t, doc.Serialize(o))
	if !strings.Contains(out, "<name>Riga</name>") || strings.Contains(out, "copyright") {
		t.Fatalf("GPX 1.0 has no copyright:\n%s", out)
	}

	o.EnableInvalidElements = true
	if out = xmlString(t, doc.Serialize(o)); !strings.Contains(out, `<copyright author="Knagis"/>`) {
		t.Fatalf("expected copyright with invalid elements enabled:\n%s", out)
	}
}

func TestLoadRejectsOtherDocuments(t *testing.T) {
	_, err := gpx.LoadFile(filepath.Join("testdata", "not_gpx.xml"))
	if !errors.Is(err, gpx.ErrNotGPX) {
		t.Fatalf("expected: %v, got: %v", gpx.ErrNotGPX, err)
	}

	_, err = gpx.Load(strings.NewReader(`<gpx xmlns="urn:other"/>`))
	if !errors.Is(err, gpx.ErrNotGPX) {
		t.Fatalf("expected: %v, got: %v", gpx.ErrNotGPX, err)
	}

	_, err = gpx.Load(strings.NewReader(`<gpx xmlns="http://www.topografix.com/GPX/1/1"><wpt>`))
	if err == nil || errors.Is(err, gpx.ErrNotGPX) {
		t.Fatalf("expected xml error, got: %v", err)
	}
}

func TestDocumentNotifiesNestedChanges(t *testing.T) {
	doc := load(t, "saved_11.gpx")
	var got []string
	doc.Subscribe(func(e observable.Event) { got = append(got, e.Property) })

	doc.Waypoints().At(0).Geocache().Logs().At(0).Text().SetText(gpx.String("Thanks"))
	doc.Metadata().SetKeywords(gpx.String("riga"))
	doc.Waypoints().At(0).ExtensionElements().At(0).SetAttr(".", "seen", "1")
	doc.Waypoints().RemoveAt(0)

	expected := []string{"Waypoints", "Metadata", "Waypoints", "Waypoints"}
	if diff := cmp.Diff(expected, got); diff != "" {
		t.Fatalf("events: %s", diff)
	}
}

func TestNewDocumentSerialize(t *testing.T) {
	doc := gpx.NewDocument()
	result := xmlString(t, doc.Serialize(gpx.DefaultOptions()))
	expected := `<gpx xmlns="http://www.topografix.com/GPX/1/1" version="1.1" creator="GeoTransformer"/>`
	if diff := cmp.Diff(expected, result); diff != "" {
		t.Fatal(diff)
	}
}
