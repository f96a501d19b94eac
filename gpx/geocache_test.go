package gpx_test

import (
	"strings"
	"testing"

	"github.com/beevik/etree"
	"github.com/google/go-cmp/cmp"

	"github.com/Knagis/GeoTransformer-sub000/gpx"
)

func TestParseID(t *testing.T) {
	tt := []struct {
		in       string
		expected int64
	}{
		{in: "1234567", expected: 1234567},
		{in: " 42 ", expected: 42},
		{in: "GC1Q2W3", expected: gpx.UnknownID},
		{in: "", expected: gpx.UnknownID},
	}
	for _, tc := range tt {
		t.Run(tc.in, func(t *testing.T) {
			if result := gpx.ParseID(tc.in); result != tc.expected {
				t.Fatalf("expected: %d, got: %d", tc.expected, result)
			}
		})
	}
}

func TestGeocacheIsDefined(t *testing.T) {
	tt := []struct {
		name string
		set  func(g *gpx.Geocache)
	}{
		{name: "id", set: func(g *gpx.Geocache) { g.SetID(gpx.Int64(1)) }},
		{name: "available", set: func(g *gpx.Geocache) { g.SetAvailable(gpx.Bool(true)) }},
		{name: "name", set: func(g *gpx.Geocache) { g.SetName(gpx.String("")) }},
		{name: "owner name", set: func(g *gpx.Geocache) { g.Owner().SetName(gpx.String("owner")) }},
		{name: "container id", set: func(g *gpx.Geocache) { g.Container().SetID(gpx.Int64(2)) }},
		{name: "long description", set: func(g *gpx.Geocache) { g.LongDescription().SetHTML(gpx.Bool(false)) }},
		{name: "favorite points", set: func(g *gpx.Geocache) { g.SetFavoritePoints(gpx.Int(0)) }},
		{name: "logs", set: func(g *gpx.Geocache) { g.Logs().Append(gpx.NewGeocacheLog()) }},
		{name: "images", set: func(g *gpx.Geocache) { g.Images().Append(gpx.NewGeocacheImage()) }},
		{name: "replaced type", set: func(g *gpx.Geocache) {
			c := gpx.NewGeocacheType()
			c.SetName(gpx.String("Multi-cache"))
			g.SetCacheType(c)
		}},
	}
	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			g := gpx.NewGeocache()
			if g.IsDefined() {
				t.Fatalf("new geocache must be undefined")
			}
			tc.set(g)
			if !g.IsDefined() {
				t.Fatalf("expected defined after setting %s", tc.name)
			}
		})
	}
}

func TestGeocacheIsDefinedFollowsChanges(t *testing.T) {
	g := gpx.NewGeocache()
	g.Owner().SetName(gpx.String("owner"))
	if !g.IsDefined() {
		t.Fatalf("expected defined")
	}
	g.Owner().SetName(nil)
	if g.IsDefined() {
		t.Fatalf("expected undefined after clearing the owner")
	}

	g.Trackables().Append(gpx.NewGeocacheTrackable())
	if !g.IsDefined() {
		t.Fatalf("expected defined")
	}
	g.Trackables().Clear()
	if g.IsDefined() {
		t.Fatalf("expected undefined after clearing trackables")
	}

	old := g.Owner()
	g.SetOwner(nil)
	old.SetName(gpx.String("detached"))
	if g.IsDefined() {
		t.Fatalf("a replaced owner must not affect the geocache")
	}
}

func TestEmptySerializesToNil(t *testing.T) {
	tt := []struct {
		name      string
		serialize func(o gpx.SerializationOptions) *etree.Element
	}{
		{name: "link", serialize: gpx.NewLink().Serialize},
		{name: "bounds", serialize: gpx.NewBounds().Serialize},
		{name: "copyright", serialize: gpx.NewCopyright().Serialize},
		{name: "person", serialize: func(o gpx.SerializationOptions) *etree.Element {
			return gpx.NewPerson().Serialize(o, "author")
		}},
		{name: "metadata", serialize: gpx.NewMetadata().Serialize},
		{name: "type", serialize: gpx.NewGeocacheType().Serialize},
		{name: "container", serialize: gpx.NewGeocacheContainer().Serialize},
		{name: "log type", serialize: gpx.NewGeocacheLogType().Serialize},
		{name: "account", serialize: func(o gpx.SerializationOptions) *etree.Element {
			return gpx.NewGeocacheAccount().SerializeAs(o, "owner")
		}},
		{name: "attribute", serialize: gpx.NewGeocacheAttribute().Serialize},
		{name: "description", serialize: func(o gpx.SerializationOptions) *etree.Element {
			return gpx.NewGeocacheDescription().SerializeAs(o, "short_description")
		}},
		{name: "log text", serialize: gpx.NewGeocacheLogText().Serialize},
		{name: "image", serialize: gpx.NewGeocacheImage().Serialize},
		{name: "trackable", serialize: gpx.NewGeocacheTrackable().Serialize},
		{name: "log", serialize: gpx.NewGeocacheLog().Serialize},
		{name: "geocache", serialize: gpx.NewGeocache().Serialize},
	}
	presets := map[string]gpx.SerializationOptions{
		"default":       gpx.DefaultOptions(),
		"compatibility": gpx.CompatibilityOptions(),
		"roundtrip":     gpx.RoundtripOptions(),
	}
	for _, tc := range tt {
		for preset, o := range presets {
			t.Run(tc.name+"/"+preset, func(t *testing.T) {
				if el := tc.serialize(o); el != nil {
					t.Fatalf("expected nil, got: %s", xmlString(t, el))
				}
			})
		}
	}
}

func TestSerializeAsRejectsEmptyName(t *testing.T) {
	for name, fn := range map[string]func(){
		"description": func() { gpx.NewGeocacheDescription().SerializeAs(gpx.DefaultOptions(), "") },
		"account":     func() { gpx.NewGeocacheAccount().SerializeAs(gpx.DefaultOptions(), "") },
	} {
		t.Run(name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Fatalf("expected panic")
				}
			}()
			fn()
		})
	}
}

func newVersionedGeocache() *gpx.Geocache {
	g := gpx.NewGeocache()
	g.SetName(gpx.String("Old Town"))
	g.SetPersonalNote(gpx.String("bring a pen"))
	g.SetFavoritePoints(gpx.Int(12))
	img := gpx.NewGeocacheImage()
	img.SetURL(gpx.String("https://img.example.com/1.jpg"))
	g.Images().Append(img)
	return g
}

func TestGeocacheVersionConditionalFields(t *testing.T) {
	g := newVersionedGeocache()
	fields := []string{"personal_note", "favorite_points", "images"}

	old := g.Serialize(gpx.SerializationOptions{GpxVersion: gpx.Gpx11, GeocacheVersion: gpx.Geocache100})
	for _, f := range fields {
		if old.FindElement(f) != nil {
			t.Fatalf("%s must be omitted for 1.0.0:\n%s", f, xmlString(t, old))
		}
	}
	if old.FindElement("name") == nil {
		t.Fatalf("name must be written for 1.0.0")
	}

	current := g.Serialize(gpx.SerializationOptions{GpxVersion: gpx.Gpx11, GeocacheVersion: gpx.Geocache102})
	for _, f := range fields {
		if current.FindElement(f) == nil {
			t.Fatalf("%s must be written for 1.0.2:\n%s", f, xmlString(t, current))
		}
	}
}

func TestGeocacheUnsupportedFieldsAreTagged(t *testing.T) {
	g := newVersionedGeocache()
	g.SetMemberOnly(gpx.Bool(true))

	el := g.Serialize(gpx.SerializationOptions{
		GpxVersion:                  gpx.Gpx11,
		GeocacheVersion:             gpx.Geocache100,
		EnableUnsupportedExtensions: true,
	})
	if diff := cmp.Diff(gpx.Geocache100Namespace, el.SelectAttrValue("xmlns", "")); diff != "" {
		t.Fatalf("cache namespace: %s", diff)
	}
	note := el.FindElement("personal_note")
	if note == nil {
		t.Fatalf("personal_note must be kept:\n%s", xmlString(t, el))
	}
	if diff := cmp.Diff(gpx.Geocache102Namespace, note.SelectAttrValue("xmlns", "")); diff != "" {
		t.Fatalf("personal_note namespace: %s", diff)
	}
	if el.SelectAttr("groundspeak102:memberonly") == nil {
		t.Fatalf("memberonly must be tagged:\n%s", xmlString(t, el))
	}

	parsed := gpx.ParseGeocache(el)
	if v := parsed.PersonalNote(); v == nil || *v != "bring a pen" {
		t.Fatalf("tagged personal note must parse back, got: %v", v)
	}
	if v := parsed.MemberOnly(); v == nil || !*v {
		t.Fatalf("tagged memberonly must parse back, got: %v", v)
	}
	if parsed.Images().Len() != 1 {
		t.Fatalf("tagged images must parse back")
	}
}

func TestGeocacheFlags(t *testing.T) {
	tt := []struct {
		name      string
		available bool
		archived  bool
		o         gpx.SerializationOptions
		expected  string
	}{
		{name: "defaults omitted", available: true, archived: false, o: gpx.DefaultOptions(),
			expected: `<cache xmlns="http://www.groundspeak.com/cache/1/0/1"/>`},
		{name: "non-defaults written", available: false, archived: true, o: gpx.DefaultOptions(),
			expected: `<cache xmlns="http://www.groundspeak.com/cache/1/0/1" available="False" archived="True"/>`},
		{name: "roundtrip writes all", available: true, archived: false, o: gpx.RoundtripOptions(),
			expected: `<cache xmlns="http://www.groundspeak.com/cache/1/0/2" available="True" archived="False"/>`},
	}
	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			g := gpx.NewGeocache()
			g.SetAvailable(gpx.Bool(tc.available))
			g.SetArchived(gpx.Bool(tc.archived))
			if diff := cmp.Diff(tc.expected, xmlString(t, g.Serialize(tc.o))); diff != "" {
				t.Fatal(diff)
			}
		})
	}
}

func TestGeocacheTypeIDSinceVersion102(t *testing.T) {
	c := gpx.NewGeocacheType()
	c.SetID(gpx.Int64(2))
	c.SetName(gpx.String("Traditional Cache"))

	result := xmlString(t, c.Serialize(gpx.DefaultOptions()))
	if diff := cmp.Diff(`<type xmlns="http://www.groundspeak.com/cache/1/0/1">Traditional Cache</type>`, result); diff != "" {
		t.Fatal(diff)
	}
	result = xmlString(t, c.Serialize(gpx.RoundtripOptions()))
	if diff := cmp.Diff(`<type xmlns="http://www.groundspeak.com/cache/1/0/2" id="2">Traditional Cache</type>`, result); diff != "" {
		t.Fatal(diff)
	}

	onlyID := gpx.NewGeocacheType()
	onlyID.SetID(gpx.Int64(2))
	if el := onlyID.Serialize(gpx.DefaultOptions()); el != nil {
		t.Fatalf("a type without name has nothing to write for 1.0.1, got: %s", xmlString(t, el))
	}
}

func TestGeocacheAttributeSerialize(t *testing.T) {
	a := gpx.NewGeocacheAttribute()
	a.SetID(gpx.Int64(13))
	a.SetInclude(gpx.Bool(false))
	a.SetName(gpx.String("Available at all times"))

	expected := `<attribute xmlns="http://www.groundspeak.com/cache/1/0/1" id="13" inc="0">Available at all times</attribute>`
	if diff := cmp.Diff(expected, xmlString(t, a.Serialize(gpx.DefaultOptions()))); diff != "" {
		t.Fatal(diff)
	}
	if el := a.Serialize(gpx.SerializationOptions{GeocacheVersion: gpx.Geocache100}); el != nil {
		t.Fatalf("attributes do not exist in 1.0.0, got: %s", xmlString(t, el))
	}
}

func TestContainerNumericValue(t *testing.T) {
	tt := []struct {
		name     string
		expected int
		ok       bool
	}{
		{name: "Micro", expected: 2, ok: true},
		{name: "small", expected: 3, ok: true},
		{name: "Regular", expected: 4, ok: true},
		{name: "LARGE", expected: 5, ok: true},
		{name: "Virtual", ok: false},
		{name: "Not chosen", ok: false},
	}
	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			c := gpx.NewGeocacheContainer()
			c.SetName(gpx.String(tc.name))
			v, ok := c.NumericValue()
			if v != tc.expected || ok != tc.ok {
				t.Fatalf("expected: %d, %t, got: %d, %t", tc.expected, tc.ok, v, ok)
			}
		})
	}
	if _, ok := gpx.NewGeocacheContainer().NumericValue(); ok {
		t.Fatalf("empty container must have no value")
	}
}

func TestMalformedFieldsAreSkipped(t *testing.T) {
	doc := etree.NewDocument()
	err := doc.ReadFromString(`<groundspeak:cache xmlns:groundspeak="http://www.groundspeak.com/cache/1/0/1" id="GC12" available="maybe">` +
		`<groundspeak:difficulty>hard</groundspeak:difficulty>` +
		`<groundspeak:terrain>2,5</groundspeak:terrain>` +
		`</groundspeak:cache>`)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	g := gpx.ParseGeocache(doc.Root())
	if v := g.ID(); v == nil || *v != gpx.UnknownID {
		t.Fatalf("non-numeric id must be the unknown sentinel, got: %v", v)
	}
	if g.Available() != nil || g.Difficulty() != nil {
		t.Fatalf("malformed values must be left unset")
	}
	if v := g.Terrain(); v == nil || *v != 2.5 {
		t.Fatalf("decimal comma must parse, got: %v", v)
	}
}

func TestLastNamespaceVariantWins(t *testing.T) {
	const decl = `xmlns:groundspeak="http://www.groundspeak.com/cache/1/0/1" xmlns:groundspeak102="http://www.groundspeak.com/cache/1/0/2"`

	tt := []struct {
		name         string
		input        string
		expectedID   int64
		expectedName string
	}{
		{
			name: "1.0.2 after 1.0.1",
			input: `<groundspeak:cache ` + decl + ` id="1" groundspeak102:id="2">` +
				`<groundspeak:name>older</groundspeak:name>` +
				`<groundspeak102:name>newer</groundspeak102:name>` +
				`</groundspeak:cache>`,
			expectedID:   2,
			expectedName: "newer",
		},
		{
			name: "1.0.1 after 1.0.2",
			input: `<groundspeak:cache ` + decl + ` groundspeak102:id="2" id="1">` +
				`<groundspeak102:name>newer</groundspeak102:name>` +
				`<groundspeak:name>older</groundspeak:name>` +
				`</groundspeak:cache>`,
			expectedID:   1,
			expectedName: "older",
		},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			doc := etree.NewDocument()
			if err := doc.ReadFromString(tc.input); err != nil {
				t.Fatalf("read: %v", err)
			}
			g := gpx.ParseGeocache(doc.Root())
			if diff := cmp.Diff(tc.expectedID, deref(t, g.ID())); diff != "" {
				t.Fatalf("id: %s", diff)
			}
			if diff := cmp.Diff(tc.expectedName, deref(t, g.Name())); diff != "" {
				t.Fatalf("name: %s", diff)
			}
			if g.ExtensionAttributes().Len() != 0 || g.ExtensionElements().Len() != 0 {
				t.Fatalf("every variant is mapped, nothing is unmapped")
			}
		})
	}
}

func TestDescriptionPlainText(t *testing.T) {
	d := gpx.NewGeocacheDescription()
	d.SetText(gpx.String("<b>bold</b> &amp; plain"))
	if diff := cmp.Diff("<b>bold</b> &amp; plain", d.PlainText()); diff != "" {
		t.Fatalf("non-HTML text must be returned as is: %s", diff)
	}
	d.SetHTML(gpx.Bool(true))
	if plain := d.PlainText(); !strings.Contains(plain, "bold & plain") {
		t.Fatalf("unexpected plain text: %q", plain)
	}
}
