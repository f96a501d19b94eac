package gpx

import (
	"github.com/beevik/etree"
	"github.com/k3a/html2text"

	"github.com/Knagis/GeoTransformer-sub000/internal/xmlutil"
	"github.com/Knagis/GeoTransformer-sub000/observable"
)

var (
	descriptionMapping *mapping[GeocacheDescription]
	logTextMapping     *mapping[GeocacheLogText]
	imageMapping       *mapping[GeocacheImage]
)

func init() {
	descriptionMapping = newMapping[GeocacheDescription]().
		attr(setBool((*GeocacheDescription).SetHTML), attrNames("html")...)
	logTextMapping = newMapping[GeocacheLogText]().
		attr(setBool((*GeocacheLogText).SetEncoded), attrNames("encoded")...)
	imageMapping = newMapping[GeocacheImage]().
		text(setString((*GeocacheImage).SetURL), cacheNames("url")...).
		text(setString((*GeocacheImage).SetName), cacheNames("name")...).
		text(setString((*GeocacheImage).SetDescription), cacheNames("description")...)
}

// GeocacheDescription is the short or long description of a cache.
type GeocacheDescription struct {
	observable.Element
	extensions

	html *bool
	text *string
}

// NewGeocacheDescription returns an empty description.
func NewGeocacheDescription() *GeocacheDescription {
	g := &GeocacheDescription{extensions: newExtensions()}
	g.Bind(g, nil)
	own(&g.Element, g.extensions.children())
	return g
}

// ParseGeocacheDescription reads a short_description or long_description
// element.
func ParseGeocacheDescription(el *etree.Element) *GeocacheDescription {
	g := NewGeocacheDescription()
	g.init(el, nopDecoder)
	return g
}

func (g *GeocacheDescription) init(el *etree.Element, d *decoder) {
	g.Suspend()
	descriptionMapping.initialize(g, el, &g.extensions, d)
	if s := el.Text(); s != "" {
		g.SetText(&s)
	}
	g.Resume(g.extensions.children()...)
}

// HTML reports whether the text is HTML.
func (g *GeocacheDescription) HTML() *bool        { return observable.Clone(g.html) }
func (g *GeocacheDescription) SetHTML(v *bool)    { observable.SetPtr(&g.Element, "HTML", &g.html, v) }
func (g *GeocacheDescription) Text() *string      { return observable.Clone(g.text) }
func (g *GeocacheDescription) SetText(v *string)  { observable.SetPtr(&g.Element, "Text", &g.text, v) }
func (g *GeocacheDescription) IsHTML() bool       { return g.html != nil && *g.html }
func (g *GeocacheDescription) HasValue() bool     { return g.html != nil || g.text != nil }
func (g *GeocacheDescription) copyFrom(src *GeocacheDescription) {
	g.SetHTML(src.html)
	g.SetText(src.text)
}

// PlainText returns the text with HTML markup converted to plain text.
func (g *GeocacheDescription) PlainText() string {
	if g.text == nil {
		return ""
	}
	if !g.IsHTML() {
		return *g.text
	}
	return html2text.HTML2Text(*g.text)
}

// SerializeAs writes the description as an element named local, usually
// short_description or long_description, or nil when empty. It panics if
// local is empty.
func (g *GeocacheDescription) SerializeAs(o SerializationOptions, local string) *etree.Element {
	if local == "" {
		panic("gpx: GeocacheDescription.SerializeAs: empty element name")
	}
	return tidy(g.serialize(o, o.cacheNS(), local))
}

func (g *GeocacheDescription) serialize(o SerializationOptions, ns namespace, local string) *etree.Element {
	if !g.HasValue() && !g.significant(o) {
		return nil
	}
	el := ns.element(local)
	if g.html != nil {
		el.CreateAttr("html", xmlutil.FormatBool(*g.html))
	}
	g.writeAttrs(el, o)
	if g.text != nil {
		el.SetText(*g.text)
	}
	g.writeElements(el, o)
	return el
}

func (g *GeocacheDescription) freeze() {
	g.Freeze()
	g.extensions.freeze()
}

// GeocacheLogText is the text of a log. Encoded marks ROT13 encoded text.
type GeocacheLogText struct {
	observable.Element
	extensions

	encoded *bool
	text    *string
}

// NewGeocacheLogText returns an empty log text.
func NewGeocacheLogText() *GeocacheLogText {
	t := &GeocacheLogText{extensions: newExtensions()}
	t.Bind(t, nil)
	own(&t.Element, t.extensions.children())
	return t
}

// ParseGeocacheLogText reads the groundspeak:text element of a log.
func ParseGeocacheLogText(el *etree.Element) *GeocacheLogText {
	t := NewGeocacheLogText()
	t.init(el, nopDecoder)
	return t
}

func (t *GeocacheLogText) init(el *etree.Element, d *decoder) {
	t.Suspend()
	logTextMapping.initialize(t, el, &t.extensions, d)
	if s := el.Text(); s != "" {
		t.SetText(&s)
	}
	t.Resume(t.extensions.children()...)
}

func (t *GeocacheLogText) Encoded() *bool     { return observable.Clone(t.encoded) }
func (t *GeocacheLogText) SetEncoded(v *bool) { observable.SetPtr(&t.Element, "Encoded", &t.encoded, v) }
func (t *GeocacheLogText) Text() *string      { return observable.Clone(t.text) }
func (t *GeocacheLogText) SetText(v *string)  { observable.SetPtr(&t.Element, "Text", &t.text, v) }
func (t *GeocacheLogText) HasValue() bool     { return t.encoded != nil || t.text != nil }
func (t *GeocacheLogText) copyFrom(src *GeocacheLogText) {
	t.SetEncoded(src.encoded)
	t.SetText(src.text)
}

// Serialize writes the text element, or nil when empty.
func (t *GeocacheLogText) Serialize(o SerializationOptions) *etree.Element {
	return tidy(t.serialize(o, o.cacheNS()))
}

func (t *GeocacheLogText) serialize(o SerializationOptions, ns namespace) *etree.Element {
	if !t.HasValue() && !t.significant(o) {
		return nil
	}
	el := ns.element("text")
	if t.encoded != nil {
		el.CreateAttr("encoded", xmlutil.FormatBool(*t.encoded))
	}
	t.writeAttrs(el, o)
	if t.text != nil {
		el.SetText(*t.text)
	}
	t.writeElements(el, o)
	return el
}

func (t *GeocacheLogText) freeze() {
	t.Freeze()
	t.extensions.freeze()
}

// GeocacheImage is an image attached to a cache or a log, available since
// Groundspeak 1.0.2.
type GeocacheImage struct {
	observable.Element
	extensions

	url         *string
	name        *string
	description *string
}

// NewGeocacheImage returns an empty image.
func NewGeocacheImage() *GeocacheImage {
	i := &GeocacheImage{extensions: newExtensions()}
	i.Bind(i, nil)
	own(&i.Element, i.extensions.children())
	return i
}

// ParseGeocacheImage reads a groundspeak:image element.
func ParseGeocacheImage(el *etree.Element) *GeocacheImage {
	i := NewGeocacheImage()
	i.init(el, nopDecoder)
	return i
}

func (i *GeocacheImage) init(el *etree.Element, d *decoder) {
	i.Suspend()
	imageMapping.initialize(i, el, &i.extensions, d)
	i.Resume(i.extensions.children()...)
}

func (i *GeocacheImage) URL() *string             { return observable.Clone(i.url) }
func (i *GeocacheImage) SetURL(v *string)         { observable.SetPtr(&i.Element, "URL", &i.url, v) }
func (i *GeocacheImage) Name() *string            { return observable.Clone(i.name) }
func (i *GeocacheImage) SetName(v *string)        { observable.SetPtr(&i.Element, "Name", &i.name, v) }
func (i *GeocacheImage) Description() *string     { return observable.Clone(i.description) }
func (i *GeocacheImage) SetDescription(v *string) { observable.SetPtr(&i.Element, "Description", &i.description, v) }

// Serialize writes the image element, or nil when empty or when the selected
// version has no images and unsupported extensions are disabled.
func (i *GeocacheImage) Serialize(o SerializationOptions) *etree.Element {
	ns, ok := o.cacheNSSince(Geocache102)
	if !ok {
		return nil
	}
	return tidy(i.serialize(o, ns))
}

func (i *GeocacheImage) serialize(o SerializationOptions, ns namespace) *etree.Element {
	if i.url == nil && i.name == nil && i.description == nil && !i.significant(o) {
		return nil
	}
	el := ns.element("image")
	i.writeAttrs(el, o)
	ns.optText(el, "url", i.url)
	ns.optText(el, "name", i.name)
	ns.optText(el, "description", i.description)
	i.writeElements(el, o)
	return el
}

func (i *GeocacheImage) clone() *GeocacheImage {
	c := NewGeocacheImage()
	if el := i.serialize(RoundtripOptions(), namespace{uri: Geocache102Namespace}); el != nil {
		c.init(el, nopDecoder)
	}
	return c
}

func (i *GeocacheImage) freeze() {
	i.Freeze()
	i.extensions.freeze()
}

// serializeImages writes an images wrapper holding every image and the kept
// content of w, or nil.
func serializeImages(o SerializationOptions, images *observable.Collection[*GeocacheImage], w *wrapper) *etree.Element {
	ns, ok := o.cacheNSSince(Geocache102)
	if !ok || images.Len() == 0 && !w.significant(o) {
		return nil
	}
	el := ns.element("images")
	w.writeAttrs(el, o)
	for _, img := range images.All() {
		xmlutil.AddChild(el, img.serialize(o, ns))
	}
	w.writeElements(el, o)
	if xmlutil.IsEmpty(el) {
		return nil
	}
	return el
}

func parseImages(el *etree.Element, w *wrapper, d *decoder) []*GeocacheImage {
	var r []*GeocacheImage
	for _, child := range w.read(el, "image", d) {
		img := NewGeocacheImage()
		img.init(child, d)
		r = append(r, img)
	}
	return r
}

func isCacheNamespace(ns string) bool {
	return ns == Geocache100Namespace || ns == Geocache101Namespace || ns == Geocache102Namespace
}
