package gpx

import (
	"time"

	"github.com/beevik/etree"

	"github.com/Knagis/GeoTransformer-sub000/internal/xmlutil"
	"github.com/Knagis/GeoTransformer-sub000/observable"
)

var metadataMapping *mapping[Metadata]

func init() {
	metadataMapping = newMapping[Metadata]().
		text(setString((*Metadata).SetName), gpxNames("name")...).
		text(setString((*Metadata).SetDescription), gpxNames("desc")...).
		elem(func(m *Metadata, el *etree.Element, d *decoder) error {
			m.author.init(el, d)
			return nil
		}, gpxNames("author")...).
		elem(func(m *Metadata, el *etree.Element, d *decoder) error {
			m.copyright.init(el, d)
			return nil
		}, gpxNames("copyright")...).
		elem(func(m *Metadata, el *etree.Element, d *decoder) error {
			l := NewLink()
			l.init(el, d)
			m.links.Append(l)
			return nil
		}, gpxNames("link")...).
		text(setTime((*Metadata).SetTime), gpxNames("time")...).
		text(setString((*Metadata).SetKeywords), gpxNames("keywords")...).
		elem(func(m *Metadata, el *etree.Element, d *decoder) error {
			m.bounds.init(el, d)
			return nil
		}, gpxNames("bounds")...).
		elem(func(m *Metadata, el *etree.Element, _ *decoder) error {
			for _, child := range el.ChildElements() {
				m.elems.Append(observable.NewFragment(xmlutil.Detach(child)))
			}
			return nil
		}, gpxNames("extensions")...)
}

// Metadata describes a document. GPX 1.1 writes it as a metadata element,
// GPX 1.0 as fields of the gpx root.
type Metadata struct {
	observable.Element
	extensions

	name        *string
	description *string
	author      *Person
	copyright   *Copyright
	links       *observable.Collection[*Link]
	time        *time.Time
	keywords    *string
	bounds      *Bounds
}

// NewMetadata returns empty metadata.
func NewMetadata() *Metadata {
	m := &Metadata{
		extensions: newExtensions(),
		author:     NewPerson(),
		copyright:  NewCopyright(),
		links:      observable.NewCollection[*Link](),
		bounds:     NewBounds(),
	}
	m.Bind(m, nil)
	own(&m.Element, m.children())
	return m
}

// ParseMetadata reads a GPX 1.1 metadata element. A GPX 1.0 element has no
// metadata and yields empty metadata.
func ParseMetadata(el *etree.Element) *Metadata {
	m := NewMetadata()
	m.init(el, nopDecoder)
	return m
}

func (m *Metadata) init(el *etree.Element, d *decoder) {
	if xmlutil.ElementName(el).Space != Gpx11Namespace {
		return
	}
	m.Suspend()
	metadataMapping.initialize(m, el, &m.extensions, d)
	m.Resume(m.children()...)
}

func (m *Metadata) children() []observable.Child {
	return append(m.extensions.children(),
		observable.Child{Name: "Author", Value: m.author},
		observable.Child{Name: "Copyright", Value: m.copyright},
		observable.Child{Name: "Links", Value: m.links},
		observable.Child{Name: "Bounds", Value: m.bounds},
	)
}

func (m *Metadata) Name() *string            { return observable.Clone(m.name) }
func (m *Metadata) SetName(v *string)        { observable.SetPtr(&m.Element, "Name", &m.name, v) }
func (m *Metadata) Description() *string     { return observable.Clone(m.description) }
func (m *Metadata) SetDescription(v *string) { observable.SetPtr(&m.Element, "Description", &m.description, v) }
func (m *Metadata) Time() *time.Time         { return observable.Clone(m.time) }
func (m *Metadata) SetTime(v *time.Time)     { observable.SetPtr(&m.Element, "Time", &m.time, utc(v)) }
func (m *Metadata) Keywords() *string        { return observable.Clone(m.keywords) }
func (m *Metadata) SetKeywords(v *string)    { observable.SetPtr(&m.Element, "Keywords", &m.keywords, v) }

// Author returns the author. It is never nil.
func (m *Metadata) Author() *Person { return m.author }

// SetAuthor replaces the author; nil stores an empty one.
func (m *Metadata) SetAuthor(v *Person) {
	if v == nil {
		v = NewPerson()
	}
	observable.SetChild(&m.Element, "Author", &m.author, v)
}

// Copyright returns the copyright. It is never nil.
func (m *Metadata) Copyright() *Copyright { return m.copyright }

// SetCopyright replaces the copyright; nil stores an empty one.
func (m *Metadata) SetCopyright(v *Copyright) {
	if v == nil {
		v = NewCopyright()
	}
	observable.SetChild(&m.Element, "Copyright", &m.copyright, v)
}

// Bounds returns the bounds. It is never nil.
func (m *Metadata) Bounds() *Bounds { return m.bounds }

// SetBounds replaces the bounds; nil stores empty ones.
func (m *Metadata) SetBounds(v *Bounds) {
	if v == nil {
		v = NewBounds()
	}
	observable.SetChild(&m.Element, "Bounds", &m.bounds, v)
}

func (m *Metadata) Links() *observable.Collection[*Link] { return m.links }

// IsEmpty reports whether no field is set.
func (m *Metadata) IsEmpty() bool {
	return m.name == nil && m.description == nil && m.author.IsEmpty() && m.copyright.IsEmpty() &&
		m.links.Len() == 0 && m.time == nil && m.keywords == nil && m.bounds.IsEmpty()
}

// Serialize writes the GPX 1.1 metadata element, or nil when empty or when
// o selects GPX 1.0, which stores metadata on the root element.
func (m *Metadata) Serialize(o SerializationOptions) *etree.Element {
	return tidy(m.serialize(o))
}

func (m *Metadata) serialize(o SerializationOptions) *etree.Element {
	if o.gpx10() || m.IsEmpty() && !m.significant(o) {
		return nil
	}
	ns := o.gpxNS()
	el := ns.element("metadata")
	m.writeAttrs(el, o)
	ns.optText(el, "name", m.name)
	ns.optText(el, "desc", m.description)
	xmlutil.AddChild(el, m.author.serialize(o, "author"))
	xmlutil.AddChild(el, m.copyright.serialize(o))
	for _, l := range m.links.All() {
		xmlutil.AddChild(el, l.serialize(o))
	}
	ns.optTime(el, "time", m.time)
	ns.optText(el, "keywords", m.keywords)
	xmlutil.AddChild(el, m.bounds.serialize(o))
	if o.extensionsEnabled() && m.elems.Len() > 0 {
		ext := ns.element("extensions")
		m.writeElements(ext, o)
		el.AddChild(ext)
	}
	return el
}

// serializeInline writes the metadata as GPX 1.0 fields of root.
func (m *Metadata) serializeInline(o SerializationOptions, root *etree.Element) {
	ns := o.gpxNS()
	ns.optText(root, "name", m.name)
	ns.optText(root, "desc", m.description)
	ns.optText(root, "author", m.author.name)
	ns.optText(root, "email", m.author.email)
	for _, l := range m.links.All() {
		if !l.IsEmpty() {
			ns.optText(root, "url", l.href)
			ns.optText(root, "urlname", l.text)
			break
		}
	}
	ns.optTime(root, "time", m.time)
	ns.optText(root, "keywords", m.keywords)
	xmlutil.AddChild(root, m.bounds.serialize(o))
	xmlutil.AddChild(root, m.copyright.serialize(o))
}

// addInlineMetadata maps the GPX 1.0 metadata fields of the root element.
func addInlineMetadata(dm *mapping[Document]) {
	dm.
		text(func(doc *Document, v string) error {
			doc.metadata.SetName(&v)
			return nil
		}, names("name", Gpx10Namespace)...).
		text(func(doc *Document, v string) error {
			doc.metadata.SetDescription(&v)
			return nil
		}, names("desc", Gpx10Namespace)...).
		text(func(doc *Document, v string) error {
			doc.metadata.author.SetName(&v)
			return nil
		}, names("author", Gpx10Namespace)...).
		text(func(doc *Document, v string) error {
			doc.metadata.author.SetEmail(&v)
			return nil
		}, names("email", Gpx10Namespace)...).
		text(func(doc *Document, v string) error {
			doc.metadata.firstLink().SetHref(&v)
			return nil
		}, names("url", Gpx10Namespace)...).
		text(func(doc *Document, v string) error {
			doc.metadata.firstLink().SetText(&v)
			return nil
		}, names("urlname", Gpx10Namespace)...).
		text(func(doc *Document, v string) error {
			return setTime((*Metadata).SetTime)(doc.metadata, v)
		}, names("time", Gpx10Namespace)...).
		text(func(doc *Document, v string) error {
			doc.metadata.SetKeywords(&v)
			return nil
		}, names("keywords", Gpx10Namespace)...).
		elem(func(doc *Document, el *etree.Element, d *decoder) error {
			doc.metadata.bounds.init(el, d)
			return nil
		}, names("bounds", Gpx10Namespace)...).
		elem(func(doc *Document, el *etree.Element, d *decoder) error {
			doc.metadata.copyright.init(el, d)
			return nil
		}, names("copyright", Gpx10Namespace)...)
}

func (m *Metadata) firstLink() *Link {
	if m.links.Len() == 0 {
		m.links.Append(NewLink())
	}
	return m.links.At(0)
}

func (m *Metadata) freeze() {
	m.Freeze()
	m.extensions.freeze()
	m.author.freeze()
	m.copyright.freeze()
	freezeAll(m.links)
	m.bounds.freeze()
}
