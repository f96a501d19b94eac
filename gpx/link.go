package gpx

import (
	"strconv"
	"strings"

	"github.com/beevik/etree"

	"github.com/Knagis/GeoTransformer-sub000/internal/xmlutil"
	"github.com/Knagis/GeoTransformer-sub000/observable"
)

var (
	linkMapping      *mapping[Link]
	boundsMapping    *mapping[Bounds]
	copyrightMapping *mapping[Copyright]
	personMapping    *mapping[Person]
)

func init() {
	linkMapping = newMapping[Link]().
		attr(setString((*Link).SetHref), names("href")...).
		text(setString((*Link).SetText), gpxNames("text")...).
		text(setString((*Link).SetType), gpxNames("type")...)

	boundsMapping = newMapping[Bounds]().
		attr(setFloat((*Bounds).SetMinLat), names("minlat")...).
		attr(setFloat((*Bounds).SetMinLon), names("minlon")...).
		attr(setFloat((*Bounds).SetMaxLat), names("maxlat")...).
		attr(setFloat((*Bounds).SetMaxLon), names("maxlon")...)

	copyrightMapping = newMapping[Copyright]().
		attr(setString((*Copyright).SetAuthor), names("author")...).
		text(setInt((*Copyright).SetYear), gpxNames("year")...).
		text(setString((*Copyright).SetLicense), gpxNames("license")...)

	personMapping = newMapping[Person]().
		text(setString((*Person).SetName), gpxNames("name")...).
		elem(func(p *Person, el *etree.Element, _ *decoder) error {
			if id, domain := el.SelectAttr("id"), el.SelectAttr("domain"); id != nil && domain != nil {
				p.SetEmail(String(id.Value + "@" + domain.Value))
				return nil
			}
			p.SetEmail(String(el.Text()))
			return nil
		}, gpxNames("email")...).
		elem(func(p *Person, el *etree.Element, d *decoder) error {
			p.link.init(el, d)
			return nil
		}, gpxNames("link")...)
}

// Link is a GPX link: a URL with an optional text and MIME type.
type Link struct {
	observable.Element

	href     *string
	text     *string
	mimeType *string
}

// NewLink returns an empty link.
func NewLink() *Link {
	l := new(Link)
	l.Bind(l, nil)
	return l
}

// ParseLink reads a GPX 1.1 link element.
func ParseLink(el *etree.Element) *Link {
	l := NewLink()
	l.init(el, nopDecoder)
	return l
}

func (l *Link) init(el *etree.Element, d *decoder) {
	l.Suspend()
	linkMapping.initialize(l, el, nil, d)
	l.Resume()
}

func (l *Link) Href() *string     { return observable.Clone(l.href) }
func (l *Link) SetHref(v *string) { observable.SetPtr(&l.Element, "Href", &l.href, v) }
func (l *Link) Text() *string     { return observable.Clone(l.text) }
func (l *Link) SetText(v *string) { observable.SetPtr(&l.Element, "Text", &l.text, v) }
func (l *Link) Type() *string     { return observable.Clone(l.mimeType) }
func (l *Link) SetType(v *string) { observable.SetPtr(&l.Element, "Type", &l.mimeType, v) }

// IsEmpty reports whether no field is set.
func (l *Link) IsEmpty() bool { return l.href == nil && l.text == nil && l.mimeType == nil }

// Serialize writes the link as a GPX 1.1 link element, or nil when empty.
func (l *Link) Serialize(o SerializationOptions) *etree.Element {
	return tidy(l.serialize(o))
}

func (l *Link) serialize(o SerializationOptions) *etree.Element {
	if l.IsEmpty() {
		return nil
	}
	ns := o.gpxNS()
	el := ns.element("link")
	if l.href != nil {
		el.CreateAttr("href", *l.href)
	}
	ns.optText(el, "text", l.text)
	ns.optText(el, "type", l.mimeType)
	return el
}

func (l *Link) clone() *Link {
	c := NewLink()
	c.SetHref(l.href)
	c.SetText(l.text)
	c.SetType(l.mimeType)
	return c
}

func (l *Link) freeze() { l.Freeze() }

// Bounds is the bounding box of a document.
type Bounds struct {
	observable.Element

	minLat, minLon, maxLat, maxLon *float64
}

// NewBounds returns empty bounds.
func NewBounds() *Bounds {
	b := new(Bounds)
	b.Bind(b, nil)
	return b
}

// ParseBounds reads a bounds element.
func ParseBounds(el *etree.Element) *Bounds {
	b := NewBounds()
	b.init(el, nopDecoder)
	return b
}

func (b *Bounds) init(el *etree.Element, d *decoder) {
	b.Suspend()
	boundsMapping.initialize(b, el, nil, d)
	b.Resume()
}

func (b *Bounds) MinLat() *float64     { return observable.Clone(b.minLat) }
func (b *Bounds) SetMinLat(v *float64) { observable.SetPtr(&b.Element, "MinLat", &b.minLat, v) }
func (b *Bounds) MinLon() *float64     { return observable.Clone(b.minLon) }
func (b *Bounds) SetMinLon(v *float64) { observable.SetPtr(&b.Element, "MinLon", &b.minLon, v) }
func (b *Bounds) MaxLat() *float64     { return observable.Clone(b.maxLat) }
func (b *Bounds) SetMaxLat(v *float64) { observable.SetPtr(&b.Element, "MaxLat", &b.maxLat, v) }
func (b *Bounds) MaxLon() *float64     { return observable.Clone(b.maxLon) }
func (b *Bounds) SetMaxLon(v *float64) { observable.SetPtr(&b.Element, "MaxLon", &b.maxLon, v) }

// IsEmpty reports whether no coordinate is set.
func (b *Bounds) IsEmpty() bool {
	return b.minLat == nil && b.minLon == nil && b.maxLat == nil && b.maxLon == nil
}

// Serialize writes the bounds element, or nil when empty.
func (b *Bounds) Serialize(o SerializationOptions) *etree.Element {
	return tidy(b.serialize(o))
}

func (b *Bounds) serialize(o SerializationOptions) *etree.Element {
	if b.IsEmpty() {
		return nil
	}
	el := o.gpxNS().element("bounds")
	for _, a := range []struct {
		key string
		v   *float64
	}{{"minlat", b.minLat}, {"minlon", b.minLon}, {"maxlat", b.maxLat}, {"maxlon", b.maxLon}} {
		if a.v != nil {
			el.CreateAttr(a.key, xmlutil.FormatCoordinate(*a.v, o.fullPrecision()))
		}
	}
	return el
}

func (b *Bounds) freeze() { b.Freeze() }

// Copyright holds the copyright and license of a document.
type Copyright struct {
	observable.Element

	author  *string
	year    *int
	license *string
}

// NewCopyright returns an empty copyright.
func NewCopyright() *Copyright {
	c := new(Copyright)
	c.Bind(c, nil)
	return c
}

// ParseCopyright reads a GPX 1.1 copyright element.
func ParseCopyright(el *etree.Element) *Copyright {
	c := NewCopyright()
	c.init(el, nopDecoder)
	return c
}

func (c *Copyright) init(el *etree.Element, d *decoder) {
	c.Suspend()
	copyrightMapping.initialize(c, el, nil, d)
	c.Resume()
}

func (c *Copyright) Author() *string      { return observable.Clone(c.author) }
func (c *Copyright) SetAuthor(v *string)  { observable.SetPtr(&c.Element, "Author", &c.author, v) }
func (c *Copyright) Year() *int           { return observable.Clone(c.year) }
func (c *Copyright) SetYear(v *int)       { observable.SetPtr(&c.Element, "Year", &c.year, v) }
func (c *Copyright) License() *string     { return observable.Clone(c.license) }
func (c *Copyright) SetLicense(v *string) { observable.SetPtr(&c.Element, "License", &c.license, v) }

// IsEmpty reports whether no field is set.
func (c *Copyright) IsEmpty() bool { return c.author == nil && c.year == nil && c.license == nil }

// Serialize writes the copyright element, or nil when empty. GPX 1.0 has no
// copyright; it is written there only with EnableInvalidElements.
func (c *Copyright) Serialize(o SerializationOptions) *etree.Element {
	return tidy(c.serialize(o))
}

func (c *Copyright) serialize(o SerializationOptions) *etree.Element {
	if c.IsEmpty() || o.gpx10() && !o.EnableInvalidElements {
		return nil
	}
	ns := o.gpxNS()
	el := ns.element("copyright")
	if c.author != nil {
		el.CreateAttr("author", *c.author)
	}
	if c.year != nil {
		ns.text(el, "year", strconv.Itoa(*c.year))
	}
	ns.optText(el, "license", c.license)
	return el
}

func (c *Copyright) freeze() { c.Freeze() }

// Person is the author of a document.
type Person struct {
	observable.Element

	name  *string
	email *string
	link  *Link
}

// NewPerson returns an empty person.
func NewPerson() *Person {
	p := &Person{link: NewLink()}
	p.Bind(p, nil)
	own(&p.Element, p.children())
	return p
}

// ParsePerson reads a GPX 1.1 personType element.
func ParsePerson(el *etree.Element) *Person {
	p := NewPerson()
	p.init(el, nopDecoder)
	return p
}

func (p *Person) init(el *etree.Element, d *decoder) {
	p.Suspend()
	personMapping.initialize(p, el, nil, d)
	p.Resume(p.children()...)
}

func (p *Person) children() []observable.Child {
	return []observable.Child{{Name: "Link", Value: p.link}}
}

func (p *Person) Name() *string     { return observable.Clone(p.name) }
func (p *Person) SetName(v *string) { observable.SetPtr(&p.Element, "Name", &p.name, v) }

// Email returns the address as user@domain.
func (p *Person) Email() *string     { return observable.Clone(p.email) }
func (p *Person) SetEmail(v *string) { observable.SetPtr(&p.Element, "Email", &p.email, v) }

// Link returns the link to the person's web page. It is never nil.
func (p *Person) Link() *Link { return p.link }

// SetLink replaces the link; nil stores an empty one.
func (p *Person) SetLink(v *Link) {
	if v == nil {
		v = NewLink()
	}
	observable.SetChild(&p.Element, "Link", &p.link, v)
}

// IsEmpty reports whether no field is set.
func (p *Person) IsEmpty() bool { return p.name == nil && p.email == nil && p.link.IsEmpty() }

// Serialize writes the person as a GPX 1.1 element named local, or nil when
// empty.
func (p *Person) Serialize(o SerializationOptions, local string) *etree.Element {
	return tidy(p.serialize(o, local))
}

func (p *Person) serialize(o SerializationOptions, local string) *etree.Element {
	if p.IsEmpty() {
		return nil
	}
	ns := o.gpxNS()
	el := ns.element(local)
	ns.optText(el, "name", p.name)
	if p.email != nil {
		if id, domain, ok := strings.Cut(*p.email, "@"); ok {
			e := ns.element("email")
			e.CreateAttr("id", id)
			e.CreateAttr("domain", domain)
			el.AddChild(e)
		} else {
			ns.text(el, "email", *p.email)
		}
	}
	xmlutil.AddChild(el, p.link.serialize(o))
	return el
}

func (p *Person) freeze() {
	p.Freeze()
	p.link.freeze()
}
