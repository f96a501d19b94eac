package gpx

import (
	"strconv"
	"strings"

	"github.com/beevik/etree"

	"github.com/Knagis/GeoTransformer-sub000/internal/xmlutil"
	"github.com/Knagis/GeoTransformer-sub000/observable"
)

// idName is the shape shared by Groundspeak elements written as
// <local id="...">name</local>.
type idName struct {
	observable.Element
	extensions

	id   *int64
	name *string
}

func newIDName() idName { return idName{extensions: newExtensions()} }

// ID returns the numeric id, UnknownID when the input had a non-numeric one.
func (n *idName) ID() *int64     { return observable.Clone(n.id) }
func (n *idName) SetID(v *int64) { observable.SetPtr(&n.Element, "ID", &n.id, v) }

// Name returns the text content.
func (n *idName) Name() *string     { return observable.Clone(n.name) }
func (n *idName) SetName(v *string) { observable.SetPtr(&n.Element, "Name", &n.name, v) }

// HasValue reports whether the id or the name is set.
func (n *idName) HasValue() bool { return n.id != nil || n.name != nil }

// complete reports whether both the id and the name are set.
func (n *idName) complete() bool { return n.id != nil && n.name != nil }

func (n *idName) initText(el *etree.Element) {
	if s := el.Text(); strings.TrimSpace(s) != "" {
		n.SetName(&s)
	}
}

// copyFrom replaces both the id and the name with those of src.
func (n *idName) copyFrom(src *idName) {
	n.SetID(src.id)
	n.SetName(src.name)
}

func (n *idName) serialize(o SerializationOptions, ns namespace, local string, idSince GeocacheVersion) *etree.Element {
	if !n.HasValue() && !n.significant(o) {
		return nil
	}
	el := ns.element(local)
	if n.id != nil {
		o.attrSince(el, idSince, "id", strconv.FormatInt(*n.id, 10))
	}
	n.writeAttrs(el, o)
	if n.name != nil {
		el.SetText(*n.name)
	}
	n.writeElements(el, o)
	if xmlutil.IsEmpty(el) {
		return nil
	}
	return el
}

func (n *idName) freeze() {
	n.Freeze()
	n.extensions.freeze()
}

var (
	geocacheTypeMapping      *mapping[GeocacheType]
	geocacheContainerMapping *mapping[GeocacheContainer]
	geocacheLogTypeMapping   *mapping[GeocacheLogType]
	geocacheAccountMapping   *mapping[GeocacheAccount]
	geocacheAttributeMapping *mapping[GeocacheAttribute]
	geocacheTrackableMapping *mapping[GeocacheTrackable]
)

func init() {
	geocacheTypeMapping = newMapping[GeocacheType]().
		attr(setID((*GeocacheType).SetID), attrNames("id")...)
	geocacheContainerMapping = newMapping[GeocacheContainer]().
		attr(setID((*GeocacheContainer).SetID), attrNames("id")...)
	geocacheLogTypeMapping = newMapping[GeocacheLogType]().
		attr(setID((*GeocacheLogType).SetID), attrNames("id")...)
	geocacheAccountMapping = newMapping[GeocacheAccount]().
		attr(setID((*GeocacheAccount).SetID), attrNames("id")...)
	geocacheAttributeMapping = newMapping[GeocacheAttribute]().
		attr(setID((*GeocacheAttribute).SetID), attrNames("id")...).
		attr(setBool((*GeocacheAttribute).SetInclude), attrNames("inc")...)
	geocacheTrackableMapping = newMapping[GeocacheTrackable]().
		attr(setID((*GeocacheTrackable).SetID), attrNames("id")...).
		attr(setString((*GeocacheTrackable).SetRef), attrNames("ref")...).
		text(setString((*GeocacheTrackable).SetName), cacheNames("name")...)
}

// GeocacheType is the cache type, e.g. "Traditional Cache". The id is
// written from Groundspeak 1.0.2.
type GeocacheType struct{ idName }

// NewGeocacheType returns an empty cache type.
func NewGeocacheType() *GeocacheType {
	t := &GeocacheType{newIDName()}
	t.Bind(t, nil)
	own(&t.Element, t.extensions.children())
	return t
}

// ParseGeocacheType reads a groundspeak:type element.
func ParseGeocacheType(el *etree.Element) *GeocacheType {
	t := NewGeocacheType()
	t.init(el, nopDecoder)
	return t
}

func (t *GeocacheType) init(el *etree.Element, d *decoder) {
	t.Suspend()
	geocacheTypeMapping.initialize(t, el, &t.extensions, d)
	t.initText(el)
	t.Resume(t.extensions.children()...)
}

// Serialize writes the type element, or nil when empty.
func (t *GeocacheType) Serialize(o SerializationOptions) *etree.Element {
	return tidy(t.serialize(o, o.cacheNS(), "type", Geocache102))
}

// GeocacheContainer is the container size, e.g. "Small".
type GeocacheContainer struct{ idName }

// NewGeocacheContainer returns an empty container.
func NewGeocacheContainer() *GeocacheContainer {
	c := &GeocacheContainer{newIDName()}
	c.Bind(c, nil)
	own(&c.Element, c.extensions.children())
	return c
}

// ParseGeocacheContainer reads a groundspeak:container element.
func ParseGeocacheContainer(el *etree.Element) *GeocacheContainer {
	c := NewGeocacheContainer()
	c.init(el, nopDecoder)
	return c
}

func (c *GeocacheContainer) init(el *etree.Element, d *decoder) {
	c.Suspend()
	geocacheContainerMapping.initialize(c, el, &c.extensions, d)
	c.initText(el)
	c.Resume(c.extensions.children()...)
}

// Serialize writes the container element, or nil when empty.
func (c *GeocacheContainer) Serialize(o SerializationOptions) *etree.Element {
	return tidy(c.serialize(o, o.cacheNS(), "container", Geocache102))
}

// NumericValue maps the container name to the size ordinal used by Garmin
// devices: Micro 2, Small 3, Regular 4, Large 5. Other names have none.
func (c *GeocacheContainer) NumericValue() (int, bool) {
	if c.name == nil {
		return 0, false
	}
	switch strings.ToLower(strings.TrimSpace(*c.name)) {
	case "micro":
		return 2, true
	case "small":
		return 3, true
	case "regular":
		return 4, true
	case "large":
		return 5, true
	}
	return 0, false
}

// GeocacheLogType is the type of a log entry, e.g. "Found it".
type GeocacheLogType struct{ idName }

// NewGeocacheLogType returns an empty log type.
func NewGeocacheLogType() *GeocacheLogType {
	t := &GeocacheLogType{newIDName()}
	t.Bind(t, nil)
	own(&t.Element, t.extensions.children())
	return t
}

// ParseGeocacheLogType reads the groundspeak:type element of a log.
func ParseGeocacheLogType(el *etree.Element) *GeocacheLogType {
	t := NewGeocacheLogType()
	t.init(el, nopDecoder)
	return t
}

func (t *GeocacheLogType) init(el *etree.Element, d *decoder) {
	t.Suspend()
	geocacheLogTypeMapping.initialize(t, el, &t.extensions, d)
	t.initText(el)
	t.Resume(t.extensions.children()...)
}

// Serialize writes the log type element, or nil when empty.
func (t *GeocacheLogType) Serialize(o SerializationOptions) *etree.Element {
	return tidy(t.serialize(o, o.cacheNS(), "type", Geocache102))
}

// GeocacheAccount is a geocaching.com member, the owner of a cache or the
// finder of a log.
type GeocacheAccount struct{ idName }

// NewGeocacheAccount returns an empty account.
func NewGeocacheAccount() *GeocacheAccount {
	a := &GeocacheAccount{newIDName()}
	a.Bind(a, nil)
	own(&a.Element, a.extensions.children())
	return a
}

// ParseGeocacheAccount reads a groundspeak:owner or groundspeak:finder
// element.
func ParseGeocacheAccount(el *etree.Element) *GeocacheAccount {
	a := NewGeocacheAccount()
	a.init(el, nopDecoder)
	return a
}

func (a *GeocacheAccount) init(el *etree.Element, d *decoder) {
	a.Suspend()
	geocacheAccountMapping.initialize(a, el, &a.extensions, d)
	a.initText(el)
	a.Resume(a.extensions.children()...)
}

// SerializeAs writes the account as an element named local, or nil when
// empty. It panics if local is empty.
func (a *GeocacheAccount) SerializeAs(o SerializationOptions, local string) *etree.Element {
	if local == "" {
		panic("gpx: GeocacheAccount.SerializeAs: empty element name")
	}
	return tidy(a.serialize(o, o.cacheNS(), local, Geocache100))
}

// GeocacheAttribute is a cache attribute such as "Dogs allowed"; Include
// false means the negated form.
type GeocacheAttribute struct {
	idName

	include *bool
}

// NewGeocacheAttribute returns an empty attribute.
func NewGeocacheAttribute() *GeocacheAttribute {
	a := &GeocacheAttribute{idName: newIDName()}
	a.Bind(a, nil)
	own(&a.Element, a.extensions.children())
	return a
}

// ParseGeocacheAttribute reads a groundspeak:attribute element.
func ParseGeocacheAttribute(el *etree.Element) *GeocacheAttribute {
	a := NewGeocacheAttribute()
	a.init(el, nopDecoder)
	return a
}

func (a *GeocacheAttribute) init(el *etree.Element, d *decoder) {
	a.Suspend()
	geocacheAttributeMapping.initialize(a, el, &a.extensions, d)
	a.initText(el)
	a.Resume(a.extensions.children()...)
}

func (a *GeocacheAttribute) Include() *bool     { return observable.Clone(a.include) }
func (a *GeocacheAttribute) SetInclude(v *bool) { observable.SetPtr(&a.Element, "Include", &a.include, v) }

// Serialize writes the attribute element, or nil when empty. Attributes exist
// since Groundspeak 1.0.1.
func (a *GeocacheAttribute) Serialize(o SerializationOptions) *etree.Element {
	ns, ok := o.cacheNSSince(Geocache101)
	if !ok {
		return nil
	}
	return tidy(a.serialize(o, ns))
}

func (a *GeocacheAttribute) serialize(o SerializationOptions, ns namespace) *etree.Element {
	if !a.HasValue() && a.include == nil && !a.significant(o) {
		return nil
	}
	el := ns.element("attribute")
	if a.id != nil {
		el.CreateAttr("id", strconv.FormatInt(*a.id, 10))
	}
	if a.include != nil {
		inc := "0"
		if *a.include {
			inc = "1"
		}
		el.CreateAttr("inc", inc)
	}
	a.writeAttrs(el, o)
	if a.name != nil {
		el.SetText(*a.name)
	}
	a.writeElements(el, o)
	return el
}

func (a *GeocacheAttribute) clone() *GeocacheAttribute {
	c := NewGeocacheAttribute()
	if el := a.serialize(RoundtripOptions(), namespace{uri: Geocache102Namespace}); el != nil {
		c.init(el, nopDecoder)
	}
	return c
}

// GeocacheTrackable is a travel bug or geocoin currently in a cache.
type GeocacheTrackable struct {
	observable.Element
	extensions

	id   *int64
	ref  *string
	name *string
}

// NewGeocacheTrackable returns an empty trackable.
func NewGeocacheTrackable() *GeocacheTrackable {
	t := &GeocacheTrackable{extensions: newExtensions()}
	t.Bind(t, nil)
	own(&t.Element, t.extensions.children())
	return t
}

// ParseGeocacheTrackable reads a groundspeak:travelbug element.
func ParseGeocacheTrackable(el *etree.Element) *GeocacheTrackable {
	t := NewGeocacheTrackable()
	t.init(el, nopDecoder)
	return t
}

func (t *GeocacheTrackable) init(el *etree.Element, d *decoder) {
	t.Suspend()
	geocacheTrackableMapping.initialize(t, el, &t.extensions, d)
	t.Resume(t.extensions.children()...)
}

func (t *GeocacheTrackable) ID() *int64        { return observable.Clone(t.id) }
func (t *GeocacheTrackable) SetID(v *int64)    { observable.SetPtr(&t.Element, "ID", &t.id, v) }
func (t *GeocacheTrackable) Ref() *string      { return observable.Clone(t.ref) }
func (t *GeocacheTrackable) SetRef(v *string)  { observable.SetPtr(&t.Element, "Ref", &t.ref, v) }
func (t *GeocacheTrackable) Name() *string     { return observable.Clone(t.name) }
func (t *GeocacheTrackable) SetName(v *string) { observable.SetPtr(&t.Element, "Name", &t.name, v) }

// Serialize writes the travelbug element, or nil when empty.
func (t *GeocacheTrackable) Serialize(o SerializationOptions) *etree.Element {
	return tidy(t.serialize(o, o.cacheNS()))
}

func (t *GeocacheTrackable) serialize(o SerializationOptions, ns namespace) *etree.Element {
	if t.id == nil && t.ref == nil && t.name == nil && !t.significant(o) {
		return nil
	}
	el := ns.element("travelbug")
	if t.id != nil {
		el.CreateAttr("id", strconv.FormatInt(*t.id, 10))
	}
	if t.ref != nil {
		el.CreateAttr("ref", *t.ref)
	}
	t.writeAttrs(el, o)
	ns.optText(el, "name", t.name)
	t.writeElements(el, o)
	return el
}

func (t *GeocacheTrackable) clone() *GeocacheTrackable {
	c := NewGeocacheTrackable()
	if el := t.serialize(RoundtripOptions(), namespace{uri: Geocache102Namespace}); el != nil {
		c.init(el, nopDecoder)
	}
	return c
}

func (t *GeocacheTrackable) freeze() {
	t.Freeze()
	t.extensions.freeze()
}
