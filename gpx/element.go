package gpx

import (
	"strconv"
	"strings"
	"time"

	"github.com/beevik/etree"
	"go.uber.org/zap"

	"github.com/Knagis/GeoTransformer-sub000/internal/xmlutil"
	"github.com/Knagis/GeoTransformer-sub000/observable"
)

// Attr is an attribute read from the input that no field maps.
type Attr = xmlutil.Attr

// UnknownID is stored for identifiers that are not numeric, such as the
// reference codes some Groundspeak 1.0.2 producers write instead of ids.
const UnknownID int64 = -1

// ParseID parses a numeric identifier. Non-numeric input yields UnknownID.
func ParseID(s string) int64 {
	v, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		// TODO: convert GC/TB reference codes to their numeric ids.
		return UnknownID
	}
	return v
}

// decoder carries the state shared by one parse.
type decoder struct {
	log *zap.Logger
}

var nopDecoder = &decoder{log: zap.NewNop()}

func (d *decoder) malformed(el *etree.Element, name xmlutil.Name, value string, err error) {
	d.log.Debug("ignoring malformed value",
		zap.String("element", el.FullTag()),
		zap.Stringer("name", name),
		zap.String("value", value),
		zap.Error(err))
}

func (d *decoder) unmapped(el *etree.Element, name xmlutil.Name) {
	d.log.Debug("keeping unmapped content",
		zap.String("element", el.FullTag()),
		zap.Stringer("name", name))
}

type (
	attrSetter[T any] func(t *T, value string) error
	elemSetter[T any] func(t *T, el *etree.Element, d *decoder) error
)

// mapping holds the initializers of one model type, keyed by the qualified
// names the field may appear under. Mappings are filled in init functions
// because their closures refer back to the parse functions of the types.
type mapping[T any] struct {
	attrs map[xmlutil.Name]attrSetter[T]
	elems map[xmlutil.Name]elemSetter[T]
}

func newMapping[T any]() *mapping[T] {
	return &mapping[T]{
		attrs: make(map[xmlutil.Name]attrSetter[T]),
		elems: make(map[xmlutil.Name]elemSetter[T]),
	}
}

func (m *mapping[T]) attr(fn attrSetter[T], names ...xmlutil.Name) *mapping[T] {
	for _, n := range names {
		m.attrs[n] = fn
	}
	return m
}

func (m *mapping[T]) elem(fn elemSetter[T], names ...xmlutil.Name) *mapping[T] {
	for _, n := range names {
		m.elems[n] = fn
	}
	return m
}

// text maps elements whose text content is the value.
func (m *mapping[T]) text(fn attrSetter[T], names ...xmlutil.Name) *mapping[T] {
	return m.elem(func(t *T, el *etree.Element, _ *decoder) error { return fn(t, el.Text()) }, names...)
}

// initialize runs the initializers for the attributes and child elements of
// el in document order, so the last of several names mapping the same field
// wins. Unmapped content goes to x; with a nil x it is dropped. A failing
// initializer leaves its field unset.
func (m *mapping[T]) initialize(t *T, el *etree.Element, x *extensions, d *decoder) {
	for _, a := range el.Attr {
		if xmlutil.IsNamespaceDecl(a) {
			continue
		}
		n := xmlutil.AttrName(el, a)
		if fn, ok := m.attrs[n]; ok {
			if err := fn(t, a.Value); err != nil {
				d.malformed(el, n, a.Value, err)
			}
			continue
		}
		if x != nil {
			d.unmapped(el, n)
			x.attrs.Append(xmlutil.DetachAttr(el, a))
		}
	}
	for _, child := range el.ChildElements() {
		n := xmlutil.ElementName(child)
		if fn, ok := m.elems[n]; ok {
			if err := fn(t, child, d); err != nil {
				d.malformed(child, n, child.Text(), err)
			}
			continue
		}
		if x != nil {
			d.unmapped(child, n)
			x.elems.Append(observable.NewFragment(xmlutil.Detach(child)))
		}
	}
}

// names returns local qualified by each of spaces, or unqualified when no
// space is given.
func names(local string, spaces ...string) []xmlutil.Name {
	if len(spaces) == 0 {
		return []xmlutil.Name{{Local: local}}
	}
	r := make([]xmlutil.Name, len(spaces))
	for i, s := range spaces {
		r[i] = xmlutil.Name{Space: s, Local: local}
	}
	return r
}

func gpxNames(local string) []xmlutil.Name { return names(local, gpxNamespaces...) }

func cacheNames(local string) []xmlutil.Name { return names(local, geocacheNamespaces...) }

// attrNames matches an unqualified attribute and its copy tagged with the
// 1.0.2 namespace for older versions.
func attrNames(local string) []xmlutil.Name {
	return []xmlutil.Name{{Local: local}, {Space: Geocache102Namespace, Local: local}}
}

func setString[T any](set func(*T, *string)) attrSetter[T] {
	return func(t *T, v string) error {
		set(t, &v)
		return nil
	}
}

func setInt[T any](set func(*T, *int)) attrSetter[T] {
	return func(t *T, v string) error {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return err
		}
		set(t, &n)
		return nil
	}
}

func setFloat[T any](set func(*T, *float64)) attrSetter[T] {
	return func(t *T, v string) error {
		f, err := xmlutil.ParseFloat(v)
		if err != nil {
			return err
		}
		set(t, &f)
		return nil
	}
}

func setBool[T any](set func(*T, *bool)) attrSetter[T] {
	return func(t *T, v string) error {
		b, err := xmlutil.ParseBool(v)
		if err != nil {
			return err
		}
		set(t, &b)
		return nil
	}
}

func setTime[T any](set func(*T, *time.Time)) attrSetter[T] {
	return func(t *T, v string) error {
		tm, err := xmlutil.ParseTime(v)
		if err != nil {
			return err
		}
		set(t, &tm)
		return nil
	}
}

func setID[T any](set func(*T, *int64)) attrSetter[T] {
	return func(t *T, v string) error {
		id := ParseID(v)
		set(t, &id)
		return nil
	}
}

// extensions keeps the attributes and elements of an element that no field
// maps, in input order.
type extensions struct {
	attrs *observable.Collection[Attr]
	elems *observable.Collection[*observable.Fragment]
}

func newExtensions() extensions {
	return extensions{
		attrs: observable.NewCollection[Attr](),
		elems: observable.NewCollection[*observable.Fragment](),
	}
}

// ExtensionAttributes returns the preserved unmapped attributes.
func (x *extensions) ExtensionAttributes() *observable.Collection[Attr] { return x.attrs }

// ExtensionElements returns the preserved unmapped child elements.
func (x *extensions) ExtensionElements() *observable.Collection[*observable.Fragment] {
	return x.elems
}

func (x *extensions) children() []observable.Child {
	return []observable.Child{
		{Name: "ExtensionAttributes", Value: x.attrs},
		{Name: "ExtensionElements", Value: x.elems},
	}
}

func (x *extensions) hasContent() bool { return x.attrs.Len() > 0 || x.elems.Len() > 0 }

// significant reports whether the extensions alone make an element worth
// writing under o.
func (x *extensions) significant(o SerializationOptions) bool {
	return o.extensionsEnabled() && x.hasContent()
}

func (x *extensions) writeAttrs(el *etree.Element, o SerializationOptions) {
	if !o.extensionsEnabled() {
		return
	}
	for _, a := range x.attrs.All() {
		xmlutil.WriteAttr(el, a)
	}
}

func (x *extensions) writeElements(el *etree.Element, o SerializationOptions) {
	if !o.extensionsEnabled() {
		return
	}
	for _, f := range x.elems.All() {
		el.AddChild(f.Element())
	}
}

func (x *extensions) freeze() {
	x.attrs.Freeze()
	for _, f := range x.elems.All() {
		f.Freeze()
	}
	x.elems.Freeze()
}

// wrapper keeps the unmapped content of an element that groups a list, such
// as groundspeak:logs, or that carries a few mapped attributes, such as
// groundspeak:log_wpt. It is written back around the mapped content.
type wrapper struct {
	extensions
	property string
}

func newWrapper(property string) wrapper {
	return wrapper{extensions: newExtensions(), property: property}
}

func (w *wrapper) children() []observable.Child {
	return []observable.Child{
		{Name: w.property + "ExtensionAttributes", Value: w.attrs},
		{Name: w.property + "ExtensionElements", Value: w.elems},
	}
}

// read keeps every attribute and every child of el except the Groundspeak
// children called item, which are returned in document order.
func (w *wrapper) read(el *etree.Element, item string, d *decoder) []*etree.Element {
	for _, a := range el.Attr {
		w.keepAttr(el, a, d)
	}
	var items []*etree.Element
	for _, child := range el.ChildElements() {
		if n := xmlutil.ElementName(child); n.Local == item && isCacheNamespace(n.Space) {
			items = append(items, child)
			continue
		}
		w.keepElement(child, d)
	}
	return items
}

func (w *wrapper) keepAttr(el *etree.Element, a etree.Attr, d *decoder) {
	if xmlutil.IsNamespaceDecl(a) {
		return
	}
	d.unmapped(el, xmlutil.AttrName(el, a))
	w.attrs.Append(xmlutil.DetachAttr(el, a))
}

func (w *wrapper) keepElement(child *etree.Element, d *decoder) {
	d.unmapped(child, xmlutil.ElementName(child))
	w.elems.Append(observable.NewFragment(xmlutil.Detach(child)))
}

// write adds the kept content to el when o writes unsupported extensions.
func (w *wrapper) write(el *etree.Element, o SerializationOptions) {
	w.writeAttrs(el, o)
	w.writeElements(el, o)
}

// own subscribes e to every child without raising a change.
func own(e *observable.Element, children []observable.Child) {
	for _, c := range children {
		e.Own(c.Name, c.Value)
	}
}

type freezer interface{ freeze() }

func freezeAll[T freezer](c *observable.Collection[T]) {
	for _, v := range c.All() {
		v.freeze()
	}
	c.Freeze()
}

func hasLen[T any](c *observable.Collection[T]) bool { return c.Len() > 0 }
