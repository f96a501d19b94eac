package gpx

import (
	"io"
	"slices"

	"github.com/beevik/etree"

	"github.com/Knagis/GeoTransformer-sub000/internal/xmlutil"
	"github.com/Knagis/GeoTransformer-sub000/observable"
)

// DefaultCreator is written when a document has no creator.
const DefaultCreator = "GeoTransformer"

var documentMapping *mapping[Document]

func init() {
	m := newMapping[Document]().
		attr(setString((*Document).SetCreator), names("creator")...).
		attr(func(*Document, string) error { return nil }, names("version")...).
		elem(func(doc *Document, el *etree.Element, d *decoder) error {
			doc.metadata.init(el, d)
			return nil
		}, gpxNames("metadata")...).
		elem(func(doc *Document, el *etree.Element, d *decoder) error {
			w := NewWaypoint()
			w.init(el, d)
			doc.waypoints.Append(w)
			return nil
		}, gpxNames("wpt")...).
		elem(func(doc *Document, el *etree.Element, _ *decoder) error {
			doc.routes.Append(observable.NewFragment(xmlutil.Detach(el)))
			return nil
		}, gpxNames("rte")...).
		elem(func(doc *Document, el *etree.Element, _ *decoder) error {
			doc.tracks.Append(observable.NewFragment(xmlutil.Detach(el)))
			return nil
		}, gpxNames("trk")...).
		elem(func(doc *Document, el *etree.Element, _ *decoder) error {
			for _, child := range el.ChildElements() {
				doc.elems.Append(observable.NewFragment(xmlutil.Detach(child)))
			}
			return nil
		}, gpxNames("extensions")...)
	addInlineMetadata(m)
	documentMapping = m
}

// Document is a GPX file: metadata, waypoints, and routes and tracks kept as
// raw XML.
type Document struct {
	observable.Element
	extensions

	creator   *string
	metadata  *Metadata
	waypoints *observable.Collection[*Waypoint]
	routes    *observable.Collection[*observable.Fragment]
	tracks    *observable.Collection[*observable.Fragment]
}

// NewDocument returns an empty document.
func NewDocument() *Document {
	doc := &Document{
		extensions: newExtensions(),
		metadata:   NewMetadata(),
		waypoints:  observable.NewCollection[*Waypoint](),
		routes:     observable.NewCollection[*observable.Fragment](),
		tracks:     observable.NewCollection[*observable.Fragment](),
	}
	doc.Bind(doc, nil)
	own(&doc.Element, doc.children())
	return doc
}

// ParseDocument reads a gpx root element of GPX 1.0 or 1.1.
func ParseDocument(el *etree.Element) (*Document, error) {
	return parseDocument(el, nopDecoder)
}

func parseDocument(el *etree.Element, d *decoder) (*Document, error) {
	n := xmlutil.ElementName(el)
	if n.Local != "gpx" || !slices.Contains(gpxNamespaces, n.Space) {
		return nil, ErrNotGPX
	}
	doc := NewDocument()
	doc.Suspend()
	documentMapping.initialize(doc, el, &doc.extensions, d)
	doc.Resume(doc.children()...)
	return doc, nil
}

func (doc *Document) children() []observable.Child {
	return append(doc.extensions.children(),
		observable.Child{Name: "Metadata", Value: doc.metadata},
		observable.Child{Name: "Waypoints", Value: doc.waypoints},
		observable.Child{Name: "Routes", Value: doc.routes},
		observable.Child{Name: "Tracks", Value: doc.tracks},
	)
}

func (doc *Document) Creator() *string     { return observable.Clone(doc.creator) }
func (doc *Document) SetCreator(v *string) { observable.SetPtr(&doc.Element, "Creator", &doc.creator, v) }

// Metadata returns the document metadata. It is never nil.
func (doc *Document) Metadata() *Metadata { return doc.metadata }

// SetMetadata replaces the metadata; nil stores empty metadata.
func (doc *Document) SetMetadata(v *Metadata) {
	if v == nil {
		v = NewMetadata()
	}
	observable.SetChild(&doc.Element, "Metadata", &doc.metadata, v)
}

func (doc *Document) Waypoints() *observable.Collection[*Waypoint] { return doc.waypoints }

// Routes returns the rte elements, kept as raw XML.
func (doc *Document) Routes() *observable.Collection[*observable.Fragment] { return doc.routes }

// Tracks returns the trk elements, kept as raw XML.
func (doc *Document) Tracks() *observable.Collection[*observable.Fragment] { return doc.tracks }

// Serialize writes the gpx root element with everything below it.
func (doc *Document) Serialize(o SerializationOptions) *etree.Element {
	root := doc.Header(o)
	ns := o.gpxNS()
	if o.gpx10() {
		doc.metadata.serializeInline(o, root)
	} else {
		xmlutil.AddChild(root, doc.metadata.serialize(o))
	}
	for _, w := range doc.waypoints.All() {
		root.AddChild(w.serialize(o))
	}
	for _, f := range doc.routes.All() {
		root.AddChild(retarget(f.Element(), o))
	}
	for _, f := range doc.tracks.All() {
		root.AddChild(retarget(f.Element(), o))
	}
	if o.extensionsEnabled() && doc.elems.Len() > 0 {
		parent := root
		if !o.gpx10() {
			parent = ns.element("extensions")
			root.AddChild(parent)
		}
		doc.writeElements(parent, o)
	}
	return tidy(root)
}

// Header returns the gpx root element without content, declaring the
// namespaces the content written under o refers to.
func (doc *Document) Header(o SerializationOptions) *etree.Element {
	root := o.gpxNS().element("gpx")
	root.CreateAttr("version", o.GpxVersion.String())
	creator := DefaultCreator
	if doc.creator != nil {
		creator = *doc.creator
	}
	root.CreateAttr("creator", creator)
	if o.GeocacheNamespaceWithPrefix && !o.DisableExtensions {
		root.CreateAttr("xmlns:"+geocachePrefix, o.GeocacheNamespace())
	}
	if o.extensionsEnabled() {
		root.CreateAttr("xmlns:"+geoTransformerPrefix, GeoTransformerNamespace)
	}
	doc.writeAttrs(root, o)
	return root
}

// WriteTo writes the document as an indented XML file.
func (doc *Document) WriteTo(w io.Writer, o SerializationOptions) (int64, error) {
	x := etree.NewDocument()
	x.CreateProcInst("xml", `version="1.0" encoding="utf-8"`)
	x.SetRoot(doc.Serialize(o))
	x.Indent(2)
	return x.WriteTo(w)
}

// retarget moves a raw GPX fragment into the GPX namespace selected by o.
func retarget(el *etree.Element, o SerializationOptions) *etree.Element {
	target := o.GpxNamespace()
	var walk func(e *etree.Element)
	walk = func(e *etree.Element) {
		for i, a := range e.Attr {
			if xmlutil.IsNamespaceDecl(a) && slices.Contains(gpxNamespaces, a.Value) {
				e.Attr[i].Value = target
			}
		}
		for _, c := range e.ChildElements() {
			walk(c)
		}
	}
	walk(el)
	return el
}
