// Package gpx is an object model for GPX 1.0 and 1.1 documents carrying
// Groundspeak geocache extensions. Entities are read from and written to
// etree elements and keep the content they do not map as extensions.
// Changes are reported through the observable package.
package gpx

import (
	"fmt"
	"strings"
	"time"

	"github.com/beevik/etree"

	"github.com/Knagis/GeoTransformer-sub000/internal/xmlutil"
)

// XML namespaces of the supported schemas.
const (
	Gpx10Namespace          = "http://www.topografix.com/GPX/1/0"
	Gpx11Namespace          = "http://www.topografix.com/GPX/1/1"
	Geocache100Namespace    = "http://www.groundspeak.com/cache/1/0"
	Geocache101Namespace    = "http://www.groundspeak.com/cache/1/0/1"
	Geocache102Namespace    = "http://www.groundspeak.com/cache/1/0/2"
	GeoTransformerNamespace = "http://www.geotransformer.net/extensions/1"
)

var (
	gpxNamespaces      = []string{Gpx10Namespace, Gpx11Namespace}
	geocacheNamespaces = []string{Geocache100Namespace, Geocache101Namespace, Geocache102Namespace}
)

const (
	geocachePrefix         = "groundspeak"
	geocacheExtendedPrefix = "groundspeak102"
	geoTransformerPrefix   = "geotransformer"
)

// GpxVersion selects the GPX schema written by Serialize.
type GpxVersion uint8

const (
	Gpx10 GpxVersion = 10
	Gpx11 GpxVersion = 11
)

func (v GpxVersion) String() string {
	if v == Gpx10 {
		return "1.0"
	}
	return "1.1"
}

// ParseGpxVersion parses "1.0" or "1.1".
func ParseGpxVersion(s string) (GpxVersion, error) {
	switch strings.TrimSpace(s) {
	case "1.0", "1/0", "10":
		return Gpx10, nil
	case "1.1", "1/1", "11":
		return Gpx11, nil
	}
	return 0, fmt.Errorf("gpx version %q: %w", s, ErrUnsupportedVersion)
}

// GeocacheVersion selects the Groundspeak cache extension schema.
type GeocacheVersion uint8

const (
	Geocache100 GeocacheVersion = 100
	Geocache101 GeocacheVersion = 101
	Geocache102 GeocacheVersion = 102
)

func (v GeocacheVersion) String() string {
	switch v {
	case Geocache100:
		return "1.0.0"
	case Geocache102:
		return "1.0.2"
	}
	return "1.0.1"
}

// ParseGeocacheVersion parses "1.0.0", "1.0.1" or "1.0.2".
func ParseGeocacheVersion(s string) (GeocacheVersion, error) {
	switch strings.TrimSpace(s) {
	case "1.0.0", "1.0", "100":
		return Geocache100, nil
	case "1.0.1", "101":
		return Geocache101, nil
	case "1.0.2", "102":
		return Geocache102, nil
	}
	return 0, fmt.Errorf("geocache version %q: %w", s, ErrUnsupportedVersion)
}

// SerializationOptions selects the schema versions and fidelity of the XML
// produced by Serialize. It is a plain value; copies never affect each other.
// Zero versions mean GPX 1.1 and Groundspeak 1.0.1.
type SerializationOptions struct {
	GpxVersion      GpxVersion
	GeocacheVersion GeocacheVersion

	// EnableUnsupportedExtensions writes unrecognised attributes and elements
	// read from the input, editor-only data, and fields that the selected
	// Groundspeak version does not define (tagged with the 1.0.2 namespace).
	EnableUnsupportedExtensions bool

	// EnableInvalidElements keeps data the target schema has no place for,
	// e.g. every link of a GPX 1.0 waypoint instead of only the first.
	EnableInvalidElements bool

	// DisableExtensions omits geocache data and every other extension.
	DisableExtensions bool

	// GeocacheNamespaceWithPrefix writes Groundspeak elements as
	// groundspeak:name instead of declaring a default namespace.
	GeocacheNamespaceWithPrefix bool
}

// DefaultOptions writes standard GPX 1.1 with Groundspeak 1.0.1.
func DefaultOptions() SerializationOptions {
	return SerializationOptions{GpxVersion: Gpx11, GeocacheVersion: Geocache101}
}

// CompatibilityOptions writes GPX 1.0 with prefixed Groundspeak 1.0.1, the
// format of Groundspeak pocket queries that most devices understand.
func CompatibilityOptions() SerializationOptions {
	return SerializationOptions{
		GpxVersion:                  Gpx10,
		GeocacheVersion:             Geocache101,
		GeocacheNamespaceWithPrefix: true,
	}
}

// RoundtripOptions keeps everything that was read, at the cost of standards
// conformance. Used for local persistence.
func RoundtripOptions() SerializationOptions {
	return SerializationOptions{
		GpxVersion:                  Gpx11,
		GeocacheVersion:             Geocache102,
		EnableUnsupportedExtensions: true,
		EnableInvalidElements:       true,
	}
}

// Preset returns the named preset: default, compatibility or roundtrip.
func Preset(name string) (SerializationOptions, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "default":
		return DefaultOptions(), nil
	case "compatibility", "compat":
		return CompatibilityOptions(), nil
	case "roundtrip":
		return RoundtripOptions(), nil
	}
	return SerializationOptions{}, fmt.Errorf("preset %q: %w", name, ErrUnknownPreset)
}

// GpxNamespace returns the namespace of the selected GPX version.
func (o SerializationOptions) GpxNamespace() string {
	if o.GpxVersion == Gpx10 {
		return Gpx10Namespace
	}
	return Gpx11Namespace
}

// GeocacheNamespace returns the namespace of the selected Groundspeak version.
func (o SerializationOptions) GeocacheNamespace() string {
	switch o.GeocacheVersion {
	case Geocache100:
		return Geocache100Namespace
	case Geocache102:
		return Geocache102Namespace
	}
	return Geocache101Namespace
}

func (o SerializationOptions) gpx10() bool { return o.GpxVersion == Gpx10 }

func (o SerializationOptions) geocacheVersion() GeocacheVersion {
	switch o.GeocacheVersion {
	case Geocache100, Geocache102:
		return o.GeocacheVersion
	}
	return Geocache101
}

// extensionsEnabled reports whether unknown content is written back.
func (o SerializationOptions) extensionsEnabled() bool {
	return o.EnableUnsupportedExtensions && !o.DisableExtensions
}

func (o SerializationOptions) gpxNS() namespace {
	return namespace{uri: o.GpxNamespace()}
}

func (o SerializationOptions) cacheNS() namespace {
	if o.GeocacheNamespaceWithPrefix {
		return namespace{uri: o.GeocacheNamespace(), prefix: geocachePrefix}
	}
	return namespace{uri: o.GeocacheNamespace()}
}

// cacheNSSince returns the namespace to write a Groundspeak element that
// exists since version v. When the target version is older the element is
// either tagged with the 1.0.2 namespace or, without unsupported extensions,
// dropped (ok is false).
func (o SerializationOptions) cacheNSSince(v GeocacheVersion) (ns namespace, ok bool) {
	if o.geocacheVersion() >= v {
		return o.cacheNS(), true
	}
	if !o.EnableUnsupportedExtensions {
		return namespace{}, false
	}
	if o.GeocacheNamespaceWithPrefix {
		return namespace{uri: Geocache102Namespace, prefix: geocacheExtendedPrefix}, true
	}
	return namespace{uri: Geocache102Namespace}, true
}

// attrSince writes an attribute that exists since Groundspeak version v.
func (o SerializationOptions) attrSince(el *etree.Element, v GeocacheVersion, local, value string) {
	if o.geocacheVersion() >= v {
		el.CreateAttr(local, value)
		return
	}
	if !o.EnableUnsupportedExtensions {
		return
	}
	xmlutil.WriteAttr(el, xmlutil.Attr{Space: Geocache102Namespace, Prefix: geocacheExtendedPrefix, Local: local, Value: value})
}

func (o SerializationOptions) fullPrecision() bool { return o.EnableUnsupportedExtensions }

var geoTransformerNS = namespace{uri: GeoTransformerNamespace, prefix: geoTransformerPrefix}

// namespace is the namespace and prefix elements are created in.
type namespace struct {
	uri    string
	prefix string
}

func (n namespace) element(local string) *etree.Element {
	return xmlutil.NewElement(n.uri, n.prefix, local)
}

// text appends <local>value</local> to parent.
func (n namespace) text(parent *etree.Element, local, value string) *etree.Element {
	el := n.element(local)
	el.SetText(value)
	parent.AddChild(el)
	return el
}

func (n namespace) optText(parent *etree.Element, local string, value *string) {
	if value != nil {
		n.text(parent, local, *value)
	}
}

func (n namespace) optFloat(parent *etree.Element, local string, value *float64) {
	if value != nil {
		n.text(parent, local, xmlutil.FormatFloat(*value))
	}
}

func (n namespace) optInt(parent *etree.Element, local string, value *int) {
	if value != nil {
		n.text(parent, local, fmt.Sprint(*value))
	}
}

func (n namespace) optTime(parent *etree.Element, local string, value *time.Time) {
	if value != nil {
		n.text(parent, local, xmlutil.FormatTime(*value))
	}
}

// tidy removes repeated namespace declarations from a finished tree.
func tidy(el *etree.Element) *etree.Element {
	if el != nil {
		xmlutil.Tidy(el, nil)
	}
	return el
}
