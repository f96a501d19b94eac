package gpx

import (
	"fmt"
	"strconv"
	"time"

	"github.com/beevik/etree"

	"github.com/Knagis/GeoTransformer-sub000/gpx/live"
	"github.com/Knagis/GeoTransformer-sub000/internal/xmlutil"
	"github.com/Knagis/GeoTransformer-sub000/observable"
)

var waypointMapping *mapping[Waypoint]

func init() {
	m := newMapping[Waypoint]().
		attr(setFloat(func(w *Waypoint, v *float64) { w.SetLatitude(*v) }), names("lat")...).
		attr(setFloat(func(w *Waypoint, v *float64) { w.SetLongitude(*v) }), names("lon")...).
		text(setFloat((*Waypoint).SetElevation), gpxNames("ele")...).
		text(setTime((*Waypoint).SetTime), gpxNames("time")...).
		text(setFloat((*Waypoint).SetMagneticVariation), gpxNames("magvar")...).
		text(setFloat((*Waypoint).SetGeoidHeight), gpxNames("geoidheight")...).
		text(setString((*Waypoint).SetName), gpxNames("name")...).
		text(setString((*Waypoint).SetComment), gpxNames("cmt")...).
		text(setString((*Waypoint).SetDescription), gpxNames("desc")...).
		text(setString((*Waypoint).SetSource), gpxNames("src")...).
		text(setString((*Waypoint).SetSymbol), gpxNames("sym")...).
		text(setString((*Waypoint).SetType), gpxNames("type")...).
		text(setString((*Waypoint).SetFix), gpxNames("fix")...).
		text(setInt((*Waypoint).SetSatellites), gpxNames("sat")...).
		text(setFloat((*Waypoint).SetHDOP), gpxNames("hdop")...).
		text(setFloat((*Waypoint).SetVDOP), gpxNames("vdop")...).
		text(setFloat((*Waypoint).SetPDOP), gpxNames("pdop")...).
		text(setFloat((*Waypoint).SetAgeOfDGPSData), gpxNames("ageofdgpsdata")...).
		text(setInt((*Waypoint).SetDGPSID), gpxNames("dgpsid")...).
		text(func(w *Waypoint, v string) error {
			w.gpx10Link().SetHref(&v)
			return nil
		}, gpxNames("url")...).
		text(func(w *Waypoint, v string) error {
			w.gpx10Link().SetText(&v)
			return nil
		}, gpxNames("urlname")...).
		elem(func(w *Waypoint, el *etree.Element, d *decoder) error {
			l := NewLink()
			l.init(el, d)
			w.links.Append(l)
			return nil
		}, gpxNames("link")...).
		elem(func(w *Waypoint, el *etree.Element, d *decoder) error {
			w.initExtensions(el, d)
			return nil
		}, gpxNames("extensions")...)
	addWaypointExtensions(m)
	waypointMapping = m

	// children of the GPX 1.1 extensions element
	waypointExtensionsMapping = addWaypointExtensions(newMapping[Waypoint]())
}

var waypointExtensionsMapping *mapping[Waypoint]

func addWaypointExtensions(m *mapping[Waypoint]) *mapping[Waypoint] {
	return m.
		elem(func(w *Waypoint, el *etree.Element, d *decoder) error {
			w.geocache.init(el, d)
			return nil
		}, cacheNames("cache")...).
		text(setTime((*Waypoint).SetLastRefresh), names("lastRefresh", GeoTransformerNamespace)...).
		elem(func(w *Waypoint, el *etree.Element, _ *decoder) error {
			for _, child := range el.ChildElements() {
				if n := xmlutil.ElementName(child); n.Local == "wpt" {
					w.original = originalValues{xml: xmlutil.Detach(child), cachedCopy: true}
				}
			}
			return nil
		}, names("CachedCopy", GeoTransformerNamespace)...)
}

// originalValues is the source of the original values snapshot: the
// waypoint element as read, a Live API record, or the materialized snapshot.
type originalValues struct {
	xml        *etree.Element
	live       *live.Geocache
	snapshot   *Waypoint
	cachedCopy bool
}

func (s originalValues) empty() bool { return s.xml == nil && s.live == nil && s.snapshot == nil }

// Waypoint is a GPX waypoint. For geocaches the Groundspeak data is held by
// Geocache, which is always present.
type Waypoint struct {
	observable.Element
	extensions

	latitude      float64
	longitude     float64
	elevation     *float64
	time          *time.Time
	magvar        *float64
	geoidHeight   *float64
	name          *string
	comment       *string
	description   *string
	source        *string
	links         *observable.Collection[*Link]
	symbol        *string
	wptType       *string
	fix           *string
	satellites    *int
	hdop          *float64
	vdop          *float64
	pdop          *float64
	ageOfDGPSData *float64
	dgpsID        *int
	geocache      *Geocache
	lastRefresh   *time.Time

	original originalValues
	modified bool
}

// NewWaypoint returns an empty waypoint at 0,0.
func NewWaypoint() *Waypoint {
	w := &Waypoint{
		extensions: newExtensions(),
		links:      observable.NewCollection[*Link](),
		geocache:   NewGeocache(),
	}
	w.Bind(w, func(string) { w.modified = true })
	own(&w.Element, w.children())
	return w
}

// ParseWaypoint reads a wpt element of GPX 1.0 or 1.1. The element is kept
// as the source of OriginalValues unless it carries a cached copy.
func ParseWaypoint(el *etree.Element) *Waypoint {
	w := NewWaypoint()
	w.init(el, nopDecoder)
	return w
}

func (w *Waypoint) init(el *etree.Element, d *decoder) {
	w.Suspend()
	waypointMapping.initialize(w, el, &w.extensions, d)
	if w.original.empty() {
		w.original = originalValues{xml: xmlutil.Detach(el)}
	}
	w.Resume(w.children()...)
	w.modified = false
}

func (w *Waypoint) initExtensions(el *etree.Element, d *decoder) {
	waypointExtensionsMapping.initialize(w, el, &w.extensions, d)
}

// gpx10Link returns the link that GPX 1.0 url and urlname describe.
func (w *Waypoint) gpx10Link() *Link {
	if w.links.Len() == 0 {
		w.links.Append(NewLink())
	}
	return w.links.At(0)
}

func (w *Waypoint) children() []observable.Child {
	return append(w.extensions.children(),
		observable.Child{Name: "Links", Value: w.links},
		observable.Child{Name: "Geocache", Value: w.geocache},
	)
}

func (w *Waypoint) Latitude() float64      { return w.latitude }
func (w *Waypoint) SetLatitude(v float64)  { observable.Set(&w.Element, "Latitude", &w.latitude, v) }
func (w *Waypoint) Longitude() float64     { return w.longitude }
func (w *Waypoint) SetLongitude(v float64) { observable.Set(&w.Element, "Longitude", &w.longitude, v) }
func (w *Waypoint) Elevation() *float64    { return observable.Clone(w.elevation) }
func (w *Waypoint) SetElevation(v *float64) {
	observable.SetPtr(&w.Element, "Elevation", &w.elevation, v)
}
func (w *Waypoint) Time() *time.Time             { return observable.Clone(w.time) }
func (w *Waypoint) SetTime(v *time.Time)         { observable.SetPtr(&w.Element, "Time", &w.time, utc(v)) }
func (w *Waypoint) MagneticVariation() *float64  { return observable.Clone(w.magvar) }
func (w *Waypoint) SetMagneticVariation(v *float64) {
	observable.SetPtr(&w.Element, "MagneticVariation", &w.magvar, v)
}
func (w *Waypoint) GeoidHeight() *float64 { return observable.Clone(w.geoidHeight) }
func (w *Waypoint) SetGeoidHeight(v *float64) {
	observable.SetPtr(&w.Element, "GeoidHeight", &w.geoidHeight, v)
}

// Name is the waypoint code, GCxxxx for geocaches.
func (w *Waypoint) Name() *string            { return observable.Clone(w.name) }
func (w *Waypoint) SetName(v *string)        { observable.SetPtr(&w.Element, "Name", &w.name, v) }
func (w *Waypoint) Comment() *string         { return observable.Clone(w.comment) }
func (w *Waypoint) SetComment(v *string)     { observable.SetPtr(&w.Element, "Comment", &w.comment, v) }
func (w *Waypoint) Description() *string     { return observable.Clone(w.description) }
func (w *Waypoint) SetDescription(v *string) { observable.SetPtr(&w.Element, "Description", &w.description, v) }
func (w *Waypoint) Source() *string          { return observable.Clone(w.source) }
func (w *Waypoint) SetSource(v *string)      { observable.SetPtr(&w.Element, "Source", &w.source, v) }
func (w *Waypoint) Symbol() *string          { return observable.Clone(w.symbol) }
func (w *Waypoint) SetSymbol(v *string)      { observable.SetPtr(&w.Element, "Symbol", &w.symbol, v) }
func (w *Waypoint) Type() *string            { return observable.Clone(w.wptType) }
func (w *Waypoint) SetType(v *string)        { observable.SetPtr(&w.Element, "Type", &w.wptType, v) }
func (w *Waypoint) Fix() *string             { return observable.Clone(w.fix) }
func (w *Waypoint) SetFix(v *string)         { observable.SetPtr(&w.Element, "Fix", &w.fix, v) }
func (w *Waypoint) Satellites() *int         { return observable.Clone(w.satellites) }
func (w *Waypoint) SetSatellites(v *int)     { observable.SetPtr(&w.Element, "Satellites", &w.satellites, v) }
func (w *Waypoint) HDOP() *float64           { return observable.Clone(w.hdop) }
func (w *Waypoint) SetHDOP(v *float64)       { observable.SetPtr(&w.Element, "HDOP", &w.hdop, v) }
func (w *Waypoint) VDOP() *float64           { return observable.Clone(w.vdop) }
func (w *Waypoint) SetVDOP(v *float64)       { observable.SetPtr(&w.Element, "VDOP", &w.vdop, v) }
func (w *Waypoint) PDOP() *float64           { return observable.Clone(w.pdop) }
func (w *Waypoint) SetPDOP(v *float64)       { observable.SetPtr(&w.Element, "PDOP", &w.pdop, v) }
func (w *Waypoint) AgeOfDGPSData() *float64  { return observable.Clone(w.ageOfDGPSData) }
func (w *Waypoint) SetAgeOfDGPSData(v *float64) {
	observable.SetPtr(&w.Element, "AgeOfDGPSData", &w.ageOfDGPSData, v)
}
func (w *Waypoint) DGPSID() *int     { return observable.Clone(w.dgpsID) }
func (w *Waypoint) SetDGPSID(v *int) { observable.SetPtr(&w.Element, "DGPSID", &w.dgpsID, v) }

// LastRefresh is when the geocache data was last downloaded.
func (w *Waypoint) LastRefresh() *time.Time { return observable.Clone(w.lastRefresh) }
func (w *Waypoint) SetLastRefresh(v *time.Time) {
	observable.SetPtr(&w.Element, "LastRefresh", &w.lastRefresh, utc(v))
}

// Links returns the links of the waypoint. GPX 1.0 files hold at most one.
func (w *Waypoint) Links() *observable.Collection[*Link] { return w.links }

// Geocache returns the geocache data. It is never nil; use IsDefined to
// tell geocaches from plain waypoints.
func (w *Waypoint) Geocache() *Geocache { return w.geocache }

// SetGeocache replaces the geocache; nil stores an empty one.
func (w *Waypoint) SetGeocache(v *Geocache) {
	if v == nil {
		v = NewGeocache()
	}
	observable.SetChild(&w.Element, "Geocache", &w.geocache, v)
}

// Modified reports whether the waypoint changed since it was read.
func (w *Waypoint) Modified() bool { return w.modified }

// OriginalValues returns a read-only copy of the waypoint as it was read
// (or as the Live API returned it), before any edits. It is built on first
// use and cached. Modifying it panics with ErrReadOnly. A waypoint built
// from scratch has no original values and nil is returned.
func (w *Waypoint) OriginalValues() *Waypoint {
	switch {
	case w.original.snapshot != nil:
		return w.original.snapshot
	case w.original.xml != nil:
		s := NewWaypoint()
		s.init(w.original.xml, nopDecoder)
		s.original = originalValues{}
		w.original.snapshot = s
	case w.original.live != nil:
		w.original.snapshot = projectLive(w.original.live)
	default:
		return nil
	}
	w.original.snapshot.freeze()
	return w.original.snapshot
}

// Serialize writes the wpt element.
func (w *Waypoint) Serialize(o SerializationOptions) *etree.Element {
	return tidy(w.serialize(o))
}

func (w *Waypoint) serialize(o SerializationOptions) *etree.Element {
	ns := o.gpxNS()
	el := ns.element("wpt")
	el.CreateAttr("lat", xmlutil.FormatCoordinate(w.latitude, o.fullPrecision()))
	el.CreateAttr("lon", xmlutil.FormatCoordinate(w.longitude, o.fullPrecision()))
	w.writeAttrs(el, o)

	ns.optFloat(el, "ele", w.elevation)
	ns.optTime(el, "time", w.time)
	ns.optFloat(el, "magvar", w.magvar)
	ns.optFloat(el, "geoidheight", w.geoidHeight)
	ns.optText(el, "name", w.name)
	ns.optText(el, "cmt", w.comment)
	ns.optText(el, "desc", w.description)
	ns.optText(el, "src", w.source)
	w.serializeLinks(o, el)
	ns.optText(el, "sym", w.symbol)
	ns.optText(el, "type", w.wptType)
	ns.optText(el, "fix", w.fix)
	ns.optInt(el, "sat", w.satellites)
	ns.optFloat(el, "hdop", w.hdop)
	ns.optFloat(el, "vdop", w.vdop)
	ns.optFloat(el, "pdop", w.pdop)
	ns.optFloat(el, "ageofdgpsdata", w.ageOfDGPSData)
	ns.optInt(el, "dgpsid", w.dgpsID)

	if o.DisableExtensions {
		return el
	}
	parent := el
	if !o.gpx10() {
		parent = ns.element("extensions")
	}
	xmlutil.AddChild(parent, w.geocache.serialize(o))
	if o.EnableUnsupportedExtensions {
		if w.lastRefresh != nil {
			lr := geoTransformerNS.text(parent, "lastRefresh", xmlutil.FormatTime(*w.lastRefresh))
			lr.CreateAttr("EditorOnly", xmlutil.FormatBool(true))
		}
		if w.writesCachedCopy() {
			if orig := w.OriginalValues(); orig != nil {
				cc := geoTransformerNS.element("CachedCopy")
				cc.CreateAttr("EditorOnly", xmlutil.FormatBool(true))
				cc.AddChild(orig.serialize(o))
				parent.AddChild(cc)
			}
		}
	}
	w.writeElements(parent, o)
	if parent != el && len(parent.ChildElements()) > 0 {
		el.AddChild(parent)
	}
	return el
}

// writesCachedCopy reports whether the original values differ from what
// the waypoint itself writes.
func (w *Waypoint) writesCachedCopy() bool {
	return w.original.cachedCopy || w.original.live != nil || w.modified && !w.original.empty()
}

func (w *Waypoint) serializeLinks(o SerializationOptions, el *etree.Element) {
	ns := o.gpxNS()
	if !o.gpx10() {
		for _, l := range w.links.All() {
			xmlutil.AddChild(el, l.serialize(o))
		}
		return
	}
	first := true
	for _, l := range w.links.All() {
		if l.IsEmpty() {
			continue
		}
		if first {
			first = false
			ns.optText(el, "url", l.href)
			ns.optText(el, "urlname", l.text)
			continue
		}
		if !o.EnableInvalidElements {
			return
		}
		// GPX 1.0 has a single url; the rest is written as 1.1 links.
		xmlutil.AddChild(el, l.serialize(SerializationOptions{GpxVersion: Gpx11}))
	}
}

// clone copies the waypoint along with its original values.
func (w *Waypoint) clone() *Waypoint {
	c := NewWaypoint()
	c.init(w.serialize(RoundtripOptions()), nopDecoder)
	return c
}

func (w *Waypoint) freeze() {
	w.Freeze()
	w.extensions.freeze()
	freezeAll(w.links)
	w.geocache.freeze()
}

func (w *Waypoint) String() string {
	name := "<unnamed>"
	if w.name != nil {
		name = *w.name
	}
	return fmt.Sprintf("%s (%s, %s)", name,
		strconv.FormatFloat(w.latitude, 'f', -1, 64), strconv.FormatFloat(w.longitude, 'f', -1, 64))
}
