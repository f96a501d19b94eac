package gpx

import (
	"slices"
	"strconv"
	"time"

	"github.com/beevik/etree"

	"github.com/Knagis/GeoTransformer-sub000/internal/xmlutil"
	"github.com/Knagis/GeoTransformer-sub000/observable"
)

var geocacheLogMapping *mapping[GeocacheLog]

func init() {
	geocacheLogMapping = newMapping[GeocacheLog]().
		attr(setID((*GeocacheLog).SetID), attrNames("id")...).
		text(setTime((*GeocacheLog).SetDate), cacheNames("date")...).
		elem(func(l *GeocacheLog, el *etree.Element, d *decoder) error {
			l.logType.init(el, d)
			return nil
		}, cacheNames("type")...).
		elem(func(l *GeocacheLog, el *etree.Element, d *decoder) error {
			l.finder.init(el, d)
			return nil
		}, cacheNames("finder")...).
		elem(func(l *GeocacheLog, el *etree.Element, d *decoder) error {
			l.text.init(el, d)
			return nil
		}, cacheNames("text")...).
		elem(func(l *GeocacheLog, el *etree.Element, d *decoder) error {
			for _, a := range el.Attr {
				var set func(*float64)
				switch a.Key {
				case "lat":
					set = l.SetLatitude
				case "lon":
					set = l.SetLongitude
				default:
					l.logWptWrap.keepAttr(el, a, d)
					continue
				}
				v, err := xmlutil.ParseFloat(a.Value)
				if err != nil {
					d.malformed(el, xmlutil.Name{Local: a.Key}, a.Value, err)
					continue
				}
				set(&v)
			}
			for _, child := range el.ChildElements() {
				l.logWptWrap.keepElement(child, d)
			}
			return nil
		}, cacheNames("log_wpt")...).
		elem(func(l *GeocacheLog, el *etree.Element, d *decoder) error {
			l.images.Append(parseImages(el, &l.imagesWrap, d)...)
			return nil
		}, cacheNames("images")...)
}

// GeocacheLog is a log entry of a cache.
type GeocacheLog struct {
	observable.Element
	extensions

	id        *int64
	date      *time.Time
	logType   *GeocacheLogType
	finder    *GeocacheAccount
	text      *GeocacheLogText
	latitude  *float64
	longitude *float64
	images    *observable.Collection[*GeocacheImage]

	logWptWrap wrapper
	imagesWrap wrapper
}

// NewGeocacheLog returns an empty log.
func NewGeocacheLog() *GeocacheLog {
	l := &GeocacheLog{
		extensions: newExtensions(),
		logType:    NewGeocacheLogType(),
		finder:     NewGeocacheAccount(),
		text:       NewGeocacheLogText(),
		images:     observable.NewCollection[*GeocacheImage](),
		logWptWrap: newWrapper("LogWaypoint"),
		imagesWrap: newWrapper("Images"),
	}
	l.Bind(l, nil)
	own(&l.Element, l.children())
	return l
}

// ParseGeocacheLog reads a groundspeak:log element.
func ParseGeocacheLog(el *etree.Element) *GeocacheLog {
	l := NewGeocacheLog()
	l.init(el, nopDecoder)
	return l
}

func (l *GeocacheLog) init(el *etree.Element, d *decoder) {
	l.Suspend()
	geocacheLogMapping.initialize(l, el, &l.extensions, d)
	l.Resume(l.children()...)
}

func (l *GeocacheLog) children() []observable.Child {
	children := slices.Concat(l.extensions.children(), l.logWptWrap.children(), l.imagesWrap.children())
	return append(children,
		observable.Child{Name: "Type", Value: l.logType},
		observable.Child{Name: "Finder", Value: l.finder},
		observable.Child{Name: "Text", Value: l.text},
		observable.Child{Name: "Images", Value: l.images},
	)
}

func (l *GeocacheLog) ID() *int64            { return observable.Clone(l.id) }
func (l *GeocacheLog) SetID(v *int64)        { observable.SetPtr(&l.Element, "ID", &l.id, v) }
func (l *GeocacheLog) Date() *time.Time      { return observable.Clone(l.date) }
func (l *GeocacheLog) SetDate(v *time.Time)  { observable.SetPtr(&l.Element, "Date", &l.date, utc(v)) }
func (l *GeocacheLog) Latitude() *float64    { return observable.Clone(l.latitude) }
func (l *GeocacheLog) SetLatitude(v *float64) {
	observable.SetPtr(&l.Element, "Latitude", &l.latitude, v)
}
func (l *GeocacheLog) Longitude() *float64 { return observable.Clone(l.longitude) }
func (l *GeocacheLog) SetLongitude(v *float64) {
	observable.SetPtr(&l.Element, "Longitude", &l.longitude, v)
}

// Type returns the log type. It is never nil.
func (l *GeocacheLog) Type() *GeocacheLogType { return l.logType }

// SetType replaces the log type; nil stores an empty one.
func (l *GeocacheLog) SetType(v *GeocacheLogType) {
	if v == nil {
		v = NewGeocacheLogType()
	}
	observable.SetChild(&l.Element, "Type", &l.logType, v)
}

// Finder returns the account that wrote the log. It is never nil.
func (l *GeocacheLog) Finder() *GeocacheAccount { return l.finder }

// SetFinder replaces the finder; nil stores an empty one.
func (l *GeocacheLog) SetFinder(v *GeocacheAccount) {
	if v == nil {
		v = NewGeocacheAccount()
	}
	observable.SetChild(&l.Element, "Finder", &l.finder, v)
}

// Text returns the log text. It is never nil.
func (l *GeocacheLog) Text() *GeocacheLogText { return l.text }

// SetText replaces the text; nil stores an empty one.
func (l *GeocacheLog) SetText(v *GeocacheLogText) {
	if v == nil {
		v = NewGeocacheLogText()
	}
	observable.SetChild(&l.Element, "Text", &l.text, v)
}

// Images returns the images attached to the log.
func (l *GeocacheLog) Images() *observable.Collection[*GeocacheImage] { return l.images }

// HasValue reports whether any field of the log is set.
func (l *GeocacheLog) HasValue() bool {
	return l.id != nil || l.date != nil || l.latitude != nil || l.longitude != nil ||
		l.logType.HasValue() || l.finder.HasValue() || l.text.HasValue() || l.images.Len() > 0
}

// Serialize writes the log element, or nil when empty.
func (l *GeocacheLog) Serialize(o SerializationOptions) *etree.Element {
	return tidy(l.serialize(o, o.cacheNS()))
}

func (l *GeocacheLog) serialize(o SerializationOptions, ns namespace) *etree.Element {
	if !l.HasValue() && !l.significant(o) {
		return nil
	}
	el := ns.element("log")
	if l.id != nil {
		el.CreateAttr("id", strconv.FormatInt(*l.id, 10))
	}
	l.writeAttrs(el, o)
	ns.optTime(el, "date", l.date)
	xmlutil.AddChild(el, l.logType.serialize(o, ns, "type", Geocache102))
	xmlutil.AddChild(el, l.finder.serialize(o, ns, "finder", Geocache100))
	xmlutil.AddChild(el, l.text.serialize(o, ns))
	if l.latitude != nil || l.longitude != nil || l.logWptWrap.significant(o) {
		w := ns.element("log_wpt")
		if l.latitude != nil {
			w.CreateAttr("lat", xmlutil.FormatCoordinate(*l.latitude, o.fullPrecision()))
		}
		if l.longitude != nil {
			w.CreateAttr("lon", xmlutil.FormatCoordinate(*l.longitude, o.fullPrecision()))
		}
		l.logWptWrap.write(w, o)
		el.AddChild(w)
	}
	xmlutil.AddChild(el, serializeImages(o, l.images, &l.imagesWrap))
	l.writeElements(el, o)
	return el
}

func (l *GeocacheLog) clone() *GeocacheLog {
	c := NewGeocacheLog()
	if el := l.serialize(RoundtripOptions(), namespace{uri: Geocache102Namespace}); el != nil {
		c.init(el, nopDecoder)
	}
	return c
}

func (l *GeocacheLog) freeze() {
	l.Freeze()
	l.extensions.freeze()
	l.logType.freeze()
	l.finder.freeze()
	l.text.freeze()
	freezeAll(l.images)
	l.logWptWrap.freeze()
	l.imagesWrap.freeze()
}

func utc(v *time.Time) *time.Time {
	if v == nil {
		return nil
	}
	t := v.UTC()
	return &t
}
