package gpx

import (
	"slices"
	"strconv"

	"github.com/beevik/etree"

	"github.com/Knagis/GeoTransformer-sub000/internal/xmlutil"
	"github.com/Knagis/GeoTransformer-sub000/observable"
)

var geocacheMapping *mapping[Geocache]

func init() {
	m := newMapping[Geocache]().
		attr(setID((*Geocache).SetID), attrNames("id")...).
		attr(setBool((*Geocache).SetAvailable), attrNames("available")...).
		attr(setBool((*Geocache).SetArchived), attrNames("archived")...).
		attr(setBool((*Geocache).SetMemberOnly), attrNames("memberonly")...).
		attr(setBool((*Geocache).SetCustomCoordinates), attrNames("customcoords")...).
		text(setString((*Geocache).SetName), cacheNames("name")...).
		text(setString((*Geocache).SetPlacedBy), cacheNames("placed_by")...).
		text(setFloat((*Geocache).SetDifficulty), cacheNames("difficulty")...).
		text(setFloat((*Geocache).SetTerrain), cacheNames("terrain")...).
		text(setString((*Geocache).SetCountry), cacheNames("country")...).
		text(setString((*Geocache).SetState), cacheNames("state")...).
		text(setString((*Geocache).SetEncodedHints), cacheNames("encoded_hints")...).
		text(setString((*Geocache).SetPersonalNote), cacheNames("personal_note")...).
		text(setInt((*Geocache).SetFavoritePoints), cacheNames("favorite_points")...)

	m.elem(func(g *Geocache, el *etree.Element, d *decoder) error {
		g.owner.init(el, d)
		return nil
	}, cacheNames("owner")...)
	m.elem(func(g *Geocache, el *etree.Element, d *decoder) error {
		g.cacheType.init(el, d)
		return nil
	}, cacheNames("type")...)
	m.elem(func(g *Geocache, el *etree.Element, d *decoder) error {
		g.container.init(el, d)
		return nil
	}, cacheNames("container")...)
	m.elem(func(g *Geocache, el *etree.Element, d *decoder) error {
		g.shortDescription.init(el, d)
		return nil
	}, cacheNames("short_description")...)
	m.elem(func(g *Geocache, el *etree.Element, d *decoder) error {
		g.longDescription.init(el, d)
		return nil
	}, cacheNames("long_description")...)
	m.elem(func(g *Geocache, el *etree.Element, d *decoder) error {
		for _, child := range g.attributesWrap.read(el, "attribute", d) {
			a := NewGeocacheAttribute()
			a.init(child, d)
			g.attributes.Append(a)
		}
		return nil
	}, cacheNames("attributes")...)
	m.elem(func(g *Geocache, el *etree.Element, d *decoder) error {
		for _, child := range g.logsWrap.read(el, "log", d) {
			l := NewGeocacheLog()
			l.init(child, d)
			g.logs.Append(l)
		}
		return nil
	}, cacheNames("logs")...)
	m.elem(func(g *Geocache, el *etree.Element, d *decoder) error {
		for _, child := range g.trackablesWrap.read(el, "travelbug", d) {
			t := NewGeocacheTrackable()
			t.init(child, d)
			g.trackables.Append(t)
		}
		return nil
	}, cacheNames("travelbugs")...)
	m.elem(func(g *Geocache, el *etree.Element, d *decoder) error {
		g.images.Append(parseImages(el, &g.imagesWrap, d)...)
		return nil
	}, cacheNames("images")...)
	geocacheMapping = m
}

// Geocache is the Groundspeak cache payload of a waypoint.
type Geocache struct {
	observable.Element
	extensions

	id                *int64
	available         *bool
	archived          *bool
	memberOnly        *bool
	customCoordinates *bool
	name              *string
	placedBy          *string
	owner             *GeocacheAccount
	cacheType         *GeocacheType
	container         *GeocacheContainer
	attributes        *observable.Collection[*GeocacheAttribute]
	difficulty        *float64
	terrain           *float64
	country           *string
	state             *string
	shortDescription  *GeocacheDescription
	longDescription   *GeocacheDescription
	encodedHints      *string
	personalNote      *string
	favoritePoints    *int
	logs              *observable.Collection[*GeocacheLog]
	trackables        *observable.Collection[*GeocacheTrackable]
	images            *observable.Collection[*GeocacheImage]

	// unmapped content of the list elements
	attributesWrap wrapper
	logsWrap       wrapper
	trackablesWrap wrapper
	imagesWrap     wrapper

	defined      bool
	definedValid bool
}

// NewGeocache returns an empty, undefined geocache.
func NewGeocache() *Geocache {
	g := &Geocache{
		extensions:       newExtensions(),
		owner:            NewGeocacheAccount(),
		cacheType:        NewGeocacheType(),
		container:        NewGeocacheContainer(),
		attributes:       observable.NewCollection[*GeocacheAttribute](),
		shortDescription: NewGeocacheDescription(),
		longDescription:  NewGeocacheDescription(),
		logs:             observable.NewCollection[*GeocacheLog](),
		trackables:       observable.NewCollection[*GeocacheTrackable](),
		images:           observable.NewCollection[*GeocacheImage](),
		attributesWrap:   newWrapper("Attributes"),
		logsWrap:         newWrapper("Logs"),
		trackablesWrap:   newWrapper("Trackables"),
		imagesWrap:       newWrapper("Images"),
	}
	g.Bind(g, func(string) { g.definedValid = false })
	own(&g.Element, g.children())
	return g
}

// ParseGeocache reads a groundspeak:cache element of any version.
func ParseGeocache(el *etree.Element) *Geocache {
	g := NewGeocache()
	g.init(el, nopDecoder)
	return g
}

func (g *Geocache) init(el *etree.Element, d *decoder) {
	g.Suspend()
	geocacheMapping.initialize(g, el, &g.extensions, d)
	g.Resume(g.children()...)
	g.definedValid = false
}

func (g *Geocache) children() []observable.Child {
	children := slices.Concat(
		g.extensions.children(),
		g.attributesWrap.children(),
		g.logsWrap.children(),
		g.trackablesWrap.children(),
		g.imagesWrap.children(),
	)
	return append(children,
		observable.Child{Name: "Owner", Value: g.owner},
		observable.Child{Name: "CacheType", Value: g.cacheType},
		observable.Child{Name: "Container", Value: g.container},
		observable.Child{Name: "Attributes", Value: g.attributes},
		observable.Child{Name: "ShortDescription", Value: g.shortDescription},
		observable.Child{Name: "LongDescription", Value: g.longDescription},
		observable.Child{Name: "Logs", Value: g.logs},
		observable.Child{Name: "Trackables", Value: g.trackables},
		observable.Child{Name: "Images", Value: g.images},
	)
}

func (g *Geocache) ID() *int64     { return observable.Clone(g.id) }
func (g *Geocache) SetID(v *int64) { observable.SetPtr(&g.Element, "ID", &g.id, v) }

// Available returns the available flag; absent means true.
func (g *Geocache) Available() *bool     { return observable.Clone(g.available) }
func (g *Geocache) SetAvailable(v *bool) { observable.SetPtr(&g.Element, "Available", &g.available, v) }

// Archived returns the archived flag; absent means false.
func (g *Geocache) Archived() *bool     { return observable.Clone(g.archived) }
func (g *Geocache) SetArchived(v *bool) { observable.SetPtr(&g.Element, "Archived", &g.archived, v) }

// MemberOnly marks premium member caches (Groundspeak 1.0.2).
func (g *Geocache) MemberOnly() *bool     { return observable.Clone(g.memberOnly) }
func (g *Geocache) SetMemberOnly(v *bool) { observable.SetPtr(&g.Element, "MemberOnly", &g.memberOnly, v) }

// CustomCoordinates marks coordinates corrected by the user (Groundspeak 1.0.2).
func (g *Geocache) CustomCoordinates() *bool { return observable.Clone(g.customCoordinates) }
func (g *Geocache) SetCustomCoordinates(v *bool) {
	observable.SetPtr(&g.Element, "CustomCoordinates", &g.customCoordinates, v)
}

func (g *Geocache) Name() *string         { return observable.Clone(g.name) }
func (g *Geocache) SetName(v *string)     { observable.SetPtr(&g.Element, "Name", &g.name, v) }
func (g *Geocache) PlacedBy() *string     { return observable.Clone(g.placedBy) }
func (g *Geocache) SetPlacedBy(v *string) { observable.SetPtr(&g.Element, "PlacedBy", &g.placedBy, v) }
func (g *Geocache) Difficulty() *float64  { return observable.Clone(g.difficulty) }
func (g *Geocache) SetDifficulty(v *float64) {
	observable.SetPtr(&g.Element, "Difficulty", &g.difficulty, v)
}
func (g *Geocache) Terrain() *float64         { return observable.Clone(g.terrain) }
func (g *Geocache) SetTerrain(v *float64)     { observable.SetPtr(&g.Element, "Terrain", &g.terrain, v) }
func (g *Geocache) Country() *string          { return observable.Clone(g.country) }
func (g *Geocache) SetCountry(v *string)      { observable.SetPtr(&g.Element, "Country", &g.country, v) }
func (g *Geocache) State() *string            { return observable.Clone(g.state) }
func (g *Geocache) SetState(v *string)        { observable.SetPtr(&g.Element, "State", &g.state, v) }
func (g *Geocache) EncodedHints() *string     { return observable.Clone(g.encodedHints) }
func (g *Geocache) SetEncodedHints(v *string) { observable.SetPtr(&g.Element, "EncodedHints", &g.encodedHints, v) }

// PersonalNote is the user's own note (Groundspeak 1.0.2).
func (g *Geocache) PersonalNote() *string     { return observable.Clone(g.personalNote) }
func (g *Geocache) SetPersonalNote(v *string) { observable.SetPtr(&g.Element, "PersonalNote", &g.personalNote, v) }

// FavoritePoints is the number of favorite votes (Groundspeak 1.0.2).
func (g *Geocache) FavoritePoints() *int { return observable.Clone(g.favoritePoints) }
func (g *Geocache) SetFavoritePoints(v *int) {
	observable.SetPtr(&g.Element, "FavoritePoints", &g.favoritePoints, v)
}

// Owner returns the cache owner. It is never nil.
func (g *Geocache) Owner() *GeocacheAccount { return g.owner }

// SetOwner replaces the owner; nil stores an empty one.
func (g *Geocache) SetOwner(v *GeocacheAccount) {
	if v == nil {
		v = NewGeocacheAccount()
	}
	observable.SetChild(&g.Element, "Owner", &g.owner, v)
}

// CacheType returns the cache type. It is never nil.
func (g *Geocache) CacheType() *GeocacheType { return g.cacheType }

// SetCacheType replaces the cache type; nil stores an empty one.
func (g *Geocache) SetCacheType(v *GeocacheType) {
	if v == nil {
		v = NewGeocacheType()
	}
	observable.SetChild(&g.Element, "CacheType", &g.cacheType, v)
}

// Container returns the container size. It is never nil.
func (g *Geocache) Container() *GeocacheContainer { return g.container }

// SetContainer replaces the container; nil stores an empty one.
func (g *Geocache) SetContainer(v *GeocacheContainer) {
	if v == nil {
		v = NewGeocacheContainer()
	}
	observable.SetChild(&g.Element, "Container", &g.container, v)
}

// ShortDescription returns the short description. It is never nil.
func (g *Geocache) ShortDescription() *GeocacheDescription { return g.shortDescription }

// SetShortDescription replaces the short description; nil stores an empty one.
func (g *Geocache) SetShortDescription(v *GeocacheDescription) {
	if v == nil {
		v = NewGeocacheDescription()
	}
	observable.SetChild(&g.Element, "ShortDescription", &g.shortDescription, v)
}

// LongDescription returns the long description. It is never nil.
func (g *Geocache) LongDescription() *GeocacheDescription { return g.longDescription }

// SetLongDescription replaces the long description; nil stores an empty one.
func (g *Geocache) SetLongDescription(v *GeocacheDescription) {
	if v == nil {
		v = NewGeocacheDescription()
	}
	observable.SetChild(&g.Element, "LongDescription", &g.longDescription, v)
}

func (g *Geocache) Attributes() *observable.Collection[*GeocacheAttribute] { return g.attributes }
func (g *Geocache) Logs() *observable.Collection[*GeocacheLog]             { return g.logs }
func (g *Geocache) Trackables() *observable.Collection[*GeocacheTrackable] { return g.trackables }

// Images returns the cache images (Groundspeak 1.0.2).
func (g *Geocache) Images() *observable.Collection[*GeocacheImage] { return g.images }

// IsDefined reports whether the geocache carries any cache data. The result
// is cached until the next change of the geocache or anything it owns.
func (g *Geocache) IsDefined() bool {
	if !g.definedValid {
		g.defined = g.computeDefined()
		g.definedValid = true
	}
	return g.defined
}

func (g *Geocache) computeDefined() bool {
	return g.id != nil ||
		g.available != nil ||
		g.archived != nil ||
		g.memberOnly != nil ||
		g.customCoordinates != nil ||
		g.name != nil ||
		g.placedBy != nil ||
		g.owner.HasValue() ||
		g.cacheType.HasValue() ||
		g.container.HasValue() ||
		g.attributes.Len() > 0 ||
		g.difficulty != nil ||
		g.terrain != nil ||
		g.country != nil ||
		g.state != nil ||
		g.shortDescription.HasValue() ||
		g.longDescription.HasValue() ||
		g.encodedHints != nil ||
		g.personalNote != nil ||
		g.favoritePoints != nil ||
		g.logs.Len() > 0 ||
		g.trackables.Len() > 0 ||
		g.images.Len() > 0
}

// Serialize writes the groundspeak:cache element, or nil when the geocache
// is undefined and has no extension content to write.
func (g *Geocache) Serialize(o SerializationOptions) *etree.Element {
	return tidy(g.serialize(o))
}

func (g *Geocache) serialize(o SerializationOptions) *etree.Element {
	if o.DisableExtensions || !g.IsDefined() && !g.significant(o) {
		return nil
	}
	ns := o.cacheNS()
	el := ns.element("cache")
	if g.id != nil {
		el.CreateAttr("id", strconv.FormatInt(*g.id, 10))
	}
	if g.available != nil && (!*g.available || o.EnableUnsupportedExtensions) {
		el.CreateAttr("available", xmlutil.FormatBool(*g.available))
	}
	if g.archived != nil && (*g.archived || o.EnableUnsupportedExtensions) {
		el.CreateAttr("archived", xmlutil.FormatBool(*g.archived))
	}
	if g.memberOnly != nil {
		o.attrSince(el, Geocache102, "memberonly", xmlutil.FormatBool(*g.memberOnly))
	}
	if g.customCoordinates != nil {
		o.attrSince(el, Geocache102, "customcoords", xmlutil.FormatBool(*g.customCoordinates))
	}
	g.writeAttrs(el, o)

	ns.optText(el, "name", g.name)
	ns.optText(el, "placed_by", g.placedBy)
	xmlutil.AddChild(el, g.owner.serialize(o, ns, "owner", Geocache100))
	xmlutil.AddChild(el, g.cacheType.serialize(o, ns, "type", Geocache102))
	xmlutil.AddChild(el, g.container.serialize(o, ns, "container", Geocache102))
	if ans, ok := o.cacheNSSince(Geocache101); ok && (g.attributes.Len() > 0 || g.attributesWrap.significant(o)) {
		w := ans.element("attributes")
		g.attributesWrap.writeAttrs(w, o)
		for _, a := range g.attributes.All() {
			xmlutil.AddChild(w, a.serialize(o, ans))
		}
		g.attributesWrap.writeElements(w, o)
		el.AddChild(w)
	}
	ns.optFloat(el, "difficulty", g.difficulty)
	ns.optFloat(el, "terrain", g.terrain)
	ns.optText(el, "country", g.country)
	ns.optText(el, "state", g.state)
	xmlutil.AddChild(el, g.shortDescription.serialize(o, ns, "short_description"))
	xmlutil.AddChild(el, g.longDescription.serialize(o, ns, "long_description"))
	ns.optText(el, "encoded_hints", g.encodedHints)
	if ens, ok := o.cacheNSSince(Geocache102); ok {
		ens.optText(el, "personal_note", g.personalNote)
		ens.optInt(el, "favorite_points", g.favoritePoints)
	}
	if g.logs.Len() > 0 || g.logsWrap.significant(o) {
		w := ns.element("logs")
		g.logsWrap.writeAttrs(w, o)
		for _, l := range g.logs.All() {
			xmlutil.AddChild(w, l.serialize(o, ns))
		}
		g.logsWrap.writeElements(w, o)
		el.AddChild(w)
	}
	if g.trackables.Len() > 0 || g.trackablesWrap.significant(o) {
		w := ns.element("travelbugs")
		g.trackablesWrap.writeAttrs(w, o)
		for _, t := range g.trackables.All() {
			xmlutil.AddChild(w, t.serialize(o, ns))
		}
		g.trackablesWrap.writeElements(w, o)
		el.AddChild(w)
	}
	xmlutil.AddChild(el, serializeImages(o, g.images, &g.imagesWrap))
	g.writeElements(el, o)
	return el
}

func (g *Geocache) freeze() {
	g.Freeze()
	g.extensions.freeze()
	g.owner.freeze()
	g.cacheType.freeze()
	g.container.freeze()
	g.shortDescription.freeze()
	g.longDescription.freeze()
	freezeAll(g.attributes)
	freezeAll(g.logs)
	freezeAll(g.trackables)
	freezeAll(g.images)
	g.attributesWrap.freeze()
	g.logsWrap.freeze()
	g.trackablesWrap.freeze()
	g.imagesWrap.freeze()
}
