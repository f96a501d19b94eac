package gpx

import "github.com/Knagis/GeoTransformer-sub000/gpx/live"

// NewWaypointFromLive builds a waypoint from a Live API record. The record is
// kept as the source of OriginalValues.
func NewWaypointFromLive(g *live.Geocache) *Waypoint {
	w := projectLive(g)
	w.original = originalValues{live: g}
	return w
}

func projectLive(g *live.Geocache) *Waypoint {
	w := NewWaypoint()
	w.Suspend()
	w.SetLatitude(g.Latitude)
	w.SetLongitude(g.Longitude)
	w.SetName(optString(g.Code))
	if !g.UTCPlaceDate.IsZero() {
		w.SetTime(&g.UTCPlaceDate)
	}
	w.SetDescription(optString(g.Name))
	w.SetSymbol(String("Geocache"))
	if g.CacheType != nil && g.CacheType.Name != "" {
		w.SetType(String("Geocache|" + g.CacheType.Name))
	}
	if g.Code != "" {
		l := NewLink()
		l.SetHref(String("https://coord.info/" + g.Code))
		l.SetText(optString(g.Name))
		w.links.Append(l)
	}

	c := w.geocache
	c.SetID(Int64(g.ID))
	c.SetAvailable(Bool(g.Available))
	c.SetArchived(Bool(g.Archived))
	c.SetMemberOnly(Bool(g.IsPremium))
	c.SetName(optString(g.Name))
	c.SetPlacedBy(optString(g.PlacedBy))
	if g.Owner != nil {
		c.owner.SetID(Int64(g.Owner.ID))
		c.owner.SetName(optString(g.Owner.UserName))
	}
	if g.CacheType != nil {
		c.cacheType.SetID(Int64(g.CacheType.ID))
		c.cacheType.SetName(optString(g.CacheType.Name))
	}
	if g.ContainerType != nil {
		c.container.SetID(Int64(g.ContainerType.ID))
		c.container.SetName(optString(g.ContainerType.Name))
	}
	c.SetDifficulty(Float64(g.Difficulty))
	c.SetTerrain(Float64(g.Terrain))
	c.SetCountry(optString(g.Country))
	c.SetState(optString(g.State))
	c.SetEncodedHints(optString(g.EncodedHints))
	if g.ShortDescription != "" {
		c.shortDescription.SetHTML(Bool(g.ShortDescriptionIsHTML))
		c.shortDescription.SetText(String(g.ShortDescription))
	}
	if g.LongDescription != "" {
		c.longDescription.SetHTML(Bool(g.LongDescriptionIsHTML))
		c.longDescription.SetText(String(g.LongDescription))
	}
	c.SetPersonalNote(optString(g.PersonalNote))
	c.SetFavoritePoints(Int(g.FavoritePoints))

	for _, a := range g.Attributes {
		attr := NewGeocacheAttribute()
		attr.SetID(Int64(a.ID))
		attr.SetInclude(Bool(a.IsOn))
		attr.SetName(optString(a.Name))
		c.attributes.Append(attr)
	}
	c.images.Append(projectImages(g.Images)...)
	for _, l := range g.Logs {
		c.logs.Append(projectLog(l))
	}
	for _, t := range g.Trackables {
		tb := NewGeocacheTrackable()
		tb.SetID(Int64(t.ID))
		tb.SetRef(optString(t.Code))
		tb.SetName(optString(t.Name))
		c.trackables.Append(tb)
	}
	w.Resume(w.children()...)
	w.modified = false
	return w
}

func projectLog(l live.Log) *GeocacheLog {
	r := NewGeocacheLog()
	r.SetID(Int64(l.ID))
	if !l.VisitDate.IsZero() {
		r.SetDate(&l.VisitDate)
	}
	if l.LogType != nil {
		r.logType.SetID(Int64(l.LogType.ID))
		r.logType.SetName(optString(l.LogType.Name))
	}
	if l.Finder != nil {
		r.finder.SetID(Int64(l.Finder.ID))
		r.finder.SetName(optString(l.Finder.UserName))
	}
	if l.Text != "" {
		r.text.SetEncoded(Bool(l.TextEncoded))
		r.text.SetText(String(l.Text))
	}
	r.SetLatitude(l.UpdatedLatitude)
	r.SetLongitude(l.UpdatedLongitude)
	r.images.Append(projectImages(l.Images)...)
	return r
}

func projectImages(images []live.Image) []*GeocacheImage {
	r := make([]*GeocacheImage, 0, len(images))
	for _, img := range images {
		i := NewGeocacheImage()
		i.SetURL(optString(img.URL))
		i.SetName(optString(img.Name))
		i.SetDescription(optString(img.Description))
		r = append(r, i)
	}
	return r
}

// optString maps the empty string of the Live API to an absent value.
func optString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
