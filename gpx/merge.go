package gpx

import (
	"cmp"
	"slices"
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/samber/lo"
	"golang.org/x/text/unicode/norm"

	"github.com/Knagis/GeoTransformer-sub000/observable"
)

// Merge fills the fields of target that are unset with the values of
// source. Present values, including empty strings, are never replaced.
//
// Id and name of the cache type, container and owner are one unit: when the
// target pair is incomplete the pair of source replaces it. Short and long
// descriptions are one unit the same way. Links, attributes, images and
// trackables are copied only into an empty target list. Logs are matched by
// id, or by text for logs without one, and the target ends up with the union
// of both lists in date order.
func Merge(target, source *Waypoint) {
	fill(target.elevation, source.elevation, target.SetElevation)
	fill(target.time, source.time, target.SetTime)
	fill(target.magvar, source.magvar, target.SetMagneticVariation)
	fill(target.geoidHeight, source.geoidHeight, target.SetGeoidHeight)
	fill(target.name, source.name, target.SetName)
	fill(target.comment, source.comment, target.SetComment)
	fill(target.description, source.description, target.SetDescription)
	fill(target.source, source.source, target.SetSource)
	fill(target.symbol, source.symbol, target.SetSymbol)
	fill(target.wptType, source.wptType, target.SetType)
	fill(target.fix, source.fix, target.SetFix)
	fill(target.satellites, source.satellites, target.SetSatellites)
	fill(target.hdop, source.hdop, target.SetHDOP)
	fill(target.vdop, source.vdop, target.SetVDOP)
	fill(target.pdop, source.pdop, target.SetPDOP)
	fill(target.ageOfDGPSData, source.ageOfDGPSData, target.SetAgeOfDGPSData)
	fill(target.dgpsID, source.dgpsID, target.SetDGPSID)
	fill(target.lastRefresh, source.lastRefresh, target.SetLastRefresh)
	fillList(target.links, source.links, (*Link).clone)

	mergeGeocache(target.geocache, source.geocache)
}

func mergeGeocache(t, s *Geocache) {
	fill(t.id, s.id, t.SetID)
	fill(t.available, s.available, t.SetAvailable)
	fill(t.archived, s.archived, t.SetArchived)
	fill(t.memberOnly, s.memberOnly, t.SetMemberOnly)
	fill(t.customCoordinates, s.customCoordinates, t.SetCustomCoordinates)
	fill(t.name, s.name, t.SetName)
	fill(t.placedBy, s.placedBy, t.SetPlacedBy)
	fillPair(&t.owner.idName, &s.owner.idName)
	fillPair(&t.cacheType.idName, &s.cacheType.idName)
	fillPair(&t.container.idName, &s.container.idName)
	fill(t.difficulty, s.difficulty, t.SetDifficulty)
	fill(t.terrain, s.terrain, t.SetTerrain)
	fill(t.country, s.country, t.SetCountry)
	fill(t.state, s.state, t.SetState)
	fill(t.encodedHints, s.encodedHints, t.SetEncodedHints)
	fill(t.personalNote, s.personalNote, t.SetPersonalNote)
	fill(t.favoritePoints, s.favoritePoints, t.SetFavoritePoints)

	switch {
	case t.shortDescription.text != nil && t.longDescription.text != nil:
	case s.shortDescription.text != nil && s.longDescription.text != nil:
		t.shortDescription.copyFrom(s.shortDescription)
		t.longDescription.copyFrom(s.longDescription)
	default:
		fillDescription(t.shortDescription, s.shortDescription)
		fillDescription(t.longDescription, s.longDescription)
	}

	fillList(t.attributes, s.attributes, (*GeocacheAttribute).clone)
	fillList(t.images, s.images, (*GeocacheImage).clone)
	fillList(t.trackables, s.trackables, (*GeocacheTrackable).clone)
	mergeLogs(t.logs, s.logs)
}

// fill calls set with src when dst is unset.
func fill[T any](dst, src *T, set func(*T)) {
	if dst == nil && src != nil {
		set(src)
	}
}

// fillPair copies id and name together when the target pair is incomplete
// and the source pair is complete. A partial source only fills the missing
// halves, so a present half is never cleared.
func fillPair(t, s *idName) {
	switch {
	case t.complete() || !s.HasValue():
	case s.complete():
		t.copyFrom(s)
	default:
		fill(t.id, s.id, t.SetID)
		fill(t.name, s.name, t.SetName)
	}
}

func fillDescription(t, s *GeocacheDescription) {
	if t.text == nil && s.text != nil {
		t.SetText(s.text)
		fill(t.html, s.html, t.SetHTML)
	}
}

func fillList[T any](dst, src *observable.Collection[T], clone func(T) T) {
	if dst.Len() > 0 || src.Len() == 0 {
		return
	}
	dst.Append(lo.Map(src.Items(), func(v T, _ int) T { return clone(v) })...)
}

// logIdentity matches the same log in two lists: its id, or a hash of its
// normalized text when the id is missing or not numeric.
func logIdentity(l *GeocacheLog) string {
	if l.id != nil && *l.id != UnknownID {
		return "id:" + strconv.FormatInt(*l.id, 10)
	}
	var text string
	if l.text.text != nil {
		text = *l.text.text
	}
	return "text:" + strconv.FormatUint(xxhash.Sum64String(norm.NFC.String(text)), 16)
}

type logPair struct {
	target, source *GeocacheLog
}

func (p logPair) date() *time.Time {
	if p.target != nil && p.target.date != nil {
		return p.target.date
	}
	if p.source != nil {
		return p.source.date
	}
	return nil
}

func mergeLogs(target, source *observable.Collection[*GeocacheLog]) {
	targetLogs, sourceLogs := target.Items(), source.Items()
	if len(sourceLogs) == 0 {
		return
	}

	pairs := make(map[string]*logPair)
	for _, l := range targetLogs {
		if id := logIdentity(l); pairs[id] == nil {
			pairs[id] = &logPair{target: l}
		}
	}
	for _, l := range sourceLogs {
		id := logIdentity(l)
		if p := pairs[id]; p == nil {
			pairs[id] = &logPair{source: l}
		} else if p.source == nil {
			p.source = l
		}
	}

	ids := lo.Uniq(append(lo.Map(targetLogs, func(l *GeocacheLog, _ int) string { return logIdentity(l) }),
		lo.Map(sourceLogs, func(l *GeocacheLog, _ int) string { return logIdentity(l) })...))
	ordered := lo.Map(ids, func(id string, _ int) *logPair { return pairs[id] })
	slices.SortStableFunc(ordered, func(a, b *logPair) int {
		da, db := a.date(), b.date()
		switch {
		case da == nil && db == nil:
			return 0
		case da == nil:
			return 1
		case db == nil:
			return -1
		}
		return cmp.Compare(da.UnixNano(), db.UnixNano())
	})

	var cursor int
	for _, p := range ordered {
		switch {
		case p.target == nil:
			target.Insert(cursor, p.source.clone())
			cursor++
		default:
			if p.source != nil {
				mergeLog(p.target, p.source)
			}
			if i := slices.Index(target.Items(), p.target); i >= 0 {
				cursor = i + 1
			}
		}
	}
}

func mergeLog(t, s *GeocacheLog) {
	fill(t.id, s.id, t.SetID)
	fill(t.date, s.date, t.SetDate)
	fillPair(&t.finder.idName, &s.finder.idName)
	fillPair(&t.logType.idName, &s.logType.idName)
	if t.text.text == nil && s.text.text != nil {
		t.text.copyFrom(s.text)
	}
	if t.latitude == nil && t.longitude == nil {
		t.SetLatitude(s.latitude)
		t.SetLongitude(s.longitude)
	}
	fillList(t.images, s.images, (*GeocacheImage).clone)
}

// MergeDocument merges every waypoint of source into the waypoint of target
// with the same name and appends copies of the waypoints target lacks. It
// returns the number of merged and added waypoints.
func MergeDocument(target, source *Document) (merged, added int) {
	byName := make(map[string]*Waypoint, target.waypoints.Len())
	for _, w := range target.waypoints.All() {
		if w.name != nil {
			if _, ok := byName[*w.name]; !ok {
				byName[*w.name] = w
			}
		}
	}
	for _, w := range source.waypoints.All() {
		if w.name != nil {
			if t, ok := byName[*w.name]; ok {
				Merge(t, w)
				merged++
				continue
			}
		}
		target.waypoints.Append(w.clone())
		added++
	}
	return merged, added
}
