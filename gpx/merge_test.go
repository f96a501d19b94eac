package gpx_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Knagis/GeoTransformer-sub000/gpx"
)

func newLog(id int64, date time.Time, text string) *gpx.GeocacheLog {
	l := gpx.NewGeocacheLog()
	if id != 0 {
		l.SetID(gpx.Int64(id))
	}
	l.SetDate(&date)
	if text != "" {
		l.Text().SetText(gpx.String(text))
	}
	return l
}

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
}

func logIDs(t *testing.T, g *gpx.Geocache) []int64 {
	t.Helper()
	var ids []int64
	for _, l := range g.Logs().All() {
		ids = append(ids, gpx.Value(l.ID()))
	}
	return ids
}

func TestMergeFillsOnlyMissingFields(t *testing.T) {
	target := gpx.NewWaypoint()
	target.SetName(gpx.String("GC1"))
	target.SetComment(gpx.String(""))
	target.Geocache().SetDifficulty(gpx.Float64(2))

	source := gpx.NewWaypoint()
	source.SetName(gpx.String("GC1-source"))
	source.SetComment(gpx.String("from source"))
	source.SetSymbol(gpx.String("Geocache"))
	source.Geocache().SetDifficulty(gpx.Float64(3))
	source.Geocache().SetTerrain(gpx.Float64(4))
	source.Geocache().SetCountry(gpx.String("Latvia"))

	gpx.Merge(target, source)

	require.Equal(t, "GC1", gpx.Value(target.Name()))
	require.Equal(t, "", gpx.Value(target.Comment()), "an empty string is a value")
	require.Equal(t, "Geocache", gpx.Value(target.Symbol()))
	require.Equal(t, 2.0, gpx.Value(target.Geocache().Difficulty()))
	require.Equal(t, 4.0, gpx.Value(target.Geocache().Terrain()))
	require.Equal(t, "Latvia", gpx.Value(target.Geocache().Country()))
}

func TestMergeCopiesPairsAsUnits(t *testing.T) {
	target := gpx.NewWaypoint()
	target.Geocache().Owner().SetName(gpx.String("local name"))
	target.Geocache().CacheType().SetID(gpx.Int64(2))
	target.Geocache().CacheType().SetName(gpx.String("Traditional Cache"))
	target.Geocache().ShortDescription().SetText(gpx.String("short"))

	source := gpx.NewWaypoint()
	source.Geocache().Owner().SetID(gpx.Int64(7))
	source.Geocache().Owner().SetName(gpx.String("remote name"))
	source.Geocache().CacheType().SetID(gpx.Int64(3))
	source.Geocache().CacheType().SetName(gpx.String("Multi-cache"))
	source.Geocache().ShortDescription().SetText(gpx.String("remote short"))
	source.Geocache().LongDescription().SetHTML(gpx.Bool(true))
	source.Geocache().LongDescription().SetText(gpx.String("<p>long</p>"))

	gpx.Merge(target, source)
	g := target.Geocache()

	require.Equal(t, int64(7), gpx.Value(g.Owner().ID()), "incomplete owner takes the source pair")
	require.Equal(t, "remote name", gpx.Value(g.Owner().Name()))
	require.Equal(t, int64(2), gpx.Value(g.CacheType().ID()), "complete type is kept")
	require.Equal(t, "Traditional Cache", gpx.Value(g.CacheType().Name()))
	require.Equal(t, "remote short", gpx.Value(g.ShortDescription().Text()), "descriptions are one unit")
	require.True(t, g.LongDescription().IsHTML())
	require.Equal(t, "<p>long</p>", gpx.Value(g.LongDescription().Text()))
}

func TestMergeKeepsPresentHalves(t *testing.T) {
	target := gpx.NewWaypoint()
	target.Geocache().Owner().SetID(gpx.Int64(42))
	target.Geocache().Container().SetName(gpx.String("Small"))
	target.Geocache().ShortDescription().SetText(gpx.String("short"))
	target.Geocache().LongDescription().SetHTML(gpx.Bool(true))

	source := gpx.NewWaypoint()
	source.Geocache().Owner().SetName(gpx.String("Bob"))
	source.Geocache().Container().SetID(gpx.Int64(8))
	source.Geocache().LongDescription().SetHTML(gpx.Bool(false))
	source.Geocache().LongDescription().SetText(gpx.String("long"))

	gpx.Merge(target, source)
	g := target.Geocache()

	require.Equal(t, int64(42), gpx.Value(g.Owner().ID()), "a partial source pair must not clear the id")
	require.Equal(t, "Bob", gpx.Value(g.Owner().Name()))
	require.Equal(t, int64(8), gpx.Value(g.Container().ID()))
	require.Equal(t, "Small", gpx.Value(g.Container().Name()))
	require.Equal(t, "short", gpx.Value(g.ShortDescription().Text()), "a partial source unit must not clear the text")
	require.Equal(t, "long", gpx.Value(g.LongDescription().Text()))
	require.True(t, g.LongDescription().IsHTML(), "present html flag is kept")
}

func TestMergeCollectionsOnlyIntoEmptyTarget(t *testing.T) {
	target := gpx.NewWaypoint()
	l := gpx.NewLink()
	l.SetHref(gpx.String("https://local"))
	target.Links().Append(l)

	source := gpx.NewWaypoint()
	for _, href := range []string{"https://a", "https://b"} {
		l := gpx.NewLink()
		l.SetHref(gpx.String(href))
		source.Links().Append(l)
	}
	a := gpx.NewGeocacheAttribute()
	a.SetID(gpx.Int64(13))
	a.SetInclude(gpx.Bool(true))
	source.Geocache().Attributes().Append(a)
	tb := gpx.NewGeocacheTrackable()
	tb.SetRef(gpx.String("TB1"))
	source.Geocache().Trackables().Append(tb)

	gpx.Merge(target, source)
	g := target.Geocache()

	require.Equal(t, 1, target.Links().Len())
	require.Equal(t, "https://local", gpx.Value(target.Links().At(0).Href()))
	require.Equal(t, 1, g.Attributes().Len())
	require.NotSame(t, a, g.Attributes().At(0), "items are copied")
	require.Equal(t, int64(13), gpx.Value(g.Attributes().At(0).ID()))
	require.True(t, gpx.Value(g.Attributes().At(0).Include()))
	require.Equal(t, "TB1", gpx.Value(g.Trackables().At(0).Ref()))

	a.SetID(gpx.Int64(14))
	require.Equal(t, int64(13), gpx.Value(g.Attributes().At(0).ID()), "source edits do not leak into the target")
}

func TestMergeLogOrder(t *testing.T) {
	target := gpx.NewWaypoint()
	l1 := newLog(5, day(2020, 1, 1), "Found it")
	target.Geocache().Logs().Append(l1)

	source := gpx.NewWaypoint()
	l2 := newLog(99, day(2019, 1, 1), "Older")
	l3 := newLog(5, day(2021, 1, 1), "Found it, edited")
	l3.Finder().SetID(gpx.Int64(7))
	l3.Finder().SetName(gpx.String("bob"))
	l3.SetLatitude(gpx.Float64(56.9))
	l3.SetLongitude(gpx.Float64(24.1))
	source.Geocache().Logs().Append(l2, l3)

	gpx.Merge(target, source)
	g := target.Geocache()

	require.Equal(t, []int64{99, 5}, logIDs(t, g))
	require.Same(t, l1, g.Logs().At(1), "matching target logs stay in place")
	require.Equal(t, day(2020, 1, 1), gpx.Value(l1.Date()), "present date is kept")
	require.Equal(t, "Found it", gpx.Value(l1.Text().Text()), "present text is kept")
	require.Equal(t, "bob", gpx.Value(l1.Finder().Name()))
	require.Equal(t, 56.9, gpx.Value(l1.Latitude()))
	require.Equal(t, 24.1, gpx.Value(l1.Longitude()))
	require.Equal(t, "Older", gpx.Value(g.Logs().At(0).Text().Text()))
}

func TestMergeLogsInterleaveByDate(t *testing.T) {
	target := gpx.NewWaypoint()
	target.Geocache().Logs().Append(
		newLog(2, day(2012, 1, 1), ""),
		newLog(4, day(2014, 1, 1), ""),
	)
	source := gpx.NewWaypoint()
	source.Geocache().Logs().Append(
		newLog(5, day(2015, 1, 1), ""),
		newLog(3, day(2013, 1, 1), ""),
		newLog(1, day(2011, 1, 1), ""),
		newLog(4, day(2014, 1, 1), ""),
	)
	undated := gpx.NewGeocacheLog()
	undated.SetID(gpx.Int64(6))
	source.Geocache().Logs().Append(undated)

	gpx.Merge(target, source)
	require.Equal(t, []int64{1, 2, 3, 4, 5, 6}, logIDs(t, target.Geocache()))
}

func TestMergeMatchesLogsWithoutIDByText(t *testing.T) {
	target := gpx.NewWaypoint()
	target.Geocache().Logs().Append(newLog(0, day(2020, 1, 1), "Café was closed"))

	source := gpx.NewWaypoint()
	l := newLog(0, day(2020, 1, 1), "Cafe\u0301 was closed")
	l.Type().SetName(gpx.String("Didn't find it"))
	source.Geocache().Logs().Append(l)

	gpx.Merge(target, source)
	g := target.Geocache()
	require.Equal(t, 1, g.Logs().Len(), "normalized texts identify the same log")
	require.Equal(t, "Didn't find it", gpx.Value(g.Logs().At(0).Type().Name()))
}

func TestMergeIsIdempotent(t *testing.T) {
	source := load(t, "saved_11.gpx").Waypoints().At(0)
	target := gpx.NewWaypoint()
	target.SetName(gpx.String("GC1Q2W3"))
	target.Geocache().Logs().Append(newLog(300, day(2011, 1, 1), "Later log"))

	gpx.Merge(target, source)
	once := xmlString(t, target.Serialize(gpx.RoundtripOptions()))
	gpx.Merge(target, source)
	twice := xmlString(t, target.Serialize(gpx.RoundtripOptions()))

	require.Equal(t, once, twice)
	require.Equal(t, []int64{200, 300}, logIDs(t, target.Geocache()))
	require.Equal(t, 1, target.Geocache().Images().Len())
	require.Equal(t, "Checked in 2012", gpx.Value(target.Geocache().PersonalNote()))
}

func TestMergeDocument(t *testing.T) {
	target := gpx.NewDocument()
	w := gpx.NewWaypoint()
	w.SetName(gpx.String("GC1Q2W3"))
	target.Waypoints().Append(w)

	source := load(t, "pocket_query_10.gpx")
	merged, added := gpx.MergeDocument(target, source)

	require.Equal(t, 1, merged)
	require.Equal(t, 1, added)
	require.Equal(t, 2, target.Waypoints().Len())
	require.Same(t, w, target.Waypoints().At(0))
	require.Equal(t, "Old Town", gpx.Value(w.Geocache().Name()))
	require.Equal(t, "PARK01", gpx.Value(target.Waypoints().At(1).Name()))
	require.NotSame(t, source.Waypoints().At(1), target.Waypoints().At(1))
}
