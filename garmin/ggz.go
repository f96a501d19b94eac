// Package garmin writes geocaches into the indexed GGZ container read by
// Garmin devices: chunked GPX payload files plus a manifest that records
// where each geocache sits inside its chunk.
package garmin

import (
	"bytes"
	"errors"
	"fmt"
	"hash/crc32"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/beevik/etree"
	"github.com/klauspost/compress/zip"
	"go.uber.org/zap"

	"github.com/Knagis/GeoTransformer-sub000/gpx"
	"github.com/Knagis/GeoTransformer-sub000/internal/xmlutil"
)

const (
	// Namespace is the namespace of the GGZ manifest.
	Namespace = "http://www.opencaching.com/xmlschemas/ggz/1/0"

	// IndexPath is the location of the manifest inside the container.
	IndexPath = "index/com/garmin/geocaches/v0/index.xml"

	dataDir = "data/"

	defaultChunkSize = 4 << 20

	// awesomeness is not tracked anywhere; devices expect a value.
	awesomeness = 3.0
)

var (
	// ErrNilWriter is returned when Create is called without an output.
	ErrNilWriter = errors.New("garmin: nil writer")
	// ErrNilDocument is returned when one of the documents passed to
	// Create is nil.
	ErrNilDocument = errors.New("garmin: nil document")
)

type options struct {
	chunkSize int
	clock     func() time.Time
	log       *zap.Logger
}

func defaultOptions() options {
	return options{
		chunkSize: defaultChunkSize,
		clock:     time.Now,
		log:       zap.NewNop(),
	}
}

// Option is Create option.
type Option func(o *options)

// WithChunkSize sets the size after which a new payload file is started.
// A chunk is closed once it grows past size, so a single geocache is never
// split. Zero or negative value will be ignored.
func WithChunkSize(size int) Option {
	return func(o *options) {
		if size > 0 {
			o.chunkSize = size
		}
	}
}

// WithClock sets the time source for the file timestamps of the manifest.
func WithClock(clock func() time.Time) Option {
	return func(o *options) {
		if clock != nil {
			o.clock = clock
		}
	}
}

// WithLogger directs chunk rollover and skipped waypoints to log at debug
// level.
func WithLogger(log *zap.Logger) Option {
	return func(o *options) {
		if log != nil {
			o.log = log
		}
	}
}

// Create writes every waypoint with geocache data from docs into w as a GGZ
// container. Waypoints are written in the GPX 1.0 compatibility format.
func Create(w io.Writer, docs []*gpx.Document, opts ...Option) error {
	if w == nil {
		return ErrNilWriter
	}
	for i, doc := range docs {
		if doc == nil {
			return fmt.Errorf("document %d: %w", i, ErrNilDocument)
		}
	}

	o := defaultOptions()
	for i := range opts {
		opts[i](&o)
	}

	gz := &writer{
		options: o,
		zw:      zip.NewWriter(w),
		gpx:     gpx.CompatibilityOptions(),
		index:   etree.NewElement("ggz"),
	}
	gz.index.CreateAttr("xmlns", Namespace)
	gz.header, gz.scope = header(gz.gpx)

	for _, doc := range docs {
		for _, wpt := range doc.Waypoints().All() {
			if !wpt.Geocache().IsDefined() {
				o.log.Debug("skipping waypoint without geocache data", zap.Stringer("waypoint", wpt))
				continue
			}
			if err := gz.add(wpt); err != nil {
				return err
			}
		}
	}
	if err := gz.flush(); err != nil {
		return err
	}
	if err := gz.writeIndex(); err != nil {
		return err
	}
	return gz.zw.Close()
}

type writer struct {
	options

	zw     *zip.Writer
	gpx    gpx.SerializationOptions
	header []byte
	scope  map[string]string

	index  *etree.Element
	chunk  bytes.Buffer
	caches []*etree.Element // gch entries of the open chunk
	count  int              // chunks written
}

// header returns the opening gpx tag of every chunk together with the
// namespace declarations it puts in scope.
func header(o gpx.SerializationOptions) ([]byte, map[string]string) {
	root := gpx.NewDocument().Header(o)
	scope := make(map[string]string)

	var b bytes.Buffer
	b.WriteString(`<?xml version="1.0" encoding="utf-8"?>` + "\n")
	b.WriteString("<" + root.FullTag())
	for _, a := range root.Attr {
		if xmlutil.IsNamespaceDecl(a) {
			prefix := a.Key
			if a.Space == "" {
				prefix = ""
			}
			scope[prefix] = a.Value
		}
		b.WriteString(" " + a.FullKey() + `="` + attrEscaper.Replace(a.Value) + `"`)
	}
	b.WriteString(">\n")
	return b.Bytes(), scope
}

var attrEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"\t", "&#x9;",
	"\n", "&#xA;",
	"\r", "&#xD;",
)

const footer = "</gpx>\n"

func (gz *writer) add(wpt *gpx.Waypoint) error {
	el := wpt.Serialize(gz.gpx)
	xmlutil.Tidy(el, gz.scope)

	x := etree.NewDocument()
	x.SetRoot(el)
	var b bytes.Buffer
	if _, err := x.WriteTo(&b); err != nil {
		return fmt.Errorf("waypoint %s: %w", wpt, err)
	}
	b.WriteByte('\n')

	if gz.chunk.Len() == 0 {
		gz.chunk.Write(gz.header)
	}
	pos := gz.chunk.Len()
	gz.chunk.Write(b.Bytes())
	gz.caches = append(gz.caches, gz.entry(wpt, pos, b.Len()))

	if gz.chunk.Len() > gz.chunkSize {
		return gz.flush()
	}
	return nil
}

// entry builds the gch manifest entry of wpt written at pos within the
// current chunk.
func (gz *writer) entry(wpt *gpx.Waypoint, pos, n int) *etree.Element {
	g := wpt.Geocache()
	gch := etree.NewElement("gch")
	text(gch, "code", gpx.Value(wpt.Name()))
	text(gch, "name", gpx.Value(g.Name()))
	text(gch, "type", gpx.Value(g.CacheType().Name()))
	text(gch, "lat", xmlutil.FormatCoordinate(wpt.Latitude(), false))
	text(gch, "lon", xmlutil.FormatCoordinate(wpt.Longitude(), false))
	text(gch, "file_pos", strconv.Itoa(pos))
	text(gch, "file_len", strconv.Itoa(n))

	ratings := gch.CreateElement("ratings")
	text(ratings, "awesomeness", rating(awesomeness))
	if d := g.Difficulty(); d != nil {
		text(ratings, "difficulty", rating(*d))
	}
	if size, ok := g.Container().NumericValue(); ok {
		text(ratings, "size", rating(float64(size)))
	}
	if t := g.Terrain(); t != nil {
		text(ratings, "terrain", rating(*t))
	}
	return gch
}

// flush writes the open chunk as the next payload file.
func (gz *writer) flush() error {
	if len(gz.caches) == 0 {
		return nil
	}
	gz.chunk.WriteString(footer)
	data := gz.chunk.Bytes()

	gz.count++
	name := "Default_" + strconv.Itoa(gz.count) + ".gpx"
	f, err := gz.zw.Create(dataDir + name)
	if err != nil {
		return fmt.Errorf("create %s: %w", name, err)
	}
	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}

	file := gz.index.CreateElement("file")
	text(file, "name", name)
	text(file, "crc", fmt.Sprintf("%08x", crc32.ChecksumIEEE(data)))
	text(file, "time", xmlutil.FormatTime(gz.clock()))
	for _, gch := range gz.caches {
		file.AddChild(gch)
	}

	gz.log.Debug("ggz chunk written",
		zap.String("name", name),
		zap.Int("geocaches", len(gz.caches)),
		zap.Int("bytes", len(data)))

	gz.chunk.Reset()
	gz.caches = gz.caches[:0]
	return nil
}

func (gz *writer) writeIndex() error {
	x := etree.NewDocument()
	x.CreateProcInst("xml", `version="1.0" encoding="utf-8"`)
	x.SetRoot(gz.index)
	x.Indent(2)

	f, err := gz.zw.Create(IndexPath)
	if err != nil {
		return fmt.Errorf("create index: %w", err)
	}
	if _, err := x.WriteTo(f); err != nil {
		return fmt.Errorf("write index: %w", err)
	}
	return nil
}

func text(parent *etree.Element, tag, value string) {
	parent.CreateElement(tag).SetText(value)
}

func rating(v float64) string { return strconv.FormatFloat(v, 'f', 1, 64) }
