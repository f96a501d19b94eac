package gpx

import (
	"fmt"
	"io"
	"os"

	"github.com/beevik/etree"
	"go.uber.org/zap"
	"golang.org/x/net/html/charset"

	"github.com/Knagis/GeoTransformer-sub000/xmltoken"
)

type options struct {
	log       *zap.Logger
	tokenizer bool
	tokenOpts []xmltoken.Option
}

func defaultOptions() options {
	return options{log: zap.NewNop()}
}

// Option is Load option.
type Option func(o *options)

// WithLogger directs parse diagnostics (malformed values that were skipped,
// unmapped content kept as extensions) to log at debug level.
func WithLogger(log *zap.Logger) Option {
	return func(o *options) {
		if log != nil {
			o.log = log
		}
	}
}

// WithTokenizer reads the input with the streaming xmltoken tokenizer instead
// of encoding/xml. The input must be UTF-8.
func WithTokenizer(opts ...xmltoken.Option) Option {
	return func(o *options) {
		o.tokenizer = true
		o.tokenOpts = opts
	}
}

// Load reads a GPX 1.0 or 1.1 document. Only malformed XML and a root element
// other than gpx are errors; fields that fail to convert are left unset.
func Load(r io.Reader, opts ...Option) (*Document, error) {
	o := defaultOptions()
	for i := range opts {
		opts[i](&o)
	}

	tree, err := readTree(r, &o)
	if err != nil {
		return nil, fmt.Errorf("read xml: %w", err)
	}
	root := tree.Root()
	if root == nil {
		return nil, ErrNotGPX
	}
	stripWhitespace(root)

	doc, err := parseDocument(root, &decoder{log: o.log})
	if err != nil {
		return nil, err
	}
	o.log.Debug("loaded gpx document",
		zap.String("namespace", root.NamespaceURI()),
		zap.Int("waypoints", doc.waypoints.Len()),
		zap.Int("routes", doc.routes.Len()),
		zap.Int("tracks", doc.tracks.Len()))
	return doc, nil
}

// LoadFile reads the GPX document stored at path.
func LoadFile(path string, opts ...Option) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	doc, err := Load(f, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

func readTree(r io.Reader, o *options) (*etree.Document, error) {
	if o.tokenizer {
		return xmltoken.ReadTree(r, o.tokenOpts...)
	}
	tree := etree.NewDocument()
	tree.ReadSettings.CharsetReader = charset.NewReaderLabel
	if _, err := tree.ReadFrom(r); err != nil {
		return nil, err
	}
	return tree, nil
}

// stripWhitespace removes the indentation between child elements so both
// parse paths produce the same tree. Text of leaf elements is kept.
func stripWhitespace(el *etree.Element) {
	if len(el.ChildElements()) == 0 {
		return
	}
	for i := len(el.Child) - 1; i >= 0; i-- {
		if cd, ok := el.Child[i].(*etree.CharData); ok && cd.IsWhitespace() {
			el.RemoveChildAt(i)
		}
	}
	for _, child := range el.ChildElements() {
		stripWhitespace(child)
	}
}
