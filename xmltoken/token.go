package xmltoken

import (
	"bytes"
	"sync"
)

var pool = sync.Pool{New: func() any { return new(Token) }}

// GetToken gets token from the pool, don't forget to put it back.
func GetToken() *Token { return pool.Get().(*Token) }

// PutToken puts token back to the pool.
func PutToken(t *Token) { pool.Put(t) }

// Token represent a single token, one of these following:
//   - <?xml version="1.0" encoding="UTF-8"?>
//   - <wpt lat="56.95" lon="24.10">
//   - <groundspeak:name>CharData
//   - <groundspeak:text encoded="False"><![CDATA[ CharData ]]>
//   - <bounds minlat="56.9" minlon="24.0" maxlat="57.1" maxlon="24.3"/>
//   - </wpt>
//   - <!-- a comment -->
//   - <!DOCTYPE gpx>
//
// Token includes CharData or CDATA in Data field when it appears right after
// the start element. For an end element, Data holds the CharData that follows
// the closing tag (the tail of the closed element).
type Token struct {
	Name         Name   // Name is an XML name, empty when a tag starts with "<?" or "<!".
	Attrs        []Attr // Attrs exist when len(Attrs) > 0.
	Data         []byte // Data could be a CharData or a CDATA, or maybe a RawToken if a tag starts with "<?" or "<!" (except "<![CDATA").
	CDATA        bool   // True when Data was enclosed in <![CDATA[ ]]>, Data is then taken literally.
	SelfClosing  bool   // True when a tag ends with "/>" e.g. <log_wpt lat="1" lon="2"/>. Also true when a tag starts with "<?" or "<!" (except "<![CDATA").
	IsEndElement bool   // True when a tag start with "</" e.g. </gpx> or </groundspeak:cache>.
}

// IsEndElementOf checks whether the given token represent a
// n end element (closing tag) of given StartElement.
func (t *Token) IsEndElementOf(se *Token) bool {
	if t.IsEndElement &&
		string(t.Name.Full) == string(se.Name.Full) {
		return true
	}
	return false
}

// IsProcInst reports whether t is a processing instruction, e.g. <?xml ...?>.
func (t *Token) IsProcInst() bool {
	return len(t.Name.Full) == 0 && bytes.HasPrefix(t.Data, []byte("<?"))
}

// IsComment reports whether t is a comment.
func (t *Token) IsComment() bool {
	return len(t.Name.Full) == 0 && bytes.HasPrefix(t.Data, []byte("<!--"))
}

// IsDirective reports whether t is a directive such as <!DOCTYPE gpx>.
func (t *Token) IsDirective() bool {
	return len(t.Name.Full) == 0 && bytes.HasPrefix(t.Data, []byte("<!")) && !t.IsComment()
}

// Copy copies src Token into t, returning t. Attrs should be
// consumed immediately since it's only being shallow copied.
func (t *Token) Copy(src Token) *Token {
	t.Name.Prefix = append(t.Name.Prefix[:0], src.Name.Prefix...)
	t.Name.Local = append(t.Name.Local[:0], src.Name.Local...)
	t.Name.Full = append(t.Name.Full[:0], src.Name.Full...)
	t.Attrs = append(t.Attrs[:0], src.Attrs...) // shallow copy
	t.Data = append(t.Data[:0], src.Data...)
	t.CDATA = src.CDATA
	t.SelfClosing = src.SelfClosing
	t.IsEndElement = src.IsEndElement
	return t
}

// Attr represents an XML attribute.
type Attr struct {
	Name  Name
	Value []byte
}

// IsNamespaceDecl reports whether a declares a namespace (xmlns or xmlns:prefix).
func (a *Attr) IsNamespaceDecl() bool {
	return string(a.Name.Full) == "xmlns" || string(a.Name.Prefix) == "xmlns"
}

// Name represents an XML name <prefix:local>. Namespace URIs are resolved
// by the tree built on top of the tokens, not by the tokenizer.
type Name struct {
	Prefix []byte
	Local  []byte
	Full   []byte // Full is combination of "prefix:local"
}
