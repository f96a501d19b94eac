// Package xmlutil holds namespace and value formatting helpers shared by the
// GPX model and the Garmin writer.
package xmlutil

import (
	"maps"
	"math"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/beevik/etree"
)

// XMLNamespace is bound to the "xml" prefix by definition.
const XMLNamespace = "http://www.w3.org/XML/1998/namespace"

// Name is a namespace qualified name.
type Name struct {
	Space string // namespace URI, empty for unqualified attributes
	Local string
}

func (n Name) String() string {
	if n.Space == "" {
		return n.Local
	}
	return "{" + n.Space + "}" + n.Local
}

// Attr is an attribute detached from its element. Prefix is remembered so it
// can be written back the way it was read.
type Attr struct {
	Space  string
	Prefix string
	Local  string
	Value  string
}

// IsNamespaceDecl reports whether a is xmlns or xmlns:prefix.
func IsNamespaceDecl(a etree.Attr) bool {
	return a.Space == "xmlns" || a.Space == "" && a.Key == "xmlns"
}

// LookupNamespace resolves prefix ("" for the default namespace) against the
// xmlns declarations of el and its ancestors.
func LookupNamespace(el *etree.Element, prefix string) string {
	if prefix == "xml" {
		return XMLNamespace
	}
	for e := el; e != nil; e = e.Parent() {
		for _, a := range e.Attr {
			if prefix == "" && a.Space == "" && a.Key == "xmlns" ||
				prefix != "" && a.Space == "xmlns" && a.Key == prefix {
				return a.Value
			}
		}
	}
	return ""
}

// ElementName returns the qualified name of el.
func ElementName(el *etree.Element) Name {
	return Name{Space: LookupNamespace(el, el.Space), Local: el.Tag}
}

// AttrName returns the qualified name of an attribute of el. Unprefixed
// attributes are in no namespace.
func AttrName(el *etree.Element, a etree.Attr) Name {
	if a.Space == "" {
		return Name{Local: a.Key}
	}
	return Name{Space: LookupNamespace(el, a.Space), Local: a.Key}
}

// DetachAttr copies an attribute of el together with its namespace.
func DetachAttr(el *etree.Element, a etree.Attr) Attr {
	n := AttrName(el, a)
	return Attr{Space: n.Space, Prefix: a.Space, Local: a.Key, Value: a.Value}
}

// WriteAttr sets a on el, declaring its namespace prefix on el when needed.
func WriteAttr(el *etree.Element, a Attr) {
	if a.Space == "" || a.Prefix == "" {
		el.CreateAttr(a.Local, a.Value)
		return
	}
	if LookupNamespace(el, a.Prefix) != a.Space {
		el.CreateAttr("xmlns:"+a.Prefix, a.Space)
	}
	el.CreateAttr(a.Prefix+":"+a.Local, a.Value)
}

// Detach returns a deep copy of el that declares every namespace it uses,
// so it stays meaningful without its original ancestors.
func Detach(el *etree.Element) *etree.Element {
	c := el.Copy()
	needed := map[string]bool{}
	var walk func(e *etree.Element)
	walk = func(e *etree.Element) {
		if LookupNamespace(e, e.Space) == "" {
			needed[e.Space] = true
		}
		for _, a := range e.Attr {
			if a.Space != "" && !IsNamespaceDecl(a) && LookupNamespace(e, a.Space) == "" {
				needed[a.Space] = true
			}
		}
		for _, child := range e.ChildElements() {
			walk(child)
		}
	}
	walk(c)

	for _, prefix := range slices.Sorted(maps.Keys(needed)) {
		uri := LookupNamespace(el, prefix)
		if uri == "" || prefix == "xml" {
			continue
		}
		if prefix == "" {
			c.CreateAttr("xmlns", uri)
		} else {
			c.CreateAttr("xmlns:"+prefix, uri)
		}
	}
	return c
}

// NewElement creates an element in namespace ns. With an empty prefix ns is
// declared as the default namespace of the element.
func NewElement(ns, prefix, local string) *etree.Element {
	if prefix == "" {
		el := etree.NewElement(local)
		if ns != "" {
			el.CreateAttr("xmlns", ns)
		}
		return el
	}
	el := etree.NewElement(prefix + ":" + local)
	el.CreateAttr("xmlns:"+prefix, ns)
	return el
}

// Tidy removes namespace declarations of el and its descendants that repeat
// a declaration already in scope. inherited holds the declarations in scope
// above el, keyed by prefix ("" for the default namespace); it may be nil.
func Tidy(el *etree.Element, inherited map[string]string) {
	scope := maps.Clone(inherited)
	if scope == nil {
		scope = map[string]string{}
	}
	for i := 0; i < len(el.Attr); {
		a := el.Attr[i]
		if !IsNamespaceDecl(a) {
			i++
			continue
		}
		prefix := a.Key
		if a.Space == "" {
			prefix = ""
		}
		if v, ok := scope[prefix]; ok && v == a.Value {
			el.Attr = slices.Delete(el.Attr, i, i+1)
			continue
		}
		scope[prefix] = a.Value
		i++
	}
	for _, child := range el.ChildElements() {
		Tidy(child, scope)
	}
}

// IsEmpty reports whether el carries no data: no attributes other than
// namespace declarations, no child elements and no non-blank text.
func IsEmpty(el *etree.Element) bool {
	for _, a := range el.Attr {
		if !IsNamespaceDecl(a) {
			return false
		}
	}
	return len(el.ChildElements()) == 0 && strings.TrimSpace(el.Text()) == ""
}

// AddChild appends child to parent unless it is nil.
func AddChild(parent, child *etree.Element) {
	if child != nil {
		parent.AddChild(child)
	}
}

// FormatFloat writes the shortest decimal representation of v.
func FormatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// FormatCoordinate writes a latitude or longitude. Unless full is set the
// value is rounded to 7 decimals (about 1 cm).
func FormatCoordinate(v float64, full bool) string {
	if !full {
		v = math.Round(v*1e7) / 1e7
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// ParseFloat parses a decimal number, accepting a decimal comma written by
// some localized producers.
func ParseFloat(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if strings.Count(s, ",") == 1 && !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}
	return strconv.ParseFloat(s, 64)
}

// FormatBool writes "True" or "False", the spelling Groundspeak uses.
func FormatBool(v bool) string {
	if v {
		return "True"
	}
	return "False"
}

// ParseBool accepts true/false in any case and 1/0.
func ParseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "yes":
		return true, nil
	case "false", "0", "no":
		return false, nil
	}
	return false, strconv.ErrSyntax
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// FormatTime writes t in UTC as RFC 3339, with fractional seconds only when
// present.
func FormatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// ParseTime parses RFC 3339 and the zone-less forms found in Groundspeak
// files; zone-less values are taken as UTC. The result is always in UTC.
func ParseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	var err error
	for _, layout := range timeLayouts {
		var t time.Time
		if t, err = time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, err
}
