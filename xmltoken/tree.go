package xmltoken

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/beevik/etree"
)

const errUnbalancedEndElement = errorString("end element without matching start element")

// ReadTree tokenizes r and builds an etree document from the tokens.
// CharData and attribute values are kept as written, except that line ends
// are normalized to "\n" and the predefined and numeric character
// references are decoded. CDATA sections are taken literally.
// Whitespace-only CharData is dropped from elements that have child
// elements. Prefixes are kept as written; etree resolves them through the
// xmlns attributes of the tree.
func ReadTree(r io.Reader, opts ...Option) (*etree.Document, error) {
	tok := New(r, append(opts[:len(opts):len(opts)], WithKeepWhitespace())...)
	doc := etree.NewDocument()
	cur := &doc.Element
	for {
		token, err := tok.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		switch {
		case token.IsProcInst():
			target, inst := splitProcInst(token.Data)
			cur.CreateProcInst(target, inst)
		case token.IsComment():
			data := bytes.TrimSuffix(bytes.TrimPrefix(token.Data, []byte("<!--")), []byte("-->"))
			cur.CreateComment(string(data))
		case token.IsDirective():
			data := bytes.TrimSuffix(bytes.TrimPrefix(token.Data, []byte("<!")), []byte(">"))
			cur.CreateDirective(string(data))
		case token.IsEndElement:
			if cur == &doc.Element || cur.FullTag() != string(token.Name.Full) {
				return nil, fmt.Errorf("</%s>: %w", token.Name.Full, errUnbalancedEndElement)
			}
			closed := cur
			cur = cur.Parent()
			stripIndent(closed)
			if len(token.Data) > 0 {
				closed.SetTail(charData(&token))
			}
		default:
			el := cur.CreateElement(string(token.Name.Full))
			for i := range token.Attrs {
				attr := &token.Attrs[i]
				el.CreateAttr(string(attr.Name.Full), unescape(attr.Value))
			}
			if token.SelfClosing {
				if len(token.Data) > 0 {
					el.SetTail(charData(&token))
				}
				continue
			}
			if len(token.Data) > 0 {
				el.SetText(charData(&token))
			}
			cur = el
		}
	}

	if cur != &doc.Element {
		return nil, fmt.Errorf("<%s> not closed: %w", cur.FullTag(), io.ErrUnexpectedEOF)
	}
	stripIndent(&doc.Element)
	return doc, nil
}

// stripIndent removes whitespace-only CharData of el when el has child
// elements. Text of leaf elements is kept.
func stripIndent(el *etree.Element) {
	if len(el.ChildElements()) == 0 {
		return
	}
	for i := len(el.Child) - 1; i >= 0; i-- {
		if cd, ok := el.Child[i].(*etree.CharData); ok && cd.IsWhitespace() {
			el.RemoveChildAt(i)
		}
	}
}

func charData(t *Token) string {
	if t.CDATA {
		return newlines.Replace(string(t.Data))
	}
	return unescape(t.Data)
}

var newlines = strings.NewReplacer("\r\n", "\n", "\r", "\n")

// unescape decodes the five predefined entities and numeric character
// references. Anything else, including references without the closing
// semicolon, is kept literally.
func unescape(b []byte) string {
	s := newlines.Replace(string(b))
	i := strings.IndexByte(s, '&')
	if i < 0 {
		return s
	}

	var sb strings.Builder
	sb.Grow(len(s))
	for i >= 0 {
		sb.WriteString(s[:i])
		s = s[i:]
		end := strings.IndexByte(s, ';')
		if end < 0 {
			break
		}
		if r, ok := reference(s[1:end]); ok {
			sb.WriteString(r)
			s = s[end+1:]
		} else {
			sb.WriteByte('&')
			s = s[1:]
		}
		i = strings.IndexByte(s, '&')
	}
	sb.WriteString(s)
	return sb.String()
}

func reference(name string) (string, bool) {
	switch name {
	case "lt":
		return "<", true
	case "gt":
		return ">", true
	case "amp":
		return "&", true
	case "apos":
		return "'", true
	case "quot":
		return `"`, true
	}
	if len(name) < 2 || name[0] != '#' {
		return "", false
	}
	var v uint64
	var err error
	if name[1] == 'x' {
		v, err = strconv.ParseUint(name[2:], 16, 32)
	} else {
		v, err = strconv.ParseUint(name[1:], 10, 32)
	}
	if err != nil || !utf8.ValidRune(rune(v)) {
		return "", false
	}
	return string(rune(v)), true
}

// splitProcInst splits "<?xml version="1.0"?>" into "xml" and `version="1.0"`.
func splitProcInst(b []byte) (target, inst string) {
	b = bytes.TrimSuffix(bytes.TrimPrefix(b, []byte("<?")), []byte("?>"))
	if i := bytes.IndexAny(b, " \t\r\n"); i >= 0 {
		return string(b[:i]), string(trim(b[i:]))
	}
	return string(b), ""
}
