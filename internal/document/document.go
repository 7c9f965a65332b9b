// Package document holds an HTML document as a stream of tokens so individual
// tag attributes can be rewritten and the rest written back byte-for-byte.
package document

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/net/html"
)

// node is one token of the source document. raw is the exact source text;
// tok is only populated for start and self-closing tags.
type node struct {
	raw   []byte
	tok   html.Token
	tag   bool
	dirty bool
}

// Document is a parsed HTML document.
type Document struct {
	nodes  []*node
	source []byte
}

// Element is a start or self-closing tag within a Document.
type Element struct {
	n *node
}

// Parse tokenizes r. Unknown or malformed markup is kept as-is; only I/O
// errors from r are returned.
func Parse(r io.Reader) (*Document, error) {
	var src bytes.Buffer
	z := html.NewTokenizer(io.TeeReader(r, &src))
	d := &Document{}
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			if errors.Is(z.Err(), io.EOF) {
				d.source = src.Bytes()
				return d, nil
			}
			return nil, z.Err()
		}
		// Copy before Token(): the tokenizer lower-cases tag names in its buffer.
		n := &node{raw: append([]byte(nil), z.Raw()...)}
		if tt == html.StartTagToken || tt == html.SelfClosingTagToken {
			n.tok = z.Token()
			n.tag = true
			// <noscript> content is markup when scripting is off, so fallback
			// <link> tags inside it are elements, not raw text.
			if tt == html.StartTagToken && n.tok.Data == "noscript" {
				z.NextIsNotRawText()
			}
		}
		d.nodes = append(d.nodes, n)
	}
}

// Load reads and parses the document at path.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- operator-supplied document path
	if err != nil {
		return nil, err
	}
	d, err := Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return d, nil
}

// Source returns the document bytes exactly as they were read.
func (d *Document) Source() []byte {
	return d.source
}

// Find returns, in document order, every start or self-closing tag for which match is true.
func (d *Document) Find(match func(*Element) bool) []*Element {
	var out []*Element
	for _, n := range d.nodes {
		if !n.tag {
			continue
		}
		if e := (&Element{n: n}); match(e) {
			out = append(out, e)
		}
	}
	return out
}

// Tag returns the lower-case tag name.
func (e *Element) Tag() string {
	return e.n.tok.Data
}

// Attr returns the unescaped value of the named attribute.
func (e *Element) Attr(key string) (string, bool) {
	for _, a := range e.n.tok.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// SetAttr sets the named attribute, appending it if absent. The element is
// re-rendered on output; setting an attribute to its current value is a no-op.
func (e *Element) SetAttr(key, val string) {
	for i, a := range e.n.tok.Attr {
		if a.Namespace == "" && a.Key == key {
			if a.Val == val {
				return
			}
			e.n.tok.Attr[i].Val = val
			e.n.dirty = true
			return
		}
	}
	e.n.tok.Attr = append(e.n.tok.Attr, html.Attribute{Key: key, Val: val})
	e.n.dirty = true
}

// WriteTo serializes the document. Unmodified tokens are written exactly as read.
func (d *Document) WriteTo(w io.Writer) (int64, error) {
	var total int64
	for _, n := range d.nodes {
		b := n.raw
		if n.dirty {
			b = []byte(n.tok.String())
		}
		k, err := w.Write(b)
		total += int64(k)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// Bytes returns the serialized document.
func (d *Document) Bytes() []byte {
	var buf bytes.Buffer
	_, _ = d.WriteTo(&buf)
	return buf.Bytes()
}

// Save overwrites path with the serialized document.
func (d *Document) Save(path string) error {
	return os.WriteFile(path, d.Bytes(), 0644) // #nosec G306 -- web document, world-readable
}
