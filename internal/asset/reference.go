package asset

import (
	"strings"

	"github.com/eargollo/cachebust/internal/document"
)

// Kind is the kind of tag a reference was found in.
type Kind int

const (
	Script Kind = iota
	Stylesheet
)

func (k Kind) String() string {
	switch k {
	case Script:
		return "script"
	case Stylesheet:
		return "stylesheet"
	default:
		return "unknown"
	}
}

// Reference is a local asset link found in a document.
type Reference struct {
	Kind Kind
	Attr string // "src" or "href"
	Path string // value as written in the document

	el *document.Element
}

// Set rewrites the reference's attribute in the document.
func (r Reference) Set(path string) {
	r.el.SetAttr(r.Attr, path)
}

// IsLocal reports whether path is resolvable against the filesystem, i.e. does
// not start with http:// or https://.
func IsLocal(path string) bool {
	return !strings.HasPrefix(path, "http://") && !strings.HasPrefix(path, "https://")
}

// Collect returns the local references of doc in document order: every
// <script src> and every <link rel="stylesheet" href>.
func Collect(doc *document.Document) []Reference {
	var refs []Reference
	for _, el := range doc.Find(isCandidate) {
		var (
			r  Reference
			ok bool
		)
		switch el.Tag() {
		case "script":
			r, ok = scriptRef(el)
		case "link":
			r, ok = stylesheetRef(el)
		}
		if ok {
			refs = append(refs, r)
		}
	}
	return refs
}

func isCandidate(el *document.Element) bool {
	switch el.Tag() {
	case "script":
		_, ok := el.Attr("src")
		return ok
	case "link":
		_, ok := el.Attr("href")
		return ok
	}
	return false
}

func scriptRef(el *document.Element) (Reference, bool) {
	src, _ := el.Attr("src")
	if !IsLocal(src) {
		return Reference{}, false
	}
	return Reference{Kind: Script, Attr: "src", Path: src, el: el}, true
}

func stylesheetRef(el *document.Element) (Reference, bool) {
	rel, _ := el.Attr("rel")
	if !hasToken(rel, "stylesheet") {
		return Reference{}, false
	}
	href, _ := el.Attr("href")
	if !IsLocal(href) {
		return Reference{}, false
	}
	return Reference{Kind: Stylesheet, Attr: "href", Path: href, el: el}, true
}

// hasToken reports whether the space-separated list contains tok (ASCII case-insensitive).
func hasToken(list, tok string) bool {
	for _, f := range strings.Fields(list) {
		if strings.EqualFold(f, tok) {
			return true
		}
	}
	return false
}
