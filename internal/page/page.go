// Package page reads and writes the JSON blobs a host page embeds for the editor.
//
// The host application places two script elements in the editor page, one
// holding the app settings and one holding the initial document. Both are
// addressed by a fixed element id.
package page

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Well-known element ids.
const (
	DataElementID   = "email-builder-data"
	ConfigElementID = "email-builder-config"
)

// Source looks up the text content of an embedded element by id.
type Source interface {
	Lookup(id string) (text string, ok bool)
}

// Static is a Source backed by a map. A nil Static has no elements.
type Static map[string]string

// Lookup implements Source.
func (s Static) Lookup(id string) (string, bool) {
	v, ok := s[id]
	return v, ok
}

// Document is a Source parsed from an HTML page.
type Document struct {
	doc *goquery.Document
}

// Parse reads an HTML page.
func Parse(r io.Reader) (*Document, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse page: %w", err)
	}
	return &Document{doc: doc}, nil
}

// ParseString is Parse over an in-memory page.
func ParseString(html string) (*Document, error) {
	return Parse(strings.NewReader(html))
}

// Lookup implements Source. Only the first element with the id is considered.
func (d *Document) Lookup(id string) (string, bool) {
	sel := d.doc.Find(`[id="` + id + `"]`).First()
	if sel.Length() == 0 {
		return "", false
	}
	return sel.Text(), true
}
