package indicator

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

type htmlDocument struct {
	doc *goquery.Document
}

// NewHTMLDocument adapts a goquery document to Document.
func NewHTMLDocument(doc *goquery.Document) Document {
	return &htmlDocument{doc: doc}
}

// ParseHTML parses r as HTML.
func ParseHTML(r io.Reader) (Document, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return NewHTMLDocument(doc), nil
}

func (d *htmlDocument) Select(selector string) []Node {
	return wrapSelection(d.doc.Find(selector))
}

func (d *htmlDocument) SelectFirst(selector string) (Node, bool) {
	return first(d.doc.Find(selector))
}

func (d *htmlDocument) Nodes() []Node {
	return wrapSelection(d.doc.Find("*"))
}

type htmlNode struct {
	sel *goquery.Selection
}

func (n htmlNode) Text() string {
	return collapseSpaces(n.sel.Text())
}

func (n htmlNode) OwnText() string {
	if len(n.sel.Nodes) == 0 {
		return ""
	}
	var b strings.Builder
	for c := n.sel.Nodes[0].FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
			b.WriteByte(' ')
		}
	}
	return collapseSpaces(b.String())
}

func (n htmlNode) Attr(name string) (string, bool) {
	return n.sel.Attr(name)
}

func (n htmlNode) Parent() (Node, bool) {
	return first(n.sel.Parent())
}

func (n htmlNode) Children() []Node {
	return wrapSelection(n.sel.Children())
}

func (n htmlNode) NextSibling() (Node, bool) {
	return first(n.sel.Next())
}

func (n htmlNode) Select(selector string) []Node {
	return wrapSelection(n.sel.Find(selector))
}

func (n htmlNode) SelectFirst(selector string) (Node, bool) {
	return first(n.sel.Find(selector))
}

func wrapSelection(sel *goquery.Selection) []Node {
	nodes := make([]Node, 0, sel.Length())
	sel.Each(func(_ int, s *goquery.Selection) {
		nodes = append(nodes, htmlNode{sel: s})
	})
	return nodes
}

func first(sel *goquery.Selection) (Node, bool) {
	if sel.Length() == 0 {
		return nil, false
	}
	return htmlNode{sel: sel.First()}, true
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
