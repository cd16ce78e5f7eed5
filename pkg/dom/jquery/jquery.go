// Package jquery is a small jQuery look-alike over goquery, bound to an
// emulated document. Manipulations behave like jQuery's: inserted markup is
// parsed and its scripts run, unlike a plain innerHTML assignment.
package jquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/lcalzada-xor/xsslab/pkg/dom"
)

// Selection is a set of nodes of one document.
type Selection struct {
	doc *dom.Document
	sel *goquery.Selection
}

// Wrap selects a single element, like $(element).
func Wrap(el *dom.Element) *Selection {
	return &Selection{
		doc: el.Document(),
		sel: goquery.NewDocumentFromNode(el.Node()).Selection,
	}
}

// Parse builds detached nodes from markup, like $(html). As in jQuery, only a
// string that starts with a tag is markup: anything else would be a selector,
// which yields an empty selection here. Text after the last '>' is dropped.
func Parse(doc *dom.Document, markup string) *Selection {
	markup = strings.TrimLeft(markup, " \t\n\r\f")
	end := strings.LastIndexByte(markup, '>')
	if !strings.HasPrefix(markup, "<") || end < 0 {
		return &Selection{doc: doc, sel: &goquery.Selection{}}
	}
	markup = markup[:end+1]

	nodes, err := html.ParseFragment(strings.NewReader(markup), doc.Body().Node())
	if err != nil || len(nodes) == 0 {
		return &Selection{doc: doc, sel: &goquery.Selection{}}
	}
	sel := goquery.NewDocumentFromNode(nodes[0]).Selection
	return &Selection{doc: doc, sel: sel.AddNodes(nodes[1:]...)}
}

// Document returns the document the selection belongs to.
func (s *Selection) Document() *dom.Document {
	return s.doc
}

// Children selects the element children of every selected node.
func (s *Selection) Children() *Selection {
	return &Selection{doc: s.doc, sel: s.sel.Children()}
}

// Nodes returns the selected nodes.
func (s *Selection) Nodes() []*html.Node {
	return s.sel.Nodes
}

// Len is the number of selected nodes.
func (s *Selection) Len() int {
	return s.sel.Length()
}

// Text returns the combined text of the selection.
func (s *Selection) Text() string {
	return s.sel.Text()
}

// SetText replaces the contents with text. Markup is never parsed.
func (s *Selection) SetText(text string) *Selection {
	return s.mutate(func() { s.sel.SetText(text) })
}

// Html returns the inner markup of the first node.
func (s *Selection) Html() string {
	out, err := s.sel.Html()
	if err != nil {
		return ""
	}
	return out
}

// SetHtml replaces the contents with parsed markup.
func (s *Selection) SetHtml(markup string) *Selection {
	return s.mutate(func() { s.sel.SetHtml(markup) })
}

// Append parses markup and adds it as last child.
func (s *Selection) Append(markup string) *Selection {
	return s.mutate(func() { s.sel.AppendHtml(markup) })
}

// AppendSelection moves other under every selected node.
func (s *Selection) AppendSelection(other *Selection) *Selection {
	return s.mutate(func() { s.sel.AppendSelection(other.sel) })
}

// Prepend parses markup and adds it as first child.
func (s *Selection) Prepend(markup string) *Selection {
	return s.mutate(func() { s.sel.PrependHtml(markup) })
}

// Before parses markup and inserts it before the selection.
func (s *Selection) Before(markup string) *Selection {
	return s.mutate(func() { s.sel.BeforeHtml(markup) })
}

// After parses markup and inserts it after the selection.
func (s *Selection) After(markup string) *Selection {
	return s.mutate(func() { s.sel.AfterHtml(markup) })
}

// Wrap surrounds every selected node with the structure in markup.
func (s *Selection) Wrap(markup string) *Selection {
	return s.mutate(func() { s.sel.WrapHtml(markup) })
}

// Attr returns an attribute of the first node.
func (s *Selection) Attr(name string) (string, bool) {
	return s.sel.Attr(name)
}

// SetAttr sets an attribute on every node.
func (s *Selection) SetAttr(name, value string) *Selection {
	for _, n := range s.sel.Nodes {
		s.doc.Wrap(n).SetAttribute(name, value)
	}
	return s
}

// mutate runs fn and then the insertion steps for every node fn added to the
// document. Nodes that were only moved are left alone.
func (s *Selection) mutate(fn func()) *Selection {
	root := s.doc.Root()
	seen := make(map[*html.Node]bool)
	walk(root, func(n *html.Node) { seen[n] = true })

	fn()

	var added []*html.Node
	walk(root, func(n *html.Node) {
		if !seen[n] {
			added = append(added, n)
		}
	})
	s.doc.ConnectNodes(added...)
	return s
}

func walk(n *html.Node, visit func(*html.Node)) {
	visit(n)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, visit)
	}
}
