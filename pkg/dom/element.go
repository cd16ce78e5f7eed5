package dom

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Text is a payload that should be inserted as a DOM text node rather than
// parsed.
type Text struct {
	Data string
}

func (t Text) String() string {
	return t.Data
}

// Element is a node of a Document. Text nodes are Elements too, which keeps
// the append surface uniform.
type Element struct {
	doc  *Document
	node *html.Node
}

// Node returns the underlying tree node.
func (e *Element) Node() *html.Node {
	return e.node
}

// Document returns the owner document.
func (e *Element) Document() *Document {
	return e.doc
}

// TagName returns the lower-case tag name, or "" for non-elements.
func (e *Element) TagName() string {
	if e.node.Type != html.ElementNode {
		return ""
	}
	return e.node.Data
}

// IsConnected reports whether the element is part of the document tree.
func (e *Element) IsConnected() bool {
	return e.doc.isConnected(e.node)
}

// AppendChild moves child under e and runs insertion steps when e is
// connected.
func (e *Element) AppendChild(child *Element) {
	e.AppendNode(child.node)
}

// AppendNode is AppendChild for a raw tree node.
func (e *Element) AppendNode(n *html.Node) {
	detach(n)
	e.node.AppendChild(n)
	e.doc.NotifyInserted(n)
}

// Remove detaches e from its parent.
func (e *Element) Remove() {
	detach(e.node)
	e.doc.forget([]*html.Node{e.node})
}

// Clear removes every child.
func (e *Element) Clear() {
	var removed []*html.Node
	for c := e.node.FirstChild; c != nil; c = e.node.FirstChild {
		e.node.RemoveChild(c)
		removed = append(removed, c)
	}
	e.doc.forget(removed)
}

// Children returns the child nodes.
func (e *Element) Children() []*Element {
	var out []*Element
	for c := e.node.FirstChild; c != nil; c = c.NextSibling {
		out = append(out, e.doc.wrapElement(c))
	}
	return out
}

// TextContent concatenates every descendant text node.
func (e *Element) TextContent() string {
	if e.node.Type == html.TextNode {
		return e.node.Data
	}
	var sb strings.Builder
	walk(e.node, func(n *html.Node) bool {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		return true
	})
	return sb.String()
}

// SetTextContent replaces the children with a single text node. Markup in s
// is never parsed.
func (e *Element) SetTextContent(s string) {
	if e.node.Type == html.TextNode {
		e.node.Data = s
		return
	}
	e.Clear()
	if s != "" {
		e.node.AppendChild(&html.Node{Type: html.TextNode, Data: s})
	}
	// a connected script that never ran starts when it gets text
	if e.node.DataAtom == atom.Script && e.IsConnected() {
		e.doc.runScriptElement(e.node)
	}
}

// InnerText approximates the rendered text: script and style contents are
// skipped and <br> becomes a newline.
func (e *Element) InnerText() string {
	var sb strings.Builder
	var visit func(n *html.Node)
	visit = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			sb.WriteString(n.Data)
			return
		case html.ElementNode:
			switch n.DataAtom {
			case atom.Script, atom.Style, atom.Template:
				return
			case atom.Br:
				sb.WriteString("\n")
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			visit(c)
		}
	}
	for c := e.node.FirstChild; c != nil; c = c.NextSibling {
		visit(c)
	}
	return sb.String()
}

// SetInnerText replaces the children with text, turning newlines into <br>.
func (e *Element) SetInnerText(s string) {
	e.Clear()
	for i, line := range strings.Split(s, "\n") {
		if i > 0 {
			e.node.AppendChild(&html.Node{Type: html.ElementNode, Data: "br", DataAtom: atom.Br})
		}
		if line != "" {
			e.node.AppendChild(&html.Node{Type: html.TextNode, Data: line})
		}
	}
}

// InnerHTML serializes the children.
func (e *Element) InnerHTML() string {
	var sb strings.Builder
	raw := isRawText(e.node)
	for c := e.node.FirstChild; c != nil; c = c.NextSibling {
		if raw && c.Type == html.TextNode {
			sb.WriteString(c.Data)
			continue
		}
		_ = html.Render(&sb, c)
	}
	return sb.String()
}

func isRawText(n *html.Node) bool {
	if n.Type != html.ElementNode || n.Namespace != "" {
		return false
	}
	switch n.DataAtom {
	case atom.Script, atom.Style, atom.Iframe, atom.Noembed, atom.Noframes, atom.Noscript, atom.Plaintext, atom.Xmp:
		return true
	}
	return false
}

// OuterHTML serializes the element itself.
func (e *Element) OuterHTML() string {
	var sb strings.Builder
	_ = html.Render(&sb, e.node)
	return sb.String()
}

// SetInnerHTML parses s as a fragment in e's context and replaces the
// children. Scripts created this way are marked as already started and never
// run; every other insertion side effect (event handlers, frames) happens if e
// is connected.
func (e *Element) SetInnerHTML(s string) {
	nodes := e.doc.parseFragment(s, e.node)
	for _, n := range nodes {
		walk(n, func(c *html.Node) bool {
			if c.Type == html.ElementNode && c.DataAtom == atom.Script {
				e.doc.started[c] = true
			}
			return true
		})
	}

	e.Clear()
	for _, n := range nodes {
		e.node.AppendChild(n)
	}
	e.doc.NotifyInserted(nodes...)
	if e.node.DataAtom == atom.Script && e.IsConnected() {
		e.doc.runScriptElement(e.node)
	}
}

// Attribute returns the value of an attribute.
func (e *Element) Attribute(name string) (string, bool) {
	return attr(e.node, name)
}

// SetAttribute sets an attribute. Changing the source of a connected resource
// element reloads it.
func (e *Element) SetAttribute(name, value string) {
	setAttr(e.node, name, value)
	switch strings.ToLower(name) {
	case "src", "srcdoc":
		if e.IsConnected() {
			e.doc.loadResource(e.node)
		}
	}
}

// RemoveAttribute deletes an attribute.
func (e *Element) RemoveAttribute(name string) {
	removeAttr(e.node, name)
}

// Click dispatches a click and follows links.
func (e *Element) Click() {
	e.doc.activate(e.node)
}

func detach(n *html.Node) {
	if n.Parent != nil {
		n.Parent.RemoveChild(n)
	}
}

func (d *Document) isConnected(n *html.Node) bool {
	for p := n; p != nil; p = p.Parent {
		if p == d.root {
			return true
		}
	}
	return false
}

func (d *Document) parseFragment(s string, context *html.Node) []*html.Node {
	ctx := context
	if ctx == nil || ctx.Type != html.ElementNode {
		ctx = d.body
	}
	nodes, err := html.ParseFragment(strings.NewReader(s), ctx)
	if err != nil {
		d.logConsole("parse error: %v", err)
		return nil
	}
	return nodes
}
