package dom

import (
	"strings"

	"github.com/dop251/goja"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/lcalzada-xor/xsslab/pkg/probe"
)

func (d *Document) children() []*Document {
	out := make([]*Document, 0, len(d.frames)+len(d.windows))
	out = append(out, d.frames...)
	return append(out, d.windows...)
}

// selfLookup resolves this document's probe for a child context.
func (d *Document) selfLookup() probe.Lookup {
	if d.opts.probe == nil {
		return probe.Unavailable(probe.ErrNoTarget)
	}
	return probe.Static(d.opts.probe)
}

func (d *Document) childOptions() []Option {
	return []Option{
		WithLogger(d.log),
		WithProbeName(d.opts.probeName),
		WithScriptTimeout(d.opts.scriptTimeout),
		WithMaxFrameDepth(d.opts.maxFrameDepth),
	}
}

func (d *Document) newChild(opts ...Option) *Document {
	if d.depth+1 > d.opts.maxFrameDepth {
		d.logConsole("frame depth limit %d reached", d.opts.maxFrameDepth)
		return nil
	}
	child := New(append(d.childOptions(), opts...)...)
	child.depth = d.depth + 1
	return child
}

// loadFrame gives an iframe its browsing context. srcdoc wins over src;
// javascript: sources run in the child; other URLs are only recorded.
func (d *Document) loadFrame(n *html.Node) {
	sandbox, sandboxed := attr(n, "sandbox")
	tokens := strings.Fields(strings.ToLower(sandbox))
	if sandboxed && !hasToken(tokens, "allow-scripts") {
		return
	}

	parent := d.selfLookup()
	if sandboxed && !hasToken(tokens, "allow-same-origin") {
		parent = probe.Unavailable(probe.ErrCrossOrigin)
	}

	if srcdoc, ok := attr(n, "srcdoc"); ok {
		if child := d.openFrame(n, parent); child != nil {
			child.load(srcdoc)
		}
		return
	}

	src, ok := attr(n, "src")
	if !ok {
		return
	}
	if code, ok := javascriptURL(src); ok {
		if child := d.openFrame(n, parent); child != nil {
			_ = child.runCode("javascript-url", code)
		}
		return
	}
	if src != "" {
		name, _ := attr(n, "name")
		d.navigations = append(d.navigations, Navigation{Target: name, URL: src})
	}
}

func (d *Document) openFrame(host *html.Node, parent probe.Lookup) *Document {
	child := d.newChild(WithParent(parent), WithOpener(probe.Unavailable(probe.ErrNoTarget)))
	if child == nil {
		return nil
	}
	child.host = host
	d.frames = append(d.frames, child)
	return child
}

// forget drops bookkeeping for subtrees that left the document: frames whose
// iframe is gone are discarded with their timers, and the started mark of
// scripts no script can reach again is released.
func (d *Document) forget(removed []*html.Node) {
	for _, n := range removed {
		walk(n, func(c *html.Node) bool {
			if _, held := d.wrappers[c]; !held {
				delete(d.started, c)
			}
			return true
		})
	}

	kept := d.frames[:0]
	for _, f := range d.frames {
		if f.host != nil && d.isConnected(f.host) {
			kept = append(kept, f)
		}
	}
	for i := len(kept); i < len(d.frames); i++ {
		d.frames[i] = nil
	}
	d.frames = kept
}

// opensWindow reports whether a link or window.open target names a browsing
// context other than the current one.
func opensWindow(target string) bool {
	switch strings.ToLower(strings.TrimSpace(target)) {
	case "", "_self", "_parent", "_top":
		return false
	}
	return true
}

// namedWindow returns the child window called name, if one is open.
func (d *Document) namedWindow(name string) *Document {
	if name == "" || strings.EqualFold(name, "_blank") {
		return nil
	}
	for _, w := range d.windows {
		if w.opts.name == name {
			return w
		}
	}
	return nil
}

// openWindow implements window.open and targeted links. javascript: URLs
// run in a window whose opener is this document, reusing the window already
// open under target; other URLs are recorded as navigations.
func (d *Document) openWindow(url, target string) goja.Value {
	code, isScript := javascriptURL(url)
	if !isScript {
		d.navigations = append(d.navigations, Navigation{Target: target, URL: url})
		return goja.Null()
	}

	child := d.namedWindow(target)
	if child == nil {
		name := target
		if strings.EqualFold(name, "_blank") {
			name = ""
		}
		child = d.newChild(WithOpener(d.selfLookup()), WithName(name))
		if child == nil {
			return goja.Null()
		}
		d.windows = append(d.windows, child)
	}
	_ = child.runCode("javascript-url", code)
	return goja.Null()
}

// load replaces the whole document with markup, as a navigation would, and
// runs it.
func (d *Document) load(markup string) {
	root, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		d.logConsole("parse error: %v", err)
		return
	}
	d.root = root
	d.head = findElement(root, atom.Head)
	d.body = findElement(root, atom.Body)
	d.NotifyInserted(root)
}

func hasToken(tokens []string, want string) bool {
	for _, t := range tokens {
		if t == want {
			return true
		}
	}
	return false
}
