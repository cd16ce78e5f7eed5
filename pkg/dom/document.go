// Package dom emulates the slice of a browser the XSS lab needs: an HTML
// document tree, a JavaScript runtime, script and event-handler execution,
// timers and child frames.
//
// A Document is single threaded: goja runtimes are not safe for concurrent
// use, so callers serialize access (one document per session or job).
package dom

import (
	"fmt"
	"strings"
	"time"

	"github.com/dop251/goja"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/lcalzada-xor/xsslab/pkg/config"
	"github.com/lcalzada-xor/xsslab/pkg/logger"
	"github.com/lcalzada-xor/xsslab/pkg/probe"
)

const blankDocument = "<!DOCTYPE html><html><head></head><body></body></html>"

// Navigation records a link activation or window.open call that did not run
// script.
type Navigation struct {
	Target string `json:"target"`
	URL    string `json:"url"`
}

type options struct {
	probe         probe.Reporter
	probeName     string
	logger        *logger.Logger
	scriptTimeout time.Duration
	parent        probe.Lookup
	opener        probe.Lookup
	maxFrameDepth int
	url           string
	name          string
}

// Option configures a Document.
type Option func(*options)

// WithProbe installs r as the global probe function (xss by default).
func WithProbe(r probe.Reporter) Option {
	return func(o *options) { o.probe = r }
}

// WithProbeName changes the global name of the probe function.
func WithProbeName(name string) Option {
	return func(o *options) { o.probeName = name }
}

// WithLogger sets the logger used for the emulated console.
func WithLogger(l *logger.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithScriptTimeout bounds every top-level script run. Zero disables it.
func WithScriptTimeout(d time.Duration) Option {
	return func(o *options) { o.scriptTimeout = d }
}

// WithParent makes the document a child frame whose window.parent resolves
// through lookup.
func WithParent(lookup probe.Lookup) Option {
	return func(o *options) { o.parent = lookup }
}

// WithOpener makes the document a child window whose window.opener resolves
// through lookup.
func WithOpener(lookup probe.Lookup) Option {
	return func(o *options) { o.opener = lookup }
}

// WithMaxFrameDepth limits nested child frames.
func WithMaxFrameDepth(n int) Option {
	return func(o *options) { o.maxFrameDepth = n }
}

// WithName sets window.name.
func WithName(name string) Option {
	return func(o *options) { o.name = name }
}

// WithURL sets location.href.
func WithURL(u string) Option {
	return func(o *options) { o.url = u }
}

// Document is an emulated browser document with its own JS runtime.
type Document struct {
	vm   *goja.Runtime
	opts options
	log  *logger.Logger

	root *html.Node
	head *html.Node
	body *html.Node

	// scripts that must never run again (already executed or created by
	// markup assignment)
	started  map[*html.Node]bool
	wrappers map[*html.Node]*goja.Object
	nodes    map[*goja.Object]*html.Node

	timers    []*timer
	nextTimer int
	evalDepth int

	console     []string
	alerts      []string
	navigations []Navigation
	frames      []*Document
	windows     []*Document
	depth       int
	host        *html.Node

	cookies []string
	title   string
}

// New creates a blank document.
func New(opts ...Option) *Document {
	o := options{
		probeName:     config.DefaultProbeGlobalName,
		scriptTimeout: config.DefaultScriptTimeout,
		maxFrameDepth: config.DefaultMaxFrameDepth,
		url:           "http://xsslab.local/",
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = logger.Nop()
	}
	if o.probe == nil && (o.parent != nil || o.opener != nil) {
		// child contexts report to whoever embedded or opened them
		var targets []probe.Target
		if o.parent != nil {
			targets = append(targets, probe.Target{Name: "parent", Lookup: o.parent})
		}
		if o.opener != nil {
			targets = append(targets, probe.Target{Name: "opener", Lookup: o.opener})
		}
		o.probe = probe.NewBridge(o.logger, targets...)
	}

	root, err := html.Parse(strings.NewReader(blankDocument))
	if err != nil {
		// the blank document is a constant
		panic(fmt.Sprintf("dom: parsing blank document: %v", err))
	}

	d := &Document{
		vm:       goja.New(),
		opts:     o,
		log:      o.logger,
		root:     root,
		started:  make(map[*html.Node]bool),
		wrappers: make(map[*html.Node]*goja.Object),
		nodes:    make(map[*goja.Object]*html.Node),
	}
	d.head = findElement(root, atom.Head)
	d.body = findElement(root, atom.Body)
	d.setupGlobals()
	return d
}

// Body returns the body element.
func (d *Document) Body() *Element {
	return d.wrapElement(d.body)
}

// CreateElement creates a detached element owned by this document.
func (d *Document) CreateElement(tag string) *Element {
	tag = strings.ToLower(tag)
	n := &html.Node{
		Type:     html.ElementNode,
		Data:     tag,
		DataAtom: atom.Lookup([]byte(tag)),
	}
	return d.wrapElement(n)
}

// CreateTextNode creates a detached text node.
func (d *Document) CreateTextNode(data string) *Element {
	return d.wrapElement(&html.Node{Type: html.TextNode, Data: data})
}

// GetElementByID finds a connected element by id.
func (d *Document) GetElementByID(id string) *Element {
	var found *html.Node
	walk(d.root, func(n *html.Node) bool {
		if v, ok := attr(n, "id"); ok && v == id && n.Type == html.ElementNode {
			found = n
			return false
		}
		return true
	})
	if found == nil {
		return nil
	}
	return d.wrapElement(found)
}

// Root returns the document node.
func (d *Document) Root() *html.Node {
	return d.root
}

// Wrap returns the Element for a node of this document's tree.
func (d *Document) Wrap(n *html.Node) *Element {
	return d.wrapElement(n)
}

func (d *Document) wrapElement(n *html.Node) *Element {
	if n == nil {
		return nil
	}
	return &Element{doc: d, node: n}
}

// HTML serializes the whole document.
func (d *Document) HTML() string {
	var sb strings.Builder
	_ = html.Render(&sb, d.root)
	return sb.String()
}

// Console returns every console line and uncaught error so far.
func (d *Document) Console() []string {
	return append([]string(nil), d.console...)
}

// Alerts returns the messages passed to alert/confirm/prompt.
func (d *Document) Alerts() []string {
	return append([]string(nil), d.alerts...)
}

// Navigations returns the recorded non-script navigations.
func (d *Document) Navigations() []Navigation {
	return append([]Navigation(nil), d.navigations...)
}

// Frames returns the child frames created so far.
func (d *Document) Frames() []*Document {
	return append([]*Document(nil), d.frames...)
}

// Windows returns the child windows opened by window.open so far.
func (d *Document) Windows() []*Document {
	return append([]*Document(nil), d.windows...)
}

// Set defines a global in the document's runtime.
func (d *Document) Set(name string, value interface{}) error {
	return d.vm.Set(name, value)
}

// Exec runs code as a classic script. Exceptions are logged to the console
// and returned.
func (d *Document) Exec(code string) error {
	return d.runCode("exec", code)
}

func (d *Document) logConsole(format string, args ...interface{}) {
	line := fmt.Sprintf(format, args...)
	d.console = append(d.console, line)
	d.log.VV("console: %s", line)
}

func findElement(n *html.Node, a atom.Atom) *html.Node {
	var found *html.Node
	walk(n, func(c *html.Node) bool {
		if c.Type == html.ElementNode && c.DataAtom == a {
			found = c
			return false
		}
		return true
	})
	return found
}

// walk visits n and its descendants in tree order until visit returns false.
func walk(n *html.Node, visit func(*html.Node) bool) bool {
	if !visit(n) {
		return false
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if !walk(c, visit) {
			return false
		}
	}
	return true
}

// collect returns n and its descendants in tree order.
func collect(n *html.Node) []*html.Node {
	var out []*html.Node
	walk(n, func(c *html.Node) bool {
		out = append(out, c)
		return true
	})
	return out
}

func attr(n *html.Node, key string) (string, bool) {
	if n == nil {
		return "", false
	}
	for _, a := range n.Attr {
		if a.Namespace == "" && strings.EqualFold(a.Key, key) {
			return a.Val, true
		}
	}
	return "", false
}

func setAttr(n *html.Node, key, val string) {
	key = strings.ToLower(key)
	for i, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

func removeAttr(n *html.Node, key string) {
	out := n.Attr[:0]
	for _, a := range n.Attr {
		if a.Namespace == "" && strings.EqualFold(a.Key, key) {
			continue
		}
		out = append(out, a)
	}
	n.Attr = out
}
