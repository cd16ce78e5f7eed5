package dom

import (
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/dop251/goja"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const maxTimerRounds = 16

var errScriptTimeout = errors.New("script timeout")

// userEvents are fired by Interact, in this order, on every element that
// declares a handler for them.
var userEvents = []string{
	"mouseover", "mouseenter", "mousemove", "mousedown", "mouseup",
	"pointerover", "pointerenter", "pointerdown", "pointerup",
	"dblclick", "auxclick", "contextmenu",
	"focus", "focusin", "blur", "keydown", "keypress", "keyup",
	"input", "change", "wheel",
}

// NotifyInserted runs the insertion steps for nodes that were just added to
// the tree by any means. Nodes outside the document are ignored.
func (d *Document) NotifyInserted(nodes ...*html.Node) {
	var pending []*html.Node
	for _, n := range nodes {
		if n == nil || !d.isConnected(n) {
			continue
		}
		pending = append(pending, collect(n)...)
	}
	d.ConnectNodes(pending...)
}

// ConnectNodes runs the insertion steps for exactly the given nodes, in
// order, skipping any that are no longer in the document. Callers that move
// existing subtrees use it to avoid re-running steps for old nodes.
func (d *Document) ConnectNodes(nodes ...*html.Node) {
	for _, n := range nodes {
		// an earlier handler may have removed it
		if !d.isConnected(n) {
			continue
		}
		d.connect(n)
	}
}

func (d *Document) connect(n *html.Node) {
	if n.Type != html.ElementNode {
		return
	}
	if n.DataAtom == atom.Script {
		d.runScriptElement(n)
		return
	}

	switch strings.ToLower(n.Data) {
	case "img", "video", "audio", "source", "embed", "input", "iframe", "frame":
		d.loadResource(n)
	case "svg", "style", "object", "body", "frameset", "link":
		d.fire(n, "load")
	case "details":
		if _, ok := attr(n, "open"); ok {
			d.fire(n, "toggle")
		}
	case "animate", "animatetransform", "animatemotion", "set":
		d.fire(n, "begin")
	}

	if _, ok := attr(n, "autofocus"); ok {
		d.fire(n, "focus")
	}
}

// loadResource fetches (in emulation) whatever src/srcdoc points to.
func (d *Document) loadResource(n *html.Node) {
	switch strings.ToLower(n.Data) {
	case "img", "video", "audio", "source", "embed":
		d.loadMedia(n)
	case "input":
		if t, _ := attr(n, "type"); strings.EqualFold(t, "image") {
			d.loadMedia(n)
		}
	case "iframe", "frame":
		d.loadFrame(n)
		d.fire(n, "load")
	}
}

func (d *Document) loadMedia(n *html.Node) {
	src, ok := attr(n, "src")
	if !ok {
		return
	}
	if loadable(src) {
		d.fire(n, "load")
		return
	}
	d.fire(n, "error")
}

// loadable decides whether a resource URL would load. There is no network:
// absolute http(s) and data: URLs succeed, everything else errors.
func loadable(src string) bool {
	u, err := url.Parse(strings.TrimSpace(src))
	if err != nil {
		return false
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		return u.Host != ""
	case "data":
		return true
	}
	return false
}

// javascriptURL extracts the code of a javascript: URL, ignoring case,
// surrounding whitespace and embedded tabs or newlines the way URL parsers do.
func javascriptURL(raw string) (string, bool) {
	s := strings.TrimFunc(raw, func(r rune) bool { return r <= ' ' })
	s = strings.NewReplacer("\t", "", "\n", "", "\r", "").Replace(s)
	const scheme = "javascript:"
	if len(s) < len(scheme) || !strings.EqualFold(s[:len(scheme)], scheme) {
		return "", false
	}
	code := s[len(scheme):]
	if decoded, err := url.PathUnescape(code); err == nil {
		code = decoded
	}
	return code, true
}

func (d *Document) runScriptElement(n *html.Node) {
	if d.started[n] {
		return
	}
	code := childText(n)
	src, hasSrc := attr(n, "src")
	if code == "" && !hasSrc {
		// not started: setting text later still runs it
		return
	}
	d.started[n] = true

	if !isJavaScriptType(n) {
		return
	}
	if hasSrc {
		d.logConsole("blocked external script %q", src)
		return
	}
	_ = d.runCode("inline-script", code)
}

func childText(n *html.Node) string {
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			sb.WriteString(c.Data)
		}
	}
	return sb.String()
}

func isJavaScriptType(n *html.Node) bool {
	t, ok := attr(n, "type")
	if !ok {
		return true
	}
	switch strings.ToLower(strings.TrimSpace(t)) {
	case "", "text/javascript", "application/javascript", "application/ecmascript", "text/ecmascript", "module":
		return true
	}
	return false
}

// runCode runs code as a classic script and logs uncaught errors.
func (d *Document) runCode(name, code string) error {
	_, err := d.eval(func() (goja.Value, error) {
		return d.vm.RunScript(name, code)
	})
	if err != nil {
		d.reportError(err)
	}
	return err
}

// eval runs fn under the script timeout. Nested calls (a handler fired from
// inside a script) share the outermost deadline.
func (d *Document) eval(fn func() (goja.Value, error)) (v goja.Value, err error) {
	if d.evalDepth == 0 && d.opts.scriptTimeout > 0 {
		t := time.AfterFunc(d.opts.scriptTimeout, func() {
			d.vm.Interrupt(errScriptTimeout)
		})
		defer func() {
			t.Stop()
			d.vm.ClearInterrupt()
		}()
	}

	d.evalDepth++
	defer func() {
		d.evalDepth--
		if r := recover(); r != nil {
			err = fmt.Errorf("script panicked: %v", r)
		}
	}()
	return fn()
}

func (d *Document) reportError(err error) {
	var ex *goja.Exception
	if errors.As(err, &ex) {
		d.logConsole("Uncaught %s", ex.Error())
		return
	}
	d.logConsole("Uncaught %v", err)
}

// fire runs the inline on<event> handler of n, if any, with this bound to the
// element.
func (d *Document) fire(n *html.Node, event string) {
	code, ok := attr(n, "on"+event)
	if !ok || strings.TrimSpace(code) == "" {
		return
	}
	this := d.wrap(n)

	_, err := d.eval(func() (goja.Value, error) {
		fnObj, err := d.vm.New(d.vm.Get("Function"), d.vm.ToValue("event"), d.vm.ToValue(code))
		if err != nil {
			return nil, err
		}
		fn, ok := goja.AssertFunction(fnObj)
		if !ok {
			return nil, fmt.Errorf("on%s handler is not callable", event)
		}
		evt := d.vm.NewObject()
		_ = evt.Set("type", event)
		_ = evt.Set("target", this)
		return fn(this, evt)
	})
	if err != nil {
		d.reportError(err)
	}
}

// activate clicks n and follows it when it is a link.
func (d *Document) activate(n *html.Node) {
	d.fire(n, "click")
	if n.Type != html.ElementNode {
		return
	}
	switch strings.ToLower(n.Data) {
	case "a", "area":
	default:
		return
	}

	href, ok := attr(n, "href")
	if !ok {
		return
	}
	target, _ := attr(n, "target")
	d.navigate(href, target)
}

// Interact simulates a curious user on every connected element under e:
// pointer, keyboard and focus handlers fire, then the element is clicked.
func (d *Document) Interact(e *Element) {
	for _, n := range collect(e.node) {
		if n.Type != html.ElementNode || !d.isConnected(n) {
			continue
		}
		for _, ev := range userEvents {
			d.fire(n, ev)
		}
		d.activate(n)
	}
}

type timer struct {
	id        int
	fn        goja.Callable
	code      string
	args      []goja.Value
	delay     int64
	repeat    bool
	cancelled bool
}

func (d *Document) addTimer(call goja.FunctionCall, repeat bool) goja.Value {
	d.nextTimer++
	t := &timer{id: d.nextTimer, repeat: repeat}

	handler := call.Argument(0)
	if fn, ok := goja.AssertFunction(handler); ok {
		t.fn = fn
	} else {
		t.code = handler.String()
	}
	if len(call.Arguments) > 1 {
		t.delay = call.Argument(1).ToInteger()
	}
	if len(call.Arguments) > 2 {
		t.args = append([]goja.Value(nil), call.Arguments[2:]...)
	}

	d.timers = append(d.timers, t)
	return d.vm.ToValue(t.id)
}

func (d *Document) clearTimer(id int64) {
	for _, t := range d.timers {
		if int64(t.id) == id {
			t.cancelled = true
		}
	}
}

func (d *Document) runTimer(t *timer) {
	if t.fn == nil {
		_ = d.runCode("timer", t.code)
		return
	}
	fn, args := t.fn, t.args
	if _, err := d.eval(func() (goja.Value, error) {
		return fn(goja.Undefined(), args...)
	}); err != nil {
		d.reportError(err)
	}
}

// PendingTimers counts queued timers, child frames included.
func (d *Document) PendingTimers() int {
	n := 0
	for _, t := range d.timers {
		if !t.cancelled {
			n++
		}
	}
	for _, f := range d.children() {
		n += f.PendingTimers()
	}
	return n
}

// RunTimers fires queued timers in delay order, including timers queued by
// timers, up to a fixed number of rounds. Rendering never calls it, so
// timers from earlier payloads outlive later renders.
func (d *Document) RunTimers() int {
	ran := 0
	for round := 0; round < maxTimerRounds && len(d.timers) > 0; round++ {
		batch := d.timers
		d.timers = nil
		sort.SliceStable(batch, func(i, j int) bool { return batch[i].delay < batch[j].delay })

		for _, t := range batch {
			if t.cancelled {
				continue
			}
			ran++
			d.runTimer(t)
			if t.repeat && !t.cancelled {
				d.timers = append(d.timers, t)
			}
		}
	}
	for _, f := range d.children() {
		ran += f.RunTimers()
	}
	return ran
}
