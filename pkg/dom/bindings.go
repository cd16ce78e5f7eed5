package dom

import (
	"strings"

	"github.com/dop251/goja"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/lcalzada-xor/xsslab/pkg/probe"
)

// reflected attributes exposed as element properties
var reflected = map[string]string{
	"id":        "id",
	"src":       "src",
	"href":      "href",
	"title":     "title",
	"name":      "name",
	"type":      "type",
	"value":     "value",
	"className": "class",
	"srcdoc":    "srcdoc",
	"target":    "target",
}

func (d *Document) setupGlobals() {
	vm := d.vm
	global := vm.GlobalObject()

	_ = global.Set("window", global)
	_ = global.Set("self", global)
	_ = global.Set("top", global)
	_ = global.Set("name", d.opts.name)

	if d.opts.parent != nil {
		_ = global.Set("parent", d.remoteWindow(d.opts.parent))
	} else {
		_ = global.Set("parent", global)
	}
	if d.opts.opener != nil {
		_ = global.Set("opener", d.remoteWindow(d.opts.opener))
	} else {
		_ = global.Set("opener", goja.Null())
	}

	if d.opts.probe != nil {
		reporter := d.opts.probe
		_ = global.Set(d.opts.probeName, func(call goja.FunctionCall) goja.Value {
			reporter.Trigger(probeMessage(call))
			return goja.Undefined()
		})
	}

	_ = global.Set("document", d.documentObject())
	_ = global.Set("console", d.consoleObject())
	_ = global.Set("location", d.locationObject())

	_ = global.Set("alert", func(call goja.FunctionCall) goja.Value {
		d.alerts = append(d.alerts, call.Argument(0).String())
		return goja.Undefined()
	})
	_ = global.Set("confirm", func(call goja.FunctionCall) goja.Value {
		d.alerts = append(d.alerts, call.Argument(0).String())
		return vm.ToValue(false)
	})
	_ = global.Set("prompt", func(call goja.FunctionCall) goja.Value {
		d.alerts = append(d.alerts, call.Argument(0).String())
		return goja.Null()
	})

	_ = global.Set("setTimeout", func(call goja.FunctionCall) goja.Value {
		return d.addTimer(call, false)
	})
	_ = global.Set("setInterval", func(call goja.FunctionCall) goja.Value {
		return d.addTimer(call, true)
	})
	cancel := func(call goja.FunctionCall) goja.Value {
		d.clearTimer(call.Argument(0).ToInteger())
		return goja.Undefined()
	}
	_ = global.Set("clearTimeout", cancel)
	_ = global.Set("clearInterval", cancel)

	_ = global.Set("open", func(call goja.FunctionCall) goja.Value {
		target := ""
		if len(call.Arguments) > 1 {
			target = call.Argument(1).String()
		}
		if target != "" && !opensWindow(target) {
			d.navigate(call.Argument(0).String(), "")
			return goja.Null()
		}
		return d.openWindow(call.Argument(0).String(), target)
	})
}

func probeMessage(call goja.FunctionCall) string {
	arg := call.Argument(0)
	if goja.IsUndefined(arg) || goja.IsNull(arg) {
		return ""
	}
	return arg.String()
}

// remoteWindow is the view a child context gets of a related window: only
// the probe is reachable, and reaching it may throw.
func (d *Document) remoteWindow(lookup probe.Lookup) *goja.Object {
	obj := d.vm.NewObject()
	_ = obj.Set(d.opts.probeName, func(call goja.FunctionCall) goja.Value {
		r, err := lookup()
		if err == nil && r == nil {
			err = probe.ErrNoTarget
		}
		if err != nil {
			panic(d.vm.NewGoError(err))
		}
		r.Trigger(probeMessage(call))
		return goja.Undefined()
	})
	return obj
}

func (d *Document) documentObject() *goja.Object {
	vm := d.vm
	doc := vm.NewObject()

	d.accessor(doc, "body", func() goja.Value { return d.wrap(d.body) }, nil)
	d.accessor(doc, "head", func() goja.Value { return d.wrap(d.head) }, nil)
	d.accessor(doc, "documentElement", func() goja.Value {
		return d.wrap(findElement(d.root, atom.Html))
	}, nil)
	d.accessor(doc, "cookie", func() goja.Value {
		return vm.ToValue(strings.Join(d.cookies, "; "))
	}, func(v goja.Value) {
		d.setCookie(v.String())
	})
	d.accessor(doc, "title", func() goja.Value {
		return vm.ToValue(d.title)
	}, func(v goja.Value) {
		d.title = v.String()
	})

	_ = doc.Set("createElement", func(call goja.FunctionCall) goja.Value {
		return d.wrap(d.CreateElement(call.Argument(0).String()).node)
	})
	_ = doc.Set("createTextNode", func(call goja.FunctionCall) goja.Value {
		return d.wrap(d.CreateTextNode(call.Argument(0).String()).node)
	})
	_ = doc.Set("getElementById", func(call goja.FunctionCall) goja.Value {
		el := d.GetElementByID(call.Argument(0).String())
		if el == nil {
			return goja.Null()
		}
		return d.wrap(el.node)
	})
	_ = doc.Set("write", func(call goja.FunctionCall) goja.Value {
		var sb strings.Builder
		for _, a := range call.Arguments {
			sb.WriteString(a.String())
		}
		d.write(sb.String())
		return goja.Undefined()
	})
	return doc
}

// setCookie keeps the name=value part of a Set-Cookie style string.
func (d *Document) setCookie(raw string) {
	pair := strings.TrimSpace(strings.SplitN(raw, ";", 2)[0])
	if pair == "" {
		return
	}
	name := strings.SplitN(pair, "=", 2)[0]
	for i, c := range d.cookies {
		if strings.SplitN(c, "=", 2)[0] == name {
			d.cookies[i] = pair
			return
		}
	}
	d.cookies = append(d.cookies, pair)
}

// write appends markup to the body. Unlike innerHTML, scripts written this
// way run.
func (d *Document) write(markup string) {
	nodes := d.parseFragment(markup, d.body)
	for _, n := range nodes {
		d.body.AppendChild(n)
	}
	d.NotifyInserted(nodes...)
}

func (d *Document) consoleObject() *goja.Object {
	console := d.vm.NewObject()
	log := func(prefix string) func(goja.FunctionCall) goja.Value {
		return func(call goja.FunctionCall) goja.Value {
			parts := make([]string, 0, len(call.Arguments))
			for _, a := range call.Arguments {
				parts = append(parts, a.String())
			}
			d.logConsole("%s%s", prefix, strings.Join(parts, " "))
			return goja.Undefined()
		}
	}
	_ = console.Set("log", log(""))
	_ = console.Set("info", log(""))
	_ = console.Set("warn", log("warning: "))
	_ = console.Set("error", log("error: "))
	return console
}

func (d *Document) locationObject() *goja.Object {
	loc := d.vm.NewObject()
	d.accessor(loc, "href", func() goja.Value {
		return d.vm.ToValue(d.opts.url)
	}, func(v goja.Value) {
		d.navigate(v.String(), "")
	})
	_ = loc.Set("toString", func(goja.FunctionCall) goja.Value {
		return d.vm.ToValue(d.opts.url)
	})
	return loc
}

// navigate follows href. A named target other than the current browsing
// context opens (or reuses) a child window; otherwise javascript: URLs run in
// place and everything else is recorded.
func (d *Document) navigate(href, target string) {
	if opensWindow(target) {
		d.openWindow(href, target)
		return
	}
	if code, ok := javascriptURL(href); ok {
		_ = d.runCode("javascript-url", code)
		return
	}
	d.navigations = append(d.navigations, Navigation{Target: target, URL: href})
}

// accessor defines a property backed by Go functions. A nil set makes it
// read-only (assignments are ignored).
func (d *Document) accessor(obj *goja.Object, name string, get func() goja.Value, set func(goja.Value)) {
	getter := d.vm.ToValue(func(goja.FunctionCall) goja.Value { return get() })
	setter := d.vm.ToValue(func(call goja.FunctionCall) goja.Value {
		if set != nil {
			set(call.Argument(0))
		}
		return goja.Undefined()
	})
	_ = obj.DefineAccessorProperty(name, getter, setter, goja.FLAG_TRUE, goja.FLAG_TRUE)
}

// wrap returns the JS object for n, creating it once per node so identity
// comparisons in scripts hold.
func (d *Document) wrap(n *html.Node) goja.Value {
	if n == nil {
		return goja.Null()
	}
	if obj, ok := d.wrappers[n]; ok {
		return obj
	}

	vm := d.vm
	el := d.wrapElement(n)
	obj := vm.NewObject()
	d.wrappers[n] = obj
	d.nodes[obj] = n

	d.accessor(obj, "tagName", func() goja.Value {
		return vm.ToValue(strings.ToUpper(el.TagName()))
	}, nil)
	d.accessor(obj, "nodeName", func() goja.Value {
		if n.Type == html.TextNode {
			return vm.ToValue("#text")
		}
		return vm.ToValue(strings.ToUpper(el.TagName()))
	}, nil)
	d.accessor(obj, "isConnected", func() goja.Value {
		return vm.ToValue(el.IsConnected())
	}, nil)
	d.accessor(obj, "parentNode", func() goja.Value {
		return d.wrap(n.Parent)
	}, nil)
	d.accessor(obj, "firstChild", func() goja.Value {
		return d.wrap(n.FirstChild)
	}, nil)
	d.accessor(obj, "textContent", func() goja.Value {
		return vm.ToValue(el.TextContent())
	}, func(v goja.Value) {
		el.SetTextContent(v.String())
	})
	d.accessor(obj, "innerText", func() goja.Value {
		return vm.ToValue(el.InnerText())
	}, func(v goja.Value) {
		el.SetInnerText(v.String())
	})
	d.accessor(obj, "innerHTML", func() goja.Value {
		return vm.ToValue(el.InnerHTML())
	}, func(v goja.Value) {
		el.SetInnerHTML(v.String())
	})
	d.accessor(obj, "outerHTML", func() goja.Value {
		return vm.ToValue(el.OuterHTML())
	}, nil)

	for prop, name := range reflected {
		name := name
		d.accessor(obj, prop, func() goja.Value {
			v, _ := el.Attribute(name)
			return vm.ToValue(v)
		}, func(v goja.Value) {
			el.SetAttribute(name, v.String())
		})
	}

	_ = obj.Set("getAttribute", func(call goja.FunctionCall) goja.Value {
		v, ok := el.Attribute(call.Argument(0).String())
		if !ok {
			return goja.Null()
		}
		return vm.ToValue(v)
	})
	_ = obj.Set("setAttribute", func(call goja.FunctionCall) goja.Value {
		el.SetAttribute(call.Argument(0).String(), call.Argument(1).String())
		return goja.Undefined()
	})
	_ = obj.Set("removeAttribute", func(call goja.FunctionCall) goja.Value {
		el.RemoveAttribute(call.Argument(0).String())
		return goja.Undefined()
	})
	_ = obj.Set("appendChild", func(call goja.FunctionCall) goja.Value {
		child := d.nodeOf(call.Argument(0))
		if child == nil {
			panic(vm.NewTypeError("appendChild: argument is not a node"))
		}
		el.AppendNode(child)
		return call.Argument(0)
	})
	_ = obj.Set("remove", func(goja.FunctionCall) goja.Value {
		el.Remove()
		return goja.Undefined()
	})
	_ = obj.Set("click", func(goja.FunctionCall) goja.Value {
		el.Click()
		return goja.Undefined()
	})
	return obj
}

func (d *Document) nodeOf(v goja.Value) *html.Node {
	obj, ok := v.(*goja.Object)
	if !ok {
		return nil
	}
	return d.nodes[obj]
}
