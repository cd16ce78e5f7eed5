// Package templating provides the template-engine components of the lab.
// Components are compiled with html/template, whose contextual auto-escaping
// plays the part of a framework binding layer, and rendered into a host
// element of an emulated document.
package templating

import (
	"fmt"
	"html/template"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/lcalzada-xor/xsslab/pkg/dom"
	"github.com/lcalzada-xor/xsslab/pkg/sinks"
)

// HostTag is the element every component instance renders into.
const HostTag = "xss-component"

// ComponentType is a compiled component template.
type ComponentType struct {
	Name   string
	Source string

	// plain components see the value as a string, dropping trust markers
	plain bool
	tmpl  *template.Template
}

type binding struct {
	DescriptorID string
	Value        any
}

var funcs = template.FuncMap{
	// sanitize passes trusted HTML and cleans everything else
	"sanitize": func(v any) template.HTML {
		if h, ok := v.(template.HTML); ok {
			return h
		}
		return template.HTML(sinks.RichPolicy().Sanitize(sinks.Stringify(v)))
	},
}

var types = map[string]*ComponentType{}

func register(name, source string, plain bool) {
	types[name] = &ComponentType{
		Name:   name,
		Source: source,
		plain:  plain,
		tmpl:   template.Must(template.New(name).Funcs(funcs).Parse(source)),
	}
}

func init() {
	register("interpolation", `<span>{{.Value}}</span>`, true)
	register("innerHtmlBinding", `<div>{{sanitize .Value}}</div>`, false)
	register("attributeBinding", `<span title="{{.Value}}">hover me</span>`, true)
	register("urlBinding", `<a href="{{.Value}}" target="xss-demo-window">click me</a>`, false)
	register("resourceUrlBinding", `<iframe src="{{.Value}}"></iframe>`, false)
	register("styleBinding", `<div style="{{.Value}}">styled</div>`, false)
}

// Lookup returns the component type registered under name.
func Lookup(name string) (*ComponentType, bool) {
	c, ok := types[name]
	return c, ok
}

// Names lists the component types, sorted.
func Names() []string {
	names := make([]string, 0, len(types))
	for name := range types {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Instance is one live component.
type Instance struct {
	ID           string
	Type         *ComponentType
	DescriptorID string

	node      *dom.Element
	destroyed bool
}

// Instantiate renders a fresh instance bound to value and appends it to
// parent. The markup is built on a detached host and inserted in one step, as
// a framework would.
func (c *ComponentType) Instantiate(parent *dom.Element, descriptorID string, value any) (*Instance, error) {
	data := binding{DescriptorID: descriptorID, Value: value}
	if c.plain {
		data.Value = sinks.Stringify(value)
	}

	var sb strings.Builder
	if err := c.tmpl.Execute(&sb, data); err != nil {
		return nil, fmt.Errorf("rendering %s: %w", c.Name, err)
	}

	host := parent.Document().CreateElement(HostTag)
	host.SetAttribute("data-descriptor", descriptorID)
	host.SetInnerHTML(sb.String())
	parent.AppendChild(host)

	return &Instance{
		ID:           uuid.NewString(),
		Type:         c,
		DescriptorID: descriptorID,
		node:         host,
	}, nil
}

// Host returns the element the instance rendered into.
func (i *Instance) Host() *dom.Element {
	return i.node
}

// Destroyed reports whether Destroy ran.
func (i *Instance) Destroyed() bool {
	return i.destroyed
}

// Destroy removes the instance from the document. Calling it again does
// nothing.
func (i *Instance) Destroy() {
	if i == nil || i.destroyed {
		return
	}
	i.node.Remove()
	i.destroyed = true
}
