package sinks

import (
	"github.com/lcalzada-xor/xsslab/pkg/config"
	"github.com/lcalzada-xor/xsslab/pkg/dom"
)

func textContent(target *dom.Element, value any) error {
	target.SetTextContent(Stringify(value))
	return nil
}

func innerText(target *dom.Element, value any) error {
	target.SetInnerText(Stringify(value))
	return nil
}

func innerHtml(target *dom.Element, value any) error {
	target.SetInnerHTML(Stringify(value))
	return nil
}

// innerHtmlDetached parses into an element that is never inserted, then shows
// the serialized result as text.
func innerHtmlDetached(target *dom.Element, value any) error {
	detached := target.Document().CreateElement("div")
	detached.SetInnerHTML(Stringify(value))
	target.SetTextContent(detached.InnerHTML())
	return nil
}

func titleAttribute(target *dom.Element, value any) error {
	span := target.Document().CreateElement("span")
	span.SetAttribute("title", Stringify(value))
	span.SetTextContent("hover me")
	target.AppendChild(span)
	return nil
}

func appendNode(target *dom.Element, value any) error {
	text, ok := value.(dom.Text)
	if !ok {
		text = dom.Text{Data: Stringify(value)}
	}
	target.AppendChild(target.Document().CreateTextNode(text.Data))
	return nil
}

func anchorHref(target *dom.Element, value any) error {
	a := target.Document().CreateElement("a")
	a.SetAttribute("href", Stringify(value))
	a.SetAttribute("target", config.DefaultDemoWindowName)
	a.SetTextContent("click me")
	target.AppendChild(a)
	return nil
}

func iframeSrc(target *dom.Element, value any) error {
	iframe := target.Document().CreateElement("iframe")
	iframe.SetAttribute("src", Stringify(value))
	target.AppendChild(iframe)
	return nil
}

func styleBlock(target *dom.Element, value any) error {
	style := target.Document().CreateElement("style")
	style.SetTextContent(Stringify(value))
	target.AppendChild(style)
	return nil
}

func styleAttribute(target *dom.Element, value any) error {
	div := target.Document().CreateElement("div")
	div.SetAttribute("style", Stringify(value))
	div.SetTextContent("styled")
	target.AppendChild(div)
	return nil
}

// scriptBlock constructs a script element and attaches it, which runs it.
func scriptBlock(target *dom.Element, value any) error {
	script := target.Document().CreateElement("script")
	script.SetTextContent(Stringify(value))
	target.AppendChild(script)
	return nil
}

// scriptBlockInnerHtml writes the same script through markup assignment.
// The parser marks it already started, so it never runs.
func scriptBlockInnerHtml(target *dom.Element, value any) error {
	target.SetInnerHTML("<script>" + Stringify(value) + "</script>")
	return nil
}
