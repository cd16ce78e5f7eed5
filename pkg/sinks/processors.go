package sinks

import (
	"encoding/json"
	"html/template"
	"net/url"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"

	"github.com/lcalzada-xor/xsslab/pkg/dom"
)

var (
	strictPolicy = bluemonday.StrictPolicy()
	inlinePolicy = newInlinePolicy()
	richPolicy   = newRichPolicy()
)

var inlineElements = []string{
	"b", "i", "em", "strong", "u", "s", "small", "mark", "sub", "sup", "code", "span", "br",
}

var blockElements = []string{
	"p", "div", "blockquote", "pre", "ul", "ol", "li", "h1", "h2", "h3", "h4", "h5", "h6", "hr",
}

func newInlinePolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements(inlineElements...)
	return p
}

func newRichPolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements(inlineElements...)
	p.AllowElements(blockElements...)
	p.AllowAttrs("href").OnElements("a")
	p.AllowStandardURLs()
	return p
}

// RichPolicy is the sanitizer used where rich markup is accepted.
func RichPolicy() *bluemonday.Policy {
	return richPolicy
}

func noop(payload string) any {
	return payload
}

func htmlEncode(payload string) any {
	return html.EscapeString(payload)
}

func htmlDecode(payload string) any {
	return html.UnescapeString(payload)
}

func sanitizeStrict(payload string) any {
	return strictPolicy.Sanitize(payload)
}

func sanitizeInline(payload string) any {
	return inlinePolicy.Sanitize(payload)
}

func sanitizeRich(payload string) any {
	return richPolicy.Sanitize(payload)
}

// urlValidate keeps absolute http(s) URLs and rejects everything else.
func urlValidate(payload string) any {
	u, err := url.Parse(payload)
	if err != nil || u.Host == "" {
		return ""
	}
	switch u.Scheme {
	case "http", "https":
		return payload
	}
	return ""
}

func jsonParse(payload string) any {
	var v any
	if err := json.Unmarshal([]byte(payload), &v); err != nil {
		return map[string]any{}
	}
	return v
}

// jsStringify emits a JSON string literal. encoding/json escapes <, > and &,
// so the literal cannot close a script element.
func jsStringify(payload string) any {
	b, err := json.Marshal(payload)
	if err != nil {
		return `""`
	}
	return string(b)
}

func jsDoubleQuote(payload string) any {
	return `"` + payload + `"`
}

func jsSingleQuote(payload string) any {
	return "'" + payload + "'"
}

func textNode(payload string) any {
	return dom.Text{Data: payload}
}

func trustHtml(payload string) any {
	return template.HTML(payload)
}

func trustUrl(payload string) any {
	return template.URL(payload)
}

// html/template has a single URL type; resource URLs share it.
func trustResourceUrl(payload string) any {
	return template.URL(payload)
}

func trustStyle(payload string) any {
	return template.CSS(payload)
}

