// Package sinks is the library of payload processors and sink functions the
// catalog is assembled from. Every function is registered under a stable key
// equal to its Go name, which is also how Source finds its code.
package sinks

import (
	"encoding/json"
	"fmt"
	"html/template"
	"sort"

	"github.com/lcalzada-xor/xsslab/pkg/dom"
	"github.com/lcalzada-xor/xsslab/pkg/dom/jquery"
)

// Processor transforms the raw payload before it reaches a sink. Processors
// never fail: on bad input they return a safe default.
type Processor func(payload string) any

// SourceProvider turns a processed payload into HTML source that the renderer
// assigns to the container's markup.
type SourceProvider func(value any) string

// DOMInjector writes a processed payload into the target element through DOM
// calls.
type DOMInjector func(target *dom.Element, value any) error

// LibraryInjector writes a processed payload through the jQuery wrapper.
type LibraryInjector func(target *jquery.Selection, value any) error

var processors = map[string]Processor{
	"noop":                     noop,
	"htmlEncode":               htmlEncode,
	"htmlDecode":               htmlDecode,
	"sanitizeStrict":           sanitizeStrict,
	"sanitizeInline":           sanitizeInline,
	"sanitizeRich":             sanitizeRich,
	"urlValidate":              urlValidate,
	"jsonParse":                jsonParse,
	"jsStringify":              jsStringify,
	"jsDoubleQuote":            jsDoubleQuote,
	"jsSingleQuote":            jsSingleQuote,
	"textNode":                 textNode,
	"trustHtml":                trustHtml,
	"trustUrl":                 trustUrl,
	"trustResourceUrl":         trustResourceUrl,
	"trustStyle":               trustStyle,
	"challengeStripTags":       challengeStripTags,
	"challengeNoParentheses":   challengeNoParentheses,
	"challengeTemplateLiteral": challengeTemplateLiteral,
	"challengeEscapeQuotes":    challengeEscapeQuotes,
}

var sourceProviders = map[string]SourceProvider{
	"passThrough":       passThrough,
	"quotedAttribute":   quotedAttribute,
	"unquotedAttribute": unquotedAttribute,
	"styleElement":      styleElement,
}

var domInjectors = map[string]DOMInjector{
	"textContent":               textContent,
	"innerText":                 innerText,
	"innerHtml":                 innerHtml,
	"innerHtmlDetached":         innerHtmlDetached,
	"titleAttribute":            titleAttribute,
	"appendNode":                appendNode,
	"anchorHref":                anchorHref,
	"iframeSrc":                 iframeSrc,
	"styleBlock":                styleBlock,
	"styleAttribute":            styleAttribute,
	"scriptBlock":               scriptBlock,
	"scriptBlockInnerHtml":      scriptBlockInnerHtml,
	"challengeSanitizeReinsert": challengeSanitizeReinsert,
	"challengeTextRoundTrip":    challengeTextRoundTrip,
}

var libraryInjectors = map[string]LibraryInjector{
	"jqText":        jqText,
	"jqHtml":        jqHtml,
	"jqConstruct":   jqConstruct,
	"jqPrepend":     jqPrepend,
	"jqAppend":      jqAppend,
	"jqBefore":      jqBefore,
	"jqAfter":       jqAfter,
	"jqWrap":        jqWrap,
	"jqAttrTitle":   jqAttrTitle,
	"jqAnchorHref":  jqAnchorHref,
	"jqScriptBlock": jqScriptBlock,
}

// technologies tags functions for the filter UI.
var technologies = map[string][]string{
	"htmlEncode":                {"html-encoding"},
	"htmlDecode":                {"html-encoding"},
	"sanitizeStrict":            {"bluemonday", "sanitizer"},
	"sanitizeInline":            {"bluemonday", "sanitizer"},
	"sanitizeRich":              {"bluemonday", "sanitizer"},
	"urlValidate":               {"url-validation"},
	"jsonParse":                 {"json"},
	"jsStringify":               {"json"},
	"trustHtml":                 {"html/template", "trust-bypass"},
	"trustUrl":                  {"html/template", "trust-bypass"},
	"trustResourceUrl":          {"html/template", "trust-bypass"},
	"trustStyle":                {"html/template", "trust-bypass"},
	"passThrough":               {"html-source"},
	"quotedAttribute":           {"html-source", "attribute"},
	"unquotedAttribute":         {"html-source", "attribute"},
	"styleElement":              {"html-source", "style"},
	"textContent":               {"dom", "textContent"},
	"innerText":                 {"dom", "innerText"},
	"innerHtml":                 {"dom", "innerHTML"},
	"innerHtmlDetached":         {"dom", "innerHTML"},
	"titleAttribute":            {"dom", "setAttribute"},
	"appendNode":                {"dom", "createTextNode"},
	"anchorHref":                {"dom", "href"},
	"iframeSrc":                 {"dom", "iframe"},
	"styleBlock":                {"dom", "style"},
	"styleAttribute":            {"dom", "style"},
	"scriptBlock":               {"dom", "script"},
	"scriptBlockInnerHtml":      {"dom", "script", "innerHTML"},
	"challengeSanitizeReinsert": {"dom", "innerHTML", "innerText", "bluemonday"},
	"challengeTextRoundTrip":    {"dom", "innerHTML", "innerText"},
	"jqText":                    {"jquery"},
	"jqHtml":                    {"jquery"},
	"jqConstruct":               {"jquery"},
	"jqPrepend":                 {"jquery"},
	"jqAppend":                  {"jquery"},
	"jqBefore":                  {"jquery"},
	"jqAfter":                   {"jquery"},
	"jqWrap":                    {"jquery"},
	"jqAttrTitle":               {"jquery", "attribute"},
	"jqAnchorHref":              {"jquery", "href"},
	"jqScriptBlock":             {"jquery", "script"},
}

// LookupProcessor returns the processor registered under key.
func LookupProcessor(key string) (Processor, bool) {
	p, ok := processors[key]
	return p, ok
}

// LookupSourceProvider returns the source provider registered under key.
func LookupSourceProvider(key string) (SourceProvider, bool) {
	p, ok := sourceProviders[key]
	return p, ok
}

// LookupDOMInjector returns the DOM injector registered under key.
func LookupDOMInjector(key string) (DOMInjector, bool) {
	i, ok := domInjectors[key]
	return i, ok
}

// LookupLibraryInjector returns the library injector registered under key.
func LookupLibraryInjector(key string) (LibraryInjector, bool) {
	i, ok := libraryInjectors[key]
	return i, ok
}

// Technologies returns the filter tags of a function.
func Technologies(key string) []string {
	return append([]string(nil), technologies[key]...)
}

// Keys lists every registered function key, sorted.
func Keys() []string {
	var keys []string
	for k := range processors {
		keys = append(keys, k)
	}
	for k := range sourceProviders {
		keys = append(keys, k)
	}
	for k := range domInjectors {
		keys = append(keys, k)
	}
	for k := range libraryInjectors {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Stringify renders a processed payload as the string a sink writes.
func Stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case dom.Text:
		return t.Data
	case template.HTML:
		return string(t)
	case template.URL:
		return string(t)
	case template.CSS:
		return string(t)
	case template.JS:
		return string(t)
	case fmt.Stringer:
		return t.String()
	case map[string]any, []any:
		b, err := json.Marshal(t)
		if err != nil {
			return ""
		}
		return string(b)
	default:
		return fmt.Sprint(t)
	}
}
