package sinks

import (
	"regexp"
	"strings"

	"github.com/lcalzada-xor/xsslab/pkg/dom"
)

// single pass, not repeated until stable
var strippedTags = regexp.MustCompile(`(?i)</?(script|img|svg|iframe)\b[^>]*>`)

func challengeStripTags(payload string) any {
	return strippedTags.ReplaceAllString(payload, "")
}

func challengeNoParentheses(payload string) any {
	return strings.NewReplacer("(", "", ")", "").Replace(payload)
}

// challengeTemplateLiteral escapes backticks but not ${}.
func challengeTemplateLiteral(payload string) any {
	return "`" + strings.ReplaceAll(payload, "`", "\\`") + "`"
}

// challengeEscapeQuotes escapes double quotes but not backslashes.
func challengeEscapeQuotes(payload string) any {
	return `"` + strings.ReplaceAll(payload, `"`, `\"`) + `"`
}

// challengeSanitizeReinsert sanitizes, inserts, then reinserts the rendered
// text as markup. Entities decoded by the first pass become live tags.
func challengeSanitizeReinsert(target *dom.Element, value any) error {
	target.SetInnerHTML(strictPolicy.Sanitize(Stringify(value)))
	target.SetInnerHTML(target.InnerText())
	return nil
}

// challengeTextRoundTrip wraps the rendered text in bold by rebuilding the
// markup from innerText.
func challengeTextRoundTrip(target *dom.Element, value any) error {
	target.SetInnerHTML(Stringify(value))
	target.SetInnerHTML("<b>" + target.InnerText() + "</b>")
	return nil
}
