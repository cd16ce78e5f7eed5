// Package landing finds where a marker payload ended up in rendered markup.
package landing

import (
	"strings"

	"github.com/lcalzada-xor/xsslab/pkg/models"
)

// Marker is the inert payload rendered to locate an output's landing.
const Marker = "xsslab0canary"

// window bounds how much markup around the marker is examined.
const window = 500

// Payload returns the marker payload for ctx. URL outputs validate their
// input, so they get the marker inside a well formed URL.
func Payload(ctx models.InjectionContext) string {
	if ctx == models.ContextURL {
		return "https://xsslab.test/" + Marker
	}
	return Marker
}

// Logger is the subset of the logger DetectVerbose reports to.
type Logger interface {
	VV(string, ...interface{})
	Detail(string, ...interface{})
}

// Detect analyzes the markup around the first occurrence of marker.
func Detect(source, marker string) models.Landing {
	landing, _ := detect(source, marker)
	return landing
}

// DetectVerbose is like Detect but logs the snippet and the reason.
func DetectVerbose(source, marker string, log Logger) models.Landing {
	landing, reason := detect(source, marker)
	index := strings.Index(source, marker)
	if index != -1 {
		snippet := source[max(0, index-50):min(len(source), index+len(marker)+50)]
		if len(snippet) > 100 {
			snippet = snippet[:100] + "..."
		}
		log.VV("Snippet: %s", snippet)
	}
	log.Detail("Landing: %s", landing)
	log.Detail("Reason: %s", reason)
	return landing
}

func detect(source, marker string) (models.Landing, string) {
	index := strings.Index(source, marker)
	if index == -1 || marker == "" {
		return models.LandingNone, "marker not found"
	}

	start := max(0, index-window)
	end := min(len(source), index+len(marker)+window)
	context := source[start:end]

	// Checked in order of specificity
	if isInComment(context, marker) {
		return models.LandingComment, "inside HTML comment"
	}
	if isInTemplateLiteral(context, marker) {
		return models.LandingTemplateLiteral, "inside JavaScript template literal"
	}
	if isJS, landing := analyzeJavaScript(context, marker); isJS {
		switch landing {
		case models.LandingJSSingleQuote:
			return landing, "inside single-quoted JavaScript string"
		case models.LandingJSDoubleQuote:
			return landing, "inside double-quoted JavaScript string"
		default:
			return landing, "inside raw JavaScript code"
		}
	}
	if isInCSS(context, marker) {
		return models.LandingCSS, "inside CSS style block or attribute"
	}
	if isInURL(context, marker) {
		return models.LandingURL, "inside URL attribute (href, src, etc.)"
	}
	if isInRCDATA(context, marker) {
		return models.LandingRCDATA, "inside RCDATA element (title, textarea)"
	}
	if isInAttribute(context, marker) {
		return models.LandingAttribute, "inside HTML attribute value"
	}
	return models.LandingText, "HTML text content"
}
