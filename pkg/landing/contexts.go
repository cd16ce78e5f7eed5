package landing

import (
	"regexp"
	"strings"

	"github.com/lcalzada-xor/xsslab/pkg/models"
)

// tagBefore returns the markup from the last unclosed '<' up to the marker,
// or false when the marker is not inside a tag.
func tagBefore(context, marker string) (string, bool) {
	markerIndex := strings.Index(context, marker)
	if markerIndex == -1 {
		return "", false
	}
	before := context[:markerIndex]

	lastTagStart := strings.LastIndex(before, "<")
	lastTagEnd := strings.LastIndex(before, ">")
	if lastTagStart == -1 || lastTagEnd > lastTagStart {
		return "", false
	}
	return before[lastTagStart:], true
}

// insideQuotes reports an odd number of either quote character.
func insideQuotes(s string) bool {
	return strings.Count(s, `"`)%2 == 1 || strings.Count(s, "'")%2 == 1
}

func enclosed(open, marker, close string) *regexp.Regexp {
	return regexp.MustCompile(open + `[\s\S]*?` + regexp.QuoteMeta(marker) + `[\s\S]*?` + close)
}

func isInComment(context, marker string) bool {
	return enclosed(`<!--`, marker, `-->`).MatchString(context)
}

func isInRCDATA(context, marker string) bool {
	return enclosed(`(?i)<title[^>]*>`, marker, `</title>`).MatchString(context) ||
		enclosed(`(?i)<textarea[^>]*>`, marker, `</textarea>`).MatchString(context)
}

var (
	styleAttrPattern = regexp.MustCompile(`(?i)style\s*=\s*["']?[^"'>]*$`)
	urlAttrPattern   = regexp.MustCompile(`(?i)(href|src|action|data|formaction|srcdoc)\s*=\s*["']?[^"'>]*$`)
)

func isInCSS(context, marker string) bool {
	if enclosed(`(?i)<style[^>]*>`, marker, `</style>`).MatchString(context) {
		return true
	}
	tag, ok := tagBefore(context, marker)
	return ok && styleAttrPattern.MatchString(tag) && insideQuotes(tag)
}

func isInURL(context, marker string) bool {
	tag, ok := tagBefore(context, marker)
	return ok && urlAttrPattern.MatchString(tag) && insideQuotes(tag)
}

func isInAttribute(context, marker string) bool {
	tag, ok := tagBefore(context, marker)
	return ok && insideQuotes(tag)
}

func isInTemplateLiteral(context, marker string) bool {
	return regexp.MustCompile("`[^`]*" + regexp.QuoteMeta(marker) + "[^`]*`").MatchString(context)
}

// analyzeJavaScript detects script blocks and inline event handlers.
func analyzeJavaScript(context, marker string) (bool, models.Landing) {
	if enclosed(`(?i)<script[^>]*>`, marker, `</script>`).MatchString(context) {
		return true, quoteState(context, marker)
	}

	tag, ok := tagBefore(context, marker)
	if !ok {
		return false, models.LandingNone
	}
	if strings.HasPrefix(strings.ToLower(lastAttribute(tag[1:])), "on") {
		return true, quoteState(context, marker)
	}
	return false, models.LandingNone
}

// lastAttribute returns the name of the attribute the end of tagContent is in.
func lastAttribute(tagContent string) string {
	var lastAttrName string
	var buffer strings.Builder
	inQuote := false
	var quoteChar rune

	flush := func() {
		if name := strings.TrimSpace(buffer.String()); name != "" {
			lastAttrName = name
		}
		buffer.Reset()
	}

	for _, c := range tagContent {
		if inQuote {
			if c == quoteChar {
				inQuote = false
			}
			continue
		}
		switch c {
		case '"', '\'':
			inQuote = true
			quoteChar = c
		case '=':
			flush()
		case ' ', '\t', '\n', '\r':
			if buffer.Len() > 0 {
				flush()
			}
		default:
			buffer.WriteRune(c)
		}
	}
	return lastAttrName
}

// quoteState looks at the closest quote before the marker. Heuristic: an odd
// count of that quote character means the marker sits inside a string.
func quoteState(context, marker string) models.Landing {
	before := context[:strings.Index(context, marker)]
	if i := strings.LastIndex(before, ">"); i != -1 && strings.Contains(strings.ToLower(before[:i+1]), "<script") {
		before = before[i+1:]
	}

	lastSquote := strings.LastIndex(before, "'")
	lastDquote := strings.LastIndex(before, `"`)
	switch {
	case lastSquote > lastDquote && strings.Count(before, "'")%2 != 0:
		return models.LandingJSSingleQuote
	case lastDquote > lastSquote && strings.Count(before, `"`)%2 != 0:
		return models.LandingJSDoubleQuote
	}
	return models.LandingJSRaw
}
