package models

import "fmt"

// InjectionContext names the rendering context a payload ends up in.
type InjectionContext string

const (
	ContextHTMLContent   InjectionContext = "html-content"
	ContextHTMLAttribute InjectionContext = "html-attribute"
	ContextURL           InjectionContext = "url"
	ContextCSS           InjectionContext = "css"
	ContextJavaScript    InjectionContext = "javascript"
	// ContextChallenges groups free-form descriptors that have no single context.
	ContextChallenges InjectionContext = "challenges"
)

// Contexts lists every context in display order.
var Contexts = []InjectionContext{
	ContextHTMLContent,
	ContextHTMLAttribute,
	ContextURL,
	ContextCSS,
	ContextJavaScript,
	ContextChallenges,
}

// HasContext is false for the context-free challenges group.
func (c InjectionContext) HasContext() bool {
	return c != ContextChallenges
}

// Title returns the display name of the context.
func (c InjectionContext) Title() string {
	switch c {
	case ContextHTMLContent:
		return "HTML Content"
	case ContextHTMLAttribute:
		return "HTML Attribute"
	case ContextURL:
		return "URL"
	case ContextCSS:
		return "CSS"
	case ContextJavaScript:
		return "JavaScript"
	case ContextChallenges:
		return "Challenges"
	}
	return string(c)
}

// ParseContext resolves a context from its string form.
func ParseContext(s string) (InjectionContext, error) {
	for _, c := range Contexts {
		if string(c) == s {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown injection context %q", s)
}

// Quality is the curated safety rating of a rendering technique.
type Quality string

const (
	// QualityUnset is never valid in a built catalog.
	QualityUnset        Quality = ""
	QualityRecommended  Quality = "recommended"
	QualityQuestionable Quality = "questionable"
	QualityInsecure     Quality = "insecure"
)

// Valid reports whether q is one of the three ratings.
func (q Quality) Valid() bool {
	switch q {
	case QualityRecommended, QualityQuestionable, QualityInsecure:
		return true
	}
	return false
}

// Title returns the display name of the rating.
func (q Quality) Title() string {
	switch q {
	case QualityRecommended:
		return "Recommended"
	case QualityQuestionable:
		return "Questionable"
	case QualityInsecure:
		return "Insecure"
	}
	return "Unset"
}
