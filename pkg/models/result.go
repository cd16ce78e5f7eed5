package models

// Outcome is the observed behaviour of one payload rendered through one
// descriptor.
type Outcome struct {
	Preset         string `json:"preset"`
	Executed       bool   `json:"executed"`
	ProbeCount     int    `json:"probe_count"`
	ProbeMessage   string `json:"probe_message,omitempty"`
	LiveSourceCode string `json:"live_source_code"`
	Error          string `json:"error,omitempty"`
}

// Landing is where a payload ended up in the rendered markup.
type Landing string

const (
	LandingText            Landing = "text"
	LandingAttribute       Landing = "attribute"
	LandingURL             Landing = "url"
	LandingCSS             Landing = "css"
	LandingJSRaw           Landing = "javascript_raw"
	LandingJSSingleQuote   Landing = "javascript_single_quote"
	LandingJSDoubleQuote   Landing = "javascript_double_quote"
	LandingTemplateLiteral Landing = "template_literal"
	LandingComment         Landing = "comment"
	LandingRCDATA          Landing = "rcdata"
	// LandingNone means the payload did not survive into the markup.
	LandingNone Landing = "none"
)

// Context maps a landing onto the broad injection context it belongs to.
// LandingNone and LandingComment map to the empty context.
func (l Landing) Context() InjectionContext {
	switch l {
	case LandingText, LandingRCDATA:
		return ContextHTMLContent
	case LandingAttribute:
		return ContextHTMLAttribute
	case LandingURL:
		return ContextURL
	case LandingCSS:
		return ContextCSS
	case LandingJSRaw, LandingJSSingleQuote, LandingJSDoubleQuote, LandingTemplateLiteral:
		return ContextJavaScript
	}
	return ""
}

// Verdict represents the verification of a descriptor against every preset of
// its context.
type Verdict struct {
	Context      InjectionContext `json:"context"`
	DescriptorID string           `json:"descriptor_id"`
	Name         string           `json:"name"`
	Quality      Quality          `json:"quality"`
	Executed     bool             `json:"executed"`
	Consistent   bool             `json:"consistent"`
	Landing      Landing          `json:"landing,omitempty"`
	Outcomes     []Outcome        `json:"outcomes"`
}

// CheckQuality applies the rating rule: an executing technique is never
// recommended, a never-executing one is never insecure.
func CheckQuality(q Quality, executed bool) bool {
	if executed {
		return q != QualityRecommended
	}
	return q != QualityInsecure
}
