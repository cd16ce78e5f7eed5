package landing

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lcalzada-xor/xsslab/pkg/logger"
	"github.com/lcalzada-xor/xsslab/pkg/models"
)

func TestDetect(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   models.Landing
	}{
		{"text", `<p>xsslab0canary</p>`, models.LandingText},
		{"bare text", `xsslab0canary`, models.LandingText},
		{"encoded text", `&lt;b&gt;xsslab0canary&lt;/b&gt;`, models.LandingText},
		{"after a closed tag", `<span title="a">xsslab0canary</span>`, models.LandingText},
		{"attribute", `<span title="xsslab0canary">hover me</span>`, models.LandingAttribute},
		{"single quoted attribute", `<span title='xsslab0canary'>`, models.LandingAttribute},
		{"url", `<a href="https://xsslab.test/xsslab0canary" target="x">click me</a>`, models.LandingURL},
		{"iframe src", `<iframe src="xsslab0canary"></iframe>`, models.LandingURL},
		{"style block", `<style>xsslab0canary</style><p>styled text</p>`, models.LandingCSS},
		{"style attribute", `<div style="color: xsslab0canary">styled</div>`, models.LandingCSS},
		{"raw script", `<script>xsslab0canary</script>`, models.LandingJSRaw},
		{"double quoted script", `<script>"xsslab0canary"</script>`, models.LandingJSDoubleQuote},
		{"single quoted script", `<script>'xsslab0canary'</script>`, models.LandingJSSingleQuote},
		{"quoted after attribute", `<script type="text/javascript">'xsslab0canary'</script>`, models.LandingJSSingleQuote},
		{"template literal", "<script>`xsslab0canary`</script>", models.LandingTemplateLiteral},
		{"event handler", `<img src="x" onerror="xsslab0canary">`, models.LandingJSDoubleQuote},
		{"comment", `<!-- xsslab0canary -->`, models.LandingComment},
		{"textarea", `<textarea>xsslab0canary</textarea>`, models.LandingRCDATA},
		{"missing", `<p>nothing here</p>`, models.LandingNone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Detect(tt.source, Marker))
		})
	}
}

func TestDetect_NoTagStart(t *testing.T) {
	// attribute-looking text without an opening tag must not panic
	for _, source := range []string{`href="xsslab0canary"`, `style="xsslab0canary"`, `onclick="xsslab0canary"`, `attr="xsslab0canary"`} {
		assert.NotPanics(t, func() {
			assert.Equal(t, models.LandingText, Detect(source, Marker), source)
		})
	}
}

func TestDetect_EmptyMarker(t *testing.T) {
	assert.Equal(t, models.LandingNone, Detect("<p></p>", ""))
}

func TestDetectVerbose(t *testing.T) {
	got := DetectVerbose(`<span title="xsslab0canary">`, Marker, logger.Nop())
	assert.Equal(t, models.LandingAttribute, got)
}

func TestPayload(t *testing.T) {
	assert.Equal(t, Marker, Payload(models.ContextHTMLContent))
	assert.Contains(t, Payload(models.ContextURL), "https://")
	assert.Contains(t, Payload(models.ContextURL), Marker)
}
