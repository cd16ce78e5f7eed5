package output

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lcalzada-xor/xsslab/pkg/catalog"
	"github.com/lcalzada-xor/xsslab/pkg/models"
	"github.com/lcalzada-xor/xsslab/pkg/probe"
)

func init() {
	color.NoColor = true
}

var sample = []models.Verdict{
	{
		Context:      models.ContextHTMLContent,
		DescriptorID: "DomInnerHtmlRaw",
		Name:         "element.innerHTML = payload",
		Quality:      models.QualityInsecure,
		Executed:     true,
		Consistent:   true,
		Landing:      models.LandingText,
		Outcomes: []models.Outcome{
			{Preset: "Image onerror", Executed: true, ProbeCount: 1, ProbeMessage: probe.DefaultMessage},
			{Preset: "Script tag"},
		},
	},
	{
		Context:      models.ContextHTMLContent,
		DescriptorID: "DomTextContent",
		Name:         "element.textContent = payload",
		Quality:      models.QualityInsecure,
		Consistent:   false,
		Outcomes:     []models.Outcome{{Preset: "Image onerror", Error: "boom"}},
	},
}

func TestFormat(t *testing.T) {
	tests := []struct {
		name     string
		format   string
		contains []string
	}{
		{"human", FormatHuman, []string{"[OK] element.innerHTML = payload", "Insecure", "! Image onerror (probe x1", "- Script tag", "Landing:    text"}},
		{"json", FormatJSON, []string{`"descriptor_id":"DomInnerHtmlRaw"`, `"executed":true`}},
		{"line", "", []string{"html-content/DomInnerHtmlRaw insecure executed=true consistent=true"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Format(sample[0], tt.format)
			for _, want := range tt.contains {
				assert.Contains(t, got, want)
			}
		})
	}
}

func TestFormatVerdicts(t *testing.T) {
	human := FormatVerdicts(sample, FormatHuman)
	assert.Contains(t, human, "[MISMATCH] element.textContent = payload")
	assert.Contains(t, human, "error: boom")
	assert.Contains(t, human, "1 of 2 descriptors contradict their rating")

	allGood := FormatVerdicts(sample[:1], FormatHuman)
	assert.Contains(t, allGood, "1 descriptors verified, all consistent")

	tbl := FormatVerdicts(sample, FormatTable)
	assert.Contains(t, tbl, "DomInnerHtmlRaw")
	assert.Contains(t, tbl, "1/2")
	assert.Contains(t, tbl, "0/1")
	assert.Contains(t, strings.ToUpper(tbl), "CONSISTENT")
	assert.Contains(t, strings.ToUpper(tbl), "LANDING")

	var decoded []models.Verdict
	require.NoError(t, json.Unmarshal([]byte(FormatVerdicts(sample, FormatJSON)), &decoded))
	assert.Equal(t, sample, decoded)
}

func TestFormatCatalog(t *testing.T) {
	c := catalog.Default()

	human := FormatCatalog(c, FormatHuman)
	assert.Contains(t, human, "[HTML Content]")
	assert.Contains(t, human, "DomInnerHtmlRaw")

	tbl := FormatCatalog(c, FormatTable)
	assert.Contains(t, tbl, "dom:innerHtml")
	assert.Contains(t, tbl, "htmlEncode")

	var groups []struct {
		Context     string `json:"context"`
		Descriptors []struct {
			ID           string   `json:"id"`
			Quality      string   `json:"quality"`
			Sink         string   `json:"sink"`
			Technologies []string `json:"technologies"`
		} `json:"descriptors"`
	}
	require.NoError(t, json.Unmarshal([]byte(FormatCatalog(c, FormatJSON)), &groups))
	require.Len(t, groups, len(c.Collections()))
	assert.Equal(t, string(models.ContextHTMLContent), groups[0].Context)
	assert.NotEmpty(t, groups[0].Descriptors[0].Technologies)
	assert.NotEmpty(t, groups[0].Descriptors[0].Sink)
}

func TestFormatRender(t *testing.T) {
	r := RenderResult{
		Context:        models.ContextHTMLContent,
		DescriptorID:   "DomInnerHtmlRaw",
		Payload:        "<img src=x onerror=xss()>",
		LiveSourceCode: `<img src="x" onerror="xss()"/>`,
		Alert:          probe.Alert{Count: 1, Message: probe.DefaultMessage},
	}
	human := FormatRender(r, FormatHuman)
	assert.Contains(t, human, "html-content/DomInnerHtmlRaw")
	assert.Contains(t, human, "XSS! "+probe.DefaultMessage)

	r.Alert = probe.Alert{}
	assert.Contains(t, FormatRender(r, FormatHuman), "No script execution observed")
	assert.Contains(t, FormatRender(r, FormatJSON), `"live_source_code"`)
}

func TestValidFormat(t *testing.T) {
	assert.True(t, ValidFormat("table"))
	assert.False(t, ValidFormat("url"))
}

func TestFormatDescriptors(t *testing.T) {
	c := catalog.Default()
	ds := []*catalog.Descriptor{c.FindDescriptor(models.ContextCSS, "TemplateStyleBinding")}

	assert.Contains(t, FormatDescriptors(ds, FormatHuman), "css/TemplateStyleBinding")
	assert.Contains(t, FormatDescriptors(ds, FormatTable), "template:styleBinding")

	var entries []map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(FormatDescriptors(ds, FormatJSON)), &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, "TemplateStyleBinding", entries[0]["id"])
}
