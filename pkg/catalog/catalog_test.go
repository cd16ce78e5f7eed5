package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lcalzada-xor/xsslab/pkg/models"
)

func TestDefaultCatalog(t *testing.T) {
	c := Default()
	require.Same(t, c, Default())

	cols := c.Collections()
	require.Len(t, cols, len(models.Contexts))
	for i, col := range cols {
		assert.Equal(t, models.Contexts[i], col.Context)
		assert.NotEmpty(t, col.Descriptors, col.Context)
		for _, d := range col.Descriptors {
			assert.Equal(t, col.Context, d.Context)
			assert.True(t, d.Quality.Valid(), d.ID)
			assert.False(t, d.Inert(), d.ID)
			assert.NotEmpty(t, d.Title, d.ID)
		}
	}
	assert.Equal(t, "Challenges", c.FindCollection(models.ContextChallenges).Name)
}

func TestTitles(t *testing.T) {
	d := Default().FindDescriptor(models.ContextHTMLContent, "DomInnerHtmlRaw")
	require.NotNil(t, d)
	assert.Equal(t, "Dom Inner Html Raw", d.Title)

	tests := map[string]string{
		"JQueryText":   "J Query Text",
		"URLValidate":  "URL Validate",
		"Html5Details": "Html5 Details",
		"x":            "x",
	}
	for id, want := range tests {
		assert.Equal(t, want, titleFromID(id), id)
	}
}

func TestLookups(t *testing.T) {
	c := Default()

	d := c.FindDescriptor(models.ContextHTMLContent, "DomInnerHtmlRaw")
	require.NotNil(t, d)
	assert.Equal(t, models.QualityInsecure, d.Quality)
	assert.Equal(t, KindDOM, d.Sink.Kind())
	assert.Equal(t, "innerHtml", d.Sink.Key())

	assert.Nil(t, c.FindDescriptor(models.ContextURL, "DomInnerHtmlRaw"))
	assert.Nil(t, c.FindDescriptor("nowhere", "DomInnerHtmlRaw"))
	assert.Nil(t, c.FindCollection("nowhere"))

	total := 0
	for _, col := range c.Collections() {
		total += len(col.Descriptors)
	}
	assert.Len(t, c.All(), total)
}

func TestSinkKinds(t *testing.T) {
	c := Default()
	tests := []struct {
		ctx  models.InjectionContext
		id   string
		kind SinkKind
	}{
		{models.ContextHTMLContent, "HtmlSourceRaw", KindSource},
		{models.ContextHTMLContent, "DomTextContent", KindDOM},
		{models.ContextHTMLContent, "JQueryHtml", KindLibrary},
		{models.ContextHTMLContent, "TemplateInterpolation", KindTemplate},
	}
	for _, tt := range tests {
		d := c.FindDescriptor(tt.ctx, tt.id)
		require.NotNil(t, d, tt.id)
		assert.Equal(t, tt.kind, d.Sink.Kind(), tt.id)

		switch s := d.Sink.(type) {
		case SourceSink:
			assert.NotNil(t, s.Provide)
		case DOMSink:
			assert.NotNil(t, s.Inject)
		case LibrarySink:
			assert.NotNil(t, s.Inject)
		case TemplateSink:
			assert.NotNil(t, s.Component)
		default:
			t.Fatalf("unexpected sink %T", s)
		}
	}
}

func TestProcess(t *testing.T) {
	c := Default()
	raw := c.FindDescriptor(models.ContextHTMLContent, "DomInnerHtmlRaw")
	assert.Equal(t, "<b>", raw.Process("<b>"))

	encoded := c.FindDescriptor(models.ContextHTMLContent, "DomInnerHtmlEncoded")
	assert.Equal(t, "&lt;b&gt;", encoded.Process("<b>"))
}

func TestTechnologies(t *testing.T) {
	d := Default().FindDescriptor(models.ContextHTMLContent, "DomInnerHtmlSanitizedStrict")
	require.NotNil(t, d)
	tech := d.Technologies()
	assert.Contains(t, tech, "bluemonday")
	assert.Contains(t, tech, "innerHTML")
	assert.Contains(t, tech, "dom")

	tpl := Default().FindDescriptor(models.ContextURL, "TemplateUrlBinding")
	assert.Contains(t, tpl.Technologies(), "html/template")
}

func TestBuildRejectsBadTables(t *testing.T) {
	tests := []struct {
		name string
		defs []CollectionDef
	}{
		{"missing function", []CollectionDef{{Context: models.ContextCSS, Descriptors: []DescriptorDef{
			{ID: "A", Quality: models.QualityRecommended, Sink: DOM("nope")},
		}}}},
		{"missing processor", []CollectionDef{{Context: models.ContextCSS, Descriptors: []DescriptorDef{
			{ID: "A", Quality: models.QualityRecommended, Processor: "nope", Sink: DOM("textContent")},
		}}}},
		{"missing component", []CollectionDef{{Context: models.ContextCSS, Descriptors: []DescriptorDef{
			{ID: "A", Quality: models.QualityRecommended, Sink: Template("nope")},
		}}}},
		{"unassigned quality", []CollectionDef{{Context: models.ContextCSS, Descriptors: []DescriptorDef{
			{ID: "A", Sink: DOM("textContent")},
		}}}},
		{"duplicate id", []CollectionDef{{Context: models.ContextCSS, Descriptors: []DescriptorDef{
			{ID: "A", Quality: models.QualityRecommended, Sink: DOM("textContent")},
			{ID: "A", Quality: models.QualityInsecure, Sink: DOM("innerHtml")},
		}}}},
		{"unknown context", []CollectionDef{{Context: "elsewhere"}}},
		{"duplicate context", []CollectionDef{{Context: models.ContextCSS}, {Context: models.ContextCSS}}},
		{"unknown kind", []CollectionDef{{Context: models.ContextCSS, Descriptors: []DescriptorDef{
			{ID: "A", Quality: models.QualityRecommended, Sink: &SinkRef{Kind: "magic", Key: "textContent"}},
		}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Panics(t, func() { Build(tt.defs) })
		})
	}
}

func TestInertDescriptor(t *testing.T) {
	c := Build([]CollectionDef{{Context: models.ContextCSS, Descriptors: []DescriptorDef{
		{ID: "Placeholder", Quality: models.QualityQuestionable},
	}}})
	d := c.FindDescriptor(models.ContextCSS, "Placeholder")
	require.NotNil(t, d)
	assert.True(t, d.Inert())
	assert.Equal(t, "Placeholder", d.Name)
	assert.Empty(t, d.Technologies())
}

func TestDuplicateIDsAcrossContexts(t *testing.T) {
	assert.NotPanics(t, func() {
		Build([]CollectionDef{
			{Context: models.ContextCSS, Descriptors: []DescriptorDef{{ID: "A", Quality: models.QualityRecommended, Sink: DOM("textContent")}}},
			{Context: models.ContextURL, Descriptors: []DescriptorDef{{ID: "A", Quality: models.QualityRecommended, Sink: DOM("textContent")}}},
		})
	})
}
