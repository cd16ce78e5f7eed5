package render

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lcalzada-xor/xsslab/pkg/catalog"
	"github.com/lcalzada-xor/xsslab/pkg/dom"
	"github.com/lcalzada-xor/xsslab/pkg/models"
	"github.com/lcalzada-xor/xsslab/pkg/probe"
	"github.com/lcalzada-xor/xsslab/pkg/sinks"
)

type fixture struct {
	renderer      *Renderer
	probe         *probe.Probe
	notifications []Notification
}

func newFixture(t *testing.T, autoUpdate bool) *fixture {
	t.Helper()
	f := &fixture{probe: probe.New(nil, nil, nil)}
	doc := dom.New(dom.WithProbe(f.probe))
	f.renderer = New(doc, nil, autoUpdate)
	f.renderer.Subscribe(func(n Notification) {
		f.notifications = append(f.notifications, n)
	})
	return f
}

func TestScenarioInnerHTMLVersusTextContent(t *testing.T) {
	f := newFixture(t, true)
	r := f.renderer

	r.SetDescriptor(descriptor(t, models.ContextHTMLContent, "DomInnerHtmlRaw"))
	require.Zero(t, f.probe.Count())

	r.SetPayload(`<img src=x onerror="xss()">`)
	assert.Equal(t, 1, f.probe.Count())

	r.SetDescriptor(descriptor(t, models.ContextHTMLContent, "DomTextContent"))
	assert.Equal(t, 1, f.probe.Count())
	assert.Equal(t, `&lt;img src=x onerror=&#34;xss()&#34;&gt;`, r.State().LiveSourceCode)
}

func TestIdenticalRendersProduceIdenticalSource(t *testing.T) {
	for _, d := range catalog.Default().All() {
		t.Run(d.ID, func(t *testing.T) {
			f := newFixture(t, true)
			r := f.renderer
			r.SetPayload(`<b title="x">hi</b>`)
			r.SetDescriptor(d)
			first := r.State().LiveSourceCode

			r.Update()
			assert.Equal(t, first, r.State().LiveSourceCode)
			assert.Equal(t, uint64(2), r.Seq())
		})
	}
}

func TestManualModeGatesPayload(t *testing.T) {
	f := newFixture(t, false)
	r := f.renderer
	r.SetDescriptor(descriptor(t, models.ContextHTMLContent, "DomTextContent"))
	require.Len(t, f.notifications, 1)
	before := r.State().LiveSourceCode

	r.SetPayload("changed")
	assert.Len(t, f.notifications, 1)
	assert.Equal(t, before, r.State().LiveSourceCode)
	assert.Equal(t, before, r.Container().InnerHTML())

	r.Update()
	require.Len(t, f.notifications, 2)
	assert.Equal(t, "changed", r.State().LiveSourceCode)
	assert.Equal(t, "changed", f.notifications[1].LiveSourceCode)
}

func TestDescriptorSwitchAlwaysRenders(t *testing.T) {
	for _, auto := range []bool{true, false} {
		f := newFixture(t, auto)
		r := f.renderer
		r.SetPayload("<i>x</i>")
		r.SetDescriptor(descriptor(t, models.ContextHTMLContent, "DomTextContent"))
		require.Len(t, f.notifications, 1)

		r.SetDescriptor(descriptor(t, models.ContextHTMLContent, "DomInnerHtmlRaw"))
		require.Len(t, f.notifications, 2)
		assert.Equal(t, "DomInnerHtmlRaw", f.notifications[1].Descriptor.ID)
		assert.Equal(t, "<i>x</i>", f.notifications[1].LiveSourceCode)

		// reselecting is not a change
		r.SetDescriptor(descriptor(t, models.ContextHTMLContent, "DomInnerHtmlRaw"))
		assert.Len(t, f.notifications, 2)
	}
}

func TestToggleOnForcesRender(t *testing.T) {
	f := newFixture(t, false)
	r := f.renderer
	r.SetDescriptor(descriptor(t, models.ContextHTMLContent, "DomTextContent"))
	require.Len(t, f.notifications, 1)

	r.SetAutoUpdate(true)
	assert.Len(t, f.notifications, 2)

	r.SetAutoUpdate(true)
	r.SetAutoUpdate(false)
	assert.Len(t, f.notifications, 2)
}

func TestNoRenderWithoutDescriptor(t *testing.T) {
	f := newFixture(t, true)
	f.renderer.SetPayload("<b>x</b>")
	f.renderer.Update()
	assert.Empty(t, f.notifications)
	assert.Empty(t, f.renderer.Container().InnerHTML())
}

func TestLiveSourceIsReadBack(t *testing.T) {
	f := newFixture(t, true)
	r := f.renderer
	r.SetPayload(`<b>bold</b>`)
	r.SetDescriptor(descriptor(t, models.ContextHTMLContent, "DomInnerHtmlEncoded"))

	assert.Equal(t, "&lt;b&gt;bold&lt;/b&gt;", r.State().ProcessedPayload)
	assert.Equal(t, r.Container().InnerHTML(), r.State().LiveSourceCode)
	// entities are parsed, then serialized again
	assert.Equal(t, "&lt;b&gt;bold&lt;/b&gt;", r.State().LiveSourceCode)
	assert.Equal(t, "<b>bold</b>", r.Container().TextContent())
}

func TestTemplateInstancesAreReplaced(t *testing.T) {
	f := newFixture(t, true)
	r := f.renderer
	r.SetPayload("hello")
	r.SetDescriptor(descriptor(t, models.ContextHTMLContent, "TemplateInterpolation"))
	r.SetPayload("world")

	require.Len(t, r.Container().Children(), 1)
	assert.Contains(t, r.State().LiveSourceCode, "world")
	assert.NotContains(t, r.State().LiveSourceCode, "hello")
}

func TestSinkFailuresAreSwallowed(t *testing.T) {
	boom := errors.New("boom")
	failing := &catalog.Descriptor{
		ID:      "Failing",
		Context: models.ContextHTMLContent,
		Quality: models.QualityQuestionable,
		Sink: catalog.DOMSink{FuncKey: "failing", Inject: func(target *dom.Element, value any) error {
			target.SetTextContent("partial")
			return boom
		}},
	}
	panicking := &catalog.Descriptor{
		ID:      "Panicking",
		Context: models.ContextHTMLContent,
		Quality: models.QualityQuestionable,
		Sink: catalog.DOMSink{FuncKey: "panicking", Inject: func(*dom.Element, any) error {
			panic("kaboom")
		}},
	}

	f := newFixture(t, true)
	r := f.renderer
	r.SetDescriptor(failing)
	require.Len(t, f.notifications, 1)
	assert.ErrorIs(t, f.notifications[0].Err, boom)
	assert.Equal(t, "partial", r.State().LiveSourceCode)

	r.SetDescriptor(panicking)
	require.Len(t, f.notifications, 2)
	assert.Error(t, f.notifications[1].Err)
	assert.Empty(t, r.State().LiveSourceCode)
}

func TestInertDescriptorClearsOutput(t *testing.T) {
	f := newFixture(t, true)
	r := f.renderer
	r.SetPayload("x")
	r.SetDescriptor(descriptor(t, models.ContextHTMLContent, "DomTextContent"))
	r.SetDescriptor(&catalog.Descriptor{ID: "Inert", Context: models.ContextCSS})
	assert.Empty(t, r.State().LiveSourceCode)
	assert.NoError(t, f.notifications[1].Err)
}

func TestReentrantDispatchIsQueued(t *testing.T) {
	f := newFixture(t, true)
	r := f.renderer
	text := descriptor(t, models.ContextHTMLContent, "DomTextContent")

	once := false
	r.Subscribe(func(n Notification) {
		if !once {
			once = true
			r.SetPayload("second")
		}
	})
	r.SetPayload("first")
	r.SetDescriptor(text)

	require.Len(t, f.notifications, 2)
	assert.Equal(t, "first", f.notifications[0].LiveSourceCode)
	assert.Equal(t, "second", f.notifications[1].LiveSourceCode)
}

func TestProbeFiresSynchronouslyDuringRender(t *testing.T) {
	var alerts []probe.Alert
	p := probe.New(nil, func(a probe.Alert) { alerts = append(alerts, a) }, nil)
	doc := dom.New(dom.WithProbe(p))
	r := New(doc, nil, true)

	var seen int
	r.Subscribe(func(Notification) { seen = p.Count() })
	r.SetPayload(`<svg onload="xss('svg')"></svg>`)
	r.SetDescriptor(descriptor(t, models.ContextHTMLContent, "HtmlSourceRaw"))

	assert.Equal(t, 1, seen)
	require.Len(t, alerts, 1)
	assert.Equal(t, "svg", alerts[0].Message)
}

func TestOrphanedTimersStillFire(t *testing.T) {
	f := newFixture(t, true)
	r := f.renderer
	r.SetDescriptor(descriptor(t, models.ContextHTMLContent, "DomInnerHtmlRaw"))
	r.SetPayload(`<img src=x onerror="setTimeout(function(){xss('late')},1000)">`)
	r.SetDescriptor(descriptor(t, models.ContextHTMLContent, "DomTextContent"))
	require.Zero(t, f.probe.Count())

	r.Document().RunTimers()
	assert.Equal(t, 1, f.probe.Count())
	assert.Equal(t, "late", f.probe.Alert().Message)
}

func TestProcessedPayloadUsesProcessor(t *testing.T) {
	f := newFixture(t, true)
	r := f.renderer
	r.SetPayload("javascript:xss()")
	r.SetDescriptor(descriptor(t, models.ContextURL, "DomAnchorHrefValidated"))
	assert.Equal(t, "", sinks.Stringify(r.State().ProcessedPayload))
}
