package render

import (
	"fmt"

	"github.com/lcalzada-xor/xsslab/pkg/catalog"
	"github.com/lcalzada-xor/xsslab/pkg/dom"
	"github.com/lcalzada-xor/xsslab/pkg/dom/jquery"
	"github.com/lcalzada-xor/xsslab/pkg/logger"
	"github.com/lcalzada-xor/xsslab/pkg/templating"
)

// ContainerID is the id of the live output container.
const ContainerID = "live-output"

// Notification is emitted after every render.
type Notification struct {
	Seq            uint64              `json:"seq"`
	Descriptor     *catalog.Descriptor `json:"descriptor"`
	Payload        string              `json:"payload"`
	LiveSourceCode string              `json:"live_source_code"`
	Err            error               `json:"-"`
}

// Renderer owns the live output container of one document. Like the
// document it is single threaded.
type Renderer struct {
	doc       *dom.Document
	container *dom.Element
	logger    *logger.Logger

	state    State
	instance *templating.Instance
	seq      uint64

	subscribers []func(Notification)
	// events dispatched from inside a render (by a subscriber or a sink)
	// run after it completes
	busy    bool
	pending []Event
}

// New creates a renderer whose container is appended to the document body.
func New(doc *dom.Document, log *logger.Logger, autoUpdate bool) *Renderer {
	if log == nil {
		log = logger.Nop()
	}
	container := doc.CreateElement("div")
	container.SetAttribute("id", ContainerID)
	doc.Body().AppendChild(container)

	return &Renderer{
		doc:       doc,
		container: container,
		logger:    log,
		state:     State{AutoUpdate: autoUpdate},
	}
}

// Document returns the rendering document.
func (r *Renderer) Document() *dom.Document {
	return r.doc
}

// Container returns the live output element.
func (r *Renderer) Container() *dom.Element {
	return r.container
}

// State returns a copy of the current state.
func (r *Renderer) State() State {
	return r.state
}

// Seq is the number of renders so far.
func (r *Renderer) Seq() uint64 {
	return r.seq
}

// Subscribe registers fn for every future notification.
func (r *Renderer) Subscribe(fn func(Notification)) {
	r.subscribers = append(r.subscribers, fn)
}

// SetPayload dispatches PayloadChanged.
func (r *Renderer) SetPayload(payload string) {
	r.Dispatch(PayloadChanged{Payload: payload})
}

// SetDescriptor dispatches DescriptorChanged.
func (r *Renderer) SetDescriptor(d *catalog.Descriptor) {
	r.Dispatch(DescriptorChanged{Descriptor: d})
}

// Update dispatches UpdateRequested.
func (r *Renderer) Update() {
	r.Dispatch(UpdateRequested{})
}

// SetAutoUpdate dispatches AutoUpdateToggled.
func (r *Renderer) SetAutoUpdate(enabled bool) {
	r.Dispatch(AutoUpdateToggled{Enabled: enabled})
}

// Dispatch feeds e through Transition and performs the resulting effects.
func (r *Renderer) Dispatch(e Event) {
	if r.busy {
		r.pending = append(r.pending, e)
		return
	}

	r.busy = true
	defer func() { r.busy = false }()

	for {
		var effects []Effect
		r.state, effects = Transition(r.state, e)
		for _, eff := range effects {
			if eff == EffectRender {
				r.render()
			}
		}

		if len(r.pending) == 0 {
			return
		}
		e, r.pending = r.pending[0], r.pending[1:]
	}
}

func (r *Renderer) render() {
	d := r.state.Descriptor
	r.logger.V("Rendering %s/%s", d.Context, d.ID)

	processed := d.Process(r.state.RawPayload)
	r.state.ProcessedPayload = processed

	r.instance.Destroy()
	r.instance = nil
	r.container.Clear()

	err := r.dispatch(d, processed)
	if err != nil {
		// partial output stays in place
		r.logger.Err(err, "Sink %s failed", d.ID)
	}

	r.state.LiveSourceCode = r.container.InnerHTML()
	r.state.LastRendered = d
	r.seq++

	n := Notification{
		Seq:            r.seq,
		Descriptor:     d,
		Payload:        r.state.RawPayload,
		LiveSourceCode: r.state.LiveSourceCode,
		Err:            err,
	}
	for _, fn := range r.subscribers {
		fn(n)
	}
}

func (r *Renderer) dispatch(d *catalog.Descriptor, value any) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("sink %s panicked: %v", d.ID, rec)
		}
	}()

	switch s := d.Sink.(type) {
	case nil:
		return nil
	case catalog.SourceSink:
		r.container.SetInnerHTML(s.Provide(value))
	case catalog.DOMSink:
		return s.Inject(r.container, value)
	case catalog.LibrarySink:
		return s.Inject(jquery.Wrap(r.container), value)
	case catalog.TemplateSink:
		inst, err := s.Component.Instantiate(r.container, d.ID, value)
		if err != nil {
			return err
		}
		r.instance = inst
	default:
		return fmt.Errorf("unsupported sink %T", s)
	}
	return nil
}
