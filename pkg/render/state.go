// Package render is the live output renderer: a pure state machine deciding
// when to render, and a Renderer that threads the payload through a
// descriptor's processor and sink into a container element.
package render

import "github.com/lcalzada-xor/xsslab/pkg/catalog"

// State is everything the renderer tracks between events.
type State struct {
	Descriptor       *catalog.Descriptor
	RawPayload       string
	ProcessedPayload any
	AutoUpdate       bool
	LastRendered     *catalog.Descriptor
	// LiveSourceCode is read back from the container after every render.
	LiveSourceCode string
}

// Event is one input to Transition.
type Event interface {
	isEvent()
}

// PayloadChanged carries a new raw payload.
type PayloadChanged struct {
	Payload string
}

// DescriptorChanged selects an output descriptor.
type DescriptorChanged struct {
	Descriptor *catalog.Descriptor
}

// UpdateRequested is the explicit "update now".
type UpdateRequested struct{}

// AutoUpdateToggled switches between automatic and manual mode.
type AutoUpdateToggled struct {
	Enabled bool
}

func (PayloadChanged) isEvent()    {}
func (DescriptorChanged) isEvent() {}
func (UpdateRequested) isEvent()   {}
func (AutoUpdateToggled) isEvent() {}

// Effect is work Transition asks the renderer to do.
type Effect int

const (
	// EffectRender renders the current descriptor and payload.
	EffectRender Effect = iota + 1
)

func (e Effect) String() string {
	switch e {
	case EffectRender:
		return "render"
	}
	return "unknown"
}

// Transition applies e to s. It has no side effects: the returned effects
// say what must happen next.
//
// Descriptor changes always render. Payload changes render only in
// automatic mode. Switching automatic mode on renders once so the output is
// never stale. Nothing renders without a descriptor.
func Transition(s State, e Event) (State, []Effect) {
	render := func(s State) (State, []Effect) {
		if s.Descriptor == nil {
			return s, nil
		}
		return s, []Effect{EffectRender}
	}

	switch ev := e.(type) {
	case PayloadChanged:
		if ev.Payload == s.RawPayload {
			return s, nil
		}
		s.RawPayload = ev.Payload
		if !s.AutoUpdate {
			return s, nil
		}
		return render(s)

	case DescriptorChanged:
		if sameDescriptor(ev.Descriptor, s.Descriptor) {
			return s, nil
		}
		s.Descriptor = ev.Descriptor
		return render(s)

	case UpdateRequested:
		return render(s)

	case AutoUpdateToggled:
		if ev.Enabled == s.AutoUpdate {
			return s, nil
		}
		s.AutoUpdate = ev.Enabled
		if !ev.Enabled {
			return s, nil
		}
		return render(s)
	}
	return s, nil
}

func sameDescriptor(a, b *catalog.Descriptor) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Context == b.Context && a.ID == b.ID
}
