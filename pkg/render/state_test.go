package render

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lcalzada-xor/xsslab/pkg/catalog"
	"github.com/lcalzada-xor/xsslab/pkg/models"
)

func descriptor(t *testing.T, ctx models.InjectionContext, id string) *catalog.Descriptor {
	t.Helper()
	d := catalog.Default().FindDescriptor(ctx, id)
	if d == nil {
		t.Fatalf("descriptor %s/%s not found", ctx, id)
	}
	return d
}

func TestTransition(t *testing.T) {
	raw := &catalog.Descriptor{Context: models.ContextHTMLContent, ID: "A"}
	other := &catalog.Descriptor{Context: models.ContextHTMLContent, ID: "B"}
	render := []Effect{EffectRender}

	tests := []struct {
		name    string
		state   State
		event   Event
		effects []Effect
	}{
		{"payload in auto mode", State{Descriptor: raw, AutoUpdate: true}, PayloadChanged{"x"}, render},
		{"payload in manual mode", State{Descriptor: raw}, PayloadChanged{"x"}, nil},
		{"identical payload", State{Descriptor: raw, AutoUpdate: true, RawPayload: "x"}, PayloadChanged{"x"}, nil},
		{"payload without descriptor", State{AutoUpdate: true}, PayloadChanged{"x"}, nil},
		{"descriptor in manual mode", State{Descriptor: raw}, DescriptorChanged{other}, render},
		{"descriptor in auto mode", State{Descriptor: raw, AutoUpdate: true}, DescriptorChanged{other}, render},
		{"same descriptor", State{Descriptor: raw}, DescriptorChanged{&catalog.Descriptor{Context: models.ContextHTMLContent, ID: "A"}}, nil},
		{"first descriptor", State{}, DescriptorChanged{raw}, render},
		{"descriptor cleared", State{Descriptor: raw}, DescriptorChanged{nil}, nil},
		{"update now", State{Descriptor: raw}, UpdateRequested{}, render},
		{"update without descriptor", State{}, UpdateRequested{}, nil},
		{"toggle on", State{Descriptor: raw}, AutoUpdateToggled{true}, render},
		{"toggle off", State{Descriptor: raw, AutoUpdate: true}, AutoUpdateToggled{false}, nil},
		{"toggle on again", State{Descriptor: raw, AutoUpdate: true}, AutoUpdateToggled{true}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, effects := Transition(tt.state, tt.event)
			assert.Equal(t, tt.effects, effects)
		})
	}
}

func TestTransitionUpdatesState(t *testing.T) {
	d := &catalog.Descriptor{Context: models.ContextCSS, ID: "A"}

	s, _ := Transition(State{}, PayloadChanged{"p"})
	assert.Equal(t, "p", s.RawPayload)

	s, _ = Transition(s, DescriptorChanged{d})
	assert.Same(t, d, s.Descriptor)

	s, _ = Transition(s, AutoUpdateToggled{true})
	assert.True(t, s.AutoUpdate)

	// the input state is a value and stays untouched
	in := State{RawPayload: "old"}
	Transition(in, PayloadChanged{"new"})
	assert.Equal(t, "old", in.RawPayload)
}

func TestEffectString(t *testing.T) {
	assert.Equal(t, "render", EffectRender.String())
	assert.Equal(t, "unknown", Effect(0).String())
}
