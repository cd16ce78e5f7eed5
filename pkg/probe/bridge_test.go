package probe

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type panickyReporter struct{}

func (panickyReporter) Trigger(string) { panic("frame detached") }

func TestBridge_IndependentTargets(t *testing.T) {
	parent := New(nil, nil, nil)
	b := NewBridge(nil,
		Target{Name: "parent", Lookup: Static(parent)},
		Target{Name: "opener", Lookup: Unavailable(ErrNoTarget)},
	)

	deliveries := b.Report("from child")
	require.Len(t, deliveries, 2)

	assert.Equal(t, "parent", deliveries[0].Target)
	assert.True(t, deliveries[0].Delivered)
	assert.NoError(t, deliveries[0].Err)

	assert.Equal(t, "opener", deliveries[1].Target)
	assert.False(t, deliveries[1].Delivered)
	assert.True(t, errors.Is(deliveries[1].Err, ErrNoTarget))

	assert.Equal(t, 1, parent.Count())
	assert.Equal(t, "from child", parent.Alert().Message)
}

func TestBridge_FailureFirstDoesNotBlockSecond(t *testing.T) {
	opener := New(nil, nil, nil)
	b := NewBridge(nil,
		Target{Name: "parent", Lookup: Unavailable(ErrCrossOrigin)},
		Target{Name: "opener", Lookup: Static(opener)},
	)

	deliveries := b.Report("")
	assert.True(t, errors.Is(deliveries[0].Err, ErrCrossOrigin))
	assert.True(t, deliveries[1].Delivered)
	assert.Equal(t, 1, opener.Count())
}

func TestBridge_PanickingTarget(t *testing.T) {
	other := New(nil, nil, nil)
	b := NewBridge(nil,
		Target{Name: "parent", Lookup: Static(panickyReporter{})},
		Target{Name: "opener", Lookup: Static(other)},
		Target{Name: "nil", Lookup: nil},
	)

	deliveries := b.Report("x")
	assert.False(t, deliveries[0].Delivered)
	assert.Error(t, deliveries[0].Err)
	assert.True(t, deliveries[1].Delivered)
	assert.True(t, errors.Is(deliveries[2].Err, ErrNoTarget))
	assert.Equal(t, 1, other.Count())
}

func TestBridge_Lookup(t *testing.T) {
	parent := New(nil, nil, nil)
	b := NewBridge(nil, Target{Name: "parent", Lookup: Static(parent)})

	r, err := b.Lookup("parent")
	require.NoError(t, err)
	r.Trigger("direct")
	assert.Equal(t, 1, parent.Count())

	_, err = b.Lookup("opener")
	assert.True(t, errors.Is(err, ErrNoTarget))

	b.Trigger("via bridge")
	assert.Equal(t, 2, parent.Count())
}
