package probe

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProbe_Trigger(t *testing.T) {
	var seen []Alert
	p := New(nil, func(a Alert) { seen = append(seen, a) }, nil)

	assert.Equal(t, 0, p.Count())
	assert.False(t, p.Alert().Active())

	p.Trigger("")
	assert.Equal(t, 1, p.Count())
	assert.Equal(t, DefaultMessage, p.Alert().Message)

	p.Trigger("cookie stolen")
	assert.Equal(t, 2, p.Count())
	assert.Equal(t, "cookie stolen", p.Alert().Message)
	assert.Contains(t, p.Alert().String(), "triggered 2 time(s)")

	// inline schedule: every trigger is visible before Trigger returns
	assert.Len(t, seen, 2)
	assert.Equal(t, 2, seen[1].Count)
}

func TestProbe_Reset(t *testing.T) {
	refreshes := 0
	p := New(nil, func(Alert) { refreshes++ }, nil)

	p.Reset()
	assert.Equal(t, 0, refreshes, "reset at zero is a no-op")

	p.Trigger("x")
	p.Reset()
	assert.Equal(t, 0, p.Count())
	assert.False(t, p.Alert().Active())
	assert.Empty(t, p.Alert().String())
	assert.Equal(t, 2, refreshes)
}

func TestProbe_RefreshReadsProbe(t *testing.T) {
	// the refresh callback reads the probe while Trigger is on the stack
	var p *Probe
	counts := []int{}
	p = New(nil, func(Alert) { counts = append(counts, p.Count()) }, nil)

	p.Trigger("a")
	p.Trigger("b")
	assert.Equal(t, []int{1, 2}, counts)
}

func TestProbe_DeferredRefreshCoalesces(t *testing.T) {
	var queue []func()
	schedule := func(f func()) { queue = append(queue, f) }

	var seen []Alert
	p := New(nil, func(a Alert) { seen = append(seen, a) }, schedule)

	p.Trigger("one")
	p.Trigger("two")
	p.Trigger("three")
	assert.Len(t, queue, 1, "pending refresh absorbs further requests")
	assert.Empty(t, seen)

	queue[0]()
	assert.Len(t, seen, 1)
	assert.Equal(t, 3, seen[0].Count)
	assert.Equal(t, "three", seen[0].Message)
}

func TestCoalescer_RequestDuringFlush(t *testing.T) {
	var c *Coalescer
	flushes := 0
	c = NewCoalescer(func() {
		flushes++
		if flushes == 1 {
			// a request made while flushing must not recurse
			assert.True(t, c.Request())
			assert.False(t, c.Request())
		}
	}, nil)

	assert.True(t, c.Request())
	assert.Equal(t, 2, flushes)

	assert.True(t, c.Request())
	assert.Equal(t, 3, flushes)
}
