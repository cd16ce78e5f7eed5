package probe

import "sync"

// Coalescer merges refresh requests: while one is pending or running, further
// requests are absorbed into it. A request made during a flush causes exactly
// one more flush, never recursion.
type Coalescer struct {
	mu       sync.Mutex
	pending  bool
	running  bool
	flush    func()
	schedule func(func())
}

// NewCoalescer creates a coalescer. A nil schedule runs the flush inline.
func NewCoalescer(flush func(), schedule func(func())) *Coalescer {
	if schedule == nil {
		schedule = func(f func()) { f() }
	}
	return &Coalescer{flush: flush, schedule: schedule}
}

// Request asks for a flush and reports whether a new one was scheduled.
func (c *Coalescer) Request() bool {
	c.mu.Lock()
	if c.pending {
		c.mu.Unlock()
		return false
	}
	c.pending = true
	running := c.running
	c.mu.Unlock()

	if !running {
		c.schedule(c.run)
	}
	return true
}

func (c *Coalescer) run() {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return
	}
	c.running = true
	for c.pending {
		c.pending = false
		c.mu.Unlock()
		c.flush()
		c.mu.Lock()
	}
	c.running = false
	c.mu.Unlock()
}
