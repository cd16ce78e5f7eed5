// Package probe implements the xss() instrumentation that injected payloads
// call to prove they achieved script execution.
package probe

import (
	"fmt"
	"sync"

	"github.com/lcalzada-xor/xsslab/pkg/logger"
)

// DefaultMessage is stored when the payload calls xss() without an argument.
const DefaultMessage = "XSS probe triggered"

// Reporter is anything a payload can report execution to.
type Reporter interface {
	Trigger(message string)
}

// Alert is the persistent, user visible result of one or more probe calls.
type Alert struct {
	Count   int    `json:"count"`
	Message string `json:"message"`
}

// Active reports whether the alert should be shown.
func (a Alert) Active() bool {
	return a.Count > 0
}

func (a Alert) String() string {
	if a.Count == 0 {
		return ""
	}
	return fmt.Sprintf("XSS! %s (triggered %d time(s))", a.Message, a.Count)
}

// Probe counts executions and holds the current alert. It is safe to trigger
// re-entrantly from inside a render.
type Probe struct {
	mu      sync.Mutex
	count   int
	message string
	refresh *Coalescer
	logger  *logger.Logger
}

// New creates a probe. onRefresh is called with the current alert after every
// change; refresh requests coalesce while one is pending. schedule decides
// when the refresh runs (nil runs it before Trigger returns).
func New(log *logger.Logger, onRefresh func(Alert), schedule func(func())) *Probe {
	if log == nil {
		log = logger.Nop()
	}
	p := &Probe{logger: log}
	p.refresh = NewCoalescer(func() {
		if onRefresh != nil {
			onRefresh(p.Alert())
		}
	}, schedule)
	return p
}

// Trigger records one execution.
func (p *Probe) Trigger(message string) {
	if message == "" {
		message = DefaultMessage
	}

	p.mu.Lock()
	p.count++
	p.message = message
	count := p.count
	p.mu.Unlock()

	p.logger.Info("XSS probe fired (#%d): %s", count, message)
	// lock released: the refresh callback reads the probe
	p.refresh.Request()
}

// Reset clears the counter and dismisses the alert. No-op when nothing fired.
func (p *Probe) Reset() {
	p.mu.Lock()
	if p.count == 0 {
		p.mu.Unlock()
		return
	}
	p.count = 0
	p.message = ""
	p.mu.Unlock()

	p.refresh.Request()
}

// Count returns the number of executions since the last reset.
func (p *Probe) Count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.count
}

// Alert returns a snapshot of the current alert.
func (p *Probe) Alert() Alert {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Alert{Count: p.count, Message: p.message}
}
