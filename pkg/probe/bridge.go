package probe

import (
	"errors"
	"fmt"

	"github.com/lcalzada-xor/xsslab/pkg/logger"
)

var (
	// ErrNoTarget means the related browsing context does not exist.
	ErrNoTarget = errors.New("probe target unavailable")
	// ErrCrossOrigin means the related context exists but may not be touched.
	ErrCrossOrigin = errors.New("cross-origin access denied")
)

// Lookup resolves a remote probe. It may fail, e.g. across origins.
type Lookup func() (Reporter, error)

// Target is one related browsing context (parent, opener).
type Target struct {
	Name   string
	Lookup Lookup
}

// Delivery is the result of reporting to one target.
type Delivery struct {
	Target    string `json:"target"`
	Delivered bool   `json:"delivered"`
	Err       error  `json:"-"`
}

// Bridge forwards probe calls from a child frame or window to the probes of
// the contexts that embedded or opened it.
type Bridge struct {
	targets []Target
	logger  *logger.Logger
}

// NewBridge creates a bridge over the given targets, tried in order.
func NewBridge(log *logger.Logger, targets ...Target) *Bridge {
	if log == nil {
		log = logger.Nop()
	}
	return &Bridge{targets: targets, logger: log}
}

// Report delivers message to every target. A failing target never prevents
// delivery to the others.
func (b *Bridge) Report(message string) []Delivery {
	out := make([]Delivery, 0, len(b.targets))
	for _, t := range b.targets {
		d := deliver(t, message)
		if d.Err != nil {
			b.logger.V("probe bridge: %v", d.Err)
		}
		out = append(out, d)
	}
	return out
}

// Trigger makes a Bridge usable wherever a probe is expected.
func (b *Bridge) Trigger(message string) {
	b.Report(message)
}

// Lookup resolves a single named target.
func (b *Bridge) Lookup(name string) (Reporter, error) {
	for _, t := range b.targets {
		if t.Name != name {
			continue
		}
		if t.Lookup == nil {
			return nil, ErrNoTarget
		}
		return t.Lookup()
	}
	return nil, fmt.Errorf("%s: %w", name, ErrNoTarget)
}

func deliver(t Target, message string) (d Delivery) {
	d.Target = t.Name
	defer func() {
		if r := recover(); r != nil {
			d.Delivered = false
			d.Err = fmt.Errorf("%s probe panicked: %v", t.Name, r)
		}
	}()

	if t.Lookup == nil {
		d.Err = fmt.Errorf("%s probe: %w", t.Name, ErrNoTarget)
		return d
	}
	r, err := t.Lookup()
	if err != nil {
		d.Err = fmt.Errorf("%s probe lookup: %w", t.Name, err)
		return d
	}
	if r == nil {
		d.Err = fmt.Errorf("%s probe: %w", t.Name, ErrNoTarget)
		return d
	}
	r.Trigger(message)
	d.Delivered = true
	return d
}

// Static returns a lookup that always resolves to r.
func Static(r Reporter) Lookup {
	return func() (Reporter, error) { return r, nil }
}

// Unavailable returns a lookup that always fails with err.
func Unavailable(err error) Lookup {
	return func() (Reporter, error) { return nil, err }
}
