package server

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lcalzada-xor/xsslab/pkg/catalog"
	"github.com/lcalzada-xor/xsslab/pkg/config"
	"github.com/lcalzada-xor/xsslab/pkg/dom"
	"github.com/lcalzada-xor/xsslab/pkg/logger"
	"github.com/lcalzada-xor/xsslab/pkg/presets"
	"github.com/lcalzada-xor/xsslab/pkg/probe"
	"github.com/lcalzada-xor/xsslab/pkg/render"
	"github.com/lcalzada-xor/xsslab/pkg/selection"
)

// Session is one live page: a document, its probe and its renderer. The
// document is single-threaded, so every access holds mu.
type Session struct {
	ID uuid.UUID

	mu         sync.Mutex
	probe      *probe.Probe
	doc        *dom.Document
	renderer   *render.Renderer
	controller *selection.Controller
	events     []Event
	lastEvent  int

	// guarded by the store's mutex
	lastUsed time.Time
}

// maxEvents bounds a session's event log; pollers that fall further behind
// miss the oldest events.
const maxEvents = 256

func newSession(settings config.Settings, c *catalog.Catalog, loader presets.Loader, log *logger.Logger) (*Session, error) {
	s := &Session{ID: uuid.New()}
	log = log.With("session:" + s.ID.String())

	s.probe = probe.New(log, func(a probe.Alert) {
		alert := a
		s.record(Event{Kind: EventAlert, Alert: &alert})
	}, nil)
	s.doc = dom.New(
		dom.WithProbe(s.probe),
		dom.WithLogger(log),
		dom.WithScriptTimeout(settings.ScriptTimeout),
		dom.WithMaxFrameDepth(settings.MaxFrameDepth),
	)
	s.renderer = render.New(s.doc, log, settings.AutoUpdate)
	s.renderer.Subscribe(func(n render.Notification) {
		ev := Event{Kind: EventRender, Seq: n.Seq, LiveSourceCode: n.LiveSourceCode}
		if n.Descriptor != nil {
			ev.Context = n.Descriptor.Context
			ev.OutputID = n.Descriptor.ID
		}
		if n.Err != nil {
			ev.Error = n.Err.Error()
		}
		s.record(ev)
	})

	ctl, err := selection.NewController(s.renderer, c, loader, log, nil, nil)
	if err != nil {
		return nil, err
	}
	s.controller = ctl
	return s, nil
}

// record appends to the event log. Callers hold mu.
func (s *Session) record(ev Event) {
	s.lastEvent++
	ev.ID = s.lastEvent
	s.events = append(s.events, ev)
	if over := len(s.events) - maxEvents; over > 0 {
		s.events = append(s.events[:0:0], s.events[over:]...)
	}
}

// eventsSince returns the retained events with an ID above since. Callers
// hold mu.
func (s *Session) eventsSince(since int) []Event {
	i := sort.Search(len(s.events), func(i int) bool { return s.events[i].ID > since })
	return append([]Event{}, s.events[i:]...)
}

// view snapshots the session. Callers hold mu.
func (s *Session) view() SessionView {
	st := s.renderer.State()
	v := SessionView{
		ID:             s.ID.String(),
		Payload:        st.RawPayload,
		AutoUpdate:     st.AutoUpdate,
		LiveSourceCode: st.LiveSourceCode,
		Seq:            s.renderer.Seq(),
		Alert:          s.probe.Alert(),
		PendingTimers:  s.doc.PendingTimers(),
		Console:        append([]string{}, s.doc.Console()...),
		Navigations:    append([]dom.Navigation{}, s.doc.Navigations()...),
	}
	if st.Descriptor != nil {
		v.Context = st.Descriptor.Context
		v.OutputID = st.Descriptor.ID
		v.Quality = st.Descriptor.Quality
	}
	return v
}

// sessionStore holds the live sessions. Sessions idle for longer than ttl
// are dropped, and at most max are kept (the least recently used goes first).
// A zero ttl or max disables that limit.
type sessionStore struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session
	ttl      time.Duration
	max      int
	now      func() time.Time
}

func newSessionStore(ttl time.Duration, max int) *sessionStore {
	return &sessionStore{
		sessions: make(map[uuid.UUID]*Session),
		ttl:      ttl,
		max:      max,
		now:      time.Now,
	}
}

// add stores s and returns the IDs of the sessions evicted to make room.
func (st *sessionStore) add(s *Session) []uuid.UUID {
	st.mu.Lock()
	defer st.mu.Unlock()

	now := st.now()
	evicted := st.expire(now)
	if st.max > 0 {
		for len(st.sessions) >= st.max {
			evicted = append(evicted, st.evictOldest())
		}
	}
	s.lastUsed = now
	st.sessions[s.ID] = s
	return evicted
}

// expire drops idle sessions. Callers hold the write lock.
func (st *sessionStore) expire(now time.Time) []uuid.UUID {
	if st.ttl <= 0 {
		return nil
	}
	var out []uuid.UUID
	for id, s := range st.sessions {
		if now.Sub(s.lastUsed) > st.ttl {
			delete(st.sessions, id)
			out = append(out, id)
		}
	}
	return out
}

func (st *sessionStore) evictOldest() uuid.UUID {
	var oldest *Session
	for _, s := range st.sessions {
		if oldest == nil || s.lastUsed.Before(oldest.lastUsed) {
			oldest = s
		}
	}
	delete(st.sessions, oldest.ID)
	return oldest.ID
}

// get returns a live session and marks it used.
func (st *sessionStore) get(id string) (*Session, bool) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, false
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	s, ok := st.sessions[parsed]
	if !ok {
		return nil, false
	}
	now := st.now()
	if st.ttl > 0 && now.Sub(s.lastUsed) > st.ttl {
		delete(st.sessions, parsed)
		return nil, false
	}
	s.lastUsed = now
	return s, true
}

func (st *sessionStore) remove(id uuid.UUID) bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	if _, ok := st.sessions[id]; !ok {
		return false
	}
	delete(st.sessions, id)
	return true
}

func (st *sessionStore) len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}
