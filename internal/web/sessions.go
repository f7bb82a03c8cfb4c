package web

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ThatCatDev/modelinspect/internal/session"
)

// browserSession is one browser's session: its own controller plus the
// notifications waiting to be shown on the next page render.
type browserSession struct {
	ctrl *session.Controller

	mu       sync.Mutex
	pending  []session.Notification
	selected string

	lastSeen time.Time // guarded by the registry's mutex
}

func (b *browserSession) Notify(n session.Notification) {
	b.mu.Lock()
	b.pending = append(b.pending, n)
	b.mu.Unlock()
}

// drain returns and clears the pending notifications.
func (b *browserSession) drain() []session.Notification {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := b.pending
	b.pending = nil
	return out
}

func (b *browserSession) setSelected(model string) {
	b.mu.Lock()
	b.selected = model
	b.mu.Unlock()
}

func (b *browserSession) lastSelected() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.selected
}

// registry maps session ids to browser sessions. Sessions share nothing but
// the daemon client. Sessions idle for longer than ttl are dropped, and once
// limit sessions exist the least recently used one makes room for a new one.
type registry struct {
	newController func(n session.Notifier) *session.Controller
	ttl           time.Duration
	limit         int
	now           func() time.Time

	mu       sync.Mutex
	sessions map[string]*browserSession
}

func newRegistry(newController func(n session.Notifier) *session.Controller, ttl time.Duration, limit int) *registry {
	return &registry{
		newController: newController,
		ttl:           ttl,
		limit:         limit,
		now:           time.Now,
		sessions:      make(map[string]*browserSession),
	}
}

// get returns a live session and marks it used.
func (r *registry) get(id string) (*browserSession, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, false
	}
	now := r.now()
	if r.expired(s, now) {
		delete(r.sessions, id)
		return nil, false
	}
	s.lastSeen = now
	return s, true
}

// create starts a new session, fetching its model list, and returns its id.
func (r *registry) create(ctx context.Context) (string, *browserSession) {
	bs := &browserSession{}
	bs.ctrl = r.newController(bs)
	bs.ctrl.Start(ctx)

	id := uuid.NewString()
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	r.prune(now)
	if r.limit > 0 && len(r.sessions) >= r.limit {
		r.evictOldest()
	}
	bs.lastSeen = now
	r.sessions[id] = bs
	return id, bs
}

func (r *registry) expired(s *browserSession, now time.Time) bool {
	return r.ttl > 0 && now.Sub(s.lastSeen) > r.ttl
}

// prune drops expired sessions. r.mu must be held.
func (r *registry) prune(now time.Time) {
	for id, s := range r.sessions {
		if r.expired(s, now) {
			delete(r.sessions, id)
		}
	}
}

// evictOldest drops the least recently used session. r.mu must be held.
func (r *registry) evictOldest() {
	var oldestID string
	var oldest time.Time
	for id, s := range r.sessions {
		if oldestID == "" || s.lastSeen.Before(oldest) {
			oldestID, oldest = id, s.lastSeen
		}
	}
	delete(r.sessions, oldestID)
}

func (r *registry) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
