package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/agastia7500-collab/arima/internal/lookup"
	"github.com/agastia7500-collab/arima/internal/stats"
)

// Context holds everything owned by one user session: the result store,
// the daily-lookup cache and the session's stats override. It is created
// on first request and discarded when the session expires.
type Context struct {
	ID      string
	Results *ResultStore
	Lookup  *lookup.Cache

	mu        sync.Mutex
	statsTab  *stats.Table
	statsName string
	selected  int
	lastSeen  time.Time
}

func newContext(id string, now time.Time) *Context {
	return &Context{
		ID:       id,
		Results:  NewResultStore(),
		Lookup:   lookup.New(),
		lastSeen: now,
	}
}

// SetStats installs an uploaded stats table for this session only.
func (c *Context) SetStats(name string, t *stats.Table) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.statsTab = t
	c.statsName = name
}

// Stats returns the session's stats override, or nil when the session
// uses the default source.
func (c *Context) Stats() (*stats.Table, string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.statsTab, c.statsName
}

func (c *Context) SetSelected(number int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.selected = number
}

func (c *Context) Selected() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selected
}

func (c *Context) touch(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastSeen = now
}

func (c *Context) expired(now time.Time, ttl time.Duration) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return now.Sub(c.lastSeen) > ttl
}

// Manager maps session-cookie IDs to their contexts. Sessions share
// nothing across IDs; expired ones are swept periodically.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Context
	ttl      time.Duration
	now      func() time.Time
}

func NewManager(ttl time.Duration) *Manager {
	return &Manager{
		sessions: make(map[string]*Context),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Get returns the context for id, creating one when id is empty or
// unknown. The returned ID is what the caller should set as the cookie.
func (m *Manager) Get(id string) *Context {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if id != "" {
		if c, ok := m.sessions[id]; ok {
			c.touch(now)
			return c
		}
	}

	c := newContext(uuid.NewString(), now)
	m.sessions[c.ID] = c
	return c
}

func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

func (m *Manager) sweep() {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	for id, c := range m.sessions {
		if c.expired(now, m.ttl) {
			delete(m.sessions, id)
		}
	}
}

// SweepLoop removes expired sessions until ctx is done.
func (m *Manager) SweepLoop(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			before := m.Len()
			m.sweep()
			if dropped := before - m.Len(); dropped > 0 {
				slog.Info("swept expired sessions", "dropped", dropped, "remaining", m.Len())
			}
		}
	}
}
