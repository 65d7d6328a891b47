package syncer

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"bloom/internal/identity"
	"bloom/internal/localstore"
	"bloom/internal/profilestore"
)

// Manager owns one synchronizer per device session. Each session has its
// own feed; a synchronizer only ever follows its own session's feed.
type Manager struct {
	store    profilestore.Store
	prefs    *localstore.Store
	log      *zap.Logger
	debounce time.Duration

	mu       sync.Mutex
	sessions map[string]*session
}

type session struct {
	feed *identity.Feed
	sync *Synchronizer
}

func NewManager(store profilestore.Store, prefs *localstore.Store, log *zap.Logger, debounce time.Duration) *Manager {
	return &Manager{
		store:    store,
		prefs:    prefs,
		log:      log,
		debounce: debounce,
		sessions: map[string]*session{},
	}
}

// StartSession creates a device session for the principal, attaches a fresh
// synchronizer to its feed, and pushes the authenticated transition. The
// profile is hydrated (or bootstrapped) before this returns.
func (m *Manager) StartSession(p *identity.Principal) string {
	id := uuid.NewString()
	feed := identity.NewFeed()
	s := New(Config{Store: m.store, Prefs: m.prefs, Logger: m.log, Debounce: m.debounce})
	s.Attach(feed)

	m.mu.Lock()
	m.sessions[id] = &session{feed: feed, sync: s}
	m.mu.Unlock()

	feed.Push(p)
	return id
}

// Lookup resolves the synchronizer for a session id.
func (m *Manager) Lookup(sessionID string) (*Synchronizer, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.sessions[sessionID]
	if !ok {
		return nil, false
	}
	return sess.sync, true
}

// Replace signs a different principal into an existing session. The
// synchronizer replays the full authenticated transition; nothing from the
// previous principal's state survives.
func (m *Manager) Replace(sessionID string, p *identity.Principal) bool {
	m.mu.Lock()
	sess, ok := m.sessions[sessionID]
	m.mu.Unlock()
	if !ok {
		return false
	}
	sess.feed.Push(p)
	return true
}

// EndSession signs the session out and discards it. The sign-out transition
// flushes any pending write before the reset.
func (m *Manager) EndSession(sessionID string) {
	m.mu.Lock()
	sess, ok := m.sessions[sessionID]
	delete(m.sessions, sessionID)
	m.mu.Unlock()
	if !ok {
		return
	}
	sess.feed.Push(nil)
	sess.sync.Detach()
}

// Shutdown flushes every active session's pending write. Used on server
// stop so a debounce window in flight is not lost.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	active := make([]*session, 0, len(m.sessions))
	for _, sess := range m.sessions {
		active = append(active, sess)
	}
	m.sessions = map[string]*session{}
	m.mu.Unlock()

	for _, sess := range active {
		sess.sync.Flush()
		sess.sync.Detach()
	}
}
