// Package syncer reconciles in-memory user state with the profile store
// under debounced, fire-and-forget writes.
package syncer

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"bloom/internal/identity"
	"bloom/internal/localstore"
	"bloom/internal/models"
	"bloom/internal/profilestore"
)

// Status is the session reconciliation state.
type Status string

const (
	// StatusLoading is the initial state and the state while a profile
	// load is in flight.
	StatusLoading Status = "loading"
	// StatusAuthenticated means a profile is hydrated for the current
	// principal.
	StatusAuthenticated Status = "authenticated"
	// StatusUnauthenticated means no session; all slots hold defaults.
	StatusUnauthenticated Status = "unauthenticated"
	// StatusLoadFailed means the profile fetch failed with something other
	// than not-found. Slots hold defaults, but the state is kept distinct
	// so a transient outage is never mistaken for a fresh account.
	StatusLoadFailed Status = "load-failed"
)

const writeTimeout = 10 * time.Second

// Config wires a Synchronizer.
type Config struct {
	Store    profilestore.Store
	Prefs    *localstore.Store
	Logger   *zap.Logger
	Debounce time.Duration // zero means DefaultDebounce
}

// Synchronizer owns the in-memory copy of one principal's state. Setters
// update memory synchronously and schedule a coalesced remote write;
// remote failures are logged and dropped, never surfaced to callers.
type Synchronizer struct {
	store profilestore.Store
	prefs *localstore.Store
	log   *zap.Logger
	deb   *Debouncer

	// loadMu serializes load-or-create so near-simultaneous transitions
	// for a fresh principal cannot both observe not-found and both create
	loadMu sync.Mutex

	mu        sync.Mutex
	status    Status
	principal *identity.Principal
	gen       int // session generation; a load only lands if it is still current
	profile   models.UserProfile

	// immediate per-slot sinks, independent of session state (the
	// companion name's device-preference write-through lives here)
	sinks map[string][]func(any)

	subMu     sync.Mutex
	nextSub   int
	subs      map[int]func()
	unobserve func()
}

func New(cfg Config) *Synchronizer {
	s := &Synchronizer{
		store:  cfg.Store,
		prefs:  cfg.Prefs,
		log:    cfg.Logger,
		status: StatusLoading,
		sinks:  map[string][]func(any){},
		subs:   map[int]func(){},
	}
	s.deb = NewDebouncer(cfg.Debounce, s.writeRemote)
	s.profile = *s.defaultState()
	if cfg.Prefs != nil {
		s.sinks[profilestore.SlotCompanionName] = append(s.sinks[profilestore.SlotCompanionName], func(v any) {
			if name, ok := v.(string); ok {
				cfg.Prefs.Set(localstore.KeyCompanionName, name)
			}
		})
	}
	return s
}

// defaultState builds the signed-out slot values. The companion name is
// seeded from the device preference, not the hard-coded default, when one
// exists.
func (s *Synchronizer) defaultState() *models.UserProfile {
	companion := models.DefaultCompanionName
	if s.prefs != nil {
		if name, ok := s.prefs.Get(localstore.KeyCompanionName); ok && name != "" {
			companion = name
		}
	}
	return models.DefaultProfile("", "", companion)
}

// Attach subscribes the synchronizer to a session feed. The returned state
// transitions are driven entirely by the feed from here on.
func (s *Synchronizer) Attach(feed *identity.Feed) {
	s.unobserve = feed.Observe(s.onSession)
}

// Detach unsubscribes from the session feed.
func (s *Synchronizer) Detach() {
	if s.unobserve != nil {
		s.unobserve()
		s.unobserve = nil
	}
}

// onSession replays the full transition for every feed event, including a
// principal change between two authenticated states.
func (s *Synchronizer) onSession(p *identity.Principal) {
	// anything still pending belongs to the outgoing session; write it
	// while the old principal id is still attached to it
	s.deb.Flush()

	if p == nil {
		s.mu.Lock()
		s.gen++
		s.status = StatusUnauthenticated
		s.principal = nil
		s.profile = *s.defaultState()
		s.mu.Unlock()
		s.notify()
		return
	}

	s.mu.Lock()
	s.gen++
	gen := s.gen
	s.status = StatusLoading
	s.principal = p
	s.profile = *s.defaultState()
	s.mu.Unlock()
	s.notify()

	s.loadOrCreate(gen, p)
}

// loadOrCreate hydrates the profile document, bootstrapping it exactly once
// when none exists. The generation check discards the result if a newer
// session transition happened while the load was in flight.
func (s *Synchronizer) loadOrCreate(gen int, p *identity.Principal) {
	s.loadMu.Lock()
	defer s.loadMu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()

	profile, err := s.store.Get(ctx, p.ID)
	if errors.Is(err, profilestore.ErrNotFound) {
		fresh := s.defaultState()
		fresh.ID = p.ID
		fresh.DisplayName = p.DisplayName
		if createErr := s.store.Create(ctx, p.ID, fresh); createErr != nil {
			// another device may have bootstrapped concurrently; the row's
			// primary key makes the create conditional, so re-read before
			// declaring failure
			profile, err = s.store.Get(ctx, p.ID)
			if err != nil {
				s.log.Error("profile bootstrap failed",
					zap.String("user_id", p.ID), zap.Error(createErr))
				s.failLoad(gen)
				return
			}
		} else {
			profile = fresh
		}
	} else if err != nil {
		s.log.Error("profile load failed", zap.String("user_id", p.ID), zap.Error(err))
		s.failLoad(gen)
		return
	}

	s.mu.Lock()
	if s.gen != gen {
		s.mu.Unlock()
		return
	}
	s.status = StatusAuthenticated
	s.profile = *profile
	if s.profile.CompanionName == "" {
		s.profile.CompanionName = s.defaultState().CompanionName
	}
	s.mu.Unlock()
	s.notify()
}

func (s *Synchronizer) failLoad(gen int) {
	s.mu.Lock()
	if s.gen != gen {
		s.mu.Unlock()
		return
	}
	s.status = StatusLoadFailed
	s.profile = *s.defaultState()
	s.mu.Unlock()
	s.notify()
}

// mutate applies one slot change under the lock, runs the slot's immediate
// sinks, and schedules the debounced remote write when authenticated.
func (s *Synchronizer) mutate(fn func(p *models.UserProfile) (slot string, value any)) {
	s.mu.Lock()
	slot, value := fn(&s.profile)
	authed := s.status == StatusAuthenticated
	userID := ""
	if s.principal != nil {
		userID = s.principal.ID
	}
	s.mu.Unlock()
	s.notify()

	for _, sink := range s.sinks[slot] {
		sink(value)
	}
	if authed && userID != "" {
		s.deb.Schedule(userID, map[string]any{slot: value})
	}
}

func (s *Synchronizer) writeRemote(userID string, fields map[string]any) {
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()
	if err := s.store.Update(ctx, userID, fields); err != nil {
		// best-effort persistence: log and drop, no retry, no rollback
		names := make([]string, 0, len(fields))
		for name := range fields {
			names = append(names, name)
		}
		s.log.Warn("dropping profile write",
			zap.String("user_id", userID),
			zap.Strings("slots", names),
			zap.Error(err))
	}
}

// Flush issues any pending debounced write immediately.
func (s *Synchronizer) Flush() {
	s.deb.Flush()
}

// Subscribe registers a change callback fired after every state mutation or
// session transition. It returns the unsubscribe function.
func (s *Synchronizer) Subscribe(fn func()) func() {
	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.subMu.Unlock()
	return func() {
		s.subMu.Lock()
		delete(s.subs, id)
		s.subMu.Unlock()
	}
}

func (s *Synchronizer) notify() {
	s.subMu.Lock()
	fns := make([]func(), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

// Snapshot is the read surface exposed to consumers.
type Snapshot struct {
	Status    Status              `json:"status"`
	Principal *identity.Principal `json:"principal,omitempty"`
	Profile   models.UserProfile  `json:"profile"`
}

// Snapshot returns a copy of the current state. Collection slices are
// copied so consumers cannot mutate synchronizer-owned memory.
func (s *Synchronizer) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.profile
	p.Tasks = append([]models.Task(nil), p.Tasks...)
	p.Goals = append([]models.Goal(nil), p.Goals...)
	p.HealthMetrics = append([]models.HealthMetric(nil), p.HealthMetrics...)
	p.Symptoms = append([]models.SymptomLog(nil), p.Symptoms...)
	p.DiaryEntries = append([]models.DiaryEntry(nil), p.DiaryEntries...)
	p.ChatHistory = append([]models.ChatMessage(nil), p.ChatHistory...)
	var principal *identity.Principal
	if s.principal != nil {
		cp := *s.principal
		principal = &cp
	}
	return Snapshot{Status: s.status, Principal: principal, Profile: p}
}

// Status returns the current session state.
func (s *Synchronizer) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}
