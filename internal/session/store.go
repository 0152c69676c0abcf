package session

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dalfonso89/currency-converter/internal/converter"
	"github.com/dalfonso89/currency-converter/internal/logger"
)

// ErrSessionNotFound is returned for unknown or expired session ids
var ErrSessionNotFound = errors.New("session not found")

// Session is one remote converter screen
type Session struct {
	ID        uuid.UUID
	Form      *converter.Form
	CreatedAt time.Time

	mu       sync.Mutex
	lastSeen time.Time
}

// LastSeen returns when the session was last used
func (session *Session) LastSeen() time.Time {
	session.mu.Lock()
	defer session.mu.Unlock()
	return session.lastSeen
}

func (session *Session) touch(now time.Time) {
	session.mu.Lock()
	session.lastSeen = now
	session.mu.Unlock()
}

// Store keeps form sessions in memory and drops the idle ones
type Store struct {
	engine *converter.Engine
	logger *logger.Logger
	ttl    time.Duration
	now    func() time.Time

	sessions      map[uuid.UUID]*Session
	sessionsMutex sync.RWMutex

	// Cleanup goroutine control
	cleanupTicker *time.Ticker
	stopCleanup   chan struct{}
	stopOnce      sync.Once
}

// NewStore creates a store and starts sweeping sessions idle for longer than ttl
func NewStore(engine *converter.Engine, ttl time.Duration, logger *logger.Logger) *Store {
	sweepEvery := ttl / 2
	if sweepEvery <= 0 {
		sweepEvery = time.Minute
	}

	store := &Store{
		engine:        engine,
		logger:        logger,
		ttl:           ttl,
		now:           time.Now,
		sessions:      make(map[uuid.UUID]*Session),
		cleanupTicker: time.NewTicker(sweepEvery),
		stopCleanup:   make(chan struct{}),
	}

	go store.cleanup()

	return store
}

// Create opens a session with an empty form
func (store *Store) Create() *Session {
	now := store.now()
	session := &Session{
		ID:        uuid.New(),
		Form:      converter.NewForm(store.engine),
		CreatedAt: now,
		lastSeen:  now,
	}

	store.sessionsMutex.Lock()
	store.sessions[session.ID] = session
	store.sessionsMutex.Unlock()

	store.logger.Debugf("Created form session %s", session.ID)
	return session
}

// Get returns a live session and marks it as used
func (store *Store) Get(id uuid.UUID) (*Session, error) {
	store.sessionsMutex.RLock()
	session, exists := store.sessions[id]
	store.sessionsMutex.RUnlock()

	if !exists {
		return nil, ErrSessionNotFound
	}

	session.touch(store.now())
	return session, nil
}

// Delete tears a session down
func (store *Store) Delete(id uuid.UUID) error {
	store.sessionsMutex.Lock()
	session, exists := store.sessions[id]
	delete(store.sessions, id)
	store.sessionsMutex.Unlock()

	if !exists {
		return ErrSessionNotFound
	}

	session.Form.Reset()
	store.logger.Debugf("Deleted form session %s", id)
	return nil
}

// Len returns the number of live sessions
func (store *Store) Len() int {
	store.sessionsMutex.RLock()
	defer store.sessionsMutex.RUnlock()
	return len(store.sessions)
}

// Sweep removes sessions idle for longer than the ttl and returns how many went
func (store *Store) Sweep() int {
	if store.ttl <= 0 {
		return 0
	}

	currentTime := store.now()
	var expired []*Session

	store.sessionsMutex.Lock()
	for id, session := range store.sessions {
		if currentTime.Sub(session.LastSeen()) > store.ttl {
			delete(store.sessions, id)
			expired = append(expired, session)
		}
	}
	store.sessionsMutex.Unlock()

	// Reset outside the lock, observers may call back into the store
	for _, session := range expired {
		session.Form.Reset()
	}

	if len(expired) > 0 {
		store.logger.Infof("Expired %d idle form sessions", len(expired))
	}
	return len(expired)
}

func (store *Store) cleanup() {
	for {
		select {
		case <-store.cleanupTicker.C:
			store.Sweep()
		case <-store.stopCleanup:
			store.cleanupTicker.Stop()
			return
		}
	}
}

// Stop stops the cleanup goroutine
func (store *Store) Stop() {
	store.stopOnce.Do(func() {
		close(store.stopCleanup)
	})
}
