// File: internal/session/store.go
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Identity is the slice of the Firebase account the gateway keeps with a
// session. The authoritative profile (role, coin balance) lives upstream and
// is resolved separately.
type Identity struct {
	FirebaseUID string `json:"firebase_uid"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name,omitempty"`
	PhotoURL    string `json:"photo_url,omitempty"`
}

// Session is the browser session held by the gateway. IdentityToken is the
// short-lived Firebase ID token from the most recent mint; callers must not
// treat it as fresh; the upstream client re-mints before every send.
type Session struct {
	ID            string
	Identity      Identity
	IdentityToken string
	RefreshToken  string
	TokenExpiry   time.Time
	CreatedAt     time.Time
	ExpiresAt     time.Time
}

// Expired reports whether the session itself (not the identity token) has
// outlived its TTL.
func (s *Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

// Event describes a change to the store.
type Event int

const (
	EventCreated Event = iota
	EventUpdated
	EventDestroyed
)

// Listener observes session lifecycle changes. The session passed in is a
// copy; listeners cannot mutate store state through it.
type Listener func(Event, Session)

// Store is the injectable session store contract. There is exactly one
// implementation in production (in-memory); tests substitute their own.
type Store interface {
	Create(identity Identity, idToken, refreshToken string, tokenExpiry time.Time) *Session
	Get(id string) (*Session, bool)
	UpdateTokens(id, idToken, refreshToken string, tokenExpiry time.Time) bool
	Destroy(id string) bool
	Subscribe(l Listener) (unsubscribe func())
	SweepExpired(now time.Time) int
}

// MemoryStore keeps sessions in process memory. Durable state never lives
// here; losing the process just signs everyone out.
type MemoryStore struct {
	mu        sync.RWMutex
	ttl       time.Duration
	sessions  map[string]*Session
	listeners map[int]Listener
	nextSub   int
	logger    *zap.Logger
}

// NewMemoryStore creates a session store with the given TTL.
func NewMemoryStore(ttl time.Duration, logger *zap.Logger) *MemoryStore {
	return &MemoryStore{
		ttl:       ttl,
		sessions:  make(map[string]*Session),
		listeners: make(map[int]Listener),
		logger:    logger.Named("SessionStore"),
	}
}

var _ Store = (*MemoryStore)(nil)

// Create mints a new session with a fresh opaque ID.
func (m *MemoryStore) Create(identity Identity, idToken, refreshToken string, tokenExpiry time.Time) *Session {
	now := time.Now()
	s := &Session{
		ID:            uuid.NewString(),
		Identity:      identity,
		IdentityToken: idToken,
		RefreshToken:  refreshToken,
		TokenExpiry:   tokenExpiry,
		CreatedAt:     now,
		ExpiresAt:     now.Add(m.ttl),
	}

	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()

	m.logger.Debug("Session created", zap.String("email", identity.Email))
	m.notify(EventCreated, *s)
	copied := *s
	return &copied
}

// Get returns a copy of the session, or false if it does not exist or has
// expired. Expired sessions are destroyed on access.
func (m *MemoryStore) Get(id string) (*Session, bool) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	if ok {
		copied := *s
		m.mu.RUnlock()
		if copied.Expired(time.Now()) {
			m.Destroy(id)
			return nil, false
		}
		return &copied, true
	}
	m.mu.RUnlock()
	return nil, false
}

// UpdateTokens records the latest minted identity token. Concurrent mints
// race freely; last write wins, which is fine because every token written
// here was valid when written.
func (m *MemoryStore) UpdateTokens(id, idToken, refreshToken string, tokenExpiry time.Time) bool {
	m.mu.Lock()
	s, ok := m.sessions[id]
	if !ok {
		m.mu.Unlock()
		return false
	}
	s.IdentityToken = idToken
	if refreshToken != "" {
		s.RefreshToken = refreshToken
	}
	s.TokenExpiry = tokenExpiry
	copied := *s
	m.mu.Unlock()

	m.notify(EventUpdated, copied)
	return true
}

// Destroy removes the session. The boolean return is the idempotency anchor
// for forced sign-out: only the caller that actually removed the session
// should trigger side effects like token revocation.
func (m *MemoryStore) Destroy(id string) bool {
	m.mu.Lock()
	s, ok := m.sessions[id]
	if ok {
		delete(m.sessions, id)
	}
	m.mu.Unlock()

	if ok {
		m.logger.Debug("Session destroyed", zap.String("email", s.Identity.Email))
		m.notify(EventDestroyed, *s)
	}
	return ok
}

// Subscribe registers a listener for session lifecycle events.
func (m *MemoryStore) Subscribe(l Listener) func() {
	m.mu.Lock()
	id := m.nextSub
	m.nextSub++
	m.listeners[id] = l
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		delete(m.listeners, id)
		m.mu.Unlock()
	}
}

// SweepExpired removes sessions past their TTL and returns how many went.
func (m *MemoryStore) SweepExpired(now time.Time) int {
	m.mu.Lock()
	var expired []Session
	for id, s := range m.sessions {
		if s.Expired(now) {
			expired = append(expired, *s)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	for _, s := range expired {
		m.notify(EventDestroyed, s)
	}
	if len(expired) > 0 {
		m.logger.Info("Expired sessions swept", zap.Int("count", len(expired)))
	}
	return len(expired)
}

func (m *MemoryStore) notify(ev Event, s Session) {
	m.mu.RLock()
	ls := make([]Listener, 0, len(m.listeners))
	for _, l := range m.listeners {
		ls = append(ls, l)
	}
	m.mu.RUnlock()

	for _, l := range ls {
		l(ev, s)
	}
}
