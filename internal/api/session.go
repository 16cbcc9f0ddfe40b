package api

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
)

const sessionCookie = "journal_session"

const sessionKey contextKey = "session"

// DefaultSessionTTL is how long an untouched session is kept.
const DefaultSessionTTL = 24 * time.Hour

// Session is per-browser state held in memory only. It is lost on restart.
// A session made for a request without a cookie is not stored until
// something is written to it.
type Session struct {
	ID string

	mu            sync.Mutex
	authenticated bool
	notice        string
	errMsg        string
	lastSeen      time.Time
	persist       func(*Session)
}

func (s *Session) Authenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.authenticated
}

func (s *Session) SetAuthenticated(v bool) {
	s.mu.Lock()
	s.authenticated = v
	s.mu.Unlock()
	s.save()
}

// Flash stores a message for the next page render.
func (s *Session) Flash(notice, errMsg string) {
	s.mu.Lock()
	s.notice, s.errMsg = notice, errMsg
	s.mu.Unlock()
	s.save()
}

// TakeFlash returns and clears the stored messages.
func (s *Session) TakeFlash() (notice, errMsg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	notice, errMsg = s.notice, s.errMsg
	s.notice, s.errMsg = "", ""
	return notice, errMsg
}

func (s *Session) save() {
	s.mu.Lock()
	persist := s.persist
	s.persist = nil
	s.mu.Unlock()
	if persist != nil {
		persist(s)
	}
}

// SessionStore keeps sessions keyed by cookie value. Sessions idle for
// longer than the TTL are dropped.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]*Session
	ttl      time.Duration
	now      func() time.Time
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*Session),
		ttl:      DefaultSessionTTL,
		now:      time.Now,
	}
}

// SetClock replaces the time source used for expiry.
func (st *SessionStore) SetClock(now func() time.Time) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.now = now
}

// Get returns a live session and marks it as seen.
func (st *SessionStore) Get(id string) (*Session, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	s, ok := st.sessions[id]
	if !ok {
		return nil, false
	}
	now := st.now()
	if now.Sub(s.lastSeen) > st.ttl {
		delete(st.sessions, id)
		return nil, false
	}
	s.lastSeen = now
	return s, true
}

// Create stores a new session.
func (st *SessionStore) Create() *Session {
	s := &Session{ID: uuid.New().String()}
	st.add(s)
	return s
}

func (st *SessionStore) add(s *Session) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.sweep()
	s.lastSeen = st.now()
	st.sessions[s.ID] = s
}

// sweep drops expired sessions. The caller holds st.mu.
func (st *SessionStore) sweep() {
	now := st.now()
	for id, s := range st.sessions {
		if now.Sub(s.lastSeen) > st.ttl {
			delete(st.sessions, id)
		}
	}
}

func (st *SessionStore) Delete(id string) {
	st.mu.Lock()
	delete(st.sessions, id)
	st.mu.Unlock()
}

// Len returns the number of stored sessions.
func (st *SessionStore) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}

func setSessionCookie(w http.ResponseWriter, id string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// Sessions loads the caller's session and puts it in the request context.
// Without a known cookie the request gets a blank session that is stored,
// and its cookie set, on the first write.
func Sessions(store *SessionStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var sess *Session
			if c, err := r.Cookie(sessionCookie); err == nil {
				sess, _ = store.Get(c.Value)
			}
			if sess == nil {
				sess = &Session{persist: func(s *Session) {
					s.ID = uuid.New().String()
					store.add(s)
					setSessionCookie(w, s.ID)
				}}
			}
			ctx := context.WithValue(r.Context(), sessionKey, sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetSession returns the session placed in the context by Sessions.
func GetSession(r *http.Request) *Session {
	if s, ok := r.Context().Value(sessionKey).(*Session); ok {
		return s
	}
	return &Session{}
}
