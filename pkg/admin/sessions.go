package admin

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	sessionCookie = "fileconvertor_session"
	sessionTTL    = 12 * time.Hour
)

// flash is a one-shot notice shown on the next page load
type flash struct {
	Kind string
	Text string
}

type session struct {
	expires time.Time
	flashes []flash
}

// sessionStore keeps logged-in console sessions in memory
type sessionStore struct {
	mu       sync.Mutex
	sessions map[string]*session
	now      func() time.Time
}

func newSessionStore() *sessionStore {
	return &sessionStore{sessions: make(map[string]*session), now: time.Now}
}

// create starts a session and sets its cookie
func (s *sessionStore) create(w http.ResponseWriter, r *http.Request) {
	token := uuid.NewString()

	s.mu.Lock()
	s.sessions[token] = &session{expires: s.now().Add(sessionTTL)}
	s.mu.Unlock()

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(sessionTTL.Seconds()),
		HttpOnly: true,
		Secure:   r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https",
		SameSite: http.SameSiteLaxMode,
	})
}

// valid reports whether the request carries a live session
func (s *sessionStore) valid(r *http.Request) bool {
	_, ok := s.lookup(r)
	return ok
}

func (s *sessionStore) lookup(r *http.Request) (string, bool) {
	c, err := r.Cookie(sessionCookie)
	if err != nil {
		return "", false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[c.Value]
	if !ok {
		return "", false
	}
	if s.now().After(sess.expires) {
		delete(s.sessions, c.Value)
		return "", false
	}
	return c.Value, true
}

// destroy ends the request's session and clears the cookie
func (s *sessionStore) destroy(w http.ResponseWriter, r *http.Request) {
	if token, ok := s.lookup(r); ok {
		s.mu.Lock()
		delete(s.sessions, token)
		s.mu.Unlock()
	}
	http.SetCookie(w, &http.Cookie{Name: sessionCookie, Value: "", Path: "/", MaxAge: -1, HttpOnly: true})
}

// addFlash queues a notice for the request's session
func (s *sessionStore) addFlash(r *http.Request, kind, text string) {
	token, ok := s.lookup(r)
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[token]; ok {
		sess.flashes = append(sess.flashes, flash{Kind: kind, Text: text})
	}
}

// popFlashes returns and clears the session's notices
func (s *sessionStore) popFlashes(r *http.Request) []flash {
	token, ok := s.lookup(r)
	if !ok {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[token]
	if !ok {
		return nil
	}
	out := sess.flashes
	sess.flashes = nil
	return out
}
