package bot

import (
	"sync"
	"time"

	"github.com/GSKISBOT/fileconvertor/pkg/core"
	"github.com/GSKISBOT/fileconvertor/pkg/types"
)

// Session is one user's conversation state
type Session struct {
	Mode     types.Mode
	Job      *core.TranslationJob
	LastSeen time.Time
}

// SessionStore holds sessions by user id
type SessionStore struct {
	mu       sync.Mutex
	sessions map[int64]*Session
	now      func() time.Time
}

// NewSessionStore creates an empty store
func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[int64]*Session),
		now:      time.Now,
	}
}

// Mode returns the user's selected mode
func (s *SessionStore) Mode(userID int64) types.Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[userID]; ok {
		return sess.Mode
	}
	return types.ModeNone
}

// SetMode selects a mode and drops any pending translation
func (s *SessionStore) SetMode(userID int64, mode types.Mode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.get(userID)
	if sess.Job != nil {
		sess.Job.Discard()
		sess.Job = nil
	}
	sess.Mode = mode
}

// ReplaceJob installs job as the user's pending translation, discarding the previous one
func (s *SessionStore) ReplaceJob(userID int64, job *core.TranslationJob) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.get(userID)
	if sess.Job != nil && sess.Job != job {
		sess.Job.Discard()
	}
	sess.Job = job
}

// Job returns the user's pending translation, if any
func (s *SessionStore) Job(userID int64) *core.TranslationJob {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[userID]; ok {
		sess.LastSeen = s.now()
		return sess.Job
	}
	return nil
}

// ClearJob forgets job if it is still the user's current one
func (s *SessionStore) ClearJob(userID int64, job *core.TranslationJob) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[userID]; ok && sess.Job == job {
		sess.Job = nil
	}
}

// Sweep drops sessions idle for longer than maxAge and returns how many
func (s *SessionStore) Sweep(maxAge time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	cutoff := s.now().Add(-maxAge)
	removed := 0
	for id, sess := range s.sessions {
		if sess.LastSeen.Before(cutoff) {
			if sess.Job != nil {
				sess.Job.Discard()
			}
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

// Len returns the number of live sessions
func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// get returns the session for userID, creating it. Callers hold mu.
func (s *SessionStore) get(userID int64) *Session {
	sess, ok := s.sessions[userID]
	if !ok {
		sess = &Session{}
		s.sessions[userID] = sess
	}
	sess.LastSeen = s.now()
	return sess
}
