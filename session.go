// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package coord

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultSessionTTL is the default inactivity threshold after which a
// session is considered expired.
const DefaultSessionTTL = 30 * time.Minute

// SessionStore is the process-wide store of handshake sessions, keyed by
// session id.
//
// Expiry is lazy: sessions are checked against the inactivity TTL on read
// and there is no background sweep. Expired sessions stay retrievable by
// id for diagnostics but are excluded from ListActive. All operations are
// safe for concurrent use.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	// now is the clock; replaced in tests.
	now func() time.Time
}

// NewSessionStore creates an empty SessionStore.
func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*Session),
		now:      time.Now,
	}
}

// Create establishes a new session between two agents with a fresh
// session id and both timestamps set to now. The descriptors are
// snapshotted: later registry mutation does not flow into the session.
func (s *SessionStore) Create(initiator, responder *AgentInfo) *Session {
	return s.CreateWithID(uuid.NewString(), initiator, responder)
}

// CreateWithID establishes a session under an externally issued id. The
// initiating side of a handshake uses it to adopt the session id minted
// by the responder.
func (s *SessionStore) CreateWithID(sessionID string, initiator, responder *AgentInfo) *Session {
	now := s.now().UTC()
	sess := &Session{
		SessionID:     sessionID,
		Initiator:     initiator.clone(),
		Responder:     responder.clone(),
		EstablishedAt: now,
		LastActivity:  now,
	}

	s.mu.Lock()
	s.sessions[sess.SessionID] = sess
	s.mu.Unlock()

	return sess.clone()
}

// Touch updates the session's last-activity timestamp to now. It returns
// a [SessionNotFoundError] for unknown ids. Touching an expired session
// revives it: expiry is relative to last activity only.
func (s *SessionStore) Touch(sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		return &SessionNotFoundError{SessionID: sessionID}
	}

	now := s.now().UTC()
	// last_activity is monotonically non-decreasing.
	if now.After(sess.LastActivity) {
		sess.LastActivity = now
	}
	return nil
}

// Get returns a copy of the session for the given id. When the session
// has been inactive longer than ttl, the stale copy is returned together
// with a [SessionExpiredError] so diagnostic callers can still inspect it.
func (s *SessionStore) Get(sessionID string, ttl time.Duration) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		return nil, &SessionNotFoundError{SessionID: sessionID}
	}
	if sess.Expired(s.now().UTC(), ttl) {
		return sess.clone(), &SessionExpiredError{
			SessionID:    sessionID,
			LastActivity: sess.LastActivity,
		}
	}
	return sess.clone(), nil
}

// ListActive returns copies of all sessions whose last activity is within
// ttl of now.
func (s *SessionStore) ListActive(ttl time.Duration) []*Session {
	s.mu.RLock()
	defer s.mu.RUnlock()

	now := s.now().UTC()
	out := make([]*Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		if !sess.Expired(now, ttl) {
			out = append(out, sess.clone())
		}
	}
	return out
}

// Remove deletes the session for the given id. Removing an unknown id is
// a no-op.
func (s *SessionStore) Remove(sessionID string) {
	s.mu.Lock()
	delete(s.sessions, sessionID)
	s.mu.Unlock()
}

// Len returns the number of stored sessions, expired ones included.
func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
