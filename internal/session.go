package internal

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Session holds the state of one summarize-then-ask conversation. A zero value is
// an empty session.
type Session struct {
	mu       sync.RWMutex
	summary  string
	videoURL string
	videoID  string
	title    string
	language string
}

// NewSession creates an empty session
func NewSession() *Session {
	return &Session{}
}

// Summary returns the stored summary, empty before the first summarization
func (s *Session) Summary() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.summary
}

// HasSummary reports whether a summary has been stored
func (s *Session) HasSummary() bool {
	return s.Summary() != ""
}

// VideoURL returns the URL of the summarized video
func (s *Session) VideoURL() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.videoURL
}

// VideoID returns the ID of the summarized video
func (s *Session) VideoID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.videoID
}

// Title returns the video title when metadata was available
func (s *Session) Title() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.title
}

// Language returns the transcript language the summary was built from
func (s *Session) Language() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.language
}

// store replaces the summary and its provenance in one step
func (s *Session) store(summary, videoURL string, transcript *Transcript, title string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.summary = summary
	s.videoURL = videoURL
	s.title = title
	s.videoID = ""
	s.language = ""
	if transcript != nil {
		s.videoID = transcript.VideoID
		s.language = transcript.Language
	}
}

// DefaultSessionTTL is how long an unused web session is kept
const DefaultSessionTTL = 24 * time.Hour

type storedSession struct {
	sess     *Session
	lastSeen time.Time
}

// SessionStore keeps one session per browser for the web front-end. Sessions
// idle for longer than the TTL are dropped.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]*storedSession
	ttl      time.Duration
	now      func() time.Time
}

// NewSessionStore creates an empty in-memory store with DefaultSessionTTL
func NewSessionStore() *SessionStore {
	return NewSessionStoreTTL(DefaultSessionTTL)
}

// NewSessionStoreTTL creates an empty in-memory store that drops sessions idle for ttl
func NewSessionStoreTTL(ttl time.Duration) *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*storedSession),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Lookup returns the live session for id and marks it as used
func (st *SessionStore) Lookup(id string) (*Session, bool) {
	if id == "" {
		return nil, false
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	st.prune()

	entry, ok := st.sessions[id]
	if !ok {
		return nil, false
	}
	entry.lastSeen = st.now()
	return entry.sess, true
}

// Add stores sess under a fresh ID and returns the ID to hand back to the browser
func (st *SessionStore) Add(sess *Session) string {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.prune()

	id := uuid.NewString()
	st.sessions[id] = &storedSession{sess: sess, lastSeen: st.now()}
	return id
}

// Len returns the number of live sessions
func (st *SessionStore) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.prune()
	return len(st.sessions)
}

// prune drops expired sessions; st.mu must be held
func (st *SessionStore) prune() {
	if st.ttl <= 0 {
		return
	}
	cutoff := st.now().Add(-st.ttl)
	for id, entry := range st.sessions {
		if entry.lastSeen.Before(cutoff) {
			delete(st.sessions, id)
		}
	}
}
