package client

import "sync"

// Session holds the process-wide client state: the bearer credential and the
// identifier of the most recently submitted batch. Both are single values
// with last-writer-wins semantics; everything else in the SDK only reads
// them. Initialized at login, cleared at logout.
type Session struct {
	mu          sync.Mutex
	token       string
	lastBatchID string
}

func NewSession() *Session {
	return &Session{}
}

func (s *Session) SetToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
}

func (s *Session) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// SetLastBatchID records the most recent successful submission. The backend
// remains the source of truth for the full batch list.
func (s *Session) SetLastBatchID(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastBatchID = id
}

func (s *Session) LastBatchID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastBatchID
}

// Clear drops both the credential and the last-batch pointer.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.lastBatchID = ""
}
