package apiclient

import "sync"

// Session holds the bearer credential for authenticated calls. It is passed
// explicitly to the client constructor; nothing in the package mutates global
// state on login or logout.
type Session struct {
	mu    sync.Mutex
	token string
	role  string
}

func NewSession() *Session { return &Session{} }

func (s *Session) Set(token, role string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.role = role
}

func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.role = ""
}

func (s *Session) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

func (s *Session) Role() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.role
}

func (s *Session) Authenticated() bool { return s.Token() != "" }
