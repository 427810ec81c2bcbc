// Package session owns the admin token and connectivity state of a control panel
// instance and drives prompt, re-authentication and offline recovery.
package session

import (
	"strings"
	"sync"
)

// Session is the in-memory credential and connectivity state. It is never persisted:
// every process start begins with an empty token and offline=false.
// Only the Controller mutates it.
type Session struct {
	mu      sync.RWMutex
	token   string
	offline bool
}

// New returns an empty session
func New() *Session {
	return &Session{}
}

// Token returns the current bearer token, empty when none is held
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Offline reports whether the last connectivity check failed
func (s *Session) Offline() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.offline
}

func (s *Session) setToken(t string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = strings.TrimSpace(t)
}

// clearToken reports whether a token was held
func (s *Session) clearToken() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	had := s.token != ""
	s.token = ""
	return had
}

// setOffline reports whether the flag changed
func (s *Session) setOffline(v bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	changed := s.offline != v
	s.offline = v
	return changed
}
