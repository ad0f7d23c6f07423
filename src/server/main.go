// Package server is the process composition root: it owns the registry of
// connected device sessions and the background runtime monitor.
package server

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/nauticore/shearwater-driver/src/shearwater-driver/session"
)

// Server owns every session currently connected to a device, keyed by BLE
// address.
type Server struct {
	log *logrus.Entry

	mu       sync.Mutex
	sessions map[string]*session.Session
}

// New returns a Server and starts its background runtime monitor.
func New(log *logrus.Entry) *Server {
	s := &Server{
		log:      log,
		sessions: make(map[string]*session.Session),
	}
	go startMonitor(log, s.SessionCount)
	return s
}

// Register tracks sess under address, replacing and closing any prior
// session at that address.
func (s *Server) Register(address string, sess *session.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if prior, ok := s.sessions[address]; ok {
		s.log.WithField("address", address).Info("replacing existing session")
		go prior.Close(context.Background())
	}
	s.sessions[address] = sess
}

// Unregister removes the session at address, if any.
func (s *Server) Unregister(address string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, address)
}

// SessionCount reports how many sessions are currently registered.
func (s *Server) SessionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
