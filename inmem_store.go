/*

An in-memory session store implementation.

*/

package session

import (
	"log/slog"
	"sync"
	"time"
)

// In-memory session Store implementation.
type inMemStore struct {
	sessions    map[string]Session // Map of sessions (mapped from ID)
	mux         sync.RWMutex       // mutex to synchronize access to sessions
	closeTicker chan struct{}      // Channel to signal close for the session cleaner
	closeOnce   sync.Once          // Close may be called multiple times
	logger      *slog.Logger
}

// InMemStoreOptions defines options that may be passed when creating a new in-memory Store.
// All fields are optional; default value will be used for any field that has the zero value.
type InMemStoreOptions struct {
	// Session cleaner check interval, default is 10 seconds.
	SessCleanerInterval time.Duration

	// Logger to use; default is slog.Default().
	Logger *slog.Logger
}

// Pointer to zero value of InMemStoreOptions to be reused for efficiency.
var zeroInMemStoreOptions = new(InMemStoreOptions)

// NewInMemStore returns a new, in-memory session Store with the default options.
// Default values of options are listed in the InMemStoreOptions type.
// The returned Store has an automatic session cleaner which runs
// in its own goroutine.
func NewInMemStore() Store {
	return NewInMemStoreOptions(zeroInMemStoreOptions)
}

// NewInMemStoreOptions returns a new, in-memory session Store with the specified options.
// The returned Store has an automatic session cleaner which runs
// in its own goroutine.
func NewInMemStoreOptions(o *InMemStoreOptions) Store {
	s := &inMemStore{
		sessions:    make(map[string]Session),
		closeTicker: make(chan struct{}),
		logger:      o.Logger,
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}

	interval := o.SessCleanerInterval
	if interval == 0 {
		interval = 10 * time.Second
	}

	go s.sessCleaner(interval)

	return s
}

// sessCleaner periodically checks whether sessions have timed out
// in an endless loop. If a session has timed out, removes it.
// This method is to be started as a new goroutine.
func (s *inMemStore) sessCleaner(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.closeTicker:
			// We are being shut down...
			return
		case now := <-ticker.C:
			// Do a sweep.
			// Remove is very rare compared to the number of checks, so:
			// "Quick" check with read-lock to see if there's anything to remove:
			if !s.hasExpired(now) {
				continue
			}
			s.removeExpired(now)
		}
	}
}

func (s *inMemStore) hasExpired(now time.Time) bool {
	s.mux.RLock() // Read lock is enough
	defer s.mux.RUnlock()

	for _, sess := range s.sessions {
		if now.Sub(sess.Accessed()) > sess.Timeout() {
			return true
		}
	}
	return false
}

func (s *inMemStore) removeExpired(now time.Time) {
	s.mux.Lock() // Read-write lock required
	defer s.mux.Unlock()

	for id, sess := range s.sessions {
		if now.Sub(sess.Accessed()) > sess.Timeout() {
			s.logger.Info("Session timed out", "id", id)
			delete(s.sessions, id)
		}
	}
}

// Load is to implement Store.Load().
func (s *inMemStore) Load(id string) Session {
	s.mux.RLock()
	defer s.mux.RUnlock()

	sess := s.sessions[id]
	if sess == nil {
		return nil
	}

	sess.Access()
	return sess
}

// Save is to implement Store.Save().
func (s *inMemStore) Save(sess Session) error {
	s.mux.Lock()
	defer s.mux.Unlock()

	if _, ok := s.sessions[sess.ID()]; !ok {
		s.logger.Debug("Session added", "id", sess.ID())
	}
	s.sessions[sess.ID()] = sess
	return nil
}

// Remove is to implement Store.Remove().
func (s *inMemStore) Remove(sess Session) {
	s.mux.Lock()
	defer s.mux.Unlock()

	s.logger.Debug("Session removed", "id", sess.ID())
	delete(s.sessions, sess.ID())
}

// Close is to implement Store.Close().
func (s *inMemStore) Close() {
	s.closeOnce.Do(func() { close(s.closeTicker) })
}
