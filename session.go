/*

Session interface and its implementation.

*/

package session

import (
	"crypto/rand"
	"encoding/base64"
	"io"
	"sync"
	"time"
)

// Session is the server side state of a client's HTTP session:
// a set of attributes, and the times needed to expire it.
// This is what a RequestHost stores the values of a Manager in.
type Session interface {
	// ID returns the id of the session.
	ID() string

	// New tells if the session is new.
	// Implementation is based on whether created and access times are equal.
	New() bool

	// Attr returns the value of an attribute stored in the session, and whether it is present.
	// Safe for concurrent use.
	Attr(name string) (interface{}, bool)

	// SetAttr sets the value of an attribute stored in the session.
	// Safe for concurrent use.
	SetAttr(name string, value interface{})

	// DeleteAttr deletes an attribute stored in the session.
	// Safe for concurrent use.
	DeleteAttr(name string)

	// ClearAttrs deletes all attributes stored in the session.
	// Safe for concurrent use.
	ClearAttrs()

	// Attrs returns a copy of all the attribute values stored in the session.
	// Safe for concurrent use.
	Attrs() map[string]interface{}

	// Created returns the session creation time.
	Created() time.Time

	// Accessed returns the time when the session was last accessed.
	Accessed() time.Time

	// Timeout returns the session timeout.
	// A session may be removed automatically if it is not accessed for this duration.
	Timeout() time.Duration

	// SetTimeout changes the session timeout.
	SetTimeout(timeout time.Duration)

	// Access registers an access to the session.
	// Users do not need to call this as the session store is responsible for that.
	Access()
}

// Session implementation.
type sessionImpl struct {
	id       string                 // ID of the session
	created  time.Time              // Creation time
	accessed time.Time              // Last accessed time
	attrs    map[string]interface{} // Attributes stored in the session
	timeout  time.Duration          // Session timeout
	mux      sync.RWMutex           // RW mutex to synchronize session state access
}

// SessOptions defines options that may be passed when creating a new Session.
// All fields are optional; default value will be used for any field that has the zero value.
type SessOptions struct {
	// Initial attributes to be stored in the session.
	// Values from the map will be copied.
	Attrs map[string]interface{}

	// Session timeout, default is 30 minutes
	Timeout time.Duration

	// Byte-length of the information that builds up the session ids.
	// Using Base-64 encoding id string will be up to this multiplied by 4/3 chars.
	// Default value is 18.
	IDLength int
}

// NewSession creates a new Session with the default options.
// Default options are listed in the SessOptions type.
func NewSession() Session {
	return NewSessionOptions(&SessOptions{})
}

// NewSessionOptions creates a new Session with the specified options.
func NewSessionOptions(o *SessOptions) Session {
	now := time.Now()
	idLength := o.IDLength
	if idLength == 0 {
		idLength = 18
	}
	timeout := o.Timeout
	if timeout == 0 {
		timeout = 30 * time.Minute
	}

	sess := restoreSession(genID(idLength), now, now, timeout, nil)
	for k, v := range o.Attrs {
		sess.attrs[k] = v
	}

	return sess
}

// restoreSession returns a session with the given state, e.g. one loaded from a persistent Store.
func restoreSession(id string, created, accessed time.Time, timeout time.Duration, attrs map[string]interface{}) *sessionImpl {
	if attrs == nil {
		attrs = make(map[string]interface{})
	}
	return &sessionImpl{
		id:       id,
		created:  created,
		accessed: accessed,
		attrs:    attrs,
		timeout:  timeout,
	}
}

// genID generates a secure, random session id using the crypto/rand package.
func genID(length int) string {
	r := make([]byte, length)
	io.ReadFull(rand.Reader, r)
	return base64.RawURLEncoding.EncodeToString(r)
}

func (s *sessionImpl) ID() string {
	return s.id
}

func (s *sessionImpl) New() bool {
	s.mux.RLock()
	defer s.mux.RUnlock()

	return s.created.Equal(s.accessed)
}

func (s *sessionImpl) Attr(name string) (interface{}, bool) {
	s.mux.RLock()
	defer s.mux.RUnlock()

	v, ok := s.attrs[name]
	return v, ok
}

func (s *sessionImpl) SetAttr(name string, value interface{}) {
	s.mux.Lock()
	defer s.mux.Unlock()

	s.attrs[name] = value
}

func (s *sessionImpl) DeleteAttr(name string) {
	s.mux.Lock()
	defer s.mux.Unlock()

	delete(s.attrs, name)
}

func (s *sessionImpl) ClearAttrs() {
	s.mux.Lock()
	defer s.mux.Unlock()

	s.attrs = make(map[string]interface{})
}

func (s *sessionImpl) Attrs() map[string]interface{} {
	s.mux.RLock()
	defer s.mux.RUnlock()

	m := make(map[string]interface{}, len(s.attrs))
	for k, v := range s.attrs {
		m[k] = v
	}
	return m
}

func (s *sessionImpl) Created() time.Time {
	return s.created
}

func (s *sessionImpl) Accessed() time.Time {
	s.mux.RLock()
	defer s.mux.RUnlock()

	return s.accessed
}

func (s *sessionImpl) Timeout() time.Duration {
	s.mux.RLock()
	defer s.mux.RUnlock()

	return s.timeout
}

func (s *sessionImpl) SetTimeout(timeout time.Duration) {
	s.mux.Lock()
	defer s.mux.Unlock()

	s.timeout = timeout
}

func (s *sessionImpl) Access() {
	s.mux.Lock()
	defer s.mux.Unlock()

	s.accessed = time.Now()
}
