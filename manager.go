/*

Timed session Manager: keyed access to the host session scope,
guarded by an idle timeout check.

*/

package session

import (
	"fmt"
	"log/slog"
	"reflect"
	"sync"
	"time"
)

// Keys the Manager maintains in the host session scope.
const (
	KeySessionID    = "session_id"    // Host-assigned session id, string
	KeySessionTime  = "session_time"  // Idle timeout in minutes, int
	KeySessionStart = "session_start" // Time of the last renewal, time.Time
)

// DefaultTimeoutMinutes is the idle timeout used when none (or a non-positive one) is given.
const DefaultTimeoutMinutes = 1

// ElapsedMode tells how the time elapsed since the last renewal is measured.
type ElapsedMode int

const (
	// CalendarMinutes counts the minute boundaries crossed since the last renewal:
	// both timestamps are truncated to the minute before subtracting.
	// A session renewed at 10:00:59 and checked at 10:01:01 is 1 minute old.
	CalendarMinutes ElapsedMode = iota

	// Continuous compares the exact elapsed duration to the timeout.
	Continuous
)

// Options defines options that may be passed when creating a Manager.
// All fields are optional; default value will be used for any field that has the zero value.
type Options struct {
	// Idle timeout in minutes stored in a newly initialized session; default is 1.
	Timeout int

	// Clock used for timeout checks; default is time.Now.
	Now func() time.Time

	// How elapsed time is measured; default is CalendarMinutes.
	Elapsed ElapsedMode

	// If true, Set only rejects nil values; by default empty values
	// (0, "", "0", false, nil pointers, empty slices and maps...) are rejected too.
	// Struct values are never empty.
	AllowEmptyValues bool

	// Logger to use; default is slog.Default().
	Logger *slog.Logger
}

// Manager gives keyed access to a Host session scope, and destroys the scope
// if it has not been accessed for longer than its idle timeout.
//
// A Manager is obtained from GetInstance (the process-wide instance)
// or from Bind (an instance bound to a single request).
// A Manager must not be copied or duplicated; see Clone.
type Manager struct {
	self *Manager // Used to detect copies by value

	host       Host
	timeout    int
	now        func() time.Time
	elapsed    ElapsedMode
	allowEmpty bool
	logger     *slog.Logger
}

// Pointer to zero value of Options to be reused for efficiency.
var zeroOptions = new(Options)

func newManager(o *Options) *Manager {
	if o == nil {
		o = zeroOptions
	}
	m := &Manager{}
	m.self = m
	m.configure(o)
	return m
}

func (m *Manager) configure(o *Options) {
	m.timeout = o.Timeout
	if m.timeout <= 0 {
		m.timeout = DefaultTimeoutMinutes
	}
	m.now = o.Now
	if m.now == nil {
		m.now = time.Now
	}
	m.elapsed = o.Elapsed
	m.allowEmpty = o.AllowEmptyValues
	m.logger = o.Logger
	if m.logger == nil {
		m.logger = slog.Default()
	}
}

// Bind returns a new Manager bound to h. The host scope is started,
// initialized if it has no session id yet, and its timeout is verified,
// exactly like GetInstance does.
//
// Bind is meant for servers that handle requests concurrently:
// each request gets its own Manager over its own Host.
func Bind(h Host, o *Options) *Manager {
	m := newManager(o)
	m.attach(h, m.timeout)
	return m
}

// attach binds the manager to h, initializes the scope if needed and verifies its timeout.
// The check-then-act sequence is performed holding the lock of the session id,
// so overlapping requests of the same client can't interleave it.
func (m *Manager) attach(h Host, timeout int) {
	m.copyCheck()

	m.host = h
	h.Start()

	unlock := lockSession(h.ID())
	defer unlock()

	if !m.IsRegistered() {
		if timeout <= 0 {
			timeout = m.timeout
		}
		for _, kv := range []struct {
			key   string
			value interface{}
		}{{KeySessionID, h.ID()}, {KeySessionTime, timeout}, {KeySessionStart, m.now()}} {
			if err := h.Write(kv.key, kv.value); err != nil {
				m.logger.Error("Failed to initialize session", "id", h.ID(), "key", kv.key, "error", err)
			}
		}
	}

	m.verifyTimeout()
}

// verifyTimeout destroys the session if its idle time reached the timeout,
// else renews it.
func (m *Manager) verifyTimeout() {
	now := m.now()

	start, ok := m.host.Read(KeySessionStart)
	startTime, isTime := start.(time.Time)
	if !ok || !isTime {
		// A registered session always has a start time; without one we can't
		// tell its age, so it is not trusted.
		m.logger.Warn("Session has no valid start time, destroying", "id", m.SessionID())
		m.Destroy()
		return
	}

	limit, isInt := m.Get(KeySessionTime).(int)
	if !isInt || limit <= 0 {
		limit = m.timeout
	}

	if m.expired(startTime, now, limit) {
		m.logger.Info("Session timed out", "id", m.SessionID(), "timeout", limit)
		m.Destroy()
		return
	}

	m.renew(now, limit)
}

// expired tells if a session last renewed at start is expired at now, given the timeout in minutes.
func (m *Manager) expired(start, now time.Time, limit int) bool {
	if m.elapsed == Continuous {
		return now.Sub(start) >= time.Duration(limit)*time.Minute
	}
	elapsed := now.Truncate(time.Minute).Sub(start.Truncate(time.Minute)) / time.Minute
	return int(elapsed) >= limit
}

// renew resets the start time of the session.
// If the host may drop idle scopes on its own, it is told to keep this one
// for at least limit minutes (plus one, the most calendar minutes can lag behind).
func (m *Manager) renew(now time.Time, limit int) {
	if ts, ok := m.host.(IdleTimeoutSetter); ok {
		if err := ts.SetIdleTimeout(time.Duration(limit+1) * time.Minute); err != nil {
			m.logger.Error("Failed to set session idle timeout", "id", m.SessionID(), "error", err)
		}
	}
	if err := m.host.Write(KeySessionStart, now); err != nil {
		m.logger.Error("Failed to renew session", "id", m.SessionID(), "error", err)
		return
	}
	m.logger.Debug("Session renewed", "id", m.SessionID())
}

// Set stores value under key.
// ErrInvalidArgument is returned if key is empty, or if value is empty.
// Unless Options.AllowEmptyValues is set, values such as 0, "", "0" or false
// count as empty, not just nil.
// If the host fails to store the value, its error is returned wrapped.
func (m *Manager) Set(key string, value interface{}) error {
	m.copyCheck()

	if key == "" {
		return fmt.Errorf("%w: a key must be provided for the value to store", ErrInvalidArgument)
	}
	if m.isEmpty(value) {
		return fmt.Errorf("%w: a value must be provided for key %q", ErrInvalidArgument, key)
	}

	if err := m.host.Write(key, value); err != nil {
		return fmt.Errorf("failed to store value for key %q: %w", key, err)
	}
	return nil
}

func (m *Manager) isEmpty(value interface{}) bool {
	if value == nil {
		return true
	}
	if m.allowEmpty {
		return false
	}

	v := reflect.ValueOf(value)
	switch v.Kind() {
	case reflect.String:
		return v.Len() == 0 || v.String() == "0"
	case reflect.Slice, reflect.Map, reflect.Array:
		return v.Len() == 0
	case reflect.Struct:
		return false
	}
	return v.IsZero()
}

// Get returns the value stored under key, nil if there is no such value.
func (m *Manager) Get(key string) interface{} {
	m.copyCheck()

	v, ok := m.host.Read(key)
	if !ok {
		return nil
	}
	return v
}

// Remove removes the value stored under key.
// ErrInvalidArgument is returned if key is empty.
func (m *Manager) Remove(key string) error {
	m.copyCheck()

	if key == "" {
		return fmt.Errorf("%w: a key must be provided for the value to remove", ErrInvalidArgument)
	}

	if err := m.host.Delete(key); err != nil {
		return fmt.Errorf("failed to remove value for key %q: %w", key, err)
	}
	return nil
}

// Clear removes all values from the session, including the ones maintained by the Manager.
func (m *Manager) Clear() {
	m.copyCheck()

	if err := m.host.Clear(); err != nil {
		m.logger.Error("Failed to clear session", "id", m.host.ID(), "error", err)
	}
}

// Destroy removes all values from the session and invalidates it at the host.
func (m *Manager) Destroy() {
	m.copyCheck()

	id := m.host.ID()
	m.host.Destroy()
	m.logger.Info("Session destroyed", "id", id)
}

// IsRegistered tells if the session has a session id.
func (m *Manager) IsRegistered() bool {
	return m.SessionID() != ""
}

// SessionID returns the session id, the empty string if the session is not registered.
func (m *Manager) SessionID() string {
	id, _ := m.Get(KeySessionID).(string)
	return id
}

// Debug returns a copy of all values stored in the session.
func (m *Manager) Debug() map[string]interface{} {
	m.copyCheck()

	return m.host.Values()
}

// Clone always fails with ErrIllegalOperation: a Manager can't be duplicated.
func (m *Manager) Clone() (*Manager, error) {
	return nil, fmt.Errorf("%w: session.Manager can't be cloned", ErrIllegalOperation)
}

// GobDecode always fails with ErrIllegalOperation: a Manager can't be reconstructed from serialized form.
func (m *Manager) GobDecode([]byte) error {
	return fmt.Errorf("%w: session.Manager can't be decoded", ErrIllegalOperation)
}

// UnmarshalBinary always fails with ErrIllegalOperation.
func (m *Manager) UnmarshalBinary([]byte) error {
	return fmt.Errorf("%w: session.Manager can't be decoded", ErrIllegalOperation)
}

// UnmarshalJSON always fails with ErrIllegalOperation.
func (m *Manager) UnmarshalJSON([]byte) error {
	return fmt.Errorf("%w: session.Manager can't be decoded", ErrIllegalOperation)
}

// copyCheck panics if m is a copy of a Manager made by value.
func (m *Manager) copyCheck() {
	if m.self != m {
		panic(fmt.Errorf("%w: session.Manager copied by value", ErrIllegalOperation))
	}
}

// Per-session locks, mapped from session id.
var sessLocks = struct {
	sync.Mutex
	m map[string]*sessLock
}{m: make(map[string]*sessLock)}

type sessLock struct {
	mu   sync.Mutex
	refs int // Number of holders and waiters
}

// lockSession locks the session specified by its id, and returns a function to unlock it.
// Locks of sessions no one holds or waits for are released.
func lockSession(id string) (unlock func()) {
	sessLocks.Lock()
	l := sessLocks.m[id]
	if l == nil {
		l = &sessLock{}
		sessLocks.m[id] = l
	}
	l.refs++
	sessLocks.Unlock()

	l.mu.Lock()

	return func() {
		l.mu.Unlock()

		sessLocks.Lock()
		defer sessLocks.Unlock()
		if l.refs--; l.refs == 0 {
			delete(sessLocks.m, id)
		}
	}
}
