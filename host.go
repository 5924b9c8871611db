/*

Host session store interface.

*/

package session

import "time"

// Host is the per-client key-value session scope a Manager works on.
// The host decides how a client is identified across requests (e.g. by a cookie),
// the Manager only sees the key-value mapping of the current client.
//
// Implementations need not be safe for concurrent use; a Host is bound
// to a single unit of work (usually one HTTP request).
type Host interface {
	// Start attaches to the client's session scope, creating it if it does not exist.
	// Calling Start more than once must be cheap and must not create a new scope.
	Start()

	// ID returns the host-assigned session id of the current scope.
	// The empty string is returned if Start has not been called.
	ID() string

	// Read returns the value stored under key, and whether it is present.
	Read(key string) (value interface{}, ok bool)

	// Write stores value under key.
	// If the value can't be stored, an error is returned and the scope is left unchanged.
	Write(key string, value interface{}) error

	// Delete removes the value stored under key.
	// If the change can't be stored, an error is returned and the scope is left unchanged.
	Delete(key string) error

	// Clear removes all values from the scope.
	// If the change can't be stored, an error is returned and the scope is left unchanged.
	Clear() error

	// Destroy clears the scope and invalidates it, so the current
	// session credential is not honored anymore.
	Destroy()

	// Values returns a copy of all values stored in the scope.
	Values() map[string]interface{}
}

// IdleTimeoutSetter is implemented by Hosts whose scope may be dropped by the host itself
// after some idle time. The Manager sets it on every renewal so the host
// keeps the scope at least as long as the session timeout.
type IdleTimeoutSetter interface {
	// SetIdleTimeout sets the idle time after which the host may drop the scope.
	SetIdleTimeout(timeout time.Duration) error
}
