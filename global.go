/*

The process-wide Manager instance, and a global session Binder - for easy to use.

*/

package session

import (
	"net/http"
	"sync"
)

// Global is the default session Binder used by Instance.
// You may replace this, but if you intend to do so, you should close it first with Global.Close().
var Global Binder = NewCookieBinder(NewInMemStore())

var (
	instance   *Manager   // The process-wide Manager, created lazily
	instanceMu sync.Mutex // Guards instance creation and attaching
)

// GetInstance returns the process-wide Manager, creating it on first call.
//
// On every call the Manager is attached to h: the host scope is started, and if it
// has no session id yet, the session id, the timeout (timeoutMinutes, or DefaultTimeoutMinutes
// if not positive) and the start time are stored in it. The timeout is then verified:
// if the session was not renewed for timeoutMinutes, it is destroyed, else it is renewed.
//
// The returned Manager works on h until the next call, so it is meant for hosts
// serving one request at a time. Use Bind (or Middleware) to serve requests concurrently.
func GetInstance(h Host, timeoutMinutes int) *Manager {
	instanceMu.Lock()
	defer instanceMu.Unlock()

	if instance == nil {
		instance = newManager(zeroOptions)
	}
	instance.attach(h, timeoutMinutes)
	return instance
}

// ConfigureInstance applies o to the process-wide Manager, creating it if needed.
// Options.Timeout is the timeout used when GetInstance is called with a non-positive one.
//
// ConfigureInstance is to be called once at startup, before the process-wide Manager
// is first used. Options of a Manager are read without locking, so reconfiguring it
// while another goroutine is using it (e.g. via a Manager returned by GetInstance) is a data race.
func ConfigureInstance(o *Options) {
	if o == nil {
		o = zeroOptions
	}

	instanceMu.Lock()
	defer instanceMu.Unlock()

	if instance == nil {
		instance = newManager(o)
		return
	}
	instance.configure(o)
}

// Instance delegates to GetInstance with a RequestHost over Global for the given request.
func Instance(w http.ResponseWriter, r *http.Request, timeoutMinutes int) *Manager {
	return GetInstance(NewRequestHost(Global, w, r), timeoutMinutes)
}
