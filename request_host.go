/*

A Host implementation over a session Binder, bound to a single HTTP request.

*/

package session

import (
	"net/http"
	"time"
)

// RequestHost is a Host whose scope is the Session the Binder associates with an HTTP request.
// Values written to it are saved in the backing Store of the Binder right away.
//
// A RequestHost is bound to a single request, it is not safe for concurrent use.
type RequestHost struct {
	binder  Binder
	w       http.ResponseWriter
	r       *http.Request
	sessOpt *SessOptions // Options of sessions created by Start

	sess Session // Current session, nil until Start and after Destroy
}

// NewRequestHost returns a new RequestHost for the given request,
// creating sessions with the default options.
func NewRequestHost(b Binder, w http.ResponseWriter, r *http.Request) *RequestHost {
	return NewRequestHostOptions(b, w, r, &SessOptions{})
}

// NewRequestHostOptions returns a new RequestHost for the given request,
// creating sessions with the specified options.
func NewRequestHostOptions(b Binder, w http.ResponseWriter, r *http.Request, o *SessOptions) *RequestHost {
	return &RequestHost{binder: b, w: w, r: r, sessOpt: o}
}

// Start is to implement Host.Start().
// The session of the request is looked up; if there is none (or it is unknown to the Binder),
// a new session is created and added to the response.
func (h *RequestHost) Start() {
	if h.sess != nil {
		return
	}

	if h.sess = h.binder.Get(h.r); h.sess != nil {
		return
	}

	h.sess = NewSessionOptions(h.sessOpt)
	// A failed save is not final: every Write saves the session again, and reports the error.
	h.binder.Add(h.sess, h.w)
}

// Session returns the current session, nil if the host is not started or is destroyed.
func (h *RequestHost) Session() Session {
	return h.sess
}

// ID is to implement Host.ID().
func (h *RequestHost) ID() string {
	if h.sess == nil {
		return ""
	}
	return h.sess.ID()
}

// Read is to implement Host.Read().
func (h *RequestHost) Read(key string) (interface{}, bool) {
	if h.sess == nil {
		return nil, false
	}
	return h.sess.Attr(key)
}

// Write is to implement Host.Write().
// It is a no-op if the host is not started or is destroyed.
// If the session can't be saved, the previous value of key is restored.
func (h *RequestHost) Write(key string, value interface{}) error {
	if h.sess == nil {
		return nil
	}

	prev, had := h.sess.Attr(key)
	h.sess.SetAttr(key, value)
	if err := h.binder.Store().Save(h.sess); err != nil {
		h.restoreAttr(key, prev, had)
		return err
	}
	return nil
}

// Delete is to implement Host.Delete().
func (h *RequestHost) Delete(key string) error {
	if h.sess == nil {
		return nil
	}

	prev, had := h.sess.Attr(key)
	if !had {
		return nil
	}
	h.sess.DeleteAttr(key)
	if err := h.binder.Store().Save(h.sess); err != nil {
		h.restoreAttr(key, prev, had)
		return err
	}
	return nil
}

func (h *RequestHost) restoreAttr(key string, prev interface{}, had bool) {
	if had {
		h.sess.SetAttr(key, prev)
	} else {
		h.sess.DeleteAttr(key)
	}
}

// Clear is to implement Host.Clear().
func (h *RequestHost) Clear() error {
	if h.sess == nil {
		return nil
	}

	prev := h.sess.Attrs()
	h.sess.ClearAttrs()
	if err := h.binder.Store().Save(h.sess); err != nil {
		for k, v := range prev {
			h.sess.SetAttr(k, v)
		}
		return err
	}
	return nil
}

// SetIdleTimeout is to implement IdleTimeoutSetter.
// It changes the timeout of the session in the Store, so the Store doesn't drop it
// before the Manager would time it out.
func (h *RequestHost) SetIdleTimeout(timeout time.Duration) error {
	if h.sess == nil {
		return nil
	}

	prev := h.sess.Timeout()
	if prev == timeout {
		return nil
	}
	h.sess.SetTimeout(timeout)
	if err := h.binder.Store().Save(h.sess); err != nil {
		h.sess.SetTimeout(prev)
		return err
	}
	return nil
}

// Destroy is to implement Host.Destroy().
// The session is removed from the Store, and the session cookie is expired.
func (h *RequestHost) Destroy() {
	if h.sess == nil {
		return
	}
	h.sess.ClearAttrs()
	h.binder.Remove(h.sess, h.w)
	h.sess = nil
}

// Values is to implement Host.Values().
func (h *RequestHost) Values() map[string]interface{} {
	if h.sess == nil {
		return map[string]interface{}{}
	}
	return h.sess.Attrs()
}
