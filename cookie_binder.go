/*

A secure, cookie based session Binder implementation.

*/

package session

import (
	"net/http"
	"time"
)

// CookieBinder is a secure, cookie based session Binder implementation.
// Only the session ID is transmitted / stored at the clients, and it is managed using cookies.
type CookieBinder struct {
	store Store // Backing Store

	sessIDCookieName string // Name of the cookie used for storing the session id
	cookieSecure     bool   // Tells if session ID cookies are to be sent only over HTTPS
	cookieMaxAgeSec  int    // Max age for session ID cookies in seconds
	cookiePath       string // Cookie path to use
}

// CookieBinderOptions defines options that may be passed when creating a new CookieBinder.
// All fields are optional; default value will be used for any field that has the zero value.
type CookieBinderOptions struct {
	// Name of the cookie used for storing the session id; default value is "sessid"
	SessIDCookieName string

	// Tells if session ID cookies are allowed to be sent over unsecure HTTP too (else only HTTPS);
	// default value is false (only HTTPS)
	AllowHTTP bool

	// Max age for session ID cookies; default value is 30 days
	CookieMaxAge time.Duration

	// Cookie path to use; default value is the root: "/"
	CookiePath string
}

// DefaultSessIDCookieName is the default name of the cookie used for storing the session id.
const DefaultSessIDCookieName = "sessid"

// Pointer to zero value of CookieBinderOptions to be reused for efficiency.
var zeroCookieBinderOptions = new(CookieBinderOptions)

// NewCookieBinder returns a new, cookie based session Binder with default options.
// Default values of options are listed in the CookieBinderOptions type.
func NewCookieBinder(store Store) *CookieBinder {
	return NewCookieBinderOptions(store, zeroCookieBinderOptions)
}

// NewCookieBinderOptions returns a new, cookie based session Binder with the specified options.
func NewCookieBinderOptions(store Store, o *CookieBinderOptions) *CookieBinder {
	b := &CookieBinder{
		store:            store,
		cookieSecure:     !o.AllowHTTP,
		sessIDCookieName: o.SessIDCookieName,
		cookiePath:       o.CookiePath,
	}

	if b.sessIDCookieName == "" {
		b.sessIDCookieName = DefaultSessIDCookieName
	}
	if o.CookieMaxAge == 0 {
		b.cookieMaxAgeSec = 30 * 24 * 60 * 60 // 30 days max age
	} else {
		b.cookieMaxAgeSec = int(o.CookieMaxAge.Seconds())
	}
	if b.cookiePath == "" {
		b.cookiePath = "/"
	}

	return b
}

// Get is to implement Binder.Get().
func (b *CookieBinder) Get(r *http.Request) Session {
	c, err := r.Cookie(b.sessIDCookieName)
	if err != nil {
		return nil
	}

	return b.store.Load(c.Value)
}

// Add is to implement Binder.Add().
func (b *CookieBinder) Add(sess Session, w http.ResponseWriter) error {
	// HttpOnly: do not allow non-HTTP access to it (like javascript) to prevent stealing it...
	// Secure: only send it over HTTPS
	// MaxAge: to specify the max age of the cookie in seconds, else it's a session cookie and gets deleted after the browser is closed.
	c := http.Cookie{
		Name:     b.sessIDCookieName,
		Value:    sess.ID(),
		Path:     b.cookiePath,
		HttpOnly: true,
		Secure:   b.cookieSecure,
		MaxAge:   b.cookieMaxAgeSec,
	}
	http.SetCookie(w, &c)

	return b.store.Save(sess)
}

// Remove is to implement Binder.Remove().
func (b *CookieBinder) Remove(sess Session, w http.ResponseWriter) {
	// Set the cookie with empty value and 0 max age
	c := http.Cookie{
		Name:     b.sessIDCookieName,
		Value:    "",
		Path:     b.cookiePath,
		HttpOnly: true,
		Secure:   b.cookieSecure,
		MaxAge:   -1, // MaxAge<0 means delete cookie now, equivalently 'Max-Age: 0'
	}
	http.SetCookie(w, &c)

	b.store.Remove(sess)
}

// Store is to implement Binder.Store().
func (b *CookieBinder) Store() Store {
	return b.store
}

// SessIDCookieName returns the name of the cookie used for storing the session id.
func (b *CookieBinder) SessIDCookieName() string {
	return b.sessIDCookieName
}

// Close is to implement Binder.Close().
func (b *CookieBinder) Close() {
	b.store.Close()
}
