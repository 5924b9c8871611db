/*

Session Binder interface.

*/

package session

import (
	"net/http"
)

// Binder is a session binder interface.
// A session binder is responsible to acquire a Session from an (incoming) HTTP request,
// and to add a Session to an HTTP response to let the client know about the session.
// A Binder has a backing Store which is responsible to manage Session values at server side.
type Binder interface {
	// Get returns the session specified by the HTTP request.
	// nil is returned if the request does not contain a session, or the contained session is not know by this binder.
	Get(r *http.Request) Session

	// Add adds the session to the HTTP response.
	// This means to let the client know about the specified session by including the session id in the response somehow.
	// The error of saving the session in the Store is returned.
	Add(sess Session, w http.ResponseWriter) error

	// Remove removes the session from the HTTP response.
	Remove(sess Session, w http.ResponseWriter)

	// Store returns the backing Store of the binder.
	Store() Store

	// Close closes the session binder, releasing any resources that were allocated.
	Close()
}
