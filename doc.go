/*

Package session provides a timed session manager: keyed access to the session of an HTTP client,
which is destroyed if it is not accessed for a configured number of minutes.

Overview

There are 2 key players in the package:

- Manager gives keyed access (Set, Get, Remove, Clear) to a session, and checks its idle timeout
on every attach: if the session was not renewed for its timeout, it is destroyed, else it is renewed.

- Host is the per-client key-value scope a Manager works on. The Manager doesn't know how
clients are identified, this is the job of the Host.

A Host implementation is provided which is backed by an HTTP session implementation:

- Session holds the attributes of a client at server side.

- Store stores sessions and makes them retrievable by their IDs at the server side.
An in-memory and an SQLite implementation are provided.

- Binder acquires a Session from an (incoming) HTTP request, and adds a Session to an HTTP response.
CookieBinder transmits the session ID in a cookie.

- RequestHost is a Host over a Binder, bound to a single HTTP request.

Usage

The process-wide Manager can be acquired with GetInstance. To use it in a handler with the global Binder,
with a 5 minutes idle timeout:

    sess := session.Instance(w, r, 5)
    if err := sess.Set("UserName", userName); err != nil {
        // Key or value is empty
    }
    userName := sess.Get("UserName") // nil if not set

The process-wide Manager works on the host of the last GetInstance call, so it is only suitable
if requests are served one at a time. To serve requests concurrently, bind a Manager to each request
with the middleware:

    store := session.NewInMemStore()
    binder := session.NewCookieBinder(store)
    defer binder.Close()

    h := session.Middleware(binder, &session.Options{Timeout: 5})(myHandler)

and in the handler:

    sess := session.FromContext(r.Context())
    if !sess.IsRegistered() {
        // Session has timed out and got destroyed in this request
    }

To log out:

    sess.Destroy()

Duplicating a Manager is an error: Clone and decoding a Manager (gob, JSON, binary) report ErrIllegalOperation,
and using a Manager copied by value panics.

*/
package session
