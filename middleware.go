/*

HTTP middleware binding a timed session Manager to each request.

*/

package session

import (
	"context"
	"net/http"
)

type ctxKey struct{}

// Middleware returns an HTTP middleware which binds a new Manager to every request
// (with Bind, over a RequestHost of b), and makes it available to the wrapped handler
// via FromContext.
//
// Unlike GetInstance, managers bound by the middleware are safe to use when
// requests are served concurrently.
func Middleware(b Binder, o *Options) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			m := Bind(NewRequestHost(b, w, r), o)
			next.ServeHTTP(w, r.WithContext(NewContext(r.Context(), m)))
		})
	}
}

// NewContext returns a new Context that carries m.
func NewContext(ctx context.Context, m *Manager) context.Context {
	return context.WithValue(ctx, ctxKey{}, m)
}

// FromContext returns the Manager stored in ctx, nil if there is none.
func FromContext(ctx context.Context) *Manager {
	m, _ := ctx.Value(ctxKey{}).(*Manager)
	return m
}
