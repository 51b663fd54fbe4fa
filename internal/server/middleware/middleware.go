// Package middleware holds the HTTP handler decorators shared by the API
// server: request logging, panic recovery, auth, rate limiting, body size
// caps and response headers.
package middleware

import "net/http"

// Middleware wraps an http.Handler with additional behavior.
type Middleware func(http.Handler) http.Handler

// Chain applies middlewares to h. The first middleware is the outermost:
// Chain(h, m1, m2) serves m1(m2(h)).
func Chain(h http.Handler, middlewares ...Middleware) http.Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}
	return h
}
