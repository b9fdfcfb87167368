package httpmiddleware

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
)

const unknownRoute = "unmatched"

// Routes seeds a chi routing context for the rest of the chain. The router
// fills it in, so middleware that runs outside the router can read the
// matched pattern with RoutePattern after calling next.
func Routes() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if chi.RouteContext(r.Context()) != nil {
				next.ServeHTTP(w, r)
				return
			}
			rctx := chi.NewRouteContext()
			r = r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
			next.ServeHTTP(w, r)
		})
	}
}

// RoutePattern returns the pattern chi matched for r, e.g. "/api/orders/{id}".
func RoutePattern(r *http.Request) string {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		return unknownRoute
	}
	if p := rctx.RoutePattern(); p != "" {
		return p
	}
	return unknownRoute
}
