package middleware

import "net/http"

// NoStore marks responses as uncacheable. Store snapshots change with every
// action and belong to a single session.
func NoStore(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store")
		next.ServeHTTP(w, r)
	})
}
