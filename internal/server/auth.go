package server

import (
	"net/http"
	"strings"
)

// sessionToken reads the bearer token from the Authorization header, falling
// back to the token query parameter for EventSource and WebSocket clients
// that cannot set headers.
func sessionToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if token, found := strings.CutPrefix(auth, "Bearer "); found && token != "" {
		return token
	}
	return r.URL.Query().Get("token")
}
