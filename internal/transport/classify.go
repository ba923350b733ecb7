package transport

import (
	"net/http"
	"strings"
)

// eligibleForRefresh decides whether a completed request may go through the
// refresh protocol. Rules, in order:
//
//  1. Only an unauthorized status signals an expired access token; everything
//     else propagates untouched.
//  2. Only requests that actually carried a bearer token: a 401 on an
//     unauthenticated call means the endpoint wants a login, not that a
//     session expired.
//  3. Auth endpoints never refresh, otherwise a failing refresh or login call
//     would loop forever.
//  4. One retry per request: if the server rejects the refreshed credential
//     too, the failure is surfaced.
func eligibleForRefresh(req *Request, status int, authed bool) bool {
	if status != http.StatusUnauthorized {
		return false
	}
	if !authed {
		return false
	}
	if isAuthPath(req.Path) {
		return false
	}
	if req.retried {
		return false
	}
	return true
}

func isAuthPath(path string) bool {
	return strings.HasPrefix(path, authPathPrefix)
}
