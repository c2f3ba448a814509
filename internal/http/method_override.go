package http

import (
	"net/http"
	"strings"
)

// methodOverrideField is the form field browsers use to tunnel DELETE and
// PUT through a plain form POST.
const methodOverrideField = "_method"

// MethodOverride rewrites the request method from the _method form field
// before routing. It wraps the router rather than running inside it because
// routing dispatches on the method.
func MethodOverride(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			// ParseForm caches the parsed values on the request, so reading
			// the body here does not starve downstream handlers.
			switch strings.ToUpper(r.PostFormValue(methodOverrideField)) {
			case http.MethodDelete:
				r.Method = http.MethodDelete
			case http.MethodPut:
				r.Method = http.MethodPut
			}
		}
		next.ServeHTTP(w, r)
	})
}
