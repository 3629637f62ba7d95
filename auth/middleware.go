package auth

import (
	"net/http"

	"github.com/jonwraymond/healthnotify/observe"
)

// Middleware rejects requests that authn does not accept with 401.
func Middleware(authn Authenticator, logger observe.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = observe.NopLogger()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := authn.Authenticate(r.Context(), r.Header)
			if err != nil {
				logger.Debug(r.Context(), "request rejected",
					observe.Field{Key: "path", Value: r.URL.Path},
					observe.Field{Key: "error", Value: err},
				)
				w.Header().Set("WWW-Authenticate", `Bearer realm="healthnotify"`)
				http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}
