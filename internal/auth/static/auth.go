package static

import (
	"golang.org/x/crypto/bcrypt"
	"log/slog"
	"net/http"
)

// Compared against when the username is unknown so that unknown and known
// users take the same time to reject.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("genoserve"), bcrypt.DefaultCost)

func (a *Auth) Validate(username, password string) bool {
	hash, ok := a.Users[username]
	if !ok {
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// RequireBasicAuth rejects requests without valid HTTP Basic credentials.
// CORS preflight requests carry no credentials and are let through.
func (a *Auth) RequireBasicAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}
		username, password, ok := r.BasicAuth()
		if !ok || !a.Validate(username, password) {
			if ok {
				slog.Warn("Invalid login attempt", "username", username, "remote_addr", r.RemoteAddr)
			}
			realm := a.realm
			if realm == "" {
				realm = defaultRealm
			}
			w.Header().Set("WWW-Authenticate", `Basic realm="`+realm+`"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}
