package middleware

import (
	"context"
	"net/http"
	"time"

	goAuthClient "github.com/MrEthical07/goAuthClient"
)

type snapshotContextKey struct{}

// SnapshotFromContext returns the session snapshot stored by a guard.
func SnapshotFromContext(ctx context.Context) (goAuthClient.Snapshot, bool) {
	s, ok := ctx.Value(snapshotContextKey{}).(goAuthClient.Snapshot)
	return s, ok
}

// Guard redirects requests to loginPath unless mgr holds a session.
func Guard(mgr *goAuthClient.Manager, loginPath string) func(http.Handler) http.Handler {
	return guard(mgr, loginPath, nil)
}

// RequireVerified is Guard plus local signature and claim verification of the
// session token. A token that fails verification is treated as no session.
func RequireVerified(mgr *goAuthClient.Manager, loginPath string) func(http.Handler) http.Handler {
	return guard(mgr, loginPath, func(r *http.Request) bool {
		_, err := mgr.VerifyLocal()
		return err == nil
	})
}

// RequireFresh is Guard plus a token refresh whenever the token expires within
// window. The request continues when the refresh leaves a session in place.
func RequireFresh(mgr *goAuthClient.Manager, loginPath string, window time.Duration) func(http.Handler) http.Handler {
	return guard(mgr, loginPath, func(r *http.Request) bool {
		if !mgr.ExpiresWithin(window) {
			return true
		}
		if err := mgr.RefreshToken(r.Context()); err != nil {
			return false
		}
		return mgr.Snapshot().IsAuthenticated()
	})
}

func guard(mgr *goAuthClient.Manager, loginPath string, check func(*http.Request) bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if mgr == nil || !mgr.Snapshot().IsAuthenticated() {
				http.Redirect(w, r, loginPath, http.StatusSeeOther)
				return
			}
			if check != nil && !check(r) {
				http.Redirect(w, r, loginPath, http.StatusSeeOther)
				return
			}

			ctx := context.WithValue(r.Context(), snapshotContextKey{}, mgr.Snapshot())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
