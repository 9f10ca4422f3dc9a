package middleware

import (
	"context"
	"net/http"

	"dacsan-be/internal/logger"
	"dacsan-be/internal/session"
	"dacsan-be/internal/utils"

	"go.uber.org/zap"
)

type issuedKey struct{}

// issuedNow reports whether the session in ctx was created by this request.
func issuedNow(ctx context.Context) bool {
	v, _ := ctx.Value(issuedKey{}).(bool)
	return v
}

// Session resolves the shopper's session id from the request token and stores it
// in the context. A missing or invalid token starts a new session, returned in
// both the sid cookie and the X-Session-Token header.
func Session(iss *session.Issuer, secureCookie bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var sid string
			ctx := r.Context()
			if token := session.ExtractToken(r); token != "" {
				if parsed, err := iss.Parse(token); err == nil {
					sid = parsed
				} else {
					logger.FromCtx(r.Context()).Debug("session token rejected", zap.Error(err))
				}
			}

			if sid == "" {
				token, issued, err := iss.Issue()
				if err != nil {
					logger.FromCtx(r.Context()).Error("failed to issue session token", zap.Error(err))
					utils.WriteJSONError(w, "internal server error", http.StatusInternalServerError)
					return
				}
				sid = issued

				http.SetCookie(w, &http.Cookie{
					Name:     session.CookieName,
					Value:    token,
					Path:     "/",
					MaxAge:   int(iss.TTL().Seconds()),
					HttpOnly: true,
					Secure:   secureCookie,
					SameSite: http.SameSiteLaxMode,
				})
				w.Header().Set(session.TokenHeader, token)
				ctx = context.WithValue(ctx, issuedKey{}, true)
			}

			ctx = logger.WithSessionID(ctx, sid)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
