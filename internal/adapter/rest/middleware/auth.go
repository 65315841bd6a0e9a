package middleware

import (
	"net/http"
	"strings"

	"github.com/FaizanHaider108/lookvisa/internal/auth"
)

// JWTAuth rejects requests without a valid bearer token and stores the caller's session.
func JWTAuth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			parts := strings.Fields(header)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				writeMessage(w, http.StatusUnauthorized, "Missing or malformed authorization header")
				return
			}
			session, err := auth.ParseToken(parts[1], secret)
			if err != nil {
				writeMessage(w, http.StatusUnauthorized, "Invalid or expired token")
				return
			}
			next.ServeHTTP(w, r.WithContext(auth.WithSession(r.Context(), session)))
		})
	}
}

// RequireSponsor lets only Visa Sponsors through. It must run after JWTAuth.
func RequireSponsor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, ok := auth.FromContext(r.Context())
		if !ok {
			writeMessage(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		if !session.IsSponsor() {
			writeMessage(w, http.StatusForbidden, "Only visa sponsors can manage listings")
			return
		}
		next.ServeHTTP(w, r)
	})
}
