package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	RolePatient = "patient"
	RoleDoctor  = "doctor"
)

// Principal is the authenticated caller, resolved from the session token.
// Authorization decisions downstream (who may cancel, whose schedule an
// update targets) trust this and nothing from the request body.
type Principal struct {
	ID   uuid.UUID
	Role string
}

const principalKey contextKey = "principal"

type sessionClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Auth validates the bearer token and puts the caller's Principal on the
// request context. Requests without a valid token get 401.
func Auth(secret []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			raw, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || raw == "" {
				writeError(w, http.StatusUnauthorized, "authentication_required", "missing bearer token")
				return
			}

			var claims sessionClaims
			token, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrSignatureInvalid
				}
				return secret, nil
			})
			if err != nil || !token.Valid {
				writeError(w, http.StatusUnauthorized, "invalid_token", "session token is invalid or expired")
				return
			}

			userID, err := uuid.Parse(claims.Subject)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "invalid_token", "subject is not a valid user id")
				return
			}
			if claims.Role != RolePatient && claims.Role != RoleDoctor {
				writeError(w, http.StatusUnauthorized, "invalid_token", "unknown role")
				return
			}

			ctx := context.WithValue(r.Context(), principalKey, Principal{ID: userID, Role: claims.Role})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole rejects authenticated callers whose role does not match.
func RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := PrincipalFrom(r.Context())
			if !ok {
				writeError(w, http.StatusUnauthorized, "authentication_required", "no session")
				return
			}
			if p.Role != role {
				writeError(w, http.StatusForbidden, "forbidden", "this action requires the "+role+" role")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// PrincipalFrom retrieves the authenticated caller from the context.
func PrincipalFrom(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey).(Principal)
	return p, ok
}
