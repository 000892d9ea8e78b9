package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/itam-io/itam-server/internal/importer"
)

type ctxKey string

const identityKey ctxKey = "identity"

// Identity resolves the acting user for audit attribution. A valid bearer
// token supplies user_id and username claims; a missing or invalid token
// falls back to the sentinel System identity rather than rejecting the
// request. Authentication decisions belong to the deployment's gateway, not
// here.
func Identity(secret []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := importer.SystemUser

			if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
				tokenStr := strings.TrimPrefix(auth, "Bearer ")
				token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (any, error) {
					return secret, nil
				})
				if err == nil && token.Valid {
					if claims, ok := token.Claims.(jwt.MapClaims); ok {
						if id, ok := claims["user_id"].(float64); ok {
							user.ID = int(id)
						}
						if name, ok := claims["username"].(string); ok && name != "" {
							user.Name = name
						}
					}
				}
			}

			ctx := context.WithValue(r.Context(), identityKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserFromContext returns the identity placed by Identity, or the System
// sentinel when the middleware did not run.
func UserFromContext(ctx context.Context) importer.User {
	if u, ok := ctx.Value(identityKey).(importer.User); ok {
		return u
	}
	return importer.SystemUser
}
