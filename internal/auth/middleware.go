package auth

import (
	"context"
	"net/http"
	"strings"

	"ticketly/internal/models"
	"ticketly/internal/utils"
)

type contextKey string

const claimsKey contextKey = "external_claims"

// Verifier holds the verification side of the identity boundary for one
// service. Internal trust is flat: any valid internal token opens every
// internal endpoint.
type Verifier struct {
	InternalSecret []byte
	ExternalSecret []byte
}

func bearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", false
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], true
}

// RequireInternal admits only holders of a valid internal service token.
func (v *Verifier) RequireInternal(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, ok := bearerToken(r)
		if !ok {
			utils.WriteJSON(w, http.StatusUnauthorized, utils.ErrorResponse("Unauthorized.", "missing or malformed Authorization header"))
			return
		}
		if _, err := DecodeInternalJWT(v.InternalSecret, raw); err != nil {
			utils.WriteJSON(w, http.StatusUnauthorized, utils.ErrorResponse("Unauthorized.", "invalid internal token"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireExternal admits holders of a valid user token and, when roles are
// given, only those roles. The claims are stored on the request context.
func (v *Verifier) RequireExternal(roles ...models.AuthRole) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := bearerToken(r)
			if !ok {
				utils.WriteJSON(w, http.StatusUnauthorized, utils.ErrorResponse("Unauthorized.", "missing or malformed Authorization header"))
				return
			}
			claims, err := DecodeExternalJWT(v.ExternalSecret, raw)
			if err != nil {
				utils.WriteJSON(w, http.StatusUnauthorized, utils.ErrorResponse("Unauthorized.", "invalid user token"))
				return
			}
			if len(roles) > 0 && !roleAllowed(claims.Role, roles) {
				utils.WriteJSON(w, http.StatusForbidden, utils.ErrorResponse("Forbidden.", "insufficient role"))
				return
			}
			ctx := context.WithValue(r.Context(), claimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func roleAllowed(role models.AuthRole, allowed []models.AuthRole) bool {
	for _, a := range allowed {
		if role == a {
			return true
		}
	}
	return false
}

// ClaimsFrom extracts the external claims stored by RequireExternal.
func ClaimsFrom(ctx context.Context) (*ExternalClaims, bool) {
	claims, ok := ctx.Value(claimsKey).(*ExternalClaims)
	return claims, ok
}
