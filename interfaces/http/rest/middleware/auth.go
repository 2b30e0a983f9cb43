package middleware

import (
	"net/http"
	"strings"

	"famtree-backend/pkg/auth"
	"famtree-backend/pkg/common"
	pkgerrors "famtree-backend/pkg/errors"
)

// Authenticate validates the bearer token on every request and attaches
// the authenticated user to the request context.
//
// When the service runs behind an API Gateway JWT authorizer the token
// has already been validated upstream; the authorizer forwards the
// subject in X-User-ID and we trust it.
func Authenticate(validator *auth.JWTValidator, trustGatewayHeaders bool) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var user *auth.UserContext

			if trustGatewayHeaders {
				userID := r.Header.Get("X-User-ID")
				if userID == "" {
					respondUnauthorized(w, "missing user context from gateway")
					return
				}
				user = &auth.UserContext{
					UserID: userID,
					Email:  r.Header.Get("X-User-Email"),
				}
			} else {
				authHeader := r.Header.Get("Authorization")
				if authHeader == "" {
					respondUnauthorized(w, "missing authorization header")
					return
				}
				parts := strings.SplitN(authHeader, " ", 2)
				if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
					respondUnauthorized(w, "invalid authorization header format")
					return
				}

				claims, err := validator.ValidateToken(parts[1])
				if err != nil {
					switch err {
					case auth.ErrExpiredToken:
						respondUnauthorized(w, "token has expired")
					default:
						respondUnauthorized(w, "invalid token")
					}
					return
				}
				user = &auth.UserContext{
					UserID: claims.UserID,
					Email:  claims.Email,
				}
			}

			ctx := auth.SetUserInContext(r.Context(), user)
			ctx = common.WithUserID(ctx, user.UserID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func respondUnauthorized(w http.ResponseWriter, message string) {
	common.RespondError(w, http.StatusUnauthorized, string(pkgerrors.ErrorTypeUnauthorized), message)
}
