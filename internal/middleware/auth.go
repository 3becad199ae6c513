package middleware

import (
	"context"
	"errors"
	"net/http"

	"shop-api/internal/auth"
	"shop-api/internal/domain"

	"go.uber.org/zap"
)

type contextKey string

const identityKey contextKey = "identity"

// TokenVerifier turns a signed token back into the identity it was issued for.
type TokenVerifier interface {
	Verify(token string) (domain.Identity, error)
}

// AuthMiddleware rejects requests without a valid, unexpired and unrevoked
// authToken cookie and attaches the verified identity to the request context.
func AuthMiddleware(tokens TokenVerifier, revocations auth.RevocationStore, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString := auth.TokenFromRequest(r)
			if tokenString == "" {
				logger.Debug("Missing auth cookie", zap.String("path", r.URL.Path))
				RespondWithError(w, http.StatusUnauthorized, "not authorized")
				return
			}

			identity, err := tokens.Verify(tokenString)
			if err != nil {
				logger.Debug("Token validation failed", zap.Error(err))
				if errors.Is(err, auth.ErrTokenExpired) {
					RespondWithError(w, http.StatusUnauthorized, "token expired")
				} else {
					RespondWithError(w, http.StatusUnauthorized, "invalid token")
				}
				return
			}

			if identity.TokenID != "" {
				revoked, err := revocations.IsRevoked(r.Context(), identity.TokenID)
				if err != nil {
					logger.Error("Failed to check token revocation", zap.Error(err))
					RespondWithError(w, http.StatusInternalServerError, "internal server error")
					return
				}
				if revoked {
					logger.Debug("Revoked token presented", zap.String("user_id", identity.UserID))
					RespondWithError(w, http.StatusUnauthorized, "token revoked")
					return
				}
			}

			logger.Debug("User authenticated",
				zap.String("user_id", identity.UserID),
				zap.String("role", identity.Role),
			)

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
		})
	}
}

// WithIdentity returns a context carrying identity.
func WithIdentity(ctx context.Context, identity domain.Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

// IdentityFromContext extracts the identity attached by AuthMiddleware.
func IdentityFromContext(ctx context.Context) (domain.Identity, bool) {
	identity, ok := ctx.Value(identityKey).(domain.Identity)
	return identity, ok
}
