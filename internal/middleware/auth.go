package middleware

import (
	"context"
	"strings"

	"connectrpc.com/connect"
	"github.com/mmynk/suisplit/internal/auth"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

// AddressKey is the context key for the authenticated wallet address.
const AddressKey contextKey = "address"

// GetAddress extracts the authenticated wallet address from the context.
// Returns empty string if not found.
func GetAddress(ctx context.Context) string {
	address, _ := ctx.Value(AddressKey).(string)
	return address
}

// WithAddress returns a copy of ctx carrying address.
func WithAddress(ctx context.Context, address string) context.Context {
	return context.WithValue(ctx, AddressKey, address)
}

// bearerToken extracts the token from an "Authorization: Bearer <token>" header.
func bearerToken(header string) (string, bool) {
	parts := strings.Split(header, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// RequireAuth returns an interceptor that rejects procedures listed in protected unless
// the request carries a valid bearer token. Other procedures pass through with optional auth.
// A nil jwtManager rejects every protected procedure.
func RequireAuth(jwtManager *auth.JWTManager, protected ...string) connect.UnaryInterceptorFunc {
	guarded := make(map[string]bool, len(protected))
	for _, p := range protected {
		guarded[p] = true
	}

	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			if !guarded[req.Spec().Procedure] {
				return next(withOptionalAddress(ctx, jwtManager, req.Header().Get("Authorization")), req)
			}
			if jwtManager == nil {
				return nil, connect.NewError(connect.CodeUnauthenticated, auth.ErrMissingToken)
			}

			authHeader := req.Header().Get("Authorization")
			if authHeader == "" {
				return nil, connect.NewError(connect.CodeUnauthenticated, auth.ErrMissingToken)
			}

			tokenString, ok := bearerToken(authHeader)
			if !ok {
				return nil, connect.NewError(connect.CodeUnauthenticated, auth.ErrInvalidToken)
			}

			claims, err := jwtManager.Validate(tokenString)
			if err != nil {
				return nil, connect.NewError(connect.CodeUnauthenticated, err)
			}

			return next(WithAddress(ctx, claims.Address), req)
		}
	}
}

// OptionalAuth returns an interceptor that attaches the caller's address when a valid
// token is present and lets every request through.
func OptionalAuth(jwtManager *auth.JWTManager) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			return next(withOptionalAddress(ctx, jwtManager, req.Header().Get("Authorization")), req)
		}
	}
}

func withOptionalAddress(ctx context.Context, jwtManager *auth.JWTManager, header string) context.Context {
	if jwtManager == nil || header == "" {
		return ctx
	}
	tokenString, ok := bearerToken(header)
	if !ok {
		return ctx
	}
	claims, err := jwtManager.Validate(tokenString)
	if err != nil {
		return ctx
	}
	return WithAddress(ctx, claims.Address)
}
