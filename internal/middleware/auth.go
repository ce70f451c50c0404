// AngelaMos | 2026
// auth.go

package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/angelamos/revue/internal/core"
	"github.com/angelamos/revue/internal/policy"
)

const ActorKey contextKey = "actor"

type TokenVerifier interface {
	VerifyAccessToken(ctx context.Context, token string) (string, error)
}

// ActorSource resolves a token subject to the account's current state.
// Tokens carry no role claim; the role is re-read here on every request so
// role changes take effect without re-authentication.
type ActorSource interface {
	ActorByID(ctx context.Context, id string) (policy.Actor, error)
}

func Authenticator(
	verifier TokenVerifier,
	source ActorSource,
) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := ExtractToken(r)

			if token == "" {
				core.JSONError(
					w,
					core.UnauthorizedError("missing authorization token"),
				)
				return
			}

			actor, err := resolveActor(r.Context(), verifier, source, token)
			if err != nil {
				handleAuthError(w, err)
				return
			}

			ctx := context.WithValue(r.Context(), ActorKey, actor)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAuth attaches an actor when a valid token is present and passes
// anonymous requests through untouched. Safe-method catalog and review
// reads run behind this.
func OptionalAuth(
	verifier TokenVerifier,
	source ActorSource,
) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := ExtractToken(r)

			if token != "" {
				actor, err := resolveActor(
					r.Context(),
					verifier,
					source,
					token,
				)
				if err == nil {
					ctx := context.WithValue(r.Context(), ActorKey, actor)
					r = r.WithContext(ctx)
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

func resolveActor(
	ctx context.Context,
	verifier TokenVerifier,
	source ActorSource,
	token string,
) (policy.Actor, error) {
	subject, err := verifier.VerifyAccessToken(ctx, token)
	if err != nil {
		return policy.Actor{}, err
	}

	actor, err := source.ActorByID(ctx, subject)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return policy.Actor{}, core.ErrTokenInvalid
		}
		return policy.Actor{}, err
	}

	return actor, nil
}

func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor := GetActor(r.Context())

		if !actor.Authenticated() {
			core.JSONError(
				w,
				core.UnauthorizedError("authentication required"),
			)
			return
		}

		if !actor.IsAdmin() {
			core.JSONError(
				w,
				core.ForbiddenError("insufficient permissions"),
			)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func ExtractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}

	return strings.TrimSpace(parts[1])
}

func handleAuthError(w http.ResponseWriter, err error) {
	if core.IsAppError(err) {
		core.JSONError(w, err)
		return
	}

	switch {
	case errors.Is(err, core.ErrTokenExpired):
		core.JSONError(w, core.TokenExpiredError())
	default:
		core.JSONError(w, core.TokenInvalidError())
	}
}

func GetActor(ctx context.Context) policy.Actor {
	if actor, ok := ctx.Value(ActorKey).(policy.Actor); ok {
		return actor
	}
	return policy.Actor{}
}

func GetUserID(ctx context.Context) string {
	return GetActor(ctx).ID
}

func IsAuthenticated(ctx context.Context) bool {
	return GetActor(ctx).Authenticated()
}
