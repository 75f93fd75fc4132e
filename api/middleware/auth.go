package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/MarceloMarchiori/m3class-backend/api/responses"
	"github.com/MarceloMarchiori/m3class-backend/internal/access"
	"github.com/MarceloMarchiori/m3class-backend/internal/profiles"
	pkgAuth "github.com/MarceloMarchiori/m3class-backend/pkg/auth"
	"github.com/MarceloMarchiori/m3class-backend/pkg/auth/session"
	"github.com/MarceloMarchiori/m3class-backend/pkg/config"
	pkgerrors "github.com/MarceloMarchiori/m3class-backend/pkg/errors"
	"github.com/MarceloMarchiori/m3class-backend/pkg/logger"
)

// ProfileResolver resolves the durable profile behind an authenticated
// principal on every request.
type ProfileResolver interface {
	Resolve(ctx context.Context, principalID uuid.UUID) (*profiles.ResolvedProfile, error)
}

// IdentityOverlay swaps the real identity for an impersonation target when an
// overlay is active for the session.
type IdentityOverlay interface {
	EffectiveIdentity(ctx context.Context, accessID string, real *profiles.ResolvedProfile) (access.Identity, bool, error)
}

// Auth validates the bearer token, checks the Redis session, resolves the
// profile and applies any impersonation overlay. Downstream handlers only see
// the effective identity and its school scope.
func Auth(cfg config.JWTConfig, verifier session.AccessSessionChecker, resolver ProfileResolver, overlay IdentityOverlay, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimSpace(r.Header.Get("Authorization"))
			if raw == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			token := raw
			if strings.HasPrefix(strings.ToLower(token), "bearer ") {
				token = strings.TrimSpace(token[7:])
			}
			if token == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			claims, err := pkgAuth.ParseAccessToken(cfg, token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token"))
				return
			}
			if claims.ID == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing session id"))
				return
			}

			if verifier != nil {
				ok, err := verifier.HasSession(r.Context(), claims.ID)
				if err != nil {
					responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "validate session"))
					return
				}
				if !ok {
					responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "session unavailable"))
					return
				}
			}

			resolved, err := resolver.Resolve(r.Context(), claims.UserID)
			if err != nil {
				// Resolution failure means unauthenticated, not a broken page.
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "unresolvable profile"))
				return
			}

			identity := resolved.Identity()
			impersonated := false
			if overlay != nil {
				identity, impersonated, err = overlay.EffectiveIdentity(r.Context(), claims.ID, resolved)
				if err != nil {
					responses.WriteError(r.Context(), logg, w, err)
					return
				}
			}
			scope := access.ResolveSchoolScope(identity)

			ctx := context.WithValue(r.Context(), ctxAccessID, claims.ID)
			ctx = context.WithValue(ctx, ctxIdentity, identity)
			ctx = context.WithValue(ctx, ctxScope, scope)
			ctx = context.WithValue(ctx, ctxImpersonated, impersonated)

			if logg != nil {
				fields := map[string]any{
					"user_id":   identity.UserID.String(),
					"user_type": string(identity.UserType),
				}
				if impersonated {
					fields["impersonated"] = true
					fields["real_user_id"] = resolved.Profile.ID.String()
				}
				if len(identity.SchoolIDs) > 0 {
					fields["school_id"] = identity.SchoolIDs[0].String()
				}
				ctx = logg.WithFields(ctx, fields)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
