package middleware

import (
	"net/http"

	"github.com/MarceloMarchiori/m3class-backend/api/responses"
	"github.com/MarceloMarchiori/m3class-backend/internal/access"
	"github.com/MarceloMarchiori/m3class-backend/pkg/enums"
	pkgerrors "github.com/MarceloMarchiori/m3class-backend/pkg/errors"
	"github.com/MarceloMarchiori/m3class-backend/pkg/logger"
)

// RequireUserTypes admits only the listed user types. Checks run against the
// effective identity, so an impersonating master is judged by the target.
func RequireUserTypes(logg *logger.Logger, types ...enums.UserType) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := IdentityFromContext(r.Context())
			if !ok {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}
			for _, t := range types {
				if identity.UserType == t {
					next.ServeHTTP(w, r)
					return
				}
			}
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "acesso restrito"))
		})
	}
}

// RequireHierarchy admits secretaria identities at or above the required
// level, plus the listed bypass user types.
func RequireHierarchy(logg *logger.Logger, required enums.SecretariaRole, bypass ...enums.UserType) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := IdentityFromContext(r.Context())
			if !ok {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}
			for _, t := range bypass {
				if identity.UserType == t {
					next.ServeHTTP(w, r)
					return
				}
			}
			if !access.HasHierarchyAccess(identity, required) {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "acesso restrito"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireCanCreateUsers admits only identities allowed to provision users.
func RequireCanCreateUsers(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := IdentityFromContext(r.Context())
			if !ok {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}
			if !access.CanCreateUsers(identity) {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "acesso restrito"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
