package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/MarceloMarchiori/m3class-backend/api/middleware"
	"github.com/MarceloMarchiori/m3class-backend/api/responses"
	"github.com/MarceloMarchiori/m3class-backend/internal/profiles"
	pkgerrors "github.com/MarceloMarchiori/m3class-backend/pkg/errors"
	"github.com/MarceloMarchiori/m3class-backend/pkg/logger"
)

type meResponse struct {
	Profile       profiles.ProfileDTO `json:"profile"`
	SchoolIDs     []uuid.UUID         `json:"school_ids"`
	Unrestricted  bool                `json:"unrestricted"`
	Impersonating bool                `json:"impersonating"`
}

// Me returns the full resolved profile behind the effective identity. Under an
// active overlay this is the impersonated user's profile.
func Me(resolver middleware.ProfileResolver, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, ok := middleware.IdentityFromContext(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required"))
			return
		}

		resolved, err := resolver.Resolve(r.Context(), identity.UserID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "unresolvable profile"))
			return
		}

		scope := middleware.ScopeFromContext(r.Context())
		schoolIDs := resolved.SchoolIDs
		if schoolIDs == nil {
			schoolIDs = []uuid.UUID{}
		}

		responses.WriteSuccess(w, meResponse{
			Profile:       resolved.Profile,
			SchoolIDs:     schoolIDs,
			Unrestricted:  scope.Unrestricted,
			Impersonating: middleware.ImpersonationActive(r.Context()),
		})
	}
}
