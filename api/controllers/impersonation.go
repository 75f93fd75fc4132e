package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/MarceloMarchiori/m3class-backend/api/middleware"
	"github.com/MarceloMarchiori/m3class-backend/api/responses"
	"github.com/MarceloMarchiori/m3class-backend/api/validators"
	"github.com/MarceloMarchiori/m3class-backend/internal/impersonation"
	pkgerrors "github.com/MarceloMarchiori/m3class-backend/pkg/errors"
	"github.com/MarceloMarchiori/m3class-backend/pkg/logger"
)

type impersonationStartRequest struct {
	TargetID string `json:"target_id" validate:"required,uuid"`
}

// ImpersonationStart activates the overlay for the caller's session. The
// service re-validates that the caller is a master and the target exists.
func ImpersonationStart(svc *impersonation.Service, resolver middleware.ProfileResolver, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil || resolver == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "impersonation service unavailable"))
			return
		}

		identity, ok := middleware.IdentityFromContext(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required"))
			return
		}
		if middleware.ImpersonationActive(r.Context()) {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeStateConflict, "impersonation already active"))
			return
		}

		var body impersonationStartRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		targetID, err := uuid.Parse(body.TargetID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid target id"))
			return
		}

		target, err := resolver.Resolve(r.Context(), targetID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "target profile not found"))
			return
		}

		accessID := middleware.AccessIDFromContext(r.Context())
		summary := impersonation.TargetSummary{
			ID:       target.Profile.ID,
			UserType: target.Profile.UserType,
			Name:     target.Profile.Name,
		}
		if err := svc.Start(r.Context(), identity, accessID, summary); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{
			"status": "impersonating",
			"target": summary,
		})
	}
}

// ImpersonationStop clears the overlay. Stopping with no overlay active is a
// no-op success.
func ImpersonationStop(svc *impersonation.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "impersonation service unavailable"))
			return
		}
		if _, ok := middleware.IdentityFromContext(r.Context()); !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required"))
			return
		}

		accessID := middleware.AccessIDFromContext(r.Context())
		if err := svc.Stop(r.Context(), accessID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "stopped"})
	}
}
