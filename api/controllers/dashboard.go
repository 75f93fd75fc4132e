package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/MarceloMarchiori/m3class-backend/api/middleware"
	"github.com/MarceloMarchiori/m3class-backend/api/responses"
	"github.com/MarceloMarchiori/m3class-backend/internal/access"
	"github.com/MarceloMarchiori/m3class-backend/pkg/enums"
	pkgerrors "github.com/MarceloMarchiori/m3class-backend/pkg/errors"
	"github.com/MarceloMarchiori/m3class-backend/pkg/logger"
)

type dashboardResponse struct {
	UserID         uuid.UUID             `json:"user_id"`
	Name           string                `json:"name"`
	UserType       enums.UserType        `json:"user_type"`
	SecretariaRole *enums.SecretariaRole `json:"secretaria_role,omitempty"`
	Dashboard      enums.Dashboard       `json:"dashboard"`
	Redirect       string                `json:"redirect"`
	Message        string                `json:"message,omitempty"`
	SchoolIDs      []uuid.UUID           `json:"school_ids"`
	Unrestricted   bool                  `json:"unrestricted"`
	Impersonating  bool                  `json:"impersonating"`
}

// Dashboard reports the effective identity, its landing dashboard, and the
// school scope the request will be filtered by. Under an active overlay this
// reflects the impersonated profile, not the master.
func Dashboard(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, ok := middleware.IdentityFromContext(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required"))
			return
		}
		scope := middleware.ScopeFromContext(r.Context())

		schoolIDs := scope.SchoolIDs
		if schoolIDs == nil {
			schoolIDs = []uuid.UUID{}
		}

		dashboard := access.ResolveDashboard(identity)
		resp := dashboardResponse{
			UserID:         identity.UserID,
			Name:           identity.Name,
			UserType:       identity.UserType,
			SecretariaRole: identity.SecretariaRole,
			Dashboard:      dashboard,
			Redirect:       "/dashboard/" + dashboard.String(),
			SchoolIDs:      schoolIDs,
			Unrestricted:   scope.Unrestricted,
			Impersonating:  middleware.ImpersonationActive(r.Context()),
		}
		// The restricted landing is a rendered denial, not a blank state.
		if dashboard == enums.DashboardRestricted {
			resp.Message = "Acesso Restrito"
		}
		responses.WriteSuccess(w, resp)
	}
}
