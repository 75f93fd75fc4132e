package controllers

import (
	"net/http"

	"github.com/MarceloMarchiori/m3class-backend/api/responses"
	"github.com/MarceloMarchiori/m3class-backend/api/validators"
	"github.com/MarceloMarchiori/m3class-backend/internal/auth"
	pkgerrors "github.com/MarceloMarchiori/m3class-backend/pkg/errors"
	"github.com/MarceloMarchiori/m3class-backend/pkg/logger"
)

// AuthLogin wires the login endpoint into the HTTP layer.
func AuthLogin(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			err := pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable")
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body auth.LoginRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Login(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		w.Header().Set("X-M3C-Token", result.AccessToken)
		responses.WriteSuccess(w, result)
	}
}
