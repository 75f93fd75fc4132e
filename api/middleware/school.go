package middleware

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MarceloMarchiori/m3class-backend/api/responses"
	pkgerrors "github.com/MarceloMarchiori/m3class-backend/pkg/errors"
	"github.com/MarceloMarchiori/m3class-backend/pkg/logger"
)

// SchoolScope rejects requests whose {schoolID} route param falls outside the
// effective identity's scope. Services re-check; this keeps cross-tenant
// requests from reaching them at all.
func SchoolScope(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := chi.URLParam(r, "schoolID")
			schoolID, err := uuid.Parse(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid school id"))
				return
			}
			if !ScopeFromContext(r.Context()).Allows(schoolID) {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "acesso restrito"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
