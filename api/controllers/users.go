package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/MarceloMarchiori/m3class-backend/api/middleware"
	"github.com/MarceloMarchiori/m3class-backend/api/responses"
	"github.com/MarceloMarchiori/m3class-backend/api/validators"
	"github.com/MarceloMarchiori/m3class-backend/internal/provisioning"
	"github.com/MarceloMarchiori/m3class-backend/pkg/enums"
	pkgerrors "github.com/MarceloMarchiori/m3class-backend/pkg/errors"
	"github.com/MarceloMarchiori/m3class-backend/pkg/logger"
)

type createUserRequest struct {
	Email          string   `json:"email" validate:"required,email"`
	Name           string   `json:"name" validate:"required"`
	Phone          *string  `json:"phone,omitempty"`
	UserType       string   `json:"user_type" validate:"required"`
	SecretariaRole *string  `json:"secretaria_role,omitempty"`
	SchoolIDs      []string `json:"school_ids" validate:"required,min=1,dive,uuid"`
}

// CreateUser provisions a profile with a generated temporary password. The
// clear password appears once in this response and is never persisted.
func CreateUser(svc provisioning.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "provisioning service unavailable"))
			return
		}
		identity, ok := middleware.IdentityFromContext(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required"))
			return
		}

		var body createUserRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		schoolIDs := make([]uuid.UUID, 0, len(body.SchoolIDs))
		for _, raw := range body.SchoolIDs {
			id, parseErr := uuid.Parse(raw)
			if parseErr != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, parseErr, "invalid school id"))
				return
			}
			schoolIDs = append(schoolIDs, id)
		}

		input := provisioning.CreateUserInput{
			Email:     body.Email,
			Name:      body.Name,
			Phone:     body.Phone,
			UserType:  enums.UserType(body.UserType),
			SchoolIDs: schoolIDs,
		}
		if body.SecretariaRole != nil {
			role, parseErr := enums.ParseSecretariaRole(*body.SecretariaRole)
			if parseErr != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, parseErr, "invalid secretaria role"))
				return
			}
			input.SecretariaRole = &role
		}

		created, err := svc.CreateUser(r.Context(), identity, middleware.ScopeFromContext(r.Context()), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, created)
	}
}
