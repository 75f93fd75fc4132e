package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MarceloMarchiori/m3class-backend/api/middleware"
	"github.com/MarceloMarchiori/m3class-backend/api/responses"
	"github.com/MarceloMarchiori/m3class-backend/api/validators"
	"github.com/MarceloMarchiori/m3class-backend/internal/schools"
	"github.com/MarceloMarchiori/m3class-backend/pkg/enums"
	pkgerrors "github.com/MarceloMarchiori/m3class-backend/pkg/errors"
	"github.com/MarceloMarchiori/m3class-backend/pkg/logger"
)

type createSchoolRequest struct {
	Name       string  `json:"name" validate:"required"`
	SchoolType *string `json:"school_type,omitempty"`
	CNPJ       *string `json:"cnpj,omitempty"`
	Email      *string `json:"email,omitempty" validate:"omitempty,email"`
	Phone      *string `json:"phone,omitempty"`
	Address    *string `json:"address,omitempty"`
	City       *string `json:"city,omitempty"`
	State      *string `json:"state,omitempty"`
	ZipCode    *string `json:"zip_code,omitempty"`
	AdminUser  *string `json:"admin_user_id,omitempty" validate:"omitempty,uuid"`
}

type updateSchoolRequest struct {
	Name       *string `json:"name,omitempty"`
	SchoolType *string `json:"school_type,omitempty"`
	Email      *string `json:"email,omitempty" validate:"omitempty,email"`
	Phone      *string `json:"phone,omitempty"`
	Address    *string `json:"address,omitempty"`
	City       *string `json:"city,omitempty"`
	State      *string `json:"state,omitempty"`
	ZipCode    *string `json:"zip_code,omitempty"`
	AdminUser  *string `json:"admin_user_id,omitempty" validate:"omitempty,uuid"`
	IsActive   *bool   `json:"is_active,omitempty"`
}

// ListSchools returns the schools visible to the effective scope.
func ListSchools(svc schools.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "schools service unavailable"))
			return
		}

		result, err := svc.List(r.Context(), middleware.ScopeFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// GetSchool returns a single school when the scope allows it.
func GetSchool(svc schools.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "schools service unavailable"))
			return
		}

		schoolID, err := uuid.Parse(chi.URLParam(r, "schoolID"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid school id"))
			return
		}

		result, err := svc.GetByID(r.Context(), middleware.ScopeFromContext(r.Context()), schoolID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// CreateSchool provisions a new school. Master only.
func CreateSchool(svc schools.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "schools service unavailable"))
			return
		}
		identity, ok := middleware.IdentityFromContext(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required"))
			return
		}

		var body createSchoolRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := schools.CreateSchoolDTO{
			Name:    body.Name,
			CNPJ:    body.CNPJ,
			Email:   body.Email,
			Phone:   body.Phone,
			Address: body.Address,
			City:    body.City,
			State:   body.State,
			ZipCode: body.ZipCode,
		}
		if body.SchoolType != nil {
			schoolType := enums.SchoolType(*body.SchoolType)
			input.SchoolType = &schoolType
		}
		if body.AdminUser != nil {
			adminID, parseErr := uuid.Parse(*body.AdminUser)
			if parseErr != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, parseErr, "invalid admin user id"))
				return
			}
			input.AdminUserID = &adminID
		}

		created, err := svc.Create(r.Context(), identity, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, created)
	}
}

// UpdateSchool patches school fields, including the is_active soft flag.
func UpdateSchool(svc schools.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "schools service unavailable"))
			return
		}
		identity, ok := middleware.IdentityFromContext(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required"))
			return
		}

		schoolID, err := uuid.Parse(chi.URLParam(r, "schoolID"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid school id"))
			return
		}

		var body updateSchoolRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := schools.UpdateSchoolInput{
			Name:     body.Name,
			Email:    body.Email,
			Phone:    body.Phone,
			Address:  body.Address,
			City:     body.City,
			State:    body.State,
			ZipCode:  body.ZipCode,
			IsActive: body.IsActive,
		}
		if body.SchoolType != nil {
			schoolType := enums.SchoolType(*body.SchoolType)
			input.SchoolType = &schoolType
		}
		if body.AdminUser != nil {
			adminID, parseErr := uuid.Parse(*body.AdminUser)
			if parseErr != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, parseErr, "invalid admin user id"))
				return
			}
			input.AdminUserID = &adminID
		}

		updated, err := svc.Update(r.Context(), identity, middleware.ScopeFromContext(r.Context()), schoolID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, updated)
	}
}
