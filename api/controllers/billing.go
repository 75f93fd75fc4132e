package controllers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MarceloMarchiori/m3class-backend/api/middleware"
	"github.com/MarceloMarchiori/m3class-backend/api/responses"
	"github.com/MarceloMarchiori/m3class-backend/api/validators"
	"github.com/MarceloMarchiori/m3class-backend/internal/billing"
	pkgerrors "github.com/MarceloMarchiori/m3class-backend/pkg/errors"
	"github.com/MarceloMarchiori/m3class-backend/pkg/logger"
)

type createSubscriptionRequest struct {
	SchoolID         string `json:"school_id" validate:"required,uuid"`
	PlanName         string `json:"plan_name" validate:"required"`
	MonthlyValue     string `json:"monthly_value" validate:"required"`
	CurrentPeriodEnd string `json:"current_period_end" validate:"required"`
}

// SchoolBilling returns the subscription and payment history for a school.
func SchoolBilling(svc billing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "billing service unavailable"))
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

		result, err := svc.GetSchoolBilling(r.Context(), identity, middleware.ScopeFromContext(r.Context()), schoolID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// CreateSubscription registers a billing plan for a school. Master only.
func CreateSubscription(svc billing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "billing service unavailable"))
			return
		}
		identity, ok := middleware.IdentityFromContext(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required"))
			return
		}

		var body createSubscriptionRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		schoolID, err := uuid.Parse(body.SchoolID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid school id"))
			return
		}
		monthlyValue, err := decimal.NewFromString(body.MonthlyValue)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid monthly value"))
			return
		}
		periodEnd, err := time.Parse(time.RFC3339, body.CurrentPeriodEnd)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid period end"))
			return
		}

		created, err := svc.CreateSubscription(r.Context(), identity, billing.CreateSubscriptionInput{
			SchoolID:         schoolID,
			PlanName:         body.PlanName,
			MonthlyValue:     monthlyValue,
			CurrentPeriodEnd: periodEnd,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, created)
	}
}

// MarkPaymentPaid settles a pending or overdue payment. Settling twice is a
// conflict, not a silent success.
func MarkPaymentPaid(svc billing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "billing service unavailable"))
			return
		}
		identity, ok := middleware.IdentityFromContext(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required"))
			return
		}

		paymentID, err := uuid.Parse(chi.URLParam(r, "paymentID"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment id"))
			return
		}

		payment, err := svc.MarkPaymentPaid(r.Context(), identity, middleware.ScopeFromContext(r.Context()), paymentID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, payment)
	}
}
