package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/MarceloMarchiori/m3class-backend/internal/access"
	"github.com/MarceloMarchiori/m3class-backend/pkg/db/models"
	"github.com/MarceloMarchiori/m3class-backend/pkg/enums"
	pkgerrors "github.com/MarceloMarchiori/m3class-backend/pkg/errors"
)

type billingRepository interface {
	CreateSubscription(ctx context.Context, subscription *models.SchoolSubscription) error
	FindSubscriptionBySchool(ctx context.Context, schoolID uuid.UUID) (*models.SchoolSubscription, error)
	CreatePayment(ctx context.Context, payment *models.PaymentHistory) error
	FindPaymentByID(ctx context.Context, id uuid.UUID) (*models.PaymentHistory, error)
	ListPaymentsBySchool(ctx context.Context, schoolID uuid.UUID) ([]models.PaymentHistory, error)
	MarkPaymentPaid(ctx context.Context, id uuid.UUID, paidAt time.Time) (bool, error)
}

// SchoolBilling aggregates the school's subscription with its payment trail.
type SchoolBilling struct {
	Subscription *models.SchoolSubscription `json:"subscription,omitempty"`
	Payments     []models.PaymentHistory    `json:"payments"`
}

// CreateSubscriptionInput captures the data for a new school plan.
type CreateSubscriptionInput struct {
	SchoolID         uuid.UUID
	PlanName         string
	MonthlyValue     decimal.Decimal
	CurrentPeriodEnd time.Time
}

// Service exposes billing reads and the mark-as-paid mutation.
type Service interface {
	GetSchoolBilling(ctx context.Context, actor access.Identity, scope access.Scope, schoolID uuid.UUID) (*SchoolBilling, error)
	CreateSubscription(ctx context.Context, actor access.Identity, input CreateSubscriptionInput) (*models.SchoolSubscription, error)
	MarkPaymentPaid(ctx context.Context, actor access.Identity, scope access.Scope, paymentID uuid.UUID) (*models.PaymentHistory, error)
}

type service struct {
	repo billingRepository
}

// NewService builds the billing service.
func NewService(repo billingRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("billing repository required")
	}
	return &service{repo: repo}, nil
}

// canViewBilling gates billing reads to diretor level and above. The
// secretaria hierarchy only admits diretor; school_admin and master pass on
// user type alone.
func canViewBilling(actor access.Identity) bool {
	switch actor.UserType {
	case enums.UserTypeMaster, enums.UserTypeSchoolAdmin:
		return true
	default:
		return access.HasHierarchyAccess(actor, enums.SecretariaRoleDiretor)
	}
}

// canMarkPaid gates the payment mutation to diretor and school_admin (and
// master via impersonation or directly).
func canMarkPaid(actor access.Identity) bool {
	switch actor.UserType {
	case enums.UserTypeMaster, enums.UserTypeSchoolAdmin:
		return true
	default:
		return access.HasHierarchyAccess(actor, enums.SecretariaRoleDiretor)
	}
}

func (s *service) GetSchoolBilling(ctx context.Context, actor access.Identity, scope access.Scope, schoolID uuid.UUID) (*SchoolBilling, error) {
	if schoolID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "school id required")
	}
	if !canViewBilling(actor) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "acesso restrito")
	}
	if !scope.Allows(schoolID) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "acesso restrito")
	}

	billing := &SchoolBilling{Payments: []models.PaymentHistory{}}

	subscription, err := s.repo.FindSubscriptionBySchool(ctx, schoolID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load subscription")
	}
	billing.Subscription = subscription

	payments, err := s.repo.ListPaymentsBySchool(ctx, schoolID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list payments")
	}
	if payments != nil {
		billing.Payments = payments
	}
	return billing, nil
}

func (s *service) CreateSubscription(ctx context.Context, actor access.Identity, input CreateSubscriptionInput) (*models.SchoolSubscription, error) {
	if actor.UserType != enums.UserTypeMaster {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "acesso restrito")
	}
	if input.SchoolID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "school id required")
	}
	if input.PlanName == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "plan name required")
	}
	if input.MonthlyValue.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "monthly value cannot be negative")
	}
	if input.CurrentPeriodEnd.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "current period end required")
	}

	subscription := &models.SchoolSubscription{
		SchoolID:         input.SchoolID,
		PlanName:         input.PlanName,
		MonthlyValue:     input.MonthlyValue,
		Status:           enums.SubscriptionStatusActive,
		CurrentPeriodEnd: input.CurrentPeriodEnd,
	}
	if err := s.repo.CreateSubscription(ctx, subscription); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create subscription")
	}
	return subscription, nil
}

func (s *service) MarkPaymentPaid(ctx context.Context, actor access.Identity, scope access.Scope, paymentID uuid.UUID) (*models.PaymentHistory, error) {
	if paymentID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment id required")
	}
	if !canMarkPaid(actor) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "acesso restrito")
	}

	payment, err := s.repo.FindPaymentByID(ctx, paymentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "payment not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load payment")
	}
	if !scope.Allows(payment.SchoolID) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "acesso restrito")
	}
	if payment.Status == enums.PaymentStatusPaid {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "payment already settled")
	}

	paidAt := time.Now().UTC()
	updated, err := s.repo.MarkPaymentPaid(ctx, paymentID, paidAt)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark payment paid")
	}
	if !updated {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "payment already settled")
	}

	payment.Status = enums.PaymentStatusPaid
	payment.PaidAt = &paidAt
	return payment, nil
}
