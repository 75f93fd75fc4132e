package billing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/MarceloMarchiori/m3class-backend/internal/repo"
	"github.com/MarceloMarchiori/m3class-backend/pkg/db/models"
	"github.com/MarceloMarchiori/m3class-backend/pkg/enums"
)

// Repository handles billing persistence.
type Repository interface {
	CreateSubscription(ctx context.Context, subscription *models.SchoolSubscription) error
	UpdateSubscription(ctx context.Context, subscription *models.SchoolSubscription) error
	FindSubscriptionBySchool(ctx context.Context, schoolID uuid.UUID) (*models.SchoolSubscription, error)
	CreatePayment(ctx context.Context, payment *models.PaymentHistory) error
	FindPaymentByID(ctx context.Context, id uuid.UUID) (*models.PaymentHistory, error)
	ListPaymentsBySchool(ctx context.Context, schoolID uuid.UUID) ([]models.PaymentHistory, error)
	MarkPaymentPaid(ctx context.Context, id uuid.UUID, paidAt time.Time) (bool, error)
}

type repository struct {
	repo.Base
}

// NewRepository returns a billing repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(db)}
}

func (r *repository) CreateSubscription(ctx context.Context, subscription *models.SchoolSubscription) error {
	return r.DB(ctx).Create(subscription).Error
}

func (r *repository) UpdateSubscription(ctx context.Context, subscription *models.SchoolSubscription) error {
	return r.DB(ctx).Save(subscription).Error
}

func (r *repository) FindSubscriptionBySchool(ctx context.Context, schoolID uuid.UUID) (*models.SchoolSubscription, error) {
	var subscription models.SchoolSubscription
	err := r.DB(ctx).
		Where("school_id = ?", schoolID).
		Order("created_at DESC").
		First(&subscription).Error
	if err != nil {
		return nil, err
	}
	return &subscription, nil
}

func (r *repository) CreatePayment(ctx context.Context, payment *models.PaymentHistory) error {
	return r.DB(ctx).Create(payment).Error
}

func (r *repository) FindPaymentByID(ctx context.Context, id uuid.UUID) (*models.PaymentHistory, error) {
	var payment models.PaymentHistory
	if err := r.DB(ctx).Where("id = ?", id).First(&payment).Error; err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *repository) ListPaymentsBySchool(ctx context.Context, schoolID uuid.UUID) ([]models.PaymentHistory, error) {
	var payments []models.PaymentHistory
	err := r.DB(ctx).
		Where("school_id = ?", schoolID).
		Order("reference_month DESC, created_at DESC").
		Find(&payments).Error
	if err != nil {
		return nil, err
	}
	return payments, nil
}

func (r *repository) MarkPaymentPaid(ctx context.Context, id uuid.UUID, paidAt time.Time) (bool, error) {
	result := r.DB(ctx).
		Model(&models.PaymentHistory{}).
		Where("id = ? AND status <> ?", id, enums.PaymentStatusPaid).
		Updates(map[string]any{
			"status":  enums.PaymentStatusPaid,
			"paid_at": paidAt,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
