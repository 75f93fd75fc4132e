package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MarceloMarchiori/m3class-backend/pkg/enums"
)

// PaymentHistory records each monthly charge raised against a school.
type PaymentHistory struct {
	ID             uuid.UUID           `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	SchoolID       uuid.UUID           `gorm:"column:school_id;type:uuid;not null;index"`
	SubscriptionID *uuid.UUID          `gorm:"column:subscription_id;type:uuid"`
	Amount         decimal.Decimal     `gorm:"column:amount;type:numeric(12,2);not null"`
	Status         enums.PaymentStatus `gorm:"column:status;type:payment_status;not null;default:'pending'"`
	ReferenceMonth string              `gorm:"column:reference_month;not null"`
	PaidAt         *time.Time          `gorm:"column:paid_at"`
	CreatedAt      time.Time           `gorm:"column:created_at;autoCreateTime"`
}

// TableName keeps the plural-free legacy table name.
func (PaymentHistory) TableName() string {
	return "payment_history"
}
