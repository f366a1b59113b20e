package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PaymentTransactionType string

const (
	PaymentTypeEscrowHold  PaymentTransactionType = "escrow_hold"
	PaymentTypePayout      PaymentTransactionType = "payout"
	PaymentTypePlatformFee PaymentTransactionType = "platform_fee"
	PaymentTypeRefund      PaymentTransactionType = "refund"
)

type PaymentTransactionStatus string

const (
	PaymentStatusConfirmed PaymentTransactionStatus = "confirmed"
	PaymentStatusFailed    PaymentTransactionStatus = "failed"
)

// PaymentTransaction is one ledger line recorded against an order
type PaymentTransaction struct {
	ID         uuid.UUID                `gorm:"type:uuid;primaryKey" json:"id"`
	OrderID    uuid.UUID                `gorm:"type:uuid;not null;index" json:"order_id"`
	Type       PaymentTransactionType   `gorm:"size:50;not null" json:"type"`
	Amount     int64                    `gorm:"not null" json:"amount"`
	GatewayRef string                   `gorm:"size:255" json:"gateway_ref"`
	Status     PaymentTransactionStatus `gorm:"size:50;not null;default:confirmed" json:"status"`
	CreatedAt  time.Time                `json:"created_at"`
}

func (PaymentTransaction) TableName() string {
	return "payment_transactions"
}

func (p *PaymentTransaction) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
