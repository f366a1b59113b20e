package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type OrderStatus string

const (
	OrderStatusAccepted            OrderStatus = "accepted"
	OrderStatusEscrowHeld          OrderStatus = "escrow_held"
	OrderStatusInProgress          OrderStatus = "in_progress"
	OrderStatusDoneByHelper        OrderStatus = "done_by_helper"
	OrderStatusConfirmedByCustomer OrderStatus = "confirmed_by_customer"
	OrderStatusPaidOut             OrderStatus = "paid_out"
	OrderStatusDisputed            OrderStatus = "disputed"
	OrderStatusCancelled           OrderStatus = "cancelled"
)

// orderTransitions lists, for every status, the statuses it may move to.
// Terminal statuses have no entry.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusAccepted:            {OrderStatusEscrowHeld, OrderStatusCancelled},
	OrderStatusEscrowHeld:          {OrderStatusInProgress, OrderStatusCancelled},
	OrderStatusInProgress:          {OrderStatusDoneByHelper, OrderStatusCancelled},
	OrderStatusDoneByHelper:        {OrderStatusConfirmedByCustomer, OrderStatusDisputed, OrderStatusCancelled},
	OrderStatusConfirmedByCustomer: {OrderStatusPaidOut, OrderStatusCancelled},
	OrderStatusDisputed:            {OrderStatusCancelled},
}

// Valid reports whether s is one of the known order statuses
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusAccepted, OrderStatusEscrowHeld, OrderStatusInProgress, OrderStatusDoneByHelper,
		OrderStatusConfirmedByCustomer, OrderStatusPaidOut, OrderStatusDisputed, OrderStatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether no further transition is possible from s
func (s OrderStatus) Terminal() bool {
	return s == OrderStatusPaidOut || s == OrderStatusCancelled
}

// CanTransitionTo reports whether next is directly reachable from s
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Order is the binding contract created when a proposal is accepted
type Order struct {
	ID         uuid.UUID   `gorm:"type:uuid;primaryKey" json:"id"`
	RequestID  uuid.UUID   `gorm:"type:uuid;not null;uniqueIndex" json:"request_id"`
	CustomerID uuid.UUID   `gorm:"type:uuid;not null;index" json:"customer_id"`
	HelperID   uuid.UUID   `gorm:"type:uuid;not null;index" json:"helper_id"`
	Status     OrderStatus `gorm:"size:50;not null;default:accepted;index" json:"status"`
	Amount     int64       `gorm:"not null" json:"amount"`
	AddressID  uuid.UUID   `gorm:"type:uuid" json:"address_id"`
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at"`
}

func (Order) TableName() string {
	return "orders"
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

// IsParticipant reports whether userID is the order's customer or helper
func (o *Order) IsParticipant(userID uuid.UUID) bool {
	return o.CustomerID == userID || o.HelperID == userID
}

// WorkEvent is an append-only record of one order status transition
type WorkEvent struct {
	ID         uuid.UUID   `gorm:"type:uuid;primaryKey" json:"id"`
	OrderID    uuid.UUID   `gorm:"type:uuid;not null;index" json:"order_id"`
	ActorID    uuid.UUID   `gorm:"type:uuid;not null" json:"actor_id"`
	EventType  string      `gorm:"size:100;not null" json:"event_type"`
	FromStatus OrderStatus `gorm:"size:50" json:"from_status"`
	ToStatus   OrderStatus `gorm:"size:50;not null" json:"to_status"`
	Payload    JSONMap     `gorm:"type:jsonb" json:"payload"`
	CreatedAt  time.Time   `gorm:"index" json:"created_at"`
}

func (WorkEvent) TableName() string {
	return "work_events"
}

func (e *WorkEvent) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

// TransitionInput is the body of an order status change
type TransitionInput struct {
	ToStatus  string  `json:"to_status"`
	EventType string  `json:"event_type"`
	Payload   JSONMap `json:"payload"`
}

// CheckoutQuote is the price breakdown shown before escrow is funded
type CheckoutQuote struct {
	OrderID     uuid.UUID `json:"order_id"`
	Amount      int64     `json:"amount"`
	PlatformFee int64     `json:"platform_fee"`
	Total       int64     `json:"total"`
	FeePercent  string    `json:"fee_percent"`
}
