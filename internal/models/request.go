package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type RequestStatus string

const (
	RequestStatusPosted          RequestStatus = "posted"
	RequestStatusAwaitingPayment RequestStatus = "awaiting_payment"
	RequestStatusInProgress      RequestStatus = "in_progress"
	RequestStatusCompleted       RequestStatus = "completed"
	RequestStatusCancelled       RequestStatus = "cancelled"
)

// Valid reports whether s is one of the known request statuses
func (s RequestStatus) Valid() bool {
	switch s {
	case RequestStatusPosted, RequestStatusAwaitingPayment, RequestStatusInProgress,
		RequestStatusCompleted, RequestStatusCancelled:
		return true
	}
	return false
}

// Request is a customer's service posting
type Request struct {
	ID            uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	CustomerID    uuid.UUID     `gorm:"type:uuid;not null;index" json:"customer_id"`
	Category      string        `gorm:"size:50;not null" json:"category"`
	Description   string        `gorm:"type:text;not null" json:"description"`
	Price         int64         `gorm:"not null;default:0" json:"price"`
	ScheduledAt   *time.Time    `json:"scheduled_at"`
	RegionSigungu string        `gorm:"size:100;not null;index:idx_requests_region" json:"region_sigungu"`
	RegionDong    string        `gorm:"size:100;not null;index:idx_requests_region" json:"region_dong"`
	AddressID     uuid.UUID     `gorm:"type:uuid;not null" json:"address_id"`
	Status        RequestStatus `gorm:"size:50;not null;default:posted;index" json:"status"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

func (Request) TableName() string {
	return "requests"
}

func (r *Request) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// NewRequestInput carries the fields a customer submits when posting a request
type NewRequestInput struct {
	Category      string     `json:"category"`
	Description   string     `json:"description"`
	Price         int64      `json:"price"`
	ScheduledAt   *time.Time `json:"scheduled_at"`
	RegionSigungu string     `json:"region_sigungu"`
	RegionDong    string     `json:"region_dong"`
	AddressID     string     `json:"address_id"`
}

// RequestDetail is a request together with the proposals made against it
type RequestDetail struct {
	Request   *Request    `json:"request"`
	Proposals []*Proposal `json:"proposals"`
}
