package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProposalStatus string

const (
	ProposalStatusPending   ProposalStatus = "pending"
	ProposalStatusAccepted  ProposalStatus = "accepted"
	ProposalStatusRejected  ProposalStatus = "rejected"
	ProposalStatusWithdrawn ProposalStatus = "withdrawn"
)

// Proposal is a helper's bid on a request
type Proposal struct {
	ID            uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	RequestID     uuid.UUID      `gorm:"type:uuid;not null;index" json:"request_id"`
	HelperID      uuid.UUID      `gorm:"type:uuid;not null;index" json:"helper_id"`
	Message       string         `gorm:"type:text;not null" json:"message"`
	ProposedPrice *int64         `json:"proposed_price"`
	Status        ProposalStatus `gorm:"size:50;not null;default:pending;index" json:"status"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

func (Proposal) TableName() string {
	return "request_proposals"
}

func (p *Proposal) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// SubmitProposalInput is the body a helper sends to bid on a request
type SubmitProposalInput struct {
	Message       string `json:"message"`
	ProposedPrice *int64 `json:"proposed_price"`
}
