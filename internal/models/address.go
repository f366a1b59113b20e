package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Address is a reusable customer-owned location. Deleting sets deleted_at.
type Address struct {
	ID            uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID        uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	RegionSigungu string         `gorm:"size:100;not null" json:"region_sigungu"`
	RegionDong    string         `gorm:"size:100;not null" json:"region_dong"`
	AddressLine   string         `gorm:"size:500;not null" json:"address_line"`
	AddressDetail string         `gorm:"size:500" json:"address_detail"`
	Lat           *float64       `json:"lat"`
	Lng           *float64       `json:"lng"`
	CreatedAt     time.Time      `json:"created_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Address) TableName() string {
	return "addresses"
}

func (a *Address) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// AddressInput is the body of a new address
type AddressInput struct {
	RegionSigungu string   `json:"region_sigungu"`
	RegionDong    string   `json:"region_dong"`
	AddressLine   string   `json:"address_line"`
	AddressDetail string   `json:"address_detail"`
	Lat           *float64 `json:"lat"`
	Lng           *float64 `json:"lng"`
}
