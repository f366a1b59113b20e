package models

import (
	"time"

	"github.com/google/uuid"
)

type HelperTier string

const (
	TierBronze   HelperTier = "BRONZE"
	TierSilver   HelperTier = "SILVER"
	TierGold     HelperTier = "GOLD"
	TierPlatinum HelperTier = "PLATINUM"
	TierDiamond  HelperTier = "DIAMOND"
)

// DefaultMatchingScore is assigned to new profiles. Scores range 0-1000.
const DefaultMatchingScore = 500

// Profile holds the public-facing details of a user. ID equals the user id.
type Profile struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Name          string     `gorm:"size:100;not null" json:"name"`
	Tier          HelperTier `gorm:"size:20;not null;default:BRONZE" json:"tier"`
	MatchingScore int        `gorm:"not null;default:500" json:"matching_score"`
	IsOnline      bool       `gorm:"not null;default:false" json:"is_online"`
	RegionSigungu string     `gorm:"size:100" json:"region_sigungu"`
	RegionDong    string     `gorm:"size:100" json:"region_dong"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

func (Profile) TableName() string {
	return "profiles"
}

// ProfilePatch lists the profile fields a user may change; nil means unchanged
type ProfilePatch struct {
	Name          *string `json:"name"`
	RegionSigungu *string `json:"region_sigungu"`
	RegionDong    *string `json:"region_dong"`
	IsOnline      *bool   `json:"is_online"`
}
