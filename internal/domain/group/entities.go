package group

import (
	"time"

	"gorm.io/gorm"
)

// Group is a lending circle: one manager, a shared funding pool denominated
// in a single token.
type Group struct {
	ID                   uint64         `gorm:"primaryKey;column:id" json:"group_id"`
	Manager              string         `gorm:"size:32;index:idx_groups_manager" json:"manager"`
	FundingToken         string         `gorm:"size:32;not null" json:"funding_token"`
	FundingPool          int64          `gorm:"not null;default:0" json:"funding_pool"`
	IsOpen               bool           `gorm:"not null;default:true" json:"is_open"`
	NoSignOff            bool           `gorm:"not null;default:false" json:"no_sign_off"`
	HasActiveLoanRequest bool           `gorm:"not null;default:false" json:"has_active_loan_request"`
	CreatedAt            time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt            time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt            gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Group) TableName() string { return "lending_groups" }

// Membership ties a principal to exactly one group system-wide; the unique
// index on principal is what enforces single-group membership.
type Membership struct {
	ID        uint64    `gorm:"primaryKey;column:id" json:"-"`
	GroupID   uint64    `gorm:"not null;index:idx_memberships_group" json:"group_id"`
	Principal string    `gorm:"size:32;not null;uniqueIndex:ux_memberships_principal" json:"principal"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"joined_at"`
}

func (Membership) TableName() string { return "memberships" }
