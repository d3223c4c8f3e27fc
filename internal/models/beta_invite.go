package models

import (
	"time"

	"gorm.io/datatypes"
)

// BetaInvite is one issued beta access grant.
//
// Records are immutable after creation with a single exception: redeeming a
// wildcard invite deletes it, consuming its one global use. Email-bound
// invites survive redemption because the (email, code) pair stays unique.
type BetaInvite struct {
	BaseModel

	// Email binds the code to one registrant. Nil for pure wildcard invites.
	Email *string `gorm:"uniqueIndex;size:255" json:"email,omitempty"`

	// Code is the redemption token, unique system-wide.
	Code string `gorm:"uniqueIndex;size:64;not null" json:"code"`

	// GoldenTicket suppresses invite-link delivery; the caller distributes
	// the code out-of-band.
	GoldenTicket bool `gorm:"default:false" json:"goldenTicket"`

	// Wildcard invites are redeemable by any email and deleted on redemption.
	Wildcard bool `gorm:"default:false" json:"wildcard"`

	AddedAt time.Time `gorm:"not null" json:"addedAt"`

	// Extra holds caller-extensible fields validated against the configured
	// field schema at mint time.
	Extra datatypes.JSONMap `gorm:"type:json" json:"extra,omitempty"`
}

// TableName keeps the storage schema of the original beta plugin.
func (BetaInvite) TableName() string { return "beta" }
