package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Contribution states. Only confirmed contributions count towards project
// totals; the waiting and refund states still block duplicate pledges.
const (
	ContributionPending             = "pending"
	ContributionWaitingConfirmation = "waiting_confirmation"
	ContributionConfirmed           = "confirmed"
	ContributionRequestedRefund     = "requested_refund"
	ContributionRefunded            = "refunded"
	ContributionCanceled            = "canceled"
)

// CountableStates are the states in which a pledge is treated as made for
// eligibility checks.
var CountableStates = []string{
	ContributionConfirmed,
	ContributionWaitingConfirmation,
	ContributionRequestedRefund,
}

// Contribution is a financial pledge by a user to a project.
type Contribution struct {
	ID         uint   `gorm:"primarykey"`
	UserID     uint   `gorm:"index;not null"`
	ProjectID  uint   `gorm:"index;not null"`
	State      string `gorm:"size:32;not null;default:pending;index"`
	ValueCents int64  `gorm:"not null;default:0"`
	Key        string `gorm:"size:36;uniqueIndex;not null"`
	Credits    bool   `gorm:"default:false;not null"` // paid with platform credits
	Anonymous  bool   `gorm:"default:false;not null"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (c *Contribution) BeforeCreate(tx *gorm.DB) error {
	if c.ID == 0 {
		c.ID = GenerateID()
	}
	if c.Key == "" {
		c.Key = uuid.NewString()
	}
	return nil
}
