package model

import (
	"time"

	"gorm.io/gorm"
)

// Project states.
const (
	ProjectDraft        = "draft"
	ProjectRejected     = "rejected"
	ProjectDeleted      = "deleted"
	ProjectInAnalysis   = "in_analysis"
	ProjectOnline       = "online"
	ProjectSuccessful   = "successful"
	ProjectWaitingFunds = "waiting_funds"
	ProjectFailed       = "failed"
)

// HiddenProjectStates are the states excluded from every public listing.
var HiddenProjectStates = []string{
	ProjectDraft, ProjectRejected, ProjectDeleted, ProjectInAnalysis,
}

type Project struct {
	ID        uint   `gorm:"primarykey"`
	UserID    uint   `gorm:"index;not null"`
	Name      string `gorm:"size:256;not null"`
	State     string `gorm:"size:32;not null;default:draft;index"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (p *Project) BeforeCreate(tx *gorm.DB) error {
	if p.ID == 0 {
		p.ID = GenerateID()
	}
	return nil
}

func (p *Project) Visible() bool {
	for _, state := range HiddenProjectStates {
		if p.State == state {
			return false
		}
	}
	return true
}
