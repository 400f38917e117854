package model

import (
	"time"

	"gorm.io/gorm"
)

// AuditEvent records an account lifecycle or moderation action.
type AuditEvent struct {
	ID        uint   `gorm:"primarykey"`
	UserID    uint   `gorm:"index;not null"`
	EventType string `gorm:"size:64;not null;index"`
	ActorID   uint   `gorm:"index"` // admin who performed the action, 0 for self-service
	IP        string `gorm:"size:64"`
	UserAgent string `gorm:"size:256"`
	Reason    string `gorm:"size:256"`
	CreatedAt time.Time
}

func (e *AuditEvent) BeforeCreate(tx *gorm.DB) error {
	if e.ID == 0 {
		e.ID = GenerateID()
	}
	return nil
}
