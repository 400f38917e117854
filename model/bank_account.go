package model

import (
	"time"

	"gorm.io/gorm"
)

// BankAccount holds the payout destination for a project owner.
type BankAccount struct {
	ID            uint   `gorm:"primarykey"`
	UserID        uint   `gorm:"uniqueIndex;not null"`
	BankCode      string `gorm:"size:8;not null"`
	BankName      string `gorm:"size:64;not null"`
	Agency        string `gorm:"size:16;not null"`
	AgencyDigit   string `gorm:"size:4"`
	Account       string `gorm:"size:16;not null"`
	AccountDigit  string `gorm:"size:4"`
	OwnerName     string `gorm:"size:128;not null"`
	OwnerDocument string `gorm:"size:32;not null"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (b *BankAccount) BeforeCreate(tx *gorm.DB) error {
	if b.ID == 0 {
		b.ID = GenerateID()
	}
	return nil
}

// UserTotal is the precomputed per-user aggregate of credits and contributed
// projects. It is recomputed outside this service; reads tolerate a missing
// row and treat it as zero.
type UserTotal struct {
	ID                       uint  `gorm:"primarykey"`
	UserID                   uint  `gorm:"uniqueIndex;not null"`
	CreditCents              int64 `gorm:"not null;default:0"`
	TotalContributedProjects int64 `gorm:"not null;default:0"`
	UpdatedAt                time.Time
}

func (t *UserTotal) BeforeCreate(tx *gorm.DB) error {
	if t.ID == 0 {
		t.ID = GenerateID()
	}
	return nil
}
