package model

import (
	"time"

	"gorm.io/gorm"
)

// Unsubscribe is a notification opt-out. A nil ProjectID opts the user out of
// all post notifications; a set ProjectID opts out of a single project.
type Unsubscribe struct {
	ID        uint  `gorm:"primarykey"`
	UserID    uint  `gorm:"index;not null"`
	ProjectID *uint `gorm:"index"`
	CreatedAt time.Time
}

func (u *Unsubscribe) BeforeCreate(tx *gorm.DB) error {
	if u.ID == 0 {
		u.ID = GenerateID()
	}
	return nil
}

// CategoryFollower subscribes a user to a project category.
type CategoryFollower struct {
	ID         uint `gorm:"primarykey"`
	UserID     uint `gorm:"index;not null"`
	CategoryID uint `gorm:"index;not null"`
	CreatedAt  time.Time
}

func (c *CategoryFollower) BeforeCreate(tx *gorm.DB) error {
	if c.ID == 0 {
		c.ID = GenerateID()
	}
	return nil
}

// Channel is an optional curated page an account can belong to.
type Channel struct {
	ID        uint   `gorm:"primarykey"`
	Name      string `gorm:"size:128;not null"`
	Permalink string `gorm:"size:128;uniqueIndex;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (c *Channel) BeforeCreate(tx *gorm.DB) error {
	if c.ID == 0 {
		c.ID = GenerateID()
	}
	return nil
}
