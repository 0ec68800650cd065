package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Static post status IDs, seeded at startup.
const (
	StatusPending  uint = 1
	StatusApproved uint = 2
	StatusRejected uint = 3
)

type PostStatus struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"size:20;uniqueIndex;not null" json:"name"`
}

// Post is a green-action submission. awarded_points is nonzero only when the
// post is approved; rejection_reason is set only when it is rejected.
type Post struct {
	ID              uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID          uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	User            User       `gorm:"constraint:OnDelete:CASCADE" json:"user,omitempty"`
	Title           string     `gorm:"size:255;not null" json:"title"`
	Content         string     `gorm:"type:text;not null" json:"content"`
	ImageURL        *string    `gorm:"type:text" json:"image_url,omitempty"`
	Tag             string     `gorm:"size:50;not null;default:''" json:"tag"`
	StatusID        uint       `gorm:"not null;default:1;index" json:"status_id"`
	Status          PostStatus `gorm:"foreignKey:StatusID" json:"status,omitempty"`
	AdminID         *uuid.UUID `gorm:"type:uuid" json:"admin_id,omitempty"`
	AwardedPoints   int        `gorm:"not null;default:0" json:"awarded_points"`
	SubmittedAt     time.Time  `gorm:"autoCreateTime" json:"submitted_at"`
	DecidedAt       *time.Time `gorm:"index" json:"decided_at,omitempty"`
	RejectionReason *string    `gorm:"type:text" json:"rejection_reason,omitempty"`
}

func (p *Post) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == uuid.Nil {
		p.ID, err = uuid.NewV7()
	}
	return
}
