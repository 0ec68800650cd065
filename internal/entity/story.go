package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StoryTTL is how long a story stays visible after creation.
const StoryTTL = 24 * time.Hour

// Story expires 24 hours after creation. Expired stories are filtered on
// query, not physically purged.
type Story struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	User      User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
	ImageURL  string    `gorm:"type:text;not null" json:"image_url"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	ExpiresAt time.Time `gorm:"not null;index" json:"expires_at"`
}

func (s *Story) BeforeCreate(tx *gorm.DB) (err error) {
	if s.ID == uuid.Nil {
		s.ID, err = uuid.NewV7()
	}
	if s.ExpiresAt.IsZero() {
		s.ExpiresAt = time.Now().UTC().Add(StoryTTL)
	}
	return
}

// StoryView records one viewer per story; the owner's own views are never
// recorded, so view count is simply the row count.
type StoryView struct {
	ID       uint      `gorm:"primaryKey" json:"id"`
	StoryID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_story_viewer,priority:1" json:"story_id"`
	UserID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_story_viewer,priority:2" json:"user_id"`
	ViewedAt time.Time `gorm:"autoCreateTime" json:"viewed_at"`
}
