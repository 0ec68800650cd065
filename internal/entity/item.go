package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DefaultItemTag is the catalog category applied when none is given.
const DefaultItemTag = "handmade"

type Item struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name           string    `gorm:"size:100;not null" json:"name"`
	ImageURL       *string   `gorm:"type:text" json:"image_url,omitempty"`
	RequiredPoints int       `gorm:"not null" json:"required_points"`
	Tag            string    `gorm:"size:50;not null;default:'handmade'" json:"tag"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (i *Item) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	if i.Tag == "" {
		i.Tag = DefaultItemTag
	}
	return nil
}
