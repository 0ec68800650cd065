package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Static role IDs, seeded at startup and never mutated at runtime.
const (
	RoleUser      uint = 1
	RoleAdmin     uint = 2
	RoleModerator uint = 3
)

type Role struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:50;uniqueIndex;not null" json:"name"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

type User struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Username      string     `gorm:"size:50;uniqueIndex;not null" json:"username"`
	PasswordHash  string     `gorm:"size:255;not null" json:"-"`
	FullName      string     `gorm:"size:100;not null" json:"full_name"`
	Gender        *string    `gorm:"size:20" json:"gender,omitempty"`
	BirthDate     *time.Time `json:"birth_date,omitempty"`
	Phone         *string    `gorm:"size:30" json:"phone,omitempty"`
	Address       *string    `gorm:"type:text" json:"address,omitempty"`
	AvatarURL     *string    `gorm:"type:text" json:"avatar_url,omitempty"`
	RoleID        uint       `gorm:"not null;default:1" json:"role_id"`
	Role          Role       `gorm:"constraint:OnUpdate:CASCADE" json:"role"`
	CurrentPoints int        `gorm:"not null;default:0" json:"current_points"`
	Streak        int        `gorm:"not null;default:0" json:"streak"`
	CreatedAt     time.Time  `gorm:"autoCreateTime" json:"created_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// IsStaff reports whether the user may moderate posts.
func (u *User) IsStaff() bool {
	return u.RoleID == RoleAdmin || u.RoleID == RoleModerator
}
