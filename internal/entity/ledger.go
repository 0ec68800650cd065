package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PointHistory is the append-only EcoToken ledger. Every change to
// User.CurrentPoints on the earning path writes exactly one row here.
// Rows are never updated or deleted.
type PointHistory struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	UserID          uuid.UUID  `gorm:"type:uuid;not null;index:idx_points_user_date,priority:1" json:"user_id"`
	User            User       `gorm:"foreignKey:UserID" json:"-"`
	PostID          *uuid.UUID `gorm:"type:uuid" json:"post_id,omitempty"`
	AdminID         *uuid.UUID `gorm:"type:uuid" json:"admin_id,omitempty"`
	PointsChange    int        `gorm:"not null" json:"points_change"`
	TransactionDate time.Time  `gorm:"index:idx_points_user_date,priority:2" json:"transaction_date"`
}

// ItemsHistory records one successful redemption. Rows are write-once;
// only is_shipped may be flipped afterwards, by an admin.
type ItemsHistory struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID         uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	User           User      `gorm:"foreignKey:UserID" json:"-"`
	ItemID         uuid.UUID `gorm:"type:uuid;not null;index" json:"item_id"`
	Item           Item      `gorm:"foreignKey:ItemID" json:"item,omitempty"`
	RedemptionDate time.Time `gorm:"autoCreateTime" json:"redemption_date"`
	IsShipped      bool      `gorm:"not null;default:false" json:"is_shipped"`
}

func (h *ItemsHistory) BeforeCreate(tx *gorm.DB) error {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	return nil
}
