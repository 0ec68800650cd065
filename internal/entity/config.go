package entity

import "time"

// AppConfig stores one JSON configuration document per key. Version backs
// optimistic concurrency on the read-modify-write path.
type AppConfig struct {
	Key       string    `gorm:"size:50;primaryKey" json:"key"`
	Value     string    `gorm:"type:text;not null" json:"value"`
	Version   int       `gorm:"not null;default:0" json:"version"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
