package bootstrap

import (
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/greenloop/greenloop-backend/internal/entity"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&entity.Role{},
		&entity.User{},
		&entity.PostStatus{},
		&entity.Post{},
		&entity.PointHistory{},
		&entity.Item{},
		&entity.ItemsHistory{},
		&entity.Like{},
		&entity.Comment{},
		&entity.Story{},
		&entity.StoryView{},
		&entity.AppConfig{},
		&entity.Notification{},
	)
}

// SeedRoles inserts the static role rows. Role IDs are fixed constants, so
// rows are created with explicit primary keys.
func SeedRoles(db *gorm.DB) error {
	roles := []entity.Role{
		{ID: entity.RoleUser, Name: "user"},
		{ID: entity.RoleAdmin, Name: "admin"},
		{ID: entity.RoleModerator, Name: "moderator"},
	}

	for _, role := range roles {
		var count int64
		if err := db.Model(&entity.Role{}).
			Where("id = ?", role.ID).
			Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			if err := db.Create(&role).Error; err != nil {
				return err
			}
		}
	}
	return nil
}

func SeedPostStatuses(db *gorm.DB) error {
	statuses := []entity.PostStatus{
		{ID: entity.StatusPending, Name: "pending"},
		{ID: entity.StatusApproved, Name: "approved"},
		{ID: entity.StatusRejected, Name: "rejected"},
	}

	for _, status := range statuses {
		var count int64
		if err := db.Model(&entity.PostStatus{}).
			Where("id = ?", status.ID).
			Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			if err := db.Create(&status).Error; err != nil {
				return err
			}
		}
	}
	return nil
}

// SeedAdminUser creates a development admin account. Only called when
// APP_ENV is development.
func SeedAdminUser(db *gorm.DB) error {
	var count int64
	if err := db.Model(&entity.User{}).
		Where("username = ?", "admin").
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		log.Debug().Msg("admin user already exists, skipping seed")
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := entity.User{
		Username:     "admin",
		PasswordHash: string(hash),
		FullName:     "Administrator",
		RoleID:       entity.RoleAdmin,
	}
	if err := db.Create(&admin).Error; err != nil {
		return err
	}

	log.Info().Str("username", "admin").Msg("development admin user seeded")
	return nil
}
