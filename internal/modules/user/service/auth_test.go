package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	sqlite "github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/greenloop/greenloop-backend/internal/entity"
	"github.com/greenloop/greenloop-backend/internal/modules/user/dto"
	"github.com/greenloop/greenloop-backend/internal/modules/user/repository"
	"github.com/greenloop/greenloop-backend/pkg/apperror"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:authsvc_%s?mode=memory&cache=shared", uuid.NewString())

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&entity.Role{}, &entity.User{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	for _, role := range []entity.Role{
		{ID: entity.RoleUser, Name: "user"},
		{ID: entity.RoleAdmin, Name: "admin"},
		{ID: entity.RoleModerator, Name: "moderator"},
	} {
		if err := db.Create(&role).Error; err != nil {
			t.Fatalf("seed role: %v", err)
		}
	}
	return db
}

func TestRegister_NewUser(t *testing.T) {
	db := newTestDB(t)
	svc := NewAuthService(repository.NewUserRepository(db))

	resp, err := svc.Register(context.Background(), dto.RegisterRequest{
		Username: "greta",
		Password: "supersecret",
		FullName: "Greta T",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	if resp.AccessToken == "" {
		t.Fatal("expected access token")
	}
	if resp.User.PasswordHash != "" {
		t.Fatal("password hash leaked in response")
	}
	if resp.User.RoleID != entity.RoleUser {
		t.Fatalf("role = %d; want user", resp.User.RoleID)
	}
	if resp.User.CurrentPoints != 0 || resp.User.Streak != 0 {
		t.Fatalf("new user = %d points, streak %d; want zero", resp.User.CurrentPoints, resp.User.Streak)
	}
}

func TestRegister_DuplicateUsername(t *testing.T) {
	db := newTestDB(t)
	svc := NewAuthService(repository.NewUserRepository(db))

	req := dto.RegisterRequest{Username: "greta", Password: "supersecret", FullName: "Greta T"}
	if _, err := svc.Register(context.Background(), req); err != nil {
		t.Fatalf("first register: %v", err)
	}

	_, err := svc.Register(context.Background(), req)
	if !errors.Is(err, apperror.ErrConflict) {
		t.Fatalf("error = %v; want ErrConflict", err)
	}
}

func TestLogin(t *testing.T) {
	db := newTestDB(t)
	svc := NewAuthService(repository.NewUserRepository(db))

	if _, err := svc.Register(context.Background(), dto.RegisterRequest{
		Username: "greta", Password: "supersecret", FullName: "Greta T",
	}); err != nil {
		t.Fatalf("register: %v", err)
	}

	resp, err := svc.Login(context.Background(), dto.LoginRequest{Username: "greta", Password: "supersecret"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if resp.AccessToken == "" {
		t.Fatal("expected access token")
	}

	if _, err := svc.Login(context.Background(), dto.LoginRequest{Username: "greta", Password: "wrong"}); !errors.Is(err, apperror.ErrUnauthorized) {
		t.Fatalf("bad password error = %v; want ErrUnauthorized", err)
	}
	if _, err := svc.Login(context.Background(), dto.LoginRequest{Username: "nobody", Password: "supersecret"}); !errors.Is(err, apperror.ErrUnauthorized) {
		t.Fatalf("unknown user error = %v; want ErrUnauthorized", err)
	}
}
