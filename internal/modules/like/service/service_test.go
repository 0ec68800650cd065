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
	likeRepo "github.com/greenloop/greenloop-backend/internal/modules/like/repository"
	postRepo "github.com/greenloop/greenloop-backend/internal/modules/post/repository"
	"github.com/greenloop/greenloop-backend/pkg/apperror"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:likesvc_%s?mode=memory&cache=shared", uuid.NewString())

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&entity.Role{}, &entity.User{}, &entity.PostStatus{}, &entity.Post{}, &entity.Like{},
	); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func newService(t *testing.T) (LikeService, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	svc := NewLikeService(likeRepo.NewLikeRepository(db), postRepo.NewPostRepository(db), nil, nil)
	return svc, db
}

func seedUser(t *testing.T, db *gorm.DB) *entity.User {
	t.Helper()
	user := &entity.User{
		Username:     "user_" + uuid.NewString()[:8],
		PasswordHash: "x",
		FullName:     "Test User",
		RoleID:       entity.RoleUser,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user
}

func seedPost(t *testing.T, db *gorm.DB, userID uuid.UUID) *entity.Post {
	t.Helper()
	post := &entity.Post{
		UserID:   userID,
		Title:    "Beach cleanup",
		Content:  "Collected two bags of litter",
		StatusID: entity.StatusApproved,
	}
	if err := db.Create(post).Error; err != nil {
		t.Fatalf("seed post: %v", err)
	}
	return post
}

func TestToggleLike_RoundTrip(t *testing.T) {
	svc, db := newService(t)
	author := seedUser(t, db)
	liker := seedUser(t, db)
	post := seedPost(t, db, author.ID)

	// like -> unlike -> like again
	first, err := svc.ToggleLike(context.Background(), liker.ID, post.ID)
	if err != nil {
		t.Fatalf("first toggle: %v", err)
	}
	if !first.Liked || first.Count != 1 {
		t.Fatalf("first toggle = %+v; want liked, count 1", first)
	}

	second, err := svc.ToggleLike(context.Background(), liker.ID, post.ID)
	if err != nil {
		t.Fatalf("second toggle: %v", err)
	}
	if second.Liked || second.Count != 0 {
		t.Fatalf("second toggle = %+v; want unliked, count 0", second)
	}

	third, err := svc.ToggleLike(context.Background(), liker.ID, post.ID)
	if err != nil {
		t.Fatalf("third toggle: %v", err)
	}
	if !third.Liked || third.Count != 1 {
		t.Fatalf("third toggle = %+v; want liked, count 1", third)
	}

	var rows int64
	db.Model(&entity.Like{}).Where("post_id = ?", post.ID).Count(&rows)
	if rows != 1 {
		t.Fatalf("like rows = %d; want 1", rows)
	}
}

func TestToggleLike_TwoUsersIndependent(t *testing.T) {
	svc, db := newService(t)
	author := seedUser(t, db)
	a := seedUser(t, db)
	b := seedUser(t, db)
	post := seedPost(t, db, author.ID)

	if _, err := svc.ToggleLike(context.Background(), a.ID, post.ID); err != nil {
		t.Fatalf("toggle a: %v", err)
	}
	status, err := svc.ToggleLike(context.Background(), b.ID, post.ID)
	if err != nil {
		t.Fatalf("toggle b: %v", err)
	}
	if status.Count != 2 {
		t.Fatalf("count = %d; want 2", status.Count)
	}

	// a unliking does not affect b's like.
	status, err = svc.ToggleLike(context.Background(), a.ID, post.ID)
	if err != nil {
		t.Fatalf("untoggle a: %v", err)
	}
	if status.Liked || status.Count != 1 {
		t.Fatalf("after a unlikes = %+v; want count 1", status)
	}
}

func TestToggleLike_UnknownPost(t *testing.T) {
	svc, db := newService(t)
	user := seedUser(t, db)

	_, err := svc.ToggleLike(context.Background(), user.ID, uuid.New())
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("error = %v; want ErrNotFound", err)
	}
}

func TestGetStatus_AnonymousSeesCountOnly(t *testing.T) {
	svc, db := newService(t)
	author := seedUser(t, db)
	liker := seedUser(t, db)
	post := seedPost(t, db, author.ID)

	if _, err := svc.ToggleLike(context.Background(), liker.ID, post.ID); err != nil {
		t.Fatalf("toggle: %v", err)
	}

	status, err := svc.GetStatus(context.Background(), nil, post.ID)
	if err != nil {
		t.Fatalf("GetStatus: %v", err)
	}
	if status.Liked || status.Count != 1 {
		t.Fatalf("anonymous status = %+v; want not liked, count 1", status)
	}

	status, err = svc.GetStatus(context.Background(), &liker.ID, post.ID)
	if err != nil {
		t.Fatalf("GetStatus: %v", err)
	}
	if !status.Liked {
		t.Fatal("liker's status should report liked")
	}
}
