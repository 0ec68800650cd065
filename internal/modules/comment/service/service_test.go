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
	commentRepo "github.com/greenloop/greenloop-backend/internal/modules/comment/repository"
	postRepo "github.com/greenloop/greenloop-backend/internal/modules/post/repository"
	"github.com/greenloop/greenloop-backend/pkg/apperror"
	"github.com/greenloop/greenloop-backend/pkg/pagination"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:commentsvc_%s?mode=memory&cache=shared", uuid.NewString())

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&entity.Role{}, &entity.User{}, &entity.PostStatus{}, &entity.Post{}, &entity.Comment{},
	); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func newService(t *testing.T) (CommentService, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	svc := NewCommentService(commentRepo.NewCommentRepository(db), postRepo.NewPostRepository(db), nil)
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
		Title:    "Cycled to work",
		Content:  "30km round trip",
		StatusID: entity.StatusApproved,
	}
	if err := db.Create(post).Error; err != nil {
		t.Fatalf("seed post: %v", err)
	}
	return post
}

func TestCreateComment_TrimsContent(t *testing.T) {
	svc, db := newService(t)
	author := seedUser(t, db)
	post := seedPost(t, db, author.ID)

	comment, err := svc.CreateComment(context.Background(), author.ID, post.ID, "  nice work!  ")
	if err != nil {
		t.Fatalf("CreateComment: %v", err)
	}
	if comment.Content != "nice work!" {
		t.Fatalf("content = %q; want trimmed %q", comment.Content, "nice work!")
	}
}

func TestCreateComment_WhitespaceOnlyRejected(t *testing.T) {
	svc, db := newService(t)
	author := seedUser(t, db)
	post := seedPost(t, db, author.ID)

	_, err := svc.CreateComment(context.Background(), author.ID, post.ID, "   \n\t ")
	if !errors.Is(err, apperror.ErrInvalidInput) {
		t.Fatalf("error = %v; want ErrInvalidInput", err)
	}
}

func TestCreateComment_UnknownPost(t *testing.T) {
	svc, db := newService(t)
	author := seedUser(t, db)

	_, err := svc.CreateComment(context.Background(), author.ID, uuid.New(), "hello")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("error = %v; want ErrNotFound", err)
	}
}

func TestDeleteComment_NonAuthorForbidden(t *testing.T) {
	svc, db := newService(t)
	author := seedUser(t, db)
	other := seedUser(t, db)
	post := seedPost(t, db, author.ID)

	comment, err := svc.CreateComment(context.Background(), author.ID, post.ID, "great")
	if err != nil {
		t.Fatalf("CreateComment: %v", err)
	}

	if err := svc.DeleteComment(context.Background(), other.ID, comment.ID); !errors.Is(err, apperror.ErrForbidden) {
		t.Fatalf("error = %v; want ErrForbidden", err)
	}

	// The comment must survive the failed deletion.
	comments, total, err := svc.ListByPost(context.Background(), post.ID, pagination.Params{Page: 1, Limit: 10})
	if err != nil {
		t.Fatalf("ListByPost: %v", err)
	}
	if total != 1 || len(comments) != 1 {
		t.Fatalf("comments = %d; want 1", total)
	}
}

func TestDeleteComment_Author(t *testing.T) {
	svc, db := newService(t)
	author := seedUser(t, db)
	post := seedPost(t, db, author.ID)

	comment, err := svc.CreateComment(context.Background(), author.ID, post.ID, "great")
	if err != nil {
		t.Fatalf("CreateComment: %v", err)
	}

	if err := svc.DeleteComment(context.Background(), author.ID, comment.ID); err != nil {
		t.Fatalf("DeleteComment: %v", err)
	}

	_, total, err := svc.ListByPost(context.Background(), post.ID, pagination.Params{Page: 1, Limit: 10})
	if err != nil {
		t.Fatalf("ListByPost: %v", err)
	}
	if total != 0 {
		t.Fatalf("comments = %d; want 0", total)
	}
}

func TestListByPost_Order(t *testing.T) {
	svc, db := newService(t)
	author := seedUser(t, db)
	post := seedPost(t, db, author.ID)

	for _, text := range []string{"first", "second", "third"} {
		if _, err := svc.CreateComment(context.Background(), author.ID, post.ID, text); err != nil {
			t.Fatalf("CreateComment(%q): %v", text, err)
		}
	}

	comments, _, err := svc.ListByPost(context.Background(), post.ID, pagination.Params{Page: 1, Limit: 10})
	if err != nil {
		t.Fatalf("ListByPost: %v", err)
	}
	if len(comments) != 3 || comments[0].Content != "first" || comments[2].Content != "third" {
		t.Fatalf("unexpected order: %+v", comments)
	}
}
