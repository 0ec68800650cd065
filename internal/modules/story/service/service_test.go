package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/greenloop/greenloop-backend/internal/entity"
	storyRepo "github.com/greenloop/greenloop-backend/internal/modules/story/repository"
	"github.com/greenloop/greenloop-backend/pkg/apperror"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:storysvc_%s?mode=memory&cache=shared", uuid.NewString())

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&entity.Role{}, &entity.User{}, &entity.Story{}, &entity.StoryView{},
	); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func newService(t *testing.T) (StoryService, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	return NewStoryService(storyRepo.NewStoryRepository(db), nil), db
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

func seedStory(t *testing.T, db *gorm.DB, userID uuid.UUID, expiresAt time.Time) *entity.Story {
	t.Helper()
	story := &entity.Story{
		UserID:    userID,
		ImageURL:  "https://res.cloudinary.com/demo/stories/pic.webp",
		ExpiresAt: expiresAt,
	}
	if err := db.Create(story).Error; err != nil {
		t.Fatalf("seed story: %v", err)
	}
	return story
}

func TestViewStory_Idempotent(t *testing.T) {
	svc, db := newService(t)
	owner := seedUser(t, db)
	viewer := seedUser(t, db)
	story := seedStory(t, db, owner.ID, time.Now().UTC().Add(time.Hour))

	for i := 0; i < 3; i++ {
		if err := svc.ViewStory(context.Background(), viewer.ID, story.ID); err != nil {
			t.Fatalf("ViewStory #%d: %v", i+1, err)
		}
	}

	var count int64
	db.Model(&entity.StoryView{}).Where("story_id = ?", story.ID).Count(&count)
	if count != 1 {
		t.Fatalf("view rows = %d; want 1", count)
	}
}

func TestViewStory_OwnerNoOp(t *testing.T) {
	svc, db := newService(t)
	owner := seedUser(t, db)
	story := seedStory(t, db, owner.ID, time.Now().UTC().Add(time.Hour))

	if err := svc.ViewStory(context.Background(), owner.ID, story.ID); err != nil {
		t.Fatalf("ViewStory(owner): %v", err)
	}

	var count int64
	db.Model(&entity.StoryView{}).Count(&count)
	if count != 0 {
		t.Fatalf("view rows = %d; want 0 for owner view", count)
	}
}

func TestViewStory_ExpiredNotFound(t *testing.T) {
	svc, db := newService(t)
	owner := seedUser(t, db)
	viewer := seedUser(t, db)
	story := seedStory(t, db, owner.ID, time.Now().UTC().Add(-time.Hour))

	err := svc.ViewStory(context.Background(), viewer.ID, story.ID)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("error = %v; want ErrNotFound", err)
	}
}

func TestListActive_FiltersExpired(t *testing.T) {
	svc, db := newService(t)
	owner := seedUser(t, db)
	viewer := seedUser(t, db)

	active := seedStory(t, db, owner.ID, time.Now().UTC().Add(time.Hour))
	seedStory(t, db, owner.ID, time.Now().UTC().Add(-time.Minute))

	groups, err := svc.ListActive(context.Background(), viewer.ID)
	if err != nil {
		t.Fatalf("ListActive: %v", err)
	}
	if len(groups) != 1 {
		t.Fatalf("groups = %d; want 1", len(groups))
	}
	if len(groups[0].Stories) != 1 || groups[0].Stories[0].ID != active.ID {
		t.Fatalf("stories = %+v; want only the active one", groups[0].Stories)
	}
}

func TestListActive_GroupsPerAuthorWithViewState(t *testing.T) {
	svc, db := newService(t)
	alice := seedUser(t, db)
	bob := seedUser(t, db)
	viewer := seedUser(t, db)

	s1 := seedStory(t, db, alice.ID, time.Now().UTC().Add(time.Hour))
	seedStory(t, db, alice.ID, time.Now().UTC().Add(time.Hour))
	seedStory(t, db, bob.ID, time.Now().UTC().Add(time.Hour))

	if err := svc.ViewStory(context.Background(), viewer.ID, s1.ID); err != nil {
		t.Fatalf("ViewStory: %v", err)
	}

	groups, err := svc.ListActive(context.Background(), viewer.ID)
	if err != nil {
		t.Fatalf("ListActive: %v", err)
	}
	if len(groups) != 2 {
		t.Fatalf("groups = %d; want 2", len(groups))
	}

	checked := 0
	for _, g := range groups {
		if g.UserID != alice.ID {
			continue
		}
		for _, s := range g.Stories {
			checked++
			if s.ID == s1.ID {
				if !s.Viewed || s.ViewCount != 1 {
					t.Fatalf("viewed story = %+v; want viewed with count 1", s)
				}
			} else if s.Viewed || s.ViewCount != 0 {
				t.Fatalf("unviewed story = %+v; want unviewed with count 0", s)
			}
		}
	}
	if checked != 2 {
		t.Fatalf("first author stories = %d; want 2", checked)
	}
}

func TestDeleteStory_OwnerOnly(t *testing.T) {
	svc, db := newService(t)
	owner := seedUser(t, db)
	other := seedUser(t, db)
	story := seedStory(t, db, owner.ID, time.Now().UTC().Add(time.Hour))

	if err := svc.DeleteStory(context.Background(), other.ID, story.ID); !errors.Is(err, apperror.ErrForbidden) {
		t.Fatalf("error = %v; want ErrForbidden", err)
	}

	if err := svc.DeleteStory(context.Background(), owner.ID, story.ID); err != nil {
		t.Fatalf("DeleteStory(owner): %v", err)
	}

	var count int64
	db.Model(&entity.Story{}).Count(&count)
	if count != 0 {
		t.Fatalf("stories = %d; want 0", count)
	}
}
