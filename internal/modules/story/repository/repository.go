package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/greenloop/greenloop-backend/internal/entity"
)

type StoryRepository interface {
	Create(ctx context.Context, story *entity.Story) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Story, error)
	// ListActive returns unexpired stories, oldest first.
	ListActive(ctx context.Context, now time.Time) ([]entity.Story, error)
	Delete(ctx context.Context, id uuid.UUID) error

	// RecordView inserts a view row, ignoring duplicates.
	RecordView(ctx context.Context, storyID, userID uuid.UUID) error
	CountViews(ctx context.Context, storyID uuid.UUID) (int64, error)
	ViewedByUser(ctx context.Context, storyIDs []uuid.UUID, userID uuid.UUID) (map[uuid.UUID]bool, error)
	ViewCounts(ctx context.Context, storyIDs []uuid.UUID) (map[uuid.UUID]int64, error)
}

type storyRepository struct {
	db *gorm.DB
}

func NewStoryRepository(db *gorm.DB) StoryRepository {
	return &storyRepository{db: db}
}

func (r *storyRepository) Create(ctx context.Context, story *entity.Story) error {
	return r.db.WithContext(ctx).Create(story).Error
}

func (r *storyRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Story, error) {
	var story entity.Story
	err := r.db.WithContext(ctx).
		Preload("User").
		First(&story, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &story, nil
}

func (r *storyRepository) ListActive(ctx context.Context, now time.Time) ([]entity.Story, error) {
	var stories []entity.Story
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("expires_at > ?", now).
		Order("created_at asc").
		Find(&stories).Error
	return stories, err
}

func (r *storyRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&entity.Story{}, "id = ?", id).Error
}

func (r *storyRepository) RecordView(ctx context.Context, storyID, userID uuid.UUID) error {
	view := entity.StoryView{StoryID: storyID, UserID: userID}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&view).Error
}

func (r *storyRepository) CountViews(ctx context.Context, storyID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entity.StoryView{}).
		Where("story_id = ?", storyID).
		Count(&count).Error
	return count, err
}

func (r *storyRepository) ViewedByUser(ctx context.Context, storyIDs []uuid.UUID, userID uuid.UUID) (map[uuid.UUID]bool, error) {
	viewed := make(map[uuid.UUID]bool, len(storyIDs))
	if len(storyIDs) == 0 {
		return viewed, nil
	}

	var views []entity.StoryView
	err := r.db.WithContext(ctx).
		Where("story_id IN ? AND user_id = ?", storyIDs, userID).
		Find(&views).Error
	if err != nil {
		return nil, err
	}

	for _, v := range views {
		viewed[v.StoryID] = true
	}
	return viewed, nil
}

func (r *storyRepository) ViewCounts(ctx context.Context, storyIDs []uuid.UUID) (map[uuid.UUID]int64, error) {
	counts := make(map[uuid.UUID]int64, len(storyIDs))
	if len(storyIDs) == 0 {
		return counts, nil
	}

	type result struct {
		StoryID uuid.UUID
		Count   int64
	}
	var results []result

	err := r.db.WithContext(ctx).
		Model(&entity.StoryView{}).
		Select("story_id, count(*) as count").
		Where("story_id IN ?", storyIDs).
		Group("story_id").
		Scan(&results).Error
	if err != nil {
		return nil, err
	}

	for _, res := range results {
		counts[res.StoryID] = res.Count
	}
	return counts, nil
}
