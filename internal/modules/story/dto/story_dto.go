package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/greenloop/greenloop-backend/internal/entity"
)

type StoryResponse struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Username  string    `json:"username,omitempty"`
	AvatarURL *string   `json:"avatar_url,omitempty"`
	ImageURL  string    `json:"image_url"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
	ViewCount int64     `json:"view_count"`
	Viewed    bool      `json:"viewed"`
}

// UserStories groups a user's active stories for the story tray.
type UserStories struct {
	UserID    uuid.UUID       `json:"user_id"`
	Username  string          `json:"username"`
	AvatarURL *string         `json:"avatar_url,omitempty"`
	Stories   []StoryResponse `json:"stories"`
}

func ToStoryResponse(s *entity.Story, viewCount int64, viewed bool) StoryResponse {
	return StoryResponse{
		ID:        s.ID,
		UserID:    s.UserID,
		Username:  s.User.Username,
		AvatarURL: s.User.AvatarURL,
		ImageURL:  s.ImageURL,
		CreatedAt: s.CreatedAt,
		ExpiresAt: s.ExpiresAt,
		ViewCount: viewCount,
		Viewed:    viewed,
	}
}
