package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/greenloop/greenloop-backend/internal/entity"
)

type CreatePostRequest struct {
	Title   string `form:"title" binding:"required,max=255"`
	Content string `form:"content" binding:"required"`
	Tag     string `form:"tag" binding:"omitempty,max=50"`
}

// DecideRequest carries a moderator's approve/reject decision.
type DecideRequest struct {
	StatusID      uint   `json:"status_id" binding:"required,oneof=2 3"`
	AwardedPoints int    `json:"awarded_points" binding:"omitempty,gt=0"`
	RejectReason  string `json:"reject_reason" binding:"omitempty,max=500"`
}

// PostFilter narrows the feed query. UserID is resolved by the handler
// (it accepts "me" as well as a literal id) rather than bound directly.
type PostFilter struct {
	StatusID *uint      `form:"status_id" binding:"omitempty,oneof=1 2 3"`
	UserID   *uuid.UUID `form:"-"`
}

type PostResponse struct {
	ID              uuid.UUID  `json:"id"`
	UserID          uuid.UUID  `json:"user_id"`
	Username        string     `json:"username,omitempty"`
	Title           string     `json:"title"`
	Content         string     `json:"content"`
	ImageURL        *string    `json:"image_url,omitempty"`
	Tag             string     `json:"tag,omitempty"`
	StatusID        uint       `json:"status_id"`
	AwardedPoints   int        `json:"awarded_points"`
	SubmittedAt     time.Time  `json:"submitted_at"`
	DecidedAt       *time.Time `json:"decided_at,omitempty"`
	RejectionReason *string    `json:"rejection_reason,omitempty"`
	LikeCount       int64      `json:"like_count"`
}

type PaginatedPostResponse struct {
	Posts []PostResponse `json:"posts"`
	Total int64          `json:"total"`
	Page  int            `json:"page"`
	Limit int            `json:"limit"`
}

func ToPostResponse(p *entity.Post, likeCount int64) PostResponse {
	return PostResponse{
		ID:              p.ID,
		UserID:          p.UserID,
		Username:        p.User.Username,
		Title:           p.Title,
		Content:         p.Content,
		ImageURL:        p.ImageURL,
		Tag:             p.Tag,
		StatusID:        p.StatusID,
		AwardedPoints:   p.AwardedPoints,
		SubmittedAt:     p.SubmittedAt,
		DecidedAt:       p.DecidedAt,
		RejectionReason: p.RejectionReason,
		LikeCount:       likeCount,
	}
}
