package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/greenloop/greenloop-backend/internal/entity"
)

type CreateItemRequest struct {
	Name           string `form:"name" binding:"required,max=100"`
	RequiredPoints int    `form:"required_points" binding:"required,gt=0"`
	Tag            string `form:"tag" binding:"omitempty,max=50"`
}

type UpdateItemRequest struct {
	Name           *string `form:"name" binding:"omitempty,max=100"`
	RequiredPoints *int    `form:"required_points" binding:"omitempty,gt=0"`
	Tag            *string `form:"tag" binding:"omitempty,max=50"`
}

type RedemptionResponse struct {
	ID             uuid.UUID   `json:"id"`
	UserID         uuid.UUID   `json:"user_id"`
	Username       string      `json:"username,omitempty"`
	Item           entity.Item `json:"item"`
	RedemptionDate time.Time   `json:"redemption_date"`
	IsShipped      bool        `json:"is_shipped"`
	PointsSpent    int         `json:"points_spent"`
	BalanceAfter   int         `json:"balance_after"`
}

type PaginatedRedemptionResponse struct {
	Redemptions []RedemptionResponse `json:"redemptions"`
	Total       int64                `json:"total"`
	Page        int                  `json:"page"`
	Limit       int                  `json:"limit"`
}

func ToRedemptionResponse(h *entity.ItemsHistory) RedemptionResponse {
	return RedemptionResponse{
		ID:             h.ID,
		UserID:         h.UserID,
		Username:       h.User.Username,
		Item:           h.Item,
		RedemptionDate: h.RedemptionDate,
		IsShipped:      h.IsShipped,
		PointsSpent:    h.Item.RequiredPoints,
	}
}
