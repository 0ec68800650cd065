package dto

import (
	"time"

	"github.com/greenloop/greenloop-backend/internal/entity"
)

type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=50"`
	Password string `json:"password" binding:"required,min=8,max=72"`
	FullName string `json:"full_name" binding:"required,max=100"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type AuthResponse struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	ExpiresIn   int64        `json:"expires_in"`
	User        *entity.User `json:"user"`
}

type UpdateProfileRequest struct {
	FullName  *string    `json:"full_name,omitempty" binding:"omitempty,max=100"`
	Gender    *string    `json:"gender,omitempty" binding:"omitempty,oneof=male female other"`
	BirthDate *time.Time `json:"birth_date,omitempty"`
	Phone     *string    `json:"phone,omitempty" binding:"omitempty,max=30"`
	Address   *string    `json:"address,omitempty"`
}
