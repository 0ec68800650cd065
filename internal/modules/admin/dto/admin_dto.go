package dto

type UpdateUserRequest struct {
	FullName *string `json:"full_name" binding:"omitempty,min=1,max=100"`
	RoleID   *uint   `json:"role_id" binding:"omitempty,oneof=1 2 3"`
	// Streak and CurrentPoints are deliberately absent: balances change only
	// through moderation and redemption.
}

type Stats struct {
	TotalUsers       int64 `json:"total_users"`
	PendingPosts     int64 `json:"pending_posts"`
	ApprovedPosts    int64 `json:"approved_posts"`
	RejectedPosts    int64 `json:"rejected_posts"`
	TotalRedemptions int64 `json:"total_redemptions"`
}
