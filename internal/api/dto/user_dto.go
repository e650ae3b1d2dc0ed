package dto

import "time"

// UserDTO 用户信息，带粉丝与关注列表
type UserDTO struct {
	ID             uint64    `json:"id"`
	Name           string    `json:"name"`
	Gender         string    `json:"gender"`
	Age            int       `json:"age"`
	IsDeleted      bool      `json:"is_deleted"`
	FollowerCount  int64     `json:"follower_count"`
	FollowingCount int64     `json:"following_count"`
	Followers      []uint64  `json:"followers"`
	Following      []uint64  `json:"following"`
	CreatedAt      time.Time `json:"created_at"`
}

// CredentialDTO 登录凭证
type CredentialDTO struct {
	UserID   uint64 `json:"user_id" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// UpdateProfileDTO 修改资料，字段为空表示不修改
type UpdateProfileDTO struct {
	Gender *string `json:"gender,omitempty" validate:"omitempty,min=1,max=16"`
	Age    *int    `json:"age,omitempty" validate:"omitempty,gte=0,lte=150"`
}

// FollowCountDTO 关注计数
type FollowCountDTO struct {
	FollowerCount  int64 `json:"follower_count"`
	FollowingCount int64 `json:"following_count"`
}

// ToggleResultDTO 关注/点赞切换结果
type ToggleResultDTO struct {
	State string `json:"state"`
	Count int64  `json:"count"`
}

// FollowRatioDTO 粉丝/关注比最高的用户
type FollowRatioDTO struct {
	UserID uint64  `json:"user_id"`
	Name   string  `json:"name"`
	Ratio  float64 `json:"ratio"`
}
