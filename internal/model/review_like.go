package model

import (
	"time"
)

type ReviewLike struct {
	ReviewID  uint64    `gorm:"primaryKey;autoIncrement:false" json:"reviewId"`
	UserID    uint64    `gorm:"primaryKey;autoIncrement:false;index:idx_like_user_id" json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
}

func (ReviewLike) TableName() string {
	return "review_likes"
}
