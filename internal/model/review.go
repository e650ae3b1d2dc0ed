package model

import (
	"time"
)

type Review struct {
	ID          uint64    `gorm:"primaryKey;autoIncrement:false"`
	RecipeID    uint64    `gorm:"not null;index:idx_recipe_id"`
	AuthorID    uint64    `gorm:"not null;index:idx_review_author_id"`
	Rating      int       `gorm:"not null;check:chk_reviews_rating,rating >= 1 AND rating <= 5"`
	Content     string    `gorm:"type:varchar(4000);not null"`
	LikeCount   int64     `gorm:"not null;default:0"`
	SubmittedAt time.Time `gorm:"not null"`
	ModifiedAt  time.Time `gorm:"not null"`
}

func (Review) TableName() string {
	return "reviews"
}
