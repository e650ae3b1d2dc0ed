package dto

import "time"

// AddReviewDTO 发表评价
type AddReviewDTO struct {
	Rating  int    `json:"rating" validate:"required,gte=1,lte=5"`
	Content string `json:"content" validate:"required,max=4000"`
}

// EditReviewDTO 修改评价，字段为空表示不修改
type EditReviewDTO struct {
	Rating  *int    `json:"rating,omitempty" validate:"omitempty,gte=1,lte=5"`
	Content *string `json:"content,omitempty" validate:"omitempty,max=4000"`
}

// ReviewDTO 评价详情，带点赞用户列表
type ReviewDTO struct {
	ID          uint64    `json:"id"`
	RecipeID    uint64    `json:"recipe_id"`
	AuthorID    uint64    `json:"author_id"`
	Rating      int       `json:"rating"`
	Content     string    `json:"content"`
	LikeCount   int64     `json:"like_count"`
	Likers      []uint64  `json:"likers"`
	SubmittedAt time.Time `json:"submitted_at"`
	ModifiedAt  time.Time `json:"modified_at"`
}
