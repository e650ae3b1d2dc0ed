package repository

import (
	"Larder/internal/model"
	"Larder/internal/pkg/dbctx"
	"errors"

	"gorm.io/gorm"
)

// RatingTotals is the raw material of a recipe aggregate.
type RatingTotals struct {
	Count int64 `gorm:"column:review_count"`
	Sum   int64 `gorm:"column:rating_sum"`
}

type ReviewRepo interface {
	GetReview(dbc dbctx.Context, id uint64) (*model.Review, error)
	GetReviewForUpdate(dbc dbctx.Context, id uint64) (*model.Review, error)
	LockReviewIDsByRecipe(dbc dbctx.Context, recipeID uint64) ([]uint64, error)
	GetReviewIDsAfter(dbc dbctx.Context, afterID uint64, limit int) ([]uint64, error)
	CreateReview(dbc dbctx.Context, review *model.Review) error
	UpdateReview(dbc dbctx.Context, id uint64, updates map[string]interface{}) error
	DeleteReview(dbc dbctx.Context, id uint64) error
	DeleteReviewsByRecipe(dbc dbctx.Context, recipeID uint64) error
	GetRatingTotals(dbc dbctx.Context, recipeID uint64) (*RatingTotals, error)
	AddLikeCount(dbc dbctx.Context, id uint64, delta int64) error
	UpdateLikeCount(dbc dbctx.Context, id uint64, count int64) error
}

type ReviewRepoImpl struct {
	db *gorm.DB
}

func NewReviewRepo(db *gorm.DB) ReviewRepo {
	return &ReviewRepoImpl{db: db}
}

func (s *ReviewRepoImpl) GetReview(dbc dbctx.Context, id uint64) (*model.Review, error) {
	var review model.Review
	err := conn(s.db, dbc).Where("id = ?", id).First(&review).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &review, nil
}

// GetReviewForUpdate locks the review row. Like toggles and review deletes
// both take it before touching review_likes.
func (s *ReviewRepoImpl) GetReviewForUpdate(dbc dbctx.Context, id uint64) (*model.Review, error) {
	var review model.Review
	err := conn(s.db, dbc).Clauses(forUpdate).Where("id = ?", id).First(&review).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &review, nil
}

// LockReviewIDsByRecipe locks every review of the recipe in ascending id order
// and returns their ids.
func (s *ReviewRepoImpl) LockReviewIDsByRecipe(dbc dbctx.Context, recipeID uint64) ([]uint64, error) {
	var reviews []model.Review
	err := conn(s.db, dbc).Clauses(forUpdate).
		Select("id").
		Where("recipe_id = ?", recipeID).
		Order("id ASC").
		Find(&reviews).Error
	if err != nil {
		return nil, err
	}
	ids := make([]uint64, 0, len(reviews))
	for _, r := range reviews {
		ids = append(ids, r.ID)
	}
	return ids, nil
}

func (s *ReviewRepoImpl) GetReviewIDsAfter(dbc dbctx.Context, afterID uint64, limit int) ([]uint64, error) {
	var ids []uint64
	err := conn(s.db, dbc).Model(&model.Review{}).
		Where("id > ?", afterID).
		Order("id ASC").
		Limit(limit).
		Pluck("id", &ids).Error
	return ids, err
}

func (s *ReviewRepoImpl) CreateReview(dbc dbctx.Context, review *model.Review) error {
	return conn(s.db, dbc).Create(review).Error
}

func (s *ReviewRepoImpl) UpdateReview(dbc dbctx.Context, id uint64, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}
	return conn(s.db, dbc).Model(&model.Review{}).Where("id = ?", id).Updates(updates).Error
}

func (s *ReviewRepoImpl) DeleteReview(dbc dbctx.Context, id uint64) error {
	return conn(s.db, dbc).Where("id = ?", id).Delete(&model.Review{}).Error
}

func (s *ReviewRepoImpl) DeleteReviewsByRecipe(dbc dbctx.Context, recipeID uint64) error {
	return conn(s.db, dbc).Where("recipe_id = ?", recipeID).Delete(&model.Review{}).Error
}

// GetRatingTotals returns COUNT and SUM of ratings as integers so the mean can
// be rounded exactly by the caller.
func (s *ReviewRepoImpl) GetRatingTotals(dbc dbctx.Context, recipeID uint64) (*RatingTotals, error) {
	var totals RatingTotals
	err := conn(s.db, dbc).Model(&model.Review{}).
		Select("COUNT(*) AS review_count, COALESCE(SUM(rating), 0) AS rating_sum").
		Where("recipe_id = ?", recipeID).
		Scan(&totals).Error
	if err != nil {
		return nil, err
	}
	return &totals, nil
}

func (s *ReviewRepoImpl) AddLikeCount(dbc dbctx.Context, id uint64, delta int64) error {
	return conn(s.db, dbc).Model(&model.Review{}).
		Where("id = ?", id).
		Update("like_count", gorm.Expr("like_count + ?", delta)).Error
}

func (s *ReviewRepoImpl) UpdateLikeCount(dbc dbctx.Context, id uint64, count int64) error {
	return conn(s.db, dbc).Model(&model.Review{}).
		Where("id = ?", id).
		Update("like_count", count).Error
}
