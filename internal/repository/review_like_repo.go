package repository

import (
	"Larder/internal/model"
	"Larder/internal/pkg/dbctx"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ReviewLikeRepo interface {
	CreateReviewLike(dbc dbctx.Context, like *model.ReviewLike) (bool, error)
	DeleteReviewLike(dbc dbctx.Context, userID, reviewID uint64) (bool, error)
	GetReviewLikeCount(dbc dbctx.Context, reviewID uint64) (int64, error)
	GetLikerIDs(dbc dbctx.Context, reviewID uint64) ([]uint64, error)
	DeleteLikesByReview(dbc dbctx.Context, reviewID uint64) error
	DeleteLikesByRecipe(dbc dbctx.Context, recipeID uint64) error
}

type ReviewLikeRepoImpl struct {
	db *gorm.DB
}

func NewReviewLikeRepo(db *gorm.DB) ReviewLikeRepo {
	return &ReviewLikeRepoImpl{db: db}
}

func (s *ReviewLikeRepoImpl) CreateReviewLike(dbc dbctx.Context, like *model.ReviewLike) (bool, error) {
	result := conn(s.db, dbc).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(like)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (s *ReviewLikeRepoImpl) DeleteReviewLike(dbc dbctx.Context, userID, reviewID uint64) (bool, error) {
	result := conn(s.db, dbc).
		Where("user_id = ? AND review_id = ?", userID, reviewID).
		Delete(&model.ReviewLike{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (s *ReviewLikeRepoImpl) GetReviewLikeCount(dbc dbctx.Context, reviewID uint64) (int64, error) {
	var count int64
	err := conn(s.db, dbc).Model(&model.ReviewLike{}).
		Where("review_id = ?", reviewID).
		Count(&count).Error
	return count, err
}

func (s *ReviewLikeRepoImpl) GetLikerIDs(dbc dbctx.Context, reviewID uint64) ([]uint64, error) {
	ids := make([]uint64, 0)
	err := conn(s.db, dbc).Model(&model.ReviewLike{}).
		Where("review_id = ?", reviewID).
		Order("user_id ASC").
		Pluck("user_id", &ids).Error
	return ids, err
}

func (s *ReviewLikeRepoImpl) DeleteLikesByReview(dbc dbctx.Context, reviewID uint64) error {
	return conn(s.db, dbc).
		Where("review_id = ?", reviewID).
		Delete(&model.ReviewLike{}).Error
}

func (s *ReviewLikeRepoImpl) DeleteLikesByRecipe(dbc dbctx.Context, recipeID uint64) error {
	tx := conn(s.db, dbc)
	reviewIDs := tx.Model(&model.Review{}).Select("id").Where("recipe_id = ?", recipeID)
	return tx.Where("review_id IN (?)", reviewIDs).Delete(&model.ReviewLike{}).Error
}
