package repository

import (
	"Larder/internal/model"
	"Larder/internal/pkg/dbctx"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserFollowRepo interface {
	GetFollowerIDs(dbc dbctx.Context, userID uint64) ([]uint64, error)
	GetFollowingIDs(dbc dbctx.Context, userID uint64) ([]uint64, error)
	GetUserFollowerCount(dbc dbctx.Context, userID uint64) (int64, error)
	GetUserFollowingCount(dbc dbctx.Context, userID uint64) (int64, error)
	CreateUserFollow(dbc dbctx.Context, userFollow *model.UserFollow) (bool, error)
	DeleteUserFollow(dbc dbctx.Context, userID, followingID uint64) (bool, error)
}

type UserFollowRepoImpl struct {
	db *gorm.DB
}

func NewUserFollowRepo(db *gorm.DB) UserFollowRepo {
	return &UserFollowRepoImpl{db: db}
}

// GetFollowerIDs 获取用户的粉丝 ID，按 ID 升序
func (s *UserFollowRepoImpl) GetFollowerIDs(dbc dbctx.Context, userID uint64) ([]uint64, error) {
	ids := make([]uint64, 0)
	err := conn(s.db, dbc).Model(&model.UserFollow{}).
		Where("following_id = ?", userID).
		Order("follower_id ASC").
		Pluck("follower_id", &ids).Error
	return ids, err
}

// GetFollowingIDs 获取用户关注的人的 ID，按 ID 升序
func (s *UserFollowRepoImpl) GetFollowingIDs(dbc dbctx.Context, userID uint64) ([]uint64, error) {
	ids := make([]uint64, 0)
	err := conn(s.db, dbc).Model(&model.UserFollow{}).
		Where("follower_id = ?", userID).
		Order("following_id ASC").
		Pluck("following_id", &ids).Error
	return ids, err
}

func (s *UserFollowRepoImpl) GetUserFollowerCount(dbc dbctx.Context, userID uint64) (int64, error) {
	var count int64
	result := conn(s.db, dbc).
		Model(&model.UserFollow{}).
		Where("following_id = ?", userID).
		Count(&count)
	if result.Error != nil {
		return 0, result.Error
	}
	return count, nil
}

func (s *UserFollowRepoImpl) GetUserFollowingCount(dbc dbctx.Context, userID uint64) (int64, error) {
	var count int64
	result := conn(s.db, dbc).
		Model(&model.UserFollow{}).
		Where("follower_id = ?", userID).
		Count(&count)
	if result.Error != nil {
		return 0, result.Error
	}
	return count, nil
}

// CreateUserFollow inserts the edge unless it already exists. The bool reports
// whether this call created the row.
func (s *UserFollowRepoImpl) CreateUserFollow(dbc dbctx.Context, userFollow *model.UserFollow) (bool, error) {
	result := conn(s.db, dbc).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(userFollow)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// DeleteUserFollow removes the edge; the bool reports whether a row was removed.
func (s *UserFollowRepoImpl) DeleteUserFollow(dbc dbctx.Context, userID, followingID uint64) (bool, error) {
	result := conn(s.db, dbc).
		Where("follower_id = ? AND following_id = ?", userID, followingID).
		Delete(&model.UserFollow{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
