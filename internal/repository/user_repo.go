package repository

import (
	"Larder/internal/model"
	"Larder/internal/pkg/dbctx"
	"errors"

	"gorm.io/gorm"
)

type UserRepo interface {
	GetUserById(dbc dbctx.Context, id uint64) (*model.User, error)
	GetUserForShare(dbc dbctx.Context, id uint64) (*model.User, error)
	LockUsers(dbc dbctx.Context, ids []uint64) ([]*model.User, error)
	GetUserIDsAfter(dbc dbctx.Context, afterID uint64, limit int) ([]uint64, error)
	CreateUser(dbc dbctx.Context, user *model.User) error
	UpdateUserProfile(dbc dbctx.Context, id uint64, updates map[string]interface{}) error
	SoftDeleteUser(dbc dbctx.Context, id uint64) (int64, error)
	AddFollowCounts(dbc dbctx.Context, id uint64, followerDelta, followingDelta int64) error
	UpdateUserFollowCount(dbc dbctx.Context, id uint64, followerCount, followingCount int64) error
	GetHighestFollowRatio(dbc dbctx.Context) (*FollowRatio, error)
}

// FollowRatio 粉丝数与关注数之比
type FollowRatio struct {
	UserID uint64  `gorm:"column:id"`
	Name   string  `gorm:"column:name"`
	Ratio  float64 `gorm:"column:ratio"`
}

type UserRepoImpl struct {
	db *gorm.DB
}

func NewUserRepo(db *gorm.DB) UserRepo {
	return &UserRepoImpl{db: db}
}

// GetUserById returns nil when the row does not exist. Soft-deleted rows are returned.
func (s *UserRepoImpl) GetUserById(dbc dbctx.Context, id uint64) (*model.User, error) {
	user := &model.User{}
	result := conn(s.db, dbc).First(user, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return user, nil
}

// GetUserForShare reads the user row under a shared lock so that a concurrent
// soft-delete waits for the surrounding transaction.
func (s *UserRepoImpl) GetUserForShare(dbc dbctx.Context, id uint64) (*model.User, error) {
	user := &model.User{}
	result := conn(s.db, dbc).Clauses(forShare).Where("id = ?", id).First(user)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return user, nil
}

// LockUsers takes exclusive locks on the given rows in ascending id order.
// Missing ids are simply absent from the result.
func (s *UserRepoImpl) LockUsers(dbc dbctx.Context, ids []uint64) ([]*model.User, error) {
	users := make([]*model.User, 0, len(ids))
	if len(ids) == 0 {
		return users, nil
	}
	err := conn(s.db, dbc).Clauses(forUpdate).
		Where("id IN ?", ids).
		Order("id ASC").
		Find(&users).Error
	return users, err
}

func (s *UserRepoImpl) GetUserIDsAfter(dbc dbctx.Context, afterID uint64, limit int) ([]uint64, error) {
	var ids []uint64
	err := conn(s.db, dbc).Model(&model.User{}).
		Where("id > ?", afterID).
		Order("id ASC").
		Limit(limit).
		Pluck("id", &ids).Error
	return ids, err
}

func (s *UserRepoImpl) CreateUser(dbc dbctx.Context, user *model.User) error {
	return conn(s.db, dbc).Create(user).Error
}

func (s *UserRepoImpl) UpdateUserProfile(dbc dbctx.Context, id uint64, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}
	return conn(s.db, dbc).Model(&model.User{}).Where("id = ?", id).Updates(updates).Error
}

// SoftDeleteUser flags the account as deleted; the returned count is 0 when it already was.
func (s *UserRepoImpl) SoftDeleteUser(dbc dbctx.Context, id uint64) (int64, error) {
	result := conn(s.db, dbc).Model(&model.User{}).
		Where("id = ? AND is_deleted = ?", id, false).
		Update("is_deleted", true)
	return result.RowsAffected, result.Error
}

func (s *UserRepoImpl) AddFollowCounts(dbc dbctx.Context, id uint64, followerDelta, followingDelta int64) error {
	updates := make(map[string]interface{}, 2)
	if followerDelta != 0 {
		updates["follower_count"] = gorm.Expr("follower_count + ?", followerDelta)
	}
	if followingDelta != 0 {
		updates["following_count"] = gorm.Expr("following_count + ?", followingDelta)
	}
	if len(updates) == 0 {
		return nil
	}
	return conn(s.db, dbc).Model(&model.User{}).Where("id = ?", id).Updates(updates).Error
}

func (s *UserRepoImpl) UpdateUserFollowCount(dbc dbctx.Context, id uint64, followerCount, followingCount int64) error {
	return conn(s.db, dbc).Model(&model.User{}).Where("id = ?", id).Updates(map[string]interface{}{
		"follower_count":  followerCount,
		"following_count": followingCount,
	}).Error
}

// GetHighestFollowRatio 未注销且关注数大于 0 的用户中粉丝/关注比最高者，同比值取 ID 最小
func (s *UserRepoImpl) GetHighestFollowRatio(dbc dbctx.Context) (*FollowRatio, error) {
	var rows []FollowRatio
	err := conn(s.db, dbc).Model(&model.User{}).
		Select("id, name, follower_count * 1.0 / following_count AS ratio").
		Where("is_deleted = ? AND following_count > 0", false).
		Order("ratio DESC, id ASC").
		Limit(1).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}
