package repository

import (
	"Larder/internal/model"
	"Larder/internal/pkg/dbctx"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type IdSequenceRepo interface {
	GetSequenceForUpdate(dbc dbctx.Context, scope string) (*model.IdSequence, error)
	CreateSequence(dbc dbctx.Context, scope string, nextID uint64) error
	AdvanceSequence(dbc dbctx.Context, scope string, nextID uint64) error
	GetMaxID(dbc dbctx.Context, table string) (uint64, error)
}

type IdSequenceRepoImpl struct {
	db *gorm.DB
}

func NewIdSequenceRepo(db *gorm.DB) IdSequenceRepo {
	return &IdSequenceRepoImpl{db: db}
}

// GetSequenceForUpdate 锁定序列行，直到事务结束；不存在时返回 nil
func (s *IdSequenceRepoImpl) GetSequenceForUpdate(dbc dbctx.Context, scope string) (*model.IdSequence, error) {
	var seq model.IdSequence
	err := conn(s.db, dbc).Clauses(forUpdate).Where("scope = ?", scope).First(&seq).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &seq, nil
}

// CreateSequence seeds a scope. A row inserted concurrently by another
// transaction wins; callers re-read under lock afterwards.
func (s *IdSequenceRepoImpl) CreateSequence(dbc dbctx.Context, scope string, nextID uint64) error {
	return conn(s.db, dbc).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&model.IdSequence{Scope: scope, NextID: nextID}).Error
}

func (s *IdSequenceRepoImpl) AdvanceSequence(dbc dbctx.Context, scope string, nextID uint64) error {
	return conn(s.db, dbc).Model(&model.IdSequence{}).
		Where("scope = ?", scope).
		Update("next_id", nextID).Error
}

func (s *IdSequenceRepoImpl) GetMaxID(dbc dbctx.Context, table string) (uint64, error) {
	var maxID uint64
	err := conn(s.db, dbc).Table(table).Select("COALESCE(MAX(id), 0)").Scan(&maxID).Error
	return maxID, err
}
