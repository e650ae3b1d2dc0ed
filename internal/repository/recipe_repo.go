package repository

import (
	"Larder/internal/model"
	"Larder/internal/pkg/dbctx"
	"errors"

	"gorm.io/gorm"
)

type RecipeRepo interface {
	GetRecipe(dbc dbctx.Context, id uint64) (*model.Recipe, error)
	GetRecipeWithIngredients(dbc dbctx.Context, id uint64) (*model.Recipe, error)
	GetRecipeForUpdate(dbc dbctx.Context, id uint64) (*model.Recipe, error)
	GetRecipeIDsAfter(dbc dbctx.Context, afterID uint64, limit int) ([]uint64, error)
	CreateRecipe(dbc dbctx.Context, recipe *model.Recipe, parts []string) error
	UpdateRecipe(dbc dbctx.Context, id uint64, updates map[string]interface{}) error
	UpdateRecipeAggregate(dbc dbctx.Context, id uint64, rating *float64, count int64) error
	DeleteRecipe(dbc dbctx.Context, id uint64) error
	GetRecipeCalories(dbc dbctx.Context) ([]RecipeCalories, error)
	GetTopIngredientCounts(dbc dbctx.Context, limit int) ([]IngredientCount, error)
}

// RecipeCalories 菜谱热量
type RecipeCalories struct {
	ID       uint64  `gorm:"column:id"`
	Calories float64 `gorm:"column:calories"`
}

// IngredientCount 菜谱原料数
type IngredientCount struct {
	RecipeID        uint64 `gorm:"column:recipe_id"`
	Name            string `gorm:"column:name"`
	IngredientCount int64  `gorm:"column:ingredient_count"`
}

type RecipeRepoImpl struct {
	db *gorm.DB
}

func NewRecipeRepo(db *gorm.DB) RecipeRepo {
	return &RecipeRepoImpl{db: db}
}

func (s *RecipeRepoImpl) GetRecipe(dbc dbctx.Context, id uint64) (*model.Recipe, error) {
	var recipe model.Recipe
	err := conn(s.db, dbc).Where("id = ?", id).First(&recipe).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &recipe, nil
}

func (s *RecipeRepoImpl) GetRecipeWithIngredients(dbc dbctx.Context, id uint64) (*model.Recipe, error) {
	var recipe model.Recipe
	err := conn(s.db, dbc).
		Preload("Ingredients", func(db *gorm.DB) *gorm.DB {
			return db.Order("part ASC")
		}).
		Where("id = ?", id).
		First(&recipe).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &recipe, nil
}

// GetRecipeForUpdate locks the recipe row until the transaction ends. Every
// review mutation takes this lock before recomputing the aggregate.
func (s *RecipeRepoImpl) GetRecipeForUpdate(dbc dbctx.Context, id uint64) (*model.Recipe, error) {
	var recipe model.Recipe
	err := conn(s.db, dbc).Clauses(forUpdate).Where("id = ?", id).First(&recipe).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &recipe, nil
}

func (s *RecipeRepoImpl) GetRecipeIDsAfter(dbc dbctx.Context, afterID uint64, limit int) ([]uint64, error) {
	var ids []uint64
	err := conn(s.db, dbc).Model(&model.Recipe{}).
		Where("id > ?", afterID).
		Order("id ASC").
		Limit(limit).
		Pluck("id", &ids).Error
	return ids, err
}

// CreateRecipe inserts the recipe and its ingredient parts. Parts must already
// be unique.
func (s *RecipeRepoImpl) CreateRecipe(dbc dbctx.Context, recipe *model.Recipe, parts []string) error {
	tx := conn(s.db, dbc)
	if err := tx.Omit("Ingredients").Create(recipe).Error; err != nil {
		return err
	}
	if len(parts) == 0 {
		return nil
	}

	rows := make([]*model.RecipeIngredient, 0, len(parts))
	for _, part := range parts {
		rows = append(rows, &model.RecipeIngredient{RecipeID: recipe.ID, Part: part})
	}
	return tx.Create(&rows).Error
}

func (s *RecipeRepoImpl) UpdateRecipe(dbc dbctx.Context, id uint64, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}
	return conn(s.db, dbc).Model(&model.Recipe{}).Where("id = ?", id).Updates(updates).Error
}

func (s *RecipeRepoImpl) UpdateRecipeAggregate(dbc dbctx.Context, id uint64, rating *float64, count int64) error {
	return conn(s.db, dbc).Model(&model.Recipe{}).Where("id = ?", id).Updates(map[string]interface{}{
		"aggregated_rating": rating,
		"review_count":      count,
	}).Error
}

// DeleteRecipe removes the ingredient rows and the recipe row. Reviews and
// likes are removed by their own repositories first.
func (s *RecipeRepoImpl) DeleteRecipe(dbc dbctx.Context, id uint64) error {
	tx := conn(s.db, dbc)
	if err := tx.Where("recipe_id = ?", id).Delete(&model.RecipeIngredient{}).Error; err != nil {
		return err
	}
	return tx.Where("id = ?", id).Delete(&model.Recipe{}).Error
}

// GetRecipeCalories 所有填写了热量的菜谱，按热量、ID 升序
func (s *RecipeRepoImpl) GetRecipeCalories(dbc dbctx.Context) ([]RecipeCalories, error) {
	rows := make([]RecipeCalories, 0)
	err := conn(s.db, dbc).Model(&model.Recipe{}).
		Select("id, calories").
		Where("calories IS NOT NULL").
		Order("calories ASC, id ASC").
		Scan(&rows).Error
	return rows, err
}

// GetTopIngredientCounts 原料最多的菜谱，同数量取 ID 小的
func (s *RecipeRepoImpl) GetTopIngredientCounts(dbc dbctx.Context, limit int) ([]IngredientCount, error) {
	rows := make([]IngredientCount, 0, limit)
	err := conn(s.db, dbc).Table("recipe_ingredients AS ri").
		Select("r.id AS recipe_id, r.name AS name, COUNT(ri.part) AS ingredient_count").
		Joins("JOIN recipes AS r ON r.id = ri.recipe_id").
		Group("r.id, r.name").
		Order("ingredient_count DESC, r.id ASC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}
