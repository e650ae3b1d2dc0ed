package dto

import "time"

// NutritionDTO 营养成分
type NutritionDTO struct {
	Calories            *float64 `json:"calories,omitempty" validate:"omitempty,gte=0"`
	FatContent          *float64 `json:"fat_content,omitempty" validate:"omitempty,gte=0"`
	SaturatedFatContent *float64 `json:"saturated_fat_content,omitempty" validate:"omitempty,gte=0"`
	CholesterolContent  *float64 `json:"cholesterol_content,omitempty" validate:"omitempty,gte=0"`
	SodiumContent       *float64 `json:"sodium_content,omitempty" validate:"omitempty,gte=0"`
	CarbohydrateContent *float64 `json:"carbohydrate_content,omitempty" validate:"omitempty,gte=0"`
	FiberContent        *float64 `json:"fiber_content,omitempty" validate:"omitempty,gte=0"`
	SugarContent        *float64 `json:"sugar_content,omitempty" validate:"omitempty,gte=0"`
	ProteinContent      *float64 `json:"protein_content,omitempty" validate:"omitempty,gte=0"`
}

// CreateRecipeDTO 创建菜谱
type CreateRecipeDTO struct {
	Name        string   `json:"name" validate:"required,min=1,max=255"`
	Description string   `json:"description" validate:"max=10000"`
	Category    string   `json:"category" validate:"max=100"`
	CookTime    *string  `json:"cook_time,omitempty" validate:"omitempty,max=32"`
	PrepTime    *string  `json:"prep_time,omitempty" validate:"omitempty,max=32"`
	Servings    *int     `json:"servings,omitempty" validate:"omitempty,gte=1"`
	Ingredients []string `json:"ingredients" validate:"dive,max=255"`
	NutritionDTO
}

// UpdateRecipeDTO 修改菜谱，字段为空表示不修改
type UpdateRecipeDTO struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,min=1,max=255"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=10000"`
	Category    *string `json:"category,omitempty" validate:"omitempty,max=100"`
	CookTime    *string `json:"cook_time,omitempty" validate:"omitempty,max=32"`
	PrepTime    *string `json:"prep_time,omitempty" validate:"omitempty,max=32"`
}

// RecipeDTO 菜谱详情
type RecipeDTO struct {
	ID               uint64    `json:"id"`
	AuthorID         uint64    `json:"author_id"`
	Name             string    `json:"name"`
	Description      string    `json:"description"`
	Category         string    `json:"category"`
	CookTime         *string   `json:"cook_time,omitempty"`
	PrepTime         *string   `json:"prep_time,omitempty"`
	TotalTime        *string   `json:"total_time,omitempty"`
	DatePublished    time.Time `json:"date_published"`
	Servings         *int      `json:"servings,omitempty"`
	AggregatedRating *float64  `json:"aggregated_rating"`
	ReviewCount      int64     `json:"review_count"`
	Ingredients      []string  `json:"ingredients"`
	NutritionDTO
}

// RecipeAggregateDTO 菜谱评分聚合
type RecipeAggregateDTO struct {
	AggregatedRating *float64 `json:"aggregated_rating"`
	ReviewCount      int64    `json:"review_count"`
}

// CaloriePairDTO 热量最接近的两个菜谱，RecipeA 的 ID 较小
type CaloriePairDTO struct {
	RecipeA    uint64  `json:"recipe_a"`
	RecipeB    uint64  `json:"recipe_b"`
	CaloriesA  float64 `json:"calories_a"`
	CaloriesB  float64 `json:"calories_b"`
	Difference float64 `json:"difference"`
}

// RecipeComplexityDTO 菜谱原料数
type RecipeComplexityDTO struct {
	RecipeID        uint64 `json:"recipe_id"`
	Name            string `json:"name"`
	IngredientCount int64  `json:"ingredient_count"`
}
