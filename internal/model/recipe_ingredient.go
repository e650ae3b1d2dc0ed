package model

type RecipeIngredient struct {
	RecipeID uint64 `gorm:"primaryKey;autoIncrement:false"`
	Part     string `gorm:"primaryKey;type:varchar(255)"`
}

func (RecipeIngredient) TableName() string {
	return "recipe_ingredients"
}
