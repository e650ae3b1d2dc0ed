package model

import (
	"time"
)

type Recipe struct {
	ID                  uint64     `gorm:"primaryKey;autoIncrement:false"`
	AuthorID            uint64     `gorm:"not null;index:idx_author_id"`
	Name                string     `gorm:"type:varchar(255);not null"`
	Description         string     `gorm:"type:text"`
	Category            string     `gorm:"type:varchar(100);index:idx_category"`
	CookTime            *string    `gorm:"type:varchar(32)"` // ISO-8601, e.g. PT1H30M
	PrepTime            *string    `gorm:"type:varchar(32)"`
	TotalTime           *string    `gorm:"type:varchar(32)"`
	DatePublished       time.Time  `gorm:"not null"`
	Calories            *float64   `gorm:"type:decimal(10,2)"`
	FatContent          *float64   `gorm:"type:decimal(10,2)"`
	SaturatedFatContent *float64   `gorm:"type:decimal(10,2)"`
	CholesterolContent  *float64   `gorm:"type:decimal(10,2)"`
	SodiumContent       *float64   `gorm:"type:decimal(10,2)"`
	CarbohydrateContent *float64   `gorm:"type:decimal(10,2)"`
	FiberContent        *float64   `gorm:"type:decimal(10,2)"`
	SugarContent        *float64   `gorm:"type:decimal(10,2)"`
	ProteinContent      *float64   `gorm:"type:decimal(10,2)"`
	Servings            *int       `gorm:"type:int"`
	AggregatedRating    *float64   `gorm:"type:decimal(3,2)"` // NULL iff ReviewCount == 0
	ReviewCount         int64      `gorm:"not null;default:0"`
	UpdatedAt           time.Time

	Ingredients []RecipeIngredient `gorm:"foreignKey:RecipeID;references:ID"`
}

func (Recipe) TableName() string {
	return "recipes"
}
