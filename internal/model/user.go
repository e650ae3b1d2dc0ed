package model

import (
	"time"
)

type User struct {
	ID             uint64 `gorm:"primaryKey;autoIncrement:false"`
	Name           string `gorm:"type:varchar(100);not null"`
	Gender         string `gorm:"type:varchar(16);not null"`
	Age            int    `gorm:"not null"`
	Password       string `gorm:"type:varchar(255);not null"`
	IsDeleted      bool   `gorm:"type:tinyint(1);not null;default:0"`
	FollowerCount  int64  `gorm:"not null;default:0"`
	FollowingCount int64  `gorm:"not null;default:0"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (User) TableName() string {
	return "users"
}
