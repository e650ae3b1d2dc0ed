package model

// IdSequence holds the next identifier to hand out for one table.
type IdSequence struct {
	Scope  string `gorm:"primaryKey;type:varchar(64)"`
	NextID uint64 `gorm:"not null"`
}

func (IdSequence) TableName() string {
	return "id_sequences"
}
