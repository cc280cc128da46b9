package models

import "time"

// Staff is an employee who can hold assets. Kept separate from User: not every
// employee has a login, and admins manage staff records directly.
type Staff struct {
	ID         int64     `gorm:"primaryKey;autoIncrement"`
	FullName   string    `gorm:"column:full_name;type:text;not null"`
	Email      string    `gorm:"type:text;not null;uniqueIndex"`
	Department string    `gorm:"type:text;not null"`
	Location   string    `gorm:"type:text;not null"`
	Active     bool      `gorm:"not null;default:true"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Staff) TableName() string {
	return "staff"
}
