package user

import "time"

const (
	StatusActive   = "active"
	StatusArchived = "archived"
)

type User struct {
	ID         int64     `gorm:"primaryKey"`
	Email      string    `gorm:"column:email;uniqueIndex;not null"`
	Name       string    `gorm:"column:name;not null;default:''"`
	Role       string    `gorm:"column:role;not null;default:employee"`
	RawRole    string    `gorm:"column:raw_role;not null;default:''"`
	Password   string    `gorm:"column:password;not null"`
	Department string    `gorm:"column:department;not null;default:''"`
	Status     string    `gorm:"column:status;not null;default:active"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (User) TableName() string {
	return "users"
}
