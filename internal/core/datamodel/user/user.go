package user

import "time"

type User struct {
	ID           int64      `gorm:"primaryKey"`
	Username     string     `gorm:"column:username;size:32;uniqueIndex;not null"`
	Email        string     `gorm:"column:email;size:60;uniqueIndex;not null"`
	PasswordHash string     `gorm:"column:password;size:60;not null"`
	Name         string     `gorm:"column:name;size:80"`
	BirthDate    *time.Time `gorm:"column:birthdate"`
	RegisterTime time.Time  `gorm:"column:register_time"`
	Active       bool       `gorm:"column:active;not null;default:true"`
	Role         string     `gorm:"column:role;size:16;not null;default:'reader'"`
}

func (User) TableName() string {
	return "users"
}
