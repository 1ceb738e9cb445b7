package models

import (
	"time"

	"gorm.io/gorm"
)

type User struct {
	gorm.Model
	Email              string `gorm:"uniqueIndex;not null"`
	Password           string `gorm:"not null"`
	Name               string `gorm:"not null"`
	Role               string `gorm:"default:'user'"`
	Status             string `gorm:"default:'active'"`
	TransactionPIN     string // bcrypt hash, empty until the user sets a PIN
	TokenVersion       int    `gorm:"default:1"`
	LastLoginAt        time.Time
	Wallets            []Wallet `gorm:"foreignKey:UserID"`
}
