package models

import (
	"gorm.io/gorm"
)

// Roles
const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

type User struct {
	gorm.Model
	ProfileImage       string `gorm:"default:''"`
	Name               string `gorm:"default:''"`
	Email              string `gorm:"unique;not null"`
	Role               string `gorm:"default:'USER'"` // USER, ADMIN
	IsEmailVerified    bool   `gorm:"default:false"`
	IsIdentityVerified bool   `gorm:"default:false"`
}
