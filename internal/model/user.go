package model

import (
	"time"
)

type UserRole string

const (
	Student UserRole = "STUDENT"
	Proctor UserRole = "PROCTOR"
)

// swagger:model User
type User struct {
	BaseModel
	Name             string    `gorm:"size:100;not null" json:"name"`
	Email            string    `gorm:"size:100;unique;not null" json:"email"`
	Password         string    `gorm:"size:100;not null" json:"-"`
	Role             UserRole  `gorm:"size:20;default:'STUDENT'" json:"role"`
	IsApproved       bool      `gorm:"default:false" json:"isApproved"`
	RegistrationDate time.Time `json:"registrationDate"`
}

func (User) TableName() string {
	return "users"
}
