package models

import (
	"gorm.io/gorm"
)

type User struct {
	gorm.Model
	Username    string  `json:"username" gorm:"uniqueIndex;not null"`
	Email       string  `json:"email" gorm:"uniqueIndex;not null"`
	Password    string  `json:"-" gorm:"not null"`
	FullName    string  `json:"name"`
	Preferences JSONMap `json:"preferences,omitempty" gorm:"type:jsonb"`

	Projects []Project `gorm:"foreignKey:UserID" json:"projects,omitempty"`
}
