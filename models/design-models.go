package models

import (
	"time"

	"gorm.io/gorm"
)

// RoomImage statuses follow the generation lifecycle.
const (
	ImageStatusPending   = "pending"
	ImageStatusCompleted = "completed"
	ImageStatusFailed    = "failed"
)

type Project struct {
	gorm.Model
	UserID          uint    `json:"user_id" gorm:"not null;index"`
	Name            string  `json:"name" gorm:"not null"`
	Description     string  `json:"description"`
	Status          string  `json:"status" gorm:"not null;default:'draft'"`
	FloorPlanURL    string  `json:"floor_plan_url,omitempty"`
	FloorPlanThumb  string  `json:"floor_plan_thumb,omitempty"`
	FloorPlanWidth  int     `json:"floor_plan_width,omitempty"`
	FloorPlanHeight int     `json:"floor_plan_height,omitempty"`
	TotalAreaSqft   float64 `json:"total_area_sqft,omitempty"`
	Analysis        JSONMap `json:"analysis,omitempty" gorm:"type:jsonb"`

	User  User   `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Rooms []Room `gorm:"foreignKey:ProjectID" json:"rooms,omitempty"`
}

type Room struct {
	gorm.Model
	ProjectID     uint     `json:"project_id" gorm:"not null;index"`
	Name          string   `json:"name" gorm:"not null"`
	Type          string   `json:"type"`
	AreaSqft      float64  `json:"area_sqft,omitempty"`
	AreaSqm       float64  `json:"area_sqm,omitempty"`
	Geometry      JSONMap  `json:"geometry,omitempty" gorm:"type:jsonb"`
	DetectedItems JSONList `json:"detected_items,omitempty" gorm:"type:jsonb"`
	Style         string   `json:"style,omitempty"`

	Project Project     `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	Images  []RoomImage `gorm:"foreignKey:RoomID" json:"images,omitempty"`
}

type RoomImage struct {
	gorm.Model
	RoomID   uint   `json:"room_id" gorm:"not null;index"`
	URL      string `json:"url" gorm:"not null"`
	Prompt   string `json:"prompt"`
	Provider string `json:"provider"`
	Status   string `json:"status" gorm:"not null;default:'pending'"`
	IsFinal  bool   `json:"is_final" gorm:"not null;default:false;index"`
	Width    int    `json:"width,omitempty"`
	Height   int    `json:"height,omitempty"`

	Room Room `gorm:"foreignKey:RoomID" json:"room,omitempty"`
}

type Message struct {
	gorm.Model
	ProjectID uint   `json:"project_id" gorm:"not null;index"`
	UserID    uint   `json:"user_id" gorm:"not null;index"`
	Role      string `json:"role" gorm:"not null"`
	Content   string `json:"content" gorm:"not null"`

	Project Project `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
}

type ColorPalette struct {
	gorm.Model
	RoomID uint     `json:"room_id" gorm:"not null;index"`
	Name   string   `json:"name" gorm:"not null"`
	Colors JSONList `json:"colors" gorm:"type:jsonb"`

	Room Room `gorm:"foreignKey:RoomID" json:"room,omitempty"`
}

type SharedDesign struct {
	gorm.Model
	ProjectID uint      `json:"project_id" gorm:"not null;index"`
	Token     string    `json:"token" gorm:"uniqueIndex;not null"`
	ExpiresAt time.Time `json:"expires_at"`

	Project Project `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
}
