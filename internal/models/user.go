package models

import (
	"time"
)

// User represents the users table
// DB: users
type User struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	Email      string     `gorm:"column:email;size:255;not null;uniqueIndex:users_email_key" json:"email"`
	Password   string     `gorm:"column:password;size:255;not null" json:"-"`
	Name       string     `gorm:"column:name;size:100;not null" json:"name"`
	IsActive   bool       `gorm:"column:is_active;not null;default:true" json:"is_active"`
	DateJoined time.Time  `gorm:"column:date_joined;not null" json:"date_joined"`
	LastLogin  *time.Time `gorm:"column:last_login" json:"last_login,omitempty"`

	// Relations
	Favorites []Favorite `gorm:"foreignKey:UserID" json:"favorites,omitempty"`
}

func (User) TableName() string {
	return "users"
}

// Favorite represents a user's bookmarked gym
// DB: favorites
type Favorite struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"column:user_id;not null;uniqueIndex:favorites_user_gym_key,priority:1" json:"user_id"`
	GymID     uint      `gorm:"column:gym_id;not null;uniqueIndex:favorites_user_gym_key,priority:2" json:"gym_id"`
	CreatedAt time.Time `gorm:"column:created_at;not null" json:"created_at"`

	// Relations
	Gym *Gym `gorm:"foreignKey:GymID" json:"gym,omitempty"`
}

func (Favorite) TableName() string {
	return "favorites"
}

// Report statuses
const (
	ReportStatusOpen     = "open"
	ReportStatusResolved = "resolved"
)

// GymReport represents a user-submitted data issue for a gym
// DB: gym_reports
type GymReport struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	GymID     uint      `gorm:"column:gym_id;not null;index:idx_gym_reports_gym" json:"gym_id"`
	UserID    *uint     `gorm:"column:user_id" json:"user_id,omitempty"`
	Type      string    `gorm:"column:type;size:50;not null" json:"type"`
	Message   string    `gorm:"column:message;type:text;not null" json:"message"`
	Status    string    `gorm:"column:status;size:20;not null;default:open" json:"status"`
	CreatedAt time.Time `gorm:"column:created_at;not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null" json:"updated_at"`
}

func (GymReport) TableName() string {
	return "gym_reports"
}
