package models

import "time"

type UserRole string

const (
	UserRoleAdmin   UserRole = "admin"
	UserRoleTeacher UserRole = "teacher"
	UserRoleParent  UserRole = "parent"
)

type User struct {
	BaseModel
	Name         string   `gorm:"not null" json:"name"`
	Email        string   `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string   `gorm:"not null" json:"-"`
	Role         UserRole `gorm:"type:varchar(16);not null;default:'parent'" json:"role"`
	IsActive     bool     `gorm:"default:true" json:"is_active"`

	Students []Student `gorm:"foreignKey:ParentID" json:"students,omitempty"`
}

// Student links a parent account to a child enrolled at the school.
type Student struct {
	BaseModel
	Name     string `gorm:"not null" json:"name"`
	Grade    string `gorm:"type:varchar(32)" json:"grade"`
	Section  string `gorm:"type:varchar(16)" json:"section"`
	ParentID string `gorm:"index;not null" json:"parent_id"`
}

type RefreshToken struct {
	ID        string    `gorm:"primaryKey;type:uuid" json:"id"`
	Token     string    `gorm:"uniqueIndex;not null" json:"token"`
	UserID    string    `gorm:"index;not null" json:"user_id"`
	ExpiresAt time.Time `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}
