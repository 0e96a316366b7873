package models

import "time"

// Boletin is a published report card for a student.
type Boletin struct {
	BaseModel
	StudentID   string    `gorm:"index;not null" json:"student_id"`
	Period      string    `gorm:"type:varchar(32);not null" json:"period"`
	Title       string    `gorm:"not null" json:"title"`
	FileURL     string    `gorm:"not null" json:"file_url"`
	PublishedAt time.Time `gorm:"index" json:"published_at"`
	PublishedBy string    `gorm:"not null" json:"published_by"`
}
