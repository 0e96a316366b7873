package models

import "time"

// Event is an agenda entry on the eventos tab.
type Event struct {
	BaseModel
	Title       string    `gorm:"not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	Location    string    `json:"location"`
	StartsAt    time.Time `gorm:"index;not null" json:"starts_at"`
	EndsAt      time.Time `json:"ends_at"`
	CreatedBy   string    `gorm:"index;not null" json:"created_by"`
}
