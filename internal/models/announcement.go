package models

import (
	"time"

	"gorm.io/datatypes"
)

type AnnouncementAudience string

const (
	AudienceAll   AnnouncementAudience = "all"
	AudienceGrade AnnouncementAudience = "grade"
)

// Announcement is a "novedad": a school-wide or per-grade notice shown
// on the novedades tab.
type Announcement struct {
	BaseModel
	Title       string               `gorm:"not null" json:"title"`
	Body        string               `gorm:"type:text;not null" json:"body"`
	Audience    AnnouncementAudience `gorm:"type:varchar(16);not null;default:'all'" json:"audience"`
	TargetGrade string               `gorm:"type:varchar(32)" json:"target_grade,omitempty"`
	Pinned      bool                 `gorm:"default:false" json:"pinned"`
	Attachments datatypes.JSON       `json:"attachments,omitempty"`
	PublishedAt time.Time            `gorm:"index" json:"published_at"`
	CreatedBy   string               `gorm:"index;not null" json:"created_by"`
}
