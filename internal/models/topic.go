package models

import "time"

type TopicStatus string

const (
	TopicPending   TopicStatus = "pending"
	TopicPublished TopicStatus = "published"
)

// TopicModel is a suggested article subject waiting to be written.
type TopicModel struct {
	Base
	Title       string      `json:"title"       gorm:"not null"`
	Description string      `json:"description" gorm:"type:text"`
	Category    string      `json:"category"    gorm:"size:64"`
	FocusArea   string      `json:"focusArea"   gorm:"size:191"`
	Status      TopicStatus `json:"status"      gorm:"size:16;index;not null"`
	ArticleSlug *string     `json:"articleSlug" gorm:"size:191"`
	PublishedAt *time.Time  `json:"publishedAt"`
}

func (TopicModel) TableName() string { return "topics" }
