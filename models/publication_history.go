package models

import "time"

// Publication lifecycle events recorded in PublicationHistory.
const (
	PublicationEventPublished = "published"
	PublicationEventRevised   = "revised"
	PublicationEventRetracted = "retracted"
)

// PublicationHistory is an append-only trail of article lifecycle events.
// Snapshot holds the serialized article state at the time of the event.
type PublicationHistory struct {
	HistoryID int       `gorm:"primaryKey;column:history_id" json:"history_id"`
	ArticleID int       `gorm:"column:article_id" json:"article_id"`
	Event     string    `gorm:"column:event" json:"event"`
	Snapshot  *string   `gorm:"column:snapshot" json:"snapshot,omitempty"`
	ActedBy   int       `gorm:"column:acted_by" json:"acted_by"`
	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
}

// TableName specifies the table for PublicationHistory.
func (PublicationHistory) TableName() string {
	return "publication_history"
}
