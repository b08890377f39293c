package models

import "time"

// DOI registration statuses.
const (
	DOIStatusPending    = "pending"
	DOIStatusRegistered = "registered"
	DOIStatusFailed     = "failed"
)

// DOIRegistration tracks registration attempts against the external agency.
// Rows are keyed by (article_id, doi): repeating a registration updates the
// same row through an idempotent upsert and increments retry_count by one
// per attempt. CrossrefResponse stays an opaque blob on purpose; the agency
// response shape is versioned independently of this system.
type DOIRegistration struct {
	RegistrationID    int        `gorm:"primaryKey;column:registration_id" json:"registration_id"`
	ArticleID         int        `gorm:"column:article_id;uniqueIndex:ux_doi_registrations_key" json:"article_id"`
	DOI               string     `gorm:"column:doi;uniqueIndex:ux_doi_registrations_key" json:"doi"`
	Status            string     `gorm:"column:status" json:"status"`
	CrossrefDepositID *string    `gorm:"column:crossref_deposit_id" json:"crossref_deposit_id,omitempty"`
	CrossrefResponse  *string    `gorm:"column:crossref_response" json:"crossref_response,omitempty"`
	ErrorMessage      *string    `gorm:"column:error_message" json:"error_message,omitempty"`
	LastAttempt       *time.Time `gorm:"column:last_attempt" json:"last_attempt,omitempty"`
	RetryCount        int        `gorm:"column:retry_count" json:"retry_count"`
	RegistrationDate  *time.Time `gorm:"column:registration_date" json:"registration_date,omitempty"`
	CreatedAt         time.Time  `gorm:"column:created_at" json:"created_at"`
}

// TableName specifies the table for DOIRegistration.
func (DOIRegistration) TableName() string {
	return "doi_registrations"
}
