package models

import "time"

// Derived issue statuses. The status is computed from is_published and
// published_date on every read and is never stored.
const (
	IssueStatusDraft     = "draft"
	IssueStatusScheduled = "scheduled"
	IssueStatusPublished = "published"
)

// Issue is a journal's periodical grouping. The (journal_id, volume, number,
// year) key is checked by the duplicate guard before every insert/update and
// backed by a unique index for the concurrent case.
type Issue struct {
	IssueID       int        `gorm:"primaryKey;column:issue_id" json:"issue_id"`
	JournalID     int        `gorm:"column:journal_id;uniqueIndex:ux_issues_key" json:"journal_id"`
	Volume        *int       `gorm:"column:volume;uniqueIndex:ux_issues_key" json:"volume,omitempty"`
	Number        *string    `gorm:"column:number;uniqueIndex:ux_issues_key" json:"number,omitempty"`
	Year          int        `gorm:"column:year;uniqueIndex:ux_issues_key" json:"year"`
	Title         *string    `gorm:"column:title" json:"title,omitempty"`
	Description   *string    `gorm:"column:description" json:"description,omitempty"`
	PublishedDate *time.Time `gorm:"column:published_date" json:"published_date,omitempty"`
	IsPublished   bool       `gorm:"column:is_published" json:"is_published"`
	AccessStatus  string     `gorm:"column:access_status" json:"access_status"`
	CreateAt      *time.Time `gorm:"column:create_at" json:"create_at"`
	UpdateAt      *time.Time `gorm:"column:update_at" json:"update_at"`
}

// TableName specifies the table for Issue.
func (Issue) TableName() string {
	return "issues"
}
