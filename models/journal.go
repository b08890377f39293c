package models

import "time"

type Journal struct {
	JournalID   int        `gorm:"primaryKey;column:journal_id" json:"journal_id"`
	Title       string     `gorm:"column:title" json:"title"`
	Abbreviation *string   `gorm:"column:abbreviation" json:"abbreviation,omitempty"`
	ISSN        *string    `gorm:"column:issn" json:"issn,omitempty"`
	EISSN       *string    `gorm:"column:eissn" json:"eissn,omitempty"`
	Publisher   *string    `gorm:"column:publisher" json:"publisher,omitempty"`
	DOIPrefix   *string    `gorm:"column:doi_prefix" json:"doi_prefix,omitempty"`
	BaseURL     *string    `gorm:"column:base_url" json:"base_url,omitempty"`
	CreateAt    *time.Time `gorm:"column:create_at" json:"create_at"`
	UpdateAt    *time.Time `gorm:"column:update_at" json:"update_at"`
	DeleteAt    *time.Time `gorm:"column:delete_at" json:"delete_at,omitempty"`
}

type Section struct {
	SectionID int        `gorm:"primaryKey;column:section_id" json:"section_id"`
	JournalID int        `gorm:"column:journal_id" json:"journal_id"`
	Title     string     `gorm:"column:title" json:"title"`
	CreateAt  *time.Time `gorm:"column:create_at" json:"create_at"`
	UpdateAt  *time.Time `gorm:"column:update_at" json:"update_at"`
	DeleteAt  *time.Time `gorm:"column:delete_at" json:"delete_at,omitempty"`
}

// JournalUser is the legacy per-journal membership table. New deployments
// write UserRoleAssignment instead; both are still consulted when resolving
// editor capabilities.
type JournalUser struct {
	JournalUserID int       `gorm:"primaryKey;column:journal_user_id" json:"journal_user_id"`
	JournalID     int       `gorm:"column:journal_id" json:"journal_id"`
	UserID        int       `gorm:"column:user_id" json:"user_id"`
	Role          string    `gorm:"column:role" json:"role"`
	CreatedAt     time.Time `gorm:"column:created_at" json:"created_at"`
}

type UserRoleAssignment struct {
	AssignmentID int       `gorm:"primaryKey;column:assignment_id" json:"assignment_id"`
	UserID       int       `gorm:"column:user_id" json:"user_id"`
	JournalID    int       `gorm:"column:journal_id" json:"journal_id"`
	RoleName     string    `gorm:"column:role_name" json:"role_name"`
	AssignedBy   *int      `gorm:"column:assigned_by" json:"assigned_by,omitempty"`
	CreatedAt    time.Time `gorm:"column:created_at" json:"created_at"`
}

// Journal-scoped role names accepted by the capability check.
const (
	JournalRoleEditor        = "editor"
	JournalRoleSectionEditor = "section_editor"
)

// TableName overrides
func (Journal) TableName() string {
	return "journals"
}

func (Section) TableName() string {
	return "sections"
}

func (JournalUser) TableName() string {
	return "journal_users"
}

func (UserRoleAssignment) TableName() string {
	return "user_role_assignments"
}
