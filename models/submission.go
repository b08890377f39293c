package models

import "time"

// Submission statuses. A submission is never deleted; it is archived through
// its status instead.
const (
	SubmissionStatusDraft             = "draft"
	SubmissionStatusSubmitted         = "submitted"
	SubmissionStatusUnderReview       = "under_review"
	SubmissionStatusReviewCompleted   = "review_completed"
	SubmissionStatusAccepted          = "accepted"
	SubmissionStatusDeclined          = "declined"
	SubmissionStatusRevisionRequested = "revision_requested"
	SubmissionStatusPublished         = "published"
)

type Submission struct {
	SubmissionID int        `gorm:"primaryKey;column:submission_id" json:"submission_id"`
	JournalID    int        `gorm:"column:journal_id" json:"journal_id"`
	SectionID    *int       `gorm:"column:section_id" json:"section_id,omitempty"`
	SubmitterID  int        `gorm:"column:submitter_id" json:"submitter_id"`
	Title        string     `gorm:"column:title" json:"title"`
	Abstract     *string    `gorm:"column:abstract" json:"abstract,omitempty"`
	Keywords     *string    `gorm:"column:keywords" json:"keywords,omitempty"`
	Status       string     `gorm:"column:status" json:"status"`
	EditorID     *int       `gorm:"column:editor_id" json:"editor_id,omitempty"`
	CurrentRound int        `gorm:"column:current_round" json:"current_round"`
	SubmittedAt  *time.Time `gorm:"column:submitted_at" json:"submitted_at,omitempty"`
	LastModified time.Time  `gorm:"column:last_modified" json:"last_modified"`
	CreateAt     *time.Time `gorm:"column:create_at" json:"create_at"`

	// Relations
	Journal   Journal  `gorm:"foreignKey:JournalID" json:"journal,omitempty"`
	Submitter *User    `gorm:"foreignKey:SubmitterID" json:"submitter,omitempty"`
	Editor    *User    `gorm:"foreignKey:EditorID" json:"editor,omitempty"`
	Section   *Section `gorm:"foreignKey:SectionID" json:"section,omitempty"`
}

type SubmissionAuthor struct {
	AuthorID     int     `gorm:"primaryKey;column:author_id" json:"author_id"`
	SubmissionID int     `gorm:"column:submission_id" json:"submission_id"`
	FirstName    string  `gorm:"column:first_name" json:"first_name"`
	LastName     string  `gorm:"column:last_name" json:"last_name"`
	Email        *string `gorm:"column:email" json:"email,omitempty"`
	Affiliation  *string `gorm:"column:affiliation" json:"affiliation,omitempty"`
	ORCID        *string `gorm:"column:orcid" json:"orcid,omitempty"`
	Sequence     int     `gorm:"column:sequence" json:"sequence"`
}

type SubmissionFile struct {
	FileID       int       `gorm:"primaryKey;column:file_id" json:"file_id"`
	SubmissionID int       `gorm:"column:submission_id" json:"submission_id"`
	OriginalName string    `gorm:"column:original_name" json:"original_name"`
	MimeType     string    `gorm:"column:mime_type" json:"mime_type"`
	FileSize     int64     `gorm:"column:file_size" json:"file_size"`
	FileStage    string    `gorm:"column:file_stage" json:"file_stage"`
	UploadedAt   time.Time `gorm:"column:uploaded_at" json:"uploaded_at"`
}

// TableName overrides
func (Submission) TableName() string {
	return "submissions"
}

func (SubmissionAuthor) TableName() string {
	return "submission_authors"
}

func (SubmissionFile) TableName() string {
	return "submission_files"
}

// CanPublish reports whether the submission is in the only status the
// publication assembler accepts.
func (s *Submission) CanPublish() bool {
	return s.Status == SubmissionStatusAccepted
}
