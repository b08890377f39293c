package models

import "time"

// FileStorageLink points a submission or article file at its external
// storage record (Google Drive). Uploads happen elsewhere; the publication
// assembler only re-points links from submission files to article files, a
// manual foreign-key hand-off rather than a cascade.
type FileStorageLink struct {
	LinkID           int        `gorm:"primaryKey;column:link_id" json:"link_id"`
	SubmissionFileID *int       `gorm:"column:submission_file_id" json:"submission_file_id,omitempty"`
	ArticleFileID    *int       `gorm:"column:article_file_id" json:"article_file_id,omitempty"`
	StorageID        string     `gorm:"column:storage_id" json:"storage_id"`
	WebViewLink      *string    `gorm:"column:web_view_link" json:"web_view_link,omitempty"`
	MimeType         *string    `gorm:"column:mime_type" json:"mime_type,omitempty"`
	FileSize         *int64     `gorm:"column:file_size" json:"file_size,omitempty"`
	CreatedAt        time.Time  `gorm:"column:created_at" json:"created_at"`
	UpdatedAt        *time.Time `gorm:"column:updated_at" json:"updated_at,omitempty"`
}

// TableName specifies the table for FileStorageLink.
func (FileStorageLink) TableName() string {
	return "file_storage_links"
}
