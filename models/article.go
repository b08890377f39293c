package models

import "time"

// Article is the published artifact derived from an accepted submission.
// The unique index on submission_id closes the race between the
// article-exists check and the insert under concurrent publish requests.
type Article struct {
	ArticleID     int        `gorm:"primaryKey;column:article_id" json:"article_id"`
	SubmissionID  int        `gorm:"column:submission_id;uniqueIndex:ux_articles_submission" json:"submission_id"`
	JournalID     int        `gorm:"column:journal_id" json:"journal_id"`
	SectionID     *int       `gorm:"column:section_id" json:"section_id,omitempty"`
	IssueID       *int       `gorm:"column:issue_id" json:"issue_id,omitempty"`
	Title         string     `gorm:"column:title" json:"title"`
	Abstract      *string    `gorm:"column:abstract" json:"abstract,omitempty"`
	Keywords      *string    `gorm:"column:keywords" json:"keywords,omitempty"`
	DOI           *string    `gorm:"column:doi" json:"doi,omitempty"`
	Volume        *int       `gorm:"column:volume" json:"volume,omitempty"`
	IssueNumber   *string    `gorm:"column:issue_number" json:"issue_number,omitempty"`
	Year          *int       `gorm:"column:year" json:"year,omitempty"`
	Pages         *string    `gorm:"column:pages" json:"pages,omitempty"`
	PublishedDate time.Time  `gorm:"column:published_date" json:"published_date"`
	ViewsCount    int        `gorm:"column:views_count" json:"views_count"`
	DownloadsCount int       `gorm:"column:downloads_count" json:"downloads_count"`
	CitationCount int        `gorm:"column:citation_count" json:"citation_count"`
	CreateAt      *time.Time `gorm:"column:create_at" json:"create_at"`
	UpdateAt      *time.Time `gorm:"column:update_at" json:"update_at"`

	// Relations
	Journal Journal  `gorm:"foreignKey:JournalID" json:"journal,omitempty"`
	Issue   *Issue   `gorm:"foreignKey:IssueID" json:"issue,omitempty"`
	Section *Section `gorm:"foreignKey:SectionID" json:"section,omitempty"`
}

// ArticleAuthor is copied 1:1 from SubmissionAuthor at publish time,
// preserving the original sequence.
type ArticleAuthor struct {
	ArticleAuthorID int     `gorm:"primaryKey;column:article_author_id" json:"article_author_id"`
	ArticleID       int     `gorm:"column:article_id" json:"article_id"`
	FirstName       string  `gorm:"column:first_name" json:"first_name"`
	LastName        string  `gorm:"column:last_name" json:"last_name"`
	Email           *string `gorm:"column:email" json:"email,omitempty"`
	Affiliation     *string `gorm:"column:affiliation" json:"affiliation,omitempty"`
	ORCID           *string `gorm:"column:orcid" json:"orcid,omitempty"`
	Sequence        int     `gorm:"column:sequence" json:"sequence"`
}

// ArticleFile is copied 1:1 from SubmissionFile at publish time. External
// storage records are re-pointed at the new file id by the assembler.
type ArticleFile struct {
	ArticleFileID int       `gorm:"primaryKey;column:article_file_id" json:"article_file_id"`
	ArticleID     int       `gorm:"column:article_id" json:"article_id"`
	OriginalName  string    `gorm:"column:original_name" json:"original_name"`
	MimeType      string    `gorm:"column:mime_type" json:"mime_type"`
	FileSize      int64     `gorm:"column:file_size" json:"file_size"`
	FileStage     string    `gorm:"column:file_stage" json:"file_stage"`
	CreatedAt     time.Time `gorm:"column:created_at" json:"created_at"`
}

// TableName overrides
func (Article) TableName() string {
	return "articles"
}

func (ArticleAuthor) TableName() string {
	return "article_authors"
}

func (ArticleFile) TableName() string {
	return "article_files"
}
