package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"journal-management-api/config"
	"journal-management-api/models"

	mysqldriver "github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

// PublishInput carries a publish request for an accepted submission. All
// bibliographic fields are optional overrides.
type PublishInput struct {
	SubmissionID int     `json:"submission_id"`
	EditorID     int     `json:"editor_id"`
	IssueID      *int    `json:"issue_id,omitempty"`
	Volume       *int    `json:"volume,omitempty"`
	IssueNumber  *string `json:"issue_number,omitempty"`
	Year         *int    `json:"year,omitempty"`
	Pages        *string `json:"pages,omitempty"`
	DOI          *string `json:"doi,omitempty"`
}

// PublishResult distinguishes total success from partial success: Warnings
// lists secondary author/file copy steps that failed after the article
// itself was committed.
type PublishResult struct {
	Article      *models.Article          `json:"article"`
	Registration *models.DOIRegistration `json:"registration,omitempty"`
	Warnings     []string                 `json:"warnings,omitempty"`
}

// PublicationService converts accepted submissions into published articles.
// Article creation, submission flip, history row, and pending DOI row are
// one transaction; author/file copying is best-effort afterwards.
type PublicationService struct {
	db         *gorm.DB
	capability *CapabilityService
	audit      *AuditService
}

// NewPublicationService constructs a PublicationService.
func NewPublicationService(db *gorm.DB) *PublicationService {
	if db == nil {
		db = config.DB
	}
	return &PublicationService{
		db:         db,
		capability: NewCapabilityService(db),
		audit:      NewAuditService(db),
	}
}

// isDuplicateKeyErr reports whether err is a MySQL duplicate-entry error.
// The unique index on articles.submission_id turns the publish race into
// this error instead of a second article row.
func isDuplicateKeyErr(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var mysqlErr *mysqldriver.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == 1062
}

// Publish creates the article for an accepted submission and copies its
// authors and files. A second publish call for the same submission returns
// a Conflict and creates nothing.
func (s *PublicationService) Publish(ctx context.Context, input *PublishInput) (*PublishResult, error) {
	if input == nil || input.SubmissionID <= 0 {
		return nil, NewPipelineError(KindValidation, "submission id is required")
	}

	var submission models.Submission
	if err := s.db.WithContext(ctx).
		Where("submission_id = ?", input.SubmissionID).
		First(&submission).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewPipelineError(KindNotFound, "submission not found").
				WithDetail("submission_id", input.SubmissionID)
		}
		return nil, WrapPipelineError(KindInternal, "failed to load submission", err)
	}

	if err := s.capability.requireEditor(ctx, input.EditorID, submission.JournalID); err != nil {
		return nil, err
	}

	if !submission.CanPublish() {
		return nil, NewPipelineError(KindInvalidState,
			fmt.Sprintf("submission must be accepted before publishing; current status is %q", submission.Status)).
			WithDetail("status", submission.Status)
	}

	var existing int64
	if err := s.db.WithContext(ctx).Model(&models.Article{}).
		Where("submission_id = ?", submission.SubmissionID).
		Count(&existing).Error; err != nil {
		return nil, WrapPipelineError(KindInternal, "failed to check for existing article", err)
	}
	if existing > 0 {
		return nil, NewPipelineError(KindConflict, "an article already exists for this submission").
			WithDetail("submission_id", submission.SubmissionID)
	}

	now := time.Now()
	article := models.Article{
		SubmissionID:  submission.SubmissionID,
		JournalID:     submission.JournalID,
		SectionID:     submission.SectionID,
		IssueID:       input.IssueID,
		Title:         submission.Title,
		Abstract:      submission.Abstract,
		Keywords:      submission.Keywords,
		DOI:           input.DOI,
		Volume:        input.Volume,
		IssueNumber:   input.IssueNumber,
		Year:          input.Year,
		Pages:         input.Pages,
		PublishedDate: now,
	}

	var registration *models.DOIRegistration

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&article).Error; err != nil {
			return err
		}

		if err := tx.Model(&models.Submission{}).
			Where("submission_id = ?", submission.SubmissionID).
			Updates(map[string]interface{}{
				"last_modified": now,
				"status":        models.SubmissionStatusPublished,
			}).Error; err != nil {
			return err
		}

		history := models.PublicationHistory{
			ArticleID: article.ArticleID,
			Event:     models.PublicationEventPublished,
			ActedBy:   input.EditorID,
			CreatedAt: now,
		}
		if snapshot, err := json.Marshal(article); err == nil {
			payload := string(snapshot)
			history.Snapshot = &payload
		}
		if err := tx.Create(&history).Error; err != nil {
			return err
		}

		// Registration itself is a separate, retryable stage; the pending
		// row only records that the article expects one.
		if input.DOI != nil && *input.DOI != "" {
			pending := models.DOIRegistration{
				ArticleID: article.ArticleID,
				DOI:       *input.DOI,
				Status:    models.DOIStatusPending,
				CreatedAt: now,
			}
			if err := tx.Create(&pending).Error; err != nil {
				return err
			}
			registration = &pending
		}

		return nil
	})
	if err != nil {
		if isDuplicateKeyErr(err) {
			return nil, NewPipelineError(KindConflict, "an article already exists for this submission").
				WithDetail("submission_id", submission.SubmissionID)
		}
		return nil, WrapPipelineError(KindInternal, "failed to create article", err)
	}

	warnings := s.copyChildren(ctx, &submission, &article)

	entityID := article.ArticleID
	s.audit.Record(ctx, input.EditorID, "publish", "article", &entityID, map[string]interface{}{
		"submission_id": submission.SubmissionID,
		"doi":           input.DOI,
		"warnings":      len(warnings),
	})

	return &PublishResult{Article: &article, Registration: registration, Warnings: warnings}, nil
}

// copyChildren duplicates submission authors and files onto the article.
// Each row is attempted independently: a failed copy is collected as a
// warning instead of aborting the publication that already committed.
func (s *PublicationService) copyChildren(ctx context.Context, submission *models.Submission, article *models.Article) []string {
	var warnings []string

	var authors []models.SubmissionAuthor
	if err := s.db.WithContext(ctx).
		Where("submission_id = ?", submission.SubmissionID).
		Order("sequence ASC").
		Find(&authors).Error; err != nil {
		warnings = append(warnings, fmt.Sprintf("failed to load submission authors: %v", err))
	} else {
		for _, author := range authors {
			copied := models.ArticleAuthor{
				ArticleID:   article.ArticleID,
				FirstName:   author.FirstName,
				LastName:    author.LastName,
				Email:       author.Email,
				Affiliation: author.Affiliation,
				ORCID:       author.ORCID,
				Sequence:    author.Sequence,
			}
			if err := s.db.WithContext(ctx).Create(&copied).Error; err != nil {
				warnings = append(warnings, fmt.Sprintf("failed to copy author %d: %v", author.AuthorID, err))
			}
		}
	}

	var files []models.SubmissionFile
	if err := s.db.WithContext(ctx).
		Where("submission_id = ?", submission.SubmissionID).
		Find(&files).Error; err != nil {
		warnings = append(warnings, fmt.Sprintf("failed to load submission files: %v", err))
		return warnings
	}

	for _, file := range files {
		copied := models.ArticleFile{
			ArticleID:    article.ArticleID,
			OriginalName: file.OriginalName,
			MimeType:     file.MimeType,
			FileSize:     file.FileSize,
			FileStage:    file.FileStage,
			CreatedAt:    time.Now(),
		}
		if err := s.db.WithContext(ctx).Create(&copied).Error; err != nil {
			warnings = append(warnings, fmt.Sprintf("failed to copy file %d: %v", file.FileID, err))
			continue
		}

		if err := s.relinkStorage(ctx, file.FileID, copied.ArticleFileID); err != nil {
			warnings = append(warnings, fmt.Sprintf("failed to re-link storage for file %d: %v", file.FileID, err))
		}
	}

	for _, warning := range warnings {
		log.Printf("publish %d: %s", article.ArticleID, warning)
	}

	return warnings
}

// relinkStorage points an external storage record at the new article file.
// This is a manual hand-off: the storage table has no cascade from
// submission files.
func (s *PublicationService) relinkStorage(ctx context.Context, submissionFileID, articleFileID int) error {
	var link models.FileStorageLink
	if err := s.db.WithContext(ctx).
		Where("submission_file_id = ?", submissionFileID).
		First(&link).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}

	return s.db.WithContext(ctx).Model(&models.FileStorageLink{}).
		Where("link_id = ?", link.LinkID).
		Updates(map[string]interface{}{
			"article_file_id": articleFileID,
			"updated_at":      time.Now(),
		}).Error
}
