package services

import (
	"context"
	"errors"
	"time"

	"journal-management-api/config"
	"journal-management-api/models"

	"gorm.io/gorm"
)

// IssueInput carries create/update fields for an issue.
type IssueInput struct {
	JournalID     int        `json:"journal_id"`
	Volume        *int       `json:"volume,omitempty"`
	Number        *string    `json:"number,omitempty"`
	Year          int        `json:"year"`
	Title         *string    `json:"title,omitempty"`
	Description   *string    `json:"description,omitempty"`
	PublishedDate *time.Time `json:"published_date,omitempty"`
	IsPublished   bool       `json:"is_published"`
	AccessStatus  string     `json:"access_status"`
}

// IssueWithStatus decorates an issue row with its derived status for
// listing responses.
type IssueWithStatus struct {
	models.Issue
	Status string `json:"status"`
}

// DeriveIssueStatus computes the display status from the two stored fields.
// It must be recomputed on every read; the status is never stored.
func DeriveIssueStatus(issue *models.Issue) string {
	if issue.IsPublished {
		return models.IssueStatusPublished
	}
	if issue.PublishedDate != nil {
		return models.IssueStatusScheduled
	}
	return models.IssueStatusDraft
}

// IssueService manages journal issues: the duplicate guard on
// (journal_id, volume, number, year) and the derived-status listing.
type IssueService struct {
	db *gorm.DB
}

// NewIssueService constructs an IssueService.
func NewIssueService(db *gorm.DB) *IssueService {
	if db == nil {
		db = config.DB
	}
	return &IssueService{db: db}
}

// checkDuplicate fails with a Conflict when another issue of the same
// journal already uses the (volume, number, year) key. Issues without both
// volume and number are never guarded. excludeID skips the row being
// updated.
func (s *IssueService) checkDuplicate(ctx context.Context, input *IssueInput, excludeID int) error {
	if input.Volume == nil || input.Number == nil {
		return nil
	}

	query := s.db.WithContext(ctx).Model(&models.Issue{}).
		Where("journal_id = ? AND volume = ? AND number = ? AND year = ?",
			input.JournalID, *input.Volume, *input.Number, input.Year)
	if excludeID > 0 {
		query = query.Where("issue_id <> ?", excludeID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return WrapPipelineError(KindInternal, "failed to check issue uniqueness", err)
	}
	if count > 0 {
		return NewPipelineError(KindConflict, "an issue with this volume, number and year already exists").
			WithDetail("volume", *input.Volume).
			WithDetail("number", *input.Number).
			WithDetail("year", input.Year)
	}
	return nil
}

// CreateIssue inserts a new issue after the duplicate guard passes.
func (s *IssueService) CreateIssue(ctx context.Context, input *IssueInput) (*models.Issue, error) {
	if input == nil || input.JournalID <= 0 {
		return nil, NewPipelineError(KindValidation, "journal id is required")
	}
	if input.Year <= 0 {
		return nil, NewPipelineError(KindValidation, "year is required")
	}

	if err := s.checkDuplicate(ctx, input, 0); err != nil {
		return nil, err
	}

	issue := models.Issue{
		JournalID:     input.JournalID,
		Volume:        input.Volume,
		Number:        input.Number,
		Year:          input.Year,
		Title:         input.Title,
		Description:   input.Description,
		PublishedDate: input.PublishedDate,
		IsPublished:   input.IsPublished,
		AccessStatus:  input.AccessStatus,
	}

	if err := s.db.WithContext(ctx).Create(&issue).Error; err != nil {
		if isDuplicateKeyErr(err) {
			return nil, NewPipelineError(KindConflict, "an issue with this volume, number and year already exists")
		}
		return nil, WrapPipelineError(KindInternal, "failed to create issue", err)
	}

	return &issue, nil
}

// UpdateIssue applies the input to an existing issue, re-running the
// duplicate guard against all other issues of the journal.
func (s *IssueService) UpdateIssue(ctx context.Context, issueID int, input *IssueInput) (*models.Issue, error) {
	if input == nil || issueID <= 0 {
		return nil, NewPipelineError(KindValidation, "issue id is required")
	}

	var issue models.Issue
	if err := s.db.WithContext(ctx).
		Where("issue_id = ?", issueID).
		First(&issue).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewPipelineError(KindNotFound, "issue not found").
				WithDetail("issue_id", issueID)
		}
		return nil, WrapPipelineError(KindInternal, "failed to load issue", err)
	}

	if input.JournalID == 0 {
		input.JournalID = issue.JournalID
	}

	if err := s.checkDuplicate(ctx, input, issueID); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{
		"volume":         input.Volume,
		"number":         input.Number,
		"year":           input.Year,
		"title":          input.Title,
		"description":    input.Description,
		"published_date": input.PublishedDate,
		"is_published":   input.IsPublished,
		"access_status":  input.AccessStatus,
	}
	if err := s.db.WithContext(ctx).Model(&models.Issue{}).
		Where("issue_id = ?", issueID).
		Updates(updates).Error; err != nil {
		if isDuplicateKeyErr(err) {
			return nil, NewPipelineError(KindConflict, "an issue with this volume, number and year already exists")
		}
		return nil, WrapPipelineError(KindInternal, "failed to update issue", err)
	}

	issue.Volume = input.Volume
	issue.Number = input.Number
	issue.Year = input.Year
	issue.Title = input.Title
	issue.Description = input.Description
	issue.PublishedDate = input.PublishedDate
	issue.IsPublished = input.IsPublished
	issue.AccessStatus = input.AccessStatus

	return &issue, nil
}

// ListIssues returns a journal's issues with their derived status attached.
func (s *IssueService) ListIssues(ctx context.Context, journalID int) ([]IssueWithStatus, error) {
	var issues []models.Issue
	if err := s.db.WithContext(ctx).
		Where("journal_id = ?", journalID).
		Order("year DESC, volume DESC").
		Find(&issues).Error; err != nil {
		return nil, WrapPipelineError(KindInternal, "failed to list issues", err)
	}

	listed := make([]IssueWithStatus, 0, len(issues))
	for _, issue := range issues {
		listed = append(listed, IssueWithStatus{Issue: issue, Status: DeriveIssueStatus(&issue)})
	}
	return listed, nil
}
