package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"journal-management-api/config"
	"journal-management-api/models"

	"gorm.io/gorm"
)

// DecisionInput carries one editorial decision request.
type DecisionInput struct {
	SubmissionID int    `json:"submission_id"`
	DecisionType string `json:"decision_type"`
	Comments     string `json:"comments"`
	EditorID     int    `json:"editor_id"`
}

// DecisionResult is returned to the orchestrator after a recorded decision.
type DecisionResult struct {
	Submission *models.Submission        `json:"submission"`
	Decision   *models.EditorialDecision `json:"decision"`
}

// DecisionNotifier is told about recorded decisions so the submitter can be
// emailed. Implementations must be best-effort; the engine ignores failures.
type DecisionNotifier interface {
	DecisionRecorded(ctx context.Context, submission *models.Submission, decision *models.EditorialDecision)
}

// DecisionService applies editorial decisions to submissions. The status
// update and the decision-record insert run in one transaction: a failed
// append rolls back the status change.
type DecisionService struct {
	db         *gorm.DB
	capability *CapabilityService
	audit      *AuditService
	notifier   DecisionNotifier
}

// NewDecisionService constructs a DecisionService. A nil db falls back to
// the shared connection.
func NewDecisionService(db *gorm.DB, notifier DecisionNotifier) *DecisionService {
	if db == nil {
		db = config.DB
	}
	return &DecisionService{
		db:         db,
		capability: NewCapabilityService(db),
		audit:      NewAuditService(db),
		notifier:   notifier,
	}
}

// statusForDecision maps a decision type to the submission status it sets.
func statusForDecision(decisionType string) (string, bool) {
	switch decisionType {
	case models.DecisionAccept:
		return models.SubmissionStatusAccepted, true
	case models.DecisionDecline:
		return models.SubmissionStatusDeclined, true
	case models.DecisionRevision:
		return models.SubmissionStatusRevisionRequested, true
	case models.DecisionResubmit:
		return models.SubmissionStatusSubmitted, true
	}
	return "", false
}

// Decide records one editorial decision: it appends an immutable decision
// row carrying the round active before any increment, transitions the
// submission status, and bumps the round for revision requests.
func (s *DecisionService) Decide(ctx context.Context, input *DecisionInput) (*DecisionResult, error) {
	if input == nil || input.SubmissionID <= 0 {
		return nil, NewPipelineError(KindValidation, "submission id is required")
	}

	decisionType := strings.ToLower(strings.TrimSpace(input.DecisionType))
	targetStatus, ok := statusForDecision(decisionType)
	if !ok {
		return nil, NewPipelineError(KindValidation,
			fmt.Sprintf("decision type must be one of accept, decline, revision, resubmit; got %q", input.DecisionType))
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

	now := time.Now()
	decision := models.EditorialDecision{
		SubmissionID: submission.SubmissionID,
		EditorID:     input.EditorID,
		DecisionType: decisionType,
		Round:        submission.CurrentRound,
		CreatedAt:    now,
	}
	if comment := strings.TrimSpace(input.Comments); comment != "" {
		decision.Comments = &comment
	}

	newRound := submission.CurrentRound
	if decisionType == models.DecisionRevision {
		newRound++
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&decision).Error; err != nil {
			return fmt.Errorf("failed to append decision record: %w", err)
		}

		updates := map[string]interface{}{
			"current_round": newRound,
			"editor_id":     input.EditorID,
			"last_modified": now,
			"status":        targetStatus,
		}
		if err := tx.Model(&models.Submission{}).
			Where("submission_id = ?", submission.SubmissionID).
			Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to update submission status: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, WrapPipelineError(KindInternal, "decision could not be recorded", err)
	}

	submission.Status = targetStatus
	submission.CurrentRound = newRound
	submission.EditorID = &input.EditorID
	submission.LastModified = now

	entityID := submission.SubmissionID
	s.audit.Record(ctx, input.EditorID, "decision", "submission", &entityID, map[string]interface{}{
		"decision_type": decisionType,
		"status":        targetStatus,
		"round":         decision.Round,
	})

	if s.notifier != nil {
		s.notifier.DecisionRecorded(ctx, &submission, &decision)
	}

	return &DecisionResult{Submission: &submission, Decision: &decision}, nil
}

// ListDecisions returns the decision history for a submission, newest first.
func (s *DecisionService) ListDecisions(ctx context.Context, submissionID int) ([]models.EditorialDecision, error) {
	var decisions []models.EditorialDecision
	if err := s.db.WithContext(ctx).
		Where("submission_id = ?", submissionID).
		Order("created_at DESC").
		Find(&decisions).Error; err != nil {
		return nil, WrapPipelineError(KindInternal, "failed to list decisions", err)
	}
	return decisions, nil
}
