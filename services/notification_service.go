package services

import (
	"context"
	"fmt"
	"log"

	"journal-management-api/config"
	"journal-management-api/models"

	"gorm.io/gorm"
)

var decisionSubjects = map[string]string{
	models.DecisionAccept:   "Your submission has been accepted",
	models.DecisionDecline:  "Decision on your submission",
	models.DecisionRevision: "Revisions requested for your submission",
	models.DecisionResubmit: "Your submission has re-entered review",
}

// NotificationService emails submitters about editorial decisions. Every
// path is best-effort: failures are logged and never surfaced to the
// pipeline.
type NotificationService struct {
	db       *gorm.DB
	sendMail func(to []string, subject, html string) error
}

// NewNotificationService constructs a NotificationService.
func NewNotificationService(db *gorm.DB) *NotificationService {
	if db == nil {
		db = config.DB
	}
	return &NotificationService{db: db, sendMail: config.SendMail}
}

// DecisionRecorded implements DecisionNotifier.
func (s *NotificationService) DecisionRecorded(ctx context.Context, submission *models.Submission, decision *models.EditorialDecision) {
	var submitter models.User
	if err := s.db.WithContext(ctx).
		Select("user_id, user_fname, user_lname, email").
		Where("user_id = ? AND delete_at IS NULL", submission.SubmitterID).
		First(&submitter).Error; err != nil {
		log.Printf("notification: failed to load submitter %d: %v", submission.SubmitterID, err)
		return
	}

	subject, ok := decisionSubjects[decision.DecisionType]
	if !ok {
		subject = "Decision on your submission"
	}

	comments := ""
	if decision.Comments != nil {
		comments = fmt.Sprintf("<p>Editor comments:</p><blockquote>%s</blockquote>", *decision.Comments)
	}

	body := fmt.Sprintf(
		"<p>Dear %s,</p><p>An editorial decision (%s) has been recorded for your submission <b>%s</b> (round %d).</p>%s",
		submitter.FullName(), decision.DecisionType, submission.Title, decision.Round, comments,
	)

	if err := s.sendMail([]string{submitter.Email}, subject, body); err != nil {
		log.Printf("notification: failed to email submitter %d: %v", submitter.UserID, err)
	}
}
