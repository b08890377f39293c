package models

import "time"

// Editorial decision types. Each maps to a submission status in
// services.DecisionService.
const (
	DecisionAccept   = "accept"
	DecisionDecline  = "decline"
	DecisionRevision = "revision"
	DecisionResubmit = "resubmit"
)

// EditorialDecision is an append-only record of one decision event. Rows are
// never updated or deleted; Round is the submission round that was active
// when the decision was made, before any increment caused by the decision.
type EditorialDecision struct {
	DecisionID   int       `gorm:"primaryKey;column:decision_id" json:"decision_id"`
	SubmissionID int       `gorm:"column:submission_id" json:"submission_id"`
	EditorID     int       `gorm:"column:editor_id" json:"editor_id"`
	DecisionType string    `gorm:"column:decision_type" json:"decision_type"`
	Round        int       `gorm:"column:round" json:"round"`
	Comments     *string   `gorm:"column:comments" json:"comments,omitempty"`
	CreatedAt    time.Time `gorm:"column:created_at" json:"created_at"`

	Editor *User `gorm:"foreignKey:EditorID" json:"editor,omitempty"`
}

// TableName specifies the table for EditorialDecision.
func (EditorialDecision) TableName() string {
	return "editorial_decisions"
}

// ValidDecisionType reports whether the given decision type is one of the
// four accepted values.
func ValidDecisionType(decisionType string) bool {
	switch decisionType {
	case DecisionAccept, DecisionDecline, DecisionRevision, DecisionResubmit:
		return true
	}
	return false
}
