package services

import (
	"context"
	"errors"

	"journal-management-api/config"
	"journal-management-api/models"

	"gorm.io/gorm"
)

// CapabilityService resolves whether a user may act as an editor for a
// journal. Two backing stores are merged: the legacy journal_users table and
// the newer user_role_assignments table. Callers only ever see the combined
// boolean; they must not depend on which store granted the capability.
type CapabilityService struct {
	db *gorm.DB
}

// NewCapabilityService constructs a CapabilityService.
func NewCapabilityService(db *gorm.DB) *CapabilityService {
	if db == nil {
		db = config.DB
	}
	return &CapabilityService{db: db}
}

// CheckEditorCapability reports whether userID holds an editor,
// section-editor, or super-admin capability scoped to journalID.
func (s *CapabilityService) CheckEditorCapability(ctx context.Context, userID, journalID int) (bool, error) {
	var user models.User
	if err := s.db.WithContext(ctx).
		Select("user_id, role_id").
		Where("user_id = ? AND delete_at IS NULL", userID).
		First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}

	if user.IsSuperAdmin() {
		return true, nil
	}

	var legacyCount int64
	if err := s.db.WithContext(ctx).Model(&models.JournalUser{}).
		Where("user_id = ? AND journal_id = ? AND role IN ?",
			userID, journalID,
			[]string{models.JournalRoleEditor, models.JournalRoleSectionEditor}).
		Count(&legacyCount).Error; err != nil {
		return false, err
	}
	if legacyCount > 0 {
		return true, nil
	}

	var assignedCount int64
	if err := s.db.WithContext(ctx).Model(&models.UserRoleAssignment{}).
		Where("user_id = ? AND journal_id = ? AND role_name IN ?",
			userID, journalID,
			[]string{models.JournalRoleEditor, models.JournalRoleSectionEditor}).
		Count(&assignedCount).Error; err != nil {
		return false, err
	}

	return assignedCount > 0, nil
}

// requireEditor wraps CheckEditorCapability into the pipeline error
// taxonomy so every stage reports authorization failures identically.
func (s *CapabilityService) requireEditor(ctx context.Context, userID, journalID int) error {
	ok, err := s.CheckEditorCapability(ctx, userID, journalID)
	if err != nil {
		return WrapPipelineError(KindInternal, "failed to resolve editor capability", err)
	}
	if !ok {
		return NewPipelineError(KindAuthorization, "user is not an editor for this journal").
			WithDetail("journal_id", journalID)
	}
	return nil
}
