package models

import "time"

// AuditLog rows are fire-and-forget: writers log and continue if the insert
// fails, they never abort the pipeline for it.
type AuditLog struct {
	LogID      int       `gorm:"primaryKey;column:log_id" json:"log_id"`
	UserID     int       `gorm:"column:user_id" json:"user_id"`
	Action     string    `gorm:"column:action" json:"action"`
	EntityType string    `gorm:"column:entity_type" json:"entity_type"`
	EntityID   *int      `gorm:"column:entity_id" json:"entity_id,omitempty"`
	Details    *string   `gorm:"column:details" json:"details,omitempty"`
	IPAddress  string    `gorm:"column:ip_address" json:"ip_address"`
	UserAgent  *string   `gorm:"column:user_agent" json:"user_agent,omitempty"`
	CreatedAt  time.Time `gorm:"column:created_at" json:"created_at"`
}

// TableName specifies the table for AuditLog.
func (AuditLog) TableName() string {
	return "audit_logs"
}
