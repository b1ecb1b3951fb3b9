package models

import "time"

// Audit actions recorded for archive, type, profile and account changes.
const (
	AuditActionLogin              = "LOGIN"
	AuditActionPasswordChange     = "PASSWORD_CHANGE"
	AuditActionArchiveCreate      = "ARCHIVE_CREATE"
	AuditActionArchiveUpdate      = "ARCHIVE_UPDATE"
	AuditActionArchiveDelete      = "ARCHIVE_DELETE"
	AuditActionDocumentTypeCreate = "DOCUMENT_TYPE_CREATE"
	AuditActionDocumentTypeUpdate = "DOCUMENT_TYPE_UPDATE"
	AuditActionDocumentTypeDelete = "DOCUMENT_TYPE_DELETE"
	AuditActionProfileSave        = "PROFILE_SAVE"
	AuditActionUserCreate         = "USER_CREATE"
	AuditActionUserUpdate         = "USER_UPDATE"
	AuditActionUserDelete         = "USER_DELETE"
)

// AuditLog represents an audit trail record.
type AuditLog struct {
	ID         string    `db:"id" json:"id"`
	UserID     *string   `db:"user_id" json:"userId,omitempty"`
	Action     string    `db:"action" json:"action"`
	Resource   string    `db:"resource" json:"resource"`
	ResourceID *string   `db:"resource_id" json:"resourceId,omitempty"`
	OldValues  []byte    `db:"old_values" json:"oldValues,omitempty"`
	NewValues  []byte    `db:"new_values" json:"newValues,omitempty"`
	IPAddress  string    `db:"ip_address" json:"ipAddress"`
	UserAgent  string    `db:"user_agent" json:"userAgent"`
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`
}
