package models

// AuditLog records security-relevant actions such as logins, lockouts and deletions.
type AuditLog struct {
	Base
	UserID       uint   `gorm:"not null;index" json:"user_id"`
	Action       string `gorm:"not null" json:"action"`
	ResourceType string `gorm:"not null" json:"resource_type"`
	ResourceID   uint   `json:"resource_id"`
	Changes      string `json:"changes,omitempty"`

	// CorrelationID is the update_id or request_id of the log lines for the
	// same action.
	CorrelationID string `gorm:"index" json:"correlation_id,omitempty"`
}

// Audit actions.
const (
	AuditActionRegister       = "REGISTER"
	AuditActionLogin          = "LOGIN"
	AuditActionLoginFailed    = "LOGIN_FAILED"
	AuditActionLocked         = "ACCOUNT_LOCKED"
	AuditActionCreateCard     = "CREATE_CARD"
	AuditActionDeleteCard     = "DELETE_CARD"
	AuditActionCreateCategory = "CREATE_CATEGORY"
	AuditActionDeleteCategory = "DELETE_CATEGORY"
)
