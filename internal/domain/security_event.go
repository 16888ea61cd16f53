package domain

import "time"

// Security event types written by the auth flow. The log is append-only;
// nothing in this service mutates or deletes rows.
const (
	EventAuthFailed          = "auth_failed"
	EventLoginSuccess        = "login_success"
	EventLoginFailed         = "login_failed"
	EventRegistrationBlocked = "registration_blocked"
	EventRegistrationSuccess = "registration_success"
	EventSuspiciousActivity  = "suspicious_activity"
)

const (
	SeverityInfo    = "info"
	SeverityWarning = "warning"
	SeverityError   = "error"
)

type SecurityEvent struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	EventType string    `gorm:"index;not null" json:"event_type"`
	Severity  string    `gorm:"not null" json:"severity"`
	UserID    string    `gorm:"type:uuid" json:"user_id,omitempty"`
	AuthEmail string    `json:"auth_email,omitempty"`
	IPAddress string    `gorm:"index" json:"ip_address,omitempty"`
	UserAgent string    `json:"user_agent,omitempty"`
	Details   string    `gorm:"type:text" json:"details,omitempty"`
	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}

func (SecurityEvent) TableName() string { return "security_event" }
