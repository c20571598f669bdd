package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// AuditEventType classifies an audit log entry.
type AuditEventType string

const (
	AuditEventValidationFailure  AuditEventType = "validation_failure"
	AuditEventValidationWarning  AuditEventType = "validation_warning"
	AuditEventOrderBlocked       AuditEventType = "order_blocked"
	AuditEventSuspiciousActivity AuditEventType = "suspicious_activity"
)

// AuditSeverity is the review priority of an audit log entry.
type AuditSeverity string

const (
	AuditSeverityLow      AuditSeverity = "low"
	AuditSeverityMedium   AuditSeverity = "medium"
	AuditSeverityHigh     AuditSeverity = "high"
	AuditSeverityCritical AuditSeverity = "critical"
)

// AuditLogEntry is an immutable record of a validation failure, warning or
// flagged pattern. OrderData holds the sanitised draft snapshot.
type AuditLogEntry struct {
	ID                uuid.UUID         `json:"id"`
	Timestamp         time.Time         `json:"timestamp"`
	EventType         AuditEventType    `json:"event_type"`
	UserID            *string           `json:"user_id,omitempty"`
	SessionID         string            `json:"session_id"`
	OrderData         json.RawMessage   `json:"order_data"`
	ValidationErrors  []ValidationError `json:"validation_errors"`
	Severity          AuditSeverity     `json:"severity"`
	IPAddress         *string           `json:"ip_address,omitempty"`
	UserAgent         *string           `json:"user_agent,omitempty"`
	AdditionalContext map[string]any    `json:"additional_context,omitempty"`
	CreatedAt         time.Time         `json:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at"`
}

// AuditContext is optional caller context attached to an audit entry.
type AuditContext struct {
	IPAddress string
	UserAgent string
	Extra     map[string]any
}

// AuditFilter narrows the audit log listing used by the admin dashboard.
type AuditFilter struct {
	EventType *AuditEventType
	Severity  *AuditSeverity
	SessionID *string
	UserID    *string
	Since     *time.Time
	Until     *time.Time
	// After resumes the listing strictly past the given entry. Rows added
	// ahead of it do not shift later pages the way Offset does.
	After     *AuditCursor
	Limit     int
	Offset    int
}

// AuditCursor is the position of an entry in the newest-first listing.
type AuditCursor struct {
	Timestamp time.Time
	ID        uuid.UUID
}
