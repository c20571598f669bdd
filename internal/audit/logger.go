package audit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"storefront/internal/metrics"
	"storefront/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// CodeSuspiciousActivity and CodeOrderBlocked tag entries that are not
// produced by a validator.
const (
	CodeSuspiciousActivity = "SUSPICIOUS_ACTIVITY"
	CodeOrderBlocked       = "ORDER_BLOCKED"
)

// Store persists audit entries.
type Store interface {
	Append(ctx context.Context, entry *model.AuditLogEntry) error
}

// AlertSender hands alerts off for delivery without blocking.
type AlertSender interface {
	Dispatch(ctx context.Context, alert Alert)
}

// Result reports what happened to a logging call. Audit failures are never
// fatal to checkout; callers may inspect Err but are not required to.
type Result struct {
	Entry     *model.AuditLogEntry
	Persisted bool
	Alerted   bool
	Err       error
}

// Factory builds one Logger per checkout attempt.
type Factory struct {
	store  Store
	alerts AlertSender
	logger zerolog.Logger
	now    func() time.Time
}

// NewFactory creates a logger factory. alerts may be nil to disable alerting.
func NewFactory(store Store, alerts AlertSender, logger zerolog.Logger) *Factory {
	return &Factory{
		store:  store,
		alerts: alerts,
		logger: logger.With().Str("component", "audit").Logger(),
		now:    time.Now,
	}
}

// NewLogger returns a logger bound to a fresh session id.
func (f *Factory) NewLogger() *Logger {
	sessionID := uuid.NewString()
	return &Logger{
		sessionID: sessionID,
		store:     f.store,
		alerts:    f.alerts,
		logger:    f.logger.With().Str("session_id", sessionID).Logger(),
		now:       f.now,
	}
}

// Logger records audit entries for a single checkout session.
type Logger struct {
	sessionID string
	store     Store
	alerts    AlertSender
	logger    zerolog.Logger
	now       func() time.Time
}

// SessionID returns the id stamped on every entry written by this logger.
func (l *Logger) SessionID() string {
	return l.sessionID
}

// LogValidationViolation records the findings of a rejected draft. findings
// may mix errors and warnings. Critical entries raise an alert.
func (l *Logger) LogValidationViolation(ctx context.Context, draft model.OrderDraft, findings []model.ValidationError, meta *model.AuditContext) Result {
	severity := ClassifySeverity(findings)
	entry, err := l.newEntry(draft, ClassifyEventType(findings), severity, findings, meta)
	if err != nil {
		return Result{Err: err}
	}

	result := l.persist(ctx, entry)
	if severity == model.AuditSeverityCritical {
		result.Alerted = l.alert(ctx, entry, "critical order validation failure")
	}
	return result
}

// LogValidationSuccess records the warnings of an accepted draft. Nothing is
// written when there are no warnings.
func (l *Logger) LogValidationSuccess(ctx context.Context, draft model.OrderDraft, warnings []model.ValidationError) Result {
	if len(warnings) == 0 {
		return Result{}
	}

	entry, err := l.newEntry(draft, model.AuditEventValidationWarning, model.AuditSeverityLow, warnings, nil)
	if err != nil {
		return Result{Err: err}
	}
	return l.persist(ctx, entry)
}

// LogSuspiciousActivity records a flagged pattern and always raises an alert.
func (l *Logger) LogSuspiciousActivity(ctx context.Context, description string, draft model.OrderDraft, meta *model.AuditContext) Result {
	findings := []model.ValidationError{{
		Field:    "general",
		Message:  description,
		Code:     CodeSuspiciousActivity,
		Severity: model.SeverityError,
	}}
	entry, err := l.newEntry(draft, model.AuditEventSuspiciousActivity, model.AuditSeverityHigh, findings, meta)
	if err != nil {
		return Result{Err: err}
	}

	result := l.persist(ctx, entry)
	result.Alerted = l.alert(ctx, entry, description)
	return result
}

// LogOrderBlocked records a draft that passed validation but was refused by
// the database when the order was written.
func (l *Logger) LogOrderBlocked(ctx context.Context, draft model.OrderDraft, reason string, meta *model.AuditContext) Result {
	findings := []model.ValidationError{{
		Field:    "general",
		Message:  reason,
		Code:     CodeOrderBlocked,
		Severity: model.SeverityError,
	}}
	entry, err := l.newEntry(draft, model.AuditEventOrderBlocked, model.AuditSeverityHigh, findings, meta)
	if err != nil {
		return Result{Err: err}
	}
	return l.persist(ctx, entry)
}

func (l *Logger) newEntry(
	draft model.OrderDraft,
	eventType model.AuditEventType,
	severity model.AuditSeverity,
	findings []model.ValidationError,
	meta *model.AuditContext,
) (*model.AuditLogEntry, error) {
	data, err := snapshot(draft)
	if err != nil {
		l.logger.Error().Err(err).Str("event_type", string(eventType)).Msg("failed to snapshot order draft")
		return nil, fmt.Errorf("failed to snapshot order draft: %w", err)
	}

	entry := &model.AuditLogEntry{
		ID:               uuid.New(),
		Timestamp:        l.now().UTC(),
		EventType:        eventType,
		SessionID:        l.sessionID,
		OrderData:        data,
		ValidationErrors: append([]model.ValidationError(nil), findings...),
		Severity:         severity,
	}
	if userID := draft.UserID(); userID != "" {
		entry.UserID = &userID
	}
	if meta != nil {
		if meta.IPAddress != "" {
			ip := meta.IPAddress
			entry.IPAddress = &ip
		}
		if meta.UserAgent != "" {
			ua := meta.UserAgent
			entry.UserAgent = &ua
		}
		if len(meta.Extra) > 0 {
			entry.AdditionalContext = meta.Extra
		}
	}
	return entry, nil
}

// persist writes the entry under a context detached from request
// cancellation so an aborted request still leaves its trail.
func (l *Logger) persist(ctx context.Context, entry *model.AuditLogEntry) Result {
	err := l.store.Append(context.WithoutCancel(ctx), entry)
	persisted := err == nil

	metrics.AuditEntriesTotal.
		WithLabelValues(string(entry.EventType), string(entry.Severity), strconv.FormatBool(persisted)).
		Inc()

	if err != nil {
		l.logger.Error().
			Err(err).
			Str("entry_id", entry.ID.String()).
			Str("event_type", string(entry.EventType)).
			Msg("failed to persist audit entry")
		return Result{Entry: entry, Err: fmt.Errorf("failed to persist audit entry: %w", err)}
	}

	l.logger.Info().
		Str("entry_id", entry.ID.String()).
		Str("event_type", string(entry.EventType)).
		Str("severity", string(entry.Severity)).
		Int("findings", len(entry.ValidationErrors)).
		Msg("audit entry recorded")
	return Result{Entry: entry, Persisted: true}
}

func (l *Logger) alert(ctx context.Context, entry *model.AuditLogEntry, summary string) bool {
	if l.alerts == nil {
		return false
	}
	l.alerts.Dispatch(ctx, newAlert(entry, summary))
	return true
}
