package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"storefront/internal/metrics"
	"storefront/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Alert is the notification raised for critical entries and suspicious activity.
type Alert struct {
	EntryID   uuid.UUID            `json:"entry_id"`
	SessionID string               `json:"session_id"`
	EventType model.AuditEventType `json:"event_type"`
	Severity  model.AuditSeverity  `json:"severity"`
	UserID    *string              `json:"user_id,omitempty"`
	Codes     []string             `json:"codes"`
	Summary   string               `json:"summary"`
	Timestamp time.Time            `json:"timestamp"`
}

func newAlert(entry *model.AuditLogEntry, summary string) Alert {
	codes := make([]string, 0, len(entry.ValidationErrors))
	for _, e := range entry.ValidationErrors {
		codes = append(codes, e.Code)
	}
	return Alert{
		EntryID:   entry.ID,
		SessionID: entry.SessionID,
		EventType: entry.EventType,
		Severity:  entry.Severity,
		UserID:    entry.UserID,
		Codes:     codes,
		Summary:   summary,
		Timestamp: entry.Timestamp,
	}
}

// Alerter delivers an alert to an external channel.
type Alerter interface {
	Send(ctx context.Context, alert Alert) error
}

// LogAlerter writes alerts to the application log.
type LogAlerter struct {
	logger zerolog.Logger
}

// NewLogAlerter creates an alerter that logs at error level.
func NewLogAlerter(logger zerolog.Logger) *LogAlerter {
	return &LogAlerter{logger: logger.With().Str("alerter", "log").Logger()}
}

func (a *LogAlerter) Send(_ context.Context, alert Alert) error {
	a.logger.Error().
		Str("entry_id", alert.EntryID.String()).
		Str("session_id", alert.SessionID).
		Str("event_type", string(alert.EventType)).
		Str("severity", string(alert.Severity)).
		Strs("codes", alert.Codes).
		Msg(alert.Summary)
	return nil
}

// WebhookAlerter posts alerts as JSON to an HTTP endpoint.
type WebhookAlerter struct {
	url    string
	client *http.Client
}

// NewWebhookAlerter creates a webhook alerter. A nil client uses one with
// the given timeout.
func NewWebhookAlerter(url string, client *http.Client, timeout time.Duration) *WebhookAlerter {
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}
	return &WebhookAlerter{url: url, client: client}
}

func (a *WebhookAlerter) Send(ctx context.Context, alert Alert) error {
	body, err := json.Marshal(alert)
	if err != nil {
		return fmt.Errorf("failed to encode alert: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build alert request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to post alert: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("alert webhook returned status %d", resp.StatusCode)
	}
	return nil
}

// MultiAlerter fans an alert out to every alerter and joins their errors.
type MultiAlerter []Alerter

func (m MultiAlerter) Send(ctx context.Context, alert Alert) error {
	var errs []error
	for _, a := range m {
		if err := a.Send(ctx, alert); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Dispatcher sends alerts in the background. Callers never wait for
// delivery; Wait blocks until in-flight alerts finish, for shutdown.
type Dispatcher struct {
	alerter Alerter
	timeout time.Duration
	logger  zerolog.Logger
	wg      sync.WaitGroup
}

// NewDispatcher creates a dispatcher giving each alert up to timeout.
func NewDispatcher(alerter Alerter, timeout time.Duration, logger zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		alerter: alerter,
		timeout: timeout,
		logger:  logger.With().Str("component", "alert_dispatcher").Logger(),
	}
}

// Dispatch queues the alert and returns immediately. The request context's
// values are kept but its cancellation is not.
func (d *Dispatcher) Dispatch(ctx context.Context, alert Alert) {
	d.wg.Go(func() {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.timeout)
		defer cancel()

		if err := d.alerter.Send(ctx, alert); err != nil {
			metrics.AlertsTotal.WithLabelValues("failed").Inc()
			d.logger.Error().
				Err(err).
				Str("entry_id", alert.EntryID.String()).
				Msg("failed to deliver alert")
			return
		}
		metrics.AlertsTotal.WithLabelValues("sent").Inc()
	})
}

// Wait blocks until every dispatched alert has been delivered or failed.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
