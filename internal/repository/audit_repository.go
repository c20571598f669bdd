package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"storefront/internal/model"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

const (
	auditTable        = "order_audit_log"
	defaultAuditLimit = 50
	maxAuditLimit     = 500
)

var auditColumns = []string{
	"id", "timestamp", "event_type", "user_id", "session_id", "order_data",
	"validation_errors", "severity", "ip_address", "user_agent", "additional_context",
	"created_at", "updated_at",
}

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

type auditRepository struct {
	db     DB
	logger zerolog.Logger
}

// NewAuditRepository creates a new PostgreSQL-backed audit log repository.
func NewAuditRepository(db DB, logger zerolog.Logger) AuditRepository {
	return &auditRepository{
		db:     db,
		logger: logger.With().Str("repository", "audit").Logger(),
	}
}

func (r *auditRepository) Append(ctx context.Context, entry *model.AuditLogEntry) error {
	validationErrors := entry.ValidationErrors
	if validationErrors == nil {
		validationErrors = []model.ValidationError{}
	}
	errorsJSON, err := json.Marshal(validationErrors)
	if err != nil {
		return fmt.Errorf("failed to encode validation errors: %w", err)
	}

	var contextJSON []byte
	if len(entry.AdditionalContext) > 0 {
		if contextJSON, err = json.Marshal(entry.AdditionalContext); err != nil {
			return fmt.Errorf("failed to encode additional context: %w", err)
		}
	}

	orderData := entry.OrderData
	if len(orderData) == 0 {
		orderData = json.RawMessage(`{}`)
	}

	query, args, err := psql.Insert(auditTable).
		Columns(auditColumns[:11]...).
		Values(
			entry.ID, entry.Timestamp, entry.EventType, entry.UserID, entry.SessionID, []byte(orderData),
			errorsJSON, entry.Severity, entry.IPAddress, entry.UserAgent, contextJSON,
		).
		Suffix("RETURNING created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build audit insert: %w", err)
	}

	if err := r.db.QueryRow(ctx, query, args...).Scan(&entry.CreatedAt, &entry.UpdatedAt); err != nil {
		r.logger.Error().Err(err).
			Str("session_id", entry.SessionID).
			Str("event_type", string(entry.EventType)).
			Msg("failed to append audit entry")
		return fmt.Errorf("failed to append audit entry: %w", err)
	}

	return nil
}

func (r *auditRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.AuditLogEntry, error) {
	query, args, err := psql.Select(auditColumns...).
		From(auditTable).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build audit query: %w", err)
	}

	entry, err := scanAuditEntry(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Str("audit_id", id.String()).Msg("audit entry not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("audit_id", id.String()).Msg("failed to query audit entry")
		return nil, fmt.Errorf("failed to query audit entry: %w", err)
	}

	return &entry, nil
}

func (r *auditRepository) List(ctx context.Context, filter model.AuditFilter) ([]model.AuditLogEntry, error) {
	builder := psql.Select(auditColumns...).
		From(auditTable).
		OrderBy("timestamp DESC", "id")

	if filter.EventType != nil {
		builder = builder.Where(sq.Eq{"event_type": *filter.EventType})
	}
	if filter.Severity != nil {
		builder = builder.Where(sq.Eq{"severity": *filter.Severity})
	}
	if filter.SessionID != nil {
		builder = builder.Where(sq.Eq{"session_id": *filter.SessionID})
	}
	if filter.UserID != nil {
		builder = builder.Where(sq.Eq{"user_id": *filter.UserID})
	}
	if filter.Since != nil {
		builder = builder.Where(sq.GtOrEq{"timestamp": *filter.Since})
	}
	if filter.Until != nil {
		builder = builder.Where(sq.Lt{"timestamp": *filter.Until})
	}
	if filter.After != nil {
		// Matches ORDER BY timestamp DESC, id.
		builder = builder.Where(sq.Or{
			sq.Lt{"timestamp": filter.After.Timestamp},
			sq.And{
				sq.Eq{"timestamp": filter.After.Timestamp},
				sq.Gt{"id": filter.After.ID},
			},
		})
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultAuditLimit
	}
	if limit > maxAuditLimit {
		limit = maxAuditLimit
	}
	builder = builder.Limit(uint64(limit))
	if filter.Offset > 0 {
		builder = builder.Offset(uint64(filter.Offset))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build audit query: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to list audit entries")
		return nil, fmt.Errorf("failed to list audit entries: %w", err)
	}
	defer rows.Close()

	entries := []model.AuditLogEntry{}
	for rows.Next() {
		entry, err := scanAuditEntry(rows)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan audit row")
			return nil, fmt.Errorf("failed to scan audit entry: %w", err)
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating audit entries: %w", err)
	}

	return entries, nil
}

func (r *auditRepository) Reclassify(ctx context.Context, id uuid.UUID, severity model.AuditSeverity) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	if _, err = tx.Exec(ctx, `SELECT set_config('app.audit_correction', 'on', true)`); err != nil {
		return fmt.Errorf("failed to enable audit correction: %w", err)
	}

	query, args, err := psql.Update(auditTable).
		Set("severity", severity).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build audit update: %w", err)
	}

	tag, err := tx.Exec(ctx, query, args...)
	if err != nil {
		r.logger.Error().Err(err).Str("audit_id", id.String()).Msg("failed to reclassify audit entry")
		return fmt.Errorf("failed to reclassify audit entry: %w", err)
	}
	if tag.RowsAffected() == 0 {
		err = model.ErrAuditNotFound
		return err
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit audit correction: %w", err)
	}

	r.logger.Info().
		Str("audit_id", id.String()).
		Str("severity", string(severity)).
		Msg("audit entry reclassified")

	return nil
}

func scanAuditEntry(row pgx.Row) (model.AuditLogEntry, error) {
	var (
		e           model.AuditLogEntry
		orderData   []byte
		errorsJSON  []byte
		contextJSON []byte
	)

	err := row.Scan(
		&e.ID, &e.Timestamp, &e.EventType, &e.UserID, &e.SessionID, &orderData,
		&errorsJSON, &e.Severity, &e.IPAddress, &e.UserAgent, &contextJSON,
		&e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return e, err
	}

	e.OrderData = json.RawMessage(orderData)
	if len(errorsJSON) > 0 {
		if err := json.Unmarshal(errorsJSON, &e.ValidationErrors); err != nil {
			return e, fmt.Errorf("failed to decode validation errors: %w", err)
		}
	}
	if len(contextJSON) > 0 {
		if err := json.Unmarshal(contextJSON, &e.AdditionalContext); err != nil {
			return e, fmt.Errorf("failed to decode additional context: %w", err)
		}
	}

	return e, nil
}
