package repository

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"storefront/internal/model"

	"github.com/google/uuid"
	pgxmock "github.com/pashagolub/pgxmock/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuditEntry(session string, eventType model.AuditEventType, severity model.AuditSeverity) *model.AuditLogEntry {
	return &model.AuditLogEntry{
		ID:        uuid.New(),
		Timestamp: time.Now().UTC(),
		EventType: eventType,
		SessionID: session,
		OrderData: json.RawMessage(`{"kind":"guest","total":150}`),
		ValidationErrors: []model.ValidationError{
			{Field: "cart_items", Message: "Cart is empty", Code: "CART_EMPTY", Severity: model.SeverityError},
		},
		Severity:          severity,
		IPAddress:         strPtr("196.25.1.1"),
		AdditionalContext: map[string]any{"attempt": float64(2)},
	}
}

func TestAuditRepository_List_BuildsFilters(t *testing.T) {
	eventType := model.AuditEventSuspiciousActivity
	severity := model.AuditSeverityHigh
	since := time.Now().Add(-time.Hour)

	mock := newMockDB(t)
	mock.ExpectQuery(`SELECT .* FROM order_audit_log WHERE event_type = \$1 AND severity = \$2 AND timestamp >= \$3 ORDER BY timestamp DESC, id LIMIT 20 OFFSET 40`).
		WithArgs(eventType, severity, since).
		WillReturnRows(pgxmock.NewRows(auditColumns))
	repo := NewAuditRepository(mock, zerolog.Nop())

	entries, err := repo.List(context.Background(), model.AuditFilter{
		EventType: &eventType,
		Severity:  &severity,
		Since:     &since,
		Limit:     20,
		Offset:    40,
	})

	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuditRepository_List_ResumesAfterCursor(t *testing.T) {
	until := time.Now().UTC()
	cursor := model.AuditCursor{Timestamp: until.Add(-time.Minute), ID: uuid.New()}

	mock := newMockDB(t)
	mock.ExpectQuery(`SELECT .* FROM order_audit_log WHERE timestamp < \$1 AND \(timestamp < \$2 OR \(timestamp = \$3 AND id > \$4\)\) ORDER BY timestamp DESC, id LIMIT 100$`).
		WithArgs(until, cursor.Timestamp, cursor.Timestamp, cursor.ID).
		WillReturnRows(pgxmock.NewRows(auditColumns))
	repo := NewAuditRepository(mock, zerolog.Nop())

	_, err := repo.List(context.Background(), model.AuditFilter{Until: &until, After: &cursor, Limit: 100})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuditRepository_List_ClampsLimit(t *testing.T) {
	tests := []struct {
		name  string
		limit int
		want  string
	}{
		{name: "Default limit", limit: 0, want: `LIMIT 50`},
		{name: "Maximum limit", limit: 10000, want: `LIMIT 500`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := newMockDB(t)
			mock.ExpectQuery(tt.want).WillReturnRows(pgxmock.NewRows(auditColumns))
			repo := NewAuditRepository(mock, zerolog.Nop())

			_, err := repo.List(context.Background(), model.AuditFilter{Limit: tt.limit})
			require.NoError(t, err)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestAuditRepository_Postgres(t *testing.T) {
	pool := setupTestDB(t)
	repo := NewAuditRepository(pool, zerolog.Nop())
	ctx := context.Background()

	first := newAuditEntry("session-a", model.AuditEventValidationFailure, model.AuditSeverityCritical)
	second := newAuditEntry("session-b", model.AuditEventValidationWarning, model.AuditSeverityLow)
	second.Timestamp = first.Timestamp.Add(time.Second)
	second.ValidationErrors = nil
	second.AdditionalContext = nil

	require.NoError(t, repo.Append(ctx, first))
	require.NoError(t, repo.Append(ctx, second))
	assert.False(t, first.CreatedAt.IsZero())

	t.Run("GetByID round trip", func(t *testing.T) {
		got, err := repo.GetByID(ctx, first.ID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, model.AuditEventValidationFailure, got.EventType)
		assert.Equal(t, model.AuditSeverityCritical, got.Severity)
		assert.Equal(t, "196.25.1.1", *got.IPAddress)
		assert.Nil(t, got.UserAgent)
		require.Len(t, got.ValidationErrors, 1)
		assert.Equal(t, "CART_EMPTY", got.ValidationErrors[0].Code)
		assert.Equal(t, float64(2), got.AdditionalContext["attempt"])
		assert.JSONEq(t, `{"kind":"guest","total":150}`, string(got.OrderData))
	})

	t.Run("GetByID unknown entry", func(t *testing.T) {
		got, err := repo.GetByID(ctx, uuid.New())
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("List newest first", func(t *testing.T) {
		entries, err := repo.List(ctx, model.AuditFilter{})
		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, second.ID, entries[0].ID)
		assert.Empty(t, entries[0].ValidationErrors)
	})

	t.Run("List resumes after cursor", func(t *testing.T) {
		page, err := repo.List(ctx, model.AuditFilter{Limit: 1})
		require.NoError(t, err)
		require.Len(t, page, 1)

		entries, err := repo.List(ctx, model.AuditFilter{
			After: &model.AuditCursor{Timestamp: page[0].Timestamp, ID: page[0].ID},
		})
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, first.ID, entries[0].ID)
	})

	t.Run("List by session", func(t *testing.T) {
		session := "session-a"
		entries, err := repo.List(ctx, model.AuditFilter{SessionID: &session})
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, first.ID, entries[0].ID)
	})

	t.Run("Reclassify under correction flag", func(t *testing.T) {
		require.NoError(t, repo.Reclassify(ctx, second.ID, model.AuditSeverityMedium))

		got, err := repo.GetByID(ctx, second.ID)
		require.NoError(t, err)
		assert.Equal(t, model.AuditSeverityMedium, got.Severity)
	})

	t.Run("Reclassify unknown entry", func(t *testing.T) {
		err := repo.Reclassify(ctx, uuid.New(), model.AuditSeverityLow)
		assert.ErrorIs(t, err, model.ErrAuditNotFound)
	})

	t.Run("Direct update is refused", func(t *testing.T) {
		_, err := pool.Exec(ctx, `UPDATE order_audit_log SET severity = 'low' WHERE id = $1`, first.ID)
		require.Error(t, err)
	})
}
