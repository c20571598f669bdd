package database_test

import (
	"context"
	"io/fs"
	"testing"
	"time"

	"storefront/internal/config"
	"storefront/internal/database"
	"storefront/internal/database/dbtest"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrations_Embedded(t *testing.T) {
	entries, err := fs.ReadDir(database.Migrations(), ".")
	require.NoError(t, err)

	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.Equal(t, []string{
		"00001_catalogue_and_orders.sql",
		"00002_discount_codes.sql",
		"00003_order_audit_log.sql",
	}, names)
}

func TestPoolConfig(t *testing.T) {
	cfg := config.DatabaseConfig{
		Host:            "db.internal",
		Port:            5433,
		User:            "storefront",
		Password:        "secret",
		Database:        "storefront",
		MaxConnections:  4,
		MinConnections:  8,
		MaxConnLifetime: 120,
	}

	pc, err := database.PoolConfig(cfg)
	require.NoError(t, err)

	assert.Equal(t, int32(4), pc.MaxConns)
	assert.Equal(t, int32(4), pc.MinConns, "min connections never exceed max")
	assert.Equal(t, 2*time.Minute, pc.MaxConnLifetime)
	assert.Equal(t, "db.internal", pc.ConnConfig.Host)
	assert.Equal(t, uint16(5433), pc.ConnConfig.Port)
	assert.Equal(t, "storefront", pc.ConnConfig.RuntimeParams["application_name"])
	assert.Equal(t, "UTC", pc.ConnConfig.RuntimeParams["timezone"])
}

func TestNewPool_InvalidConfig(t *testing.T) {
	cfg := config.DatabaseConfig{
		Host:           "invalid-host",
		Port:           5432,
		User:           "user",
		Password:       "pass",
		Database:       "testdb",
		MaxConnections: 2,
		MinConnections: 1,
	}

	pool, err := database.NewPool(context.Background(), cfg, zerolog.Nop())
	require.Error(t, err)
	assert.Nil(t, pool)
}

func TestMigrate_Idempotent(t *testing.T) {
	dbtest.Setup(t)

	err := database.Migrate(context.Background(), dbtest.DSN(), zerolog.Nop())
	require.NoError(t, err)

	statuses, err := database.Status(context.Background(), dbtest.DSN())
	require.NoError(t, err)
	require.Len(t, statuses, 3)
	for _, s := range statuses {
		assert.True(t, s.Applied, s.Path)
	}
}

func TestAuditLog_AppendOnly(t *testing.T) {
	pool := dbtest.Setup(t)
	ctx := context.Background()
	dbtest.Truncate(t, pool, "order_audit_log")

	var id string
	err := pool.QueryRow(ctx, `
		INSERT INTO order_audit_log (event_type, session_id, order_data, severity)
		VALUES ('validation_failure', 'session-1', '{}'::jsonb, 'low')
		RETURNING id
	`).Scan(&id)
	require.NoError(t, err)

	t.Run("Update refused without correction flag", func(t *testing.T) {
		_, err := pool.Exec(ctx, `UPDATE order_audit_log SET severity = 'high' WHERE id = $1`, id)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "append-only")
	})

	t.Run("Delete always refused", func(t *testing.T) {
		_, err := pool.Exec(ctx, `DELETE FROM order_audit_log WHERE id = $1`, id)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "append-only")
	})

	t.Run("Correction allowed with flag", func(t *testing.T) {
		tx, err := pool.Begin(ctx)
		require.NoError(t, err)
		defer tx.Rollback(ctx)

		_, err = tx.Exec(ctx, `SELECT set_config('app.audit_correction', 'on', true)`)
		require.NoError(t, err)
		_, err = tx.Exec(ctx, `UPDATE order_audit_log SET severity = 'high' WHERE id = $1`, id)
		require.NoError(t, err)
		require.NoError(t, tx.Commit(ctx))

		var severity string
		var touched bool
		err = pool.QueryRow(ctx,
			`SELECT severity, updated_at > created_at FROM order_audit_log WHERE id = $1`, id,
		).Scan(&severity, &touched)
		require.NoError(t, err)
		assert.Equal(t, "high", severity)
		assert.True(t, touched)
	})
}

func TestValidateDiscountCode(t *testing.T) {
	pool := dbtest.Setup(t)
	ctx := context.Background()
	dbtest.Truncate(t, pool, "discount_redemptions", "discount_codes")

	_, err := pool.Exec(ctx, `
		INSERT INTO discount_codes (code, discount_type, discount_value, min_order_amount, max_uses, used_count, expires_at)
		VALUES
			('SAVE10', 'percentage', 10, 0, NULL, 0, NULL),
			('FLAT50', 'fixed', 50, 200, NULL, 0, NULL),
			('GONE', 'fixed', 20, 0, NULL, 0, NOW() - INTERVAL '1 day'),
			('USEDUP', 'fixed', 20, 0, 1, 1, NULL)
	`)
	require.NoError(t, err)

	tests := []struct {
		name       string
		code       string
		subtotal   float64
		wantValid  bool
		wantAmount float64
		wantError  string
	}{
		{name: "Percentage discount", code: "save10", subtotal: 250, wantValid: true, wantAmount: 25},
		{name: "Fixed discount", code: "FLAT50", subtotal: 300, wantValid: true, wantAmount: 50},
		{name: "Below minimum order", code: "FLAT50", subtotal: 100, wantError: "Minimum order"},
		{name: "Expired code", code: "GONE", subtotal: 100, wantError: "expired"},
		{name: "Usage exhausted", code: "USEDUP", subtotal: 100, wantError: "usage limit"},
		{name: "Unknown code", code: "NOPE", subtotal: 100, wantError: "not valid"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var valid bool
			var errMsg *string
			var amount *float64
			err := pool.QueryRow(ctx,
				`SELECT valid, error, discount_amount::float8 FROM validate_discount_code($1, NULL, $2)`,
				tt.code, tt.subtotal,
			).Scan(&valid, &errMsg, &amount)
			require.NoError(t, err)

			assert.Equal(t, tt.wantValid, valid)
			if tt.wantValid {
				require.NotNil(t, amount)
				assert.InDelta(t, tt.wantAmount, *amount, 0.001)
				return
			}
			require.NotNil(t, errMsg)
			assert.Contains(t, *errMsg, tt.wantError)
		})
	}
}
