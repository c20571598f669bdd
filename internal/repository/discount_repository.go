package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"storefront/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// ErrDiscountExhausted is returned by Redeem when the code reached its usage
// limit between validation and redemption.
var ErrDiscountExhausted = errors.New("discount code usage limit reached")

type discountRepository struct {
	db     DB
	logger zerolog.Logger
}

// NewDiscountRepository creates a new PostgreSQL-backed discount repository.
func NewDiscountRepository(db DB, logger zerolog.Logger) DiscountRepository {
	return &discountRepository{
		db:     db,
		logger: logger.With().Str("repository", "discount").Logger(),
	}
}

func (r *discountRepository) Validate(ctx context.Context, code string, userID *uuid.UUID, subtotal float64) (*model.DiscountValidation, error) {
	query := `SELECT valid, error, discount_amount::float8 FROM validate_discount_code($1, $2, $3)`

	var v model.DiscountValidation
	err := r.db.QueryRow(ctx, query, code, userID, subtotal).Scan(&v.Valid, &v.Error, &v.DiscountAmount)
	if err != nil {
		r.logger.Error().Err(err).Str("code", code).Msg("failed to validate discount code")
		return nil, fmt.Errorf("failed to validate discount code: %w", err)
	}

	return &v, nil
}

func (r *discountRepository) Redeem(ctx context.Context, tx pgx.Tx, code string, orderID uuid.UUID, userID *uuid.UUID) error {
	code = strings.ToUpper(strings.TrimSpace(code))

	tag, err := tx.Exec(ctx, `
		UPDATE discount_codes
		SET used_count = used_count + 1
		WHERE code = $1 AND (max_uses IS NULL OR used_count < max_uses)
	`, code)
	if err != nil {
		r.logger.Error().Err(err).Str("code", code).Msg("failed to increment discount usage")
		return fmt.Errorf("failed to redeem discount code: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("failed to redeem discount code %s: %w", code, ErrDiscountExhausted)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO discount_redemptions (code, order_id, user_id)
		VALUES ($1, $2, $3)
	`, code, orderID, userID)
	if err != nil {
		r.logger.Error().Err(err).
			Str("code", code).
			Str("order_id", orderID.String()).
			Msg("failed to record discount redemption")
		return fmt.Errorf("failed to record discount redemption: %w", err)
	}

	return nil
}
