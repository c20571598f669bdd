package repository

import (
	"context"
	"errors"
	"fmt"

	"storefront/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

type addressRepository struct {
	db     DB
	logger zerolog.Logger
}

// NewAddressRepository creates a new PostgreSQL-backed address repository.
func NewAddressRepository(db DB, logger zerolog.Logger) AddressRepository {
	return &addressRepository{
		db:     db,
		logger: logger.With().Str("repository", "address").Logger(),
	}
}

func (r *addressRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Address, error) {
	query := `
		SELECT id, user_id, street, city, province, postal_code, created_at
		FROM addresses
		WHERE id = $1
	`

	var a model.Address
	err := r.db.QueryRow(ctx, query, id).Scan(
		&a.ID, &a.UserID, &a.Street, &a.City, &a.Province, &a.PostalCode, &a.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Str("address_id", id.String()).Msg("address not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("address_id", id.String()).Msg("failed to query address")
		return nil, fmt.Errorf("failed to query address: %w", err)
	}

	return &a, nil
}

func (r *addressRepository) BelongsToUser(ctx context.Context, addressID, userID uuid.UUID) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM addresses WHERE id = $1 AND user_id = $2)`

	var owned bool
	if err := r.db.QueryRow(ctx, query, addressID, userID).Scan(&owned); err != nil {
		r.logger.Error().Err(err).
			Str("address_id", addressID.String()).
			Msg("failed to check address ownership")
		return false, fmt.Errorf("failed to check address ownership: %w", err)
	}

	return owned, nil
}
