package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"storefront/internal/archive"
	"storefront/internal/model"
	"storefront/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ErrInvalidSeverity is returned when a reclassification names an unknown tier.
var ErrInvalidSeverity = model.NewDomainError("INVALID_SEVERITY", "Severity must be one of low, medium, high or critical")

// Archiver exports audit entries of a time window.
type Archiver interface {
	Export(ctx context.Context, since, until time.Time) (archive.Report, error)
}

// auditService implements AuditService.
type auditService struct {
	auditRepo repository.AuditRepository
	archiver  Archiver
	logger    zerolog.Logger
}

// NewAuditService creates a new audit service.
func NewAuditService(auditRepo repository.AuditRepository, archiver Archiver, logger zerolog.Logger) AuditService {
	return &auditService{
		auditRepo: auditRepo,
		archiver:  archiver,
		logger:    logger.With().Str("service", "audit").Logger(),
	}
}

// List returns audit entries matching the filter, newest first.
func (s *auditService) List(ctx context.Context, filter model.AuditFilter) ([]model.AuditLogEntry, error) {
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	entries, err := s.auditRepo.List(ctx, filter)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list audit entries")
		return nil, fmt.Errorf("failed to list audit entries: %w", err)
	}
	return entries, nil
}

// GetByID retrieves a single audit entry.
func (s *auditService) GetByID(ctx context.Context, id uuid.UUID) (*model.AuditLogEntry, error) {
	entry, err := s.auditRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("entry_id", id.String()).Msg("failed to get audit entry")
		return nil, fmt.Errorf("failed to get audit entry: %w", err)
	}
	if entry == nil {
		return nil, model.ErrAuditNotFound
	}
	return entry, nil
}

// Reclassify corrects the severity of an entry and returns the updated entry.
func (s *auditService) Reclassify(ctx context.Context, id uuid.UUID, severity model.AuditSeverity) (*model.AuditLogEntry, error) {
	if !ValidSeverity(severity) {
		return nil, ErrInvalidSeverity
	}

	if err := s.auditRepo.Reclassify(ctx, id, severity); err != nil {
		if errors.Is(err, model.ErrAuditNotFound) {
			return nil, model.ErrAuditNotFound
		}
		s.logger.Error().Err(err).Str("entry_id", id.String()).Msg("failed to reclassify audit entry")
		return nil, fmt.Errorf("failed to reclassify audit entry: %w", err)
	}

	s.logger.Info().
		Str("entry_id", id.String()).
		Str("severity", string(severity)).
		Msg("audit entry reclassified")

	return s.GetByID(ctx, id)
}

// Archive exports the entries of [since, until) to the archive sink.
func (s *auditService) Archive(ctx context.Context, since, until time.Time) (archive.Report, error) {
	report, err := s.archiver.Export(ctx, since, until)
	if err != nil {
		s.logger.Error().Err(err).
			Time("since", since).
			Time("until", until).
			Msg("failed to archive audit entries")
		return report, fmt.Errorf("failed to archive audit entries: %w", err)
	}
	return report, nil
}

// ValidSeverity reports whether s names one of the audit severity tiers.
func ValidSeverity(s model.AuditSeverity) bool {
	switch s {
	case model.AuditSeverityLow, model.AuditSeverityMedium, model.AuditSeverityHigh, model.AuditSeverityCritical:
		return true
	}
	return false
}
