package validation

import (
	"context"
	"time"

	"storefront/internal/metrics"
	"storefront/internal/model"

	"golang.org/x/sync/errgroup"
)

// ConstraintChecker is the server-side half of order validation.
type ConstraintChecker interface {
	ValidateDatabaseConstraints(ctx context.Context, draft model.OrderDraft) model.ValidationResult
}

// Validator runs the business rule and constraint validators concurrently
// and merges their findings.
type Validator struct {
	rules       Rules
	constraints ConstraintChecker
}

// NewValidator creates a composite validator.
func NewValidator(rules Rules, constraints ConstraintChecker) *Validator {
	return &Validator{rules: rules, constraints: constraints}
}

// Validate returns the union of both validators' findings. Checks that
// both validators perform are reported twice; nothing is deduplicated.
func (v *Validator) Validate(ctx context.Context, draft model.OrderDraft) model.ValidationResult {
	start := time.Now()

	var business, constraints model.ValidationResult
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		business = ValidateBusinessRules(draft, v.rules)
		return nil
	})
	g.Go(func() error {
		constraints = v.constraints.ValidateDatabaseConstraints(gctx, draft)
		return nil
	})
	_ = g.Wait()

	result := model.MergeResults(business, constraints)
	observe(result, time.Since(start))

	return result
}

func observe(result model.ValidationResult, elapsed time.Duration) {
	outcome := "valid"
	switch {
	case !result.IsValid:
		outcome = "invalid"
	case len(result.Warnings) > 0:
		outcome = "valid_with_warnings"
	}

	metrics.ValidationRunsTotal.WithLabelValues(outcome).Inc()
	metrics.ValidationDuration.Observe(elapsed.Seconds())
	for _, e := range result.Errors {
		metrics.ValidationIssuesTotal.WithLabelValues(e.Code, string(e.Severity)).Inc()
	}
	for _, w := range result.Warnings {
		metrics.ValidationIssuesTotal.WithLabelValues(w.Code, string(w.Severity)).Inc()
	}
}
