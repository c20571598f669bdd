package audit

import "storefront/internal/model"

// Severity tiers keyed by validation code. Some codes are only produced by
// older storefront clients and are kept so their reports are still ranked.
var (
	criticalCodes = map[string]struct{}{
		"PRODUCT_NOT_FOUND":    {},
		"CALCULATION_MISMATCH": {},
		"CART_EMPTY":           {},
		"INVALID_USER_ID":      {},
	}
	highCodes = map[string]struct{}{
		"PRODUCT_OUT_OF_STOCK":    {},
		"INVALID_DISCOUNT_CODE":   {},
		"DISCOUNT_USAGE_EXCEEDED": {},
		"MAXIMUM_ORDER_EXCEEDED":  {},
	}
	mediumCodes = map[string]struct{}{
		"PRODUCT_PRICE_CHANGED": {},
		"DISCOUNT_EXPIRED":      {},
		"MINIMUM_ORDER_NOT_MET": {},
		"INVALID_QUANTITY":      {},
	}
)

// ClassifySeverity returns the highest tier matched by any of the findings.
// Critical is checked first, then high, then medium.
func ClassifySeverity(findings []model.ValidationError) model.AuditSeverity {
	switch {
	case anyIn(findings, criticalCodes):
		return model.AuditSeverityCritical
	case anyIn(findings, highCodes):
		return model.AuditSeverityHigh
	case anyIn(findings, mediumCodes):
		return model.AuditSeverityMedium
	default:
		return model.AuditSeverityLow
	}
}

// ClassifyEventType picks the event type for a validation report.
func ClassifyEventType(findings []model.ValidationError) model.AuditEventType {
	hasWarning := false
	for _, f := range findings {
		if f.Severity == model.SeverityError {
			return model.AuditEventValidationFailure
		}
		if f.Severity == model.SeverityWarning {
			hasWarning = true
		}
	}
	if hasWarning {
		return model.AuditEventValidationWarning
	}
	return model.AuditEventValidationFailure
}

func anyIn(findings []model.ValidationError, tier map[string]struct{}) bool {
	for _, f := range findings {
		if _, ok := tier[f.Code]; ok {
			return true
		}
	}
	return false
}
