package model

import "strings"

// Severity is the weight of a single validation finding.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// ValidationError describes a single rule violation found while validating
// an order draft. Values are never modified after they are produced.
type ValidationError struct {
	Field    string   `json:"field"`
	Message  string   `json:"message"`
	Code     string   `json:"code"`
	Severity Severity `json:"severity"`
}

// ValidationResult aggregates the findings of one validation run.
type ValidationResult struct {
	IsValid  bool              `json:"isValid"`
	Errors   []ValidationError `json:"errors"`
	Warnings []ValidationError `json:"warnings"`
}

// NewValidationResult returns an empty, valid result.
func NewValidationResult() ValidationResult {
	return ValidationResult{
		IsValid:  true,
		Errors:   []ValidationError{},
		Warnings: []ValidationError{},
	}
}

// AddError records an error and marks the result invalid.
func (r *ValidationResult) AddError(field, message, code string) {
	r.Errors = append(r.Errors, ValidationError{
		Field:    field,
		Message:  message,
		Code:     code,
		Severity: SeverityError,
	})
	r.IsValid = false
}

// AddWarning records a warning. Warnings never invalidate a result.
func (r *ValidationResult) AddWarning(field, message, code string) {
	r.Warnings = append(r.Warnings, ValidationError{
		Field:    field,
		Message:  message,
		Code:     code,
		Severity: SeverityWarning,
	})
}

// HasCode reports whether any error or warning carries the given code.
func (r ValidationResult) HasCode(code string) bool {
	for _, e := range r.Errors {
		if e.Code == code {
			return true
		}
	}
	for _, w := range r.Warnings {
		if w.Code == code {
			return true
		}
	}
	return false
}

// Summary joins the error messages into a single display string.
func (r ValidationResult) Summary() string {
	messages := make([]string, 0, len(r.Errors))
	for _, e := range r.Errors {
		messages = append(messages, e.Message)
	}
	return strings.Join(messages, ", ")
}

// MergeResults combines results into one. The merged result is valid only if
// every input is valid. Findings are concatenated as-is; overlapping checks
// therefore show up more than once.
func MergeResults(results ...ValidationResult) ValidationResult {
	merged := NewValidationResult()
	for _, r := range results {
		merged.Errors = append(merged.Errors, r.Errors...)
		merged.Warnings = append(merged.Warnings, r.Warnings...)
		if !r.IsValid || len(r.Errors) > 0 {
			merged.IsValid = false
		}
	}
	return merged
}
