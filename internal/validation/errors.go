package validation

import (
	"strings"
)

// FieldError describes why one field failed validation.
//
// Example:
//
//	{"field": "min", "in": "path", "reason": "is required"}
type FieldError struct {
	Field  string   `json:"field" example:"min"`
	In     Location `json:"in" example:"path"`
	Reason string   `json:"reason" example:"is required"`
}

// Errors is the aggregated result of a failed validation. It lists every
// failed field, in schema declaration order.
type Errors []FieldError

func (e Errors) Error() string {
	if len(e) == 0 {
		return "validation failed"
	}
	parts := make([]string, 0, len(e))
	for _, fe := range e {
		parts = append(parts, fe.Field+" "+fe.Reason)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Detail exposes the field list for the response envelope.
func (e Errors) Detail() any {
	return []FieldError(e)
}

// Has reports whether field failed.
func (e Errors) Has(field string) bool {
	for _, fe := range e {
		if fe.Field == field {
			return true
		}
	}
	return false
}
