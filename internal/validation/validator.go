package validation

import (
	"strings"

	"github.com/eemreuysal/VivaCrm-v2-sub000/internal/models"
)

// Diagnostic codes produced by the pipeline
const (
	CodeMissingRequired = "missing_required"
	CodeDuplicateInFile = "duplicate_in_file"
	CodeInvalidPrice    = "invalid_price"
	CodeInvalidStock    = "invalid_stock"
	CodeInvalidDate     = "invalid_date"
	CodeInvalidBoolean  = "invalid_boolean"
	CodeInvalidEmail    = "invalid_email"
	CodeInvalidPhone    = "invalid_phone"
	CodeInvalidURL      = "invalid_url"
	CodeTooLong         = "too_long"
	CodeReferenceError  = "reference_error"
)

// Result is the outcome of validating one row
type Result struct {
	Valid    bool
	Errors   []models.Diagnostic
	Warnings []models.Diagnostic
}

// Validator checks one canonical-keyed row. Implementations are pure with
// respect to row data; the uniqueness seen-set and the reference cache are
// the only documented stateful collaborators.
type Validator interface {
	Validate(values map[string]string, rowNum int) Result
}

// Pipeline composes an ordered list of validators. Every validator runs
// against every row; errors from one never short-circuit later validators,
// so a row surfaces all of its problems at once.
type Pipeline struct {
	validators []Validator
}

// NewPipeline builds a pipeline from the given validators, in order
func NewPipeline(validators ...Validator) *Pipeline {
	return &Pipeline{validators: validators}
}

// Validate runs all validators and merges their results
func (p *Pipeline) Validate(values map[string]string, rowNum int) Result {
	merged := Result{Valid: true}
	for _, v := range p.validators {
		r := v.Validate(values, rowNum)
		merged.Errors = append(merged.Errors, r.Errors...)
		merged.Warnings = append(merged.Warnings, r.Warnings...)
	}
	merged.Valid = len(merged.Errors) == 0
	return merged
}

// IsBlank reports whether a raw value counts as absent: empty, whitespace,
// or a null sentinel a spreadsheet tool left behind.
func IsBlank(s string) bool {
	t := strings.TrimSpace(s)
	if t == "" {
		return true
	}
	switch strings.ToLower(t) {
	case "nan", "null", "none":
		return true
	}
	return false
}

func errDiag(row int, field, code, message, value string) models.Diagnostic {
	return models.Diagnostic{
		Row: row, Field: field, Code: code, Message: message, Value: value,
		Level: models.DiagnosticError,
	}
}
