package validation

import (
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/eemreuysal/VivaCrm-v2-sub000/internal/correction"
	"github.com/eemreuysal/VivaCrm-v2-sub000/internal/models"
)

func diagPtr(d models.Diagnostic) *models.Diagnostic { return &d }

var (
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	phoneRegex = regexp.MustCompile(`^\+?[0-9][0-9 ()\-]{6,19}$`)
	urlRegex   = regexp.MustCompile(`^https?://[^\s]+$`)
)

// RequiredFieldValidator fails a row when any listed canonical field is
// absent or blank.
type RequiredFieldValidator struct {
	Fields []string
}

// NewRequiredField creates a required-field validator
func NewRequiredField(fields []string) *RequiredFieldValidator {
	return &RequiredFieldValidator{Fields: fields}
}

func (v *RequiredFieldValidator) Validate(values map[string]string, rowNum int) Result {
	res := Result{Valid: true}
	for _, field := range v.Fields {
		if IsBlank(values[field]) {
			res.Errors = append(res.Errors, errDiag(rowNum, field, CodeMissingRequired,
				fmt.Sprintf("required field %q is missing or blank", field), values[field]))
		}
	}
	res.Valid = len(res.Errors) == 0
	return res
}

// UniquenessValidator fails rows whose designated unique field repeats
// within the same import batch. The seen-set lives for the pipeline's
// lifetime and is mutex-guarded so chunks may validate in parallel.
type UniquenessValidator struct {
	Field string

	mu   sync.Mutex
	seen map[string]int // normalized value → first row
}

// NewUniqueness creates a uniqueness validator; the seen-set resets only at
// construction.
func NewUniqueness(field string) *UniquenessValidator {
	return &UniquenessValidator{Field: field, seen: make(map[string]int)}
}

func (v *UniquenessValidator) Validate(values map[string]string, rowNum int) Result {
	raw := values[v.Field]
	if IsBlank(raw) {
		return Result{Valid: true}
	}
	key := strings.ToLower(strings.TrimSpace(raw))

	v.mu.Lock()
	first, dup := v.seen[key]
	if !dup {
		v.seen[key] = rowNum
	}
	v.mu.Unlock()

	if dup {
		return Result{Errors: []models.Diagnostic{errDiag(rowNum, v.Field, CodeDuplicateInFile,
			fmt.Sprintf("duplicate value, first seen at row %d", first), raw)}}
	}
	return Result{Valid: true}
}

// FormatKind selects the typed coercion a field rule applies
type FormatKind int

const (
	FormatDecimal FormatKind = iota
	FormatInteger
	FormatDate
	FormatBoolean
	FormatEmail
	FormatPhone
	FormatURL
	FormatLength
)

// FieldRule binds a canonical field to a format kind with optional bounds.
// Bound violations are exclusive failures: value < Min or value > Max fails;
// values are never silently clamped into range.
type FieldRule struct {
	Field  string
	Kind   FormatKind
	Code   string
	Min    *float64
	Max    *float64
	MaxLen int
}

// FormatValidator coerces raw values to typed representations via the
// corrector, failing with a format-specific code when repair is impossible
// or bounds are violated. Blank values are left to the required-field
// validator.
type FormatValidator struct {
	Rules     []FieldRule
	Corrector *correction.Corrector
}

// NewFormat creates a format-and-range validator backed by the corrector
func NewFormat(rules []FieldRule, corr *correction.Corrector) *FormatValidator {
	return &FormatValidator{Rules: rules, Corrector: corr}
}

func (v *FormatValidator) Validate(values map[string]string, rowNum int) Result {
	res := Result{Valid: true}
	for _, rule := range v.Rules {
		raw, ok := values[rule.Field]
		if !ok || IsBlank(raw) {
			continue
		}
		if d := v.check(rule, raw, rowNum); d != nil {
			res.Errors = append(res.Errors, *d)
		}
	}
	res.Valid = len(res.Errors) == 0
	return res
}

func (v *FormatValidator) check(rule FieldRule, raw string, rowNum int) *models.Diagnostic {
	code := rule.Code
	switch rule.Kind {
	case FormatDecimal:
		d, ok := v.Corrector.Price(raw)
		if !ok {
			return diagPtr(errDiag(rowNum, rule.Field, code, "value is not a valid decimal", raw))
		}
		f, _ := d.Float64()
		if msg := boundsError(f, rule); msg != "" {
			return diagPtr(errDiag(rowNum, rule.Field, code, msg, raw))
		}
	case FormatInteger:
		n, ok := v.Corrector.Stock(raw)
		if !ok {
			return diagPtr(errDiag(rowNum, rule.Field, code, "value is not a valid integer", raw))
		}
		if msg := boundsError(float64(n), rule); msg != "" {
			return diagPtr(errDiag(rowNum, rule.Field, code, msg, raw))
		}
	case FormatDate:
		if _, ok := v.Corrector.Date(raw); !ok {
			return diagPtr(errDiag(rowNum, rule.Field, code, "value is not a recognized date", raw))
		}
	case FormatBoolean:
		switch strings.ToLower(strings.TrimSpace(raw)) {
		case "true", "false", "1", "0", "yes", "no", "evet", "hayır":
		default:
			return diagPtr(errDiag(rowNum, rule.Field, code, "value is not a boolean", raw))
		}
	case FormatEmail:
		if !emailRegex.MatchString(strings.TrimSpace(raw)) {
			return diagPtr(errDiag(rowNum, rule.Field, code, "invalid email format", raw))
		}
	case FormatPhone:
		if !phoneRegex.MatchString(strings.TrimSpace(raw)) {
			return diagPtr(errDiag(rowNum, rule.Field, code, "invalid phone format", raw))
		}
	case FormatURL:
		if !urlRegex.MatchString(strings.TrimSpace(raw)) {
			return diagPtr(errDiag(rowNum, rule.Field, code, "invalid URL format", raw))
		}
	case FormatLength:
		if rule.MaxLen > 0 && len([]rune(raw)) > rule.MaxLen {
			return diagPtr(errDiag(rowNum, rule.Field, code,
				fmt.Sprintf("value exceeds maximum length of %d", rule.MaxLen), raw))
		}
	}
	return nil
}

func boundsError(val float64, rule FieldRule) string {
	if rule.Min != nil && val < *rule.Min {
		return fmt.Sprintf("value %v is below minimum %v", val, *rule.Min)
	}
	if rule.Max != nil && val > *rule.Max {
		return fmt.Sprintf("value %v is above maximum %v", val, *rule.Max)
	}
	return ""
}

// ReferenceValidator checks that a referenced named entity resolves. The
// resolve function is a session-scoped collaborator: with auto-creation
// enabled it performs fuzzy matching and deduplicated creation, so a
// non-nil error here means the reference is genuinely unresolvable.
type ReferenceValidator struct {
	Field   string
	Resolve func(name string) error
}

// NewReference creates a reference-existence validator
func NewReference(field string, resolve func(name string) error) *ReferenceValidator {
	return &ReferenceValidator{Field: field, Resolve: resolve}
}

func (v *ReferenceValidator) Validate(values map[string]string, rowNum int) Result {
	raw := values[v.Field]
	if IsBlank(raw) {
		return Result{Valid: true}
	}
	if err := v.Resolve(strings.TrimSpace(raw)); err != nil {
		return Result{Errors: []models.Diagnostic{errDiag(rowNum, v.Field, CodeReferenceError,
			err.Error(), raw)}}
	}
	return Result{Valid: true}
}
