package mapping

import (
	"strings"

	"github.com/eemreuysal/VivaCrm-v2-sub000/internal/correction"
)

// Column is one ordered pair of an external header and the canonical field
// it feeds.
type Column struct {
	Header string
	Field  string
}

// FieldMapping translates arbitrary, localized column headers into canonical
// field names for one import kind. Read-only at runtime and shared across
// rows; it requires no locking.
type FieldMapping struct {
	Kind           string
	Columns        []Column
	RequiredFields []string
	UniqueField    string
}

// normalizeHeader transliterates, lowercases and whitespace-normalizes a
// source header for lookup. The transliteration step runs first because
// ASCII lowercasing mangles dotted and dotless i: "ÜRÜN ADI" and "Ürün Adı"
// must resolve identically.
func normalizeHeader(h string) string {
	return strings.Join(strings.Fields(strings.ToLower(correction.Transliterate(h))), " ")
}

// Field resolves a source header to its canonical field name
func (m *FieldMapping) Field(header string) (string, bool) {
	norm := normalizeHeader(header)
	for _, c := range m.Columns {
		if normalizeHeader(c.Header) == norm {
			return c.Field, true
		}
	}
	return "", false
}

// CanonicalFields returns the distinct canonical fields in mapping order
func (m *FieldMapping) CanonicalFields() []string {
	seen := make(map[string]bool, len(m.Columns))
	var fields []string
	for _, c := range m.Columns {
		if !seen[c.Field] {
			seen[c.Field] = true
			fields = append(fields, c.Field)
		}
	}
	return fields
}

// TemplateHeaders returns the preferred external header for each canonical
// field, in mapping order. The first header listed for a field wins; used
// for template generation and export.
func (m *FieldMapping) TemplateHeaders() []string {
	seen := make(map[string]bool, len(m.Columns))
	var headers []string
	for _, c := range m.Columns {
		if !seen[c.Field] {
			seen[c.Field] = true
			headers = append(headers, c.Header)
		}
	}
	return headers
}

// MissingHeaders reports expected headers absent from the source, the
// template drift signal. A canonical field counts as covered when any of its
// header variants is present.
func (m *FieldMapping) MissingHeaders(source []string) []string {
	present := make(map[string]bool, len(source))
	for _, h := range source {
		present[normalizeHeader(h)] = true
	}

	covered := make(map[string]bool)
	for _, c := range m.Columns {
		if present[normalizeHeader(c.Header)] {
			covered[c.Field] = true
		}
	}

	var missing []string
	seen := make(map[string]bool)
	for _, c := range m.Columns {
		if seen[c.Field] || covered[c.Field] {
			seen[c.Field] = true
			continue
		}
		seen[c.Field] = true
		missing = append(missing, c.Header)
	}
	return missing
}

// IsRequired reports whether a canonical field is in the required set
func (m *FieldMapping) IsRequired(field string) bool {
	for _, f := range m.RequiredFields {
		if f == field {
			return true
		}
	}
	return false
}
