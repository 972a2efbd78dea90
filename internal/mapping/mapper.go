package mapping

import (
	"github.com/eemreuysal/VivaCrm-v2-sub000/internal/excel"
)

// MappedRow is one source row re-keyed by canonical field names
type MappedRow struct {
	Row    int // 1-based source row number
	Values map[string]string
}

// Mapper applies a FieldMapping to row chunks. Unmapped source columns are
// dropped; the first chunk additionally yields a template-drift report of
// expected headers absent from the source.
type Mapper struct {
	mapping *FieldMapping

	// resolved header→field cache, built from the first chunk
	resolved map[string]string
	checked  bool
	missing  []string
}

// NewMapper creates a mapper bound to one read-only mapping
func NewMapper(m *FieldMapping) *Mapper {
	return &Mapper{mapping: m}
}

// MapChunk translates one chunk. The returned missing slice is non-nil only
// on the first call, naming expected headers the source does not carry.
func (p *Mapper) MapChunk(chunk excel.Chunk) ([]MappedRow, []string) {
	rows := make([]MappedRow, 0, len(chunk.Rows))
	var missing []string

	for i, raw := range chunk.Rows {
		if p.resolved == nil {
			p.buildResolution(raw)
		}
		if !p.checked {
			p.checked = true
			missing = p.missing
		}

		values := make(map[string]string, len(p.resolved))
		for header, value := range raw {
			if field, ok := p.resolved[header]; ok {
				values[field] = value
			}
		}
		rows = append(rows, MappedRow{Row: chunk.StartRow + i, Values: values})
	}

	return rows, missing
}

// buildResolution resolves each source header once against the mapping and
// records template drift for the one-time warning.
func (p *Mapper) buildResolution(raw excel.Row) {
	p.resolved = make(map[string]string, len(raw))
	headers := make([]string, 0, len(raw))
	for header := range raw {
		headers = append(headers, header)
		if field, ok := p.mapping.Field(header); ok {
			p.resolved[header] = field
		}
	}
	p.missing = p.mapping.MissingHeaders(headers)
}
