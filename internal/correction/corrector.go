package correction

import (
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/eemreuysal/VivaCrm-v2-sub000/internal/models"
	"github.com/shopspring/decimal"
)

// Spreadsheet serial dates count days from this epoch. The epoch is two days
// before 1900-01-01: one for 1-based counting, one for the nonexistent
// 1900-02-29 the original format insists on.
var serialEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

const (
	maxSerialDate = 60000
	recentKeep    = 20
)

// Corrector performs best-effort field repair. Correction functions never
// fail hard: on unrepairable input they return the zero value and false,
// leaving validation to reject the original value. Every successful repair
// that changed the value appends to the audit trail.
//
// Safe for concurrent use; the audit trail is mutex-guarded so chunk-level
// parallelism shares one engine per import run.
type Corrector struct {
	dateFormats []string

	mu      sync.Mutex
	counts  map[string]int
	records []models.CorrectionRecord // pending since the last Drain
	recent  []models.CorrectionRecord // capped tail for the summary
}

// New creates a corrector with the ordered date layout list to try
func New(dateFormats []string) *Corrector {
	return &Corrector{
		dateFormats: dateFormats,
		counts:      make(map[string]int),
	}
}

// Price repairs a raw price string into a fixed-point decimal. Handles
// currency symbols, comma-as-decimal vs comma-as-thousands and stray dots.
func (c *Corrector) Price(raw string) (decimal.Decimal, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return decimal.Decimal{}, false
	}

	// Keep only digits, separators and sign
	var b strings.Builder
	for _, r := range trimmed {
		if (r >= '0' && r <= '9') || r == ',' || r == '.' || r == '-' {
			b.WriteRune(r)
		}
	}
	s := b.String()
	if s == "" || s == "-" {
		return decimal.Decimal{}, false
	}

	lastComma := strings.LastIndex(s, ",")
	lastDot := strings.LastIndex(s, ".")

	switch {
	case lastComma > lastDot:
		// Comma is the decimal separator: 1.234,56 → 1234.56
		s = strings.ReplaceAll(s[:lastComma], ".", "") + "." + strings.ReplaceAll(s[lastComma+1:], ",", "")
		s = strings.ReplaceAll(s, ",", "")
	case lastComma >= 0:
		// Commas are thousands separators: 1,234.56 → 1234.56
		s = strings.ReplaceAll(s, ",", "")
	}

	// Collapse multiple dots, keeping the last as the decimal point
	if strings.Count(s, ".") > 1 {
		last := strings.LastIndex(s, ".")
		s = strings.ReplaceAll(s[:last], ".", "") + s[last:]
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, false
	}

	if s != trimmed {
		c.record("price", raw, d.String(), 0, false)
	}
	return d, true
}

// Date repairs a raw date using the configured layout list, additionally
// recognizing spreadsheet serial numbers in the plausible 1..60000 range.
func (c *Corrector) Date(raw string) (time.Time, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return time.Time{}, false
	}

	for _, layout := range c.dateFormats {
		if t, err := time.Parse(layout, trimmed); err == nil {
			if trimmed != t.Format("2006-01-02") {
				c.record("date", raw, t.Format("2006-01-02"), 0, false)
			}
			return t, true
		}
	}

	// Serial date: integer or float days since the epoch
	if serial, err := strconv.ParseFloat(trimmed, 64); err == nil {
		if serial >= 1 && serial <= maxSerialDate {
			days := int(serial)
			frac := serial - float64(days)
			t := serialEpoch.AddDate(0, 0, days).
				Add(time.Duration(frac * 24 * float64(time.Hour)))
			c.record("date", raw, t.Format("2006-01-02"), 0, false)
			return t, true
		}
	}

	return time.Time{}, false
}

// turkish maps locale-special letters to their ASCII transliterations
var turkish = strings.NewReplacer(
	"ı", "i", "İ", "I", "ş", "s", "Ş", "S", "ğ", "g", "Ğ", "G",
	"ü", "u", "Ü", "U", "ö", "o", "Ö", "O", "ç", "c", "Ç", "C",
	"ä", "a", "Ä", "A", "é", "e", "É", "E", "ß", "ss",
)

// Transliterate maps locale-special letters to ASCII equivalents. Applied
// before any ASCII case fold: ToLower alone turns İ/I into the wrong letter
// for Turkish text.
func Transliterate(s string) string {
	return turkish.Replace(s)
}

// SKU normalizes a raw SKU: uppercase ASCII, whitespace replaced with
// underscores, characters outside [A-Z0-9_-] stripped, separator runs
// collapsed and trimmed.
func (c *Corrector) SKU(raw string) (string, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", false
	}

	s := strings.ToUpper(turkish.Replace(trimmed))

	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-':
			b.WriteRune(r)
		case r == ' ' || r == '\t' || r == '_':
			b.WriteRune('_')
		}
	}
	s = collapseSeparators(b.String())
	s = strings.Trim(s, "_-")
	if s == "" {
		return "", false
	}

	if s != trimmed {
		c.record("sku", raw, s, 0, false)
	}
	return s, true
}

// Stock repairs a raw stock count. Blank input counts as zero and is always
// recorded as corrected; negative results clamp to zero.
func (c *Corrector) Stock(raw string) (int, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || strings.EqualFold(trimmed, "nan") {
		c.record("stock", raw, "0", 0, false)
		return 0, true
	}

	var b strings.Builder
	for i, r := range trimmed {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		} else if r == '-' && i == 0 {
			b.WriteRune(r)
		}
	}
	s := b.String()
	if s == "" || s == "-" {
		return 0, false
	}

	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	if n < 0 {
		n = 0
	}
	if strconv.Itoa(n) != trimmed {
		c.record("stock", raw, strconv.Itoa(n), 0, false)
	}
	return n, true
}

// RecordCategory appends a category resolution to the audit trail: either a
// fuzzy match with its similarity score or a newly created reference.
func (c *Corrector) RecordCategory(original, resolved string, score float64, createdNew bool) {
	c.record("category", original, resolved, score, createdNew)
}

// Summary returns cumulative correction counts per field type and the most
// recent records for session reporting.
func (c *Corrector) Summary() models.CorrectionSummary {
	c.mu.Lock()
	defer c.mu.Unlock()

	counts := make(map[string]int, len(c.counts))
	for k, v := range c.counts {
		counts[k] = v
	}
	recent := make([]models.CorrectionRecord, len(c.recent))
	copy(recent, c.recent)
	return models.CorrectionSummary{Counts: counts, Recent: recent}
}

// Drain removes and returns the records accumulated since the last drain,
// letting the aggregator persist the audit trail in bounded batches.
func (c *Corrector) Drain() []models.CorrectionRecord {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := c.records
	c.records = nil
	return out
}

func (c *Corrector) record(fieldType, original, corrected string, score float64, createdNew bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	rec := models.CorrectionRecord{
		FieldType:   fieldType,
		Original:    original,
		Corrected:   corrected,
		Similarity:  score,
		CreatedNew:  createdNew,
		CorrectedAt: time.Now(),
	}
	c.counts[fieldType]++
	c.records = append(c.records, rec)
	c.recent = append(c.recent, rec)
	if len(c.recent) > recentKeep {
		c.recent = c.recent[len(c.recent)-recentKeep:]
	}
}

// collapseSeparators reduces runs of _ and - to the run's first character
func collapseSeparators(s string) string {
	var b strings.Builder
	var prev rune
	for _, r := range s {
		if (r == '_' || r == '-') && (prev == '_' || prev == '-') {
			continue
		}
		b.WriteRune(r)
		prev = r
	}
	return b.String()
}
