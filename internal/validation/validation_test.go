package validation

import (
	"fmt"
	"testing"

	"github.com/eemreuysal/VivaCrm-v2-sub000/internal/correction"
	"github.com/eemreuysal/VivaCrm-v2-sub000/internal/mapping"
)

func newTestCorrector() *correction.Corrector {
	return correction.New([]string{"2006-01-02", "02.01.2006"})
}

func TestRequiredFieldValidator(t *testing.T) {
	v := NewRequiredField([]string{"sku", "name"})

	res := v.Validate(map[string]string{"sku": "A-1", "name": "First"}, 2)
	if !res.Valid {
		t.Errorf("complete row failed: %v", res.Errors)
	}

	res = v.Validate(map[string]string{"sku": "  ", "name": "First"}, 3)
	if res.Valid {
		t.Fatal("blank required field passed")
	}
	if res.Errors[0].Code != CodeMissingRequired {
		t.Errorf("code = %q, want %q", res.Errors[0].Code, CodeMissingRequired)
	}
	if res.Errors[0].Field != "sku" {
		t.Errorf("field = %q, want sku", res.Errors[0].Field)
	}

	// Null sentinels count as absent
	res = v.Validate(map[string]string{"sku": "NaN", "name": "null"}, 4)
	if len(res.Errors) != 2 {
		t.Errorf("expected 2 errors for sentinel values, got %d", len(res.Errors))
	}
}

func TestUniquenessValidator(t *testing.T) {
	v := NewUniqueness("sku")

	if res := v.Validate(map[string]string{"sku": "A-1"}, 2); !res.Valid {
		t.Fatal("first occurrence flagged")
	}
	// Duplicates match case- and whitespace-insensitively
	res := v.Validate(map[string]string{"sku": " a-1 "}, 5)
	if res.Valid {
		t.Fatal("duplicate passed")
	}
	if res.Errors[0].Code != CodeDuplicateInFile {
		t.Errorf("code = %q, want %q", res.Errors[0].Code, CodeDuplicateInFile)
	}
	if res.Errors[0].Row != 5 {
		t.Errorf("row = %d, want 5", res.Errors[0].Row)
	}

	// Blank values never count as duplicates of each other
	if res := v.Validate(map[string]string{"sku": ""}, 6); !res.Valid {
		t.Error("blank value flagged as duplicate")
	}
	if res := v.Validate(map[string]string{"sku": ""}, 7); !res.Valid {
		t.Error("second blank value flagged as duplicate")
	}
}

func TestFormatValidatorBounds(t *testing.T) {
	zero := 0.0
	v := NewFormat([]FieldRule{
		{Field: "price", Kind: FormatDecimal, Code: CodeInvalidPrice, Min: &zero},
		{Field: "stock", Kind: FormatInteger, Code: CodeInvalidStock},
	}, newTestCorrector())

	tests := []struct {
		name   string
		values map[string]string
		valid  bool
		code   string
	}{
		{"valid", map[string]string{"price": "10.50", "stock": "3"}, true, ""},
		{"repairable price", map[string]string{"price": "1.234,56"}, true, ""},
		{"unparseable price", map[string]string{"price": "abc"}, false, CodeInvalidPrice},
		{"negative price fails bounds", map[string]string{"price": "-5"}, false, CodeInvalidPrice},
		{"unparseable stock", map[string]string{"stock": "many"}, false, CodeInvalidStock},
		{"blank skipped", map[string]string{"price": "", "stock": ""}, true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := v.Validate(tt.values, 2)
			if res.Valid != tt.valid {
				t.Fatalf("valid = %v, want %v (errors %v)", res.Valid, tt.valid, res.Errors)
			}
			if !tt.valid && res.Errors[0].Code != tt.code {
				t.Errorf("code = %q, want %q", res.Errors[0].Code, tt.code)
			}
		})
	}
}

func TestFormatValidatorEmailAndPhone(t *testing.T) {
	v := NewFormat([]FieldRule{
		{Field: "email", Kind: FormatEmail, Code: CodeInvalidEmail},
		{Field: "phone", Kind: FormatPhone, Code: CodeInvalidPhone},
	}, newTestCorrector())

	if res := v.Validate(map[string]string{"email": "a@b.co", "phone": "+90 212 555 0000"}, 2); !res.Valid {
		t.Errorf("valid contact flagged: %v", res.Errors)
	}
	if res := v.Validate(map[string]string{"email": "not-an-email"}, 3); res.Valid {
		t.Error("invalid email passed")
	}
	if res := v.Validate(map[string]string{"phone": "call me"}, 4); res.Valid {
		t.Error("invalid phone passed")
	}
}

func TestFormatValidatorLength(t *testing.T) {
	v := NewFormat([]FieldRule{
		{Field: "name", Kind: FormatLength, Code: CodeTooLong, MaxLen: 5},
	}, newTestCorrector())

	if res := v.Validate(map[string]string{"name": "short"}, 2); !res.Valid {
		t.Error("value at the limit flagged")
	}
	if res := v.Validate(map[string]string{"name": "toolong"}, 3); res.Valid {
		t.Error("overlong value passed")
	}
}

func TestReferenceValidator(t *testing.T) {
	known := map[string]bool{"Electronics": true}
	v := NewReference(mapping.FieldCategory, func(name string) error {
		if !known[name] {
			return fmt.Errorf("category %q not found", name)
		}
		return nil
	})

	if res := v.Validate(map[string]string{mapping.FieldCategory: "Electronics"}, 2); !res.Valid {
		t.Error("known reference flagged")
	}
	res := v.Validate(map[string]string{mapping.FieldCategory: "Nope"}, 3)
	if res.Valid {
		t.Fatal("unknown reference passed")
	}
	if res.Errors[0].Code != CodeReferenceError {
		t.Errorf("code = %q, want %q", res.Errors[0].Code, CodeReferenceError)
	}
	if res := v.Validate(map[string]string{}, 4); !res.Valid {
		t.Error("blank reference should pass")
	}
}

func TestPipelineDoesNotShortCircuit(t *testing.T) {
	zero := 0.0
	p := NewPipeline(
		NewRequiredField([]string{"sku", "name"}),
		NewFormat([]FieldRule{
			{Field: "price", Kind: FormatDecimal, Code: CodeInvalidPrice, Min: &zero},
		}, newTestCorrector()),
	)

	// Row missing a required field AND carrying a bad price surfaces both
	res := p.Validate(map[string]string{"sku": "A-1", "price": "abc"}, 2)
	if res.Valid {
		t.Fatal("broken row passed")
	}
	codes := map[string]bool{}
	for _, e := range res.Errors {
		codes[e.Code] = true
	}
	if !codes[CodeMissingRequired] || !codes[CodeInvalidPrice] {
		t.Errorf("expected both error codes, got %v", res.Errors)
	}
}

func TestIsBlank(t *testing.T) {
	for _, s := range []string{"", "  ", "\t", "nan", "NaN", "NULL", "None"} {
		if !IsBlank(s) {
			t.Errorf("IsBlank(%q) = false, want true", s)
		}
	}
	for _, s := range []string{"0", "x", "-"} {
		if IsBlank(s) {
			t.Errorf("IsBlank(%q) = true, want false", s)
		}
	}
}
