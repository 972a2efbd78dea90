package excel

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

func productColumns() []Column {
	return []Column{
		{Field: "sku", Header: "SKU", Format: FormatText, Width: 18},
		{Field: "price", Header: "Price", Format: FormatCurrency},
		{Field: "stock", Header: "Stock", Format: FormatInteger},
	}
}

func TestWriterStreamsBatches(t *testing.T) {
	w, err := NewWriter(WriterOptions{
		SheetName: "Products",
		Columns:   productColumns(),
	}, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	batches := [][]map[string]interface{}{
		{
			{"sku": "A-1", "price": decimal.NewFromFloat(10.5), "stock": 3},
			{"sku": "A-2", "price": decimal.NewFromFloat(20), "stock": 7},
		},
		{
			{"sku": "A-3", "price": decimal.NewFromFloat(5), "stock": 1},
		},
	}
	for _, b := range batches {
		if err := w.WriteBatch(b); err != nil {
			t.Fatal(err)
		}
	}
	if w.RowCount() != 3 {
		t.Errorf("RowCount = %d, want 3", w.RowCount())
	}

	var buf bytes.Buffer
	if _, err := w.WriteTo(&buf); err != nil {
		t.Fatal(err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	got, err := f.GetCellValue("Products", "A1")
	if err != nil {
		t.Fatal(err)
	}
	if got != "SKU" {
		t.Errorf("header A1 = %q, want SKU", got)
	}
	got, _ = f.GetCellValue("Products", "A4")
	if got != "A-3" {
		t.Errorf("A4 = %q, want A-3", got)
	}
}

func TestWriterTotalsRow(t *testing.T) {
	w, err := NewWriter(WriterOptions{
		SheetName: "Products",
		Columns:   productColumns(),
		Totals:    true,
	}, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	err = w.WriteBatch([]map[string]interface{}{
		{"sku": "A-1", "price": decimal.NewFromFloat(10.5), "stock": 3},
		{"sku": "A-2", "price": decimal.NewFromFloat(20), "stock": 7},
	})
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if _, err := w.WriteTo(&buf); err != nil {
		t.Fatal(err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	// Totals row lands after the two data rows
	label, _ := f.GetCellValue("Products", "A4")
	if label != "TOTAL" {
		t.Errorf("A4 = %q, want TOTAL", label)
	}
	stockTotal, _ := f.GetCellValue("Products", "C4")
	if stockTotal != "10" {
		t.Errorf("stock total = %q, want 10", stockTotal)
	}
}

func TestWriterLowStockHighlight(t *testing.T) {
	w, err := NewWriter(WriterOptions{
		SheetName: "Products",
		Columns:   productColumns(),
		Highlight: &HighlightRule{Field: "stock", Below: 10},
	}, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	err = w.WriteBatch([]map[string]interface{}{
		{"sku": "A-1", "price": decimal.NewFromFloat(10.5), "stock": 3},
		{"sku": "A-2", "price": decimal.NewFromFloat(20), "stock": 70},
	})
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if _, err := w.WriteTo(&buf); err != nil {
		t.Fatal(err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	// The conditional format covers the stock column's data rows
	formats, err := f.GetConditionalFormats("Products")
	if err != nil {
		t.Fatal(err)
	}
	opts, ok := formats["C2:C3"]
	if !ok {
		t.Fatalf("no conditional format on C2:C3, got %v", formats)
	}
	if len(opts) != 1 || opts[0].Type != "cell" || opts[0].Value != "10" {
		t.Errorf("unexpected conditional format %+v", opts)
	}
}

func TestWriterRejectsWritesAfterFinalize(t *testing.T) {
	w, err := NewWriter(WriterOptions{Columns: productColumns()}, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	if err := w.Finalize(); err != nil {
		t.Fatal(err)
	}
	if err := w.WriteBatch([]map[string]interface{}{{"sku": "X"}}); err == nil {
		t.Error("expected error writing after finalize")
	}
}

func TestWriterRequiresColumns(t *testing.T) {
	if _, err := NewWriter(WriterOptions{}, zerolog.Nop()); err == nil {
		t.Error("expected error for writer without columns")
	}
}

func TestWriteTemplate(t *testing.T) {
	var buf bytes.Buffer
	headers := []string{"SKU", "Name", "Price"}
	if err := WriteTemplate(&buf, "Import", headers); err != nil {
		t.Fatal(err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	rows, err := f.GetRows("Import")
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 {
		t.Fatalf("template has %d rows, want 1", len(rows))
	}
	for i, h := range headers {
		if rows[0][i] != h {
			t.Errorf("header %d = %q, want %q", i, rows[0][i], h)
		}
	}
}

func TestWriteTemplateRequiresHeaders(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteTemplate(&buf, "Import", nil); err == nil {
		t.Error("expected error for empty header list")
	}
}
