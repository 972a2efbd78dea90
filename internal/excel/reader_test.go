package excel

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
)

func writeTempCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "source.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func writeTempXLSX(t *testing.T, rows [][]interface{}) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow("Sheet1", cell, &row); err != nil {
			t.Fatal(err)
		}
	}
	path := filepath.Join(t.TempDir(), "source.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatal(err)
	}
	return path
}

func defaultOpts() ReaderOptions {
	return ReaderOptions{
		MaxFileSize:       10 * 1024 * 1024,
		AllowedExtensions: []string{".csv", ".xlsx"},
	}
}

func collectRows(t *testing.T, path string, chunkSize int) ([]Row, []int) {
	t.Helper()
	r, err := NewReader(path, defaultOpts(), zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	var rows []Row
	var starts []int
	err = r.ReadChunks(context.Background(), chunkSize, func(c Chunk) error {
		rows = append(rows, c.Rows...)
		starts = append(starts, c.StartRow)
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	return rows, starts
}

const sampleCSV = `SKU,Name,Price
A-1,First,10.00
A-2,Second,20.00
A-3,Third,30.00
A-4,Fourth,40.00
A-5,Fifth,50.00
`

func TestReadCSVChunks(t *testing.T) {
	path := writeTempCSV(t, sampleCSV)

	rows, starts := collectRows(t, path, 2)
	if len(rows) != 5 {
		t.Fatalf("expected 5 rows, got %d", len(rows))
	}
	if rows[0]["SKU"] != "A-1" || rows[4]["SKU"] != "A-5" {
		t.Errorf("rows out of order: first=%v last=%v", rows[0], rows[4])
	}
	// Data starts at source row 2; chunks of 2 begin at rows 2, 4, 6
	wantStarts := []int{2, 4, 6}
	if len(starts) != len(wantStarts) {
		t.Fatalf("expected %d chunks, got %d", len(wantStarts), len(starts))
	}
	for i, want := range wantStarts {
		if starts[i] != want {
			t.Errorf("chunk %d start = %d, want %d", i, starts[i], want)
		}
	}
}

func TestChunkSizeDoesNotChangeContent(t *testing.T) {
	path := writeTempCSV(t, sampleCSV)

	baseline, _ := collectRows(t, path, 1)
	for _, size := range []int{2, 3, 100} {
		rows, _ := collectRows(t, path, size)
		if len(rows) != len(baseline) {
			t.Fatalf("chunk size %d: got %d rows, want %d", size, len(rows), len(baseline))
		}
		for i := range rows {
			for k, v := range baseline[i] {
				if rows[i][k] != v {
					t.Errorf("chunk size %d row %d: %s = %q, want %q", size, i, k, rows[i][k], v)
				}
			}
		}
	}
}

func TestReadXLSXChunks(t *testing.T) {
	path := writeTempXLSX(t, [][]interface{}{
		{"SKU", "Name", "Price"},
		{"X-1", "One", 10},
		{"X-2", "Two", 20},
		{"X-3", "Three", 30},
	})

	rows, _ := collectRows(t, path, 2)
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	if rows[2]["SKU"] != "X-3" {
		t.Errorf("last row SKU = %q, want X-3", rows[2]["SKU"])
	}
}

func TestShortRowsPadded(t *testing.T) {
	path := writeTempCSV(t, "A,B,C\n1,2\n")

	rows, _ := collectRows(t, path, 10)
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	if rows[0]["C"] != "" {
		t.Errorf("missing trailing cell should map to empty, got %q", rows[0]["C"])
	}
}

func TestFileSizeLimit(t *testing.T) {
	content := sampleCSV
	path := writeTempCSV(t, content)

	opts := defaultOpts()
	opts.MaxFileSize = int64(len(content))
	if _, err := NewReader(path, opts, zerolog.Nop()); err != nil {
		t.Errorf("file of exactly the maximum size must be accepted, got %v", err)
	}

	opts.MaxFileSize = int64(len(content)) - 1
	_, err := NewReader(path, opts, zerolog.Nop())
	var sizeErr *FileSizeError
	if !errors.As(err, &sizeErr) {
		t.Fatalf("expected FileSizeError, got %v", err)
	}
}

func TestUnsupportedFileType(t *testing.T) {
	path := filepath.Join(t.TempDir(), "source.pdf")
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := NewReader(path, defaultOpts(), zerolog.Nop())
	var typeErr *UnsupportedFileTypeError
	if !errors.As(err, &typeErr) {
		t.Fatalf("expected UnsupportedFileTypeError, got %v", err)
	}
}

func TestCancellationBetweenChunks(t *testing.T) {
	path := writeTempCSV(t, sampleCSV)
	r, err := NewReader(path, defaultOpts(), zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	seen := 0
	err = r.ReadChunks(ctx, 1, func(c Chunk) error {
		seen++
		if seen == 2 {
			cancel()
		}
		return nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if seen != 2 {
		t.Errorf("expected exactly 2 chunks before cancellation, got %d", seen)
	}
}

func TestHeaders(t *testing.T) {
	path := writeTempCSV(t, sampleCSV)
	r, err := NewReader(path, defaultOpts(), zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	headers, err := r.Headers()
	if err != nil {
		t.Fatal(err)
	}
	if strings.Join(headers, ",") != "SKU,Name,Price" {
		t.Errorf("headers = %v", headers)
	}
}

func TestOffsetFallbackKeepsRowsAfterBlank(t *testing.T) {
	// A formatted-but-empty row mid-sheet must not end the read; only the
	// trailing blank tail is dropped.
	path := writeTempXLSX(t, [][]interface{}{
		{"SKU", "Name", "Price"},
		{"X-1", "One", 10},
		{"", "", ""},
		{"X-2", "Two", 20},
		{"", "", ""},
	})

	r, err := NewReader(path, defaultOpts(), zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	var skus []string
	err = r.readXLSXByOffset(context.Background(), f, "Sheet1", 1, func(c Chunk) error {
		for _, row := range c.Rows {
			skus = append(skus, row["SKU"])
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"X-1", "", "X-2"}
	if len(skus) != len(want) {
		t.Fatalf("SKUs = %v, want %v", skus, want)
	}
	for i := range want {
		if skus[i] != want[i] {
			t.Errorf("SKU %d = %q, want %q", i, skus[i], want[i])
		}
	}
}

func TestEmptySourceYieldsNoChunks(t *testing.T) {
	path := writeTempCSV(t, "SKU,Name,Price\n")
	rows, starts := collectRows(t, path, 10)
	if len(rows) != 0 || len(starts) != 0 {
		t.Errorf("header-only source produced rows=%d chunks=%d", len(rows), len(starts))
	}
}
