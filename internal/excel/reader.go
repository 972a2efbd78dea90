package excel

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
)

// Row holds one source row keyed by the original header strings
type Row map[string]string

// Chunk is a bounded contiguous slice of source rows. StartRow is the
// 1-based source row number of the first data row in the chunk.
type Chunk struct {
	Rows     []Row
	StartRow int
}

// ReaderOptions configure source validation and sheet selection
type ReaderOptions struct {
	MaxFileSize       int64
	AllowedExtensions []string
	SheetName         string // first sheet when empty
	SkipRows          int    // rows to skip before the header row
}

// Reader streams a tabular source file in fixed-size row chunks without
// loading the whole file into memory. The produced sequence is lazy, finite
// and non-restartable.
type Reader struct {
	path string
	ext  string
	opts ReaderOptions
	log  zerolog.Logger
}

// NewReader validates the file's size and extension before any reading and
// returns a chunked reader for it.
func NewReader(path string, opts ReaderOptions, log zerolog.Logger) (*Reader, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if !extAllowed(ext, opts.AllowedExtensions) {
		return nil, &UnsupportedFileTypeError{Ext: ext, Allowed: opts.AllowedExtensions}
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat source file: %w", err)
	}
	if opts.MaxFileSize > 0 && info.Size() > opts.MaxFileSize {
		return nil, &FileSizeError{Path: path, Size: info.Size(), Max: opts.MaxFileSize}
	}

	return &Reader{
		path: path,
		ext:  ext,
		opts: opts,
		log:  log.With().Str("component", "reader").Logger(),
	}, nil
}

// ReadChunks streams the source in chunks of at most chunkSize rows, calling
// fn for every non-empty chunk in source order. Cancellation is checked
// between chunks; empty trailing chunks terminate the sequence silently.
func (r *Reader) ReadChunks(ctx context.Context, chunkSize int, fn func(Chunk) error) error {
	if chunkSize < 1 {
		chunkSize = 1
	}

	switch r.ext {
	case ".csv":
		return r.readCSVChunks(ctx, chunkSize, fn)
	default:
		return r.readXLSXChunks(ctx, chunkSize, fn)
	}
}

// Headers reads only the header row of the source
func (r *Reader) Headers() ([]string, error) {
	if r.ext == ".csv" {
		return r.csvHeaders()
	}
	return r.xlsxHeaders()
}

func (r *Reader) readCSVChunks(ctx context.Context, chunkSize int, fn func(Chunk) error) error {
	file, err := os.Open(r.path)
	if err != nil {
		return fmt.Errorf("failed to open source file: %w", err)
	}
	defer file.Close()

	cr := csv.NewReader(file)
	cr.FieldsPerRecord = -1

	sourceRow := 0
	for i := 0; i < r.opts.SkipRows; i++ {
		if _, err := cr.Read(); err != nil {
			return fmt.Errorf("failed to skip leading rows: %w", err)
		}
		sourceRow++
	}

	header, err := cr.Read()
	if err == io.EOF {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read header row: %w", err)
	}
	sourceRow++

	chunk := Chunk{StartRow: sourceRow + 1}
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read row %d: %w", sourceRow+1, err)
		}
		sourceRow++

		chunk.Rows = append(chunk.Rows, zipRow(header, record))
		if len(chunk.Rows) >= chunkSize {
			if err := r.emit(ctx, fn, chunk); err != nil {
				return err
			}
			chunk = Chunk{StartRow: sourceRow + 1}
		}
	}

	if len(chunk.Rows) > 0 {
		return r.emit(ctx, fn, chunk)
	}
	return nil
}

func (r *Reader) readXLSXChunks(ctx context.Context, chunkSize int, fn func(Chunk) error) error {
	f, err := excelize.OpenFile(r.path)
	if err != nil {
		return fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheet, err := r.targetSheet(f)
	if err != nil {
		return err
	}

	rows, err := f.Rows(sheet)
	if err != nil {
		// Sequential row iteration is not available for this workbook.
		// Fall back to the slower per-offset re-read strategy.
		r.log.Warn().Err(err).Msg("Streaming read unavailable, using offset fallback")
		return r.readXLSXByOffset(ctx, f, sheet, chunkSize, fn)
	}
	defer rows.Close()

	sourceRow := 0
	for i := 0; i < r.opts.SkipRows && rows.Next(); i++ {
		if _, err := rows.Columns(); err != nil {
			return fmt.Errorf("failed to skip leading rows: %w", err)
		}
		sourceRow++
	}

	if !rows.Next() {
		return rows.Error()
	}
	header, err := rows.Columns()
	if err != nil {
		return fmt.Errorf("failed to read header row: %w", err)
	}
	sourceRow++

	chunk := Chunk{StartRow: sourceRow + 1}
	for rows.Next() {
		record, err := rows.Columns()
		if err != nil {
			return fmt.Errorf("failed to read row %d: %w", sourceRow+1, err)
		}
		sourceRow++

		chunk.Rows = append(chunk.Rows, zipRow(header, record))
		if len(chunk.Rows) >= chunkSize {
			if err := r.emit(ctx, fn, chunk); err != nil {
				return err
			}
			chunk = Chunk{StartRow: sourceRow + 1}
		}
	}
	if err := rows.Error(); err != nil {
		return fmt.Errorf("row iteration failed: %w", err)
	}

	// Drop an entirely blank trailing chunk; spreadsheets routinely carry
	// formatted-but-empty rows after the data.
	trimTrailingEmpty(&chunk)
	if len(chunk.Rows) > 0 {
		return r.emit(ctx, fn, chunk)
	}
	return nil
}

// readXLSXByOffset re-reads the sheet once per chunk, skipping already
// consumed rows and re-applying the first chunk's header row every time.
func (r *Reader) readXLSXByOffset(ctx context.Context, f *excelize.File, sheet string, chunkSize int, fn func(Chunk) error) error {
	all, err := f.GetRows(sheet)
	if err != nil {
		return fmt.Errorf("failed to read sheet: %w", err)
	}
	if len(all) <= r.opts.SkipRows {
		return nil
	}

	header := all[r.opts.SkipRows]
	dataStart := r.opts.SkipRows + 1 // index of first data row

	for offset := dataStart; offset < len(all); offset += chunkSize {
		end := offset + chunkSize
		if end > len(all) {
			end = len(all)
		}
		chunk := Chunk{StartRow: offset + 1}
		for _, record := range all[offset:end] {
			chunk.Rows = append(chunk.Rows, zipRow(header, record))
		}
		// Blank rows mid-sheet must survive so later rows keep flowing; only
		// the true end of the sheet sheds its formatted-but-empty tail.
		if end == len(all) {
			trimTrailingEmpty(&chunk)
		}
		if len(chunk.Rows) == 0 {
			continue
		}
		if err := r.emit(ctx, fn, chunk); err != nil {
			return err
		}
	}
	return nil
}

func (r *Reader) emit(ctx context.Context, fn func(Chunk) error, chunk Chunk) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	return fn(chunk)
}

func (r *Reader) targetSheet(f *excelize.File) (string, error) {
	if r.opts.SheetName != "" {
		if idx, err := f.GetSheetIndex(r.opts.SheetName); err != nil || idx < 0 {
			return "", fmt.Errorf("sheet %q not found", r.opts.SheetName)
		}
		return r.opts.SheetName, nil
	}
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return "", fmt.Errorf("workbook has no sheets")
	}
	return sheets[0], nil
}

func (r *Reader) csvHeaders() ([]string, error) {
	file, err := os.Open(r.path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	cr := csv.NewReader(file)
	cr.FieldsPerRecord = -1
	for i := 0; i < r.opts.SkipRows; i++ {
		if _, err := cr.Read(); err != nil {
			return nil, err
		}
	}
	return cr.Read()
}

func (r *Reader) xlsxHeaders() ([]string, error) {
	f, err := excelize.OpenFile(r.path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheet, err := r.targetSheet(f)
	if err != nil {
		return nil, err
	}
	rows, err := f.Rows(sheet)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for i := 0; i <= r.opts.SkipRows; i++ {
		if !rows.Next() {
			return nil, io.EOF
		}
	}
	return rows.Columns()
}

func zipRow(header, record []string) Row {
	row := make(Row, len(header))
	for i, h := range header {
		if h == "" {
			continue
		}
		if i < len(record) {
			row[h] = record[i]
		} else {
			row[h] = ""
		}
	}
	return row
}

func trimTrailingEmpty(chunk *Chunk) {
	for len(chunk.Rows) > 0 {
		last := chunk.Rows[len(chunk.Rows)-1]
		empty := true
		for _, v := range last {
			if strings.TrimSpace(v) != "" {
				empty = false
				break
			}
		}
		if !empty {
			return
		}
		chunk.Rows = chunk.Rows[:len(chunk.Rows)-1]
	}
}

func extAllowed(ext string, allowed []string) bool {
	for _, a := range allowed {
		if strings.EqualFold(ext, a) {
			return true
		}
	}
	return false
}
