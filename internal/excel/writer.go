package excel

import (
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// CellFormat selects the number format applied to a column on finalize
type CellFormat int

const (
	FormatText CellFormat = iota
	FormatInteger
	FormatCurrency
	FormatPercent
)

// Column maps an entity field to an output header plus its display format
type Column struct {
	Field  string
	Header string
	Format CellFormat
	Width  float64
}

// HighlightRule marks cells in a column whose value falls below a threshold
type HighlightRule struct {
	Field string
	Below float64
}

// WriterOptions configure one export run
type WriterOptions struct {
	SheetName string
	Columns   []Column
	Totals    bool
	Highlight *HighlightRule
}

// Writer streams entity batches to a tabular workbook without holding the
// full output in memory: the header is written once, each batch appended
// incrementally, and formatting that needs full-dataset knowledge (number
// formats, conditional highlighting, the totals row) is applied in a second
// pass once all batches are in.
type Writer struct {
	f      *excelize.File
	sw     *excelize.StreamWriter
	opts   WriterOptions
	log    zerolog.Logger
	row    int
	totals map[string]decimal.Decimal
	done   bool
}

// NewWriter opens a new workbook and writes the header row
func NewWriter(opts WriterOptions, log zerolog.Logger) (*Writer, error) {
	if opts.SheetName == "" {
		opts.SheetName = "Sheet1"
	}
	if len(opts.Columns) == 0 {
		return nil, fmt.Errorf("writer requires at least one column")
	}

	f := excelize.NewFile()
	if opts.SheetName != "Sheet1" {
		if err := f.SetSheetName("Sheet1", opts.SheetName); err != nil {
			return nil, err
		}
	}

	sw, err := f.NewStreamWriter(opts.SheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to create stream writer: %w", err)
	}

	w := &Writer{
		f:      f,
		sw:     sw,
		opts:   opts,
		log:    log.With().Str("component", "writer").Logger(),
		row:    1,
		totals: make(map[string]decimal.Decimal),
	}
	if err := w.writeHeader(); err != nil {
		return nil, err
	}
	return w, nil
}

func (w *Writer) writeHeader() error {
	cells := make([]interface{}, len(w.opts.Columns))
	for i, col := range w.opts.Columns {
		cells[i] = col.Header
	}
	cell, _ := excelize.CoordinatesToCellName(1, w.row)
	if err := w.sw.SetRow(cell, cells); err != nil {
		return fmt.Errorf("failed to write header row: %w", err)
	}
	w.row++
	return nil
}

// WriteBatch appends one batch of entity rows. Each row is a field→value map;
// missing fields are written as empty cells.
func (w *Writer) WriteBatch(batch []map[string]interface{}) error {
	if w.done {
		return fmt.Errorf("writer already finalized")
	}
	for _, rec := range batch {
		cells := make([]interface{}, len(w.opts.Columns))
		for i, col := range w.opts.Columns {
			v, ok := rec[col.Field]
			if !ok {
				cells[i] = ""
				continue
			}
			cells[i] = v
			w.accumulate(col, v)
		}
		cell, _ := excelize.CoordinatesToCellName(1, w.row)
		if err := w.sw.SetRow(cell, cells); err != nil {
			return fmt.Errorf("failed to write row %d: %w", w.row, err)
		}
		w.row++
	}
	return nil
}

// accumulate tracks per-column sums for the trailing totals row
func (w *Writer) accumulate(col Column, v interface{}) {
	if col.Format != FormatInteger && col.Format != FormatCurrency {
		return
	}
	var d decimal.Decimal
	switch x := v.(type) {
	case int:
		d = decimal.NewFromInt(int64(x))
	case int64:
		d = decimal.NewFromInt(x)
	case float64:
		d = decimal.NewFromFloat(x)
	case decimal.Decimal:
		d = x
	default:
		return
	}
	w.totals[col.Field] = w.totals[col.Field].Add(d)
}

// Finalize writes the totals row, flushes the stream and runs the formatting
// pass over the completed sheet.
func (w *Writer) Finalize() error {
	if w.done {
		return nil
	}
	w.done = true

	if w.opts.Totals && w.row > 2 {
		cells := make([]interface{}, len(w.opts.Columns))
		for i, col := range w.opts.Columns {
			if i == 0 {
				cells[i] = "TOTAL"
				continue
			}
			if sum, ok := w.totals[col.Field]; ok {
				f, _ := sum.Float64()
				cells[i] = f
			} else {
				cells[i] = ""
			}
		}
		cell, _ := excelize.CoordinatesToCellName(1, w.row)
		if err := w.sw.SetRow(cell, cells); err != nil {
			return fmt.Errorf("failed to write totals row: %w", err)
		}
		w.row++
	}

	if err := w.sw.Flush(); err != nil {
		return fmt.Errorf("failed to flush stream writer: %w", err)
	}

	return w.applyFormats()
}

// applyFormats is the post-hoc pass: column number formats and conditional
// highlighting over the already-written output.
func (w *Writer) applyFormats() error {
	lastRow := w.row - 1
	if lastRow < 2 {
		return nil
	}

	for i, col := range w.opts.Columns {
		numFmt := numberFormat(col.Format)
		if numFmt != "" {
			style, err := w.f.NewStyle(&excelize.Style{CustomNumFmt: &numFmt})
			if err != nil {
				return err
			}
			colName, _ := excelize.ColumnNumberToName(i + 1)
			if err := w.f.SetColStyle(w.opts.SheetName, colName, style); err != nil {
				return err
			}
		}
		if col.Width > 0 {
			colName, _ := excelize.ColumnNumberToName(i + 1)
			if err := w.f.SetColWidth(w.opts.SheetName, colName, colName, col.Width); err != nil {
				return err
			}
		}
	}

	if w.opts.Highlight != nil {
		idx := w.columnIndex(w.opts.Highlight.Field)
		if idx > 0 {
			colName, _ := excelize.ColumnNumberToName(idx)
			format, err := w.f.NewConditionalStyle(&excelize.Style{
				Fill: excelize.Fill{Type: "pattern", Color: []string{"FFC7CE"}, Pattern: 1},
				Font: &excelize.Font{Color: "9C0006"},
			})
			if err != nil {
				return err
			}
			area := fmt.Sprintf("%s2:%s%d", colName, colName, lastRow)
			err = w.f.SetConditionalFormat(w.opts.SheetName, area, []excelize.ConditionalFormatOptions{
				{
					Type:     "cell",
					Criteria: "<",
					Value:    fmt.Sprintf("%v", w.opts.Highlight.Below),
					Format:   format,
				},
			})
			if err != nil {
				return err
			}
		}
	}

	return nil
}

func (w *Writer) columnIndex(field string) int {
	for i, col := range w.opts.Columns {
		if col.Field == field {
			return i + 1
		}
	}
	return 0
}

// RowCount returns the number of data rows written so far
func (w *Writer) RowCount() int {
	return w.row - 2
}

// WriteTo writes the finished workbook to out. Finalize is called if the
// caller has not done so.
func (w *Writer) WriteTo(out io.Writer) (int64, error) {
	if !w.done {
		if err := w.Finalize(); err != nil {
			return 0, err
		}
	}
	return w.f.WriteTo(out)
}

// Close releases workbook resources
func (w *Writer) Close() error {
	return w.f.Close()
}

func numberFormat(f CellFormat) string {
	switch f {
	case FormatInteger:
		return "0"
	case FormatCurrency:
		return "#,##0.00"
	case FormatPercent:
		return "0.00%"
	default:
		return ""
	}
}
