package excel

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// WriteTemplate produces an empty workbook containing only the header row,
// matching the given headers in order. Used for download-and-fill import
// templates.
func WriteTemplate(out io.Writer, sheetName string, headers []string) error {
	if len(headers) == 0 {
		return fmt.Errorf("template requires at least one header")
	}
	if sheetName == "" {
		sheetName = "Sheet1"
	}

	f := excelize.NewFile()
	defer f.Close()

	if sheetName != "Sheet1" {
		if err := f.SetSheetName("Sheet1", sheetName); err != nil {
			return err
		}
	}

	cells := make([]interface{}, len(headers))
	for i, h := range headers {
		cells[i] = h
	}
	if err := f.SetSheetRow(sheetName, "A1", &cells); err != nil {
		return err
	}

	// Bold header so the template reads as a form, not data
	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	last, _ := excelize.ColumnNumberToName(len(headers))
	if err := f.SetCellStyle(sheetName, "A1", last+"1", style); err != nil {
		return err
	}

	_, err = f.WriteTo(out)
	return err
}
