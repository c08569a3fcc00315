package cafeimport

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// TemplateFilename is the download name of the import template.
const TemplateFilename = "cafe-import-template.xlsx"

// XLSXContentType is the media type of xlsx workbooks.
const XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

const templateSheet = "카페 목록"

var templateHeader = []string{"지역", "카페링크", "리뷰허용", "사업자명허용", "후기허용", "승인필요", "메모"}

var templateWidths = []float64{12, 40, 12, 15, 12, 12, 30}

var templateSamples = [][]string{
	{"안양", "https://cafe.naver.com/anyangtalk", "true", "true", "true", "true", "특이사항 없음"},
	{"안양", "https://cafe.naver.com/happymom7979", "true", "true", "true", "true", ""},
	{"청주", "https://cafe.naver.com/truecj", "true", "false", "true", "false", ""},
}

// WriteTemplate writes an xlsx workbook with the import headers and sample rows.
func WriteTemplate(w io.Writer) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), templateSheet); err != nil {
		return fmt.Errorf("failed to name template sheet: %w", err)
	}

	rows := append([][]string{templateHeader}, templateSamples...)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(templateSheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write template row %d: %w", i+1, err)
		}
	}

	for i, width := range templateWidths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(templateSheet, col, col, width); err != nil {
			return fmt.Errorf("failed to set width of column %s: %w", col, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write template: %w", err)
	}
	return nil
}
