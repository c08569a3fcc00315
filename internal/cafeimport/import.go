package cafeimport

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/phrazzld/reviewdesk/internal/domain"
	"github.com/xuri/excelize/v2"
)

// MaxReportedErrors caps the number of row errors returned to the caller.
const MaxReportedErrors = 10

var (
	// ErrEmptyFile is returned when the upload has no data rows.
	ErrEmptyFile = errors.New("file is empty or invalid")

	// ErrUnsupportedFormat is returned for files that are neither xlsx nor csv.
	ErrUnsupportedFormat = errors.New("unsupported file format")
)

type column int

const (
	colRegion column = iota
	colLink
	colAllowReview
	colAllowBusinessName
	colAllowAfterPost
	colRequireApproval
	colNotes
	columnCount
)

// headerAliases lists the accepted header spellings per column.
var headerAliases = map[column][]string{
	colRegion:            {"지역", "region", "Region", "지역명"},
	colLink:              {"카페링크", "카페 링크", "cafe_link", "Cafe Link", "링크"},
	colAllowReview:       {"리뷰허용", "리뷰 허용", "allow_review", "Allow Review"},
	colAllowBusinessName: {"사업자명허용", "사업자명 허용", "allow_business_name", "Allow Business Name"},
	colAllowAfterPost:    {"후기허용", "후기 허용", "allow_after_post", "Allow After Post"},
	colRequireApproval:   {"승인필요", "승인 필요", "require_approval", "Require Approval"},
	colNotes:             {"메모", "notes", "Notes", "비고"},
}

var (
	truthy = map[string]bool{"true": true, "1": true, "yes": true, "y": true, "예": true, "허용": true}
	falsy  = map[string]bool{"false": true, "0": true, "no": true, "n": true, "아니오": true, "불가": true}
)

// ParseBool reads a permission cell. Unrecognised and empty values are true.
func ParseBool(s string) bool {
	v := strings.ToLower(strings.TrimSpace(s))
	if truthy[v] {
		return true
	}
	if falsy[v] {
		return false
	}
	return true
}

// Row is one data row of an import file.
type Row struct {
	// Line is the spreadsheet row number; the header is row 1.
	Line        int
	Region      string
	Link        string
	Notes       string
	Permissions domain.Permissions
}

// Result summarises a bulk import.
type Result struct {
	Total    int      `json:"total"`
	Imported int      `json:"imported"`
	Failed   int      `json:"failed"`
	Errors   []string `json:"errors"`
}

// NewResult returns a Result for total rows.
func NewResult(total int) *Result {
	return &Result{Total: total, Errors: []string{}}
}

// Succeed records an imported row.
func (r *Result) Succeed() {
	r.Imported++
}

// Fail records a failed row. Only the first MaxReportedErrors messages are kept.
func (r *Result) Fail(line int, message string) {
	r.Failed++
	if len(r.Errors) < MaxReportedErrors {
		r.Errors = append(r.Errors, fmt.Sprintf("행 %d: %s", line, message))
	}
}

// Parse reads cafe rows from an xlsx or csv file. The format is chosen by
// the file extension.
func Parse(r io.Reader, filename string) ([]Row, error) {
	var (
		records [][]string
		err     error
	)
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx", ".xlsm":
		records, err = readXLSX(r)
	case ".csv":
		records, err = readCSV(r)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(filename))
	}
	if err != nil {
		return nil, err
	}
	return rowsFromRecords(records)
}

func readXLSX(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open spreadsheet: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmptyFile
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}
	return rows, nil
}

func readCSV(r io.Reader) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}
	if len(records) > 0 && len(records[0]) > 0 {
		records[0][0] = strings.TrimPrefix(records[0][0], "\ufeff")
	}
	return records, nil
}

func rowsFromRecords(records [][]string) ([]Row, error) {
	if len(records) < 2 {
		return nil, ErrEmptyFile
	}

	index := headerIndex(records[0])
	cell := func(record []string, c column) string {
		i, ok := index[c]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	rows := make([]Row, 0, len(records)-1)
	for i, record := range records[1:] {
		if isBlank(record) {
			continue
		}
		rows = append(rows, Row{
			Line:   i + 2,
			Region: cell(record, colRegion),
			Link:   cell(record, colLink),
			Notes:  cell(record, colNotes),
			Permissions: domain.Permissions{
				AllowReview:       ParseBool(cell(record, colAllowReview)),
				AllowBusinessName: ParseBool(cell(record, colAllowBusinessName)),
				AllowAfterPost:    ParseBool(cell(record, colAllowAfterPost)),
				RequireApproval:   ParseBool(cell(record, colRequireApproval)),
			},
		})
	}
	if len(rows) == 0 {
		return nil, ErrEmptyFile
	}
	return rows, nil
}

// headerIndex maps each known column to its position. The first matching
// header wins when a file repeats a column.
func headerIndex(header []string) map[column]int {
	index := make(map[column]int, columnCount)
	for i, h := range header {
		h = strings.TrimSpace(h)
		for c, aliases := range headerAliases {
			if _, seen := index[c]; seen {
				continue
			}
			for _, alias := range aliases {
				if h == alias {
					index[c] = i
					break
				}
			}
		}
	}
	return index
}

func isBlank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
