package statement

import (
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Format identifies a supported statement file format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
	FormatXLS  Format = "xls"
)

// DetectFormat resolves a filename's extension to a supported format.
func DetectFormat(filename string) (Format, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return FormatCSV, nil
	case ".xlsx":
		return FormatXLSX, nil
	case ".xls":
		return FormatXLS, nil
	default:
		return "", &PipelineError{
			Code:    ErrUnsupportedFileType,
			Message: fmt.Sprintf("unsupported file type %q", filepath.Ext(filename)),
			Stage:   "detect",
		}
	}
}

// Sheet is one raw worksheet grid. Rows are ragged: no column count is
// enforced at this stage.
type Sheet struct {
	Name string
	Rows [][]string
}

// Grid is a whole workbook read with no header assumption, sheets in
// declaration order.
type Grid struct {
	Sheets []Sheet
}

// decodeUTF8 wraps r so a UTF-8 byte-order mark, common in bank CSV exports,
// is stripped before parsing.
func decodeUTF8(r io.Reader) io.Reader {
	return transform.NewReader(r, unicode.UTF8BOM.NewDecoder())
}

// readCSVRecords parses every record from r, tolerating ragged rows.
func readCSVRecords(r io.Reader) ([][]string, error) {
	cr := csv.NewReader(decodeUTF8(r))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	records, err := cr.ReadAll()
	if err != nil {
		return nil, &PipelineError{
			Code:    ErrMalformedPayload,
			Message: "parsing csv payload",
			Stage:   "parse",
			Cause:   err,
		}
	}
	return records, nil
}

// readGrid loads a spreadsheet payload into a raw grid.
func readGrid(r io.ReadSeeker, format Format) (*Grid, error) {
	switch format {
	case FormatXLSX:
		return readXLSX(r)
	case FormatXLS:
		return readXLS(r)
	default:
		return nil, &PipelineError{
			Code:    ErrUnsupportedFileType,
			Message: fmt.Sprintf("format %q is not a spreadsheet", format),
			Stage:   "parse",
		}
	}
}

func readXLSX(r io.Reader) (*Grid, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, &PipelineError{
			Code:    ErrMalformedPayload,
			Message: "opening xlsx workbook",
			Stage:   "parse",
			Cause:   err,
		}
	}
	defer f.Close()

	var grid Grid
	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name)
		if err != nil {
			return nil, &PipelineError{
				Code:    ErrMalformedPayload,
				Message: fmt.Sprintf("reading sheet %q", name),
				Stage:   "parse",
				Cause:   err,
			}
		}
		grid.Sheets = append(grid.Sheets, Sheet{Name: name, Rows: rows})
	}
	return &grid, nil
}

func readXLS(r io.ReadSeeker) (*Grid, error) {
	wb, err := xls.OpenReader(r, "utf-8")
	if err != nil {
		return nil, &PipelineError{
			Code:    ErrMalformedPayload,
			Message: "opening xls workbook",
			Stage:   "parse",
			Cause:   err,
		}
	}

	var grid Grid
	for i := 0; i < wb.NumSheets(); i++ {
		sheet := wb.GetSheet(i)
		if sheet == nil {
			continue
		}
		var rows [][]string
		for ri := 0; ri <= int(sheet.MaxRow); ri++ {
			row := sheet.Row(ri)
			if row == nil {
				rows = append(rows, nil)
				continue
			}
			cells := make([]string, 0, row.LastCol())
			for ci := 0; ci < row.LastCol(); ci++ {
				cells = append(cells, row.Col(ci))
			}
			rows = append(rows, cells)
		}
		grid.Sheets = append(grid.Sheets, Sheet{Name: sheet.Name, Rows: rows})
	}
	return &grid, nil
}
