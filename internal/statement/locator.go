package statement

import (
	"bufio"
	"bytes"
	"io"
	"strings"
)

// csvSampleSize bounds the prefix scanned when locating a CSV header row, so
// arbitrarily large uploads cost a constant amount to probe.
const csvSampleSize = 4096

// HeaderLocation identifies the header row of the transaction table.
type HeaderLocation struct {
	Sheet int // index into Grid.Sheets; always 0 for CSV
	Row   int
}

// headerText reports whether a row's concatenated lowercase text looks like a
// transaction-table header: it must mention a date column and a narration or
// description column.
func headerText(text string) bool {
	text = strings.ToLower(text)
	return strings.Contains(text, "date") &&
		(strings.Contains(text, "narration") || strings.Contains(text, "description"))
}

func headerCells(cells []string) bool {
	return headerText(strings.Join(cells, " "))
}

// locateCSVHeader scans a bounded prefix of src for the first line matching
// the header heuristic and returns its line index. When no line in the sample
// matches, line 0 is assumed: schema normalization and row admission
// downstream absorb a wrong guess. src is rewound to its start before
// returning.
func locateCSVHeader(src io.ReadSeeker) (int, error) {
	sample := make([]byte, csvSampleSize)
	n, err := io.ReadFull(src, sample)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return 0, &PipelineError{
			Code:    ErrMalformedPayload,
			Message: "sampling csv payload",
			Stage:   "locate",
			Cause:   err,
		}
	}
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return 0, &PipelineError{
			Code:    ErrMalformedPayload,
			Message: "rewinding csv payload",
			Stage:   "locate",
			Cause:   err,
		}
	}

	scanner := bufio.NewScanner(bytes.NewReader(sample[:n]))
	for line := 0; scanner.Scan(); line++ {
		if headerText(scanner.Text()) {
			return line, nil
		}
	}
	return 0, nil
}

// locateGridHeader scans every sheet in declaration order, then rows in order
// within each sheet, for the first header-looking row. Unlike the CSV path
// there is no lenient fallback: a workbook with no recognizable header fails.
func locateGridHeader(g *Grid) (HeaderLocation, error) {
	for si, sheet := range g.Sheets {
		for ri, row := range sheet.Rows {
			if headerCells(row) {
				return HeaderLocation{Sheet: si, Row: ri}, nil
			}
		}
	}
	return HeaderLocation{}, &PipelineError{
		Code:    ErrNoHeaderFound,
		Message: "no sheet contains a recognizable transaction header row",
		Stage:   "locate",
	}
}
