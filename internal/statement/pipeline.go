package statement

import (
	"context"
	"fmt"
	"io"

	"github.com/RishulGupta/Finance-Coach-AI/internal/category"
	"github.com/RishulGupta/Finance-Coach-AI/internal/logger"
)

// Result is the outcome of one pipeline run. Transactions and Summaries are
// never nil: on any failure they are empty, and FailureCode records why.
// Callers that only care about success/failure can check len(Transactions);
// the code exists so logs can tell "no header" apart from "no usable rows"
// even though both surface identically.
type Result struct {
	Transactions []Transaction
	Summaries    []MonthlySummary
	Dropped      int // rows rejected by the admission rule
	Degraded     int // classifications that fell back to Other
	FailureCode  PipelineErrorCode
}

// Pipeline orchestrates the full ingestion flow: locate, normalize, clean,
// classify, aggregate. It is fail-soft: Process never returns an error, only
// a Result whose tables may be empty.
type Pipeline struct {
	classifier *category.Classifier
}

// NewPipeline builds a pipeline around the given classifier.
func NewPipeline(classifier *category.Classifier) *Pipeline {
	return &Pipeline{classifier: classifier}
}

// emptyResult is the fail-soft outcome: both tables present, zero rows.
func emptyResult(code PipelineErrorCode) *Result {
	return &Result{
		Transactions: []Transaction{},
		Summaries:    []MonthlySummary{},
		FailureCode:  code,
	}
}

// Process ingests one statement payload. src must be seekable: it is read
// once to locate the header and again for the real parse. Any failure in
// any stage collapses to the empty-tables result; nothing escapes as an
// error or panic.
func (p *Pipeline) Process(ctx context.Context, src io.ReadSeeker, filename string) (result *Result) {
	log := logger.FromContext(ctx)

	// Spreadsheet parsers choke on hostile payloads in ways that surface as
	// panics, not errors. Those collapse to the same empty-tables outcome.
	defer func() {
		if r := recover(); r != nil {
			log.Error().Str("filename", filename).Interface("panic", r).
				Msg("pipeline panicked, returning empty tables")
			result = emptyResult(ErrMalformedPayload)
		}
	}()

	format, err := DetectFormat(filename)
	if err != nil {
		log.Warn().Str("filename", filename).Err(err).Msg("rejecting upload")
		return emptyResult(ErrUnsupportedFileType)
	}

	headers, rows, err := p.extract(src, format)
	if err != nil {
		code := ErrMalformedPayload
		if pErr, ok := err.(*PipelineError); ok {
			code = pErr.Code
		}
		log.Warn().Str("filename", filename).Err(err).Msg("extraction failed")
		return emptyResult(code)
	}

	log.Debug().Str("filename", filename).Int("columns", len(headers)).
		Int("rows", len(rows)).Msg("table extracted")

	table := normalize(headers, rows)
	txs, dropped := clean(table)
	if len(txs) == 0 {
		log.Warn().Str("filename", filename).Int("dropped", dropped).
			Msg("no rows passed admission")
		res := emptyResult(ErrNoUsableRows)
		res.Dropped = dropped
		return res
	}

	descriptions := make([]string, len(txs))
	for i, tx := range txs {
		descriptions[i] = tx.Description
	}
	labels, degraded := p.classifier.ClassifyAll(ctx, descriptions)
	for i := range txs {
		txs[i].Category = labels[i]
	}

	summaries := aggregate(txs)
	log.Info().Str("filename", filename).
		Int("transactions", len(txs)).
		Int("dropped", dropped).
		Int("degraded", degraded).
		Int("summary_rows", len(summaries)).
		Msg("statement processed")

	return &Result{
		Transactions: txs,
		Summaries:    summaries,
		Dropped:      dropped,
		Degraded:     degraded,
	}
}

// extract reads src into a raw header row plus data rows, format-specific.
func (p *Pipeline) extract(src io.ReadSeeker, format Format) ([]string, [][]string, error) {
	switch format {
	case FormatCSV:
		headerLine, err := locateCSVHeader(src)
		if err != nil {
			return nil, nil, err
		}
		records, err := readCSVRecords(src)
		if err != nil {
			return nil, nil, err
		}
		if headerLine >= len(records) {
			return nil, nil, &PipelineError{
				Code:    ErrNoHeaderFound,
				Message: fmt.Sprintf("header line %d beyond end of file", headerLine),
				Stage:   "locate",
			}
		}
		return records[headerLine], records[headerLine+1:], nil

	case FormatXLSX, FormatXLS:
		grid, err := readGrid(src, format)
		if err != nil {
			return nil, nil, err
		}
		loc, err := locateGridHeader(grid)
		if err != nil {
			return nil, nil, err
		}
		sheet := grid.Sheets[loc.Sheet]
		return sheet.Rows[loc.Row], sheet.Rows[loc.Row+1:], nil

	default:
		return nil, nil, &PipelineError{
			Code:    ErrUnsupportedFileType,
			Message: fmt.Sprintf("unsupported format %q", format),
			Stage:   "detect",
		}
	}
}
