// Package server exposes the ingestion pipeline and stored results over HTTP.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/RishulGupta/Finance-Coach-AI/internal/logger"
	"github.com/RishulGupta/Finance-Coach-AI/internal/statement"
	"github.com/RishulGupta/Finance-Coach-AI/internal/store"
)

// maxUploadBytes bounds the multipart form held in memory per upload.
const maxUploadBytes = 32 << 20

// demoUserID is used when a request carries no user identity. Authentication
// is handled upstream; this service only needs a partition key.
const demoUserID = "demo"

// Server routes HTTP requests to the pipeline and store.
type Server struct {
	pipeline *statement.Pipeline
	store    store.Store
	log      zerolog.Logger
	router   *mux.Router
}

// New builds a Server with all routes registered.
func New(pipeline *statement.Pipeline, st store.Store, log zerolog.Logger) *Server {
	s := &Server{pipeline: pipeline, store: st, log: log}
	r := mux.NewRouter()
	r.Use(s.requestID)
	r.HandleFunc("/", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/api/upload", s.handleUpload).Methods(http.MethodPost)
	r.HandleFunc("/api/data/{year}/{month}", s.handleData).Methods(http.MethodGet)
	r.HandleFunc("/api/months", s.handleMonths).Methods(http.MethodGet)
	s.router = r
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// requestID tags every request with an id so pipeline log lines can be
// correlated with the upload that produced them.
func (s *Server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.NewString()
		w.Header().Set("X-Request-ID", id)
		log := s.log.With().Str("request_id", id).Logger()
		next.ServeHTTP(w, r.WithContext(logger.WithContext(r.Context(), log)))
	})
}

func userID(r *http.Request) string {
	if uid := r.Header.Get("X-User-ID"); uid != "" {
		return uid
	}
	return demoUserID
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// parsePeriod validates year/month path or query values.
func parsePeriod(yearStr, monthStr string) (store.Period, error) {
	year, err := strconv.Atoi(yearStr)
	if err != nil || year < 1970 || year > 9999 {
		return store.Period{}, fmt.Errorf("invalid year %q", yearStr)
	}
	month, err := strconv.Atoi(monthStr)
	if err != nil || month < 1 || month > 12 {
		return store.Period{}, fmt.Errorf("invalid month %q", monthStr)
	}
	return store.Period{Year: year, Month: time.Month(month)}, nil
}

type uploadResponse struct {
	Month       string         `json:"month"`
	Rows        int            `json:"rows"`
	Dropped     int            `json:"dropped_rows"`
	Degraded    int            `json:"degraded_classifications"`
	TotalSpent  string         `json:"total_spent"`
	TotalIncome string         `json:"total_income"`
	Categories  map[string]int `json:"categories"`
	SummaryRows int            `json:"summary_rows"`
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	period, err := parsePeriod(r.URL.Query().Get("year"), r.URL.Query().Get("month"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "malformed multipart form")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer file.Close()

	res := s.pipeline.Process(ctx, file, header.Filename)
	if len(res.Transactions) == 0 {
		// the caller learns "unsupported" vs "no valid data"; header-miss
		// and all-rows-dropped deliberately collapse into the latter
		if res.FailureCode == statement.ErrUnsupportedFileType {
			writeError(w, http.StatusBadRequest, "unsupported file type")
			return
		}
		writeError(w, http.StatusBadRequest, "no valid transaction data found")
		return
	}

	result := &store.Result{
		Transactions: res.Transactions,
		Summaries:    res.Summaries,
		Metadata:     store.BuildMetadata(res, time.Now().UTC()),
	}
	if err := s.store.SaveResult(ctx, userID(r), period, result); err != nil {
		s.log.Error().Err(err).Str("period", period.Key()).Msg("saving upload")
		writeError(w, http.StatusInternalServerError, "failed to persist results")
		return
	}

	writeJSON(w, http.StatusOK, uploadResponse{
		Month:       period.Label(),
		Rows:        result.Metadata.Rows,
		Dropped:     res.Dropped,
		Degraded:    res.Degraded,
		TotalSpent:  result.Metadata.TotalSpent,
		TotalIncome: result.Metadata.TotalIncome,
		Categories:  result.Metadata.Categories,
		SummaryRows: len(res.Summaries),
	})
}

type transactionJSON struct {
	Date        string `json:"date"`
	Description string `json:"description"`
	Debit       string `json:"debit_amount"`
	Credit      string `json:"credit_amount"`
	Balance     string `json:"balance,omitempty"`
	Category    string `json:"category"`
	Month       string `json:"month"`
}

type summaryJSON struct {
	Month            string `json:"month"`
	Category         string `json:"category"`
	TotalSpent       string `json:"total_spent"`
	TotalIncome      string `json:"total_income"`
	TransactionCount int    `json:"transaction_count"`
}

type dataResponse struct {
	Month        string            `json:"month"`
	Transactions []transactionJSON `json:"transactions"`
	Summaries    []summaryJSON     `json:"summaries"`
}

func (s *Server) handleData(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	period, err := parsePeriod(vars["year"], vars["month"])
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := s.store.LoadResult(r.Context(), userID(r), period)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "no data for requested month")
		return
	}
	if err != nil {
		s.log.Error().Err(err).Str("period", period.Key()).Msg("loading data")
		writeError(w, http.StatusInternalServerError, "failed to load data")
		return
	}

	resp := dataResponse{
		Month:        period.Label(),
		Transactions: make([]transactionJSON, 0, len(res.Transactions)),
		Summaries:    make([]summaryJSON, 0, len(res.Summaries)),
	}
	for _, tx := range res.Transactions {
		t := transactionJSON{
			Date:        tx.Date.Format(statement.DateLayout),
			Description: tx.Description,
			Debit:       tx.Debit.String(),
			Credit:      tx.Credit.String(),
			Category:    string(tx.Category),
			Month:       tx.Month,
		}
		if tx.Balance.Valid {
			t.Balance = tx.Balance.Decimal.String()
		}
		resp.Transactions = append(resp.Transactions, t)
	}
	for _, sum := range res.Summaries {
		resp.Summaries = append(resp.Summaries, summaryJSON{
			Month:            sum.Month,
			Category:         string(sum.Category),
			TotalSpent:       sum.TotalSpent.String(),
			TotalIncome:      sum.TotalIncome.String(),
			TransactionCount: sum.TransactionCount,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleMonths(w http.ResponseWriter, r *http.Request) {
	periods, err := s.store.ListPeriods(r.Context(), userID(r))
	if err != nil {
		s.log.Error().Err(err).Msg("listing months")
		writeError(w, http.StatusInternalServerError, "failed to list months")
		return
	}
	months := make([]string, 0, len(periods))
	for _, p := range periods {
		months = append(months, p.Label())
	}
	writeJSON(w, http.StatusOK, map[string][]string{"months": months})
}
