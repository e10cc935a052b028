// Command ingest runs the statement pipeline on a local file and writes the
// categorized transactions and monthly summary CSVs next to it. Useful for
// checking how a new bank's export parses without standing up the server.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/RishulGupta/Finance-Coach-AI/internal/category"
	"github.com/RishulGupta/Finance-Coach-AI/internal/config"
	"github.com/RishulGupta/Finance-Coach-AI/internal/logger"
	"github.com/RishulGupta/Finance-Coach-AI/internal/statement"
)

func main() {
	outDir := flag.String("out", ".", "directory for output CSVs")
	useGemini := flag.Bool("gemini", false, "enable Gemini fallback classification (needs GEMINI_API_KEY)")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: ingest [-out dir] [-gemini] <statement.csv|xlsx|xls>")
		os.Exit(2)
	}
	path := flag.Arg(0)

	log := logger.New()
	ctx := logger.WithContext(context.Background(), log)
	cfg := config.Load()

	var fallback category.Fallback
	if *useGemini {
		gf, err := category.NewGeminiFallback(ctx, cfg.GeminiAPIKey)
		if err != nil {
			log.Fatal().Err(err).Msg("creating gemini fallback")
		}
		fallback = gf
	}
	classifier := category.NewClassifier(category.DefaultRules, fallback, category.Config{
		Workers: cfg.ClassifierWorkers,
		Timeout: cfg.FallbackTimeout,
	})

	f, err := os.Open(path)
	if err != nil {
		log.Fatal().Err(err).Msg("opening statement")
	}
	defer f.Close()

	res := statement.NewPipeline(classifier).Process(ctx, f, filepath.Base(path))
	if len(res.Transactions) == 0 {
		log.Fatal().Str("code", string(res.FailureCode)).Msg("no transactions extracted")
	}

	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	txPath := filepath.Join(*outDir, base+"_categorized.csv")
	sumPath := filepath.Join(*outDir, base+"_summary.csv")
	if err := writeCSV(txPath, func(w *os.File) error {
		return statement.EncodeTransactionsCSV(w, res.Transactions)
	}); err != nil {
		log.Fatal().Err(err).Msg("writing transactions")
	}
	if err := writeCSV(sumPath, func(w *os.File) error {
		return statement.EncodeSummariesCSV(w, res.Summaries)
	}); err != nil {
		log.Fatal().Err(err).Msg("writing summary")
	}

	log.Info().
		Int("transactions", len(res.Transactions)).
		Int("dropped", res.Dropped).
		Int("degraded", res.Degraded).
		Str("transactions_csv", txPath).
		Str("summary_csv", sumPath).
		Msg("done")
}

func writeCSV(path string, encode func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := encode(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
