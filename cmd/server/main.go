package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/rs/cors"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/RishulGupta/Finance-Coach-AI/internal/category"
	"github.com/RishulGupta/Finance-Coach-AI/internal/config"
	"github.com/RishulGupta/Finance-Coach-AI/internal/logger"
	"github.com/RishulGupta/Finance-Coach-AI/internal/server"
	"github.com/RishulGupta/Finance-Coach-AI/internal/statement"
	"github.com/RishulGupta/Finance-Coach-AI/internal/store"
)

func main() {
	ctx := context.Background()
	cfg := config.Load()
	log := logger.New()

	var st store.Store
	if cfg.UseMemoryStore || cfg.ProjectID == "" {
		log.Info().Msg("using in-memory store for local development")
		st = store.NewMemoryStore()
	} else {
		var err error
		st, err = store.NewFirestoreStore(ctx, cfg.ProjectID, cfg.StorageBucket)
		if err != nil {
			log.Fatal().Err(err).Msg("creating firestore store")
		}
	}
	defer st.Close()

	var fallback category.Fallback
	if cfg.GeminiAPIKey != "" {
		gf, err := category.NewGeminiFallback(ctx, cfg.GeminiAPIKey)
		if err != nil {
			log.Fatal().Err(err).Msg("creating gemini fallback")
		}
		if cfg.GeminiModel != "" {
			gf.SetModel(cfg.GeminiModel)
		}
		fallback = gf
		log.Info().Msg("gemini fallback classification enabled")
	} else {
		log.Warn().Msg("GEMINI_API_KEY not set, unmatched descriptions resolve to Other")
	}

	classifier := category.NewClassifier(category.DefaultRules, fallback, category.Config{
		Workers: cfg.ClassifierWorkers,
		Timeout: cfg.FallbackTimeout,
	})
	pipeline := statement.NewPipeline(classifier)
	srv := server.New(pipeline, st, log)

	c := cors.New(cors.Options{
		AllowedOrigins: []string{
			"http://localhost:3000",
			"http://127.0.0.1:3000",
		},
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodOptions,
		},
		AllowedHeaders: []string{
			"Accept",
			"Authorization",
			"Content-Type",
			"X-User-ID",
		},
		AllowCredentials: true,
	})

	httpSrv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Port),
		Handler: h2c.NewHandler(c.Handler(srv), &http2.Server{}),
	}

	log.Info().Str("port", cfg.Port).Msg("starting server")
	if err := httpSrv.ListenAndServe(); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
