package main

import (
	"context"
	"net/http"
	"os"
	"strings"

	"go.uber.org/zap"

	"fixmate/api/internal/config"
	"fixmate/api/internal/handle"
	"fixmate/api/internal/llm"
	"fixmate/api/internal/llm/gemini"
	"fixmate/api/internal/llm/openai"
	"fixmate/api/internal/search"
	"fixmate/api/internal/store"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()
	log := logger.Sugar()

	cfg := config.Load()
	if p := strings.TrimSpace(os.Getenv("PORT")); p != "" {
		cfg.Port = p
	}

	ctx := context.Background()

	engines := &llm.Engines{
		Gemini: gemini.New(cfg.GeminiAPIKey, cfg.GeminiModel),
	}
	if cfg.OpenAIAPIKey != "" {
		engines.OpenAI = openai.New(cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.OpenAIBase)
	}

	var (
		quotas   handle.QuotaGate
		sessions handle.SessionStore
		refs     handle.ReferenceLister
	)
	if cfg.DatabaseURL != "" {
		if err := store.Migrate(cfg.DatabaseURL); err != nil {
			log.Fatalw("migrations failed", "err", err)
		}
		db, err := store.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalw("db open failed", "err", err)
		}
		defer db.Close()
		quotas = store.NewQuotaRepo(db)
		sessions = store.NewSessionRepo(db)
		refs = store.NewReferenceRepo(db)
	} else {
		log.Warn("DATABASE_URL not set; sessions and quotas disabled")
	}

	searcher, err := search.New(ctx, cfg.SearchAPIKey, cfg.SearchEngineID)
	if err != nil {
		log.Fatalw("search client failed", "err", err)
	}

	h := handle.New(engines, log, cfg.JWTSecret, cfg.DailyScanLimit, quotas, sessions, refs, searcher)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	h.Register(mux)

	addr := ":" + cfg.Port
	log.Infow("fixmate listening", "addr", addr)
	log.Fatal(http.ListenAndServe(addr, mux))
}
