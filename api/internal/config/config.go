package config

import (
	"log"
	"os"
	"strconv"
)

type Config struct {
	Port string

	GeminiAPIKey string
	GeminiModel  string
	OpenAIAPIKey string
	OpenAIModel  string
	OpenAIBase   string

	DatabaseURL string
	JWTSecret   string

	SearchAPIKey   string
	SearchEngineID string

	DailyScanLimit int
}

func mustEnv(k string) string {
	v := os.Getenv(k)
	if v == "" {
		log.Fatalf("missing required env %s", k)
	}
	return v
}

func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getEnvInt(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return def
}

func Load() *Config {
	return &Config{
		Port: getEnv("PORT", "8000"),

		GeminiAPIKey: mustEnv("GEMINI_API_KEY"),
		GeminiModel:  getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		OpenAIAPIKey: getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:  getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		OpenAIBase:   getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),

		// DATABASE_URL is optional: without it sessions and quotas are not
		// persisted, the pipeline itself still works.
		DatabaseURL: getEnv("DATABASE_URL", ""),
		JWTSecret:   mustEnv("JWT_SECRET"),

		// Search credentials are optional; the web-search stage serves
		// deterministic mock results when they are unset.
		SearchAPIKey:   getEnv("SEARCH_API_KEY", ""),
		SearchEngineID: getEnv("SEARCH_ENGINE_ID", ""),

		DailyScanLimit: getEnvInt("DAILY_SCAN_LIMIT", 3),
	}
}
