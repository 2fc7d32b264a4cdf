package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/Clark-Hu/filmfeud/internal/diary"
)

// Config captures all runtime configuration derived from environment variables.
type Config struct {
	Port             string
	AuthToken        string
	DBURL            string
	ReadTimeoutSecs  int
	WriteTimeoutSecs int
	IdleTimeoutSecs  int

	DBMaxConns        int
	DBMinConns        int
	DBMaxIdleSecs     int
	DBMaxLifeSecs     int
	DBConnTimeoutSecs int
	DBStatementCache  int

	LetterboxdBaseURL  string
	ListingLayout      diary.Layout
	ScrapeTimeoutSecs  int
	ScrapeRatePerSec   float64
	ScrapeBurst        int
	PageConcurrency    int
	AllowPartialDiary  bool
	CompareTimeoutSecs int

	QuipURL         string
	QuipAPIKey      string
	QuipModel       string
	QuipTimeoutSecs int

	CacheTTLSecs   int
	ValkeyAddr     string
	ValkeyPassword string

	LogLevel  string
	LogPretty bool
}

// QuipsEnabled reports whether a generation key is configured.
func (c Config) QuipsEnabled() bool { return c.QuipAPIKey != "" }

// Load reads the server configuration. DB_URL is required.
func Load() (Config, error) {
	cfg, err := LoadCLI()
	if err != nil {
		return Config{}, err
	}
	if cfg.DBURL == "" {
		return Config{}, fmt.Errorf("DB_URL is required")
	}
	return cfg, nil
}

// LoadCLI reads the configuration without requiring a database. A .env file
// in the working directory is applied first when present; real environment
// variables win.
func LoadCLI() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Port:             getEnv("PORT", "8080"),
		AuthToken:        os.Getenv("AUTH_TOKEN"),
		DBURL:            os.Getenv("DB_URL"),
		ReadTimeoutSecs:  getEnvInt("SERVER_READ_TIMEOUT", 15),
		WriteTimeoutSecs: getEnvInt("SERVER_WRITE_TIMEOUT", 60),
		IdleTimeoutSecs:  getEnvInt("SERVER_IDLE_TIMEOUT", 60),

		DBMaxConns:        getEnvInt("DB_MAX_CONNS", 20),
		DBMinConns:        getEnvInt("DB_MIN_CONNS", 2),
		DBMaxIdleSecs:     getEnvInt("DB_MAX_CONN_IDLE_SECS", 300),
		DBMaxLifeSecs:     getEnvInt("DB_MAX_CONN_LIFETIME_SECS", 3600),
		DBConnTimeoutSecs: getEnvInt("DB_CONN_TIMEOUT_SECS", 10),
		DBStatementCache:  getEnvInt("DB_STATEMENT_CACHE_CAPACITY", 256),

		LetterboxdBaseURL:  getEnv("LETTERBOXD_BASE_URL", "https://letterboxd.com/"),
		ScrapeTimeoutSecs:  getEnvInt("SCRAPE_TIMEOUT_SECS", 30),
		ScrapeRatePerSec:   getEnvFloat("SCRAPE_RATE_PER_SEC", 4),
		ScrapeBurst:        getEnvInt("SCRAPE_BURST", 4),
		PageConcurrency:    getEnvInt("PAGE_CONCURRENCY", 6),
		AllowPartialDiary:  getEnvBool("ALLOW_PARTIAL_DIARY", false),
		CompareTimeoutSecs: getEnvInt("COMPARE_TIMEOUT_SECS", 60),

		QuipURL:         getEnv("QUIP_URL", "https://api.openai.com/v1"),
		QuipAPIKey:      os.Getenv("QUIP_API_KEY"),
		QuipModel:       getEnv("QUIP_MODEL", "gpt-4o-mini"),
		QuipTimeoutSecs: getEnvInt("QUIP_TIMEOUT_SECS", 20),

		CacheTTLSecs:   getEnvInt("CACHE_TTL_SECS", 86400),
		ValkeyAddr:     os.Getenv("VALKEY_ADDR"),
		ValkeyPassword: os.Getenv("VALKEY_PASSWORD"),

		LogLevel:  strings.ToLower(getEnv("LOG_LEVEL", "info")),
		LogPretty: getEnvBool("LOG_PRETTY", false),
	}

	layout, err := diary.ParseLayout(getEnv("LISTING_LAYOUT", string(diary.LayoutDiary)))
	if err != nil {
		return Config{}, fmt.Errorf("LISTING_LAYOUT: %w", err)
	}
	cfg.ListingLayout = layout

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (cfg Config) validate() error {
	positive := []struct {
		key   string
		value int
	}{
		{"DB_MAX_CONNS", cfg.DBMaxConns},
		{"SCRAPE_TIMEOUT_SECS", cfg.ScrapeTimeoutSecs},
		{"SCRAPE_BURST", cfg.ScrapeBurst},
		{"PAGE_CONCURRENCY", cfg.PageConcurrency},
		{"COMPARE_TIMEOUT_SECS", cfg.CompareTimeoutSecs},
		{"QUIP_TIMEOUT_SECS", cfg.QuipTimeoutSecs},
	}
	for _, p := range positive {
		if p.value <= 0 {
			return fmt.Errorf("%s must be positive", p.key)
		}
	}
	if cfg.ScrapeRatePerSec <= 0 {
		return fmt.Errorf("SCRAPE_RATE_PER_SEC must be positive")
	}
	if cfg.DBMinConns < 0 {
		return fmt.Errorf("DB_MIN_CONNS must be non-negative")
	}
	if cfg.DBMinConns > cfg.DBMaxConns {
		return fmt.Errorf("DB_MIN_CONNS cannot exceed DB_MAX_CONNS")
	}
	if cfg.DBStatementCache < 0 {
		return fmt.Errorf("DB_STATEMENT_CACHE_CAPACITY must be non-negative")
	}
	if cfg.CacheTTLSecs < 0 {
		return fmt.Errorf("CACHE_TTL_SECS must be non-negative")
	}
	if u, err := url.Parse(cfg.LetterboxdBaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("LETTERBOXD_BASE_URL must be an absolute url")
	}
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("LOG_LEVEL must be one of debug, info, warn, error")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseFloat(val, 64); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseBool(val); err == nil {
			return parsed
		}
	}
	return fallback
}
