package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

type Config struct {
	BotToken       string // пусто — бот не запускается
	DatabaseURL    string
	Store          string // postgres|memory
	AdminIDs       []int64
	Location       *time.Location
	HTTPAddr       string
	LogLevel       string
	Env            string // dev|prod
	SentryDSN      string
	NotifyInterval time.Duration
	NotifyBatch    int
	DBTimeout      time.Duration
}

// Load читает .env (если есть), затем переменные окружения.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv — без .env; удобно в тестах.
func FromEnv() (*Config, error) {
	tz := getenv("TZ", "Asia/Kuala_Lumpur")
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("TZ: %w", err)
	}

	adminIDs, err := parseIDs(os.Getenv("ADMIN_IDS"))
	if err != nil {
		return nil, fmt.Errorf("ADMIN_IDS: %w", err)
	}

	interval, err := getDuration("NOTIFY_INTERVAL", time.Minute)
	if err != nil {
		return nil, err
	}
	dbTimeout, err := getDuration("DB_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, err
	}
	batch, err := getInt("NOTIFY_BATCH", 100)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		BotToken:       os.Getenv("BOT_TOKEN"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		Store:          strings.ToLower(getenv("STORE", StorePostgres)),
		AdminIDs:       adminIDs,
		Location:       loc,
		HTTPAddr:       getenv("HTTP_ADDR", ":8080"),
		LogLevel:       getenv("LOG_LEVEL", "info"),
		Env:            getenv("ENV", "dev"),
		SentryDSN:      os.Getenv("SENTRY_DSN"),
		NotifyInterval: interval,
		NotifyBatch:    batch,
		DBTimeout:      dbTimeout,
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Store {
	case StorePostgres:
		if c.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required when STORE=postgres")
		}
	case StoreMemory:
	default:
		return fmt.Errorf("STORE: unknown backend %q", c.Store)
	}
	if c.NotifyBatch <= 0 {
		return fmt.Errorf("NOTIFY_BATCH must be positive, got %d", c.NotifyBatch)
	}
	return nil
}

// IsAdminChat — chat ID из ADMIN_IDS.
func (c *Config) IsAdminChat(chatID int64) bool {
	for _, id := range c.AdminIDs {
		if id == chatID {
			return true
		}
	}
	return false
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getDuration(k string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(k)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", k, err)
	}
	return d, nil
}

func getInt(k string, def int) (int, error) {
	v := os.Getenv(k)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", k, err)
	}
	return n, nil
}

// parseIDs принимает CSV, пробелы, ';' и переносы строк.
func parseIDs(s string) ([]int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	parts := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == ';' || r == '\n' || r == '\t'
	})
	out := make([]int64, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("bad id %q: %w", p, err)
		}
		out = append(out, n)
	}
	return out, nil
}
