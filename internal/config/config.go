package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Spok95/practice-fund/internal/models"
	"github.com/Spok95/practice-fund/internal/rules"
)

var ErrMissing = errors.New("required env is empty")

type Config struct {
	DatabaseURL string
	Location    *time.Location
	HTTPAddr    string
	LogLevel    string
	Env         string // dev|prod
	SentryDSN   string

	// вход администратора; без хеша API работает только на чтение
	AdminPasswordHash string
	TokenSecret       string
	TokenTTL          time.Duration

	// уведомления в Telegram; пустой токен — выключены
	BotToken      string
	NotifyChatIDs []int64

	Rates rules.Rates
}

// Load читает окружение. .env подхватывается раньше, в cmd.
func Load() (*Config, error) {
	dsn, err := requireEnv("DATABASE_URL")
	if err != nil {
		return nil, err
	}

	tz := getenv("TZ", "Europe/Moscow")
	loc, err := time.LoadLocation(tz)
	if err != nil {
		loc = time.Local
	}

	ttl, err := time.ParseDuration(getenv("TOKEN_TTL", "12h"))
	if err != nil || ttl <= 0 {
		return nil, fmt.Errorf("TOKEN_TTL: bad duration %q", os.Getenv("TOKEN_TTL"))
	}

	chatIDs, err := parseIDs(os.Getenv("NOTIFY_CHAT_IDS"))
	if err != nil {
		return nil, fmt.Errorf("NOTIFY_CHAT_IDS: %w", err)
	}

	rates, err := loadRates(rules.DefaultRates())
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		DatabaseURL:       dsn,
		Location:          loc,
		HTTPAddr:          getenv("HTTP_ADDR", ":8080"),
		LogLevel:          getenv("LOG_LEVEL", "info"),
		Env:               getenv("ENV", "dev"),
		SentryDSN:         os.Getenv("SENTRY_DSN"),
		AdminPasswordHash: os.Getenv("ADMIN_PASSWORD_HASH"),
		TokenSecret:       os.Getenv("TOKEN_SECRET"),
		TokenTTL:          ttl,
		BotToken:          os.Getenv("BOT_TOKEN"),
		NotifyChatIDs:     chatIDs,
		Rates:             rates,
	}
	if cfg.AdminPasswordHash != "" && cfg.TokenSecret == "" {
		return nil, fmt.Errorf("TOKEN_SECRET: %w (ADMIN_PASSWORD_HASH is set)", ErrMissing)
	}
	return cfg, nil
}

// loadRates переопределяет суммы правил из RATE_*; значения — в рублях, "12.50".
func loadRates(r rules.Rates) (rules.Rates, error) {
	fields := []struct {
		key string
		dst *models.Money
	}{
		{"RATE_TREASURER_SALARY", &r.TreasurerSalary},
		{"RATE_CLEAN_REWARD", &r.CleanReward},
		{"RATE_PER_ABSENT_INFORMED", &r.PerAbsentInformed},
		{"RATE_LATE_FINE", &r.LateFine},
		{"RATE_LEADER_LATE_FINE", &r.LeaderLateFine},
		{"RATE_ABSENT_FINE_OFFLINE", &r.AbsentFineOffline},
		{"RATE_ABSENT_FINE_ONLINE", &r.AbsentFineOnline},
		{"RATE_LEADER_ABSENT_FINE", &r.LeaderAbsentFine},
	}
	for _, f := range fields {
		v := strings.TrimSpace(os.Getenv(f.key))
		if v == "" {
			continue
		}
		m, err := models.ParseMoney(v)
		if err != nil {
			return r, fmt.Errorf("%s: %w", f.key, err)
		}
		if m < 0 {
			return r, fmt.Errorf("%s: rate must not be negative", f.key)
		}
		*f.dst = m
	}
	return r, nil
}

func requireEnv(k string) (string, error) {
	v := os.Getenv(k)
	if v == "" {
		return "", fmt.Errorf("%s: %w", k, ErrMissing)
	}
	return v, nil
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func parseIDs(s string) ([]int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	parts := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' })
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
