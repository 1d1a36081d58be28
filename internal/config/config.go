package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	BotToken    string
	AppToken    string
	LedgerURL   string
	Port        int
	DatabaseURL string // empty disables the journal
	Timezone    string
	LogMode     string
	SlackDebug  bool

	LedgerTimeout  time.Duration
	HandlerTimeout time.Duration

	LookupRate  float64 // users.info calls per second
	LookupBurst int

	GreetingKeyword string
}

// Load reads .env (if present) and the process environment.
func Load() (Config, error) {
	_ = godotenv.Load()
	return FromEnv()
}

// LoadFile is Load with an explicit dotenv file, which must exist.
func LoadFile(path string) (Config, error) {
	if err := godotenv.Load(path); err != nil {
		return Config{}, fmt.Errorf("load %s: %w", path, err)
	}
	return FromEnv()
}

// FromEnv builds a Config from the process environment only.
func FromEnv() (Config, error) {
	cfg := Config{
		BotToken:        strings.TrimSpace(os.Getenv("SLACK_BOT_TOKEN")),
		AppToken:        strings.TrimSpace(os.Getenv("SLACK_APP_TOKEN")),
		LedgerURL:       str("LEDGER_URL", "http://127.0.0.1:3000"),
		Port:            integer("PORT", 8080),
		DatabaseURL:     strings.TrimSpace(os.Getenv("DATABASE_URL")),
		Timezone:        str("TZ", "Europe/Amsterdam"),
		LogMode:         str("LOG_MODE", "dev"),
		SlackDebug:      boolean("SLACK_DEBUG", false),
		LedgerTimeout:   time.Duration(integer("LEDGER_TIMEOUT_SECONDS", 10)) * time.Second,
		HandlerTimeout:  time.Duration(integer("HANDLER_TIMEOUT_SECONDS", 120)) * time.Second,
		LookupRate:      float("LOOKUP_RATE_PER_SECOND", 2),
		LookupBurst:     integer("LOOKUP_BURST", 10),
		GreetingKeyword: str("GREETING_KEYWORD", "hello"),
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	var errs []error
	if c.BotToken == "" {
		errs = append(errs, errors.New("SLACK_BOT_TOKEN is required"))
	}
	if c.AppToken != "" && !strings.HasPrefix(c.AppToken, "xapp-") {
		errs = append(errs, errors.New("SLACK_APP_TOKEN must be an app-level token (xapp-...)"))
	}
	if !strings.HasPrefix(c.LedgerURL, "http://") && !strings.HasPrefix(c.LedgerURL, "https://") {
		errs = append(errs, fmt.Errorf("LEDGER_URL %q is not an http(s) address", c.LedgerURL))
	}
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT %d out of range", c.Port))
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("TZ: %w", err))
	}
	if c.LookupRate <= 0 {
		errs = append(errs, errors.New("LOOKUP_RATE_PER_SECOND must be positive"))
	}
	if strings.TrimSpace(c.GreetingKeyword) == "" {
		errs = append(errs, errors.New("GREETING_KEYWORD must not be empty"))
	}
	return errors.Join(errs...)
}

// Location is the zone used for human-readable timestamps.
func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	return cfg
}

func str(name, def string) string {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return def
	}
	return v
}

func integer(name string, def int) int {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

func float(name string, def float64) float64 {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

func boolean(name string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}
