package config

import (
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type AppConfig struct {
	Port                  string
	DBPath                string
	LogLevel              string
	LogFormat             string // console|json
	FlowRulesPath         string
	DownsellDiscountCents int
	EnableDevLogin        bool
	EnableHeaderAuth      bool
}

// Load reads .env when present, then the environment.
func Load() AppConfig {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Warn().Err(err).Msg("[cfg] loading .env")
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds the config from a lookup function; unset keys take defaults.
func FromEnv(getenv func(string) string) AppConfig {
	get := func(k, def string) string {
		if v := strings.TrimSpace(getenv(k)); v != "" {
			return v
		}
		return def
	}
	discount, err := strconv.Atoi(get("DOWNSELL_DISCOUNT_CENTS", "1000"))
	if err != nil || discount < 0 {
		log.Warn().Str("value", getenv("DOWNSELL_DISCOUNT_CENTS")).Msg("[cfg] invalid DOWNSELL_DISCOUNT_CENTS, using 1000")
		discount = 1000
	}
	return AppConfig{
		Port:                  get("PORT", "8080"),
		DBPath:                get("DB_PATH", "cancelflow.db"),
		LogLevel:              get("LOG_LEVEL", "info"),
		LogFormat:             get("LOG_FORMAT", "console"),
		FlowRulesPath:         get("FLOW_RULES_PATH", ""),
		DownsellDiscountCents: discount,
		EnableDevLogin:        get("ENABLE_DEV_LOGIN", "true") == "true",
		EnableHeaderAuth:      get("ENABLE_HEADER_AUTH", "false") == "true",
	}
}

// SetupLogging points the global zerolog logger at w using the configured
// level and format.
func (c AppConfig) SetupLogging(w io.Writer) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(c.LogLevel))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
	zerolog.TimeFieldFormat = time.RFC3339
	if c.LogFormat == "json" {
		log.Logger = zerolog.New(w).With().Timestamp().Logger()
		return
	}
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}).With().Timestamp().Logger()
}
