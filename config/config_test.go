package config

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
)

func env(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestFromEnv_Defaults(t *testing.T) {
	cfg := FromEnv(env(nil))
	assert.Equal(t, AppConfig{
		Port:                  "8080",
		DBPath:                "cancelflow.db",
		LogLevel:              "info",
		LogFormat:             "console",
		DownsellDiscountCents: 1000,
		EnableDevLogin:        true,
	}, cfg)
}

func TestFromEnv_Overrides(t *testing.T) {
	cfg := FromEnv(env(map[string]string{
		"PORT":                    "9000",
		"FLOW_RULES_PATH":         "rules.yaml",
		"DOWNSELL_DISCOUNT_CENTS": "500",
		"ENABLE_DEV_LOGIN":        "false",
		"ENABLE_HEADER_AUTH":      "true",
	}))
	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, "rules.yaml", cfg.FlowRulesPath)
	assert.Equal(t, 500, cfg.DownsellDiscountCents)
	assert.False(t, cfg.EnableDevLogin)
	assert.True(t, cfg.EnableHeaderAuth)

	cfg = FromEnv(env(map[string]string{"DOWNSELL_DISCOUNT_CENTS": "ten"}))
	assert.Equal(t, 1000, cfg.DownsellDiscountCents)
}

func TestSetupLogging(t *testing.T) {
	prevLogger, prevLevel := log.Logger, zerolog.GlobalLevel()
	t.Cleanup(func() {
		log.Logger = prevLogger
		zerolog.SetGlobalLevel(prevLevel)
	})

	var buf bytes.Buffer
	AppConfig{LogLevel: "warn", LogFormat: "json"}.SetupLogging(&buf)
	log.Info().Msg("hidden")
	log.Warn().Str("k", "v").Msg("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"k":"v"`)
	assert.Contains(t, buf.String(), `"level":"warn"`)
}
