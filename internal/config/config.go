package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Port     string `mapstructure:"PORT"`
	Env      string `mapstructure:"APP_ENV"`
	LogLevel string `mapstructure:"LOG_LEVEL"`

	IntakeQAPIKey          string `mapstructure:"INTAKEQ_API_KEY"`
	IntakeQBaseURL         string `mapstructure:"INTAKEQ_BASE_URL"`
	IntakeQQuestionnaireID string `mapstructure:"INTAKEQ_QUESTIONNAIRE_ID"`
	IntakeQTags            []string

	ResendAPIKey string `mapstructure:"RESEND_API_KEY"`
	MailHost     string `mapstructure:"MAIL_HOST"`
	MailPort     int    `mapstructure:"MAIL_PORT"`
	MailUser     string `mapstructure:"MAIL_USER"`
	MailPass     string `mapstructure:"MAIL_PASS"`
	MailFrom     string `mapstructure:"MAIL_FROM"`

	PracticeName  string `mapstructure:"PRACTICE_NAME"`
	PracticeInbox string `mapstructure:"PRACTICE_INBOX"`
	PracticePhone string `mapstructure:"PRACTICE_PHONE"`

	StripeSecretKey string `mapstructure:"STRIPE_SECRET_KEY"`

	CORSOrigins        []string
	RateLimitPerMinute int `mapstructure:"RATE_LIMIT_PER_MINUTE"`
	OutcomeHistorySize int `mapstructure:"OUTCOME_HISTORY_SIZE"`
	HTTPTimeoutSeconds int `mapstructure:"HTTP_TIMEOUT_SECONDS"`
}

var keys = []string{
	"PORT", "APP_ENV", "LOG_LEVEL",
	"INTAKEQ_API_KEY", "INTAKEQ_BASE_URL", "INTAKEQ_QUESTIONNAIRE_ID", "INTAKEQ_TAGS",
	"RESEND_API_KEY", "MAIL_HOST", "MAIL_PORT", "MAIL_USER", "MAIL_PASS", "MAIL_FROM",
	"PRACTICE_NAME", "PRACTICE_INBOX", "PRACTICE_PHONE",
	"STRIPE_SECRET_KEY",
	"CORS_ORIGINS", "RATE_LIMIT_PER_MINUTE", "OUTCOME_HISTORY_SIZE", "HTTP_TIMEOUT_SECONDS",
}

// Load reads .env when present, then the process environment. Missing
// vendor keys are not an error: the endpoints that need them report
// themselves as not configured.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("PORT", "8080")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("INTAKEQ_BASE_URL", "https://intakeq.com/api/v1")
	v.SetDefault("INTAKEQ_TAGS", "Website Booking,Online Intake")
	v.SetDefault("MAIL_PORT", 587)
	v.SetDefault("MAIL_FROM", "Healing Soulutions <bookings@healingsoulutions.care>")
	v.SetDefault("PRACTICE_NAME", "Healing Soulutions")
	v.SetDefault("PRACTICE_INBOX", "info@healingsoulutions.care")
	v.SetDefault("PRACTICE_PHONE", "(585) 747-2215")
	v.SetDefault("CORS_ORIGINS", "*")
	v.SetDefault("RATE_LIMIT_PER_MINUTE", 30)
	v.SetDefault("OUTCOME_HISTORY_SIZE", 20)
	v.SetDefault("HTTP_TIMEOUT_SECONDS", 30)

	for _, k := range keys {
		v.BindEnv(k)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.IntakeQTags = splitList(v.GetString("INTAKEQ_TAGS"))
	cfg.CORSOrigins = splitList(v.GetString("CORS_ORIGINS"))

	if cfg.HTTPTimeoutSeconds <= 0 {
		return nil, fmt.Errorf("HTTP_TIMEOUT_SECONDS must be positive, got %d", cfg.HTTPTimeoutSeconds)
	}
	return cfg, nil
}

func (c *Config) HTTPTimeout() time.Duration {
	return time.Duration(c.HTTPTimeoutSeconds) * time.Second
}

func (c *Config) RecordsConfigured() bool { return c.IntakeQAPIKey != "" }

func (c *Config) PaymentsConfigured() bool { return c.StripeSecretKey != "" }

// MailConfigured is true when either the Resend API or SMTP can deliver.
func (c *Config) MailConfigured() bool {
	return c.ResendAPIKey != "" || c.MailHost != ""
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
