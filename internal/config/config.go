package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	HTTPAddr string `validate:"required"`

	DBDriver   string `validate:"required,oneof=postgres sqlite"`
	DBHost     string
	DBPort     int `validate:"min=1,max=65535"`
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	SQLitePath string

	JWTSecret   string
	CORSOrigins []string

	LogLevel string `validate:"oneof=debug info warn error"`
	LogDev   bool

	Suggest SuggestConfig
}

// SuggestConfig holds the tunables of the suggestion endpoints.
type SuggestConfig struct {
	TopWords         int           `validate:"min=1"`
	MaxFollowUps     int           `validate:"min=0"`
	Threshold        float64       `validate:"min=0,max=1"`
	TopK             int           `validate:"min=1"`
	TargetCount      int           `validate:"min=1"`
	FetchTimeout     time.Duration `validate:"gt=0"`
	MaxCorpus        int           `validate:"min=0"`
	CaseSensitive    bool
	CompletionWindow time.Duration `validate:"min=0"`
}

var validate = validator.New()

// Load reads configuration from the environment. A .env file in the working
// directory is applied first when present; real env vars take precedence.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		HTTPAddr: envString("HTTP_ADDR", ":8080"),

		DBDriver:   envString("DB_DRIVER", "postgres"),
		DBHost:     os.Getenv("DB_HOST"),
		DBPort:     envInt("DB_PORT", 5432),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     os.Getenv("DB_NAME"),
		DBSSLMode:  envString("DB_SSLMODE", "disable"),
		SQLitePath: envString("SQLITE_PATH", "./tasks.db"),

		JWTSecret:   os.Getenv("JWT_SECRET"),
		CORSOrigins: envList("CORS_ORIGINS", []string{"*"}),

		LogLevel: strings.ToLower(envString("LOG_LEVEL", "info")),
		LogDev:   envBool("LOG_DEV", false),

		Suggest: SuggestConfig{
			TopWords:         envInt("SUGGEST_TOP_WORDS", 5),
			MaxFollowUps:     envInt("SUGGEST_MAX_FOLLOW_UPS", 0),
			Threshold:        envFloat("SUGGEST_THRESHOLD", 0.7),
			TopK:             envInt("SUGGEST_TOP_K", 3),
			TargetCount:      envInt("SUGGEST_TARGET_COUNT", 5),
			FetchTimeout:     envDuration("SUGGEST_FETCH_TIMEOUT", 5*time.Second),
			MaxCorpus:        envInt("SUGGEST_MAX_CORPUS", 2000),
			CaseSensitive:    envBool("SUGGEST_CASE_SENSITIVE", false),
			CompletionWindow: envDuration("SUGGEST_COMPLETION_WINDOW", 0),
		},
	}

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// DSN returns the driver specific data source name.
func (c *Config) DSN() string {
	if c.DBDriver == "sqlite" {
		return c.SQLitePath
	}
	return c.ConnString()
}

func (c *Config) ConnString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode,
	)
}

func envString(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v, err := strconv.Atoi(strings.TrimSpace(os.Getenv(key)))
	if err != nil {
		return fallback
	}
	return v
}

func envFloat(key string, fallback float64) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(os.Getenv(key)), 64)
	if err != nil {
		return fallback
	}
	return v
}

func envBool(key string, fallback bool) bool {
	v, err := strconv.ParseBool(strings.TrimSpace(os.Getenv(key)))
	if err != nil {
		return fallback
	}
	return v
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(strings.TrimSpace(os.Getenv(key)))
	if err != nil {
		return fallback
	}
	return v
}

func envList(key string, fallback []string) []string {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	var out []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
