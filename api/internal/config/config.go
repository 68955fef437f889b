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
	"gopkg.in/yaml.v3"

	"calc-agent/api/internal/validator"
)

// PlaceholderAPIKey is the value shipped in the example .env file.
const PlaceholderAPIKey = "your_gemini_api_key"

type Config struct {
	Port string `yaml:"port"`

	GeminiAPIKey            string  `yaml:"gemini_api_key"`
	GeminiModel             string  `yaml:"gemini_model"`
	RateLimitCallsPerMinute int     `yaml:"rate_limit_calls_per_minute"`
	Temperature             float32 `yaml:"temperature"`
	TopP                    float32 `yaml:"top_p"`
	MaxOutputTokens         int32   `yaml:"max_output_tokens"`
	MaxRetries              int     `yaml:"max_retries"`

	MaxExpressionLength int    `yaml:"max_expression_length"`
	DefaultCurrency     string `yaml:"default_currency"`
	LogLevel            string `yaml:"log_level"`
	PlotDir             string `yaml:"plot_dir"`
	PromptDir           string `yaml:"prompt_dir"`

	DatabaseURL string        `yaml:"database_url"`
	RedisURL    string        `yaml:"redis_url"`
	CacheTTL    time.Duration `yaml:"cache_ttl"`

	TelegramBotToken string `yaml:"telegram_bot_token"`
	WebhookURL       string `yaml:"webhook_url"`

	HTTPRatePerSecond float64       `yaml:"http_rate_per_second"`
	HTTPBurst         int           `yaml:"http_burst"`
	RequestTimeout    time.Duration `yaml:"request_timeout"`
}

func Default() *Config {
	return &Config{
		Port:                    "8000",
		GeminiModel:             "gemini-2.5-flash",
		RateLimitCallsPerMinute: 60,
		Temperature:             0.1,
		TopP:                    0.95,
		MaxOutputTokens:         2048,
		MaxRetries:              3,
		MaxExpressionLength:     1000,
		DefaultCurrency:         "TRY",
		LogLevel:                "info",
		PlotDir:                 "plots",
		CacheTTL:                time.Hour,
		HTTPRatePerSecond:       5,
		HTTPBurst:               10,
		RequestTimeout:          70 * time.Second,
	}
}

// Load reads .env (if present), then the optional YAML file at path, then the
// process environment. Later sources win.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("config: .env not loaded: %v", err)
	}

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations the model client cannot start with.
func (c *Config) Validate() error {
	key := strings.TrimSpace(c.GeminiAPIKey)
	switch {
	case key == "":
		return errors.New("GEMINI_API_KEY is required")
	case key == PlaceholderAPIKey:
		return errors.New("GEMINI_API_KEY still holds the placeholder value")
	case c.RateLimitCallsPerMinute <= 0:
		return fmt.Errorf("RATE_LIMIT_CALLS_PER_MINUTE must be positive, got %d", c.RateLimitCallsPerMinute)
	case c.MaxRetries <= 0:
		return fmt.Errorf("MAX_RETRIES must be positive, got %d", c.MaxRetries)
	case c.Temperature < 0 || c.Temperature > 2:
		return fmt.Errorf("TEMPERATURE must be within [0, 2], got %v", c.Temperature)
	case c.TopP <= 0 || c.TopP > 1:
		return fmt.Errorf("TOP_P must be within (0, 1], got %v", c.TopP)
	case c.MaxOutputTokens <= 0:
		return fmt.Errorf("MAX_OUTPUT_TOKENS must be positive, got %d", c.MaxOutputTokens)
	}
	if _, err := validator.Currency(c.DefaultCurrency); err != nil {
		return fmt.Errorf("DEFAULT_CURRENCY: %w", err)
	}
	return nil
}

func (c *Config) Debug() bool { return strings.EqualFold(c.LogLevel, "debug") }

func getEnv(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func applyEnv(cfg *Config) error {
	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.GeminiAPIKey = getEnv("GEMINI_API_KEY", cfg.GeminiAPIKey)
	cfg.GeminiModel = getEnv("GEMINI_MODEL", cfg.GeminiModel)
	cfg.DefaultCurrency = strings.ToUpper(getEnv("DEFAULT_CURRENCY", cfg.DefaultCurrency))
	cfg.LogLevel = strings.ToLower(getEnv("LOG_LEVEL", cfg.LogLevel))
	cfg.PlotDir = getEnv("PLOT_DIR", cfg.PlotDir)
	cfg.PromptDir = getEnv("PROMPT_DIR", cfg.PromptDir)
	cfg.DatabaseURL = getEnv("DATABASE_URL", cfg.DatabaseURL)
	cfg.RedisURL = getEnv("REDIS_URL", cfg.RedisURL)
	cfg.TelegramBotToken = getEnv("TELEGRAM_BOT_TOKEN", cfg.TelegramBotToken)
	cfg.WebhookURL = getEnv("WEBHOOK_URL", cfg.WebhookURL)

	var errs []error
	num := func(k string, set func(string) error) {
		if v := strings.TrimSpace(os.Getenv(k)); v != "" {
			if err := set(v); err != nil {
				errs = append(errs, fmt.Errorf("config: %s=%q: %w", k, v, err))
			}
		}
	}
	num("RATE_LIMIT_CALLS_PER_MINUTE", func(v string) (err error) {
		cfg.RateLimitCallsPerMinute, err = strconv.Atoi(v)
		return
	})
	num("TEMPERATURE", func(v string) error {
		f, err := strconv.ParseFloat(v, 32)
		cfg.Temperature = float32(f)
		return err
	})
	num("TOP_P", func(v string) error {
		f, err := strconv.ParseFloat(v, 32)
		cfg.TopP = float32(f)
		return err
	})
	num("MAX_OUTPUT_TOKENS", func(v string) error {
		n, err := strconv.ParseInt(v, 10, 32)
		cfg.MaxOutputTokens = int32(n)
		return err
	})
	num("MAX_RETRIES", func(v string) (err error) {
		cfg.MaxRetries, err = strconv.Atoi(v)
		return
	})
	num("MAX_EXPRESSION_LENGTH", func(v string) (err error) {
		cfg.MaxExpressionLength, err = strconv.Atoi(v)
		return
	})
	num("CACHE_TTL", func(v string) (err error) {
		cfg.CacheTTL, err = time.ParseDuration(v)
		return
	})
	num("HTTP_RATE_PER_SECOND", func(v string) (err error) {
		cfg.HTTPRatePerSecond, err = strconv.ParseFloat(v, 64)
		return
	})
	num("HTTP_BURST", func(v string) (err error) {
		cfg.HTTPBurst, err = strconv.Atoi(v)
		return
	})
	num("REQUEST_TIMEOUT", func(v string) (err error) {
		cfg.RequestTimeout, err = time.ParseDuration(v)
		return
	})
	return errors.Join(errs...)
}
