package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port string

	// Provider is the engine used when a request does not name one.
	Provider     string
	StrictSchema bool

	OpenAIAPIKey  string
	OpenAIModel   string
	OpenAIBaseURL string

	GeminiAPIKey string
	GeminiModel  string

	AnthropicAPIKey string
	AnthropicModel  string

	LogMode     string
	CORSOrigins []string
}

func getEnv(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func getBool(k string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Load reads .env (if present) and the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return FromEnv()
}

// FromEnv builds Config from the process environment only.
func FromEnv() (*Config, error) {
	cfg := &Config{
		Port: getEnv("PORT", "8000"),

		Provider:     strings.ToLower(getEnv("LLM_PROVIDER", "openai")),
		StrictSchema: getBool("LLM_STRICT_SCHEMA", true),

		OpenAIAPIKey:  getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:   getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		OpenAIBaseURL: getEnv("OPENAI_BASE_URL", ""),

		GeminiAPIKey: getEnv("GEMINI_API_KEY", ""),
		GeminiModel:  getEnv("GEMINI_MODEL", "gemini-2.5-flash"),

		AnthropicAPIKey: getEnv("ANTHROPIC_API_KEY", ""),
		AnthropicModel:  getEnv("ANTHROPIC_MODEL", "claude-haiku-4-5"),

		LogMode:     getEnv("LOG_MODE", "dev"),
		CORSOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "*")),
	}

	key, env, err := cfg.providerKey()
	if err != nil {
		return nil, err
	}
	if key == "" {
		return nil, fmt.Errorf("missing required env %s for LLM_PROVIDER=%s", env, cfg.Provider)
	}
	return cfg, nil
}

func (c *Config) providerKey() (key, env string, err error) {
	switch c.Provider {
	case "openai", "gpt", "chatgpt":
		return c.OpenAIAPIKey, "OPENAI_API_KEY", nil
	case "gemini", "google":
		return c.GeminiAPIKey, "GEMINI_API_KEY", nil
	case "anthropic", "claude":
		return c.AnthropicAPIKey, "ANTHROPIC_API_KEY", nil
	default:
		return "", "", fmt.Errorf("unknown LLM_PROVIDER %q", c.Provider)
	}
}

func (c *Config) Addr() string { return ":" + c.Port }
