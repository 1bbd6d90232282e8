package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Env            string
	ServiceName    string
	ServiceVersion string
	LogLevel       string

	GeminiAPIKey string

	RedisURL string

	SupabaseURL            string
	SupabaseServiceRoleKey string
	SupabaseBucket         string

	OtelExporterOTLPEndpoint string
	OtelExporterOTLPHeaders  string
	SentryDSN                string

	Port string

	Gemini     GeminiConfig
	Generation GenerationConfig
	UI         UIConfig
}

type GeminiConfig struct {
	TextModel  string `yaml:"text_model"`
	ImageModel string `yaml:"image_model"`
}

type GenerationConfig struct {
	RecipeCount  int           `yaml:"recipe_count"`
	TextTimeout  time.Duration `yaml:"text_timeout"`
	ImageTimeout time.Duration `yaml:"image_timeout"`
	MaxAttempts  int           `yaml:"max_attempts"`
}

type UIConfig struct {
	SessionTTL      time.Duration `yaml:"session_ttl"`
	RefreshInterval time.Duration `yaml:"refresh_interval"`
}

func Load() (*Config, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		apiKey = os.Getenv("API_KEY")
	}

	cfg := &Config{
		Env:                      os.Getenv("ENV"),
		ServiceName:              os.Getenv("SERVICE_NAME"),
		ServiceVersion:           os.Getenv("SERVICE_VERSION"),
		LogLevel:                 os.Getenv("LOG_LEVEL"),
		GeminiAPIKey:             apiKey,
		RedisURL:                 os.Getenv("REDIS_URL"),
		SupabaseURL:              os.Getenv("SUPABASE_URL"),
		SupabaseServiceRoleKey:   os.Getenv("SUPABASE_SERVICE_ROLE_KEY"),
		SupabaseBucket:           os.Getenv("SUPABASE_BUCKET"),
		OtelExporterOTLPEndpoint: os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		OtelExporterOTLPHeaders:  os.Getenv("OTEL_EXPORTER_OTLP_HEADERS"),
		SentryDSN:                os.Getenv("SENTRY_DSN"),
		Port:                     os.Getenv("PORT"),
	}

	path := os.Getenv("CONFIG_FILE")
	if path == "" {
		path = "config.yaml"
	}

	// Load from YAML file if available
	if err := cfg.LoadFromYAML(path); err != nil {
		return nil, fmt.Errorf("failed to load YAML config: %w", err)
	}

	// Set defaults
	if cfg.Env == "" {
		cfg.Env = "development"
	}
	if cfg.ServiceName == "" {
		cfg.ServiceName = "cortex-compose"
	}
	if cfg.ServiceVersion == "" {
		cfg.ServiceVersion = "1.0.0"
	}
	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	if cfg.SupabaseBucket == "" {
		cfg.SupabaseBucket = "recipe-images"
	}

	cfg.SetGenerationDefaults()

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) LoadFromYAML(path string) error {
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // File not found is not an error
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var yamlConfig struct {
		Gemini     GeminiConfig     `yaml:"gemini"`
		Generation GenerationConfig `yaml:"generation"`
		UI         UIConfig         `yaml:"ui"`
	}

	if err := yaml.Unmarshal(data, &yamlConfig); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	if yamlConfig.Gemini.TextModel != "" {
		c.Gemini.TextModel = yamlConfig.Gemini.TextModel
	}
	if yamlConfig.Gemini.ImageModel != "" {
		c.Gemini.ImageModel = yamlConfig.Gemini.ImageModel
	}
	if yamlConfig.Generation.RecipeCount > 0 {
		c.Generation.RecipeCount = yamlConfig.Generation.RecipeCount
	}
	if yamlConfig.Generation.TextTimeout > 0 {
		c.Generation.TextTimeout = yamlConfig.Generation.TextTimeout
	}
	if yamlConfig.Generation.ImageTimeout > 0 {
		c.Generation.ImageTimeout = yamlConfig.Generation.ImageTimeout
	}
	if yamlConfig.Generation.MaxAttempts > 0 {
		c.Generation.MaxAttempts = yamlConfig.Generation.MaxAttempts
	}
	if yamlConfig.UI.SessionTTL > 0 {
		c.UI.SessionTTL = yamlConfig.UI.SessionTTL
	}
	if yamlConfig.UI.RefreshInterval > 0 {
		c.UI.RefreshInterval = yamlConfig.UI.RefreshInterval
	}

	return nil
}

func (c *Config) SetGenerationDefaults() {
	if c.Gemini.TextModel == "" {
		c.Gemini.TextModel = "gemini-2.5-flash"
	}
	if c.Gemini.ImageModel == "" {
		c.Gemini.ImageModel = "imagen-4.0-generate-001"
	}
	if c.Generation.RecipeCount <= 0 {
		c.Generation.RecipeCount = 3
	}
	if c.Generation.TextTimeout <= 0 {
		c.Generation.TextTimeout = 60 * time.Second
	}
	if c.Generation.ImageTimeout <= 0 {
		c.Generation.ImageTimeout = 90 * time.Second
	}
	if c.Generation.MaxAttempts <= 0 {
		c.Generation.MaxAttempts = 1
	}
	if c.UI.SessionTTL <= 0 {
		c.UI.SessionTTL = 30 * time.Minute
	}
	if c.UI.RefreshInterval <= 0 {
		c.UI.RefreshInterval = 2 * time.Second
	}
}

// SupabaseEnabled reports whether generated images should be uploaded to
// Supabase Storage instead of being inlined as data URIs.
func (c *Config) SupabaseEnabled() bool {
	return c.SupabaseURL != "" && c.SupabaseServiceRoleKey != ""
}

// OtelHeaders parses OTEL_EXPORTER_OTLP_HEADERS ("k1=v1,k2=v2").
func (c *Config) OtelHeaders() map[string]string {
	if c.OtelExporterOTLPHeaders == "" {
		return nil
	}
	headers := make(map[string]string)
	for _, pair := range strings.Split(c.OtelExporterOTLPHeaders, ",") {
		k, v, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}
		headers[strings.TrimSpace(k)] = strings.TrimSpace(v)
	}
	return headers
}

func (c *Config) validate() error {
	if c.GeminiAPIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY is required")
	}
	return nil
}
